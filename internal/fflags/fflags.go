package fflags

import (
	"fmt"
	"os"
	"strconv"

	"go.uber.org/zap"
)

const (
	// CascadeDelete removes a farm's descendant records when the farm
	// is deleted. Off by default: child rows keep their foreign keys.
	CascadeDelete = "cascade-delete"
	// DegradedReads serves empty collections and absent records when
	// the store is unreachable, instead of failing the request.
	DegradedReads = "degraded-reads"
)

// FFlags is a small env-backed feature flag registry. We will need to
// pass additional api user info into this API if flags ever have to
// differ depending on who is asking (partial rollouts, admin-only
// features).
type FFlags struct {
	logger *zap.SugaredLogger
	Flags  map[string]func() bool
}

func NewFFlags(logger *zap.SugaredLogger) *FFlags {
	return &FFlags{
		logger: logger,
		Flags:  map[string]func() bool{},
	}
}

// RegisterEnvFlag registers a flag whose value comes from the given
// environment variable, falling back to defaultValue when the variable
// is unset or unparsable.
func (f *FFlags) RegisterEnvFlag(name string, env string, defaultValue bool) {
	f.Flags[name] = func() bool {
		if envValue, err := strconv.ParseBool(os.Getenv(env)); err == nil {
			return envValue
		}
		return defaultValue
	}
}

func (f *FFlags) RegisterFlag(name string, value func() bool) {
	f.Flags[name] = value
}

// ListFlags returns a map of all currently defined feature flags and
// whether those features are enabled (true) or not (false).
func (f *FFlags) ListFlags() map[string]bool {
	result := map[string]bool{}
	for name, value := range f.Flags {
		result[name] = value()
	}
	return result
}

// GetFlag returns whether the feature named by the string parameter
// flag is enabled (true) or not (false). An error is returned if
// the flag name is invalid.
func (f *FFlags) GetFlag(flag string) (bool, error) {
	value, ok := f.Flags[flag]
	if !ok {
		f.logger.Errorf("invalid feature flag name: %s", flag)
		return false, fmt.Errorf("invalid feature flag name: %s", flag)
	}
	return value(), nil
}
