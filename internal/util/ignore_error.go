package util

type fnWithErrorResult func() error

// IgnoreError calls the passed fn and ignores the errors it returns.
// Example: `defer util.IgnoreError(file.Close)`
func IgnoreError(fn fnWithErrorResult) {
	_ = fn()
}
