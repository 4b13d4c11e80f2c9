package database

import (
	"context"
	"fmt"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// NewDatabase connects to the configured postgres server and returns
// the gorm handle plus the dsn used. When lazy is false the connection
// is retried with exponential backoff until the server answers. When
// lazy is true the handle is created without pinging the server so the
// process can start while the store is down; queries then surface
// connection errors which callers classify with IsUnavailableError.
func NewDatabase(
	parent context.Context,
	logger *zap.SugaredLogger,
	host string,
	user string,
	password string,
	dbname string,
	port string,
	sslmode string,
	lazy bool,
) (*gorm.DB, string, error) {
	ctx, span := tracer.Start(parent, "NewDatabase")
	defer span.End()

	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		host, user, password, dbname, port, sslmode)

	config := &gorm.Config{
		TranslateError: true,
	}

	if lazy {
		config.DisableAutomaticPing = true
		db, err := gorm.Open(postgres.Open(dsn), config)
		if err != nil {
			return nil, "", err
		}
		return db, dsn, nil
	}

	var db *gorm.DB
	connectDb := func() error {
		var err error
		db, err = gorm.Open(postgres.Open(dsn), config)
		if err != nil {
			logger.Warnf("database connection failed, retrying: %s", err)
			return err
		}
		return nil
	}
	err := backoff.Retry(connectDb, backoff.WithContext(backoff.NewExponentialBackOff(), ctx))
	if err != nil {
		return nil, "", err
	}
	return db, dsn, nil
}
