package database

import (
	"github.com/go-gormigrate/gormigrate/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/agrihub-io/agrihub/internal/database/migration_20250301_0000"
	"github.com/agrihub-io/agrihub/internal/database/migrations"
)

var tracer trace.Tracer

func init() {
	tracer = otel.Tracer("github.com/agrihub-io/agrihub/internal/database")
}

func Migrations() *migrations.Migrations {
	return &migrations.Migrations{
		GormOptions: &gormigrate.Options{
			TableName:      "apiserver_migrations",
			IDColumnName:   "id",
			IDColumnSize:   40,
			UseTransaction: false,
		},
		Migrations: []*gormigrate.Migration{
			migration_20250301_0000.Migrate(),
		},
	}
}
