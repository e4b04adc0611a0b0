// Package migrations embebe los archivos SQL de migración.
package migrations

import "embed"

// PostgresFS contiene las migraciones del backend postgres.
// Formato de archivo: {version}_{name}.sql (ej: 0001_init.sql).
//
//go:embed postgres/*.sql
var PostgresFS embed.FS

// PostgresDir es el directorio dentro de PostgresFS.
const PostgresDir = "postgres"
