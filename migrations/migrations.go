package migrations

import (
	"embed"
	"io/fs"
)

//go:embed schema/**/*.sql
var schemaFS embed.FS

//go:embed postgres/*.sql
var postgresFS embed.FS

// Schema returns the embedded sqlite schema filesystem. Every file is
// idempotent and applied on each start.
func Schema() fs.FS {
	fs, err := fs.Sub(schemaFS, "schema")
	if err != nil {
		panic(err) // should never happen since we control the embed path
	}
	return fs
}

// Postgres returns the embedded goose migrations for the postgres store.
func Postgres() fs.FS {
	fs, err := fs.Sub(postgresFS, "postgres")
	if err != nil {
		panic(err)
	}
	return fs
}
