// Package migrations ships the SQL schema with the binaries.
package migrations

import "embed"

//go:embed postgres/*.sql
var Postgres embed.FS

// PostgresDir is the directory of Postgres inside the embedded FS.
const PostgresDir = "postgres"
