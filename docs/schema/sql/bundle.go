// Package sqldocs exposes the snapshot table DDL directly from the docs tree.
package sqldocs

import _ "embed"

// SQLite is the snapshot table DDL for the sqlite backend.
//
//go:embed sqlite.sql
var SQLite string

// Postgres is the snapshot table DDL for the postgres backend.
//
//go:embed postgres.sql
var Postgres string
