// Package migrations holds the embedded goose migrations for the loan store.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
