// Package migrations bundles the schema migration files into the binary
// so deployments need no migrations directory on disk.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
