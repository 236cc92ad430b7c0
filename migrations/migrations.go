// Package migrations embeds the SQL schemas applied with golang-migrate.
package migrations

import "embed"

// FS holds the reference server schema under server/ and the client local store
// schema under local/.
//
//go:embed server/*.sql local/*.sql
var FS embed.FS
