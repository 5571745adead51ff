// Package migrations embeds the schema files so the test containers can
// apply them without a checkout-relative path.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
