// Package migrations holds the sequencer schema.
package migrations

import "embed"

// FS contains the numbered up and down scripts.
//
//go:embed *.sql
var FS embed.FS
