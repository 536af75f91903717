// Package migrations provides embedded SQL migration files.
package migrations

import (
	_ "embed"
)

// InitialSQL creates the run event log.
//
//go:embed sql/001_events.sql
var InitialSQL string
