package storage

import "embed"

// Migrations holds the versioned schema migrations applied at bootstrap.
//
//go:embed migrations
var Migrations embed.FS
