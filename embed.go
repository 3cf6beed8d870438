package spacetraveling

import "embed"

// EmbeddedAssets contains the default stylesheet and logo, served under
// /public/ unless the static directory provides its own.
//
//go:embed embedded/*
var EmbeddedAssets embed.FS
