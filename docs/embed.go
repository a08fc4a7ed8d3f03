// Copyright © 2024 The rsresolve authors

// Package docs embeds the name resolution guide for use by the CLI.
package docs

import _ "embed"

//go:embed resolution.md
var ResolutionGuide string
