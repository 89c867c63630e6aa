package wodcoach

import _ "embed"

// DefaultSeed is the built-in movement catalog, benchmark definitions,
// percentile tables and sample athletes, as YAML.
//
//go:embed seed/default.yaml
var DefaultSeed []byte
