// Package version exposes build-time version metadata.
package version

import (
	"fmt"
	"runtime"
)

// Set at build time via ldflags.
var (
	Version  = "0.0.0"
	Revision = "unknown"
	BuiltAt  = "unknown"
)

// String returns a single-line version description.
func String() string {
	return fmt.Sprintf("examhub %s (%s, built %s, %s)", Version, Revision, BuiltAt, runtime.Version())
}
