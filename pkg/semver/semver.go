// Package semver coerces loose version specifiers into single concrete
// versions.
//
// This is deliberately not a constraint solver. A specifier like
// ">=2.0.1 <3" names a whole range of acceptable versions; Coerce extracts
// the first major.minor.patch-shaped token it finds (here "2.0.1") and
// discards everything else, including pre-release and build metadata.
// Swapping this for real range resolution would change which concrete
// version gets selected, so the simplification is kept on purpose.
package semver

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// Latest is the registry dist-tag naming the newest published version.
// It is passed to the registry as-is rather than coerced locally.
const Latest = "latest"

// ErrNoVersion is returned when a specifier contains nothing that can be
// coerced into a version.
var ErrNoVersion = errors.New("no parseable version")

var versionRe = regexp.MustCompile(`(\d+)(?:\.(\d+))?(?:\.(\d+))?`)

// Coerce extracts the first embedded version from a range specifier and
// zero-fills missing minor/patch components: "^1.4" becomes "1.4.0",
// "1.2.3-beta.1" becomes "1.2.3". An empty specifier and the literal
// "latest" both resolve to [Latest].
func Coerce(spec string) (string, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" || spec == Latest {
		return Latest, nil
	}

	m := versionRe.FindStringSubmatch(spec)
	if m == nil {
		return "", fmt.Errorf("%w in %q", ErrNoVersion, spec)
	}

	minor, patch := m[2], m[3]
	if minor == "" {
		minor = "0"
	}
	if patch == "" {
		patch = "0"
	}
	return m[1] + "." + minor + "." + patch, nil
}
