package semver

import (
	"errors"
	"fmt"
	"strings"
)

// ErrBadSpecifier is returned by ParseSpecifier for arguments that cannot
// name a package.
var ErrBadSpecifier = errors.New("malformed package specifier")

// Specifier is a user-supplied package reference: "name", "name@range",
// or "@scope/name@range". Scoped names keep their leading @scope/ segment.
type Specifier struct {
	Name  string
	Range string // Latest when no range was given
}

// Key returns the name@version identity for a resolved version.
func Key(name, version string) string {
	return name + "@" + version
}

// ParseSpecifier splits a command-line argument into package name and
// version range. The @ separating name from range is the last one, so
// scoped names stay intact.
func ParseSpecifier(arg string) (Specifier, error) {
	arg = strings.TrimSpace(arg)
	if arg == "" || arg == "@" {
		return Specifier{}, fmt.Errorf("%w: empty name", ErrBadSpecifier)
	}

	name, rng := arg, ""
	if i := strings.LastIndex(arg, "@"); i > 0 {
		name, rng = arg[:i], arg[i+1:]
	}
	if name == "" || name == "@" || strings.HasSuffix(name, "/") {
		return Specifier{}, fmt.Errorf("%w: %q", ErrBadSpecifier, arg)
	}
	if rng == "" {
		rng = Latest
	}
	return Specifier{Name: name, Range: rng}, nil
}
