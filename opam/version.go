package opam

import "regexp"

// Version is an opam package version. Versions are opaque identifiers with a
// total order; they follow the Debian comparison rules opam uses, which are
// deliberately more permissive than semver ("8.2+alpha" and "0.9-20210101"
// are both valid).
type Version string

var (
	versionPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9.+~_-]*$`)
	namePattern    = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9_+-]*$`)
)

// ParseVersion validates a raw version string.
func ParseVersion(s string) (Version, error) {
	if !versionPattern.MatchString(s) {
		return "", &InvalidIdentifierError{Kind: "version", Value: s}
	}
	return Version(s), nil
}

// ValidName reports whether s is a well-formed package name.
func ValidName(s string) bool {
	return namePattern.MatchString(s)
}

func (v Version) String() string { return string(v) }

// Compare returns -1, 0, or 1 depending on whether v orders before, equal
// to, or after o.
//
// The ordering is the Debian algorithm: the strings are consumed as
// alternating runs of non-digits and digits. Non-digit runs compare
// character-wise where '~' sorts before anything (including the end of the
// string), letters sort before non-letters, and everything else compares by
// byte value. Digit runs compare numerically, ignoring leading zeros.
func (v Version) Compare(o Version) int {
	return compareVersions(string(v), string(o))
}

// Less reports whether v orders strictly before o.
func (v Version) Less(o Version) bool {
	return v.Compare(o) < 0
}

func compareVersions(a, b string) int {
	i, j := 0, 0
	for i < len(a) || j < len(b) {
		// Non-digit run.
		for (i < len(a) && !isDigit(a[i])) || (j < len(b) && !isDigit(b[j])) {
			ac, bc := 0, 0
			if i < len(a) {
				ac = charOrder(a[i])
			}
			if j < len(b) {
				bc = charOrder(b[j])
			}
			if ac != bc {
				if ac < bc {
					return -1
				}
				return 1
			}
			i++
			j++
		}

		// Digit run: strip leading zeros, then compare aligned digits.
		for i < len(a) && a[i] == '0' {
			i++
		}
		for j < len(b) && b[j] == '0' {
			j++
		}
		firstDiff := 0
		for i < len(a) && j < len(b) && isDigit(a[i]) && isDigit(b[j]) {
			if firstDiff == 0 {
				firstDiff = int(a[i]) - int(b[j])
			}
			i++
			j++
		}
		if i < len(a) && isDigit(a[i]) {
			return 1
		}
		if j < len(b) && isDigit(b[j]) {
			return -1
		}
		if firstDiff != 0 {
			if firstDiff < 0 {
				return -1
			}
			return 1
		}
	}
	return 0
}

func charOrder(c byte) int {
	switch {
	case c == '~':
		return -1
	case isDigit(c):
		return 0
	case isLetter(c):
		return int(c)
	default:
		return int(c) + 256
	}
}

func isDigit(c byte) bool  { return c >= '0' && c <= '9' }
func isLetter(c byte) bool { return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') }
