package entities

import (
	"fmt"
	"strconv"
	"strings"

	mmsemver "github.com/Masterminds/semver/v3"
	"golang.org/x/mod/semver"
)

// Version is a semantic version value. A bump never mutates a Version, it
// returns a new one.
type Version struct {
	Major      uint64
	Minor      uint64
	Patch      uint64
	PreRelease []string
	Build      []string
}

// ParseVersion parses text as a strict SemVer 2.0.0 version (no "v" prefix,
// all three numeric components present).
func ParseVersion(text string) (Version, error) {
	parsed, err := mmsemver.StrictNewVersion(text)
	if err != nil {
		return Version{}, fmt.Errorf("%w: %q: %v", ErrMalformedVersion, text, err) //nolint:errorlint // cause is detail only
	}

	return Version{
		Major:      parsed.Major(),
		Minor:      parsed.Minor(),
		Patch:      parsed.Patch(),
		PreRelease: splitIdentifiers(parsed.Prerelease()),
		Build:      splitIdentifiers(parsed.Metadata()),
	}, nil
}

// MustParseVersion is like ParseVersion but panics on malformed input.
func MustParseVersion(text string) Version {
	v, err := ParseVersion(text)
	if err != nil {
		panic(err)
	}
	return v
}

func splitIdentifiers(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ".")
}

// String returns the canonical textual form, e.g. "1.2.3-rc.1+build.5".
func (v Version) String() string {
	var sb strings.Builder
	sb.WriteString(strconv.FormatUint(v.Major, 10))
	sb.WriteByte('.')
	sb.WriteString(strconv.FormatUint(v.Minor, 10))
	sb.WriteByte('.')
	sb.WriteString(strconv.FormatUint(v.Patch, 10))
	if len(v.PreRelease) > 0 {
		sb.WriteByte('-')
		sb.WriteString(strings.Join(v.PreRelease, "."))
	}
	if len(v.Build) > 0 {
		sb.WriteByte('+')
		sb.WriteString(strings.Join(v.Build, "."))
	}
	return sb.String()
}

// IsPreRelease reports whether v carries pre-release identifiers.
func (v Version) IsPreRelease() bool {
	return len(v.PreRelease) > 0
}

// Compare orders versions by SemVer precedence, ignoring build metadata.
// It returns -1, 0 or +1.
func (v Version) Compare(other Version) int {
	return semver.Compare("v"+v.String(), "v"+other.String())
}

// GreaterThan reports whether v has strictly higher precedence than other.
func (v Version) GreaterThan(other Version) bool {
	return v.Compare(other) > 0
}

// Equal reports whether v and other have the same precedence.
func (v Version) Equal(other Version) bool {
	return v.Compare(other) == 0
}
