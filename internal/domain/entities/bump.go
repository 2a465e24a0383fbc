package entities

import (
	"fmt"
	"math"
	"regexp"
	"slices"
	"strconv"
	"strings"
)

// BumpKind selects how the next version is derived from the current one.
// The set of kinds is closed: Major, Minor, Patch, PreRelease and Explicit.
type BumpKind interface {
	fmt.Stringer
	bumpKind()
}

// Major increments the major component.
type Major struct{}

// Minor increments the minor component.
type Minor struct{}

// Patch increments the patch component.
type Patch struct{}

// PreRelease attaches or advances a pre-release counter under Label.
// An empty Label produces counter-only pre-releases such as "1.2.4-0".
type PreRelease struct {
	Label string
}

// Explicit sets the version to Target, which must be an advance.
type Explicit struct {
	Target Version
}

func (Major) bumpKind()      {}
func (Minor) bumpKind()      {}
func (Patch) bumpKind()      {}
func (PreRelease) bumpKind() {}
func (Explicit) bumpKind()   {}

func (Major) String() string { return "major" }
func (Minor) String() string { return "minor" }
func (Patch) String() string { return "patch" }

func (k PreRelease) String() string {
	if k.Label == "" {
		return "prerelease"
	}
	return "prerelease:" + k.Label
}

func (k Explicit) String() string { return "explicit:" + k.Target.String() }

// identifierPattern matches a single pre-release or build identifier.
var identifierPattern = regexp.MustCompile(`^[0-9A-Za-z-]+$`)

// Bump returns the version that follows current under kind.
func Bump(current Version, kind BumpKind) (Version, error) {
	switch k := kind.(type) {
	case Major:
		major, err := increment(current.Major)
		if err != nil {
			return Version{}, err
		}
		return Version{Major: major}, nil
	case Minor:
		minor, err := increment(current.Minor)
		if err != nil {
			return Version{}, err
		}
		return Version{Major: current.Major, Minor: minor}, nil
	case Patch:
		patch, err := increment(current.Patch)
		if err != nil {
			return Version{}, err
		}
		return Version{Major: current.Major, Minor: current.Minor, Patch: patch}, nil
	case PreRelease:
		return bumpPreRelease(current, k.Label)
	case Explicit:
		if !k.Target.GreaterThan(current) {
			return Version{}, fmt.Errorf("%w: %s is not greater than %s", ErrNotAnAdvance, k.Target, current)
		}
		return k.Target, nil
	default:
		return Version{}, fmt.Errorf("unsupported bump kind %T", kind)
	}
}

func increment(n uint64) (uint64, error) {
	if n == math.MaxUint64 {
		return 0, fmt.Errorf("%w: %d", ErrVersionOverflow, n)
	}
	return n + 1, nil
}

func bumpPreRelease(current Version, label string) (Version, error) {
	labelIDs, err := parseLabel(label)
	if err != nil {
		return Version{}, err
	}

	next := Version{Major: current.Major, Minor: current.Minor, Patch: current.Patch}

	if !current.IsPreRelease() {
		if next.Patch, err = increment(current.Patch); err != nil {
			return Version{}, err
		}
		next.PreRelease = append(labelIDs, "0")
		return next, nil
	}

	stem, counter, hasCounter := splitCounter(current.PreRelease)
	if !slices.Equal(stem, labelIDs) {
		next.PreRelease = append(labelIDs, "0")
		return next, nil
	}

	if !hasCounter {
		next.PreRelease = append(slices.Clone(stem), "0")
		return next, nil
	}
	if counter, err = increment(counter); err != nil {
		return Version{}, err
	}
	next.PreRelease = append(slices.Clone(stem), strconv.FormatUint(counter, 10))
	return next, nil
}

// parseLabel splits a dotted label into identifiers, rejecting anything the
// SemVer grammar would not accept as a pre-release prefix.
func parseLabel(label string) ([]string, error) {
	if label == "" {
		return []string{}, nil
	}
	ids := strings.Split(label, ".")
	for _, id := range ids {
		if !identifierPattern.MatchString(id) {
			return nil, fmt.Errorf("%w: %q", ErrInvalidLabel, label)
		}
		if isNumeric(id) && len(id) > 1 && id[0] == '0' {
			return nil, fmt.Errorf("%w: %q has a leading zero", ErrInvalidLabel, label)
		}
	}
	return ids, nil
}

// splitCounter separates a trailing numeric identifier from the rest.
func splitCounter(ids []string) ([]string, uint64, bool) {
	last := ids[len(ids)-1]
	if !isNumeric(last) {
		return ids, 0, false
	}
	n, err := strconv.ParseUint(last, 10, 64)
	if err != nil {
		return ids, 0, false
	}
	return ids[:len(ids)-1], n, true
}

func isNumeric(id string) bool {
	if id == "" {
		return false
	}
	for _, r := range id {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// ParseBumpKind maps a CLI selector to a BumpKind. Anything that is not a
// keyword is parsed as an explicit version.
func ParseBumpKind(selector, label string) (BumpKind, error) {
	switch selector {
	case "major":
		return Major{}, nil
	case "minor":
		return Minor{}, nil
	case "patch":
		return Patch{}, nil
	case "prerelease":
		return PreRelease{Label: label}, nil
	}

	target, err := ParseVersion(selector)
	if err != nil {
		return nil, err
	}
	return Explicit{Target: target}, nil
}
