package form

import (
	"fmt"
	"strconv"
	"strings"
)

// InitialVersion is the version assigned to newly authored schemas.
const InitialVersion = "1.0.0"

// Version is a parsed major.minor.patch version string.
type Version struct {
	Major int
	Minor int
	Patch int
}

// ParseVersion parses a "major.minor.patch" string. All three components
// are required and must be non-negative integers.
func ParseVersion(s string) (Version, error) {
	parts := strings.Split(s, ".")
	if len(parts) != 3 {
		return Version{}, fmt.Errorf("invalid version %q: want major.minor.patch", s)
	}

	nums := make([]int, 3)
	for i, part := range parts {
		n, err := strconv.Atoi(part)
		if err != nil || n < 0 || (len(part) > 1 && part[0] == '0') {
			return Version{}, fmt.Errorf("invalid version %q: component %q", s, part)
		}
		nums[i] = n
	}

	return Version{Major: nums[0], Minor: nums[1], Patch: nums[2]}, nil
}

// String returns the "major.minor.patch" form.
func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// BumpPatch returns the version with the patch component incremented.
func (v Version) BumpPatch() Version {
	return Version{Major: v.Major, Minor: v.Minor, Patch: v.Patch + 1}
}

// Compare returns -1, 0, or 1 ordering two versions.
func (v Version) Compare(o Version) int {
	for _, d := range []int{v.Major - o.Major, v.Minor - o.Minor, v.Patch - o.Patch} {
		if d < 0 {
			return -1
		}
		if d > 0 {
			return 1
		}
	}
	return 0
}

// BumpPatchString parses a version string and returns it with the patch
// component incremented. Used by the store's version-bump operation.
func BumpPatchString(s string) (string, error) {
	v, err := ParseVersion(s)
	if err != nil {
		return "", err
	}
	return v.BumpPatch().String(), nil
}
