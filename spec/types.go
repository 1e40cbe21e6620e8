package spec

import (
	"fmt"
	"math/bits"
	"strings"
)

// ElementName is the tag of an element, e.g. "AR-PACKAGE".
type ElementName string

// AttributeName is the name of an attribute, e.g. "DEST".
type AttributeName string

// ElementType identifies an entry of the type table of an Engine.
type ElementType int

// NoType is returned where no element type applies.
const NoType ElementType = -1

// Version is a set of format revisions, one bit per revision.
type Version uint32

const AllVersions Version = ^Version(0)

// Min returns the lowest revision contained in v, or 0 if v is empty.
func (v Version) Min() Version {
	if v == 0 {
		return 0
	}
	return v & -v
}

// Has reports whether v and o share at least one revision.
func (v Version) Has(o Version) bool {
	return v&o != 0
}

// Count returns the number of revisions in v.
func (v Version) Count() int {
	return bits.OnesCount32(uint32(v))
}

func (v Version) String() string {
	if v == AllVersions {
		return "all"
	}
	return fmt.Sprintf("%#x", uint32(v))
}

type ContentMode int

const (
	Sequence ContentMode = iota
	Choice
	Bag
	Characters
	Mixed
)

var contentModeNames = []string{"sequence", "choice", "bag", "characters", "mixed"}

func (m ContentMode) String() string {
	if m < 0 || int(m) >= len(contentModeNames) {
		return fmt.Sprintf("ContentMode(%d)", int(m))
	}
	return contentModeNames[m]
}

// HasElements reports whether content of this mode may contain sub elements.
func (m ContentMode) HasElements() bool {
	return m != Characters
}

// ParseContentMode parses the YAML representation of a content mode.
func ParseContentMode(s string) (ContentMode, error) {
	for i, n := range contentModeNames {
		if strings.EqualFold(s, n) {
			return ContentMode(i), nil
		}
	}
	return 0, fmt.Errorf("%w: unknown content mode %q", ErrSchema, s)
}

type Multiplicity int

const (
	ZeroOrOne Multiplicity = iota
	One
	Any
)

func (m Multiplicity) String() string {
	switch m {
	case ZeroOrOne:
		return "zero-or-one"
	case One:
		return "one"
	case Any:
		return "any"
	default:
		return fmt.Sprintf("Multiplicity(%d)", int(m))
	}
}

// ParseMultiplicity parses the YAML representation of a multiplicity.
func ParseMultiplicity(s string) (Multiplicity, error) {
	switch s {
	case "", "zero-or-one", "?":
		return ZeroOrOne, nil
	case "one", "1":
		return One, nil
	case "any", "*":
		return Any, nil
	}
	return 0, fmt.Errorf("%w: unknown multiplicity %q", ErrSchema, s)
}

// VersionInfo names a single revision.
type VersionInfo struct {
	Version Version
	Name    string
	// Schema is the schema file name written to the schema location of
	// documents of this revision.
	Schema string
}

// SubElementInfo describes a permitted sub element of a type.
type SubElementInfo struct {
	Name         ElementName
	Type         ElementType
	Mode         ContentMode
	Multiplicity Multiplicity
	// Indices is the position of the sub element in the nested group tree
	// of the parent type.
	Indices  []int
	Versions Version
}

// AttributeSpec describes a permitted attribute of a type.
type AttributeSpec struct {
	Name     AttributeName
	Value    *ValueSpec
	Required bool
	Versions Version
}

// CompareIndices compares two index paths lexicographically.
func CompareIndices(a, b []int) int {
	for i := 0; i < len(a) && i < len(b); i++ {
		switch {
		case a[i] < b[i]:
			return -1
		case a[i] > b[i]:
			return 1
		}
	}
	switch {
	case len(a) < len(b):
		return -1
	case len(a) > len(b):
		return 1
	}
	return 0
}
