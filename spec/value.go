package spec

import (
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"unicode/utf8"
)

type ValueKind int

const (
	StringKind ValueKind = iota
	EnumKind
	UintKind
	FloatKind
)

func (k ValueKind) String() string {
	switch k {
	case StringKind:
		return "string"
	case EnumKind:
		return "enum"
	case UintKind:
		return "uint"
	case FloatKind:
		return "float"
	default:
		return fmt.Sprintf("ValueKind(%d)", int(k))
	}
}

// ParseValueKind parses the YAML representation of a value kind.
func ParseValueKind(s string) (ValueKind, error) {
	switch s {
	case "", "string":
		return StringKind, nil
	case "enum":
		return EnumKind, nil
	case "uint", "unsigned":
		return UintKind, nil
	case "float", "double":
		return FloatKind, nil
	}
	return 0, fmt.Errorf("%w: unknown value kind %q", ErrSchema, s)
}

// Value is a typed literal. Like a tagged union, the field holding the
// payload depends on Kind: String for StringKind and EnumKind, Uint for
// UintKind and Float for FloatKind.
type Value struct {
	Kind   ValueKind
	String string
	Uint   uint64
	Float  float64
}

func StringValue(s string) Value { return Value{Kind: StringKind, String: s} }
func EnumValue(s string) Value   { return Value{Kind: EnumKind, String: s} }
func UintValue(u uint64) Value   { return Value{Kind: UintKind, Uint: u} }
func FloatValue(f float64) Value { return Value{Kind: FloatKind, Float: f} }

// Text returns the serialized form of the value.
func (v Value) Text() string {
	switch v.Kind {
	case UintKind:
		return strconv.FormatUint(v.Uint, 10)
	case FloatKind:
		return strconv.FormatFloat(v.Float, 'g', -1, 64)
	default:
		return v.String
	}
}

func (v Value) Equal(o Value) bool {
	return v.Kind == o.Kind && v.Text() == o.Text()
}

// ValueSpec is the constraint on a literal.
type ValueSpec struct {
	Kind      ValueKind
	Pattern   *regexp.Regexp
	MaxLength int
	Items     []string
	Min, Max  *float64
}

// Parse converts text to a Value of the spec's kind and checks it.
func (s *ValueSpec) Parse(text string) (Value, error) {
	var v Value
	switch s.Kind {
	case StringKind:
		v = StringValue(text)
	case EnumKind:
		v = EnumValue(strings.TrimSpace(text))
	case UintKind:
		u, err := strconv.ParseUint(strings.TrimSpace(text), 10, 64)
		if err != nil {
			return Value{}, fmt.Errorf("%w: %q is not an unsigned integer", ErrInvalidValue, text)
		}
		v = UintValue(u)
	case FloatKind:
		f, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
		if err != nil {
			return Value{}, fmt.Errorf("%w: %q is not a number", ErrInvalidValue, text)
		}
		v = FloatValue(f)
	}
	if err := s.Check(v); err != nil {
		return Value{}, err
	}
	return v, nil
}

// Check verifies v against the constraint. A string value offered for a
// numeric or enum spec is parsed first.
func (s *ValueSpec) Check(v Value) error {
	if v.Kind != s.Kind {
		if v.Kind == StringKind {
			_, err := s.Parse(v.String)
			return err
		}
		return fmt.Errorf("%w: expected %s, got %s", ErrInvalidValue, s.Kind, v.Kind)
	}
	switch v.Kind {
	case StringKind:
		if s.MaxLength > 0 && utf8.RuneCountInString(v.String) > s.MaxLength {
			return fmt.Errorf("%w: %q exceeds max length %d", ErrInvalidValue, v.String, s.MaxLength)
		}
		if s.Pattern != nil && !s.Pattern.MatchString(v.String) {
			return fmt.Errorf("%w: %q does not match %s", ErrInvalidValue, v.String, s.Pattern)
		}
	case EnumKind:
		if !slices.Contains(s.Items, v.String) {
			return fmt.Errorf("%w: %q is not one of %s", ErrInvalidValue, v.String, strings.Join(s.Items, ", "))
		}
	case UintKind:
		if err := s.checkRange(float64(v.Uint), v.Text()); err != nil {
			return err
		}
	case FloatKind:
		if err := s.checkRange(v.Float, v.Text()); err != nil {
			return err
		}
	}
	return nil
}

// Normalize converts v to the kind of the spec, parsing string values.
func (s *ValueSpec) Normalize(v Value) (Value, error) {
	if v.Kind == StringKind && s.Kind != StringKind {
		return s.Parse(v.String)
	}
	if err := s.Check(v); err != nil {
		return Value{}, err
	}
	return v, nil
}

func (s *ValueSpec) checkRange(f float64, text string) error {
	if s.Min != nil && f < *s.Min {
		return fmt.Errorf("%w: %s is below minimum %g", ErrInvalidValue, text, *s.Min)
	}
	if s.Max != nil && f > *s.Max {
		return fmt.Errorf("%w: %s is above maximum %g", ErrInvalidValue, text, *s.Max)
	}
	return nil
}
