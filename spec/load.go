package spec

import (
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/goccy/go-yaml"
)

// TableDesc is the YAML description of a Table.
type TableDesc struct {
	Namespace     string        `yaml:"namespace"`
	Root          string        `yaml:"root"`
	Identity      string        `yaml:"identity"`
	DefinitionRef string        `yaml:"definitionRef"`
	DestAttribute string        `yaml:"destAttribute"`
	Versions      []VersionDesc `yaml:"versions"`
	Types         []TypeDesc    `yaml:"types"`
}

type VersionDesc struct {
	Name   string `yaml:"name"`
	Schema string `yaml:"schema"`
}

// TypeDesc describes one element type.
//
// Version expressions (Identity, Splittable, ItemDesc.Versions,
// AttributeDesc.Versions) are one of "all", "none", ">=NAME", "<NAME" or a
// comma separated list of revision names.
type TypeDesc struct {
	Name       string            `yaml:"name"`
	Mode       string            `yaml:"mode"`
	Identity   string            `yaml:"identity"`
	Splittable string            `yaml:"splittable"`
	Value      *ValueDesc        `yaml:"value"`
	Reference  map[string]string `yaml:"reference"`
	Attributes []AttributeDesc   `yaml:"attributes"`
	Content    []ItemDesc        `yaml:"content"`
}

type ItemDesc struct {
	Element      string     `yaml:"element"`
	Type         string     `yaml:"type"`
	Multiplicity string     `yaml:"multiplicity"`
	Versions     string     `yaml:"versions"`
	Group        *GroupDesc `yaml:"group"`
}

type GroupDesc struct {
	Mode    string     `yaml:"mode"`
	Content []ItemDesc `yaml:"content"`
}

type AttributeDesc struct {
	Name     string     `yaml:"name"`
	Value    *ValueDesc `yaml:"value"`
	Required bool       `yaml:"required"`
	Versions string     `yaml:"versions"`
}

type ValueDesc struct {
	Kind      string   `yaml:"kind"`
	Pattern   string   `yaml:"pattern"`
	MaxLength int      `yaml:"maxLength"`
	Items     []string `yaml:"items"`
	Min       *float64 `yaml:"min"`
	Max       *float64 `yaml:"max"`
}

// LoadFile reads a YAML table description from path.
func LoadFile(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	t, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("could not load schema %s: %w", path, err)
	}
	return t, nil
}

// Load reads a YAML table description.
func Load(r io.Reader) (*Table, error) {
	d, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	desc := &TableDesc{}
	if err := yaml.UnmarshalWithOptions(d, desc, yaml.DisallowUnknownField()); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSchema, err)
	}
	return FromDesc(desc)
}

// FromDesc builds a Table from its description.
func FromDesc(desc *TableDesc) (*Table, error) {
	if len(desc.Versions) == 0 {
		return nil, fmt.Errorf("%w: no versions", ErrSchema)
	}
	if len(desc.Versions) > 32 {
		return nil, fmt.Errorf("%w: at most 32 versions are supported", ErrSchema)
	}
	t := &Table{
		namespace: desc.Namespace,
		identity:  ElementName(desc.Identity),
		defRef:    ElementName(desc.DefinitionRef),
		dest:      AttributeName(desc.DestAttribute),
		root:      ElementName(desc.Root),
		byName:    make(map[string]ElementType, len(desc.Types)),
	}
	for i, vd := range desc.Versions {
		if vd.Name == "" {
			return nil, fmt.Errorf("%w: version %d has no name", ErrSchema, i)
		}
		v := Version(1) << i
		t.all |= v
		t.versions = append(t.versions, VersionInfo{Version: v, Name: vd.Name, Schema: vd.Schema})
	}
	for i := range desc.Types {
		td := &desc.Types[i]
		if _, dup := t.byName[td.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate type %q", ErrSchema, td.Name)
		}
		t.byName[td.Name] = ElementType(i)
	}
	rootType, ok := t.byName[desc.Root]
	if !ok {
		return nil, fmt.Errorf("%w: root type %q not defined", ErrSchema, desc.Root)
	}
	t.rootType = rootType
	for i := range desc.Types {
		e, err := t.buildType(&desc.Types[i])
		if err != nil {
			return nil, fmt.Errorf("%w (type %s)", err, desc.Types[i].Name)
		}
		t.types = append(t.types, e)
	}
	t.fillModes()
	return t, nil
}

func (t *Table) buildType(td *TypeDesc) (*typeEntry, error) {
	e := &typeEntry{
		name:   td.Name,
		byName: map[ElementName][]int{},
	}
	var err error
	if e.identity, err = t.parseVersions(td.Identity, 0); err != nil {
		return nil, err
	}
	if e.splittable, err = t.parseVersions(td.Splittable, 0); err != nil {
		return nil, err
	}
	mode := td.Mode
	if mode == "" {
		switch {
		case len(td.Content) > 0:
			mode = "sequence"
		case td.Value != nil:
			mode = "characters"
		default:
			mode = "sequence"
		}
	}
	if e.mode, err = ParseContentMode(mode); err != nil {
		return nil, err
	}
	if td.Value != nil {
		if e.chars, err = buildValueSpec(td.Value); err != nil {
			return nil, err
		}
	}
	switch e.mode {
	case Characters:
		if len(td.Content) > 0 {
			return nil, fmt.Errorf("%w: character content with sub elements", ErrSchema)
		}
		if e.chars == nil {
			e.chars = &ValueSpec{Kind: StringKind}
		}
	case Mixed:
		if e.chars == nil {
			e.chars = &ValueSpec{Kind: StringKind}
		}
		fallthrough
	default:
		groupMode := e.mode
		if groupMode == Mixed {
			groupMode = Bag
		}
		e.group, err = t.buildGroup(e, groupMode, td.Content, nil)
		if err != nil {
			return nil, err
		}
	}
	if len(td.Reference) > 0 {
		e.refDests = make(map[ElementType]string, len(td.Reference))
		for target, dest := range td.Reference {
			tt, ok := t.byName[target]
			if !ok {
				return nil, fmt.Errorf("%w: reference target type %q not defined", ErrSchema, target)
			}
			e.refDests[tt] = dest
		}
	}
	for _, ad := range td.Attributes {
		as := AttributeSpec{
			Name:     AttributeName(ad.Name),
			Required: ad.Required,
			Value:    &ValueSpec{Kind: StringKind},
		}
		if as.Versions, err = t.parseVersions(ad.Versions, t.all); err != nil {
			return nil, err
		}
		if ad.Value != nil {
			if as.Value, err = buildValueSpec(ad.Value); err != nil {
				return nil, err
			}
		}
		e.attrs = append(e.attrs, as)
	}
	return e, nil
}

func (t *Table) buildGroup(e *typeEntry, mode ContentMode, items []ItemDesc, prefix []int) (*group, error) {
	if mode != Sequence && mode != Choice && mode != Bag {
		return nil, fmt.Errorf("%w: group mode must be sequence, choice or bag, got %s", ErrSchema, mode)
	}
	g := &group{mode: mode}
	for i := range items {
		item := &items[i]
		indices := append(append([]int(nil), prefix...), i)
		if item.Group != nil {
			gm, err := ParseContentMode(item.Group.Mode)
			if err != nil {
				return nil, err
			}
			sub, err := t.buildGroup(e, gm, item.Group.Content, indices)
			if err != nil {
				return nil, err
			}
			g.items = append(g.items, groupItem{sub: -1, group: sub})
			continue
		}
		typeName := item.Type
		if typeName == "" {
			typeName = item.Element
		}
		et, ok := t.byName[typeName]
		if !ok {
			return nil, fmt.Errorf("%w: type %q of element %q not defined", ErrSchema, typeName, item.Element)
		}
		mult, err := ParseMultiplicity(item.Multiplicity)
		if err != nil {
			return nil, err
		}
		versions, err := t.parseVersions(item.Versions, t.all)
		if err != nil {
			return nil, err
		}
		name := ElementName(item.Element)
		for _, j := range e.byName[name] {
			if e.subs[j].Versions.Has(versions) {
				return nil, fmt.Errorf("%w: element %q declared twice for overlapping versions", ErrSchema, name)
			}
		}
		e.byName[name] = append(e.byName[name], len(e.subs))
		e.subs = append(e.subs, SubElementInfo{
			Name:         name,
			Type:         et,
			Multiplicity: mult,
			Indices:      indices,
			Versions:     versions,
		})
		g.items = append(g.items, groupItem{sub: len(e.subs) - 1})
	}
	return g, nil
}

// fillModes resolves the content modes of sub elements once every type
// entry exists.
func (t *Table) fillModes() {
	for _, e := range t.types {
		for i := range e.subs {
			e.subs[i].Mode = t.types[e.subs[i].Type].mode
		}
	}
}

func (t *Table) parseVersions(expr string, dflt Version) (Version, error) {
	expr = strings.TrimSpace(expr)
	switch expr {
	case "":
		return dflt, nil
	case "all":
		return t.all, nil
	case "none":
		return 0, nil
	}
	if rest, ok := strings.CutPrefix(expr, ">="); ok {
		v, ok := t.VersionByName(strings.TrimSpace(rest))
		if !ok {
			return 0, fmt.Errorf("%w: unknown version %q", ErrSchema, rest)
		}
		return t.all &^ (v - 1), nil
	}
	if rest, ok := strings.CutPrefix(expr, "<"); ok {
		v, ok := t.VersionByName(strings.TrimSpace(rest))
		if !ok {
			return 0, fmt.Errorf("%w: unknown version %q", ErrSchema, rest)
		}
		return t.all & (v - 1), nil
	}
	var res Version
	for _, name := range strings.Split(expr, ",") {
		v, ok := t.VersionByName(strings.TrimSpace(name))
		if !ok {
			return 0, fmt.Errorf("%w: unknown version %q", ErrSchema, name)
		}
		res |= v
	}
	return res, nil
}

func buildValueSpec(vd *ValueDesc) (*ValueSpec, error) {
	kind, err := ParseValueKind(vd.Kind)
	if err != nil {
		return nil, err
	}
	vs := &ValueSpec{
		Kind:      kind,
		MaxLength: vd.MaxLength,
		Items:     vd.Items,
		Min:       vd.Min,
		Max:       vd.Max,
	}
	if vd.Pattern != "" {
		re, err := regexp.Compile("^(?:" + vd.Pattern + ")$")
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrSchema, err)
		}
		vs.Pattern = re
	}
	if kind == EnumKind && len(vs.Items) == 0 {
		return nil, fmt.Errorf("%w: enum without items", ErrSchema)
	}
	return vs, nil
}
