package spec

import (
	"slices"
)

// Table is a table driven Engine. It is immutable once loaded.
type Table struct {
	namespace string
	versions  []VersionInfo
	all       Version

	identity ElementName
	defRef   ElementName
	dest     AttributeName

	root     ElementName
	rootType ElementType

	types  []*typeEntry
	byName map[string]ElementType
}

type typeEntry struct {
	name  string
	mode  ContentMode
	group *group
	subs  []SubElementInfo
	// byName maps a sub element name to its entries in subs. A name may
	// occur more than once with disjoint version masks.
	byName map[ElementName][]int

	attrs      []AttributeSpec
	chars      *ValueSpec
	identity   Version
	splittable Version
	refDests   map[ElementType]string
}

type group struct {
	mode  ContentMode
	items []groupItem
}

type groupItem struct {
	sub   int
	group *group
}

var _ Engine = (*Table)(nil)

func (t *Table) Root() (ElementName, ElementType) { return t.root, t.rootType }
func (t *Table) Namespace() string                { return t.namespace }
func (t *Table) Versions() []VersionInfo          { return slices.Clone(t.versions) }

// AllVersions returns the mask of every revision the table defines.
func (t *Table) AllVersions() Version { return t.all }

func (t *Table) VersionBySchema(file string) (Version, bool) {
	for _, vi := range t.versions {
		if vi.Schema == file {
			return vi.Version, true
		}
	}
	return 0, false
}

// VersionByName maps a revision name to its revision.
func (t *Table) VersionByName(name string) (Version, bool) {
	for _, vi := range t.versions {
		if vi.Name == name {
			return vi.Version, true
		}
	}
	return 0, false
}

// TypeByName looks up a type by its table name.
func (t *Table) TypeByName(name string) (ElementType, bool) {
	et, ok := t.byName[name]
	return et, ok
}

func (t *Table) entry(et ElementType) *typeEntry {
	if et < 0 || int(et) >= len(t.types) {
		return nil
	}
	return t.types[et]
}

func (t *Table) TypeName(et ElementType) string {
	e := t.entry(et)
	if e == nil {
		return "<invalid>"
	}
	return e.name
}

func (t *Table) ContentMode(et ElementType) ContentMode {
	e := t.entry(et)
	if e == nil {
		return Characters
	}
	return e.mode
}

func (t *Table) SubElement(parent ElementType, name ElementName, v Version) (SubElementInfo, bool) {
	e := t.entry(parent)
	if e == nil {
		return SubElementInfo{}, false
	}
	for _, i := range e.byName[name] {
		sub := e.subs[i]
		if v == 0 || sub.Versions.Has(v) {
			sub.Indices = slices.Clone(sub.Indices)
			return sub, true
		}
	}
	return SubElementInfo{}, false
}

func (t *Table) SubElements(parent ElementType) []SubElementInfo {
	e := t.entry(parent)
	if e == nil {
		return nil
	}
	res := make([]SubElementInfo, len(e.subs))
	for i, sub := range e.subs {
		sub.Indices = slices.Clone(sub.Indices)
		res[i] = sub
	}
	return res
}

func (t *Table) CommonGroupMode(parent ElementType, a, b []int) ContentMode {
	e := t.entry(parent)
	if e == nil || e.group == nil {
		return t.ContentMode(parent)
	}
	g := e.group
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] || a[i] >= len(g.items) {
			break
		}
		next := g.items[a[i]].group
		if next == nil {
			break
		}
		g = next
	}
	return g.mode
}

func (t *Table) Attribute(et ElementType, name AttributeName) (AttributeSpec, bool) {
	e := t.entry(et)
	if e == nil {
		return AttributeSpec{}, false
	}
	for _, a := range e.attrs {
		if a.Name == name {
			return a, true
		}
	}
	return AttributeSpec{}, false
}

func (t *Table) Attributes(et ElementType) []AttributeSpec {
	e := t.entry(et)
	if e == nil {
		return nil
	}
	return slices.Clone(e.attrs)
}

func (t *Table) CharacterSpec(et ElementType) *ValueSpec {
	e := t.entry(et)
	if e == nil {
		return nil
	}
	return e.chars
}

func (t *Table) RequiresIdentity(et ElementType, v Version) bool {
	e := t.entry(et)
	return e != nil && e.identity.Has(v.Min())
}

func (t *Table) Splittable(et ElementType, v Version) bool {
	e := t.entry(et)
	return e != nil && e.splittable.Has(v.Min())
}

func (t *Table) IsReference(et ElementType) bool {
	e := t.entry(et)
	return e != nil && e.refDests != nil
}

func (t *Table) ReferenceDest(ref, target ElementType) (string, bool) {
	e := t.entry(ref)
	if e == nil || e.refDests == nil {
		return "", false
	}
	d, ok := e.refDests[target]
	return d, ok
}

func (t *Table) IdentityElement() ElementName      { return t.identity }
func (t *Table) DefinitionRefElement() ElementName { return t.defRef }
func (t *Table) DestAttribute() AttributeName      { return t.dest }
