package spec

// Engine answers the structural questions the document graph asks about
// element types. Implementations must be safe for concurrent use and must
// not change once handed to a model.
type Engine interface {
	// Root returns the name and type of the document root element.
	Root() (ElementName, ElementType)
	// Namespace is the XML namespace of documents.
	Namespace() string
	// Versions lists the known revisions, lowest first.
	Versions() []VersionInfo
	// VersionBySchema maps a schema file name to its revision.
	VersionBySchema(file string) (Version, bool)

	TypeName(t ElementType) string
	ContentMode(t ElementType) ContentMode

	// SubElement reports whether name is a valid child of parent in
	// revision v.
	SubElement(parent ElementType, name ElementName, v Version) (SubElementInfo, bool)
	// SubElements lists every sub element of parent in declaration order,
	// regardless of revision.
	SubElements(parent ElementType) []SubElementInfo
	// CommonGroupMode returns the mode of the deepest group of parent
	// containing both index paths a and b.
	CommonGroupMode(parent ElementType, a, b []int) ContentMode

	Attribute(t ElementType, name AttributeName) (AttributeSpec, bool)
	Attributes(t ElementType) []AttributeSpec
	// CharacterSpec is the value constraint of character content, nil for
	// types without character content.
	CharacterSpec(t ElementType) *ValueSpec

	// RequiresIdentity reports whether elements of type t carry a mandatory
	// identity element in revision v.
	RequiresIdentity(t ElementType, v Version) bool
	// Splittable reports whether the content of type t may differ between
	// files in revision v.
	Splittable(t ElementType, v Version) bool

	IsReference(t ElementType) bool
	// ReferenceDest returns the discriminator a reference of type ref must
	// carry to point at an element of type target.
	ReferenceDest(ref, target ElementType) (string, bool)

	IdentityElement() ElementName
	DefinitionRefElement() ElementName
	DestAttribute() AttributeName
}
