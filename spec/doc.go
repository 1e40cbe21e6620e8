// Package spec provides the specification engine consulted by the document
// graph.
//
// # Overview
//
// A specification describes, for every element type and every format
// revision, which sub elements and attributes are permitted, in which order
// and how often they may occur, and which literal values are acceptable for
// character content. The graph package never hardcodes any of this: it
// queries an [Engine].
//
// # Versions
//
// Revisions are represented as bits of a [Version] mask. A sub element or
// attribute carries the mask of revisions in which it exists; a query passes
// the revision it is evaluated in (normally the lowest revision of all files
// a node belongs to, see [Version.Min]).
//
// # Content models
//
// The sub elements of a type are arranged in nested groups. Each group has a
// [ContentMode]:
//
//   - Sequence: members occur in declaration order
//   - Choice: only one member of the group occurs, possibly repeated
//   - Bag: members occur in any order
//
// Types without sub elements have mode Characters (a single literal) or, if
// literals and elements interleave, Mixed.
//
// The position of a sub element in the group tree is its index path
// ([SubElementInfo.Indices]). Comparing two index paths and looking up the
// mode of their deepest common group ([Engine.CommonGroupMode]) is enough to
// decide where a new element may be inserted.
//
// # Tables
//
// [Table] is the table driven implementation of [Engine]. Tables are
// described in YAML and loaded with [Load] or [LoadFile]; [Builtin] returns
// the embedded sample schema used by tests and the arx tool.
package spec
