// Package graph implements a schema-governed document graph shared by a
// set of files.
//
// A [Model] holds one tree of [Node] values rooted at the schema's root
// element. Each [File] of the model sees the subset of the tree whose file
// membership includes it: a node with an empty local membership inherits
// the membership of its parent. Loading a file into a non-empty model
// merges its content with what is there.
//
// Identifiable nodes, those carrying an item name, are addressed by paths
// like "/Pkg/Sub/Elem". The model caches the node at every path and the
// reference nodes pointing at every path; renames and moves keep both
// caches and the stored targets of references current.
//
// Every node has its own lock. Operations lock the node they modify and
// wait a bounded time for any other lock, failing with [ErrParentLocked]
// if it cannot be had. Such failures leave the graph unchanged.
package graph
