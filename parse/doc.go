// Package parse turns document text into a candidate element tree.
//
// The parser is purely syntactic: it knows nothing about element types or
// content models. It records elements, attributes and text in document
// order; deciding what is legal is left to the graph package, which builds
// its nodes from the candidate tree while consulting a spec.Engine.
//
// Namespace prefixes are kept verbatim ("xsi:schemaLocation"), so attribute
// names can be written back exactly as they were read.
package parse
