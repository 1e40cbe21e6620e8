// Package encode writes document graph nodes as XML text.
//
// # Usage
//
//	// a subtree
//	err := encode.Encode(node, os.Stdout)
//
//	// the part of a model belonging to one file, with declaration and
//	// schema location
//	err := encode.EncodeFile(file, w, encode.Indent(4))
//
//	// colored output for terminals
//	err := encode.Encode(node, w, encode.EncodeColors(encode.NewColors()))
//
// Elements with element content are written one per line and indented.
// Elements with character content are written on a single line, as is
// mixed content, which keeps its interleaving of text and elements.
package encode
