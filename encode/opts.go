package encode

type EncodeOption func(*EncState)

// Indent sets the number of spaces per nesting level. 0 writes every
// element on its own line without indentation.
func Indent(n int) EncodeOption {
	return func(es *EncState) { es.indent = max(n, 0) }
}

// Depth sets the nesting level of the first element written.
func Depth(n int) EncodeOption {
	return func(es *EncState) { es.depth = max(n, 0) }
}

func EncodeColors(c *Colors) EncodeOption {
	return func(es *EncState) {
		if c == nil {
			es.Color = nil
			return
		}
		es.Color = c.Color
	}
}

// EncodeDeclaration controls whether EncodeFile writes the XML
// declaration. It is written by default.
func EncodeDeclaration(v bool) EncodeOption {
	return func(es *EncState) { es.decl = v }
}
