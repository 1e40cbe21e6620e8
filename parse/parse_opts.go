package parse

type parseOpts struct {
	filename string
	maxDepth int
}

type ParseOption func(*parseOpts)

// ParseFilename names the input in errors and in the resulting Document.
func ParseFilename(name string) ParseOption {
	return func(o *parseOpts) { o.filename = name }
}

// ParseMaxDepth limits element nesting; 0 means the default of 256.
func ParseMaxDepth(n int) ParseOption {
	return func(o *parseOpts) { o.maxDepth = n }
}
