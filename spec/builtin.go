package spec

import (
	"bytes"
	_ "embed"
	"sync"
)

//go:embed builtin.yaml
var builtinYAML []byte

var builtin = sync.OnceValues(func() (*Table, error) {
	return Load(bytes.NewReader(builtinYAML))
})

// Builtin returns the embedded sample schema. It panics if the embedded
// description is malformed.
func Builtin() *Table {
	t, err := builtin()
	if err != nil {
		panic(err)
	}
	return t
}
