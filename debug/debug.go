package debug

import (
	"os"
	"strconv"
)

type debug struct {
	Merge bool
	Lock  bool
	Cache bool
	Load  bool
}

var d *debug

func init() {
	d = &debug{}
	d.Merge = boolEnv("DOCGRAPH_DEBUG_MERGE")
	d.Lock = boolEnv("DOCGRAPH_DEBUG_LOCK")
	d.Cache = boolEnv("DOCGRAPH_DEBUG_CACHE")
	d.Load = boolEnv("DOCGRAPH_DEBUG_LOAD")
}

func boolEnv(v string) bool {
	x := os.Getenv(v)
	if x == "" {
		return false
	}
	b, _ := strconv.ParseBool(x)
	return b
}

func Merge() bool {
	return d.Merge
}
func Lock() bool {
	return d.Lock
}
func Cache() bool {
	return d.Cache
}
func Load() bool {
	return d.Load
}
