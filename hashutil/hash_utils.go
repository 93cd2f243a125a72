// Package hashutil provides the xxhash-based digest helper used to cache
// subtree equality probes during program diffing.
package hashutil

import (
	"github.com/OneOfOne/xxhash"
)

// HashCode returns the 64-bit xxhash digest of key.
func HashCode(key []byte) uint64 {
	h := xxhash.New64()
	h.Write(key)
	return h.Sum64()
}
