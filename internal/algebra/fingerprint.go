package algebra

import (
	"github.com/cespare/xxhash/v2"
)

// Fingerprint returns a structural hash of n. Two trees have the same
// fingerprint exactly when they format to the same text.
func Fingerprint(n Node) uint64 {
	return xxhash.Sum64String(Format(n))
}
