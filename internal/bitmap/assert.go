//go:build debug

package bitmap

import "fmt"

// assertUsed panics if bit id is not already set.
// Only enabled with -tags debug.
func assertUsed(method string, b *Bitmap, id ClusterID) {
	if !b.Used(id) {
		panic(fmt.Sprintf("%s: cluster %d not marked used", method, id))
	}
}
