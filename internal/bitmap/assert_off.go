//go:build !debug

package bitmap

// assertUsed is a no-op in production.
// Enable with -tags debug for runtime checks.
func assertUsed(string, *Bitmap, ClusterID) {}
