//go:build !unix

package platform

// Without access(2) a present directory is treated as writable; a failed
// write surfaces later through the handle layer.
func writable(string) bool {
	return true
}
