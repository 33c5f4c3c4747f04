package files

import "github.com/stackvity/droidfs/internal/assets"

// Descriptor names a file without touching it. Assets is only set for
// Internal descriptors.
type Descriptor struct {
	Kind   Kind
	Path   string
	Assets assets.Reader
}

// Roots is the per-kind root prefix fixed when the resolver was built.
type Roots struct {
	External string
	Local    string
}

// For returns the root prefix applied to paths of kind k. Absolute, Internal
// and Classpath paths have none.
func (r Roots) For(k Kind) string {
	switch k {
	case External:
		return r.External
	case Local:
		return r.Local
	default:
		return ""
	}
}
