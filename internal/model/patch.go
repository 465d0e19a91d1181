package model

// Patch is the outcome of applying fix-its to one file.
type Patch struct {
	Path    Path
	Before  []byte
	After   []byte
	Applied int
}

// Changed reports whether the patch rewrites anything.
func (p Patch) Changed() bool {
	return p.Applied > 0 && string(p.Before) != string(p.After)
}
