package model

import "sort"

// IndexedFile is the content of one file discovered while indexing a workflow.
type IndexedFile struct {
	Content string   `json:"content" yaml:"content"`
	Type    FileType `json:"type" yaml:"type"`
}

// IndexedFiles maps a resolved path to the file found there.
type IndexedFiles map[string]IndexedFile

// Paths returns the indexed paths in sorted order.
func (f IndexedFiles) Paths() []string {
	paths := make([]string, 0, len(f))
	for p := range f {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// OfType returns the subset of files with the given type.
func (f IndexedFiles) OfType(t FileType) IndexedFiles {
	out := make(IndexedFiles)
	for p, file := range f {
		if file.Type == t {
			out[p] = file
		}
	}
	return out
}

// Merge copies every entry of other into f. Entries in other replace
// entries in f with the same path.
func (f IndexedFiles) Merge(other IndexedFiles) {
	for p, file := range other {
		f[p] = file
	}
}
