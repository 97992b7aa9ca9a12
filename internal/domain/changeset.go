package domain

import "slices"

// FileWrite is one creation in a change set.
type FileWrite struct {
	Path    string `json:"path"`
	Content string `json:"content"`
}

// ChangeSet is the parsed result of one generation attempt.
// Creation paths are unique (last write wins, first-seen order kept) and a path
// never appears in both Creations and Deletions: creation takes precedence.
// Use Put and Delete to build one so these hold.
type ChangeSet struct {
	Creations []FileWrite `json:"creations"`
	Deletions []string    `json:"deletions"`
}

// Put records a creation, replacing earlier content for the same path and
// cancelling any deletion of it.
func (c *ChangeSet) Put(path, content string) {
	c.Deletions = slices.DeleteFunc(c.Deletions, func(p string) bool { return p == path })
	for i := range c.Creations {
		if c.Creations[i].Path == path {
			c.Creations[i].Content = content
			return
		}
	}
	c.Creations = append(c.Creations, FileWrite{Path: path, Content: content})
}

// Delete records a deletion unless the path is already being created.
func (c *ChangeSet) Delete(path string) {
	if c.Creates(path) || slices.Contains(c.Deletions, path) {
		return
	}
	c.Deletions = append(c.Deletions, path)
}

// Creates reports whether path is among the creations.
func (c *ChangeSet) Creates(path string) bool {
	return slices.ContainsFunc(c.Creations, func(f FileWrite) bool { return f.Path == path })
}

// Content returns the content recorded for path.
func (c *ChangeSet) Content(path string) (string, bool) {
	for _, f := range c.Creations {
		if f.Path == path {
			return f.Content, true
		}
	}
	return "", false
}

// CreatedPaths returns creation paths in order.
func (c *ChangeSet) CreatedPaths() []string {
	paths := make([]string, 0, len(c.Creations))
	for _, f := range c.Creations {
		paths = append(paths, f.Path)
	}
	return paths
}

// IsEmpty reports whether the change set does nothing.
func (c *ChangeSet) IsEmpty() bool {
	return len(c.Creations) == 0 && len(c.Deletions) == 0
}
