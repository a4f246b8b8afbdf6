package domain

// Selection is presentation-owned view state: the selected project and,
// optionally, a chain inside it. The zero value selects nothing.
type Selection struct {
	ProjectID string `json:"projectId,omitempty"`
	ChainID   *int   `json:"chainId,omitempty"`
}

// HasProject reports whether a project is selected.
func (s Selection) HasProject() bool { return s.ProjectID != "" }

// HasChain reports whether a chain is selected.
func (s Selection) HasChain() bool { return s.ChainID != nil }

// IsChain reports whether the selected chain is id.
func (s Selection) IsChain(id int) bool { return s.ChainID != nil && *s.ChainID == id }

// WithProject selects id and clears any chain selection.
func (s Selection) WithProject(id string) Selection {
	return Selection{ProjectID: id}
}

// WithChain selects chain id inside the current project.
func (s Selection) WithChain(id int) Selection {
	s.ChainID = &id
	return s
}

// WithoutChain clears the chain selection.
func (s Selection) WithoutChain() Selection {
	s.ChainID = nil
	return s
}

// Reconcile drops selection parts that no longer exist in c, falling back to the
// first project when the selected project is gone.
func (s Selection) Reconcile(c *Collection) Selection {
	if s.ProjectID != "" {
		if p, ok := c.Get(s.ProjectID); ok {
			if s.ChainID != nil && p.FindChain(*s.ChainID) < 0 {
				return s.WithoutChain()
			}
			return s
		}
	}
	first, ok := c.First()
	if !ok {
		return Selection{}
	}
	return Selection{ProjectID: first}
}
