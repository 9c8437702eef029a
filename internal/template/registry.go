package template

import "fmt"

// #region registry

// Registry is an insertion-ordered triple index: by template ID, by tool
// name, by tag. Registration order is a contract — scored selection breaks
// ties by first-registered-wins, and tool lookup returns the first match.
type Registry struct {
	templates map[string]*Template
	order     []string
	byTool    map[string][]string
	byTag     map[string][]string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		templates: make(map[string]*Template),
		byTool:    make(map[string][]string),
		byTag:     make(map[string][]string),
	}
}

// #endregion registry

// #region register

// Register adds a template. Duplicate IDs are rejected.
func (r *Registry) Register(tpl *Template) error {
	if tpl == nil {
		return fmt.Errorf("register: nil template")
	}
	if _, exists := r.templates[tpl.ID]; exists {
		return fmt.Errorf("duplicate template id registered: %q", tpl.ID)
	}
	r.templates[tpl.ID] = tpl
	r.order = append(r.order, tpl.ID)

	for _, tool := range tpl.Applicability.Tools {
		r.byTool[tool] = append(r.byTool[tool], tpl.ID)
	}
	for _, tag := range tpl.Tags {
		r.byTag[tag] = append(r.byTag[tag], tpl.ID)
	}
	return nil
}

// #endregion register

// #region lookup

// Get returns the template with the given ID, or nil.
func (r *Registry) Get(id string) *Template {
	return r.templates[id]
}

// FindByTool returns templates bound to a tool name, in registration order.
func (r *Registry) FindByTool(tool string) []*Template {
	ids := r.byTool[tool]
	out := make([]*Template, 0, len(ids))
	for _, id := range ids {
		out = append(out, r.templates[id])
	}
	return out
}

// FindByTag returns templates carrying a tag, in registration order.
func (r *Registry) FindByTag(tag string) []*Template {
	ids := r.byTag[tag]
	out := make([]*Template, 0, len(ids))
	for _, id := range ids {
		out = append(out, r.templates[id])
	}
	return out
}

// All returns every registered template in registration order.
func (r *Registry) All() []*Template {
	out := make([]*Template, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.templates[id])
	}
	return out
}

// Len returns the number of registered templates.
func (r *Registry) Len() int {
	return len(r.order)
}

// #endregion lookup
