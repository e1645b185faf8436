package capability

import (
	"fmt"
	"sort"
)

// Registry holds every registered schema and enforces the cross-schema
// invariant that skill ids are globally unique. Registration happens at
// process start; a validation failure there is a programming error and
// callers are expected to treat it as fatal.
type Registry struct {
	schemas map[string]*Schema
	skills  map[string]string // skill id -> owning schema id
}

func NewRegistry() *Registry {
	return &Registry{
		schemas: make(map[string]*Schema),
		skills:  make(map[string]string),
	}
}

func (r *Registry) Register(s *Schema) error {
	if s == nil {
		return fmt.Errorf("capability: nil schema")
	}
	if err := s.Validate(); err != nil {
		return err
	}
	if _, ok := r.schemas[s.ID]; ok {
		return fmt.Errorf("capability: schema %q already registered", s.ID)
	}
	for _, sk := range s.Skills {
		if owner, ok := r.skills[sk.ID]; ok {
			return fmt.Errorf("capability: skill id %q declared by both %q and %q", sk.ID, owner, s.ID)
		}
	}
	r.schemas[s.ID] = s
	for _, sk := range s.Skills {
		r.skills[sk.ID] = s.ID
	}
	return nil
}

// MustRegister registers each schema and panics on the first failure.
// Intended for static catalogs wired at startup.
func (r *Registry) MustRegister(schemas ...*Schema) {
	for _, s := range schemas {
		if err := r.Register(s); err != nil {
			panic(err)
		}
	}
}

func (r *Registry) Get(id string) (*Schema, bool) {
	s, ok := r.schemas[id]
	return s, ok
}

// OwnerOfSkill returns the schema declaring the given skill id.
func (r *Registry) OwnerOfSkill(skillID string) (*Schema, bool) {
	owner, ok := r.skills[skillID]
	if !ok {
		return nil, false
	}
	return r.schemas[owner], true
}

func (r *Registry) All() []*Schema {
	out := make([]*Schema, 0, len(r.schemas))
	for _, s := range r.schemas {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
