package capability

import (
	"fmt"
	"strings"
)

// Category classifies an integration by the kind of service it fronts.
type Category string

const (
	CategoryAIModel      Category = "ai-model"
	CategoryProductivity Category = "productivity"
	CategoryMedia        Category = "media"
	CategoryMusic        Category = "music"
	CategorySystem       Category = "system"
)

func (c Category) Valid() bool {
	switch c {
	case CategoryAIModel, CategoryProductivity, CategoryMedia, CategoryMusic, CategorySystem:
		return true
	}
	return false
}

// FieldType is the declared type of a configuration field.
type FieldType string

const (
	FieldString  FieldType = "string"
	FieldBoolean FieldType = "boolean"
	FieldNumber  FieldType = "number"
	FieldSecret  FieldType = "secret"
)

func (t FieldType) Valid() bool {
	switch t {
	case FieldString, FieldBoolean, FieldNumber, FieldSecret:
		return true
	}
	return false
}

// ConfigField declares one configuration value an integration instance needs.
type ConfigField struct {
	Key      string    `yaml:"key"`
	Type     FieldType `yaml:"type"`
	Required bool      `yaml:"required"`
	Default  string    `yaml:"default,omitempty"`
}

// Param declares one named parameter of a skill.
type Param struct {
	Name        string `yaml:"name"`
	Type        string `yaml:"type"`
	Required    bool   `yaml:"required"`
	Description string `yaml:"description,omitempty"`
}

// Skill declares one invocable operation an integration exposes.
// Skill IDs are globally unique across every registered schema; they are
// the flat dispatch key.
type Skill struct {
	ID          string  `yaml:"id"`
	Name        string  `yaml:"name"`
	Description string  `yaml:"description"`
	Params      []Param `yaml:"parameters,omitempty"`

	// AuditAction optionally names the audit action recorded for this
	// skill in place of the default skill_execute. Memory skills use it
	// to land as memory_store/memory_recall in the trail.
	AuditAction string `yaml:"audit_action,omitempty"`
}

// RequiredParams returns the names of the skill's required parameters.
func (s Skill) RequiredParams() []string {
	var out []string
	for _, p := range s.Params {
		if p.Required {
			out = append(out, p.Name)
		}
	}
	return out
}

// Schema is the static declaration of one integration type: identity,
// configuration needs and skill catalog. Schemas are immutable after
// registration and shared read-only by every instance.
type Schema struct {
	ID           string        `yaml:"id"`
	Name         string        `yaml:"name"`
	Category     Category      `yaml:"category"`
	ConfigFields []ConfigField `yaml:"config_fields,omitempty"`
	Skills       []Skill       `yaml:"skills"`
}

// SkillByID returns the declared skill with the given id.
func (s *Schema) SkillByID(id string) (Skill, bool) {
	for _, sk := range s.Skills {
		if sk.ID == id {
			return sk, true
		}
	}
	return Skill{}, false
}

// Validate checks the schema in isolation. Cross-schema skill id
// uniqueness is enforced by the Registry.
func (s *Schema) Validate() error {
	if strings.TrimSpace(s.ID) == "" {
		return fmt.Errorf("capability: schema missing id")
	}
	if !s.Category.Valid() {
		return fmt.Errorf("capability: schema %q: unknown category %q", s.ID, s.Category)
	}
	if len(s.Skills) == 0 {
		return fmt.Errorf("capability: schema %q: no skills declared", s.ID)
	}

	fieldKeys := map[string]bool{}
	for _, f := range s.ConfigFields {
		key := strings.TrimSpace(f.Key)
		if key == "" {
			return fmt.Errorf("capability: schema %q: config field with empty key", s.ID)
		}
		if !f.Type.Valid() {
			return fmt.Errorf("capability: schema %q: config field %q: unknown type %q", s.ID, key, f.Type)
		}
		if fieldKeys[key] {
			return fmt.Errorf("capability: schema %q: duplicate config field key %q", s.ID, key)
		}
		fieldKeys[key] = true
	}

	skillIDs := map[string]bool{}
	for _, sk := range s.Skills {
		id := strings.TrimSpace(sk.ID)
		if id == "" {
			return fmt.Errorf("capability: schema %q: skill with empty id", s.ID)
		}
		if skillIDs[id] {
			return fmt.Errorf("capability: schema %q: duplicate skill id %q", s.ID, id)
		}
		skillIDs[id] = true

		paramNames := map[string]bool{}
		for _, p := range sk.Params {
			name := strings.TrimSpace(p.Name)
			if name == "" {
				return fmt.Errorf("capability: schema %q: skill %q: parameter with empty name", s.ID, id)
			}
			if paramNames[name] {
				return fmt.Errorf("capability: schema %q: skill %q: duplicate parameter %q", s.ID, id, name)
			}
			paramNames[name] = true
		}
	}
	return nil
}
