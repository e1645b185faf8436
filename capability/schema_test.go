package capability

import (
	"strings"
	"testing"
)

func validSchema(id string, skillIDs ...string) *Schema {
	s := &Schema{
		ID:       id,
		Name:     id,
		Category: CategoryProductivity,
		ConfigFields: []ConfigField{
			{Key: "token", Type: FieldSecret, Required: true},
		},
	}
	for _, sid := range skillIDs {
		s.Skills = append(s.Skills, Skill{
			ID:   sid,
			Name: sid,
			Params: []Param{
				{Name: "q", Type: "string", Required: true},
			},
		})
	}
	return s
}

func TestSchemaValidate(t *testing.T) {
	if err := validSchema("svc", "svc_search").Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
}

func TestSchemaValidateRejectsEmptyID(t *testing.T) {
	s := validSchema("", "svc_search")
	if err := s.Validate(); err == nil {
		t.Fatalf("expected error for empty schema id")
	}
}

func TestSchemaValidateRejectsUnknownCategory(t *testing.T) {
	s := validSchema("svc", "svc_search")
	s.Category = "gadgets"
	if err := s.Validate(); err == nil {
		t.Fatalf("expected error for unknown category")
	}
}

func TestSchemaValidateRejectsNoSkills(t *testing.T) {
	s := validSchema("svc")
	if err := s.Validate(); err == nil {
		t.Fatalf("expected error for schema without skills")
	}
}

func TestSchemaValidateRejectsDuplicateSkillID(t *testing.T) {
	s := validSchema("svc", "svc_search", "svc_search")
	err := s.Validate()
	if err == nil {
		t.Fatalf("expected error for duplicate skill id")
	}
	if !strings.Contains(err.Error(), "duplicate skill id") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestSchemaValidateRejectsDuplicateConfigKey(t *testing.T) {
	s := validSchema("svc", "svc_search")
	s.ConfigFields = append(s.ConfigFields, ConfigField{Key: "token", Type: FieldString})
	if err := s.Validate(); err == nil {
		t.Fatalf("expected error for duplicate config key")
	}
}

func TestSchemaValidateRejectsDuplicateParamName(t *testing.T) {
	s := validSchema("svc", "svc_search")
	s.Skills[0].Params = append(s.Skills[0].Params, Param{Name: "q", Type: "string"})
	if err := s.Validate(); err == nil {
		t.Fatalf("expected error for duplicate parameter name")
	}
}

func TestRegistryRejectsCrossSchemaSkillCollision(t *testing.T) {
	reg := NewRegistry()
	if err := reg.Register(validSchema("a", "shared_skill")); err != nil {
		t.Fatalf("Register(a) error = %v", err)
	}
	err := reg.Register(validSchema("b", "shared_skill"))
	if err == nil {
		t.Fatalf("expected cross-schema skill id collision to fail")
	}
	if !strings.Contains(err.Error(), "shared_skill") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestRegistryRejectsDuplicateSchema(t *testing.T) {
	reg := NewRegistry()
	if err := reg.Register(validSchema("a", "a_one")); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if err := reg.Register(validSchema("a", "a_two")); err == nil {
		t.Fatalf("expected duplicate schema id to fail")
	}
}

func TestRegistryOwnerOfSkill(t *testing.T) {
	reg := NewRegistry()
	reg.MustRegister(validSchema("a", "a_one"), validSchema("b", "b_one"))

	owner, ok := reg.OwnerOfSkill("b_one")
	if !ok || owner.ID != "b" {
		t.Fatalf("OwnerOfSkill(b_one) = %v, %v", owner, ok)
	}
	if _, ok := reg.OwnerOfSkill("nope"); ok {
		t.Fatalf("expected unknown skill to have no owner")
	}
}

func TestRegistryAllSorted(t *testing.T) {
	reg := NewRegistry()
	reg.MustRegister(validSchema("zeta", "z_one"), validSchema("alpha", "a_one"))

	all := reg.All()
	if len(all) != 2 || all[0].ID != "alpha" || all[1].ID != "zeta" {
		t.Fatalf("All() not sorted: %v", all)
	}
}

func TestRequiredParams(t *testing.T) {
	sk := Skill{
		ID: "s",
		Params: []Param{
			{Name: "a", Required: true},
			{Name: "b"},
			{Name: "c", Required: true},
		},
	}
	got := sk.RequiredParams()
	if len(got) != 2 || got[0] != "a" || got[1] != "c" {
		t.Fatalf("RequiredParams() = %v", got)
	}
}
