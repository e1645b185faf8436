package capability

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Catalog is the YAML document shape for declarative schema files. It
// exists so external processes (and operators) can introspect or extend
// the skill surface without recompiling.
type Catalog struct {
	Integrations []*Schema `yaml:"integrations"`
}

// LoadCatalog parses a YAML catalog file and registers every schema it
// declares into reg. Any invalid schema aborts the load.
func LoadCatalog(path string, reg *Registry) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("capability: read catalog: %w", err)
	}
	return ParseCatalog(data, reg)
}

func ParseCatalog(data []byte, reg *Registry) (*Catalog, error) {
	var cat Catalog
	if err := yaml.Unmarshal(data, &cat); err != nil {
		return nil, fmt.Errorf("capability: parse catalog: %w", err)
	}
	if len(cat.Integrations) == 0 {
		return nil, fmt.Errorf("capability: catalog declares no integrations")
	}
	if reg != nil {
		for _, s := range cat.Integrations {
			if err := reg.Register(s); err != nil {
				return nil, err
			}
		}
	}
	return &cat, nil
}
