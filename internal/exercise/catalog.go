package exercise

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var catalogYAML []byte

// Info is the display metadata for an exercise.
type Info struct {
	Type Type   `yaml:"type" json:"type"`
	Name string `yaml:"name" json:"name"`
	Reps int    `yaml:"reps" json:"reps"`
	Sets int    `yaml:"sets" json:"sets"`
}

// Catalog is an immutable table of exercise metadata keyed by type.
type Catalog struct {
	order []Type
	byKey map[Type]Info
}

type catalogFile struct {
	Exercises []Info `yaml:"exercises"`
}

// LoadCatalog parses the built-in catalog.
func LoadCatalog() (*Catalog, error) {
	return ParseCatalog(catalogYAML)
}

// ParseCatalog builds a Catalog from YAML. Every entry must name a supported
// type exactly once and carry positive targets.
func ParseCatalog(data []byte) (*Catalog, error) {
	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}

	c := &Catalog{byKey: make(map[Type]Info, len(f.Exercises))}
	for _, info := range f.Exercises {
		if !info.Type.Valid() {
			return nil, fmt.Errorf("catalog: %w: %q", ErrUnknownType, info.Type)
		}
		if _, dup := c.byKey[info.Type]; dup {
			return nil, fmt.Errorf("catalog: duplicate entry for %s", info.Type)
		}
		if info.Reps <= 0 || info.Sets <= 0 {
			return nil, fmt.Errorf("catalog: %s needs positive reps and sets", info.Type)
		}
		c.byKey[info.Type] = info
		c.order = append(c.order, info.Type)
	}
	return c, nil
}

// Get returns the metadata for t.
func (c *Catalog) Get(t Type) (Info, error) {
	info, ok := c.byKey[t]
	if !ok {
		return Info{}, fmt.Errorf("%w: %q", ErrUnknownType, t)
	}
	return info, nil
}

// List returns every entry in catalog order. The slice is a copy.
func (c *Catalog) List() []Info {
	out := make([]Info, 0, len(c.order))
	for _, t := range c.order {
		out = append(out, c.byKey[t])
	}
	return out
}
