// Package scenario holds the static catalog of canned market scenarios.
package scenario

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"chart-coach-be/internal/entity"
	"chart-coach-be/internal/pkg/apperror"

	"gopkg.in/yaml.v3"
)

//go:embed scenarios.yaml
var embedded []byte

type Scenario struct {
	ID           string `yaml:"id"`
	Title        string `yaml:"title"`
	Description  string `yaml:"description"`
	TldrResponse string `yaml:"tldr"`
	FullResponse string `yaml:"full"`
}

// Response returns the canned reply for mode; anything but full is terse.
func (s Scenario) Response(mode entity.ResponseMode) string {
	if mode == entity.ResponseModeFull {
		return s.FullResponse
	}
	return s.TldrResponse
}

type file struct {
	Scenarios []Scenario `yaml:"scenarios"`
}

// Catalog is read-only after construction and safe for concurrent use.
type Catalog struct {
	scenarios []Scenario
	byID      map[string]int
}

// Parse builds a catalog from YAML. Ids must be unique and both responses present.
func Parse(data []byte) (*Catalog, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse scenario catalog: %w", err)
	}
	if len(f.Scenarios) == 0 {
		return nil, fmt.Errorf("scenario catalog is empty")
	}

	c := &Catalog{
		scenarios: make([]Scenario, 0, len(f.Scenarios)),
		byID:      make(map[string]int, len(f.Scenarios)),
	}
	for i, s := range f.Scenarios {
		s.ID = strings.TrimSpace(s.ID)
		switch {
		case s.ID == "":
			return nil, fmt.Errorf("scenario #%d has no id", i+1)
		case strings.TrimSpace(s.TldrResponse) == "" || strings.TrimSpace(s.FullResponse) == "":
			return nil, fmt.Errorf("scenario %q needs both tldr and full responses", s.ID)
		}
		if _, dup := c.byID[s.ID]; dup {
			return nil, fmt.Errorf("duplicate scenario id %q", s.ID)
		}
		c.byID[s.ID] = len(c.scenarios)
		c.scenarios = append(c.scenarios, s)
	}
	return c, nil
}

// Default is the catalog compiled into the binary.
func Default() *Catalog {
	c, err := Parse(embedded)
	if err != nil {
		panic(fmt.Sprintf("embedded scenario catalog: %v", err))
	}
	return c
}

// Load reads path, or returns Default when path is empty.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario catalog: %w", err)
	}
	return Parse(data)
}

func (c *Catalog) Get(id string) (Scenario, bool) {
	i, ok := c.byID[id]
	if !ok {
		return Scenario{}, false
	}
	return c.scenarios[i], true
}

// Lookup is Get with an UnknownScenario error.
func (c *Catalog) Lookup(id string) (Scenario, error) {
	s, ok := c.Get(id)
	if !ok {
		return Scenario{}, apperror.UnknownScenario(id)
	}
	return s, nil
}

// All returns the scenarios in catalog order.
func (c *Catalog) All() []Scenario {
	out := make([]Scenario, len(c.scenarios))
	copy(out, c.scenarios)
	return out
}
