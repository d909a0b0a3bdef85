// Package routefile reads approval route definitions from YAML files.
package routefile

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"

	"github.com/example/docroute/internal/ports/secondary"
)

var schemaLoader = gojsonschema.NewStringLoader(routeFileSchema)

type fileDoc struct {
	Routes []routeDoc `yaml:"routes"`
}

type routeDoc struct {
	Name  string    `yaml:"name"`
	Steps []stepDoc `yaml:"steps"`
}

type stepDoc struct {
	Order         int      `yaml:"order"`
	Approvers     []string `yaml:"approvers"`
	DeadlineHours int      `yaml:"deadline_hours"`
}

// Loader implements secondary.RouteDefinitionSource for YAML files.
type Loader struct{}

// NewLoader creates a new route file loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Load reads the file at path and returns its route definitions.
func (l *Loader) Load(ctx context.Context, path string) ([]secondary.RouteDefinition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read route file: %w", err)
	}
	defs, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return defs, nil
}

// Parse decodes and validates a YAML route definition document.
// Definitions come back in file order.
func Parse(data []byte) ([]secondary.RouteDefinition, error) {
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse route file: %w", err)
	}
	if err := validate(raw); err != nil {
		return nil, err
	}

	var doc fileDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode route file: %w", err)
	}

	seen := make(map[string]bool, len(doc.Routes))
	defs := make([]secondary.RouteDefinition, 0, len(doc.Routes))
	for _, r := range doc.Routes {
		if seen[r.Name] {
			return nil, fmt.Errorf("route %q defined more than once", r.Name)
		}
		seen[r.Name] = true

		def := secondary.RouteDefinition{Name: r.Name}
		for _, s := range r.Steps {
			def.Steps = append(def.Steps, secondary.RouteStepRecord{
				Order:         s.Order,
				ApproverIDs:   s.Approvers,
				DeadlineHours: s.DeadlineHours,
			})
		}
		defs = append(defs, def)
	}
	return defs, nil
}

func validate(raw any) error {
	result, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewGoLoader(raw))
	if err != nil {
		return fmt.Errorf("schema validation error: %w", err)
	}
	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			msgs = append(msgs, e.String())
		}
		return fmt.Errorf("route file does not conform to schema: %s", strings.Join(msgs, "; "))
	}
	return nil
}

// Ensure Loader implements the interface
var _ secondary.RouteDefinitionSource = (*Loader)(nil)
