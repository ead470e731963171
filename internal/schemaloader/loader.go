// Package schemaloader provides a YAML-backed cube.DefinitionLoader: it
// reads a cube's dimensions, measures, and fact rows from a schema file so a
// caller (cmd/server, a test fixture) never has to hand-build a
// domain.Definition in Go.
package schemaloader

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	domain "cubeengine/internal/core/domain/cube"
)

// YAMLLoader implements domain.DefinitionLoader by reading a single YAML
// file describing one cube.
type YAMLLoader struct{}

// New constructs a YAMLLoader.
func New() *YAMLLoader { return &YAMLLoader{} }

// fileSchema mirrors the on-disk YAML shape; it is translated into
// domain.Definition by Load.
type fileSchema struct {
	Name       string          `yaml:"name"`
	Dimensions []dimensionSpec `yaml:"dimensions"`
	Measures   []measureSpec   `yaml:"measures"`
	Facts      []factSpec      `yaml:"facts"`
}

type dimensionSpec struct {
	Name      string   `yaml:"name"`
	Label     string   `yaml:"label"`
	Hierarchy []string `yaml:"hierarchy"`
}

type measureSpec struct {
	Name       string `yaml:"name"`
	Label      string `yaml:"label"`
	Format     string `yaml:"format"`
	ValueField string `yaml:"valueField"`
	Kind       string `yaml:"kind"`
}

type factSpec struct {
	Levels  map[string]any `yaml:"levels"`
	Metrics map[string]any `yaml:"metrics"`
}

// Load reads and parses source as a cube schema file, translating it into a
// domain.Definition. It does not call Validate; the caller's registry does
// that at registration time.
func (l *YAMLLoader) Load(source string) (domain.Definition, error) {
	data, err := os.ReadFile(source)
	if err != nil {
		return domain.Definition{}, fmt.Errorf("failed to read cube schema %s: %w", source, err)
	}

	var schema fileSchema
	if err := yaml.Unmarshal(data, &schema); err != nil {
		return domain.Definition{}, fmt.Errorf("failed to parse cube schema %s: %w", source, err)
	}

	def := domain.Definition{Name: schema.Name}

	for _, d := range schema.Dimensions {
		def.Dimensions = append(def.Dimensions, domain.Dimension{
			Name: d.Name, Label: d.Label, Hierarchy: d.Hierarchy,
		})
	}
	for _, m := range schema.Measures {
		def.Measures = append(def.Measures, domain.Measure{
			Name: m.Name, Label: m.Label, Format: m.Format,
			ValueField: m.ValueField, Kind: domain.AggregationKind(m.Kind),
		})
	}
	for _, f := range schema.Facts {
		row := domain.FactRow{
			Levels:  make(map[string]domain.Scalar, len(f.Levels)),
			Metrics: make(map[string]domain.Scalar, len(f.Metrics)),
		}
		for dimLevel, v := range f.Levels {
			row.Levels[dimLevel] = toScalar(v)
		}
		for field, v := range f.Metrics {
			row.Metrics[field] = toScalar(v)
		}
		def.Facts = append(def.Facts, row)
	}

	return def, nil
}

// toScalar converts a YAML-decoded value (string, int, float64, nil) into a
// domain.Scalar.
func toScalar(v any) domain.Scalar {
	switch t := v.(type) {
	case nil:
		return domain.Null
	case string:
		return domain.StringScalar(t)
	case int:
		return domain.NumberScalar(float64(t))
	case int64:
		return domain.NumberScalar(float64(t))
	case float64:
		return domain.NumberScalar(t)
	default:
		return domain.StringScalar(fmt.Sprintf("%v", t))
	}
}

var _ domain.DefinitionLoader = (*YAMLLoader)(nil)
