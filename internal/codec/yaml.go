package codec

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"fabricsim/internal/domain"
)

// YAMLCodec handles YAML import/export
type YAMLCodec struct{}

// NewYAMLCodec creates a new YAML codec
func NewYAMLCodec() *YAMLCodec {
	return &YAMLCodec{}
}

// Format returns the codec format identifier
func (c *YAMLCodec) Format() string {
	return "yaml"
}

// Parse imports a topology snapshot from YAML
func (c *YAMLCodec) Parse(r io.Reader) (*domain.Topology, error) {
	var s snapshot
	decoder := yaml.NewDecoder(r)
	if err := decoder.Decode(&s); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	return s.toTopology()
}

// Export exports a topology snapshot to YAML
func (c *YAMLCodec) Export(t *domain.Topology, w io.Writer) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	defer encoder.Close()

	if err := encoder.Encode(toSnapshot(t)); err != nil {
		return fmt.Errorf("failed to encode YAML: %w", err)
	}

	return nil
}
