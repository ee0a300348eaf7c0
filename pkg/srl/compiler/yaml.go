package compiler

import (
	"gopkg.in/yaml.v3"
)

// decodeDocument decodes YAML bytes into the raw generic tree the shape
// evaluator consumes. The decoder is the only place the text format
// appears; everything past this point works on maps, sequences and
// scalars.
func decodeDocument(data []byte) (map[string]any, error) {
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, err
	}

	var raw map[string]any
	if err := node.Decode(&raw); err != nil {
		return nil, err
	}

	return raw, nil
}
