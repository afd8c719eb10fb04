package chain

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Definitions is the YAML document describing a set of chains:
//
//	chains:
//	  - name: research
//	    description: search then remember
//	    steps:
//	      - tool: search
//	        input: "{input}"
//	        output_key: findings
//	      - tool: memory
//	        input: "action=add,content={findings}"
type Definitions struct {
	Chains []Definition `yaml:"chains"`
}

// Definition describes one chain.
type Definition struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Steps       []Step `yaml:"steps"`
}

// LoadDefinitions decodes chain definitions from r. Unknown fields, missing
// names or tools, and duplicate chain names are rejected.
func LoadDefinitions(r io.Reader) ([]*Chain, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var defs Definitions
	if err := dec.Decode(&defs); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}

		return nil, fmt.Errorf("decode chain definitions: %w", err)
	}

	seen := make(map[string]bool, len(defs.Chains))
	out := make([]*Chain, 0, len(defs.Chains))

	for i, d := range defs.Chains {
		if d.Name == "" {
			return nil, fmt.Errorf("chain %d: name is required", i)
		}

		if seen[d.Name] {
			return nil, fmt.Errorf("chain %q: duplicate name", d.Name)
		}

		seen[d.Name] = true

		c := New(d.Name, d.Description)

		for j, s := range d.Steps {
			if s.ToolName == "" {
				return nil, fmt.Errorf("chain %q step %d: tool is required", d.Name, j)
			}

			c.AddStep(s.ToolName, s.InputTemplate, s.OutputKey)
		}

		out = append(out, c)
	}

	return out, nil
}

// Load registers every chain defined in r.
func (m *Manager) Load(r io.Reader) error {
	chains, err := LoadDefinitions(r)
	if err != nil {
		return err
	}

	for _, c := range chains {
		m.Register(c)
	}

	return nil
}

// LoadFile registers every chain defined in the YAML file at path.
func (m *Manager) LoadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open chain definitions: %w", err)
	}
	defer f.Close()

	return m.Load(f)
}
