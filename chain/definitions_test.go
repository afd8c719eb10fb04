package chain

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleDefinitions = `
chains:
  - name: shout
    description: upper then wrap
    steps:
      - tool: upper
        input: "{input}"
        output_key: loud
      - tool: wrap
        input: "{loud}"
  - name: single
    steps:
      - tool: wrap
        input: "[{input}]"
`

func TestLoadDefinitions(t *testing.T) {
	chains, err := LoadDefinitions(strings.NewReader(sampleDefinitions))
	require.NoError(t, err)
	require.Len(t, chains, 2)

	assert.Equal(t, "shout", chains[0].Name)
	assert.Equal(t, "upper then wrap", chains[0].Description)
	assert.Equal(t, []Step{
		{ToolName: "upper", InputTemplate: "{input}", OutputKey: "loud"},
		{ToolName: "wrap", InputTemplate: "{loud}", OutputKey: "step_1_result"},
	}, chains[0].Steps)
	assert.Equal(t, "single", chains[1].Name)
}

func TestLoadDefinitions_Errors(t *testing.T) {
	cases := map[string]string{
		"missing name":  "chains:\n  - steps: []\n",
		"missing tool":  "chains:\n  - name: x\n    steps:\n      - input: \"{input}\"\n",
		"duplicate":     "chains:\n  - name: x\n  - name: x\n",
		"unknown field": "chains:\n  - name: x\n    retries: 3\n",
		"bad yaml":      "chains: [",
	}

	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := LoadDefinitions(strings.NewReader(doc))
			assert.Error(t, err)
		})
	}
}

func TestLoadDefinitions_EmptyDocument(t *testing.T) {
	chains, err := LoadDefinitions(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, chains)
}

func TestManager_LoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chains.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleDefinitions), 0o600))

	rec := &recordingTool{}
	m := NewManager(newTestRegistry(rec))
	require.NoError(t, m.LoadFile(path))

	assert.Equal(t, []string{"shout", "single"}, m.List())

	out, err := m.Execute(context.Background(), "shout", "hi", nil)
	require.NoError(t, err)
	assert.Equal(t, "<HI>", out)

	assert.Error(t, m.LoadFile(filepath.Join(t.TempDir(), "missing.yaml")))
}
