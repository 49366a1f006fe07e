package target

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSecretsTemplate_Pattern(t *testing.T) {
	tmpl := SecretsTemplate()

	tests := []struct {
		filename string
		wantName string
		wantOK   bool
	}{
		{"prod.secrets.yaml", "prod", true},
		{"prod.secrets.yml", "prod", true},
		{"prod.yaml", "", false},
		{"prod.properties", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			name, ok := tmpl.ExtractName(tt.filename)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantName, name)
		})
	}
}

func TestFlattenValue(t *testing.T) {
	doc := map[string]any{
		"host": "db.internal",
		"port": 5432,
		"tls": map[string]any{
			"enabled": true,
			"ca":      nil,
		},
		"replicas": []any{"a", "b"},
	}

	out := make(map[string]string)
	flattenValue("", doc, out)

	assert.Equal(t, map[string]string{
		"host":        "db.internal",
		"port":        "5432",
		"tls.enabled": "true",
		"tls.ca":      "",
		"replicas.0":  "a",
		"replicas.1":  "b",
	}, out)
}

func TestSecretsLoader_RejectsUnencrypted(t *testing.T) {
	// Plain YAML carries no sops metadata, so decryption refuses it.
	_, err := SecretsLoader([]byte("host: db.internal\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sops decrypt")
}
