package bench

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const modelCardSchema = `{
  "type": "object",
  "required": ["id", "name"],
  "properties": {
    "id": {"type": "string"},
    "name": {"type": "string"}
  }
}`

func writeSchema(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "modelcard.schema.json")
	require.NoError(t, os.WriteFile(path, []byte(modelCardSchema), 0644))
	return path
}

func TestInspector_ExtractsIdentity(t *testing.T) {
	in, err := NewInspector("")
	require.NoError(t, err)

	body := strings.NewReader(`{"id":"3f7b","name":"AlexNet","version":"1.2","metrics":{}}`)
	result, err := in.Inspect(context.Background(), 1, body)
	require.NoError(t, err)

	assert.True(t, result.JSON)
	assert.True(t, result.Valid())
	assert.Equal(t, map[string]string{"id": "3f7b", "name": "AlexNet", "version": "1.2"}, result.Identity)
}

func TestInspector_RewindsBuffer(t *testing.T) {
	in, err := NewInspector("")
	require.NoError(t, err)

	body := strings.NewReader(`{"id":"abc"}`)
	_, _ = body.Seek(0, 2)

	result, err := in.Inspect(context.Background(), 1, body)
	require.NoError(t, err)
	assert.Equal(t, "abc", result.Identity["id"])
}

func TestInspector_NonJSONBody(t *testing.T) {
	in, err := NewInspector("")
	require.NoError(t, err)

	result, err := in.Inspect(context.Background(), 1, strings.NewReader("<html>502 Bad Gateway</html>"))
	require.NoError(t, err)
	assert.False(t, result.JSON)
	assert.True(t, result.Valid())
	assert.Empty(t, result.Identity)
}

func TestInspector_Schema(t *testing.T) {
	in, err := NewInspector(writeSchema(t))
	require.NoError(t, err)

	tests := []struct {
		name  string
		body  string
		valid bool
	}{
		{"valid card", `{"id":"1","name":"ResNet"}`, true},
		{"missing name", `{"id":"1"}`, false},
		{"wrong type", `{"id":1,"name":"ResNet"}`, false},
		{"not json", `oops`, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := in.Inspect(context.Background(), 1, strings.NewReader(tt.body))
			require.NoError(t, err)
			assert.Equal(t, tt.valid, result.Valid(), "errors: %v", result.SchemaErrors)
		})
	}
}

func TestNewInspector_Errors(t *testing.T) {
	_, err := NewInspector(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)

	bad := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"type": 12}`), 0644))
	_, err = NewInspector(bad)
	assert.Error(t, err)
}
