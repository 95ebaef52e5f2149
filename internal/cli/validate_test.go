package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_OK(t *testing.T) {
	path := writeTempFile(t, "query.yaml", simpleDefinition)

	out, _, err := runCommand(t, "validate", path)
	require.NoError(t, err)
	assert.Equal(t, "OK\n", out)
}

func TestValidate_Invalid(t *testing.T) {
	path := writeTempFile(t, "query.yaml", "limit: 10\nskip: -1\n")

	out, _, err := runCommand(t, "validate", path)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "invalid: definition declares nothing to match")
	assert.Contains(t, out, "invalid: skip must be non-negative")
}

func TestValidate_JSON(t *testing.T) {
	path := writeTempFile(t, "query.yaml", simpleDefinition)

	out, _, err := runCommand(t, "--format", "json", "validate", path)
	require.NoError(t, err)

	var resp Response
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)

	data, ok := resp.Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, true, data["valid"])
}

func TestValidate_JSONInvalid(t *testing.T) {
	path := writeTempFile(t, "query.yaml", "exists: true\nnotExists: true\nmatch:\n  - alias: n\n    type: Person\n")

	out, _, err := runCommand(t, "--format", "json", "validate", path)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var resp Response
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	data, ok := resp.Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, false, data["valid"])
	assert.NotEmpty(t, data["errors"])
}

func TestValidate_UnknownField(t *testing.T) {
	path := writeTempFile(t, "query.yaml", "lmiit: 10\n")

	_, _, err := runCommand(t, "validate", path)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}
