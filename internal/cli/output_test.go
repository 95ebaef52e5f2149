package cli

import (
	"bytes"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"exit error", WrapExitError(ExitCommandError, "bad input", nil), ExitCommandError},
		{"wrapped exit error", fmt.Errorf("outer: %w", WrapExitError(ExitFailure, "inner", nil)), ExitFailure},
		{"plain error", errors.New("boom"), ExitFailure},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, GetExitCode(tc.err))
		})
	}
}

func TestExitError_Error(t *testing.T) {
	err := WrapExitError(ExitFailure, "compilation failed", errors.New("bad alias"))
	assert.Equal(t, "compilation failed: bad alias", err.Error())

	bare := WrapExitError(ExitCommandError, "missing file", nil)
	assert.Equal(t, "missing file", bare.Error())
}

func TestExitError_Unwrap(t *testing.T) {
	inner := errors.New("inner")
	err := WrapExitError(ExitFailure, "outer", inner)
	assert.ErrorIs(t, err, inner)
}

func TestOutputFormatter_ErrorText(t *testing.T) {
	var buf bytes.Buffer
	f := &OutputFormatter{Format: "text", Writer: &buf}
	assert.NoError(t, f.Error("something broke"))
	assert.Equal(t, "Error: something broke\n", buf.String())
}

func TestOutputFormatter_ErrorJSON(t *testing.T) {
	var buf bytes.Buffer
	f := &OutputFormatter{Format: "json", Writer: &buf}
	assert.NoError(t, f.Error("something broke"))
	assert.JSONEq(t, `{"status":"error","error":"something broke"}`, buf.String())
}

func TestOutputFormatter_VerboseLog(t *testing.T) {
	var out, errOut bytes.Buffer
	f := &OutputFormatter{Format: "json", Writer: &out, ErrWriter: &errOut, Verbose: true}
	f.VerboseLog("loaded %d items", 3)
	assert.Empty(t, out.String())
	assert.Equal(t, "loaded 3 items\n", errOut.String())

	errOut.Reset()
	f.Verbose = false
	f.VerboseLog("suppressed")
	assert.Empty(t, errOut.String())
}
