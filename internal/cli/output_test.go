package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeResponse(t *testing.T, buf *bytes.Buffer) CLIResponse {
	t.Helper()
	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp), buf.String())
	return resp
}

func TestFormatterSuccess(t *testing.T) {
	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		f := &OutputFormatter{Format: "json", Writer: &buf}
		require.NoError(t, f.Success(ClassifyResult{Linear: true}))

		resp := decodeResponse(t, &buf)
		assert.Equal(t, "ok", resp.Status)
		assert.Nil(t, resp.Error)
		assert.Empty(t, resp.PassID)
		assert.Equal(t, true, resp.Data.(map[string]interface{})["linear"])
	})

	t.Run("text", func(t *testing.T) {
		var buf bytes.Buffer
		f := &OutputFormatter{Format: "text", Writer: &buf}
		require.NoError(t, f.Success("reject (optional)"))
		assert.Equal(t, "reject (optional)\n", buf.String())
	})
}

func TestFormatterSuccessWithPass(t *testing.T) {
	var buf bytes.Buffer
	f := &OutputFormatter{Format: "json", Writer: &buf}
	require.NoError(t, f.SuccessWithPass("pass-7", map[string]int{"linearized": 2}))

	resp := decodeResponse(t, &buf)
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "pass-7", resp.PassID)

	buf.Reset()
	f.Format = "text"
	require.NoError(t, f.SuccessWithPass("pass-7", "(sequence A B)"))
	assert.Equal(t, "(sequence A B)\n", buf.String(), "text output omits the pass ID")
}

func TestFormatterError(t *testing.T) {
	tests := []struct {
		format string
		check  func(t *testing.T, out *bytes.Buffer)
	}{
		{"text", func(t *testing.T, out *bytes.Buffer) {
			assert.Equal(t, "Error [E002]: unclosed list\n", out.String())
		}},
		{"json", func(t *testing.T, out *bytes.Buffer) {
			resp := decodeResponse(t, out)
			assert.Equal(t, "error", resp.Status)
			require.NotNil(t, resp.Error)
			assert.Equal(t, ErrCodeParse, resp.Error.Code)
			assert.Equal(t, "unclosed list", resp.Error.Message)
			assert.Nil(t, resp.Data)
		}},
	}
	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			var buf bytes.Buffer
			f := &OutputFormatter{Format: tt.format, Writer: &buf}
			require.NoError(t, f.Error(ErrCodeParse, "unclosed list"))
			tt.check(t, &buf)
		})
	}
}

func TestFormatterVerboseLog(t *testing.T) {
	var out, diag bytes.Buffer

	quiet := &OutputFormatter{Format: "json", Writer: &out, ErrWriter: &diag}
	quiet.VerboseLog("Loaded dataset %s", "people")
	assert.Empty(t, diag.String())

	loud := &OutputFormatter{Format: "json", Writer: &out, ErrWriter: &diag, Verbose: true}
	loud.VerboseLog("Loaded dataset %s", "people")
	assert.Equal(t, "Loaded dataset people\n", diag.String())
	assert.Empty(t, out.String(), "diagnostics must not mix into JSON output")

	noDiag := &OutputFormatter{Format: "text", Writer: &out, Verbose: true}
	noDiag.VerboseLog("pass %s", "p1")
	assert.Equal(t, "pass p1\n", out.String())
}

func TestExitCodes(t *testing.T) {
	inner := errors.New("boom")
	wrapped := WrapExitError(ExitFailure, "E006", inner)
	assert.Equal(t, ExitFailure, GetExitCode(wrapped))
	assert.ErrorIs(t, wrapped, inner)
	assert.Equal(t, "E006: boom", wrapped.Error())

	assert.Equal(t, ExitCommandError, GetExitCode(fmt.Errorf("ctx: %w", NewExitError(ExitCommandError, "bad path"))))
	assert.Equal(t, ExitFailure, GetExitCode(errors.New("plain")))
	assert.Equal(t, "bad path", NewExitError(ExitCommandError, "bad path").Error())
}
