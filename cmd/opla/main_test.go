package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"opla/pkg/oplatypes"
)

// execute runs the CLI with an isolated configuration directory.
func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd(viper.New())

	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&bytes.Buffer{})
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(append([]string{"--config-dir", t.TempDir()}, args...))

	err := root.Execute()
	return out.String(), err
}

func TestParseCmd_JSON(t *testing.T) {
	out, err := execute(t, "", "parse", "--json", "hello @gpt-4o #temperature 0.3")
	require.NoError(t, err)

	var parsed struct {
		Text   string `json:"text"`
		Tokens []struct {
			Type  string `json:"type"`
			Value string `json:"value"`
			Index int    `json:"index"`
			State string `json:"state"`
		} `json:"tokens"`
		CurrentTokenIndex int `json:"currentTokenIndex"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &parsed))

	require.Len(t, parsed.Tokens, 5)
	assert.Equal(t, "mention", parsed.Tokens[1].Type)
	assert.Equal(t, "@gpt-4o", parsed.Tokens[1].Value)
	assert.Equal(t, 6, parsed.Tokens[1].Index)
	assert.Equal(t, "ok", parsed.Tokens[1].State)
	assert.Equal(t, "hashtag", parsed.Tokens[3].Type)
	assert.Equal(t, "parameter_value", parsed.Tokens[4].Type)
	assert.Equal(t, " 0.3", parsed.Tokens[4].Value)
	assert.Equal(t, "editing", parsed.Tokens[4].State)
	assert.Equal(t, "hello", parsed.Text)
	assert.Equal(t, 4, parsed.CurrentTokenIndex)
}

func TestParseCmd_Caret(t *testing.T) {
	out, err := execute(t, "", "parse", "--json", "--caret", "3", "@gp")
	require.NoError(t, err)
	assert.Contains(t, out, `"state": "editing"`)

	out, err = execute(t, "", "parse", "--json", "--caret", "6", "@gp hi")
	require.NoError(t, err)
	assert.Contains(t, out, `"state": "error"`)
}

func TestParseCmd_Table(t *testing.T) {
	out, err := execute(t, "", "parse", "--theme", "plain", "/system", "be", "brief")
	require.NoError(t, err)
	assert.Contains(t, out, "/system be brief\n")
	assert.Contains(t, out, "TYPE")
	assert.Contains(t, out, "action")
	assert.Contains(t, out, `text: "be brief"`)
}

func TestParseCmd_Stdin(t *testing.T) {
	out, err := execute(t, "line one\nline two\n", "parse", "--json", "-")
	require.NoError(t, err)
	assert.Contains(t, out, `"raw": "line one\nline two"`)
	assert.Contains(t, out, `"type": "newline"`)
}

func TestCompileCmd(t *testing.T) {
	out, err := execute(t, "", "compile", "@gpt-4o", "#max_tokens", "64", "summarize", "this")
	require.NoError(t, err)

	var request oplatypes.PromptRequest
	require.NoError(t, json.Unmarshal([]byte(out), &request))
	assert.Equal(t, "gpt-4o", request.Model)
	assert.Equal(t, "summarize this", request.Message)
	assert.Equal(t, float64(64), request.Parameters["max_tokens"])
}

func TestCompileCmd_DefaultModelFlag(t *testing.T) {
	out, err := execute(t, "", "--default-model", "mistral-7b", "compile", "hi")
	require.NoError(t, err)
	assert.Contains(t, out, `"model": "mistral-7b"`)
}

func TestCompileCmd_Refused(t *testing.T) {
	_, err := execute(t, "", "compile", "@nobody", "hi")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid prompt")
	assert.Contains(t, err.Error(), "@nobody")

	_, err = execute(t, "", "compile", "   ")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty prompt")
}

func TestCommandsCmd(t *testing.T) {
	out, err := execute(t, "", "commands", "--raw", "--type", "/")
	require.NoError(t, err)
	assert.Contains(t, out, "## Actions")
	assert.Contains(t, out, "`/system`")
	assert.NotContains(t, out, "## Models")

	out, err = execute(t, "", "commands", "--raw", "--type", "hashtag", "tempe")
	require.NoError(t, err)
	assert.Contains(t, out, "`#temperature`")
	assert.NotContains(t, out, "`#stream`")

	out, err = execute(t, "", "commands", "--theme", "plain", "--width", "60")
	require.NoError(t, err)
	assert.Contains(t, out, "@gpt-4o")
	assert.Contains(t, out, "#temperature")

	_, err = execute(t, "", "commands", "--type", "emoji")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown command type")
}

func TestCommandsCmd_CatalogDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "models.yaml"),
		[]byte("models:\n  - name: house-model\n    provider: llama.cpp\n"), 0600))

	out, err := execute(t, "", "--catalog-dir", dir, "commands", "--raw", "--type", "@")
	require.NoError(t, err)
	assert.Contains(t, out, "`@house-model`")
	assert.NotContains(t, out, "gpt-4o")
}

func TestConfigCmd(t *testing.T) {
	out, err := execute(t, "", "--theme", "dark", "config")
	require.NoError(t, err)
	assert.Contains(t, out, "theme = dark\n")
	assert.Contains(t, out, "log-level = warn\n")
	assert.Contains(t, out, "config file:  (loaded: false)")
}

func TestVersionCmd(t *testing.T) {
	out, err := execute(t, "", "--catalog-dir", filepath.Join(t.TempDir(), "missing"), "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "opla v"), out)

	out, err = execute(t, "", "version", "--detailed")
	require.NoError(t, err)
	assert.Contains(t, out, "Go Version: ")
	assert.Contains(t, out, "Development Build: ")
}

func TestRootCmd_BadCatalogDir(t *testing.T) {
	_, err := execute(t, "", "--catalog-dir", filepath.Join(t.TempDir(), "missing"), "commands")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to initialize services")
}

func TestParseCommandType(t *testing.T) {
	tests := map[string]oplatypes.CommandType{
		"":        "",
		"@":       oplatypes.CommandTypeMention,
		"models":  oplatypes.CommandTypeMention,
		"Hashtag": oplatypes.CommandTypeHashtag,
		"#":       oplatypes.CommandTypeHashtag,
		"/":       oplatypes.CommandTypeAction,
		"action":  oplatypes.CommandTypeAction,
	}
	for name, expected := range tests {
		got, err := parseCommandType(name)
		require.NoError(t, err, name)
		assert.Equal(t, expected, got, name)
	}
}
