package services

import (
	"strings"
	"testing"

	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"opla/internal/parser"
	"opla/pkg/oplatypes"
)

func newTestRenderService(t *testing.T) *RenderService {
	t.Helper()
	service := NewRenderService(newTestThemeService(t), "default")
	require.NoError(t, service.Initialize())
	return service
}

func TestRenderService_Name(t *testing.T) {
	assert.Equal(t, "render", NewRenderService(nil, "").Name())
}

func TestRenderService_Initialize(t *testing.T) {
	err := NewRenderService(NewThemeService(nil), "default").Initialize()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "theme service not initialized")

	service := newTestRenderService(t)
	assert.Equal(t, "default", service.Theme().Name)

	require.NoError(t, service.SetTheme("plain"))
	assert.Equal(t, "plain", service.Theme().Name)
}

func TestRenderService_NotInitialized(t *testing.T) {
	service := NewRenderService(newTestThemeService(t), "default")

	_, err := service.RenderPrompt(oplatypes.ParsedPrompt{})
	assert.Error(t, err)
	_, err = service.Describe(oplatypes.ParsedPrompt{})
	assert.Error(t, err)
	_, err = service.RenderSuggestions(nil, 0)
	assert.Error(t, err)
	assert.Error(t, service.SetTheme("dark"))
}

func TestRenderService_RenderPrompt(t *testing.T) {
	service := newTestRenderService(t)
	commands := newLoadedCommandService(t)

	inputs := []string{
		"@llama3 #temperature 0.5 tell me\na joke",
		"/system\tbe brief @phi3",
		"@nobody  #stream   hi",
		"",
	}

	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			parsed := parser.ParsePrompt(parser.PromptInput{Text: input}, commands)
			rendered, err := service.RenderPrompt(parsed)
			require.NoError(t, err)
			assert.Equal(t, input, ansi.Strip(rendered))
		})
	}
}

func TestRenderService_RenderSuggestions(t *testing.T) {
	service := newTestRenderService(t)
	commands := newLoadedCommandService(t).Filter("@", oplatypes.CommandTypeMention)

	rendered, err := service.RenderSuggestions(commands, 0)
	require.NoError(t, err)

	lines := strings.Split(ansi.Strip(rendered), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "@gpt-4o         gpt-4o", lines[0])
	assert.Equal(t, "@llama3         Llama 3", lines[1])
	assert.Equal(t, "@gpt-3.5-turbo  gpt-3.5-turbo (disabled)", lines[3])

	empty, err := service.RenderSuggestions(nil, 0)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestRenderService_Describe(t *testing.T) {
	service := newTestRenderService(t)
	parsed := parser.ParsePrompt(parser.PromptInput{Text: "@llama3 hi", CaretStartIndex: 9}, newLoadedCommandService(t))

	described, err := service.Describe(parsed)
	require.NoError(t, err)

	plain := ansi.Strip(described)
	for _, want := range []string{"TYPE", "VALUE", "STATE", "mention", `"@llama3"`, "ok", "text", `" hi"`, "1*"} {
		assert.Contains(t, plain, want)
	}
}
