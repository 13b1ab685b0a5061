package services

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"opla/pkg/oplatypes"
)

func testCatalog() oplatypes.Catalog {
	return oplatypes.Catalog{
		Models: []oplatypes.ModelCatalogEntry{
			{Name: "llama3", DisplayName: "Llama 3", Provider: "llama.cpp"},
			{Name: "phi3", Provider: "llama.cpp"},
			{Name: "gpt-4o", Provider: "openai"},
			{Name: "gpt-3.5-turbo", Provider: "openai", Deprecated: true},
		},
		Parameters: []oplatypes.ParameterDefinition{
			{Name: "temperature", Type: "float"},
			{Name: "max_tokens", Type: "int"},
			{Name: "stop", Type: "string"},
			{Name: "response_format", Type: "enum"},
			{Name: "stream", Type: "bool"},
		},
		Actions: []oplatypes.ActionDefinition{
			{Name: "system", Label: "System prompt", BlockOtherCommands: true},
			{Name: "clear"},
		},
	}
}

func newLoadedCommandService(t *testing.T) *CommandService {
	t.Helper()
	service := NewCommandService()
	require.NoError(t, service.Initialize())
	require.NoError(t, service.LoadCatalog(testCatalog()))
	return service
}

func TestCommandService_Name(t *testing.T) {
	assert.Equal(t, "command", NewCommandService().Name())
}

func TestCommandService_LoadCatalog(t *testing.T) {
	service := newLoadedCommandService(t)
	assert.Equal(t, 11, service.Count())

	tests := []struct {
		name      string
		value     string
		cmdType   oplatypes.CommandType
		wantGroup oplatypes.CommandGroup
		wantLabel string
		wantTag   string
		disabled  bool
		blocking  bool
	}{
		{name: "model", value: "@llama3", cmdType: oplatypes.CommandTypeMention, wantGroup: oplatypes.CommandGroupModels, wantLabel: "Llama 3", wantTag: "llama.cpp"},
		{name: "model label falls back to name", value: "@phi3", cmdType: oplatypes.CommandTypeMention, wantGroup: oplatypes.CommandGroupModels, wantLabel: "phi3", wantTag: "llama.cpp"},
		{name: "deprecated model", value: "@gpt-3.5-turbo", cmdType: oplatypes.CommandTypeMention, wantGroup: oplatypes.CommandGroupModels, wantLabel: "gpt-3.5-turbo", wantTag: "openai", disabled: true},
		{name: "float parameter", value: "#temperature", cmdType: oplatypes.CommandTypeHashtag, wantGroup: oplatypes.CommandGroupParametersNumber, wantLabel: "temperature"},
		{name: "int parameter", value: "#max_tokens", cmdType: oplatypes.CommandTypeHashtag, wantGroup: oplatypes.CommandGroupParametersNumber, wantLabel: "max_tokens"},
		{name: "string parameter", value: "#stop", cmdType: oplatypes.CommandTypeHashtag, wantGroup: oplatypes.CommandGroupParametersString, wantLabel: "stop"},
		{name: "enum parameter", value: "#response_format", cmdType: oplatypes.CommandTypeHashtag, wantGroup: oplatypes.CommandGroupParametersString, wantLabel: "response_format"},
		{name: "boolean parameter", value: "#stream", cmdType: oplatypes.CommandTypeHashtag, wantGroup: oplatypes.CommandGroupParametersBoolean, wantLabel: "stream"},
		{name: "blocking action", value: "/system", cmdType: oplatypes.CommandTypeAction, wantGroup: oplatypes.CommandGroupActions, wantLabel: "System prompt", blocking: true},
		{name: "non-blocking action", value: "/clear", cmdType: oplatypes.CommandTypeAction, wantGroup: oplatypes.CommandGroupActions, wantLabel: "clear"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := service.GetCommand(tt.value, tt.cmdType)
			require.NotNil(t, cmd)
			assert.NotEmpty(t, cmd.Key)
			assert.Equal(t, tt.wantGroup, cmd.Group)
			assert.Equal(t, tt.wantLabel, cmd.Label)
			assert.Equal(t, tt.wantTag, cmd.Tag)
			assert.Equal(t, tt.disabled, cmd.Disabled)
			assert.Equal(t, tt.blocking, cmd.BlocksOtherCommands())
		})
	}
}

func TestCommandService_GetCommand(t *testing.T) {
	service := newLoadedCommandService(t)

	tests := []struct {
		name    string
		value   string
		cmdType oplatypes.CommandType
		tag     []string
		found   bool
	}{
		{name: "exact match", value: "@llama3", cmdType: oplatypes.CommandTypeMention, found: true},
		{name: "case sensitive", value: "@Llama3", cmdType: oplatypes.CommandTypeMention},
		{name: "prefix is not a match", value: "@llama", cmdType: oplatypes.CommandTypeMention},
		{name: "wrong type", value: "@llama3", cmdType: oplatypes.CommandTypeHashtag},
		{name: "without sigil", value: "llama3", cmdType: oplatypes.CommandTypeMention},
		{name: "matching tag", value: "@gpt-4o", cmdType: oplatypes.CommandTypeMention, tag: []string{"openai"}, found: true},
		{name: "other tag", value: "@gpt-4o", cmdType: oplatypes.CommandTypeMention, tag: []string{"llama.cpp"}},
		{name: "empty tag ignored", value: "@gpt-4o", cmdType: oplatypes.CommandTypeMention, tag: []string{""}, found: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := service.GetCommand(tt.value, tt.cmdType, tt.tag...)
			if !tt.found {
				assert.Nil(t, cmd)
				return
			}
			require.NotNil(t, cmd)
			assert.Equal(t, tt.value, cmd.Value)
		})
	}
}

func TestCommandService_GetCommandReturnsCopy(t *testing.T) {
	service := newLoadedCommandService(t)

	cmd := service.GetCommand("@llama3", oplatypes.CommandTypeMention)
	require.NotNil(t, cmd)
	cmd.Disabled = true

	again := service.GetCommand("@llama3", oplatypes.CommandTypeMention)
	require.NotNil(t, again)
	assert.False(t, again.Disabled)
}

func TestCommandService_Register(t *testing.T) {
	service := NewCommandService()
	require.NoError(t, service.Initialize())

	tests := []struct {
		name    string
		cmd     oplatypes.Command
		wantErr string
	}{
		{name: "valid", cmd: oplatypes.Command{Value: "@local", Type: oplatypes.CommandTypeMention}},
		{name: "duplicate", cmd: oplatypes.Command{Value: "@local", Type: oplatypes.CommandTypeMention}, wantErr: "already registered"},
		{name: "same value other type", cmd: oplatypes.Command{Value: "#local", Type: oplatypes.CommandTypeHashtag}},
		{name: "sigil mismatch", cmd: oplatypes.Command{Value: "#seed", Type: oplatypes.CommandTypeMention}, wantErr: "must start with"},
		{name: "empty name", cmd: oplatypes.Command{Value: "/", Type: oplatypes.CommandTypeAction}, wantErr: "cannot be empty"},
		{name: "unknown type", cmd: oplatypes.Command{Value: "!x", Type: "bang"}, wantErr: "unknown type"},
		{name: "space in name", cmd: oplatypes.Command{Value: "/two words", Type: oplatypes.CommandTypeAction}, wantErr: "not allowed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := service.Register(tt.cmd)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
		})
	}

	t.Run("explicit key is kept", func(t *testing.T) {
		require.NoError(t, service.Register(oplatypes.Command{Key: "k1", Value: "/keyed", Type: oplatypes.CommandTypeAction}))
		cmd := service.GetCommand("/keyed", oplatypes.CommandTypeAction)
		require.NotNil(t, cmd)
		assert.Equal(t, "k1", cmd.Key)
	})
}

func TestCommandService_UnregisterAndSetDisabled(t *testing.T) {
	service := newLoadedCommandService(t)

	require.NoError(t, service.SetDisabled("@llama3", oplatypes.CommandTypeMention, true))
	cmd := service.GetCommand("@llama3", oplatypes.CommandTypeMention)
	require.NotNil(t, cmd)
	assert.True(t, cmd.Disabled)

	err := service.SetDisabled("@missing", oplatypes.CommandTypeMention, true)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown command")

	service.Unregister("@llama3", oplatypes.CommandTypeMention)
	assert.Nil(t, service.GetCommand("@llama3", oplatypes.CommandTypeMention))
	service.Unregister("@llama3", oplatypes.CommandTypeMention)
}

func TestCommandService_Commands(t *testing.T) {
	service := newLoadedCommandService(t)

	actions := service.Commands(oplatypes.CommandTypeAction)
	require.Len(t, actions, 2)
	assert.Equal(t, "/clear", actions[0].Value)
	assert.Equal(t, "/system", actions[1].Value)

	all := service.Commands("")
	require.Len(t, all, 11)
	assert.Equal(t, oplatypes.CommandTypeAction, all[0].Type)
	assert.Equal(t, oplatypes.CommandTypeMention, all[2].Type)
	assert.Equal(t, oplatypes.CommandTypeHashtag, all[len(all)-1].Type)
}

func TestCommandService_Filter(t *testing.T) {
	service := newLoadedCommandService(t)

	t.Run("empty query lists disabled last", func(t *testing.T) {
		mentions := service.Filter("@", oplatypes.CommandTypeMention)
		require.Len(t, mentions, 4)
		assert.Equal(t, "@gpt-3.5-turbo", mentions[3].Value)
		for _, cmd := range mentions[:3] {
			assert.False(t, cmd.Disabled)
		}
	})

	t.Run("fuzzy match", func(t *testing.T) {
		hashtags := service.Filter("#temp", oplatypes.CommandTypeHashtag)
		require.NotEmpty(t, hashtags)
		assert.Equal(t, "#temperature", hashtags[0].Value)
	})

	t.Run("query without sigil", func(t *testing.T) {
		mentions := service.Filter("gpt", oplatypes.CommandTypeMention)
		require.Len(t, mentions, 2)
		assert.Equal(t, "@gpt-4o", mentions[0].Value)
		assert.Equal(t, "@gpt-3.5-turbo", mentions[1].Value)
	})

	t.Run("no match", func(t *testing.T) {
		assert.Empty(t, service.Filter("/zzz", oplatypes.CommandTypeAction))
	})
}

func TestCommandService_ConcurrentAccess(t *testing.T) {
	service := newLoadedCommandService(t)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = service.SetDisabled("@phi3", oplatypes.CommandTypeMention, true)
		}()
		go func() {
			defer wg.Done()
			_ = service.GetCommand("@phi3", oplatypes.CommandTypeMention)
			_ = service.Filter("p", oplatypes.CommandTypeMention)
		}()
	}
	wg.Wait()

	cmd := service.GetCommand("@phi3", oplatypes.CommandTypeMention)
	require.NotNil(t, cmd)
	assert.True(t, cmd.Disabled)
}
