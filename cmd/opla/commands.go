package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/spf13/cobra"

	"opla/internal/services"
	"opla/internal/tui"
	"opla/internal/version"
	"opla/pkg/oplatypes"
)

func newParseCmd(a *app) *cobra.Command {
	var caret int
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "parse [text...]",
		Short: "Tokenize a prompt and show the state of every token",
		Long: `Tokenize a prompt and show each token with its type, position and validation state.
The prompt is read from the arguments, or from stdin when none are given or the only
argument is "-". The caret defaults to the end of the prompt.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readPrompt(cmd, args)
			if err != nil {
				return err
			}
			if caret < 0 {
				caret = utf8.RuneCountInString(text)
			}

			parsed, err := a.services.Prompt.Parse(text, caret)
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), parsed)
			}

			preview, err := a.services.Render.RenderPrompt(parsed)
			if err != nil {
				return err
			}
			table, err := a.services.Render.Describe(parsed)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, preview)
			fmt.Fprintln(out, table)
			fmt.Fprintf(out, "text: %q\n", parsed.Text)
			return nil
		},
	}
	cmd.Flags().IntVar(&caret, "caret", -1, "Caret rune offset [default: end of prompt]")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the parsed prompt as JSON")
	return cmd
}

func newCompileCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "compile [text...]",
		Short: "Compile a prompt into a JSON request",
		Long: `Compile a prompt into a request with its model, action, coerced parameters and message.
Prompts with unknown or duplicate commands, or invalid parameter values, are refused.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readPrompt(cmd, args)
			if err != nil {
				return err
			}
			request, err := a.services.Prompt.CompileText(text)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), request)
		},
	}
}

func newCommandsCmd(a *app) *cobra.Command {
	var typeName string
	var raw bool
	var width int

	cmd := &cobra.Command{
		Use:   "commands [query]",
		Short: "List the registered commands",
		Long: `List the registered models, parameters and actions. A query keeps the commands
whose name fuzzily matches it, best match first.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			commandType, err := parseCommandType(typeName)
			if err != nil {
				return err
			}

			var commands []oplatypes.Command
			if len(args) == 0 {
				commands = a.services.Commands.Commands(commandType)
			} else {
				for _, t := range commandTypesOf(commandType) {
					commands = append(commands, a.services.Commands.Filter(args[0], t)...)
				}
			}

			if raw {
				_, err := fmt.Fprint(cmd.OutOrStdout(), services.CommandsMarkdown(commands))
				return err
			}
			if width > 0 {
				if err := a.services.Markdown.SetWordWrap(width); err != nil {
					return err
				}
			}
			rendered, err := a.services.Markdown.RenderCommands(commands)
			if err != nil {
				return err
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), rendered)
			return err
		},
	}
	cmd.Flags().StringVar(&typeName, "type", "", "Only list one type: mention (@), hashtag (#) or action (/)")
	cmd.Flags().BoolVar(&raw, "raw", false, "Print markdown without rendering it")
	cmd.Flags().IntVar(&width, "width", 0, "Wrap rendered output at this many columns [default: 80]")
	return cmd
}

func newEditCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "edit [text...]",
		Short: "Write a prompt in the interactive editor",
		Long: `Open the interactive editor, optionally starting from text. Typing a command sigil
lists matching commands; the compiled request is printed as JSON on submit.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			request, submitted, err := tui.Run(a.services.Prompt, a.services.Render,
				tui.WithText(strings.Join(args, " ")))
			if err != nil {
				return err
			}
			if !submitted {
				return nil
			}
			return writeJSON(cmd.OutOrStdout(), request)
		},
	}
}

func newConfigCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Show the effective configuration and where it was read from",
		RunE: func(cmd *cobra.Command, _ []string) error {
			config := a.services.Configuration
			values, err := config.GetAllConfigValues()
			if err != nil {
				return err
			}
			paths, err := config.GetConfigurationPaths()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, key := range config.Keys() {
				fmt.Fprintf(out, "%s = %s\n", key, values[key])
			}
			fmt.Fprintf(out, "\nconfig dir: %s (exists: %t)\n", paths.ConfigDir, paths.ConfigDirExists)
			fmt.Fprintf(out, "config file: %s (loaded: %t)\n", paths.ConfigFilePath, paths.ConfigFileLoaded)
			fmt.Fprintf(out, "config .env: %s (loaded: %t)\n", paths.ConfigEnvPath, paths.ConfigEnvLoaded)
			fmt.Fprintf(out, "local .env: %s (loaded: %t)\n", paths.LocalEnvPath, paths.LocalEnvLoaded)
			return nil
		},
	}
}

func newVersionCmd() *cobra.Command {
	var detailed bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		// Version needs no configuration or services
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		Run: func(cmd *cobra.Command, _ []string) {
			if detailed {
				fmt.Fprintln(cmd.OutOrStdout(), version.GetDetailedVersion())
				return
			}
			fmt.Fprintln(cmd.OutOrStdout(), version.GetFormattedVersion())
		},
	}
	cmd.Flags().BoolVar(&detailed, "detailed", false, "Show build details")
	return cmd
}

// readPrompt joins the arguments, or reads stdin when there are none or the only
// argument is "-". A single trailing newline from stdin is dropped.
func readPrompt(cmd *cobra.Command, args []string) (string, error) {
	if len(args) > 0 && !(len(args) == 1 && args[0] == "-") {
		return strings.Join(args, " "), nil
	}
	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return "", fmt.Errorf("reading prompt: %w", err)
	}
	text := strings.TrimSuffix(string(data), "\n")
	return strings.TrimSuffix(text, "\r"), nil
}

// parseCommandType accepts a type name or its sigil. Empty means every type.
func parseCommandType(name string) (oplatypes.CommandType, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "":
		return "", nil
	case "mention", "mentions", "model", "models", "@":
		return oplatypes.CommandTypeMention, nil
	case "hashtag", "hashtags", "parameter", "parameters", "#":
		return oplatypes.CommandTypeHashtag, nil
	case "action", "actions", "/":
		return oplatypes.CommandTypeAction, nil
	default:
		return "", fmt.Errorf("unknown command type '%s' (expected mention, hashtag or action)", name)
	}
}

func commandTypesOf(commandType oplatypes.CommandType) []oplatypes.CommandType {
	if commandType != "" {
		return []oplatypes.CommandType{commandType}
	}
	return []oplatypes.CommandType{
		oplatypes.CommandTypeAction, oplatypes.CommandTypeMention, oplatypes.CommandTypeHashtag,
	}
}

func writeJSON(w io.Writer, value any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(value)
}
