package main

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"opla/internal/logger"
	"opla/internal/services"
)

// app carries the state shared by every subcommand.
type app struct {
	v         *viper.Viper
	configDir string
	services  *services.Services
}

func newRootCmd(v *viper.Viper) *cobra.Command {
	a := &app{v: v}

	rootCmd := &cobra.Command{
		Use:   "opla",
		Short: "opla - prompt tokenizer for @model #parameter /action commands",
		Long: `opla parses chat prompts that mix free text with commands: @ mentions a model,
# sets a completion parameter and / runs an action. Prompts can be inspected,
compiled into requests or written in an interactive editor with suggestions.`,
		SilenceUsage:      true,
		PersistentPreRunE: a.initialize,
	}

	flags := rootCmd.PersistentFlags()
	flags.String(services.KeyLogLevel, "", "Set log level (debug|info|warn|error) [default: warn]")
	flags.String(services.KeyLogFile, "", "Write logs to file instead of stderr")
	flags.Bool(services.KeyTestMode, false, "Run in deterministic test mode")
	flags.String(services.KeyTheme, "", "Color theme (default|dark|light|plain)")
	flags.String(services.KeyDefaultModel, "", "Model used when the prompt mentions none")
	flags.String(services.KeyCatalogDir, "", "Directory with models.yaml, parameters.yaml or actions.yaml overrides")
	flags.StringVar(&a.configDir, "config-dir", "", "Configuration directory [default: $XDG_CONFIG_HOME/opla]")

	for _, key := range []string{
		services.KeyLogLevel, services.KeyLogFile, services.KeyTestMode,
		services.KeyTheme, services.KeyDefaultModel, services.KeyCatalogDir,
	} {
		// Bound flags only override configuration when set on the command line
		if err := v.BindPFlag(key, flags.Lookup(key)); err != nil {
			panic(fmt.Sprintf("binding %s flag: %v", key, err))
		}
	}

	rootCmd.AddCommand(
		newParseCmd(a),
		newCompileCmd(a),
		newCommandsCmd(a),
		newEditCmd(a),
		newConfigCmd(a),
		newVersionCmd(),
	)
	return rootCmd
}

// initialize loads the configuration, sets up logging and starts the services.
func (a *app) initialize(cmd *cobra.Command, _ []string) error {
	config := services.NewConfigurationService(a.v, a.configDir, "")
	if err := config.Initialize(); err != nil {
		return err
	}
	if err := logger.Configure(config.LogLevel(), config.LogFile(), config.TestMode()); err != nil {
		return fmt.Errorf("configuring logger: %w", err)
	}

	s, err := services.InitializeServices(config, lipgloss.NewRenderer(cmd.OutOrStdout()))
	if err != nil {
		return fmt.Errorf("failed to initialize services: %w", err)
	}
	a.services = s
	logger.Debug("Services initialized", "services", s.Registry.GetServiceNames())
	return nil
}
