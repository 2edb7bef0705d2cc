package main

import (
	"fmt"
	"os"
	"os/exec"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jamesainslie/flatten/pkg/flatten/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long: `Manage flatten configuration settings.

Configuration is loaded from:
  1. $XDG_CONFIG_HOME/flatten/config.yaml (if set)
  2. ~/.config/flatten/config.yaml

Environment variables can override config file settings using the FLATTEN_ prefix:
  FLATTEN_OUTPUT=plain
  FLATTEN_TRASH=true
  FLATTEN_LOGGING_LEVEL=debug`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long:  `Display the current configuration settings from all sources.`,
	RunE:  runConfigShow,
}

var configEditCmd = &cobra.Command{
	Use:   "edit",
	Short: "Edit configuration file",
	Long: `Open the configuration file in your default editor.

The editor is determined by:
  1. $VISUAL environment variable
  2. $EDITOR environment variable
  3. Falls back to 'vi'

If the config file doesn't exist, a default one will be created first.`,
	RunE: runConfigEdit,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create default configuration file",
	Long:  `Create a default configuration file if one doesn't exist.`,
	RunE:  runConfigInit,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show configuration file path",
	Long:  `Display the path to the configuration file.`,
	RunE:  runConfigPath,
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configEditCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configPathCmd)
	rootCmd.AddCommand(configCmd)
}

// runConfigShow displays the current configuration.
func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := config.FromViper(viper.GetViper())
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	out := cmd.OutOrStdout()

	// Show config file being used
	if configFile := viper.ConfigFileUsed(); configFile != "" {
		fmt.Fprintf(out, "Config file: %s\n\n", configFile)
	} else {
		fmt.Fprintln(out, "Config file: (using defaults, no file found)")
		fmt.Fprintln(out)
	}

	fmt.Fprintln(out, "Current Configuration:")
	fmt.Fprintln(out, "----------------------")
	fmt.Fprintf(out, "default_path:               %s\n", cfg.DefaultPath)
	fmt.Fprintf(out, "force:                      %t\n", cfg.Force)
	fmt.Fprintf(out, "dry_run:                    %t\n", cfg.DryRun)
	fmt.Fprintf(out, "output:                     %s\n", cfg.Output)
	fmt.Fprintf(out, "exclude:                    %v\n", cfg.Exclude)
	fmt.Fprintf(out, "trash:                      %t\n", cfg.Trash)
	fmt.Fprintf(out, "logging.level:              %s\n", cfg.Logging.Level)
	fmt.Fprintf(out, "logging.path:               %s\n", logPathOrDefault(cfg.Logging.Path))
	fmt.Fprintf(out, "logging.rotation.max_size:  %s\n", cfg.Logging.Rotation.MaxSize)
	fmt.Fprintf(out, "logging.rotation.max_age:   %d days\n", cfg.Logging.Rotation.MaxAge)
	fmt.Fprintf(out, "logging.rotation.backups:   %d\n", cfg.Logging.Rotation.MaxBackups)
	fmt.Fprintf(out, "logging.rotation.daily:     %t\n", cfg.Logging.Rotation.Daily)
	fmt.Fprintf(out, "logging.components:         %s\n", formatComponents(cfg.Logging.Components))

	// Show any environment overrides
	fmt.Fprintln(out, "\nEnvironment Overrides:")
	fmt.Fprintln(out, "----------------------")
	overrides := envOverrides()
	if len(overrides) == 0 {
		fmt.Fprintln(out, "(none)")
	}
	for _, ov := range overrides {
		fmt.Fprintln(out, ov)
	}

	return nil
}

// envOverrides lists the FLATTEN_ variables that are set, sorted by name.
func envOverrides() []string {
	prefix := config.EnvPrefix + "_"
	var out []string
	for _, kv := range os.Environ() {
		if strings.HasPrefix(kv, prefix) {
			out = append(out, kv)
		}
	}
	sort.Strings(out)
	return out
}

func formatComponents(components map[string]string) string {
	if len(components) == 0 {
		return "(none)"
	}
	names := make([]string, 0, len(components))
	for name := range components {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, name+"="+components[name])
	}
	return strings.Join(parts, " ")
}

func logPathOrDefault(path string) string {
	if path == "" {
		return config.DefaultLogPath() + " (default)"
	}
	return path
}

// runConfigEdit opens the config file in an editor.
func runConfigEdit(cmd *cobra.Command, args []string) error {
	// Ensure config file exists
	configPath, err := config.WriteDefault()
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}

	// Determine editor
	editor := os.Getenv("VISUAL")
	if editor == "" {
		editor = os.Getenv("EDITOR")
	}
	if editor == "" {
		editor = "vi"
	}

	printVerbose("Opening %s with %s", configPath, editor)

	editorCmd := exec.Command(editor, configPath)
	editorCmd.Stdin = os.Stdin
	editorCmd.Stdout = os.Stdout
	editorCmd.Stderr = os.Stderr

	if err := editorCmd.Run(); err != nil {
		return fmt.Errorf("editor command failed: %w", err)
	}

	return nil
}

// runConfigInit creates a default config file.
func runConfigInit(cmd *cobra.Command, args []string) error {
	configPath, err := config.ConfigFile()
	if err != nil {
		return fmt.Errorf("failed to get config file path: %w", err)
	}

	// Check if config already exists
	if _, err := os.Stat(configPath); err == nil {
		printInfo("Config file already exists: %s", configPath)
		printInfo("Use 'flatten config edit' to modify it.")
		return nil
	}

	if _, err := config.WriteDefault(); err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}

	printInfo("Created default config file: %s", configPath)
	return nil
}

// runConfigPath shows the config file path.
func runConfigPath(cmd *cobra.Command, args []string) error {
	configPath, err := config.ConfigFile()
	if err != nil {
		return fmt.Errorf("failed to get config file path: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), configPath)

	// Show if file exists
	if _, err := os.Stat(configPath); err == nil {
		printVerbose("File exists")
	} else if os.IsNotExist(err) {
		printVerbose("File does not exist (will use defaults)")
	}

	return nil
}
