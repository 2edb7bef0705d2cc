package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jamesainslie/flatten/pkg/flatten/config"
	"github.com/jamesainslie/flatten/pkg/flatten/logging"
)

var (
	cfgFile string
	rootCmd = &cobra.Command{
		Use:   "flatten [dir]",
		Short: "Flatten a directory one level and normalize its names",
		Long: `Flatten merges every subdirectory of a directory into a slugified target
directory and rewrites every top-level name to a normalized slug.

"My Photos/Beach Day.JPG" becomes "my-photos/beach-day.JPG", and "Read Me.md"
becomes "read-me.md". Name collisions are resolved with underscore suffixes,
so nothing is ever overwritten.

The plan is printed first and applied only after confirmation.

Examples:
  flatten                    # Flatten the current directory
  flatten ~/Downloads        # Flatten a specific directory
  flatten -d ~/Downloads     # Show the plan without changing anything
  flatten -y -e .git .       # Apply without asking, leaving .git alone
  flatten -o json -d .       # Print the plan as JSON
  flatten config show        # Show configuration`,
		Args:              cobra.MaximumNArgs(1),
		PersistentPreRunE: initializeLogging,
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = logging.Close()
		},
		RunE:         runFlatten,
		SilenceUsage: true,
	}
)

func init() {
	cobra.OnInitialize(initConfig)

	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ~/.config/flatten/config.yaml)")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "minimal output")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "debug output")

	rootCmd.Flags().BoolP("force", "y", false, "apply the plan without asking")
	rootCmd.Flags().BoolP("dry-run", "d", false, "show the plan without changing anything")
	rootCmd.Flags().StringP("output", "o", "", "preview format (pretty, plain, paths, json, yaml)")
	rootCmd.Flags().StringSliceP("exclude", "e", nil, "top-level names to leave alone (can be specified multiple times)")
	rootCmd.Flags().Bool("trash", false, "send emptied directories to the system trash")

	// Bind flags to viper
	_ = viper.BindPFlag("quiet", rootCmd.PersistentFlags().Lookup("quiet"))
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	_ = viper.BindPFlag("force", rootCmd.Flags().Lookup("force"))
	_ = viper.BindPFlag("dry_run", rootCmd.Flags().Lookup("dry-run"))
	_ = viper.BindPFlag("output", rootCmd.Flags().Lookup("output"))
	_ = viper.BindPFlag("exclude", rootCmd.Flags().Lookup("exclude"))
	_ = viper.BindPFlag("trash", rootCmd.Flags().Lookup("trash"))
}

// initConfig reads in config file and environment variables.
func initConfig() {
	v := viper.GetViper()
	config.Configure(v, cfgFile)

	if err := config.Read(v); err != nil {
		printError("%v", err)
	}
}

// initializeLogging starts file logging from the loaded configuration.
// Failing to open the log file is reported but does not stop the command.
func initializeLogging(cmd *cobra.Command, args []string) error {
	cfg, err := config.FromViper(viper.GetViper())
	if err != nil {
		return err
	}

	logCfg, err := cfg.LogConfig()
	if err != nil {
		return err
	}

	if err := logging.Init(logCfg); err != nil {
		printVerbose("File logging disabled: %v", err)
	}
	return nil
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// getVerbose returns true if verbose mode is enabled.
func getVerbose() bool {
	return viper.GetBool("verbose")
}

// getQuiet returns true if quiet mode is enabled.
func getQuiet() bool {
	return viper.GetBool("quiet")
}

// printVerbose prints a message if verbose mode is enabled.
func printVerbose(format string, args ...interface{}) {
	if getVerbose() && !getQuiet() {
		fmt.Fprintf(os.Stderr, "[DEBUG] "+format+"\n", args...)
	}
}

// printInfo prints a message if quiet mode is not enabled.
func printInfo(format string, args ...interface{}) {
	if !getQuiet() {
		fmt.Printf(format+"\n", args...)
	}
}

// printError prints an error message to stderr.
func printError(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
}
