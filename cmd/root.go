// Package cmd provides the command-line interface of chesttrack.
package cmd

import (
	"errors"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/sarchlab/chesttrack/logging"
)

// Environment variables that provide defaults for flags that are not set.
// They are also read from a .env file in the working directory.
const (
	EnvLogLevel    = "CHESTTRACK_LOG_LEVEL"
	EnvMonitorPort = "CHESTTRACK_MONITOR_PORT"
	EnvJournal     = "CHESTTRACK_JOURNAL"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "chesttrack",
	Short: "chesttrack replays container memories and checks their integrity.",
	Long: `chesttrack drives the container memory core from a scenario file. ` +
		`It replays the scenario tick by tick, records evicted memories into a ` +
		`journal and reports on journals of earlier runs.`,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		loadEnv(".env")

		format, _ := cmd.Flags().GetString("log-format")

		return logging.Setup(
			stringSetting(cmd, "log-level", EnvLogLevel), format, os.Stderr)
	},
}

func init() {
	rootCmd.PersistentFlags().String("log-level", "info",
		"log level (trace, debug, info, warn, error), defaults to $"+EnvLogLevel)
	rootCmd.PersistentFlags().String("log-format", logging.FormatConsole,
		"log format, console or json")
}

// Execute adds all child commands to the root command and sets flags
// appropriately.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

// loadEnv reads default settings from a dotenv file. Variables that are
// already set are not overwritten.
func loadEnv(filename string) {
	err := godotenv.Load(filename)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Warn().Err(err).Str("file", filename).Msg("ignoring env file")
	}
}

// stringSetting returns the value of a flag. An unset flag falls back to the
// environment variable env and then to the flag's default.
func stringSetting(cmd *cobra.Command, name, env string) string {
	f := cmd.Flag(name)
	if f == nil {
		panic("unknown flag " + name)
	}

	if !f.Changed {
		if v, ok := os.LookupEnv(env); ok {
			return v
		}
	}

	return f.Value.String()
}

func intSetting(cmd *cobra.Command, name, env string) (int, error) {
	v := stringSetting(cmd, name, env)

	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, errors.New("--" + name + ": " + strconv.Quote(v) +
			" is not an integer")
	}

	return n, nil
}
