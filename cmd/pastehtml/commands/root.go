// Package commands implements the CLI commands for pastehtml.
package commands

import (
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jmylchreest/pastehtml/internal/logger"
)

var rootCmd = &cobra.Command{
	Use:   "pastehtml",
	Short: "Normalize pasted HTML for a structured rich-text editor",
	Long: `pastehtml turns clipboard HTML from word processors, spreadsheets,
web pages and editors into the small structural dialect a rich-text
editor accepts: paragraphs, lists, task lists, tables and media.

Markdown and plain text are converted to HTML first. Spreadsheet
exports are detected and only have their tables tidied.

Examples:
  # Normalize a saved clipboard payload
  pastehtml normalize paste.html

  # Read from stdin, emit markdown
  pbpaste | pastehtml normalize --format markdown

  # Show what each preset does to a document
  pastehtml compare paste.html

  # Check whether documents look like spreadsheet exports
  pastehtml sniff *.html`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		err := logger.Init(logger.Options{
			Level: viper.GetString("log_level"),
			Debug: viper.GetBool("debug"),
			Quiet: viper.GetBool("quiet"),
			JSON:  viper.GetBool("log_json"),
		})
		if err != nil {
			logger.Warn("ignoring log level", "error", err)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "config file (default $HOME/.pastehtml.yaml)")
	flags.Bool("debug", false, "enable debug logging")
	flags.BoolP("quiet", "q", false, "only log errors")
	flags.Bool("log-json", false, "log as JSON")
	flags.String("log-level", "", "log level: debug, info, warn, error")
	flags.Duration("timeout", 30*time.Second, "timeout for URL inputs")

	_ = viper.BindPFlag("config", flags.Lookup("config"))
	_ = viper.BindPFlag("debug", flags.Lookup("debug"))
	_ = viper.BindPFlag("quiet", flags.Lookup("quiet"))
	_ = viper.BindPFlag("log_json", flags.Lookup("log-json"))
	_ = viper.BindPFlag("log_level", flags.Lookup("log-level"))
	_ = viper.BindPFlag("timeout", flags.Lookup("timeout"))
}

func initConfig() {
	if cfgFile := viper.GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
		}
		viper.AddConfigPath(".")
		viper.SetConfigName(".pastehtml")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("PASTEHTML")
	viper.AutomaticEnv()

	// Read config file (ignore error if not found)
	_ = viper.ReadInConfig()
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
