package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	// version can be overridden at build time via:
	// go build -ldflags "-X github.com/stakewatch/stakewatch/internal/cli.version=1.2.3"
	version = "0.4.0"
	logo    = "\n" +
		"  ___ _        _       __      __    _      _\n" +
		" / __| |_ __ _| |_____ \\ \\    / /_ _| |_ __| |_\n" +
		" \\__ \\  _/ _` | / / -_) \\ \\/\\/ / _` |  _/ _| ' \\\n" +
		" |___/\\__\\__,_|_\\_\\___|  \\_/\\_/\\__,_|\\__\\__|_||_|\n"
)

var rootCmd = &cobra.Command{
	Use:   "stakewatch",
	Short: "StakeWatch - Stakeholder relationship intelligence engine",
	Long: color.CyanString(logo) +
		"\nCoalition detection, action prediction, influence scoring and network mapping\nfor stakeholder groups, served as MCP tools or invoked directly from the CLI.",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the stakewatch version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("stakewatch %s\n", version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(opsCmd)
	rootCmd.AddCommand(callCmd)
	rootCmd.AddCommand(groupsCmd)
	rootCmd.AddCommand(statusCmd)
}

func printHeader(title string) {
	color.Cyan("%s\n", title)
}
