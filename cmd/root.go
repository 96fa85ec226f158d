package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command for the projectpulse application
var rootCmd = &cobra.Command{
	Use:   "projectpulse",
	Short: "MCP server for project-management insight over a task workspace",
	Long: `projectpulse answers project-management questions for AI assistants.

It exposes read-only MCP tools over a task-tracking workspace (due dates,
overdue work, team workload, due-date churn) and an optional meeting
calendar stored in PostgreSQL.`,
	SilenceUsage: true,
}

// version will be set by main
var version = "dev"

// SetVersion sets the version for the root command
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

// Execute is the main entry point for the CLI application
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "projectpulse version %s\n" .Version}}`)

	// If no subcommand is provided, run the serve command by default
	if len(os.Args) == 1 {
		os.Args = append(os.Args, "serve")
	}

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newVersionCmd())
}
