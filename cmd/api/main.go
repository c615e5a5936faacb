package main

import (
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/studytrack/core/cmd/api/commands"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "studytrack",
		Short: "StudyTrack API Server",
		Long:  `StudyTrack is a study task tracking service with filterable task lists, dashboard statistics, calendar rescheduling, and CSV/PDF report exports.`,
	}

	rootCmd.AddCommand(commands.NewServeCommand())
	rootCmd.AddCommand(commands.NewMigrateCommand())
	rootCmd.AddCommand(commands.NewVersionCommand())

	if err := rootCmd.Execute(); err != nil {
		log.Printf("Command execution failed: %v", err)
		os.Exit(1)
	}
}
