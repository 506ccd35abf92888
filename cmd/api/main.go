package main

import (
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/corkboard/core/cmd/api/commands"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "corkboard",
		Short: "Corkboard API Server",
		Long:  `Corkboard is a collaborative widget board: freeform 2D canvases of notes, images and small tools, shared and synced in real time.`,
	}

	// Add commands
	rootCmd.AddCommand(commands.NewServeCommand())
	rootCmd.AddCommand(commands.NewMigrateCommand())
	rootCmd.AddCommand(commands.NewUserCommand())
	rootCmd.AddCommand(commands.NewVersionCommand())

	// Execute root command
	if err := rootCmd.Execute(); err != nil {
		log.Printf("Command execution failed: %v", err)
		os.Exit(1)
	}
}
