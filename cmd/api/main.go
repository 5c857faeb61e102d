package main

import (
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/tasknest/core/cmd/api/commands"
)

// @title TaskNest API
// @version 1.0
// @description Personal task manager: tasks, tags, folders and task images

// @host localhost:3000
// @BasePath /api

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	rootCmd := &cobra.Command{
		Use:           "tasknest",
		Short:         "TaskNest API Server",
		Long:          `TaskNest is a personal task manager backend with tags, folders and task images.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Add commands
	rootCmd.AddCommand(commands.NewServeCommand())
	rootCmd.AddCommand(commands.NewMigrateCommand())
	rootCmd.AddCommand(commands.NewUserCommand())

	// Execute root command
	if err := rootCmd.Execute(); err != nil {
		log.Printf("Command execution failed: %v", err)
		os.Exit(1)
	}
}
