package main

import (
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/flowboard/core/cmd/flowboard/commands"
)

// @title FlowBoard API
// @version 1.0
// @description Kanban task board with owner-gated editing.

// @BasePath /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the session token.

func main() {
	rootCmd := &cobra.Command{
		Use:   "flowboard",
		Short: "FlowBoard task board",
		Long:  `FlowBoard is a three-lane task board. Members create and move their own tasks; guests can look but not touch.`,
	}

	rootCmd.AddCommand(commands.NewServeCommand())
	rootCmd.AddCommand(commands.NewMigrateCommand())
	rootCmd.AddCommand(commands.NewUserCommand())
	rootCmd.AddCommand(commands.NewBoardCommand())
	rootCmd.AddCommand(commands.NewTasksCommand())
	rootCmd.AddCommand(commands.NewVersionCommand())

	if err := rootCmd.Execute(); err != nil {
		log.Printf("Command execution failed: %v", err)
		os.Exit(1)
	}
}
