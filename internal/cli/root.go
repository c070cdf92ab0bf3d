package cli

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	port         string
	configPath   string
	teacherToken string
)

// Execute runs the CLI.
func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	envPort := os.Getenv("PORT")
	if envPort == "" {
		envPort = "8000"
	}
	envConfig := os.Getenv("CONFIG_PATH")
	if envConfig == "" {
		envConfig = "config/config.yaml"
	}
	envToken := os.Getenv("TEACHER_TOKEN")

	cmd := &cobra.Command{
		Use:   "live-quiz-service",
		Short: "Live classroom quiz sessions over Gorilla WebSocket",
	}

	cmd.PersistentFlags().StringVar(&port, "port", envPort, "port to listen on")
	cmd.PersistentFlags().StringVar(&configPath, "config", envConfig, "path to YAML config")
	cmd.PersistentFlags().StringVar(&teacherToken, "teacher-token", envToken, "shared secret for teacher operations")
	cmd.AddCommand(NewStartCmd(&configPath, &port, &teacherToken))
	cmd.AddCommand(NewMigrateCmd(&configPath))
	return cmd
}
