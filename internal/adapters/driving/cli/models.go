package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "Manage generation models",
}

var modelsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List models and whether the backend has them",
	Args:  cobra.NoArgs,
	RunE:  runModelsList,
}

var modelsPullCmd = &cobra.Command{
	Use:   "pull [model]",
	Short: "Download a model to the local backend",
	Args:  cobra.ExactArgs(1),
	RunE:  runModelsPull,
}

func init() {
	requires(modelsListCmd, RequirePipeline)
	requires(modelsPullCmd, RequirePipeline)
	modelsCmd.AddCommand(modelsListCmd)
	modelsCmd.AddCommand(modelsPullCmd)
	rootCmd.AddCommand(modelsCmd)
}

func runModelsList(cmd *cobra.Command, _ []string) error {
	if modelService == nil {
		return errors.New("model service not configured")
	}

	models, err := modelService.List(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list models: %w", err)
	}

	return render(cmd, models, func() {
		if len(models) == 0 {
			cmd.Println("No models configured.")
			return
		}
		def := modelService.Default()
		for _, m := range models {
			marker := " "
			if m.Name == def {
				marker = "*"
			}
			status := "not pulled"
			if m.IsAvailable {
				status = "available"
			}
			cmd.Printf("%s %-24s %-12s %s\n", marker, m.Name, status, m.Description)
		}
	})
}

func runModelsPull(cmd *cobra.Command, args []string) error {
	if modelService == nil {
		return errors.New("model service not configured")
	}

	cmd.Printf("Pulling %s...\n", args[0])
	if err := modelService.Pull(cmd.Context(), args[0]); err != nil {
		return fmt.Errorf("failed to pull model: %w", err)
	}
	cmd.Printf("Model %s is ready.\n", args[0])
	return nil
}
