package cli

import (
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return render(cmd, map[string]string{"version": version}, func() {
			cmd.Printf("resumerag version %s\n", version)
		})
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
