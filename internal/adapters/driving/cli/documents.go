package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

var documentsCmd = &cobra.Command{
	Use:     "documents",
	Aliases: []string{"document", "docs"},
	Short:   "Manage resume documents",
	Long: `List, add, remove or open files in the documents directory.

Supported formats are PDF (.pdf), plain text (.txt) and Markdown (.md,
.markdown). Run "resumerag index" after changing documents, or keep
"resumerag watch" running to reindex automatically.`,
}

var documentsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List documents",
	Args:  cobra.NoArgs,
	RunE:  runDocumentsList,
}

var documentsAddCmd = &cobra.Command{
	Use:   "add [path]",
	Short: "Copy a file into the documents directory",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentsAdd,
}

var documentsRemoveCmd = &cobra.Command{
	Use:   "remove [name]",
	Short: "Delete a document",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentsRemove,
}

var documentsOpenCmd = &cobra.Command{
	Use:   "open [name]",
	Short: "Open document in default application",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentsOpen,
}

func init() {
	for _, c := range []*cobra.Command{documentsListCmd, documentsAddCmd, documentsRemoveCmd, documentsOpenCmd} {
		requires(c, RequireDocuments)
		documentsCmd.AddCommand(c)
	}
	rootCmd.AddCommand(documentsCmd)
}

func runDocumentsList(cmd *cobra.Command, _ []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}

	docs := documentService.List()
	view := struct {
		Dir       string   `json:"dir" yaml:"dir"`
		Documents []string `json:"documents" yaml:"documents"`
	}{documentService.Dir(), docs}

	return render(cmd, view, func() {
		if len(docs) == 0 {
			cmd.Printf("No documents in %s\n", view.Dir)
			return
		}
		cmd.Printf("Documents in %s:\n\n", view.Dir)
		for _, d := range docs {
			cmd.Printf("  %s\n", d)
		}
		cmd.Printf("\nTotal: %d documents\n", len(docs))
	})
}

func runDocumentsAdd(cmd *cobra.Command, args []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}

	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	name, err := documentService.Add(filepath.Base(args[0]), f)
	if err != nil {
		return fmt.Errorf("failed to add document: %w", err)
	}

	cmd.Printf("Added %s. Run \"resumerag index\" to update the index.\n", name)
	return nil
}

func runDocumentsRemove(cmd *cobra.Command, args []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}

	if err := documentService.Remove(args[0]); err != nil {
		return fmt.Errorf("failed to remove document: %w", err)
	}

	cmd.Printf("Removed %s.\n", args[0])
	return nil
}

func runDocumentsOpen(cmd *cobra.Command, args []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}

	if err := documentService.Open(args[0]); err != nil {
		return fmt.Errorf("failed to open document: %w", err)
	}

	cmd.Printf("Opened %s in default application.\n", args[0])
	return nil
}
