package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/vantage-cli/internal/core/domain"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show what the index holds",
	Long:  `Prints the number of indexed chunks for each source document.`,
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, _ []string) error {
	svc, err := pipeline(cmd.Context())
	if err != nil {
		return err
	}
	if svc.Ingestion == nil {
		return errors.New("ingestion service not configured")
	}

	status, err := svc.Ingestion.Status(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to read index status: %w", err)
	}

	cmd.Println("Index")
	cmd.Println("=====")
	for _, id := range domain.AllDocuments() {
		cmd.Printf("  %-26s %d chunks\n", id.Label(), status.Chunks[id])
	}
	cmd.Printf("  %-26s %d chunks\n", "Total", status.Total)

	if status.IsEmpty() {
		cmd.Println()
		cmd.Println("The index is empty. Run 'vantage --ingest' to build it.")
	}
	return nil
}
