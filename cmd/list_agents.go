package cmd

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/mperativ/agentdir/internal/catalog"
	"github.com/mperativ/agentdir/pkg/config"
)

//nolint:gochecknoglobals // Cobra boilerplate
var listAgentsCmd = &cobra.Command{
	Use:   "list-agents",
	Short: "List agents from the catalog",
	Long:  `Fetches and displays agents directly from the control-plane catalog, for debugging. Bypasses the cache.`,
	RunE:  runListAgents,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(listAgentsCmd)
	listAgentsCmd.Flags().IntP("limit", "l", 20, "Maximum number of agents per page")
	listAgentsCmd.Flags().StringP("cursor", "c", "", "Page cursor from a previous call")
	listAgentsCmd.Flags().BoolP("all", "a", false, "Follow cursors until the listing is exhausted")
}

func runListAgents(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := godotenv.Load(); err != nil {
		fmt.Printf("Warning: .env file not found\n")
	}

	cfg, err := config.LoadFromEnv()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := config.NewLogger()
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	limit, _ := cmd.Flags().GetInt("limit")
	cursor, _ := cmd.Flags().GetString("cursor")
	all, _ := cmd.Flags().GetBool("all")

	client := catalog.NewClient(&catalog.ClientConfig{
		BaseURL:           cfg.CatalogBaseURL,
		Timeout:           cfg.CatalogTimeout,
		RequestsPerSecond: cfg.CatalogRPS,
		Burst:             cfg.CatalogBurst,
		Logger:            logger,
	})

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "ID\tNAME\tSTATUS\tUPDATED\n")
	fmt.Fprintf(w, "--\t----\t------\t-------\n")

	total := 0
	for {
		page, err := client.ListAgents(ctx, limit, cursor)
		if err != nil {
			return fmt.Errorf("list agents: %w", err)
		}

		for i := range page.Items {
			agent := &page.Items[i]
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
				agent.ID, agent.Name, agent.Status, agent.UpdatedAt.Format(time.RFC3339))
		}
		total += len(page.Items)

		cursor = page.Cursor
		if !all || cursor == "" {
			break
		}
	}

	w.Flush()
	fmt.Printf("\nTotal: %d agents\n", total)

	if !all && cursor != "" {
		fmt.Printf("Next cursor: %s\n", cursor)
	}

	return nil
}
