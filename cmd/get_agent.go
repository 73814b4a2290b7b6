package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/goccy/go-json"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/mperativ/agentdir/internal/catalog"
	"github.com/mperativ/agentdir/pkg/config"
)

//nolint:gochecknoglobals // Cobra boilerplate
var getAgentCmd = &cobra.Command{
	Use:   "get-agent <agent-id>",
	Short: "Fetch a single agent from the catalog",
	Long:  `Fetches one agent record directly from the control-plane catalog, for debugging. Bypasses the cache.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runGetAgent,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(getAgentCmd)
}

func runGetAgent(cmd *cobra.Command, args []string) error {
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

	client := catalog.NewClient(&catalog.ClientConfig{
		BaseURL:           cfg.CatalogBaseURL,
		Timeout:           cfg.CatalogTimeout,
		RequestsPerSecond: cfg.CatalogRPS,
		Burst:             cfg.CatalogBurst,
		Logger:            logger,
	})

	agent, err := client.GetAgent(ctx, args[0])
	if err != nil {
		return fmt.Errorf("get agent: %w", err)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(agent)
}
