package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mperativ/agentdir/internal/app"
	"github.com/mperativ/agentdir/pkg/config"
)

//nolint:gochecknoglobals // Cobra boilerplate
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the directory service",
	Long: `Starts the agent directory service, which will:
1. Serve the directory API over HTTP
2. Cache catalog list and page results with TTL and LRU eviction
3. Collapse concurrent fetches for the same key into one upstream call
4. Invalidate caches on mutations and upstream change events

Use --warm to prime the agents list cache before marking ready.`,
	RunE: runService,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().BoolP("warm", "w", false, "Prime the agents list cache on startup")
}

func runService(cmd *cobra.Command, args []string) error {
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

	warm, _ := cmd.Flags().GetBool("warm")
	opts := &app.Options{
		WarmOnStart: warm,
	}

	application, err := app.New(cfg, logger, opts)
	if err != nil {
		return fmt.Errorf("create app: %w", err)
	}

	err = application.Run()
	if err != nil {
		return fmt.Errorf("run app: %w", err)
	}

	return nil
}
