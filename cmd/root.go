package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // Cobra boilerplate
var rootCmd = &cobra.Command{
	Use:   "agentdir",
	Short: "Cached directory over an agent control plane",
	Long: `agentdir serves a read-optimized directory of agents, their versions
and aliases, fronting a control-plane catalog API with an in-memory cache.

List and page results are cached with TTL expiry, LRU eviction and
single-flight request collapsing. Mutations and upstream change events
invalidate the affected entries.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	// Flags can be added here if needed
}
