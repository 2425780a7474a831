package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"codeport/internal/adapter/memstore"
	"codeport/internal/adapter/store"
	"codeport/internal/port"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect or clear the response cache",
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show response cache statistics",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		st, path, err := openCache()
		if err != nil {
			return err
		}
		defer st.Close()

		stats, err := st.Stats()
		if err != nil {
			return fmt.Errorf("failed to read cache stats: %w", err)
		}
		fmt.Printf("Cache: %s\n", path)
		fmt.Printf("  Entries:        %d\n", stats.Entries)
		fmt.Printf("  Schema version: %d\n", stats.SchemaVersion)
		return nil
	},
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove every cached response",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		st, path, err := openCache()
		if err != nil {
			return err
		}
		defer st.Close()

		if err := st.Clear(); err != nil {
			return fmt.Errorf("failed to clear cache: %w", err)
		}
		fmt.Printf("Cleared %s\n", path)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(cacheCmd)
	cacheCmd.AddCommand(cacheStatsCmd, cacheClearCmd)
}

func openCache() (port.ResponseStore, string, error) {
	path := resolvePath(GetConfig().Cache.Path)
	st, err := openStore(GetConfig().Cache.Path)
	return st, path, err
}

// openStore opens the response store named by path. The in-memory store
// lives only as long as the process.
func openStore(path string) (port.ResponseStore, error) {
	if path == memstore.Path {
		return memstore.NewMemoryStore(), nil
	}
	st, err := store.NewBoltStore(resolvePath(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open response cache: %w", err)
	}
	return st, nil
}
