package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

// vocabCmd groups vocabulary maintenance subcommands.
var vocabCmd = &cobra.Command{
	Use:   "vocab",
	Short: "Inspect and refresh the ingredient vocabulary",
}

var vocabRefreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Fetch the vocabulary from the database into the local snapshot",
	Long: `Fetch the full ingredient vocabulary from the configured database and
persist it to the local snapshot file, so scans keep working when the
database is unreachable.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()
		ctx := context.Background()

		pool, err := newDatabasePool(ctx, cfg)
		if err != nil {
			return err
		}
		if pool == nil {
			return fmt.Errorf("vocab refresh requires a configured database DSN")
		}
		defer pool.Close()

		cache, err := newVocabulary(cfg, pool, nil)
		if err != nil {
			return err
		}
		defer func() { _ = cache.Close() }()

		if err := cache.Refresh(ctx); err != nil {
			return fmt.Errorf("refreshing vocabulary: %w", err)
		}

		snap, err := cache.Snapshot()
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "vocabulary refreshed: %d ingredients\n", snap.Len())
		return nil
	},
}

var vocabShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the locally cached vocabulary",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()

		cache, err := newVocabulary(cfg, nil, nil)
		if err != nil {
			return err
		}
		defer func() { _ = cache.Close() }()

		if err := cache.Warm(context.Background()); err != nil {
			return fmt.Errorf("no cached vocabulary available: %w", err)
		}

		snap, err := cache.Snapshot()
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "%d ingredients (loaded %s)\n",
			snap.Len(), snap.LoadedAt.Format("2006-01-02 15:04:05"))
		for _, ing := range snap.Ingredients {
			fmt.Fprintf(cmd.OutOrStdout(), "  %-12s %-32s %s\n", ing.ID, ing.Name, ing.Category)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(vocabCmd)
	vocabCmd.AddCommand(vocabRefreshCmd)
	vocabCmd.AddCommand(vocabShowCmd)
}
