package cmd

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"collection-manager/core/config"
	"collection-manager/feature/collections"

	"github.com/spf13/cobra"
)

// collectionsCmd validates the collection definitions and lists them.
var collectionsCmd = &cobra.Command{
	Use:   "collections",
	Short: "Validate and list the collection definitions",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig(".")
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		applyCollectionsFlag(cmd, cfg)

		defs, err := collections.Load(cfg.Sync.CollectionsPath)
		if err != nil {
			return err
		}

		now := time.Now()
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "LIBRARY\tTYPE\tCOLLECTION\tSCHEDULE\tDUE\tSOURCES")
		for _, lib := range defs.Libraries {
			for _, c := range lib.Collections {
				sched, _ := collections.ParseSchedule(c.Schedule)
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%t\t%s\n",
					lib.Name, lib.ResolvedMediaType(), c.Name, sched, sched.DueOn(now), sources(c))
			}
		}
		return w.Flush()
	},
}

func sources(c collections.Collection) string {
	var out []string
	if len(c.Items) > 0 {
		out = append(out, fmt.Sprintf("%d items", len(c.Items)))
	}
	if c.TMDbTrendingWeekly+c.TMDbTrendingDaily+c.TMDbPopular > 0 {
		out = append(out, "tmdb")
	}
	if c.TraktTrending+c.TraktPopular > 0 || c.TraktChart != nil {
		out = append(out, "trakt")
	}
	if len(out) == 0 {
		return "-"
	}
	return strings.Join(out, ", ")
}

// applyCollectionsFlag lets --collections override the configured path.
func applyCollectionsFlag(cmd *cobra.Command, cfg *config.Config) {
	if path, _ := cmd.Flags().GetString("collections"); path != "" {
		cfg.Sync.CollectionsPath = path
	}
}

func init() {
	RootCmd.AddCommand(collectionsCmd)
}
