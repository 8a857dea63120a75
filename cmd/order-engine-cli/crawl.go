package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

// newCrawlCmd creates the crawl subcommand.
func newCrawlCmd() *cobra.Command {
	var (
		refresh bool
		sample  int
	)

	cmd := &cobra.Command{
		Use:   "crawl",
		Short: "Crawl the remote catalog and inspect the product index",
		Long: `Crawl fetches the remote catalog tree, builds the product index, and
prints a summary. The index is cached; use --refresh to force a rebuild.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ui := NewUI(outputJSON, noColor)

			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
			defer cancel()

			cacheClient := newCacheClient()
			defer cacheClient.Close()

			var bar *progressbar.ProgressBar
			provider := newProvider(cacheClient, func(completed, total int) {
				if bar == nil {
					bar = ui.ProgressBar("Crawling categories", total)
				}
				if bar != nil {
					bar.Set(completed)
				}
			})

			if refresh {
				provider.Invalidate(ctx)
			}

			start := time.Now()
			idx, err := provider.Index(ctx)
			if err != nil {
				ui.Error("Catalog crawl failed: %v", err)
				return err
			}
			if bar != nil {
				bar.Finish()
			}

			if outputJSON {
				return json.NewEncoder(os.Stdout).Encode(map[string]interface{}{
					"products":   idx.Len(),
					"categories": len(idx.CategoryIDs),
					"built_at":   idx.BuiltAt,
					"elapsed":    time.Since(start).String(),
				})
			}

			ui.Section("catálogo")
			ui.KeyValue("Productos", idx.Len())
			ui.KeyValue("Construido", idx.BuiltAt.Format("02/01/2006 15:04:05"))
			ui.KeyValue("Duración", time.Since(start).Round(time.Millisecond))

			if sample > 0 && idx.Len() > 0 {
				n := sample
				if n > idx.Len() {
					n = idx.Len()
				}
				rows := make([][]string, 0, n)
				for _, p := range idx.Products[:n] {
					rows = append(rows, []string{
						fmt.Sprintf("%d", p.ID),
						truncate(p.DisplayName, 45),
						fmt.Sprintf("%.2f€", p.UnitPrice),
						p.Lineage.Category.Name,
					})
				}
				ui.Table([]string{"ID", "Producto", "Precio", "Categoría"}, rows)
			}

			ui.Success("Catalog index ready")
			return nil
		},
	}

	cmd.Flags().BoolVar(&refresh, "refresh", false, "discard the cached index and rebuild")
	cmd.Flags().IntVar(&sample, "sample", 10, "number of sample products to print (0 disables)")
	return cmd
}
