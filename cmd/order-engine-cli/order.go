package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/despensa-ai/order-engine/internal/pipeline"
	"github.com/despensa-ai/order-engine/internal/storage"
	"github.com/despensa-ai/order-engine/internal/ticket"
)

// newOrderCmd creates the order subcommand.
func newOrderCmd() *cobra.Command {
	var (
		noExport  bool
		noHistory bool
	)

	cmd := &cobra.Command{
		Use:   "order [utterance]",
		Short: "Process a shopping request into a priced ticket",
		Long: `Order parses a free-text shopping request, matches the mentioned
products against the catalog, prices them, and prints the resulting ticket.

Example:
  order-engine order "quiero 2 leches y 3 panes"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			utterance := strings.Join(args, " ")
			ui := NewUI(outputJSON, noColor)

			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
			defer cancel()

			cacheClient := newCacheClient()
			defer cacheClient.Close()

			var exporter *ticket.Exporter
			if cfg.Export.Enabled && !noExport {
				exporter = ticket.NewExporter(cfg.Export.Dir, logger)
			}

			var orders *storage.OrderRepository
			if !noHistory {
				db, err := storage.Open(cfg.Database.Path)
				if err != nil {
					return fmt.Errorf("open order history: %w", err)
				}
				defer db.Close()
				orders = storage.NewOrderRepository(db)
			}

			p := pipeline.New(pipeline.Config{
				Provider: newProvider(cacheClient, nil),
				Exporter: exporter,
				Orders:   orders,
				Logger:   logger,
			})

			stop := ui.Spinner("Processing order...")
			result, err := p.Process(ctx, utterance)
			stop()
			if err != nil {
				ui.Error("Order processing failed: %v", err)
				return err
			}

			if outputJSON {
				return json.NewEncoder(os.Stdout).Encode(result)
			}

			fmt.Println(result.Ticket.DisplayText)

			for _, m := range result.Unmatched {
				ui.Warning("No catalog match for %q", m)
			}
			if result.Exports.TXT != "" {
				ui.Section("archivos")
				ui.KeyValue("JSON", result.Exports.JSON)
				ui.KeyValue("TXT", result.Exports.TXT)
				ui.KeyValue("CSV", result.Exports.CSV)
			}
			ui.Success("Order %s processed", result.OrderID)
			return nil
		},
	}

	cmd.Flags().BoolVar(&noExport, "no-export", false, "skip writing ticket files")
	cmd.Flags().BoolVar(&noHistory, "no-history", false, "skip recording the order in history")
	return cmd
}

// newHistoryCmd creates the history subcommand.
func newHistoryCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history [order-id]",
		Short: "Browse previously processed orders",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ui := NewUI(outputJSON, noColor)

			db, err := storage.Open(cfg.Database.Path)
			if err != nil {
				return fmt.Errorf("open order history: %w", err)
			}
			defer db.Close()
			repo := storage.NewOrderRepository(db)

			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			if len(args) == 1 {
				return showOrder(ctx, ui, repo, args[0])
			}

			orders, err := repo.List(ctx, limit)
			if err != nil {
				return fmt.Errorf("list orders: %w", err)
			}

			if outputJSON {
				return json.NewEncoder(os.Stdout).Encode(orders)
			}

			if len(orders) == 0 {
				ui.Info("No orders recorded yet")
				return nil
			}

			rows := make([][]string, 0, len(orders))
			for _, order := range orders {
				rows = append(rows, []string{
					order.ID.String(),
					order.CreatedAt.Format("02/01/2006 15:04"),
					truncate(order.Utterance, 40),
					fmt.Sprintf("%d", order.DistinctItems),
					fmt.Sprintf("%.2f€", order.Total),
				})
			}
			ui.Table([]string{"ID", "Fecha", "Pedido", "Artículos", "Total"}, rows)
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "maximum number of orders to list")
	return cmd
}

func showOrder(ctx context.Context, ui *UI, repo *storage.OrderRepository, rawID string) error {
	id, err := uuid.Parse(rawID)
	if err != nil {
		return fmt.Errorf("invalid order id %q: %w", rawID, err)
	}

	order, err := repo.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("load order: %w", err)
	}

	if outputJSON {
		return json.NewEncoder(os.Stdout).Encode(order)
	}

	var record ticket.Record
	if err := json.Unmarshal(order.Ticket, &record); err != nil {
		return fmt.Errorf("decode stored ticket: %w", err)
	}

	ui.Section("pedido")
	ui.KeyValue("ID", order.ID)
	ui.KeyValue("Fecha", order.CreatedAt.Format("02/01/2006 15:04:05"))
	ui.KeyValue("Pedido", order.Utterance)
	ui.KeyValue("Intención", order.Intent)

	rows := make([][]string, 0, len(record.Lines))
	for _, line := range record.Lines {
		rows = append(rows, []string{
			line.DisplayName,
			fmt.Sprintf("%g", line.Quantity),
			fmt.Sprintf("%.2f€", line.UnitPrice),
			fmt.Sprintf("%.2f€", line.LineTotal),
		})
	}
	ui.Table([]string{"Producto", "Cantidad", "Precio Unit.", "Precio Total"}, rows)
	ui.KeyValue("Total", fmt.Sprintf("%.2f€", order.Total))
	return nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
