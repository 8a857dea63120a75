// Package pipeline chains parsing, resolution, pricing and ticket composition
// into the single order-processing entry point shared by the API and CLI.
package pipeline

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/despensa-ai/order-engine/internal/catalog"
	"github.com/despensa-ai/order-engine/internal/observability"
	"github.com/despensa-ai/order-engine/internal/parse"
	"github.com/despensa-ai/order-engine/internal/pricing"
	"github.com/despensa-ai/order-engine/internal/resolve"
	"github.com/despensa-ai/order-engine/internal/storage"
	"github.com/despensa-ai/order-engine/internal/ticket"
)

// Result is the terminal artifact of processing one utterance. It is always
// produced, even when nothing in the utterance could be resolved.
type Result struct {
	OrderID    string             `json:"order_id"`
	Utterance  string             `json:"utterance"`
	Intent     parse.Intent       `json:"intent"`
	Confidence float64            `json:"confidence"`
	Ticket     ticket.Ticket      `json:"ticket"`
	Unmatched  []string           `json:"unmatched,omitempty"`
	Exports    ticket.ExportPaths `json:"exports,omitempty"`
}

// Pipeline wires the processing stages together. Exporter and orders are
// optional; when nil the corresponding step is skipped.
type Pipeline struct {
	parser   *parse.Parser
	provider *catalog.Provider
	resolver *resolve.Resolver
	engine   *pricing.Engine
	composer *ticket.Composer
	exporter *ticket.Exporter
	orders   *storage.OrderRepository
	logger   *observability.Logger
}

type Config struct {
	Parser   *parse.Parser
	Provider *catalog.Provider
	Exporter *ticket.Exporter
	Orders   *storage.OrderRepository
	Logger   *observability.Logger
}

func New(cfg Config) *Pipeline {
	logger := cfg.Logger
	if logger == nil {
		logger = observability.Nop()
	}
	parser := cfg.Parser
	if parser == nil {
		parser = parse.NewParser(parse.ParserConfig{})
	}
	return &Pipeline{
		parser:   parser,
		provider: cfg.Provider,
		resolver: resolve.NewResolver(logger),
		engine:   pricing.NewEngine(logger),
		composer: ticket.NewComposer(),
		exporter: cfg.Exporter,
		orders:   cfg.Orders,
		logger:   logger,
	}
}

// Process runs an utterance through the full chain. Catalog unavailability is
// the only hard failure; parse misses, unmatched mentions and export or
// persistence problems degrade into the result instead of failing it.
func (p *Pipeline) Process(ctx context.Context, utterance string) (*Result, error) {
	log := p.logger.WithContext(ctx).WithOperation("process_order")

	order := p.parser.Parse(utterance)
	log.Info().
		Str("intent", string(order.Intent)).
		Int("mentions", len(order.Mentions)).
		Float64("confidence", order.Confidence).
		Msg("Parsed utterance")

	idx, err := p.provider.Index(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading catalog index: %w", err)
	}

	items, unmatched := p.resolver.Resolve(order.Mentions, idx)
	ledger := p.engine.Price(items, order.Mentions)
	tk := p.composer.Compose(utterance, ledger, unmatched)

	result := &Result{
		OrderID:    tk.Record.ID,
		Utterance:  utterance,
		Intent:     order.Intent,
		Confidence: order.Confidence,
		Ticket:     tk,
		Unmatched:  unmatched,
	}

	if p.exporter != nil {
		paths, err := p.exporter.Export(tk)
		if err != nil {
			log.Warn().Err(err).Msg("Ticket export failed")
		} else {
			result.Exports = paths
		}
	}

	if p.orders != nil {
		if err := p.persist(ctx, order, tk); err != nil {
			log.Warn().Err(err).Msg("Order history write failed")
		}
	}

	log.Info().
		Str("order_id", result.OrderID).
		Int("lines", ledger.DistinctLineCount).
		Float64("total", ledger.Total).
		Strs("unmatched", unmatched).
		Msg("Processed order")
	return result, nil
}

func (p *Pipeline) persist(ctx context.Context, order parse.ParsedOrder, tk ticket.Ticket) error {
	record, err := json.Marshal(tk.Record)
	if err != nil {
		return fmt.Errorf("encoding ticket record: %w", err)
	}

	// The ticket id doubles as the history key so API lookups line up with
	// exported files.
	id, err := uuid.Parse(tk.Record.ID)
	if err != nil {
		return fmt.Errorf("parsing ticket id %q: %w", tk.Record.ID, err)
	}

	return p.orders.Create(ctx, &storage.Order{
		ID:            id,
		Utterance:     tk.Record.Utterance,
		Intent:        string(order.Intent),
		Subtotal:      tk.Record.Summary.Subtotal,
		Discount:      tk.Record.Summary.Discounts,
		Total:         tk.Record.Summary.Total,
		DistinctItems: tk.Record.Summary.DistinctItems,
		TotalUnits:    tk.Record.Summary.TotalUnits,
		Ticket:        record,
		CreatedAt:     tk.Record.CreatedAt,
	})
}
