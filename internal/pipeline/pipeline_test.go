package pipeline

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/despensa-ai/order-engine/internal/cache"
	"github.com/despensa-ai/order-engine/internal/catalog"
	"github.com/despensa-ai/order-engine/internal/observability"
	"github.com/despensa-ai/order-engine/internal/parse"
	"github.com/despensa-ai/order-engine/internal/storage"
	"github.com/despensa-ai/order-engine/internal/ticket"
)

const catalogFixture = `{
	"results": [
		{"id": 1, "name": "Lácteos y huevos", "categories": [{"id": 11, "name": "Leche"}]},
		{"id": 2, "name": "Panadería", "categories": [{"id": 21, "name": "Pan"}]}
	]
}`

const milkFixture = `{
	"id": 11, "categories": [{"id": 111, "name": "Leche UHT", "products": [
		{"id": 1001, "display_name": "Leche entera 1L", "price_instructions": {"unit_price": "0.89"}},
		{"id": 1002, "display_name": "Leche desnatada 1L", "price_instructions": {"unit_price": "0.59"}}
	]}]
}`

const breadFixture = `{
	"id": 21, "categories": [{"id": 211, "name": "Pan blanco", "products": [
		{"id": 2001, "display_name": "Pan de molde", "price_instructions": {"unit_price": "1.15"}}
	]}]
}`

func fixtureServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/categories/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/categories/":
			fmt.Fprint(w, catalogFixture)
		case "/categories/11":
			fmt.Fprint(w, milkFixture)
		case "/categories/21":
			fmt.Fprint(w, breadFixture)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newTestPipeline(t *testing.T, cfg Config) *Pipeline {
	t.Helper()
	if cfg.Provider == nil {
		srv := fixtureServer(t)
		logger := observability.Nop()
		client := catalog.NewClient(catalog.ClientConfig{BaseURL: srv.URL, Timeout: 2 * time.Second}, logger)
		builder := catalog.NewBuilder(client, logger, catalog.BuilderConfig{Workers: 2})
		cfg.Provider = catalog.NewProvider(builder, cache.NewMemoryClient(), time.Hour, logger)
	}
	return New(cfg)
}

func TestProcess_FullChain(t *testing.T) {
	p := newTestPipeline(t, Config{})

	result, err := p.Process(context.Background(), "quiero 2 leches y 3 panes")
	require.NoError(t, err)

	assert.Equal(t, parse.IntentPurchase, result.Intent)
	assert.Empty(t, result.Unmatched)

	lines := result.Ticket.Record.Lines
	require.Len(t, lines, 2)
	// Cheapest milk wins; quantities follow the utterance.
	assert.Equal(t, "Leche desnatada 1L", lines[0].DisplayName)
	assert.Equal(t, 2.0, lines[0].Quantity)
	assert.Equal(t, 1.18, lines[0].LineTotal)
	assert.Equal(t, "Pan de molde", lines[1].DisplayName)
	assert.Equal(t, 3.0, lines[1].Quantity)
	assert.Equal(t, 3.45, lines[1].LineTotal)
	assert.Equal(t, 4.63, result.Ticket.Record.Summary.Total)

	assert.Contains(t, result.Ticket.DisplayText, "TOTAL A PAGAR")

	_, err = uuid.Parse(result.OrderID)
	assert.NoError(t, err)
}

func TestProcess_BareMentionDefaultsToOneUnit(t *testing.T) {
	p := newTestPipeline(t, Config{})

	result, err := p.Process(context.Background(), "necesito leche")
	require.NoError(t, err)

	lines := result.Ticket.Record.Lines
	require.Len(t, lines, 1)
	assert.Equal(t, 1.0, lines[0].Quantity)
	assert.Equal(t, 0.59, result.Ticket.Record.Summary.Total)
}

func TestProcess_UnmatchedMentionSurvives(t *testing.T) {
	p := newTestPipeline(t, Config{})

	result, err := p.Process(context.Background(), "quiero leche y salmon")
	require.NoError(t, err)

	require.Len(t, result.Ticket.Record.Lines, 1)
	assert.Equal(t, []string{"salmon"}, result.Unmatched)
}

func TestProcess_ExportAndHistory(t *testing.T) {
	dir := t.TempDir()
	db, err := storage.Open(filepath.Join(dir, "orders.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	repo := storage.NewOrderRepository(db)

	p := newTestPipeline(t, Config{
		Exporter: ticket.NewExporter(filepath.Join(dir, "tickets"), nil),
		Orders:   repo,
	})

	result, err := p.Process(context.Background(), "quiero 2 leches")
	require.NoError(t, err)

	require.NotEmpty(t, result.Exports.JSON)
	for _, path := range []string{result.Exports.JSON, result.Exports.TXT, result.Exports.CSV} {
		_, err := os.Stat(path)
		assert.NoError(t, err)
	}

	id, err := uuid.Parse(result.OrderID)
	require.NoError(t, err)
	stored, err := repo.GetByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "quiero 2 leches", stored.Utterance)
	assert.Equal(t, 1.18, stored.Total)
}

func TestProcess_CatalogDownFails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	t.Cleanup(srv.Close)

	logger := observability.Nop()
	client := catalog.NewClient(catalog.ClientConfig{BaseURL: srv.URL, Timeout: time.Second}, logger)
	builder := catalog.NewBuilder(client, logger, catalog.BuilderConfig{})
	p := New(Config{Provider: catalog.NewProvider(builder, nil, time.Hour, logger)})

	_, err := p.Process(context.Background(), "quiero leche")
	require.Error(t, err)
}
