package ticket

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/despensa-ai/order-engine/internal/pricing"
)

func sampleLedger() pricing.Ledger {
	return pricing.Ledger{
		Lines: []pricing.PricedLine{
			{ProductID: 1, DisplayName: "Leche entera 1L", Packaging: "Brik", Quantity: 2, UnitPrice: 0.59, LineTotal: 1.18},
			{ProductID: 2, DisplayName: "Pan de molde", Quantity: 3, UnitPrice: 1.15, LineTotal: 3.45},
		},
		Subtotal:          4.63,
		Total:             4.63,
		DistinctLineCount: 2,
		TotalUnits:        5,
	}
}

func fixedComposer(at time.Time) *Composer {
	c := NewComposer()
	c.now = func() time.Time { return at }
	return c
}

func TestCompose_RecordFields(t *testing.T) {
	at := time.Date(2026, 3, 14, 9, 30, 0, 0, time.Local)
	tk := fixedComposer(at).Compose("quiero 2 leches y 3 panes", sampleLedger(), []string{"caviar"})

	_, err := uuid.Parse(tk.Record.ID)
	require.NoError(t, err)
	assert.Equal(t, at, tk.Record.CreatedAt)
	assert.Equal(t, "quiero 2 leches y 3 panes", tk.Record.Utterance)
	assert.Equal(t, 2, tk.Record.Summary.DistinctItems)
	assert.Equal(t, 5.0, tk.Record.Summary.TotalUnits)
	assert.Equal(t, 4.63, tk.Record.Summary.Total)
	assert.Equal(t, 0.0, tk.Record.Summary.Discounts)
	assert.Equal(t, []string{"caviar"}, tk.Record.Unmatched)
	require.Len(t, tk.Record.Lines, 2)
}

func TestCompose_ReceiptLayout(t *testing.T) {
	at := time.Date(2026, 3, 14, 9, 30, 0, 0, time.Local)
	tk := fixedComposer(at).Compose("quiero 2 leches y 3 panes", sampleLedger(), nil)

	text := tk.DisplayText
	assert.Contains(t, text, "DESPENSA - TICKET DE COMPRA")
	assert.Contains(t, text, "Fecha: 14/03/2026 09:30:00")
	assert.Contains(t, text, "1. Leche entera 1L")
	assert.Contains(t, text, "   Brik")
	assert.Contains(t, text, "   2 x 0.59€ = 1.18€")
	assert.Contains(t, text, "2. Pan de molde")
	assert.Contains(t, text, "   3 x 1.15€ = 3.45€")
	assert.Contains(t, text, "Artículos diferentes: 2")
	assert.Contains(t, text, "Unidades totales: 5")
	assert.Contains(t, text, "TOTAL A PAGAR:       4.63€")
	assert.Contains(t, text, "¡Gracias por su compra!")
}

func TestCompose_UnmatchedStaysOffReceipt(t *testing.T) {
	tk := NewComposer().Compose("quiero caviar y leche", sampleLedger(), []string{"caviar"})
	assert.NotContains(t, tk.DisplayText, "caviar")
}

func TestCompose_EmptyLedger(t *testing.T) {
	tk := NewComposer().Compose("hola", pricing.Ledger{Note: "pricing failure: boom"}, nil)
	assert.Contains(t, tk.DisplayText, "TOTAL A PAGAR:       0.00€")
	assert.Equal(t, "pricing failure: boom", tk.Record.Note)
	assert.Empty(t, tk.Record.Lines)
}

func TestFormatQuantity(t *testing.T) {
	assert.Equal(t, "2", formatQuantity(2))
	assert.Equal(t, "0.5", formatQuantity(0.5))
	assert.Equal(t, "1.25", formatQuantity(1.25))
	assert.Equal(t, "0", formatQuantity(0))
}

func TestExport_WritesAllThreeFormats(t *testing.T) {
	dir := t.TempDir()
	at := time.Date(2026, 3, 14, 9, 30, 0, 0, time.Local)
	tk := fixedComposer(at).Compose("quiero 2 leches", sampleLedger(), nil)

	paths, err := NewExporter(dir, nil).Export(tk)
	require.NoError(t, err)

	assert.Equal(t, "ticket_20260314_093000.json", filepath.Base(paths.JSON))
	assert.Equal(t, "ticket_20260314_093000.txt", filepath.Base(paths.TXT))
	assert.Equal(t, "ticket_20260314_093000.csv", filepath.Base(paths.CSV))

	data, err := os.ReadFile(paths.JSON)
	require.NoError(t, err)
	var record Record
	require.NoError(t, json.Unmarshal(data, &record))
	assert.Equal(t, tk.Record.ID, record.ID)
	assert.Equal(t, 4.63, record.Summary.Total)

	txt, err := os.ReadFile(paths.TXT)
	require.NoError(t, err)
	assert.Equal(t, tk.DisplayText, string(txt))

	csvBody, err := os.ReadFile(paths.CSV)
	require.NoError(t, err)
	assert.Contains(t, string(csvBody), "Nº,Producto,Cantidad")
	assert.Contains(t, string(csvBody), "Leche entera 1L,2,0.59,1.18,Brik")
	assert.Contains(t, string(csvBody), "TOTAL A PAGAR,4.63€")
}

func TestExport_CreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "tickets")
	tk := NewComposer().Compose("leche", sampleLedger(), nil)

	paths, err := NewExporter(dir, nil).Export(tk)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(paths.TXT, string(filepath.Separator)) || filepath.IsAbs(paths.TXT))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 3)
}
