// Package ticket renders a priced ledger into a customer-facing receipt and
// a structured record suitable for persistence and export.
package ticket

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/despensa-ai/order-engine/internal/pricing"
)

const (
	heavyRule = "═══════════════════════════════════════════════════════"
	lightRule = "───────────────────────────────────────────────────────"

	// displayDateLayout matches the day-first format printed on receipts.
	displayDateLayout = "02/01/2006 15:04:05"
)

// Summary is the totals block of a ticket record.
type Summary struct {
	DistinctItems int     `json:"distinct_items"`
	TotalUnits    float64 `json:"total_units"`
	Subtotal      float64 `json:"subtotal"`
	Discounts     float64 `json:"discounts"`
	Total         float64 `json:"total"`
}

// Record is the structured form of a composed ticket.
type Record struct {
	ID        string               `json:"id"`
	CreatedAt time.Time            `json:"created_at"`
	Utterance string               `json:"utterance,omitempty"`
	Summary   Summary              `json:"summary"`
	Lines     []pricing.PricedLine `json:"lines"`
	Unmatched []string             `json:"unmatched,omitempty"`
	Note      string               `json:"note,omitempty"`
}

// Ticket couples the printable receipt with its structured record.
type Ticket struct {
	DisplayText string `json:"display_text"`
	Record      Record `json:"record"`
}

// Composer builds tickets. The clock is injectable so tests get stable
// timestamps.
type Composer struct {
	now func() time.Time
}

func NewComposer() *Composer {
	return &Composer{now: time.Now}
}

// Compose renders the ledger into a receipt and record. The utterance is
// carried verbatim for traceability; unmatched mentions appear on the record
// but never on the printed receipt.
func (c *Composer) Compose(utterance string, ledger pricing.Ledger, unmatched []string) Ticket {
	record := Record{
		ID:        uuid.New().String(),
		CreatedAt: c.now(),
		Utterance: utterance,
		Summary: Summary{
			DistinctItems: ledger.DistinctLineCount,
			TotalUnits:    ledger.TotalUnits,
			Subtotal:      ledger.Subtotal,
			Discounts:     ledger.Discount,
			Total:         ledger.Total,
		},
		Lines:     ledger.Lines,
		Unmatched: unmatched,
		Note:      ledger.Note,
	}

	return Ticket{
		DisplayText: renderReceipt(record),
		Record:      record,
	}
}

// renderReceipt produces the boxed plain-text receipt.
func renderReceipt(r Record) string {
	var b strings.Builder

	b.WriteString("╔" + heavyRule + "╗\n")
	b.WriteString("║              DESPENSA - TICKET DE COMPRA              ║\n")
	b.WriteString("╚" + heavyRule + "╝\n\n")
	fmt.Fprintf(&b, "Fecha: %s\n\n", r.CreatedAt.Format(displayDateLayout))

	b.WriteString(lightRule + "\n")
	b.WriteString("PRODUCTOS\n")
	b.WriteString(lightRule + "\n")
	for i, line := range r.Lines {
		fmt.Fprintf(&b, "%d. %s\n", i+1, line.DisplayName)
		if line.Packaging != "" {
			fmt.Fprintf(&b, "   %s\n", line.Packaging)
		}
		fmt.Fprintf(&b, "   %s x %.2f€ = %.2f€\n\n", formatQuantity(line.Quantity), line.UnitPrice, line.LineTotal)
	}

	b.WriteString(lightRule + "\n")
	b.WriteString("RESUMEN\n")
	b.WriteString(lightRule + "\n")
	fmt.Fprintf(&b, "Artículos diferentes: %d\n", r.Summary.DistinctItems)
	fmt.Fprintf(&b, "Unidades totales: %s\n\n", formatQuantity(r.Summary.TotalUnits))
	fmt.Fprintf(&b, "Subtotal:        %8.2f€\n", r.Summary.Subtotal)
	fmt.Fprintf(&b, "Descuentos:      %8.2f€\n", r.Summary.Discounts)
	b.WriteString(lightRule + "\n")
	fmt.Fprintf(&b, "TOTAL A PAGAR:   %8.2f€\n", r.Summary.Total)
	b.WriteString(heavyRule + "\n\n")
	b.WriteString("          ¡Gracias por su compra!\n")
	b.WriteString(heavyRule + "\n")

	return b.String()
}

// formatQuantity prints whole quantities without a decimal tail and
// fractional ones with up to two decimals.
func formatQuantity(q float64) string {
	if q == float64(int64(q)) {
		return fmt.Sprintf("%d", int64(q))
	}
	return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.2f", q), "0"), ".")
}
