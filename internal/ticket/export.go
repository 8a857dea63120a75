package ticket

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/despensa-ai/order-engine/internal/observability"
)

// filenameStamp keys exported files to the second the ticket was composed.
const filenameStamp = "20060102_150405"

// ExportPaths holds the absolute paths of the files written for one ticket.
type ExportPaths struct {
	JSON string `json:"json_path"`
	TXT  string `json:"txt_path"`
	CSV  string `json:"csv_path"`
}

// Exporter writes composed tickets to disk in JSON, TXT and CSV form.
type Exporter struct {
	dir    string
	logger *observability.Logger
}

func NewExporter(dir string, logger *observability.Logger) *Exporter {
	if dir == "" {
		dir = "tickets"
	}
	if logger == nil {
		logger = observability.Nop()
	}
	return &Exporter{dir: dir, logger: logger}
}

// Export writes all three formats for the ticket. Files share a
// ticket_<timestamp> base name so they sort and group together.
func (e *Exporter) Export(t Ticket) (ExportPaths, error) {
	if err := os.MkdirAll(e.dir, 0o755); err != nil {
		return ExportPaths{}, fmt.Errorf("creating export directory %s: %w", e.dir, err)
	}

	base := "ticket_" + t.Record.CreatedAt.Format(filenameStamp)
	var paths ExportPaths
	var err error

	if paths.JSON, err = e.writeJSON(filepath.Join(e.dir, base+".json"), t); err != nil {
		return ExportPaths{}, err
	}
	if paths.TXT, err = e.writeTXT(filepath.Join(e.dir, base+".txt"), t); err != nil {
		return ExportPaths{}, err
	}
	if paths.CSV, err = e.writeCSV(filepath.Join(e.dir, base+".csv"), t); err != nil {
		return ExportPaths{}, err
	}

	e.logger.Info().
		Str("ticket_id", t.Record.ID).
		Str("json", paths.JSON).
		Str("txt", paths.TXT).
		Str("csv", paths.CSV).
		Msg("Exported ticket files")
	return paths, nil
}

func (e *Exporter) writeJSON(path string, t Ticket) (string, error) {
	data, err := json.MarshalIndent(t.Record, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding ticket record: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing %s: %w", path, err)
	}
	return filepath.Abs(path)
}

func (e *Exporter) writeTXT(path string, t Ticket) (string, error) {
	if err := os.WriteFile(path, []byte(t.DisplayText), 0o644); err != nil {
		return "", fmt.Errorf("writing %s: %w", path, err)
	}
	return filepath.Abs(path)
}

func (e *Exporter) writeCSV(path string, t Ticket) (string, error) {
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	rows := [][]string{
		{"DESPENSA - TICKET DE COMPRA"},
		{"Fecha: " + t.Record.CreatedAt.Format(displayDateLayout)},
		{},
		{"Nº", "Producto", "Cantidad", "Precio Unitario (€)", "Precio Total (€)", "Packaging"},
	}
	for i, line := range t.Record.Lines {
		rows = append(rows, []string{
			fmt.Sprint(i + 1),
			line.DisplayName,
			formatQuantity(line.Quantity),
			fmt.Sprintf("%.2f", line.UnitPrice),
			fmt.Sprintf("%.2f", line.LineTotal),
			line.Packaging,
		})
	}
	rows = append(rows,
		[]string{},
		[]string{"RESUMEN"},
		[]string{"Artículos diferentes", fmt.Sprint(t.Record.Summary.DistinctItems)},
		[]string{"Unidades totales", formatQuantity(t.Record.Summary.TotalUnits)},
		[]string{},
		[]string{"Subtotal", fmt.Sprintf("%.2f€", t.Record.Summary.Subtotal)},
		[]string{"Descuentos", fmt.Sprintf("%.2f€", t.Record.Summary.Discounts)},
		[]string{"TOTAL A PAGAR", fmt.Sprintf("%.2f€", t.Record.Summary.Total)},
	)

	if err := w.WriteAll(rows); err != nil {
		return "", fmt.Errorf("writing %s: %w", path, err)
	}
	return filepath.Abs(path)
}
