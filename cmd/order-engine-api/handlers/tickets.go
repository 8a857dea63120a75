package handlers

import (
	"net/http"
	"os"
	"path/filepath"
	"regexp"

	"github.com/go-chi/chi/v5"

	"github.com/despensa-ai/order-engine/internal/observability"
)

// ticketFileRe pins downloads to exporter-generated names so path segments
// can never escape the export directory.
var ticketFileRe = regexp.MustCompile(`^ticket_\d{8}_\d{6}\.(json|txt|csv)$`)

// TicketHandler serves exported ticket files for download.
type TicketHandler struct {
	logger *observability.Logger
	dir    string
}

// NewTicketHandler creates a new ticket download handler.
func NewTicketHandler(logger *observability.Logger, dir string) *TicketHandler {
	return &TicketHandler{logger: logger, dir: dir}
}

// Download handles GET /tickets/{filename}.
func (h *TicketHandler) Download(w http.ResponseWriter, r *http.Request) {
	filename := chi.URLParam(r, "filename")
	if !ticketFileRe.MatchString(filename) {
		writeError(w, http.StatusBadRequest, "invalid ticket filename", "")
		return
	}

	path := filepath.Join(h.dir, filename)
	if _, err := os.Stat(path); err != nil {
		writeError(w, http.StatusNotFound, "ticket file not found", "")
		return
	}

	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	http.ServeFile(w, r, path)
}
