package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/babblebey/events-ting-sub003/internal/app"
	"github.com/babblebey/events-ting-sub003/internal/domain"
)

// ImportValidator runs the dry-run validation pass.
type ImportValidator interface {
	Validate(ctx context.Context, eventID string, rows [][]string, mapping domain.FieldMapping) (domain.ValidationReport, error)
}

// ImportExecutor materializes rows as registrations.
type ImportExecutor interface {
	Execute(ctx context.Context, in app.ExecuteImportInput) (domain.ExecutionReport, error)
}

type importRequest struct {
	Rows [][]string `json:"rows"`
	// Mapping keys are stringified 0-based column indexes; values are
	// canonical field names or attr:-prefixed custom keys.
	Mapping           map[string]string `json:"mapping"`
	DuplicateStrategy string            `json:"duplicate_strategy"`
	SendNotifications bool              `json:"send_notifications"`
}

// decodeImportRequest accepts either a JSON body with pre-parsed rows or a
// raw text/csv upload whose header drives the field mapping. For CSV, the
// strategy and notification flag ride on query parameters.
func decodeImportRequest(r *http.Request) (importRequest, domain.FieldMapping, error) {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "text/csv") {
		rows, mapping, err := app.ReadCSV(r.Body)
		if err != nil {
			return importRequest{}, nil, err
		}
		req := importRequest{
			Rows:              rows,
			DuplicateStrategy: r.URL.Query().Get("duplicate_strategy"),
			SendNotifications: r.URL.Query().Get("send_notifications") == "true",
		}
		return req, mapping, nil
	}

	var req importRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		return importRequest{}, nil, err
	}
	mapping := make(domain.FieldMapping, len(req.Mapping))
	for col, field := range req.Mapping {
		idx, err := strconv.Atoi(col)
		if err != nil || idx < 0 {
			continue
		}
		mapping[idx] = field
	}
	return req, mapping, nil
}

// HandleValidateImport is the dry-run endpoint; it writes nothing.
func HandleValidateImport(svc ImportValidator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		eventID := chi.URLParam(r, "eventID")

		req, mapping, err := decodeImportRequest(r)
		if err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, err.Error())
			return
		}

		report, err := svc.Validate(r.Context(), eventID, req.Rows, mapping)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(report)
	}
}

// HandleExecuteImport runs the import; per-row failures land in the report,
// never in the HTTP status.
func HandleExecuteImport(svc ImportExecutor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		eventID := chi.URLParam(r, "eventID")

		req, mapping, err := decodeImportRequest(r)
		if err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, err.Error())
			return
		}
		strategy := domain.DuplicateStrategy(req.DuplicateStrategy)
		if req.DuplicateStrategy == "" {
			strategy = domain.DuplicateSkip
		} else if !domain.ValidDuplicateStrategy(req.DuplicateStrategy) {
			writeError(w, http.StatusBadRequest, codeInvalidStrategy, "duplicate_strategy must be skip or create")
			return
		}

		report, err := svc.Execute(r.Context(), app.ExecuteImportInput{
			EventID:           eventID,
			Rows:              req.Rows,
			Mapping:           mapping,
			Strategy:          strategy,
			SendNotifications: req.SendNotifications,
		})
		if err != nil {
			writeDomainError(w, err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(report)
	}
}
