package http

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/babblebey/events-ting-sub003/internal/app"
	"github.com/babblebey/events-ting-sub003/internal/domain"
)

type stubValidator struct {
	report     domain.ValidationReport
	err        error
	gotEventID string
	gotRows    [][]string
	gotMapping domain.FieldMapping
}

func (s *stubValidator) Validate(_ context.Context, eventID string, rows [][]string, mapping domain.FieldMapping) (domain.ValidationReport, error) {
	s.gotEventID = eventID
	s.gotRows = rows
	s.gotMapping = mapping
	return s.report, s.err
}

type stubExecutor struct {
	report domain.ExecutionReport
	err    error
	gotIn  app.ExecuteImportInput
}

func (s *stubExecutor) Execute(_ context.Context, in app.ExecuteImportInput) (domain.ExecutionReport, error) {
	s.gotIn = in
	return s.report, s.err
}

func newImportRouter(v ImportValidator, e ImportExecutor) http.Handler {
	r := chi.NewRouter()
	r.Route("/events/{eventID}/import", func(r chi.Router) {
		r.Post("/validate", HandleValidateImport(v))
		r.Post("/execute", HandleExecuteImport(e))
	})
	return r
}

func TestHandleValidateImport_JSON(t *testing.T) {
	t.Parallel()

	svc := &stubValidator{report: domain.ValidationReport{TotalRows: 2, ValidRows: 2}}
	router := newImportRouter(svc, nil)

	body := `{
		"rows": [["a@example.com","Alice A","VIP"],["b@example.com","Bob B","VIP"]],
		"mapping": {"0":"email","1":"name","2":"ticket_type"}
	}`
	req := httptest.NewRequest(http.MethodPost, "/events/e1/import/validate", bytes.NewBufferString(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if svc.gotEventID != "e1" {
		t.Fatalf("expected event e1, got %q", svc.gotEventID)
	}
	if len(svc.gotRows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(svc.gotRows))
	}
	if svc.gotMapping[2] != domain.FieldTicketType {
		t.Fatalf("unexpected mapping: %+v", svc.gotMapping)
	}
	if !strings.Contains(rec.Body.String(), `"valid_rows":2`) {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
}

func TestHandleValidateImport_CSV(t *testing.T) {
	t.Parallel()

	svc := &stubValidator{}
	router := newImportRouter(svc, nil)

	csvBody := "Email,Name,Ticket Type\na@example.com,Alice A,VIP\n"
	req := httptest.NewRequest(http.MethodPost, "/events/e1/import/validate", strings.NewReader(csvBody))
	req.Header.Set("Content-Type", "text/csv")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if len(svc.gotRows) != 1 || svc.gotRows[0][0] != "a@example.com" {
		t.Fatalf("unexpected rows: %+v", svc.gotRows)
	}
	if svc.gotMapping[0] != domain.FieldEmail || svc.gotMapping[2] != domain.FieldTicketType {
		t.Fatalf("unexpected mapping: %+v", svc.gotMapping)
	}
}

func TestHandleValidateImport_Errors(t *testing.T) {
	t.Parallel()

	t.Run("bad body", func(t *testing.T) {
		t.Parallel()
		router := newImportRouter(&stubValidator{}, nil)

		req := httptest.NewRequest(http.MethodPost, "/events/e1/import/validate", strings.NewReader(`{"rows":`))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected status 400, got %d", rec.Code)
		}
	})

	t.Run("event not found", func(t *testing.T) {
		t.Parallel()
		router := newImportRouter(&stubValidator{err: domain.ErrEventNotFound}, nil)

		req := httptest.NewRequest(http.MethodPost, "/events/e1/import/validate", strings.NewReader(`{"rows":[]}`))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected status 404, got %d", rec.Code)
		}
	})
}

func TestHandleExecuteImport(t *testing.T) {
	t.Parallel()

	t.Run("defaults to skip strategy", func(t *testing.T) {
		t.Parallel()
		svc := &stubExecutor{report: domain.ExecutionReport{SuccessCount: 1}}
		router := newImportRouter(nil, svc)

		body := `{"rows":[["a@example.com","Alice A","VIP"]],"mapping":{"0":"email","1":"name","2":"ticket_type"}}`
		req := httptest.NewRequest(http.MethodPost, "/events/e1/import/execute", bytes.NewBufferString(body))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if svc.gotIn.Strategy != domain.DuplicateSkip {
			t.Fatalf("expected skip strategy, got %q", svc.gotIn.Strategy)
		}
		if !strings.Contains(rec.Body.String(), `"success_count":1`) {
			t.Fatalf("unexpected body: %s", rec.Body.String())
		}
	})

	t.Run("passes create strategy and notification flag", func(t *testing.T) {
		t.Parallel()
		svc := &stubExecutor{}
		router := newImportRouter(nil, svc)

		body := `{"rows":[],"mapping":{},"duplicate_strategy":"create","send_notifications":true}`
		req := httptest.NewRequest(http.MethodPost, "/events/e1/import/execute", bytes.NewBufferString(body))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d", rec.Code)
		}
		if svc.gotIn.Strategy != domain.DuplicateCreate || !svc.gotIn.SendNotifications {
			t.Fatalf("unexpected input: %+v", svc.gotIn)
		}
	})

	t.Run("rejects unknown strategy", func(t *testing.T) {
		t.Parallel()
		router := newImportRouter(nil, &stubExecutor{})

		body := `{"rows":[],"mapping":{},"duplicate_strategy":"merge"}`
		req := httptest.NewRequest(http.MethodPost, "/events/e1/import/execute", bytes.NewBufferString(body))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected status 400, got %d", rec.Code)
		}
		if !strings.Contains(rec.Body.String(), "invalid_duplicate_strategy") {
			t.Fatalf("unexpected body: %s", rec.Body.String())
		}
	})

	t.Run("csv upload reads flags from query", func(t *testing.T) {
		t.Parallel()
		svc := &stubExecutor{}
		router := newImportRouter(nil, svc)

		csvBody := "Email,Name,Ticket Type\na@example.com,Alice A,VIP\n"
		target := "/events/e1/import/execute?duplicate_strategy=create&send_notifications=true"
		req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(csvBody))
		req.Header.Set("Content-Type", "text/csv")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d", rec.Code)
		}
		if svc.gotIn.Strategy != domain.DuplicateCreate || !svc.gotIn.SendNotifications {
			t.Fatalf("unexpected input: %+v", svc.gotIn)
		}
		if len(svc.gotIn.Rows) != 1 {
			t.Fatalf("expected 1 row, got %d", len(svc.gotIn.Rows))
		}
	})
}
