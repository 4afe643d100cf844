package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/babblebey/events-ting-sub003/internal/app"
	"github.com/babblebey/events-ting-sub003/internal/domain"
)

// AdminService is the minimal interface needed by the admin endpoints.
type AdminService interface {
	CreateEvent(ctx context.Context, in app.CreateEventInput) (domain.Event, error)
	ListEvents(ctx context.Context) ([]domain.Event, error)
	CreateTicketType(ctx context.Context, in app.CreateTicketTypeInput) (domain.TicketType, error)
	ListTicketTypes(ctx context.Context, eventID string) ([]app.TicketTypeSummary, error)
}

type createEventRequest struct {
	Name     string `json:"name"`
	StartsAt string `json:"starts_at,omitempty"`
}

type eventResponse struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	StartsAt time.Time `json:"starts_at"`
}

func HandleCreateEvent(svc AdminService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createEventRequest
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
			return
		}

		var startsAt *time.Time
		if req.StartsAt != "" {
			parsed, err := time.Parse(time.RFC3339, req.StartsAt)
			if err != nil {
				writeError(w, http.StatusBadRequest, codeInvalidStartsAt, "invalid starts_at format")
				return
			}
			startsAt = &parsed
		}

		event, err := svc.CreateEvent(r.Context(), app.CreateEventInput{
			Name:     req.Name,
			StartsAt: startsAt,
		})
		if err != nil {
			writeDomainError(w, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(eventResponse{
			ID:       event.ID,
			Name:     event.Name,
			StartsAt: event.StartsAt,
		})
	}
}

func HandleListEvents(svc AdminService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		events, err := svc.ListEvents(r.Context())
		if err != nil {
			writeDomainError(w, err)
			return
		}
		resp := make([]eventResponse, 0, len(events))
		for _, event := range events {
			resp = append(resp, eventResponse{
				ID:       event.ID,
				Name:     event.Name,
				StartsAt: event.StartsAt,
			})
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}
}

type createTicketTypeRequest struct {
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"`
	SaleStart string `json:"sale_start,omitempty"`
	SaleEnd   string `json:"sale_end,omitempty"`
	Currency  string `json:"currency,omitempty"`
}

type ticketTypeResponse struct {
	ID         string     `json:"id"`
	EventID    string     `json:"event_id"`
	Name       string     `json:"name"`
	Quantity   int        `json:"quantity"`
	SaleStart  *time.Time `json:"sale_start,omitempty"`
	SaleEnd    *time.Time `json:"sale_end,omitempty"`
	Currency   string     `json:"currency"`
	PriceCents int        `json:"price_cents"`
	SoldCount  *int       `json:"sold_count,omitempty"`
	Available  *int       `json:"available,omitempty"`
	OnSale     *bool      `json:"on_sale,omitempty"`
}

func HandleCreateTicketType(svc AdminService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		eventID := chi.URLParam(r, "eventID")

		var req createTicketTypeRequest
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
			return
		}

		saleStart, ok := parseOptionalTime(w, req.SaleStart, "sale_start")
		if !ok {
			return
		}
		saleEnd, ok := parseOptionalTime(w, req.SaleEnd, "sale_end")
		if !ok {
			return
		}

		tt, err := svc.CreateTicketType(r.Context(), app.CreateTicketTypeInput{
			EventID:   eventID,
			Name:      req.Name,
			Quantity:  req.Quantity,
			SaleStart: saleStart,
			SaleEnd:   saleEnd,
			Currency:  req.Currency,
		})
		if err != nil {
			writeDomainError(w, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(ticketTypeResponse{
			ID:         tt.ID,
			EventID:    tt.EventID,
			Name:       tt.Name,
			Quantity:   tt.Quantity,
			SaleStart:  tt.SaleStart,
			SaleEnd:    tt.SaleEnd,
			Currency:   tt.Currency,
			PriceCents: tt.PriceCents,
		})
	}
}

func HandleListTicketTypes(svc AdminService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		eventID := chi.URLParam(r, "eventID")

		summaries, err := svc.ListTicketTypes(r.Context(), eventID)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		resp := make([]ticketTypeResponse, 0, len(summaries))
		for _, s := range summaries {
			sold, available, onSale := s.Inventory.SoldCount, s.Inventory.Available, s.Inventory.OnSale
			resp = append(resp, ticketTypeResponse{
				ID:         s.TicketType.ID,
				EventID:    s.TicketType.EventID,
				Name:       s.TicketType.Name,
				Quantity:   s.TicketType.Quantity,
				SaleStart:  s.TicketType.SaleStart,
				SaleEnd:    s.TicketType.SaleEnd,
				Currency:   s.TicketType.Currency,
				PriceCents: s.TicketType.PriceCents,
				SoldCount:  &sold,
				Available:  &available,
				OnSale:     &onSale,
			})
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}
}

func parseOptionalTime(w http.ResponseWriter, value, field string) (*time.Time, bool) {
	if value == "" {
		return nil, true
	}
	parsed, err := time.Parse(time.RFC3339, value)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidStartsAt, "invalid "+field+" format")
		return nil, false
	}
	return &parsed, true
}
