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

// Reserver is the minimal interface needed by the registration endpoints.
type Reserver interface {
	Reserve(ctx context.Context, in app.ReserveInput) (domain.Registration, error)
	Cancel(ctx context.Context, registrationID string) error
}

// AvailabilityReader exposes ledger snapshots.
type AvailabilityReader interface {
	Counts(ctx context.Context, ticketTypeID string) (domain.Inventory, error)
}

type createRegistrationRequest struct {
	TicketTypeID string            `json:"ticket_type_id"`
	Email        string            `json:"email"`
	Name         string            `json:"name"`
	Attributes   map[string]string `json:"attributes,omitempty"`

	// ManualAdd marks an organizer override: the registration is issued
	// even when the type is sold out or outside its sale window.
	ManualAdd bool `json:"manual_add,omitempty"`
}

type registrationResponse struct {
	RegistrationID   string            `json:"registration_id"`
	RegistrationCode string            `json:"registration_code"`
	EventID          string            `json:"event_id"`
	TicketTypeID     string            `json:"ticket_type_id"`
	Email            string            `json:"email"`
	Name             string            `json:"name"`
	Attributes       map[string]string `json:"attributes,omitempty"`
	CreatedAt        time.Time         `json:"created_at"`
}

// HandleCreateRegistration serves both public self-registration and
// organizer manual-add.
func HandleCreateRegistration(svc Reserver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createRegistrationRequest
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
			return
		}
		if req.TicketTypeID == "" {
			writeError(w, http.StatusBadRequest, codeInvalidID, "ticket_type_id is required")
			return
		}

		reg, err := svc.Reserve(r.Context(), app.ReserveInput{
			TicketTypeID:       req.TicketTypeID,
			Email:              req.Email,
			Name:               req.Name,
			Attributes:         req.Attributes,
			BypassAvailability: req.ManualAdd,
		})
		if err != nil {
			writeDomainError(w, err)
			return
		}

		resp := registrationResponse{
			RegistrationID:   reg.ID,
			RegistrationCode: reg.Code,
			EventID:          reg.EventID,
			TicketTypeID:     reg.TicketTypeID,
			Email:            reg.Email,
			Name:             reg.Name,
			Attributes:       reg.Attributes,
			CreatedAt:        reg.CreatedAt,
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(resp)
	}
}

// HandleCancelRegistration hard-deletes a registration and frees its
// inventory unit.
func HandleCancelRegistration(svc Reserver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "registrationID")
		if id == "" {
			writeError(w, http.StatusBadRequest, codeInvalidID, "registration id is required")
			return
		}
		if err := svc.Cancel(r.Context(), id); err != nil {
			writeDomainError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

type availabilityResponse struct {
	Quantity  int  `json:"quantity"`
	SoldCount int  `json:"sold_count"`
	Available int  `json:"available"`
	OnSale    bool `json:"on_sale"`
}

// HandleAvailability returns the live inventory snapshot for a ticket type.
func HandleAvailability(ledger AvailabilityReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "ticketTypeID")
		inv, err := ledger.Counts(r.Context(), id)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(availabilityResponse{
			Quantity:  inv.Quantity,
			SoldCount: inv.SoldCount,
			Available: inv.Available,
			OnSale:    inv.OnSale,
		})
	}
}
