package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/babblebey/events-ting-sub003/internal/domain"
)

const (
	codeMethodNotAllowed      = "method_not_allowed"
	codeNotFound              = "not_found"
	codeInvalidRequestBody    = "invalid_request_body"
	codeInvalidStartsAt       = "invalid_starts_at"
	codeInvalidID             = "invalid_id"
	codeEventNameRequired     = "event_name_required"
	codeTicketNameRequired    = "ticket_type_name_required"
	codeInvalidQuantity       = "invalid_quantity"
	codeInvalidSaleWindow     = "invalid_sale_window"
	codeEventNotFound         = "event_not_found"
	codeTicketTypeNotFound    = "ticket_type_not_found"
	codeRegistrationNotFound  = "registration_not_found"
	codeSoldOut               = "sold_out"
	codeSaleNotStarted        = "sale_not_started"
	codeSaleEnded             = "sale_ended"
	codeEmailRequired         = "email_required"
	codeEmailInvalid          = "email_invalid"
	codeNameRequired          = "name_required"
	codeNameInvalid           = "name_invalid"
	codeInvalidStrategy       = "invalid_duplicate_strategy"
	codeBusy                  = "busy"
	codeForbidden             = "forbidden"
	codeInternalError         = "internal_error"
)

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	payload, err := json.Marshal(errorResponse{
		Error: msg,
		Code:  code,
	})
	if err != nil {
		_, _ = w.Write([]byte(`{"error":"internal error","code":"internal_error"}`))
		return
	}
	_, _ = w.Write(payload)
}

// writeDomainError maps domain sentinel errors to HTTP statuses. Capacity
// rejections are conflicts, ErrBusy asks the caller to retry.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrEventNotFound):
		writeError(w, http.StatusNotFound, codeEventNotFound, err.Error())
	case errors.Is(err, domain.ErrTicketTypeNotFound):
		writeError(w, http.StatusNotFound, codeTicketTypeNotFound, err.Error())
	case errors.Is(err, domain.ErrRegistrationNotFound):
		writeError(w, http.StatusNotFound, codeRegistrationNotFound, err.Error())
	case errors.Is(err, domain.ErrInvalidID):
		writeError(w, http.StatusBadRequest, codeInvalidID, err.Error())
	case errors.Is(err, domain.ErrSoldOut):
		writeError(w, http.StatusConflict, codeSoldOut, err.Error())
	case errors.Is(err, domain.ErrSaleNotStarted):
		writeError(w, http.StatusConflict, codeSaleNotStarted, err.Error())
	case errors.Is(err, domain.ErrSaleEnded):
		writeError(w, http.StatusConflict, codeSaleEnded, err.Error())
	case errors.Is(err, domain.ErrEmailRequired):
		writeError(w, http.StatusBadRequest, codeEmailRequired, err.Error())
	case errors.Is(err, domain.ErrEmailInvalid):
		writeError(w, http.StatusBadRequest, codeEmailInvalid, err.Error())
	case errors.Is(err, domain.ErrNameRequired):
		writeError(w, http.StatusBadRequest, codeNameRequired, err.Error())
	case errors.Is(err, domain.ErrNameInvalid):
		writeError(w, http.StatusBadRequest, codeNameInvalid, err.Error())
	case errors.Is(err, domain.ErrEventNameRequired):
		writeError(w, http.StatusBadRequest, codeEventNameRequired, err.Error())
	case errors.Is(err, domain.ErrTicketNameRequired):
		writeError(w, http.StatusBadRequest, codeTicketNameRequired, err.Error())
	case errors.Is(err, domain.ErrInvalidQuantity):
		writeError(w, http.StatusBadRequest, codeInvalidQuantity, err.Error())
	case errors.Is(err, domain.ErrInvalidSaleWindow):
		writeError(w, http.StatusBadRequest, codeInvalidSaleWindow, err.Error())
	case errors.Is(err, domain.ErrBusy):
		writeError(w, http.StatusServiceUnavailable, codeBusy, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
	}
}
