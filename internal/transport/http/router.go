package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// RouterDeps carries the services the API surfaces.
type RouterDeps struct {
	Reservations Reserver
	Ledger       AvailabilityReader
	Admin        AdminService
	Validator    ImportValidator
	Executor     ImportExecutor
	CORSOrigins  []string
	Logger       *zap.Logger
}

// NewRouter wires the full HTTP surface.
func NewRouter(deps RouterDeps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/health", HealthHandler)

	r.Post("/registrations", HandleCreateRegistration(deps.Reservations))
	r.Delete("/registrations/{registrationID}", HandleCancelRegistration(deps.Reservations))
	r.Get("/ticket-types/{ticketTypeID}/availability", HandleAvailability(deps.Ledger))

	r.Route("/events/{eventID}/import", func(r chi.Router) {
		r.Post("/validate", HandleValidateImport(deps.Validator))
		r.Post("/execute", HandleExecuteImport(deps.Executor))
	})

	r.Route("/admin/events", func(r chi.Router) {
		r.Post("/", HandleCreateEvent(deps.Admin))
		r.Get("/", HandleListEvents(deps.Admin))
		r.Post("/{eventID}/ticket-types", HandleCreateTicketType(deps.Admin))
		r.Get("/{eventID}/ticket-types", HandleListTicketTypes(deps.Admin))
	})

	r.NotFound(NotFoundHandler().ServeHTTP)
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
	})

	return RequestLogger(CORS(deps.CORSOrigins, r), deps.Logger)
}
