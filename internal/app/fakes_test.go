package app

import (
	"context"
	"strings"
	"sync"

	"github.com/babblebey/events-ting-sub003/internal/domain"
)

// fakeStore implements the repository interfaces in memory. WithTx holds a
// single mutex for the whole unit of work, which mirrors the row-lock
// serialization the Postgres repository provides per ticket type.
type fakeStore struct {
	mu sync.Mutex

	events map[string]domain.Event
	types  map[string]domain.TicketType
	regs   map[string]domain.Registration

	createErr error
	busyOnce  bool
}

func newFakeStore(events []domain.Event, types []domain.TicketType, regs []domain.Registration) *fakeStore {
	f := &fakeStore{
		events: make(map[string]domain.Event),
		types:  make(map[string]domain.TicketType),
		regs:   make(map[string]domain.Registration),
	}
	for _, e := range events {
		f.events[e.ID] = e
	}
	for _, tt := range types {
		f.types[tt.ID] = tt
	}
	for _, r := range regs {
		f.regs[r.ID] = r
	}
	return f
}

func (f *fakeStore) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return fn(ctx)
}

func (f *fakeStore) GetTicketTypeForUpdate(_ context.Context, id string) (domain.TicketType, error) {
	if f.busyOnce {
		f.busyOnce = false
		return domain.TicketType{}, domain.ErrBusy
	}
	tt, ok := f.types[id]
	if !ok {
		return domain.TicketType{}, domain.ErrTicketTypeNotFound
	}
	return tt, nil
}

func (f *fakeStore) GetTicketType(_ context.Context, id string) (domain.TicketType, error) {
	tt, ok := f.types[id]
	if !ok {
		return domain.TicketType{}, domain.ErrTicketTypeNotFound
	}
	return tt, nil
}

func (f *fakeStore) CountRegistrations(_ context.Context, ticketTypeID string) (int, error) {
	count := 0
	for _, r := range f.regs {
		if r.TicketTypeID == ticketTypeID {
			count++
		}
	}
	return count, nil
}

func (f *fakeStore) CreateRegistration(_ context.Context, reg domain.Registration) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.regs[reg.ID] = reg
	return nil
}

func (f *fakeStore) DeleteRegistration(_ context.Context, id string) error {
	if _, ok := f.regs[id]; !ok {
		return domain.ErrRegistrationNotFound
	}
	delete(f.regs, id)
	return nil
}

func (f *fakeStore) GetEvent(_ context.Context, id string) (domain.Event, error) {
	e, ok := f.events[id]
	if !ok {
		return domain.Event{}, domain.ErrEventNotFound
	}
	return e, nil
}

func (f *fakeStore) ListTicketTypesByEvent(_ context.Context, eventID string) ([]domain.TicketType, error) {
	var out []domain.TicketType
	for _, tt := range f.types {
		if tt.EventID == eventID {
			out = append(out, tt)
		}
	}
	return out, nil
}

func (f *fakeStore) FindRegisteredEmails(_ context.Context, eventID string, emails []string) (map[string]bool, error) {
	wanted := make(map[string]bool, len(emails))
	for _, e := range emails {
		wanted[strings.ToLower(e)] = true
	}
	found := make(map[string]bool)
	for _, r := range f.regs {
		if r.EventID == eventID && wanted[r.Email] {
			found[r.Email] = true
		}
	}
	return found, nil
}

func (f *fakeStore) CreateEvent(_ context.Context, event domain.Event) error {
	f.events[event.ID] = event
	return nil
}

func (f *fakeStore) ListEvents(_ context.Context) ([]domain.Event, error) {
	out := make([]domain.Event, 0, len(f.events))
	for _, e := range f.events {
		out = append(out, e)
	}
	return out, nil
}

func (f *fakeStore) CreateTicketType(_ context.Context, tt domain.TicketType) error {
	if _, ok := f.events[tt.EventID]; !ok {
		return domain.ErrEventNotFound
	}
	f.types[tt.ID] = tt
	return nil
}

func (f *fakeStore) registrationCount(ticketTypeID string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	count := 0
	for _, r := range f.regs {
		if r.TicketTypeID == ticketTypeID {
			count++
		}
	}
	return count
}

// fakeNotifier records confirmation sends on a buffered channel so tests
// can wait for the async dispatch.
type fakeNotifier struct {
	calls chan string
}

func newFakeNotifier() *fakeNotifier {
	return &fakeNotifier{calls: make(chan string, 64)}
}

func (n *fakeNotifier) RegistrationConfirmed(_ context.Context, reg domain.Registration, _ domain.TicketType) {
	n.calls <- reg.ID
}
