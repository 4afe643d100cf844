package app

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/babblebey/events-ting-sub003/internal/clock"
	"github.com/babblebey/events-ting-sub003/internal/domain"
)

func newExecutorFixture(regs []domain.Registration, notifier Notifier) (*ImportExecutionEngine, *fakeStore) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	store := newFakeStore(
		[]domain.Event{{ID: "event-1", Name: "GopherConf"}},
		[]domain.TicketType{
			{ID: "tt-ga", EventID: "event-1", Name: "General Admission", Quantity: 100},
			{ID: "tt-vip", EventID: "event-1", Name: "VIP", Quantity: 1},
		},
		regs,
	)
	reservations := NewReservationService(store, notifier, clock.NewFixed(now), nil)
	return NewImportExecutionEngine(store, reservations, nil), store
}

func TestImportExecution_DuplicateStrategy(t *testing.T) {
	t.Parallel()

	existing := []domain.Registration{
		{ID: "r1", EventID: "event-1", TicketTypeID: "tt-ga", Email: "existing@example.com"},
	}
	rows := [][]string{
		{"existing@example.com", "Already Here", "General Admission"},
	}

	t.Run("skip leaves the row out", func(t *testing.T) {
		t.Parallel()

		engine, store := newExecutorFixture(existing, nil)
		report, err := engine.Execute(context.Background(), ExecuteImportInput{
			EventID:  "event-1",
			Rows:     rows,
			Mapping:  importMapping,
			Strategy: domain.DuplicateSkip,
		})
		require.NoError(t, err)

		assert.Equal(t, 0, report.SuccessCount)
		assert.Equal(t, 0, report.FailureCount)
		assert.Equal(t, 1, report.DuplicateCount)
		assert.Equal(t, 1, store.registrationCount("tt-ga"))
	})

	t.Run("create imports anyway", func(t *testing.T) {
		t.Parallel()

		engine, store := newExecutorFixture(existing, nil)
		report, err := engine.Execute(context.Background(), ExecuteImportInput{
			EventID:  "event-1",
			Rows:     rows,
			Mapping:  importMapping,
			Strategy: domain.DuplicateCreate,
		})
		require.NoError(t, err)

		assert.Equal(t, 1, report.SuccessCount)
		assert.Equal(t, 0, report.DuplicateCount)
		assert.Equal(t, 2, store.registrationCount("tt-ga"))
	})
}

func TestImportExecution_RowFailureIsolation(t *testing.T) {
	t.Parallel()

	// VIP has a single unit already sold, so the one VIP row fails while
	// the rest of the file imports.
	engine, store := newExecutorFixture([]domain.Registration{
		{ID: "r1", EventID: "event-1", TicketTypeID: "tt-vip", Email: "vip0@example.com"},
	}, nil)

	var rows [][]string
	for i := 1; i <= 10; i++ {
		tier := "General Admission"
		if i == 4 {
			tier = "VIP"
		}
		rows = append(rows, []string{fmt.Sprintf("p%d@example.com", i), fmt.Sprintf("Person %d", i), tier})
	}

	report, err := engine.Execute(context.Background(), ExecuteImportInput{
		EventID:  "event-1",
		Rows:     rows,
		Mapping:  importMapping,
		Strategy: domain.DuplicateSkip,
	})
	require.NoError(t, err)

	assert.Equal(t, 9, report.SuccessCount)
	assert.Equal(t, 1, report.FailureCount)
	require.Len(t, report.Errors, 1)
	assert.Equal(t, 4, report.Errors[0].Row)
	assert.Equal(t, domain.FieldDatabase, report.Errors[0].Field)
	assert.Equal(t, "p4@example.com", report.Errors[0].Value)
	assert.Equal(t, 9, store.registrationCount("tt-ga"))
	assert.Equal(t, 1, store.registrationCount("tt-vip"))
}

func TestImportExecution_FieldErrorsCountAsFailures(t *testing.T) {
	t.Parallel()

	engine, store := newExecutorFixture(nil, nil)

	rows := [][]string{
		{"ok@example.com", "Ok Person", "General Admission"},
		{"broken", "Bad Email", "General Admission"},
	}

	report, err := engine.Execute(context.Background(), ExecuteImportInput{
		EventID:  "event-1",
		Rows:     rows,
		Mapping:  importMapping,
		Strategy: domain.DuplicateSkip,
	})
	require.NoError(t, err)

	assert.Equal(t, 1, report.SuccessCount)
	assert.Equal(t, 1, report.FailureCount)
	require.Len(t, report.Errors, 1)
	assert.Equal(t, 2, report.Errors[0].Row)
	assert.Equal(t, domain.FieldEmail, report.Errors[0].Field)
	assert.Equal(t, 1, store.registrationCount("tt-ga"))
}

func TestImportExecution_Notifications(t *testing.T) {
	t.Parallel()

	rows := [][]string{
		{"n1@example.com", "Notify One", "General Admission"},
		{"n2@example.com", "Notify Two", "General Admission"},
	}

	t.Run("sent per successful row when requested", func(t *testing.T) {
		t.Parallel()

		notifier := newFakeNotifier()
		engine, _ := newExecutorFixture(nil, notifier)
		report, err := engine.Execute(context.Background(), ExecuteImportInput{
			EventID:           "event-1",
			Rows:              rows,
			Mapping:           importMapping,
			Strategy:          domain.DuplicateSkip,
			SendNotifications: true,
		})
		require.NoError(t, err)
		require.Equal(t, 2, report.SuccessCount)

		for i := 0; i < 2; i++ {
			select {
			case <-notifier.calls:
			case <-time.After(time.Second):
				t.Fatal("missing confirmation dispatch")
			}
		}
	})

	t.Run("suppressed by default", func(t *testing.T) {
		t.Parallel()

		notifier := newFakeNotifier()
		engine, _ := newExecutorFixture(nil, notifier)
		_, err := engine.Execute(context.Background(), ExecuteImportInput{
			EventID:  "event-1",
			Rows:     rows,
			Mapping:  importMapping,
			Strategy: domain.DuplicateSkip,
		})
		require.NoError(t, err)

		select {
		case id := <-notifier.calls:
			t.Fatalf("unexpected confirmation for %s", id)
		case <-time.After(50 * time.Millisecond):
		}
	})
}

func TestImportExecution_StorageFailure(t *testing.T) {
	t.Parallel()

	engine, store := newExecutorFixture(nil, nil)
	store.createErr = errors.New("connection reset")

	report, err := engine.Execute(context.Background(), ExecuteImportInput{
		EventID:  "event-1",
		Rows:     [][]string{{"p@example.com", "Person P", "General Admission"}},
		Mapping:  importMapping,
		Strategy: domain.DuplicateSkip,
	})
	require.NoError(t, err)

	assert.Equal(t, 1, report.FailureCount)
	require.Len(t, report.Errors, 1)
	assert.Equal(t, domain.FieldDatabase, report.Errors[0].Field)
	assert.Equal(t, "connection reset", report.Errors[0].Message)
}

func TestImportExecution_RetriesBusyRows(t *testing.T) {
	t.Parallel()

	engine, store := newExecutorFixture(nil, nil)
	store.busyOnce = true

	report, err := engine.Execute(context.Background(), ExecuteImportInput{
		EventID:  "event-1",
		Rows:     [][]string{{"busy@example.com", "Busy Person", "General Admission"}},
		Mapping:  importMapping,
		Strategy: domain.DuplicateSkip,
	})
	require.NoError(t, err)

	assert.Equal(t, 1, report.SuccessCount)
	assert.Equal(t, 0, report.FailureCount)
}

func TestImportExecution_EventNotFound(t *testing.T) {
	t.Parallel()

	engine, _ := newExecutorFixture(nil, nil)
	_, err := engine.Execute(context.Background(), ExecuteImportInput{EventID: "nope"})
	assert.ErrorIs(t, err, domain.ErrEventNotFound)
}
