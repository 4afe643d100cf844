package app

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"github.com/babblebey/events-ting-sub003/internal/domain"
)

// ImportExecutionEngine replays rows through the same reservation path used
// by single registration. Each row is its own atomic unit: a 500-row import
// with one oversold ticket type still completes the other 499.
type ImportExecutionEngine struct {
	repo         ImportRepository
	reservations *ReservationService
	logger       *zap.Logger

	busyRetries     uint64
	busyMaxInterval time.Duration
}

func NewImportExecutionEngine(repo ImportRepository, reservations *ReservationService, logger *zap.Logger) *ImportExecutionEngine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ImportExecutionEngine{
		repo:            repo,
		reservations:    reservations,
		logger:          logger,
		busyRetries:     3,
		busyMaxInterval: 2 * time.Second,
	}
}

type ExecuteImportInput struct {
	EventID           string
	Rows              [][]string
	Mapping           domain.FieldMapping
	Strategy          domain.DuplicateStrategy
	SendNotifications bool
}

// Execute materializes rows as registrations. It re-derives the same
// duplicate and field classification the validator computed, then works
// row by row; only a failure to even begin aborts the whole call.
func (e *ImportExecutionEngine) Execute(ctx context.Context, in ExecuteImportInput) (domain.ExecutionReport, error) {
	if _, err := e.repo.GetEvent(ctx, in.EventID); err != nil {
		return domain.ExecutionReport{}, err
	}
	types, err := ticketTypesByName(ctx, e.repo, in.EventID)
	if err != nil {
		return domain.ExecutionReport{}, err
	}

	rows := normalizeRows(in.Rows, in.Mapping)
	for i := range rows {
		validateRowFields(&rows[i], types)
	}
	markInFileDuplicates(rows)

	candidates := phase2Candidates(rows)
	if len(candidates) > 0 {
		existing, err := e.repo.FindRegisteredEmails(ctx, in.EventID, candidates)
		if err != nil {
			return domain.ExecutionReport{}, err
		}
		markExistingDuplicates(rows, existing)
	}

	report := domain.ExecutionReport{Errors: []domain.ValidationFinding{}}
	for i := range rows {
		e.executeRow(ctx, &rows[i], in, types, &report)
	}

	e.logger.Info("import executed",
		zap.String("event_id", in.EventID),
		zap.Int("success", report.SuccessCount),
		zap.Int("failed", report.FailureCount),
		zap.Int("duplicates", report.DuplicateCount),
	)
	return report, nil
}

func (e *ImportExecutionEngine) executeRow(ctx context.Context, row *domain.ImportRow, in ExecuteImportInput, types map[string]domain.TicketType, report *domain.ExecutionReport) {
	if row.Duplicate && in.Strategy == domain.DuplicateSkip {
		report.DuplicateCount++
		return
	}
	if row.HasErrors() {
		report.FailureCount++
		report.Errors = append(report.Errors, row.Findings...)
		return
	}

	tt := types[strings.ToLower(row.Fields[domain.FieldTicketType])]

	reserve := func() error {
		_, err := e.reservations.Reserve(ctx, ReserveInput{
			TicketTypeID:         tt.ID,
			Email:                row.Fields[domain.FieldEmail],
			Name:                 row.Fields[domain.FieldName],
			Attributes:           row.Attributes,
			SuppressNotification: !in.SendNotifications,
		})
		if err != nil && !errors.Is(err, domain.ErrBusy) {
			return backoff.Permanent(err)
		}
		return err
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(e.backoffPolicy(), e.busyRetries), ctx)
	if err := backoff.Retry(reserve, policy); err != nil {
		if domain.IsCapacityError(err) {
			e.logger.Warn("row rejected on capacity",
				zap.Int("row", row.Number),
				zap.String("ticket_type", tt.Name),
				zap.Error(err),
			)
		}
		report.FailureCount++
		report.Errors = append(report.Errors, domain.ValidationFinding{
			Row:      row.Number,
			Field:    domain.FieldDatabase,
			Value:    row.Fields[domain.FieldEmail],
			Message:  err.Error(),
			Severity: domain.SeverityError,
		})
		return
	}
	report.SuccessCount++
}

func (e *ImportExecutionEngine) backoffPolicy() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 50 * time.Millisecond
	b.MaxInterval = e.busyMaxInterval
	return b
}
