package app

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/babblebey/events-ting-sub003/internal/domain"
)

type ImportRepository interface {
	GetEvent(ctx context.Context, eventID string) (domain.Event, error)
	ListTicketTypesByEvent(ctx context.Context, eventID string) ([]domain.TicketType, error)
	FindRegisteredEmails(ctx context.Context, eventID string, emails []string) (map[string]bool, error)
}

// ImportValidationEngine produces a dry-run report for a bulk file. It
// writes nothing and takes no locks; the execution path enforces the real
// inventory invariant per row regardless of what this predicts.
type ImportValidationEngine struct {
	repo   ImportRepository
	ledger *InventoryLedger
	logger *zap.Logger
}

func NewImportValidationEngine(repo ImportRepository, ledger *InventoryLedger, logger *zap.Logger) *ImportValidationEngine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ImportValidationEngine{repo: repo, ledger: ledger, logger: logger}
}

func (e *ImportValidationEngine) Validate(ctx context.Context, eventID string, raw [][]string, mapping domain.FieldMapping) (domain.ValidationReport, error) {
	if _, err := e.repo.GetEvent(ctx, eventID); err != nil {
		return domain.ValidationReport{}, err
	}

	// Ticket types are collected once per call, not per row.
	types, err := ticketTypesByName(ctx, e.repo, eventID)
	if err != nil {
		return domain.ValidationReport{}, err
	}

	rows := normalizeRows(raw, mapping)
	for i := range rows {
		validateRowFields(&rows[i], types)
	}
	markInFileDuplicates(rows)

	candidates := phase2Candidates(rows)
	if len(candidates) > 0 {
		existing, err := e.repo.FindRegisteredEmails(ctx, eventID, candidates)
		if err != nil {
			return domain.ValidationReport{}, fmt.Errorf("check existing registrations: %w", err)
		}
		markExistingDuplicates(rows, existing)
	}

	report := buildValidationReport(rows)
	report.Warnings = append(report.Warnings, e.capacityWarnings(ctx, rows, types)...)

	e.logger.Info("import validated",
		zap.String("event_id", eventID),
		zap.Int("total", report.TotalRows),
		zap.Int("valid", report.ValidRows),
		zap.Int("invalid", report.InvalidRows),
		zap.Int("duplicates", report.DuplicateRows),
	)
	return report, nil
}

func buildValidationReport(rows []domain.ImportRow) domain.ValidationReport {
	report := domain.ValidationReport{
		TotalRows: len(rows),
		Errors:    []domain.ValidationFinding{},
		Warnings:  []domain.ValidationFinding{},
	}
	for i := range rows {
		row := rows[i]
		report.Errors = append(report.Errors, row.Findings...)
		switch {
		case row.HasErrors():
			report.InvalidRows++
		case row.Duplicate:
			report.DuplicateRows++
			report.Errors = append(report.Errors, duplicateFinding(row))
		default:
			report.ValidRows++
		}
	}
	return report
}

// capacityWarnings compares the intended import volume per ticket type
// against current availability. A shortfall is informational only: the
// per-row reservation path is what actually enforces the quantity.
func (e *ImportValidationEngine) capacityWarnings(ctx context.Context, rows []domain.ImportRow, types map[string]domain.TicketType) []domain.ValidationFinding {
	intended := make(map[string]int)
	for i := range rows {
		if rows[i].HasErrors() {
			continue
		}
		name := strings.ToLower(rows[i].Fields[domain.FieldTicketType])
		if _, ok := types[name]; ok {
			intended[name]++
		}
	}

	var warnings []domain.ValidationFinding
	for name, count := range intended {
		tt := types[name]
		inv, err := e.ledger.Counts(ctx, tt.ID)
		if err != nil {
			e.logger.Warn("capacity check skipped",
				zap.String("ticket_type_id", tt.ID), zap.Error(err))
			continue
		}
		if count > inv.Available {
			warnings = append(warnings, domain.ValidationFinding{
				Row:      0,
				Field:    domain.FieldTicketType,
				Value:    tt.Name,
				Message:  fmt.Sprintf("import needs %d of %q but only %d available; %d rows will fail", count, tt.Name, inv.Available, count-inv.Available),
				Severity: domain.SeverityWarning,
			})
		}
	}
	return warnings
}

func ticketTypesByName(ctx context.Context, repo ImportRepository, eventID string) (map[string]domain.TicketType, error) {
	list, err := repo.ListTicketTypesByEvent(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("list ticket types: %w", err)
	}
	types := make(map[string]domain.TicketType, len(list))
	for _, tt := range list {
		types[strings.ToLower(tt.Name)] = tt
	}
	return types, nil
}
