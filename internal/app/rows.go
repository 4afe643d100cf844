package app

import (
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/babblebey/events-ting-sub003/internal/domain"
)

// Pure row plumbing shared by import validation and execution. Both engines
// call the exact same functions so they can never disagree on what counts
// as a duplicate or an invalid field.

const (
	maxEmailLen = 255
	minNameLen  = 2
	maxNameLen  = 255
)

var importDateLayouts = []string{time.RFC3339, "2006-01-02"}

// normalizeEmail trims, lowercases and shape-checks an address.
func normalizeEmail(raw string) (string, error) {
	email := strings.ToLower(strings.TrimSpace(raw))
	if email == "" {
		return "", domain.ErrEmailRequired
	}
	if len(email) > maxEmailLen {
		return "", domain.ErrEmailInvalid
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return "", domain.ErrEmailInvalid
	}
	return email, nil
}

// normalizeRows resolves raw source rows through the field mapping into
// 1-indexed ImportRows. Emails are normalized here, once, for everyone.
func normalizeRows(raw [][]string, mapping domain.FieldMapping) []domain.ImportRow {
	rows := make([]domain.ImportRow, 0, len(raw))
	for i, source := range raw {
		row := domain.ImportRow{
			Number:     i + 1,
			Fields:     make(map[string]string),
			Attributes: make(domain.Attributes),
		}
		for col, field := range mapping {
			if col < 0 || col >= len(source) {
				continue
			}
			value := strings.TrimSpace(source[col])
			if key, ok := strings.CutPrefix(field, domain.AttributePrefix); ok {
				if value != "" {
					row.Attributes[key] = value
				}
				continue
			}
			if field == domain.FieldEmail {
				value = strings.ToLower(value)
			}
			row.Fields[field] = value
		}
		rows = append(rows, row)
	}
	return rows
}

// validateRowFields attaches blocking findings for every malformed field.
// ticketTypes is keyed by lowercased name, collected once per call.
func validateRowFields(row *domain.ImportRow, ticketTypes map[string]domain.TicketType) {
	email := row.Fields[domain.FieldEmail]
	if _, err := normalizeEmail(email); err != nil {
		row.AddFinding(domain.FieldEmail, email, emailFindingMessage(err), domain.SeverityError)
	}

	name := row.Fields[domain.FieldName]
	switch {
	case name == "":
		row.AddFinding(domain.FieldName, name, "name is required", domain.SeverityError)
	case len(name) < minNameLen || len(name) > maxNameLen:
		row.AddFinding(domain.FieldName, name, fmt.Sprintf("name must be %d-%d characters", minNameLen, maxNameLen), domain.SeverityError)
	}

	ticketName := row.Fields[domain.FieldTicketType]
	if ticketName == "" {
		row.AddFinding(domain.FieldTicketType, ticketName, "ticket type is required", domain.SeverityError)
	} else if _, ok := ticketTypes[strings.ToLower(ticketName)]; !ok {
		row.AddFinding(domain.FieldTicketType, ticketName, "ticket type does not exist for this event", domain.SeverityError)
	}

	if v, ok := row.Fields[domain.FieldPaymentStatus]; ok && v != "" && !domain.ValidPaymentStatus(v) {
		row.AddFinding(domain.FieldPaymentStatus, v, "unknown payment status", domain.SeverityError)
	}
	if v, ok := row.Fields[domain.FieldEmailStatus]; ok && v != "" && !domain.ValidEmailStatus(v) {
		row.AddFinding(domain.FieldEmailStatus, v, "unknown email status", domain.SeverityError)
	}
	if v, ok := row.Fields[domain.FieldCreatedDate]; ok && v != "" && !parseableDate(v) {
		row.AddFinding(domain.FieldCreatedDate, v, "date could not be parsed", domain.SeverityError)
	}
}

func emailFindingMessage(err error) string {
	switch err {
	case domain.ErrEmailRequired:
		return "email is required"
	default:
		return "email is not a valid address"
	}
}

func parseableDate(v string) bool {
	for _, layout := range importDateLayouts {
		if _, err := time.Parse(layout, v); err == nil {
			return true
		}
	}
	return false
}

// markInFileDuplicates is phase 1 of duplicate detection: every occurrence
// of an email after its first is flagged, referencing the first row. The
// first occurrence is never flagged.
func markInFileDuplicates(rows []domain.ImportRow) {
	firstSeen := make(map[string]int)
	for i := range rows {
		email := rows[i].Fields[domain.FieldEmail]
		if email == "" {
			continue
		}
		first, seen := firstSeen[email]
		if !seen {
			firstSeen[email] = rows[i].Number
			continue
		}
		rows[i].Duplicate = true
		rows[i].DuplicateOfRow = first
	}
}

// markExistingDuplicates is phase 2: rows still clean after phase 1 and
// field validation are checked against already-persisted emails. The two
// phases never overlap on the same row.
func markExistingDuplicates(rows []domain.ImportRow, existing map[string]bool) {
	for i := range rows {
		if rows[i].Duplicate || rows[i].HasErrors() {
			continue
		}
		if existing[rows[i].Fields[domain.FieldEmail]] {
			rows[i].Duplicate = true
		}
	}
}

// phase2Candidates returns the normalized emails that need the persisted
// existence check, deduplicated. Rows broken by field errors or already
// flagged in phase 1 are excluded to avoid wasted lookups.
func phase2Candidates(rows []domain.ImportRow) []string {
	seen := make(map[string]bool)
	var emails []string
	for i := range rows {
		if rows[i].Duplicate || rows[i].HasErrors() {
			continue
		}
		email := rows[i].Fields[domain.FieldEmail]
		if email == "" || seen[email] {
			continue
		}
		seen[email] = true
		emails = append(emails, email)
	}
	return emails
}

// duplicateFinding renders the report entry for a flagged row.
func duplicateFinding(row domain.ImportRow) domain.ValidationFinding {
	msg := domain.ErrDuplicateEmail.Error()
	if row.DuplicateOfRow > 0 {
		msg = fmt.Sprintf("duplicate email, first occurs at row %d", row.DuplicateOfRow)
	}
	return domain.ValidationFinding{
		Row:      row.Number,
		Field:    domain.FieldEmail,
		Value:    row.Fields[domain.FieldEmail],
		Message:  msg,
		Severity: domain.SeverityError,
	}
}
