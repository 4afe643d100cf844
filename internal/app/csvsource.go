package app

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/babblebey/events-ting-sub003/internal/domain"
)

// headerAliases maps common column headings to canonical import fields.
// Unrecognized headings become custom attributes.
var headerAliases = map[string]string{
	"email":          domain.FieldEmail,
	"e-mail":         domain.FieldEmail,
	"email address":  domain.FieldEmail,
	"name":           domain.FieldName,
	"full name":      domain.FieldName,
	"attendee name":  domain.FieldName,
	"ticket":         domain.FieldTicketType,
	"ticket type":    domain.FieldTicketType,
	"ticket_type":    domain.FieldTicketType,
	"payment status": domain.FieldPaymentStatus,
	"payment_status": domain.FieldPaymentStatus,
	"email status":   domain.FieldEmailStatus,
	"email_status":   domain.FieldEmailStatus,
	"date":           domain.FieldCreatedDate,
	"created date":   domain.FieldCreatedDate,
	"created_date":   domain.FieldCreatedDate,
	"registered at":  domain.FieldCreatedDate,
}

// ReadCSV parses an uploaded file into raw rows plus a header-derived field
// mapping. The first record is always treated as the header.
func ReadCSV(r io.Reader) ([][]string, domain.FieldMapping, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil, fmt.Errorf("csv file is empty")
	}
	if err != nil {
		return nil, nil, fmt.Errorf("read csv header: %w", err)
	}
	mapping := MapHeader(header)

	var rows [][]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("read csv row %d: %w", len(rows)+1, err)
		}
		rows = append(rows, record)
	}
	return rows, mapping, nil
}

// MapHeader resolves header cells to canonical fields via headerAliases.
func MapHeader(header []string) domain.FieldMapping {
	mapping := make(domain.FieldMapping, len(header))
	for i, cell := range header {
		key := strings.ToLower(strings.TrimSpace(cell))
		if key == "" {
			continue
		}
		if field, ok := headerAliases[key]; ok {
			mapping[i] = field
			continue
		}
		mapping[i] = domain.AttributePrefix + key
	}
	return mapping
}
