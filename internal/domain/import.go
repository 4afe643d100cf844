package domain

// Canonical import field names. A FieldMapping resolves source columns to
// these; columns mapped to anything else are treated as custom attributes.
const (
	FieldEmail         = "email"
	FieldName          = "name"
	FieldTicketType    = "ticket_type"
	FieldPaymentStatus = "payment_status"
	FieldEmailStatus   = "email_status"
	FieldCreatedDate   = "created_date"

	// FieldDatabase tags execution errors that come from the store rather
	// than from a source column.
	FieldDatabase = "database"
)

// AttributePrefix marks mapped columns that land in the attribute map.
const AttributePrefix = "attr:"

// FieldMapping maps a 0-based source column index to a canonical field
// name or an attr:-prefixed custom key.
type FieldMapping map[int]string

// DuplicateStrategy decides what bulk execution does with detected duplicates.
type DuplicateStrategy string

const (
	DuplicateSkip   DuplicateStrategy = "skip"
	DuplicateCreate DuplicateStrategy = "create"
)

func ValidDuplicateStrategy(s string) bool {
	switch DuplicateStrategy(s) {
	case DuplicateSkip, DuplicateCreate:
		return true
	}
	return false
}

type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// ValidationFinding is one issue attached to one row. The JSON shape is a
// contract with the error-report download; do not rename the keys.
type ValidationFinding struct {
	Row      int      `json:"row"`
	Field    string   `json:"field"`
	Value    string   `json:"value"`
	Message  string   `json:"message"`
	Severity Severity `json:"-"`
}

// ImportRow is the ephemeral unit of work for validation and execution.
// Row numbers are 1-indexed to match what the organizer sees in the file.
type ImportRow struct {
	Number     int
	Fields     map[string]string
	Attributes Attributes
	Findings   []ValidationFinding

	// Duplicate is set when either duplicate-detection phase flagged the
	// row. DuplicateOfRow is the first in-file occurrence for phase-1
	// findings and zero for phase-2 (already persisted) findings.
	Duplicate      bool
	DuplicateOfRow int
}

// HasErrors reports whether any finding on the row is blocking.
func (r *ImportRow) HasErrors() bool {
	for _, f := range r.Findings {
		if f.Severity == SeverityError {
			return true
		}
	}
	return false
}

// AddFinding appends a finding, stamping the row number.
func (r *ImportRow) AddFinding(field, value, message string, severity Severity) {
	r.Findings = append(r.Findings, ValidationFinding{
		Row:      r.Number,
		Field:    field,
		Value:    value,
		Message:  message,
		Severity: severity,
	})
}

// ValidationReport is the dry-run result of import validation.
type ValidationReport struct {
	TotalRows     int                 `json:"total_rows"`
	ValidRows     int                 `json:"valid_rows"`
	InvalidRows   int                 `json:"invalid_rows"`
	DuplicateRows int                 `json:"duplicate_rows"`
	Errors        []ValidationFinding `json:"errors"`
	Warnings      []ValidationFinding `json:"warnings"`
}

// ExecutionReport summarizes a bulk import run.
type ExecutionReport struct {
	SuccessCount   int                 `json:"success_count"`
	FailureCount   int                 `json:"failure_count"`
	DuplicateCount int                 `json:"duplicate_count"`
	Errors         []ValidationFinding `json:"errors"`
}
