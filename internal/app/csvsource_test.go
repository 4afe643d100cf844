package app

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/babblebey/events-ting-sub003/internal/domain"
)

func TestReadCSV(t *testing.T) {
	t.Parallel()

	input := strings.Join([]string{
		"Email,Full Name,Ticket Type,Company",
		"a@example.com,Alice A,VIP,ACME",
		`b@example.com,"Bob, Jr.",General Admission,`,
	}, "\n")

	rows, mapping, err := ReadCSV(strings.NewReader(input))
	require.NoError(t, err)

	assert.Equal(t, domain.FieldMapping{
		0: domain.FieldEmail,
		1: domain.FieldName,
		2: domain.FieldTicketType,
		3: domain.AttributePrefix + "company",
	}, mapping)

	require.Len(t, rows, 2)
	assert.Equal(t, []string{"a@example.com", "Alice A", "VIP", "ACME"}, rows[0])
	assert.Equal(t, "Bob, Jr.", rows[1][1])
}

func TestReadCSV_Empty(t *testing.T) {
	t.Parallel()

	_, _, err := ReadCSV(strings.NewReader(""))
	assert.Error(t, err)
}

func TestMapHeader(t *testing.T) {
	t.Parallel()

	mapping := MapHeader([]string{" E-MAIL ", "Attendee Name", "ticket", "Registered At", "", "Dietary Needs"})

	assert.Equal(t, domain.FieldMapping{
		0: domain.FieldEmail,
		1: domain.FieldName,
		2: domain.FieldTicketType,
		3: domain.FieldCreatedDate,
		5: domain.AttributePrefix + "dietary needs",
	}, mapping)
}
