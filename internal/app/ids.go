package app

import (
	"crypto/rand"
	"encoding/base32"

	"github.com/google/uuid"
)

func newID() string {
	return uuid.NewString()
}

// codeEncoding is unpadded uppercase base32, printable on badges.
var codeEncoding = base32.StdEncoding.WithPadding(base32.NoPadding)

// newRegistrationCode returns a random high-entropy code. Uniqueness within
// an event is also enforced by a unique index on (event_id, code).
func newRegistrationCode() string {
	b := make([]byte, 10)
	if _, err := rand.Read(b); err != nil {
		return uuid.NewString()
	}
	return codeEncoding.EncodeToString(b)
}
