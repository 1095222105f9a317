package xid

import (
	"fmt"
	"time"

	"github.com/gofrs/uuid"
)

// New returns a prefixed opaque identifier, e.g. "txn-1b4e28ba2fa1...".
// Falls back to a timestamp when the entropy source is unavailable.
func New(prefix string) string {
	id, err := uuid.NewV4()
	if err != nil {
		return fmt.Sprintf("%s-%d", prefix, time.Now().UnixNano())
	}
	return fmt.Sprintf("%s-%s", prefix, id.String())
}

// Receipt returns a human-readable receipt number in the form
// RCP-YYYYMMDD-HHMMSS-XXXX where XXXX is a short random suffix.
func Receipt(now time.Time) string {
	id, err := uuid.NewV4()
	suffix := "0000"
	if err == nil {
		suffix = id.String()[:4]
	}
	return fmt.Sprintf("RCP-%s-%s", now.Format("20060102-150405"), suffix)
}
