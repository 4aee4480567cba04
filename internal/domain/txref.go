package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// NewTransactionRef mints a unique transaction reference for a checkout.
// The owning actor's ID is kept as the final dash-delimited segment so a
// reference is self-describing when read in gateway dashboards; resolution
// back to a session goes through the transaction repository, never through
// parsing the reference.
func NewTransactionRef(userID int64, now time.Time) string {
	entropy := strings.SplitN(uuid.NewString(), "-", 2)[0]
	return fmt.Sprintf("tutor-%d-%s-%d", now.Unix(), entropy, userID)
}
