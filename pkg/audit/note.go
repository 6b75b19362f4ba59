package audit

import (
	"fmt"
	"strings"
	"time"

	"github.com/stylekart/fulfillment-backend/pkg/enums"
)

// Tags prefixed onto delivery note lines so operators can grep histories.
const (
	TagBulkAssigned = "BULK ASSIGNED"
	TagReassigned   = "REASSIGNED"
	TagCancelled    = "CANCELLED"
	TagRefund       = "REFUND"
	TagExchange     = "EXCHANGE"
	TagPickup       = "PICKUP"
)

// Line formats one append-only delivery note entry.
// Example: [2026-08-28 14:03:11] [REASSIGNED] admin: moved from courier ab12cd34.
func Line(at time.Time, tag string, role enums.ActorRole, message string) string {
	return fmt.Sprintf("[%s] [%s] %s: %s", at.UTC().Format("2006-01-02 15:04:05"), tag, role, message)
}

// Append joins an existing notes blob with a new line, tolerating a nil
// current value.
func Append(current *string, line string) string {
	if current == nil || strings.TrimSpace(*current) == "" {
		return line
	}
	return *current + "\n" + line
}
