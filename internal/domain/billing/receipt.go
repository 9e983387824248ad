package billing

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// NewReceiptNumber generates a receipt number for a recorded payment,
// e.g. RCP-202609-3F0A81C2. The random suffix keeps numbers unique without
// a database round trip.
func NewReceiptNumber(paidAt time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	return fmt.Sprintf("RCP-%s-%s", paidAt.Format("200601"), suffix)
}
