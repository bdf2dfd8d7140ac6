// Package ticket generates the short reference IDs embedded in every
// notification and log entry.
package ticket

import (
	"math/rand/v2"
	"strings"
	"time"
)

const (
	prefix       = "IT"
	dateLayout   = "060102"
	suffixLength = 6
	alphabet     = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// Generate produces a ticket ID of the form IT{YYMMDD}{6 uppercase
// alphanumerics}, e.g. IT250830K3XQ9A. The suffix comes from a
// non-cryptographic generator; with ~2.2 billion combinations per day,
// collisions are possible but not checked. A ticket is a human
// correlation handle, not a database key, so the risk is accepted.
func Generate(now time.Time) string {
	var builder strings.Builder
	builder.Grow(len(prefix) + len(dateLayout) + suffixLength)
	builder.WriteString(prefix)
	builder.WriteString(now.Format(dateLayout))
	for i := 0; i < suffixLength; i++ {
		builder.WriteByte(alphabet[rand.IntN(len(alphabet))])
	}
	return builder.String()
}
