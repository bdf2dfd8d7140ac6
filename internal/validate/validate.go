// Package validate checks contact submissions before they enter the pipeline.
// Every rule is evaluated independently so the caller gets the full list of
// violations in one pass, not just the first one.
package validate

import (
	"regexp"
	"strings"

	"github.com/it-era/intake/internal/domain"
)

const (
	minNameLength    = 2
	minMessageLength = 10
)

// User-facing violation messages. The site audience is Italian.
const (
	MsgNameRequired    = "Il nome è obbligatorio (minimo 2 caratteri)"
	MsgEmailRequired   = "L'email è obbligatoria"
	MsgEmailInvalid    = "L'email non è valida"
	MsgPhoneInvalid    = "Il numero di telefono contiene caratteri non validi"
	MsgMessageRequired = "Il messaggio è obbligatorio (minimo 10 caratteri)"
	MsgPrivacyRequired = "È necessario accettare l'informativa sulla privacy"
)

// emailPattern enforces a loose local@domain.tld shape: no whitespace,
// a single @, at least one dot after it. Stricter RFC parsing rejects
// addresses real users type, so it is deliberately permissive.
var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// phonePattern allows digits, spaces, +, - and parentheses.
var phonePattern = regexp.MustCompile(`^[0-9+\-() ]+$`)

// Check evaluates all validation rules against the submission and returns
// every violated rule as a human-readable message. An empty slice means
// the submission may proceed. Check is a pure function over its input.
func Check(sub domain.Submission) []string {
	var violations []string

	name := strings.TrimSpace(sub.Name)
	if len([]rune(name)) < minNameLength {
		violations = append(violations, MsgNameRequired)
	}

	email := strings.TrimSpace(sub.Email)
	switch {
	case email == "":
		violations = append(violations, MsgEmailRequired)
	case !emailPattern.MatchString(email):
		violations = append(violations, MsgEmailInvalid)
	}

	phone := strings.TrimSpace(sub.Phone)
	if phone != "" && !phonePattern.MatchString(phone) {
		violations = append(violations, MsgPhoneInvalid)
	}

	message := strings.TrimSpace(sub.Message)
	if len([]rune(message)) < minMessageLength {
		violations = append(violations, MsgMessageRequired)
	}

	if !sub.PrivacyAccepted {
		violations = append(violations, MsgPrivacyRequired)
	}

	return violations
}
