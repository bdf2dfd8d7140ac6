// Package mail composes and delivers the two notification emails derived
// from every accepted submission.
package mail

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/it-era/intake/internal/domain"
)

// Static contact details shown in the customer confirmation.
const (
	contactPhone   = "+39 039 888 2041"
	contactEmail   = "info@it-era.it"
	contactAddress = "Viale Martiri della Libertà 18, Vimercate (MB)"
)

const timestampLayout = "02/01/2006 15:04"

// ownerTemplateText renders the internal lead notification. All user
// fields go through html/template, so pasted HTML arrives inert.
const ownerTemplateText = `<h2>Nuovo contatto dal sito</h2>
<p><strong>Ticket:</strong> {{.TicketID}}<br>
<strong>Ricevuto:</strong> {{.Timestamp}}</p>
<table>
<tr><td><strong>Nome</strong></td><td>{{.Sub.Name}}</td></tr>
<tr><td><strong>Email</strong></td><td><a href="mailto:{{.Sub.Email}}">{{.Sub.Email}}</a></td></tr>
{{if .Sub.Phone}}<tr><td><strong>Telefono</strong></td><td><a href="tel:{{.Sub.Phone}}">{{.Sub.Phone}}</a></td></tr>{{end}}
{{if .Sub.City}}<tr><td><strong>Città</strong></td><td>{{.Sub.City}}</td></tr>{{end}}
{{if .Sub.Service}}<tr><td><strong>Servizio</strong></td><td>{{.Sub.Service}}</td></tr>{{end}}
</table>
<h3>Messaggio</h3>
<p>{{range $i, $line := .MessageLines}}{{if $i}}<br>{{end}}{{$line}}{{end}}</p>
<hr>
<p><small>Pagina: {{.Sub.SourcePage}}<br>
User agent: {{.Sub.UserAgent}}</small></p>
`

// customerTemplateText renders the confirmation sent back to the visitor.
const customerTemplateText = `<h2>Grazie per averci contattato!</h2>
<p>La tua richiesta è stata registrata con il numero <strong>{{.TicketID}}</strong>.</p>
<h3>Cosa succede adesso</h3>
<ul>
<li>Ti risponderemo entro <strong>2 ore</strong> lavorative</li>
<li>Analizzeremo la tua richiesta entro <strong>24 ore</strong></li>
<li>Riceverai una proposta entro <strong>48 ore</strong></li>
</ul>
{{if or .Sub.Service .Sub.City}}<h3>Riepilogo</h3>
<ul>
{{if .Sub.Service}}<li>Servizio richiesto: {{.Sub.Service}}</li>{{end}}
{{if .Sub.City}}<li>Città: {{.Sub.City}}</li>{{end}}
</ul>{{end}}
<p><em>{{.MessageSummary}}</em></p>
<hr>
<p>Per qualsiasi urgenza puoi contattarci direttamente:<br>
Telefono: <a href="tel:{{.ContactPhone}}">{{.ContactPhone}}</a><br>
Email: <a href="mailto:{{.ContactEmail}}">{{.ContactEmail}}</a><br>
Indirizzo: {{.ContactAddress}}</p>
`

var (
	ownerTemplate    = template.Must(template.New("owner").Parse(ownerTemplateText))
	customerTemplate = template.Must(template.New("customer").Parse(customerTemplateText))
)

// Composer builds owner and customer notifications from a submission.
type Composer struct {
	ownerEmail string
	location   *time.Location
}

// NewComposer creates a Composer. Timestamps in the owner notification are
// rendered in the business's local timezone.
func NewComposer(ownerEmail string) *Composer {
	location, err := time.LoadLocation("Europe/Rome")
	if err != nil {
		location = time.UTC
	}
	return &Composer{
		ownerEmail: ownerEmail,
		location:   location,
	}
}

// ComposeOwner builds the internal notification with every submitted field.
func (c *Composer) ComposeOwner(sub domain.Submission, ticketID string, now time.Time) (domain.Notification, error) {
	data := struct {
		TicketID     string
		Timestamp    string
		Sub          domain.Submission
		MessageLines []string
	}{
		TicketID:     ticketID,
		Timestamp:    now.In(c.location).Format(timestampLayout),
		Sub:          sub,
		MessageLines: strings.Split(sub.Message, "\n"),
	}

	var html bytes.Buffer
	if err := ownerTemplate.Execute(&html, data); err != nil {
		return domain.Notification{}, domain.WrapError("compose_owner", err, false)
	}

	var text strings.Builder
	fmt.Fprintf(&text, "Nuovo contatto dal sito\n\n")
	fmt.Fprintf(&text, "Ticket: %s\nRicevuto: %s\n\n", ticketID, data.Timestamp)
	fmt.Fprintf(&text, "Nome: %s\nEmail: %s\n", sub.Name, sub.Email)
	if sub.Phone != "" {
		fmt.Fprintf(&text, "Telefono: %s\n", sub.Phone)
	}
	if sub.City != "" {
		fmt.Fprintf(&text, "Città: %s\n", sub.City)
	}
	if sub.Service != "" {
		fmt.Fprintf(&text, "Servizio: %s\n", sub.Service)
	}
	fmt.Fprintf(&text, "\nMessaggio:\n%s\n\n", sub.Message)
	fmt.Fprintf(&text, "Pagina: %s\nUser agent: %s\n", sub.SourcePage, sub.UserAgent)

	return domain.Notification{
		To:      c.ownerEmail,
		Subject: fmt.Sprintf("Nuovo contatto - Ticket %s", ticketID),
		HTML:    html.String(),
		Text:    text.String(),
	}, nil
}

// ComposeCustomer builds the confirmation with the response-time
// commitments and the direct contact details.
func (c *Composer) ComposeCustomer(sub domain.Submission, ticketID string) (domain.Notification, error) {
	data := struct {
		TicketID       string
		Sub            domain.Submission
		MessageSummary string
		ContactPhone   string
		ContactEmail   string
		ContactAddress string
	}{
		TicketID:       ticketID,
		Sub:            sub,
		MessageSummary: summarize(sub.Message),
		ContactPhone:   contactPhone,
		ContactEmail:   contactEmail,
		ContactAddress: contactAddress,
	}

	var html bytes.Buffer
	if err := customerTemplate.Execute(&html, data); err != nil {
		return domain.Notification{}, domain.WrapError("compose_customer", err, false)
	}

	var text strings.Builder
	fmt.Fprintf(&text, "Grazie per averci contattato!\n\n")
	fmt.Fprintf(&text, "La tua richiesta è stata registrata con il numero %s.\n\n", ticketID)
	text.WriteString("Cosa succede adesso:\n")
	text.WriteString("- Ti risponderemo entro 2 ore lavorative\n")
	text.WriteString("- Analizzeremo la tua richiesta entro 24 ore\n")
	text.WriteString("- Riceverai una proposta entro 48 ore\n\n")
	if sub.Service != "" {
		fmt.Fprintf(&text, "Servizio richiesto: %s\n", sub.Service)
	}
	if sub.City != "" {
		fmt.Fprintf(&text, "Città: %s\n", sub.City)
	}
	fmt.Fprintf(&text, "\n%s\n\n", data.MessageSummary)
	fmt.Fprintf(&text, "Per urgenze: %s - %s\n%s\n", contactPhone, contactEmail, contactAddress)

	return domain.Notification{
		To:      sub.Email,
		Subject: fmt.Sprintf("Richiesta ricevuta - Ticket %s", ticketID),
		HTML:    html.String(),
		Text:    text.String(),
	}, nil
}

// summarize restates the first part of the message back to the customer.
func summarize(message string) string {
	const maxSummary = 160
	message = strings.TrimSpace(message)
	runes := []rune(message)
	if len(runes) <= maxSummary {
		return "La tua richiesta: " + message
	}
	return "La tua richiesta: " + string(runes[:maxSummary]) + "…"
}
