// Package ai provides the chat-assist client interface and implementations.
package ai

import (
	"bytes"
	"text/template"

	"github.com/it-era/intake/internal/domain"
)

// DefaultPromptBuilder implements PromptBuilder with templated prompts.
type DefaultPromptBuilder struct {
	systemPrompt string
	userTemplate *template.Template
}

// systemPromptText defines the assistant's role and behavior.
// This prompt is versioned as code and can be reviewed/tested.
const systemPromptText = `Sei l'assistente del supporto clienti di un'azienda italiana di servizi IT per piccole e medie imprese (assistenza sistemistica, sicurezza, cloud, reti).

Il tuo compito:
1. Rispondere in italiano, in modo cortese e professionale
2. Aiutare il visitatore a descrivere il problema o la richiesta
3. Indirizzare verso una richiesta di contatto quando opportuno
4. Non promettere mai tempi di intervento o prezzi specifici
5. Segnalare il passaggio a un operatore umano quando la situazione è critica o la domanda esce dal dominio IT

IMPORTANTE: rispondi SOLO con un oggetto JSON valido secondo lo schema fornito. Niente markdown, niente testo aggiuntivo.`

// userPromptTemplate defines how the message and its classification are
// presented to the AI.
const userPromptTemplate = `Messaggio del visitatore (dati personali già rimossi):
---
{{.Message}}
---

Contesto derivato dalle regole:
- urgenza: {{.Urgency}}
- settore: {{.Sector}}

Rispondi SOLO con JSON valido secondo questo schema:

{
  "reply": "string - la risposta da mostrare al visitatore, in italiano",
  "options": ["string array - al massimo 4 risposte rapide suggerite, opzionale"],
  "handoff": "bool - true se consigli il passaggio a un operatore umano"
}`

// NewDefaultPromptBuilder creates a prompt builder with default templates.
func NewDefaultPromptBuilder() (*DefaultPromptBuilder, error) {
	tmpl, err := template.New("user_prompt").Parse(userPromptTemplate)
	if err != nil {
		return nil, err
	}

	return &DefaultPromptBuilder{
		systemPrompt: systemPromptText,
		userTemplate: tmpl,
	}, nil
}

// BuildSystemPrompt returns the system prompt.
func (p *DefaultPromptBuilder) BuildSystemPrompt() string {
	return p.systemPrompt
}

// BuildUserPrompt constructs the user prompt with the message and its
// classification context.
func (p *DefaultPromptBuilder) BuildUserPrompt(message string, classification domain.Classification) string {
	var buf bytes.Buffer
	data := struct {
		Message string
		Urgency string
		Sector  string
	}{
		Message: message,
		Urgency: string(classification.Urgency),
		Sector:  string(classification.Sector),
	}

	if err := p.userTemplate.Execute(&buf, data); err != nil {
		// Fallback to simple format if template fails
		return "Rispondi in JSON a questo messaggio:\n\n" + message
	}

	return buf.String()
}
