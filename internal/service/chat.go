// Package service contains the business logic layer.
package service

import (
	"context"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	"github.com/it-era/intake/internal/ai"
	"github.com/it-era/intake/internal/classify"
	"github.com/it-era/intake/internal/domain"
	"github.com/it-era/intake/pkg/redact"
)

const (
	chatGreeting = "Ciao! Sono l'assistente virtuale di IT-ERA. Come posso aiutarti?"

	emergencyReply = "Capisco, sembra una situazione critica. Chiamaci subito al " +
		"+39 039 888 2041: il nostro team di pronto intervento è operativo. " +
		"Nel frattempo un operatore sta prendendo in carico questa conversazione."

	urgentReply = "Grazie per la segnalazione, la tratteremo con priorità. " +
		"Lasciaci un recapito e ti ricontattiamo entro 2 ore lavorative, " +
		"oppure chiamaci al +39 039 888 2041."

	problemReply = "Mi dispiace per il disagio. Puoi darmi qualche dettaglio in più? " +
		"Da quando si verifica il problema e quante postazioni coinvolge?"

	defaultReply = "Grazie per il messaggio! Dimmi pure di cosa hai bisogno: " +
		"assistenza tecnica, sicurezza informatica, cloud o un preventivo."

	replySourceRules = "rules"
	replySourceAI    = "ai"
)

var defaultOptions = []string{
	"Assistenza tecnica",
	"Sicurezza informatica",
	"Richiedi un preventivo",
	"Parla con un operatore",
}

// chatSession tracks one widget conversation. Sessions live in memory
// only; losing them on restart just means the widget greets again.
type chatSession struct {
	id           string
	lastSeen     time.Time
	messageCount int
	bestUrgency  domain.Urgency
}

// Chat serves the website chat widget: rule-based replies steered by the
// classifier, with optional AI-assisted refinement.
type Chat struct {
	classifier *classify.Classifier
	assist     ai.Client
	redactor   *redact.Redactor
	logger     *zap.Logger
	sessionTTL time.Duration
	now        func() time.Time

	mu       sync.Mutex
	sessions map[string]*chatSession
}

// NewChat creates a Chat service. assist may be nil to disable AI
// refinement entirely.
func NewChat(
	classifier *classify.Classifier,
	assist ai.Client,
	redactor *redact.Redactor,
	sessionTTL time.Duration,
	logger *zap.Logger,
) *Chat {
	return &Chat{
		classifier: classifier,
		assist:     assist,
		redactor:   redactor,
		logger:     logger.Named("chat"),
		sessionTTL: sessionTTL,
		now:        time.Now,
		sessions:   make(map[string]*chatSession),
	}
}

// Start opens a session and returns its identifier with the greeting.
func (c *Chat) Start() (string, domain.ChatReply) {
	now := c.now()
	id := ulid.MustNew(ulid.Timestamp(now), ulidEntropy{}).String()

	c.mu.Lock()
	c.pruneLocked(now)
	c.sessions[id] = &chatSession{
		id:          id,
		lastSeen:    now,
		bestUrgency: domain.UrgencyLow,
	}
	c.mu.Unlock()

	c.logger.Debug("chat session started", zap.String("session_id", id))

	return id, domain.ChatReply{
		Reply:    chatGreeting,
		Options:  defaultOptions,
		Priority: domain.UrgencyLow,
		Source:   replySourceRules,
	}
}

// Message handles one inbound chat message for an existing session.
func (c *Chat) Message(ctx context.Context, sessionID string, text string, declaredSector string) (domain.ChatReply, error) {
	now := c.now()

	c.mu.Lock()
	c.pruneLocked(now)
	session, ok := c.sessions[sessionID]
	if !ok {
		c.mu.Unlock()
		return domain.ChatReply{}, domain.ErrUnknownSession
	}
	session.lastSeen = now
	session.messageCount++
	c.mu.Unlock()

	classification := c.classifier.Classify(text, declaredSector, now)

	c.mu.Lock()
	if classification.Urgency.AtLeast(session.bestUrgency) {
		session.bestUrgency = classification.Urgency
	}
	messageCount := session.messageCount
	c.mu.Unlock()

	reply := c.ruleReply(classification)
	reply.LeadScore = leadScore(classification, messageCount)

	// AI assist only refines the generic bands; critical and high always
	// get the deterministic escalation reply.
	if c.assist != nil && !classification.Urgency.AtLeast(domain.UrgencyHigh) {
		if refined, ok := c.refineWithAI(ctx, text, classification); ok {
			refined.LeadScore = reply.LeadScore
			reply = refined
		}
	}

	c.logger.Info("chat message handled",
		zap.String("session_id", sessionID),
		zap.String("urgency", string(classification.Urgency)),
		zap.String("sector", string(classification.Sector)),
		zap.String("source", reply.Source),
		zap.Bool("escalate", reply.Escalate),
	)

	return reply, nil
}

// ruleReply maps the classification onto the canned reply set.
func (c *Chat) ruleReply(classification domain.Classification) domain.ChatReply {
	switch classification.Urgency {
	case domain.UrgencyCritical:
		return domain.ChatReply{
			Reply:    emergencyReply,
			Escalate: true,
			Priority: domain.UrgencyCritical,
			Source:   replySourceRules,
		}
	case domain.UrgencyHigh:
		return domain.ChatReply{
			Reply:    urgentReply,
			Options:  []string{"Lascia un recapito", "Parla con un operatore"},
			Escalate: true,
			Priority: domain.UrgencyHigh,
			Source:   replySourceRules,
		}
	case domain.UrgencyMedium:
		return domain.ChatReply{
			Reply:    problemReply,
			Options:  []string{"Descrivi il problema", "Parla con un operatore"},
			Priority: domain.UrgencyMedium,
			Source:   replySourceRules,
		}
	default:
		return domain.ChatReply{
			Reply:    defaultReply,
			Options:  defaultOptions,
			Priority: domain.UrgencyLow,
			Source:   replySourceRules,
		}
	}
}

// refineWithAI consults the AI client with redacted text. Any failure
// keeps the rule-based reply; the widget must answer either way.
func (c *Chat) refineWithAI(ctx context.Context, text string, classification domain.Classification) (domain.ChatReply, bool) {
	suggestion, err := c.assist.Suggest(ctx, c.redactor.Redact(text), classification)
	if err != nil {
		c.logger.Warn("AI assist failed, using rule reply", zap.Error(err))
		return domain.ChatReply{}, false
	}

	return domain.ChatReply{
		Reply:    suggestion.Reply,
		Options:  suggestion.Options,
		Escalate: suggestion.Handoff,
		Priority: classification.Urgency,
		Source:   replySourceAI,
	}, true
}

// leadScore folds the urgency score, sector evidence and engagement into
// a 0-100 heuristic.
func leadScore(classification domain.Classification, messageCount int) int {
	score := int(classification.Score * 4)
	score += messageCount * 5
	if classification.Sector != domain.SectorGeneral {
		score += 15
	}
	if score > 100 {
		score = 100
	}
	if score < 0 {
		score = 0
	}
	return score
}

// pruneLocked drops sessions idle past the TTL. Caller holds c.mu.
func (c *Chat) pruneLocked(now time.Time) {
	for id, session := range c.sessions {
		if now.Sub(session.lastSeen) > c.sessionTTL {
			delete(c.sessions, id)
		}
	}
}

// WithClock overrides the time source. Used by tests.
func (c *Chat) WithClock(now func() time.Time) *Chat {
	c.now = now
	return c
}

// ulidEntropy adapts math/rand to the io.Reader ulid expects. Session
// IDs need uniqueness, not unpredictability.
type ulidEntropy struct{}

func (ulidEntropy) Read(p []byte) (int, error) {
	for i := range p {
		p[i] = byte(rand.IntN(256))
	}
	return len(p), nil
}
