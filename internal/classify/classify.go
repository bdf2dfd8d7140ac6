// Package classify scores free-text chat messages for urgency and sector.
// Scoring is a weighted keyword lookup over static tables: cheap,
// deterministic, and advisory only. Nothing here is persisted.
package classify

import (
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/it-era/intake/internal/domain"
)

const (
	// Score thresholds partitioning the additive score into urgency
	// bands. Comparisons are inclusive, so a score landing exactly on a
	// boundary takes the higher band.
	thresholdCritical = 10.0
	thresholdHigh     = 6.0
	thresholdMedium   = 3.0

	// minSectorScore is the minimal keyword evidence needed before a
	// sector guess beats the "general" default.
	minSectorScore = 2.0

	// outOfHoursMultiplier boosts scores outside staffed hours, when the
	// visitor has fewer alternatives to the chat widget.
	outOfHoursMultiplier = 1.3

	businessHourStart = 8  // inclusive
	businessHourEnd   = 19 // exclusive
)

// Classifier assigns urgency and sector to chat messages.
type Classifier struct {
	logger *zap.Logger
}

// New creates a Classifier.
func New(logger *zap.Logger) *Classifier {
	return &Classifier{
		logger: logger.Named("classifier"),
	}
}

// Classify scores the message and returns the urgency band, the sector
// guess and the underlying scores. A non-empty declaredSector (as sent by
// the widget's lead-data context) overrides keyword detection but still
// contributes its multiplier. The clock is passed in so the out-of-hours
// boost is testable.
func (c *Classifier) Classify(message string, declaredSector string, now time.Time) domain.Classification {
	lowered := strings.ToLower(message)

	base := 0.0
	for _, kw := range urgencyKeywords {
		if strings.Contains(lowered, kw.Phrase) {
			base += kw.Weight
		}
	}

	sector, sectorScore := c.detectSector(lowered, declaredSector)

	score := base * sectorMultipliers[sector]
	outOfHours := isOutOfHours(now)
	if outOfHours {
		score *= outOfHoursMultiplier
	}

	result := domain.Classification{
		Urgency:     bandFor(score),
		Sector:      sector,
		Score:       score,
		SectorScore: sectorScore,
		OutOfHours:  outOfHours,
	}

	c.logger.Debug("message classified",
		zap.String("urgency", string(result.Urgency)),
		zap.String("sector", string(result.Sector)),
		zap.Float64("score", result.Score),
		zap.Bool("out_of_hours", outOfHours),
	)

	return result
}

// detectSector returns the winning sector and its keyword score.
func (c *Classifier) detectSector(lowered string, declaredSector string) (domain.Sector, float64) {
	if declared := domain.Sector(strings.ToLower(strings.TrimSpace(declaredSector))); declared.IsValid() {
		return declared, 0
	}

	best := domain.SectorGeneral
	bestScore := 0.0
	for sector, keywords := range sectorKeywords {
		score := 0.0
		for _, kw := range keywords {
			if strings.Contains(lowered, kw.Phrase) {
				score += kw.Weight
			}
		}
		if score > bestScore {
			best = sector
			bestScore = score
		}
	}

	if bestScore < minSectorScore {
		return domain.SectorGeneral, bestScore
	}
	return best, bestScore
}

// bandFor maps a continuous score onto the discrete urgency levels.
func bandFor(score float64) domain.Urgency {
	switch {
	case score >= thresholdCritical:
		return domain.UrgencyCritical
	case score >= thresholdHigh:
		return domain.UrgencyHigh
	case score >= thresholdMedium:
		return domain.UrgencyMedium
	default:
		return domain.UrgencyLow
	}
}

// isOutOfHours reports whether now falls outside staffed hours
// (Mon-Fri 08:00-19:00 local time).
func isOutOfHours(now time.Time) bool {
	switch now.Weekday() {
	case time.Saturday, time.Sunday:
		return true
	}
	hour := now.Hour()
	return hour < businessHourStart || hour >= businessHourEnd
}
