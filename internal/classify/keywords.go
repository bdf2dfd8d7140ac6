// Package classify scores free-text chat messages for urgency and sector.
package classify

import "github.com/it-era/intake/internal/domain"

// keywordWeight pairs a lowercase phrase with its additive score.
// Phrases are matched with a case-insensitive substring check, so multi-word
// entries like "server down" behave as a single signal.
type keywordWeight struct {
	Phrase string
	Weight float64
}

// Urgency tiers. Weights are additive over every matched phrase; the
// thresholds in classify.go band the total into the four urgency levels.
// The audience is Italian, so the tables mix Italian and English phrasing.
var urgencyKeywords = []keywordWeight{
	// Outage-grade signals
	{"server down", 10},
	{"sistema down", 10},
	{"rete down", 10},
	{"tutto fermo", 10},
	{"produzione ferma", 10},
	{"non funziona niente", 10},
	{"emergenza", 10},
	{"ransomware", 10},
	{"hackerato", 10},
	{"hackerati", 10},
	{"attacco informatico", 10},
	{"dati persi", 10},
	{"perso tutto", 10},

	// Urgent-but-bounded signals
	{"urgente", 6},
	{"urgenza", 6},
	{"subito", 6},
	{"al più presto", 6},
	{"asap", 6},
	{"oggi stesso", 6},
	{"grave", 6},
	{"bloccato", 6},
	{"bloccati", 6},
	{"virus", 6},

	// Problem phrasing
	{"problema", 3},
	{"problemi", 3},
	{"errore", 3},
	{"guasto", 3},
	{"non funziona", 3},
	{"non riesco", 3},
	{"aiuto", 3},
	{"malfunzionamento", 3},
	{"lento", 3},

	// Informational phrasing
	{"informazioni", 1},
	{"preventivo", 1},
	{"quanto costa", 1},
	{"vorrei sapere", 1},
	{"curiosità", 1},
}

// Sector tables. Each match contributes its weight to the sector score;
// the highest-scoring sector wins if it clears minSectorScore.
var sectorKeywords = map[domain.Sector][]keywordWeight{
	domain.SectorMedical: {
		{"studio medico", 2},
		{"studi medici", 2},
		{"dentista", 2},
		{"dentisti", 2},
		{"odontoiatr", 2},
		{"clinica", 2},
		{"ambulatorio", 2},
		{"poliambulatorio", 2},
		{"pazienti", 1},
		{"cartelle cliniche", 2},
		{"cartella clinica", 2},
		{"sanitario", 1},
		{"sanitaria", 1},
		{"medico", 1},
		{"fascicolo sanitario", 2},
	},
	domain.SectorLegal: {
		{"studio legale", 2},
		{"studi legali", 2},
		{"avvocato", 2},
		{"avvocati", 2},
		{"notaio", 2},
		{"notarile", 2},
		{"tribunale", 2},
		{"pratiche legali", 2},
		{"fascicoli", 1},
		{"processo telematico", 2},
		{"pct", 1},
		{"cause", 1},
	},
}

// Sector multipliers reflect that downtime in regulated practices is
// costlier: a stopped medical or legal office escalates faster than a
// generic business request.
var sectorMultipliers = map[domain.Sector]float64{
	domain.SectorMedical: 1.4,
	domain.SectorLegal:   1.3,
	domain.SectorGeneral: 1.0,
}
