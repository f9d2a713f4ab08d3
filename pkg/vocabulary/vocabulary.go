// Package vocabulary holds the closed table of maritime event phrases the
// extractor recognizes, including aliases, canonical sequence positions,
// and Commenced/Completed pairing rules.
package vocabulary

import (
	"fmt"
	"os"
	"strings"

	"github.com/xrash/smetrics"
	"gopkg.in/yaml.v3"
)

// Pair roles for start/end correlation.
const (
	RoleStart = "start"
	RoleEnd   = "end"
)

// Phrase is one recognizable maritime event.
type Phrase struct {
	// Canonical is the normalized event name emitted for any match.
	Canonical string `yaml:"canonical"`
	// Aliases are alternate spellings, e.g. "Notice of Readiness Tendered"
	// for "NOR Tendered".
	Aliases []string `yaml:"aliases"`
	// Sequence is the position in the canonical port-call order.
	// Zero means the event carries no ordering expectation.
	Sequence int `yaml:"sequence"`
	// PairKey groups a start/end span, e.g. "loading".
	PairKey string `yaml:"pair_key"`
	// PairRole is "start" or "end" for paired events, empty otherwise.
	PairRole string `yaml:"pair_role"`
}

// Vocabulary is an immutable phrase table. Build one per pipeline
// configuration; concurrent runs may share it read-only.
type Vocabulary struct {
	phrases []Phrase
}

// New builds a Vocabulary from an explicit phrase list.
func New(phrases []Phrase) *Vocabulary {
	return &Vocabulary{phrases: phrases}
}

// Load reads a phrase table from a YAML file.
func Load(path string) (*Vocabulary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read vocabulary: %w", err)
	}
	var doc struct {
		Phrases []Phrase `yaml:"phrases"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse vocabulary: %w", err)
	}
	if len(doc.Phrases) == 0 {
		return nil, fmt.Errorf("vocabulary %s contains no phrases", path)
	}
	return New(doc.Phrases), nil
}

// Phrases returns the phrase table in declaration order.
func (v *Vocabulary) Phrases() []Phrase {
	return v.phrases
}

// Sequence returns canonical event names that carry an ordering
// expectation, sorted by their sequence position.
func (v *Vocabulary) Sequence() []string {
	maxSeq := 0
	for _, p := range v.phrases {
		if p.Sequence > maxSeq {
			maxSeq = p.Sequence
		}
	}
	ordered := make([]string, 0, maxSeq)
	for seq := 1; seq <= maxSeq; seq++ {
		for _, p := range v.phrases {
			if p.Sequence == seq {
				ordered = append(ordered, p.Canonical)
				break
			}
		}
	}
	return ordered
}

// PairedStarts returns canonical names of events expected to open a span.
func (v *Vocabulary) PairedStarts() []string {
	var starts []string
	for _, p := range v.phrases {
		if p.PairRole == RoleStart {
			starts = append(starts, p.Canonical)
		}
	}
	return starts
}

// Match scans a line for the best phrase hit. Returns the phrase, a match
// strength in [0,1], and whether anything matched. Exact canonical matches
// score 1.0, alias matches 0.95. When fuzzy is true, word windows of the
// line are compared against each phrase with Jaro-Winkler; similarities at
// or above minSim match with proportionally lower strength.
func (v *Vocabulary) Match(line string, fuzzy bool, minSim float64) (Phrase, float64, bool) {
	lower := strings.ToLower(line)

	var best Phrase
	bestStrength := 0.0
	bestLen := 0

	// Equal-strength hits tie-break on matched-substring length, so a long
	// alias ("notice of readiness accepted") beats a shorter alias of
	// another phrase that happens to be its prefix ("notice of readiness").
	consider := func(p Phrase, strength float64, matchedLen int) {
		if strength > bestStrength || (strength == bestStrength && matchedLen > bestLen) {
			best, bestStrength, bestLen = p, strength, matchedLen
		}
	}

	for _, p := range v.phrases {
		canonical := strings.ToLower(p.Canonical)
		if strings.Contains(lower, canonical) {
			consider(p, 1.0, len(canonical))
			continue
		}
		aliasHit := false
		for _, a := range p.Aliases {
			al := strings.ToLower(a)
			if strings.Contains(lower, al) {
				consider(p, 0.95, len(al))
				aliasHit = true
			}
		}
		if aliasHit || !fuzzy {
			continue
		}
		if sim := bestWindowSimilarity(lower, canonical); sim >= minSim {
			// Scale fuzzy strength below alias strength so an exact hit on
			// another phrase always wins.
			consider(p, 0.9*sim, len(canonical))
		}
	}

	if bestStrength == 0 {
		return Phrase{}, 0, false
	}
	return best, bestStrength, true
}

// bestWindowSimilarity slides a window of the phrase's word count across
// the line and returns the highest Jaro-Winkler similarity. This catches
// OCR mangling like "Loadng Commenged".
func bestWindowSimilarity(line, phrase string) float64 {
	words := strings.Fields(line)
	n := len(strings.Fields(phrase))
	if n == 0 || len(words) < n {
		return 0
	}
	best := 0.0
	for i := 0; i+n <= len(words); i++ {
		window := strings.Join(words[i:i+n], " ")
		sim := smetrics.JaroWinkler(window, phrase, 0.7, 4)
		if sim > best {
			best = sim
		}
	}
	return best
}
