package models

// Mode represents the processing depth for a document run.
type Mode string

const (
	// ModeCostSaving disables OCR and the higher-cost disambiguation
	// heuristics even if the caller asked for OCR.
	ModeCostSaving Mode = "cost-saving"
	// ModeAccuracy permits full OCR plus all heuristics.
	ModeAccuracy Mode = "accuracy"
)

// Valid reports whether m is a known mode.
func (m Mode) Valid() bool {
	return m == ModeCostSaving || m == ModeAccuracy
}

// AllowOCR resolves the effective OCR setting for a request. Mode takes
// precedence over the enableOCR flag.
func (m Mode) AllowOCR(enableOCR bool) bool {
	if m == ModeCostSaving {
		return false
	}
	return enableOCR
}

// AllowFuzzy reports whether fuzzy phrase matching may run under this mode.
func (m Mode) AllowFuzzy() bool {
	return m != ModeCostSaving
}
