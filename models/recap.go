package models

// RecapData is structured fixture information extracted from a free-text
// chartering recap. Empty strings mean the field was not found.
type RecapData struct {
	VesselName       string   `json:"vessel_name"`
	LaycanStartISO   string   `json:"laycan_start_iso"`
	LaycanEndISO     string   `json:"laycan_end_iso"`
	LoadPort         string   `json:"load_port"`
	DischargePort    string   `json:"discharge_port"`
	FreightRate      string   `json:"freight_rate"`
	DemurrageRate    string   `json:"demurrage_rate"`
	CargoDescription string   `json:"cargo_description"`
	SpecialTerms     []string `json:"special_terms"`

	// FieldConfidence mirrors the event pipeline's scoring: per-field
	// extraction confidence in [0,1].
	FieldConfidence map[string]float64 `json:"field_confidence,omitempty"`
}
