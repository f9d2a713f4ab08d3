package recap

import (
	"testing"
)

const sampleRecap = `Fixture Recap

Vessel: MV EXAMPLE
Laycan: 2024-02-01 / 2024-02-03
Load port: Hamburg
Discharge port: Singapore
Freight: $45.50 per MT
Demurrage: $12,500 per day
Cargo: Steel coils

Special terms:
- Load trim 10cm max
- Baltic exchange arbitration
`

func TestExtractLabeledRecap(t *testing.T) {
	data := Extract(sampleRecap)

	if data.VesselName != "MV EXAMPLE" {
		t.Errorf("vessel = %q", data.VesselName)
	}
	if data.LaycanStartISO != "2024-02-01T00:00:00Z" {
		t.Errorf("laycan start = %q", data.LaycanStartISO)
	}
	if data.LaycanEndISO != "2024-02-03T23:59:59Z" {
		t.Errorf("laycan end = %q", data.LaycanEndISO)
	}
	if data.LoadPort != "Hamburg" || data.DischargePort != "Singapore" {
		t.Errorf("ports = %q / %q", data.LoadPort, data.DischargePort)
	}
	if data.FreightRate != "$45.50 per MT" {
		t.Errorf("freight = %q", data.FreightRate)
	}
	if data.DemurrageRate != "$12,500 per day" {
		t.Errorf("demurrage = %q", data.DemurrageRate)
	}
	if data.CargoDescription != "Steel coils" {
		t.Errorf("cargo = %q", data.CargoDescription)
	}
	if len(data.SpecialTerms) != 2 || data.SpecialTerms[0] != "Load trim 10cm max" {
		t.Errorf("special terms = %v", data.SpecialTerms)
	}
	for _, field := range []string{"vessel_name", "laycan_start_iso", "load_port", "freight_rate"} {
		if data.FieldConfidence[field] == 0 {
			t.Errorf("no confidence recorded for %s", field)
		}
	}
}

func TestExtractUnlabeledVessel(t *testing.T) {
	data := Extract("Pleased to confirm MV NORDIC STAR for the subject cargo.")
	if data.VesselName != "MV NORDIC STAR" {
		t.Errorf("vessel = %q", data.VesselName)
	}
	if conf := data.FieldConfidence["vessel_name"]; conf >= 0.95 {
		t.Errorf("pattern match should score below labeled match, got %v", conf)
	}
}

func TestExtractEmptyInput(t *testing.T) {
	data := Extract("")
	if data.VesselName != "" || len(data.SpecialTerms) != 0 {
		t.Errorf("expected zero value, got %+v", data)
	}
	if len(data.FieldConfidence) != 0 {
		t.Errorf("unexpected confidences: %v", data.FieldConfidence)
	}
}
