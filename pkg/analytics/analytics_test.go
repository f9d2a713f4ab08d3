package analytics

import (
	"reflect"
	"testing"

	"github.com/dtnitsch/sof-extractor/models"
)

func TestEventFrequency(t *testing.T) {
	a := &Analytics{}
	events := []models.NormalizedEvent{
		{EventName: "Weather Delay"},
		{EventName: "Weather Delay"},
		{EventName: "Vessel Arrived"},
	}

	got := a.EventFrequency(events)
	want := map[string]int{"Weather Delay": 2, "Vessel Arrived": 1}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("EventFrequency = %v, want %v", got, want)
	}
}

func TestAnomalyFrequency(t *testing.T) {
	a := &Analytics{}
	anomalies := []models.Anomaly{
		{Kind: models.AnomalyLowConfidence},
		{Kind: models.AnomalyLowConfidence},
		{Kind: models.AnomalyTimeGap},
	}

	got := a.AnomalyFrequency(anomalies)
	want := map[string]int{"Low Confidence": 2, "Time Gap": 1}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("AnomalyFrequency = %v, want %v", got, want)
	}
}

func TestAverageConfidenceSkipsUnparsed(t *testing.T) {
	a := &Analytics{}
	events := []models.NormalizedEvent{
		{EventName: "Vessel Arrived", Confidence: 1.0},
		{EventName: "NOR Tendered", Confidence: 0.8},
		{EventName: "Vessel Sailed", Confidence: 0, Unparsed: true},
	}

	if got := a.AverageConfidence(events); got != 0.9 {
		t.Errorf("AverageConfidence = %v, want 0.9", got)
	}
	if got := a.AverageConfidence(nil); got != 0 {
		t.Errorf("AverageConfidence(nil) = %v, want 0", got)
	}
}

func TestTopNEvents(t *testing.T) {
	a := &Analytics{}
	freq := map[string]int{
		"Weather Delay":     3,
		"Vessel Arrived":    1,
		"Loading Commenced": 3,
		"NOR Tendered":      2,
	}

	got := a.TopNEvents(freq, 3)
	// Ties break alphabetically: Loading Commenced before Weather Delay.
	want := []string{"Loading Commenced", "Weather Delay", "NOR Tendered"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("TopNEvents = %v, want %v", got, want)
	}

	if got := a.TopNEvents(freq, 10); len(got) != 4 {
		t.Errorf("TopNEvents over-capacity = %v", got)
	}
}
