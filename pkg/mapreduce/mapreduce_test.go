package mapreduce

import (
	"reflect"
	"testing"

	"github.com/dtnitsch/sof-extractor/models"
	"github.com/dtnitsch/sof-extractor/pkg/analytics"
)

func TestMapReduceAcrossDocuments(t *testing.T) {
	a := &analytics.Analytics{}
	docA := &models.ProcessingResult{Events: []models.NormalizedEvent{
		{EventName: "Vessel Arrived"},
		{EventName: "Loading Commenced"},
	}}
	docB := &models.ProcessingResult{Events: []models.NormalizedEvent{
		{EventName: "Vessel Arrived"},
		{EventName: "Weather Delay"},
		{EventName: "Weather Delay"},
	}}

	total := Reduce([]map[string]int{Map(docA, a), Map(docB, a)})
	want := map[string]int{"Vessel Arrived": 2, "Loading Commenced": 1, "Weather Delay": 2}
	if !reflect.DeepEqual(total, want) {
		t.Errorf("reduced = %v, want %v", total, want)
	}
}

func TestMapAnomalies(t *testing.T) {
	a := &analytics.Analytics{}
	result := &models.ProcessingResult{Anomalies: []models.Anomaly{
		{Kind: models.AnomalyMissingPair},
		{Kind: models.AnomalyMissingPair},
	}}

	got := MapAnomalies(result, a)
	if got["Missing Pair"] != 2 {
		t.Errorf("MapAnomalies = %v", got)
	}
}

func TestTopEventsFormatting(t *testing.T) {
	counts := map[string]int{
		"Vessel Arrived": 4,
		"NOR Tendered":   4,
		"Weather Delay":  1,
	}

	got := TopEvents(counts, 2)
	// Equal counts order alphabetically.
	want := []string{"NOR Tendered:4", "Vessel Arrived:4"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("TopEvents = %v, want %v", got, want)
	}

	if got := TopEvents(nil, 5); len(got) != 0 {
		t.Errorf("TopEvents(nil) = %v", got)
	}
}
