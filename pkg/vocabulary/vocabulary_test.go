package vocabulary

import (
	"os"
	"path/filepath"
	"testing"
)

func TestMatchStrengths(t *testing.T) {
	vocab := Default()

	tests := []struct {
		name        string
		line        string
		fuzzy       bool
		wantEvent   string
		wantStrenth float64
		wantHit     bool
	}{
		{
			name:        "exact canonical",
			line:        "10:30 Loading Commenced all hatches",
			wantEvent:   "Loading Commenced",
			wantStrenth: 1.0,
			wantHit:     true,
		},
		{
			name:        "case insensitive",
			line:        "LOADING COMMENCED",
			wantEvent:   "Loading Commenced",
			wantStrenth: 1.0,
			wantHit:     true,
		},
		{
			name:        "alias",
			line:        "Notice of Readiness tendered at anchorage",
			wantEvent:   "NOR Tendered",
			wantStrenth: 0.95,
			wantHit:     true,
		},
		{
			name:        "longest alias wins over prefix alias",
			line:        "Notice of Readiness Accepted 08:30",
			wantEvent:   "NOR Accepted",
			wantStrenth: 0.95,
			wantHit:     true,
		},
		{
			name:    "no match",
			line:    "Cargo documents signed by chief officer",
			wantHit: false,
		},
		{
			name:    "ocr mangling without fuzzy",
			line:    "Loadng Commenged 14:00",
			wantHit: false,
		},
		{
			name:      "ocr mangling with fuzzy",
			line:      "Loadng Commenged 14:00",
			fuzzy:     true,
			wantEvent: "Loading Commenced",
			wantHit:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			phrase, strength, ok := vocab.Match(tt.line, tt.fuzzy, 0.88)
			if ok != tt.wantHit {
				t.Fatalf("hit = %v, want %v", ok, tt.wantHit)
			}
			if !ok {
				return
			}
			if phrase.Canonical != tt.wantEvent {
				t.Errorf("event = %q, want %q", phrase.Canonical, tt.wantEvent)
			}
			if tt.wantStrenth > 0 && strength != tt.wantStrenth {
				t.Errorf("strength = %v, want %v", strength, tt.wantStrenth)
			}
		})
	}
}

func TestFuzzyStrengthBelowAlias(t *testing.T) {
	vocab := Default()
	_, strength, ok := vocab.Match("Loadng Commenged", true, 0.88)
	if !ok {
		t.Fatal("expected fuzzy hit")
	}
	if strength >= 0.95 {
		t.Errorf("fuzzy strength %v should stay below alias strength", strength)
	}
}

func TestSequence(t *testing.T) {
	vocab := Default()
	want := []string{"Vessel Arrived", "NOR Tendered", "Loading Commenced", "Loading Completed", "Vessel Sailed"}
	got := vocab.Sequence()
	if len(got) != len(want) {
		t.Fatalf("sequence = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("sequence[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestPairedStarts(t *testing.T) {
	starts := Default().PairedStarts()
	found := map[string]bool{}
	for _, s := range starts {
		found[s] = true
	}
	for _, want := range []string{"Loading Commenced", "Discharging Commenced", "Hoses Connected"} {
		if !found[want] {
			t.Errorf("missing paired start %q in %v", want, starts)
		}
	}
}

func TestLoadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vocab.yaml")
	doc := `phrases:
  - canonical: "Bunkering Commenced"
    aliases: ["commenced bunkers"]
    sequence: 1
    pair_key: bunkering
    pair_role: start
  - canonical: "Bunkering Completed"
    sequence: 2
    pair_key: bunkering
    pair_role: end
`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}

	vocab, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	phrase, _, ok := vocab.Match("commenced bunkers at 06:00", false, 0)
	if !ok || phrase.Canonical != "Bunkering Commenced" {
		t.Fatalf("custom vocabulary match = %+v, %v", phrase, ok)
	}
	if phrase.PairKey != "bunkering" || phrase.PairRole != RoleStart {
		t.Errorf("pair metadata not loaded: %+v", phrase)
	}
}

func TestLoadRejectsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vocab.yaml")
	if err := os.WriteFile(path, []byte("phrases: []\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for empty phrase table")
	}
}
