package draft

import (
	"context"
	"encoding/json"
	"reflect"
	"testing"
	"time"

	"github.com/amo-tech-ai/fashionos100-sub001/model"
)

func sampleDraft() model.Draft {
	cfg := model.DefaultConfiguration()
	cfg.Title = "Fall Lookbook Shoot"
	cfg.Category = model.CategoryEditorial
	cfg.Location = "Bogota"
	start := time.Date(2026, 11, 14, 9, 0, 0, 0, time.UTC)
	end := start.Add(8 * time.Hour)
	cfg.StartDate = &start
	cfg.EndDate = &end
	cfg.Scenes = []string{"studio", "rooftop"}
	cfg.ShotCount = 24

	return model.Draft{
		Step:      3,
		State:     cfg,
		LastSaved: time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC),
	}
}

func TestEncodeDecode_roundTrip(t *testing.T) {
	d := sampleDraft()

	data, err := Encode(d)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	got, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	if got.Step != 3 {
		t.Errorf("Step = %d", got.Step)
	}
	if !got.LastSaved.Equal(d.LastSaved) {
		t.Errorf("LastSaved = %v", got.LastSaved)
	}
	if !reflect.DeepEqual(got.State, d.State) {
		t.Errorf("State mismatch:\n got %+v\nwant %+v", got.State, d.State)
	}
}

func TestDecode_dropsUndecodableFields(t *testing.T) {
	// A draft written by an older build where startDate was a plain
	// string rather than a timestamp, and shotCount was a string.
	raw := []byte(`{
		"step": 4,
		"state": {
			"title": "Salvaged",
			"startDate": "next tuesday",
			"shotCount": "lots",
			"location": "Lima"
		},
		"lastSaved": "2026-08-01T00:00:00Z"
	}`)

	got, err := Decode(raw)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	if got.State.Title != "Salvaged" || got.State.Location != "Lima" {
		t.Errorf("surviving fields lost: %+v", got.State)
	}
	if got.State.StartDate != nil {
		t.Errorf("StartDate = %v, undecodable field kept", got.State.StartDate)
	}
	// Dropped field falls back to the default document's value.
	if got.State.ShotCount != 1 {
		t.Errorf("ShotCount = %d", got.State.ShotCount)
	}
	if got.Step != 4 {
		t.Errorf("Step = %d", got.Step)
	}
}

func TestDecode_unknownFieldsIgnored(t *testing.T) {
	raw := []byte(`{"step": 2, "state": {"title": "ok", "hologram": true}, "lastSaved": "2026-08-01T00:00:00Z"}`)

	got, err := Decode(raw)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got.State.Title != "ok" {
		t.Errorf("Title = %q", got.State.Title)
	}
}

func TestDecode_corruptEnvelope(t *testing.T) {
	if _, err := Decode([]byte("not json")); err == nil {
		t.Error("expected error")
	}
}

func TestEncode_producesCamelCaseState(t *testing.T) {
	data, err := Encode(sampleDraft())
	if err != nil {
		t.Fatal(err)
	}

	var env struct {
		State map[string]json.RawMessage `json:"state"`
	}
	if err := json.Unmarshal(data, &env); err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{"title", "shotCount", "startDate"} {
		if _, ok := env.State[key]; !ok {
			t.Errorf("state missing %q", key)
		}
	}
}

func TestMemoryStore_lifecycle(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	if _, ok, err := s.Load(ctx, "absent"); ok || err != nil {
		t.Fatalf("Load absent = (%v, %v)", ok, err)
	}

	if err := s.Save(ctx, "k", sampleDraft()); err != nil {
		t.Fatalf("Save: %v", err)
	}
	d, ok, err := s.Load(ctx, "k")
	if err != nil || !ok {
		t.Fatalf("Load = (%v, %v)", ok, err)
	}
	if d.State.Title != "Fall Lookbook Shoot" {
		t.Errorf("Title = %q", d.State.Title)
	}

	if err := s.Clear(ctx, "k"); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if _, ok, _ := s.Load(ctx, "k"); ok {
		t.Error("draft survived Clear")
	}
	if err := s.Clear(ctx, "k"); err != nil {
		t.Errorf("Clear absent key: %v", err)
	}
}

func TestRestore_boundarySteps(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	cases := []struct {
		name          string
		step          int
		wantStep      int
		wantRecovered bool
	}{
		{"entry step", 0, 0, false},
		{"editing step", 3, 3, true},
		{"terminal step", 8, 0, false},
		{"past terminal", 12, 0, false},
		{"negative", -1, 0, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d := sampleDraft()
			d.Step = tc.step
			if err := s.Save(ctx, "k", d); err != nil {
				t.Fatal(err)
			}

			got, recovered, ok := Restore(ctx, s, "k", 8)
			if !ok {
				t.Fatal("restore failed")
			}
			if got.Step != tc.wantStep {
				t.Errorf("Step = %d, want %d", got.Step, tc.wantStep)
			}
			if recovered != tc.wantRecovered {
				t.Errorf("recovered = %v, want %v", recovered, tc.wantRecovered)
			}
			if got.State.Title != sampleDraft().State.Title {
				t.Errorf("Title = %q, config always restores", got.State.Title)
			}
		})
	}
}

func TestRestore_absentDraft(t *testing.T) {
	if _, _, ok := Restore(context.Background(), NewMemoryStore(), "absent", 8); ok {
		t.Error("restored an absent draft")
	}
}
