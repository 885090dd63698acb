package database

import (
	"testing"

	"github.com/TobiSchelling/repurposer/internal/content"
)

func insertVoice(t *testing.T, db *DB, id, name string) *content.VoiceProfile {
	t.Helper()
	p := &content.VoiceProfile{
		ID:   id,
		Name: name,
		StyleAttributes: content.StyleAttributes{
			Tone:              "warm",
			PersonalityTraits: []string{"curious"},
		},
		CreatedAt: "2026-03-01T00:00:00.000Z",
		UpdatedAt: "2026-03-01T00:00:00.000Z",
	}
	if err := db.InsertVoice(p, []string{"sample one", "sample two"}); err != nil {
		t.Fatalf("InsertVoice(%s): %v", id, err)
	}
	return p
}

func TestFirstVoiceIsDefault(t *testing.T) {
	db := openTestDB(t)
	first := insertVoice(t, db, "v1", "Zeta")
	second := insertVoice(t, db, "v2", "Alpha")

	if !first.IsDefault || second.IsDefault {
		t.Fatalf("expected only the first voice to be default: %v %v", first.IsDefault, second.IsDefault)
	}

	voices, err := db.ListVoices()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(voices) != 2 || voices[0].ID != "v1" {
		t.Fatalf("expected default first, got %+v", voices)
	}
	if voices[0].StyleAttributes.Tone != "warm" || len(voices[0].StyleAttributes.PersonalityTraits) != 1 {
		t.Errorf("style attributes not round-tripped: %+v", voices[0].StyleAttributes)
	}

	samples, err := db.GetVoiceSamples("v1")
	if err != nil || len(samples) != 2 {
		t.Errorf("expected 2 samples, got %v (%v)", samples, err)
	}
}

func TestListVoicesOrdersByName(t *testing.T) {
	db := openTestDB(t)
	insertVoice(t, db, "v1", "Default")
	insertVoice(t, db, "v2", "Charlie")
	insertVoice(t, db, "v3", "Bravo")

	voices, _ := db.ListVoices()
	got := []string{voices[0].Name, voices[1].Name, voices[2].Name}
	want := []string{"Default", "Bravo", "Charlie"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected order %v, got %v", want, got)
		}
	}
}

func TestSetDefaultVoice(t *testing.T) {
	db := openTestDB(t)
	insertVoice(t, db, "v1", "One")
	insertVoice(t, db, "v2", "Two")

	found, err := db.SetDefaultVoice("v2", "2026-03-02T00:00:00.000Z")
	if err != nil || !found {
		t.Fatalf("SetDefaultVoice: found=%v err=%v", found, err)
	}

	def, err := db.GetDefaultVoice()
	if err != nil || def == nil || def.ID != "v2" {
		t.Fatalf("expected v2 as default, got %+v (%v)", def, err)
	}
	voices, _ := db.ListVoices()
	defaults := 0
	for _, v := range voices {
		if v.IsDefault {
			defaults++
		}
	}
	if defaults != 1 {
		t.Errorf("expected exactly one default, got %d", defaults)
	}

	found, err = db.SetDefaultVoice("missing", "2026-03-02T00:00:00.000Z")
	if err != nil || found {
		t.Errorf("expected not found, got found=%v err=%v", found, err)
	}
	def, _ = db.GetDefaultVoice()
	if def == nil || def.ID != "v2" {
		t.Error("a missing id must not clear the default")
	}
}

func TestDeleteVoice(t *testing.T) {
	db := openTestDB(t)
	insertVoice(t, db, "v1", "One")

	found, err := db.DeleteVoice("v1")
	if err != nil || !found {
		t.Fatalf("DeleteVoice: found=%v err=%v", found, err)
	}
	v, _ := db.GetVoice("v1")
	if v != nil {
		t.Error("expected voice to be gone")
	}
	samples, _ := db.GetVoiceSamples("v1")
	if len(samples) != 0 {
		t.Errorf("expected samples removed, got %d", len(samples))
	}

	found, _ = db.DeleteVoice("v1")
	if found {
		t.Error("expected second delete to report not found")
	}
}
