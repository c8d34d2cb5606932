package application

import (
	"io"
	"log"
	"testing"

	enrichment "akenergy-data/internal/enrichment/domain"
	"akenergy-data/internal/matching"
)

func discardLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func flatUsage(city, area string, monthly float64) enrichment.UsageRecord {
	rec := enrichment.UsageRecord{City: city, CensusArea: area}
	for i := range rec.Monthly {
		rec.Monthly[i] = monthly
	}
	return rec
}

func testAssigner(t *testing.T) *UsageAssigner {
	t.Helper()
	lookups := []enrichment.AreaLookup{
		{City: "Bethel", CensusArea: "Bethel Census Area", Hub: true},
		{City: "Akiachak", CensusArea: "Bethel Census Area", Hub: false},
		{City: "Nome", CensusArea: "Nome Census Area", Hub: true},
	}
	records := []enrichment.UsageRecord{
		flatUsage("Bethel", "Bethel Census Area", 620),
		flatUsage("Nome", "Nome Census Area", 700),
		flatUsage(enrichment.NonHubLabel, "Bethel Census Area", 310),
	}
	assigner, err := NewUsageAssigner(matching.New(), 90, lookups, records, discardLogger())
	if err != nil {
		t.Fatalf("new assigner: %v", err)
	}
	return assigner
}

func TestClassifyHubCommunity(t *testing.T) {
	assigner := testAssigner(t)
	area, hub := assigner.Classify("Bethel")
	if area != "Bethel Census Area" || !hub {
		t.Fatalf("unexpected classification %q hub=%v", area, hub)
	}
}

func TestClassifyNoMatch(t *testing.T) {
	assigner := testAssigner(t)
	area, hub := assigner.Classify("Zzyzx Landing")
	if area != "" || hub {
		t.Fatalf("expected unclassified, got %q hub=%v", area, hub)
	}
	if len(assigner.Unmatched()) != 1 {
		t.Fatalf("expected one unmatched entry, got %d", len(assigner.Unmatched()))
	}
}

func TestProfileHubMatch(t *testing.T) {
	assigner := testAssigner(t)
	profile := assigner.Profile("Bethel", "Bethel Census Area", true)
	if profile[0] != 620 {
		t.Fatalf("expected hub profile 620, got %f", profile[0])
	}
}

func TestProfileNonHubAreaMatch(t *testing.T) {
	assigner := testAssigner(t)
	profile := assigner.Profile("Akiachak", "Bethel Census Area", false)
	if profile[0] != 310 {
		t.Fatalf("expected non-hub aggregate 310, got %f", profile[0])
	}
}

func TestProfileFallsBackToDefault(t *testing.T) {
	assigner := testAssigner(t)
	// Hubs above the cutoff: Bethel 620 and Nome 700.
	want := (620.0 + 700.0) / 2
	profile := assigner.Profile("Unknown City", "", false)
	if profile[0] != want {
		t.Fatalf("expected default %f, got %f", want, profile[0])
	}
	if assigner.DefaultProfile()[11] != want {
		t.Fatalf("expected default profile %f, got %f", want, assigner.DefaultProfile()[11])
	}
}

func TestProfileHubNoMatchUsesDefault(t *testing.T) {
	assigner := testAssigner(t)
	want := (620.0 + 700.0) / 2
	profile := assigner.Profile("Utqiagvik", "North Slope Borough", true)
	if profile[0] != want {
		t.Fatalf("expected default %f, got %f", want, profile[0])
	}
}
