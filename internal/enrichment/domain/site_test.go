package enrichment

import (
	"errors"
	"testing"
)

func testCatalog() []ClimateSite {
	return []ClimateSite{
		{ID: 702730, City: "Anchorage", State: "AK", Latitude: 61.2181, Longitude: -149.9003},
		{ID: 702610, City: "Fairbanks", State: "AK", Latitude: 64.8378, Longitude: -147.7164},
		{ID: 703810, City: "Juneau", State: "AK", Latitude: 58.3019, Longitude: -134.4197},
	}
}

func TestNearestSiteColocated(t *testing.T) {
	site, err := NearestSite(64.8378, -147.7164, testCatalog())
	if err != nil {
		t.Fatalf("nearest site: %v", err)
	}
	if site.ID != 702610 {
		t.Fatalf("expected co-located site 702610, got %d", site.ID)
	}
	if site.Label() != "Fairbanks, AK" {
		t.Fatalf("unexpected label %q", site.Label())
	}
}

func TestNearestSitePicksMinimum(t *testing.T) {
	// Wasilla, closer to Anchorage than to Fairbanks or Juneau.
	site, err := NearestSite(61.5814, -149.4394, testCatalog())
	if err != nil {
		t.Fatalf("nearest site: %v", err)
	}
	if site.City != "Anchorage" {
		t.Fatalf("expected Anchorage, got %s", site.City)
	}
}

func TestNearestSiteEmptyCatalog(t *testing.T) {
	if _, err := NearestSite(60, -150, nil); !errors.Is(err, ErrEmptySiteCatalog) {
		t.Fatalf("expected ErrEmptySiteCatalog, got %v", err)
	}
}

func TestNearestSiteFirstMinimumWins(t *testing.T) {
	catalog := []ClimateSite{
		{ID: 1, City: "A", State: "AK", Latitude: 60, Longitude: -150},
		{ID: 2, City: "B", State: "AK", Latitude: 60, Longitude: -150},
	}
	site, err := NearestSite(60, -150, catalog)
	if err != nil {
		t.Fatalf("nearest site: %v", err)
	}
	if site.ID != 1 {
		t.Fatalf("expected first catalog entry on tie, got %d", site.ID)
	}
}
