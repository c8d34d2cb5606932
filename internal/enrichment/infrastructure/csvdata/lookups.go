// Package csvdata loads the curated lookup tables that accompany the
// library extract: the city-to-area lookup and the monthly residential
// usage survey.
package csvdata

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"github.com/jszwec/csvutil"

	enrichment "akenergy-data/internal/enrichment/domain"
)

type areaLookupRow struct {
	City       string `csv:"ARIS_cities"`
	Hub        int    `csv:"Hub"`
	CensusArea string `csv:"census_area"`
}

// LoadAreaLookups reads the city-to-area lookup CSV.
func LoadAreaLookups(path string) ([]enrichment.AreaLookup, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("csvdata: open area lookups: %w", err)
	}
	defer f.Close()
	return readAreaLookups(f)
}

func readAreaLookups(r io.Reader) ([]enrichment.AreaLookup, error) {
	dec, err := csvutil.NewDecoder(csv.NewReader(r))
	if err != nil {
		return nil, fmt.Errorf("csvdata: area lookup header: %w", err)
	}
	var lookups []enrichment.AreaLookup
	for {
		var row areaLookupRow
		if err := dec.Decode(&row); err == io.EOF {
			break
		} else if err != nil {
			return nil, fmt.Errorf("csvdata: decode area lookup: %w", err)
		}
		lookups = append(lookups, enrichment.AreaLookup{
			City:       row.City,
			CensusArea: row.CensusArea,
			Hub:        row.Hub != 0,
		})
	}
	return lookups, nil
}

type usageRow struct {
	CensusArea string  `csv:"Census Area"`
	City       string  `csv:"City"`
	M1         float64 `csv:"1"`
	M2         float64 `csv:"2"`
	M3         float64 `csv:"3"`
	M4         float64 `csv:"4"`
	M5         float64 `csv:"5"`
	M6         float64 `csv:"6"`
	M7         float64 `csv:"7"`
	M8         float64 `csv:"8"`
	M9         float64 `csv:"9"`
	M10        float64 `csv:"10"`
	M11        float64 `csv:"11"`
	M12        float64 `csv:"12"`
}

// LoadUsageRecords reads the monthly average residential kWh survey.
// Rows whose City column reads "non hub" aggregate the non-hub
// communities of their area.
func LoadUsageRecords(path string) ([]enrichment.UsageRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("csvdata: open usage survey: %w", err)
	}
	defer f.Close()
	return readUsageRecords(f)
}

func readUsageRecords(r io.Reader) ([]enrichment.UsageRecord, error) {
	dec, err := csvutil.NewDecoder(csv.NewReader(r))
	if err != nil {
		return nil, fmt.Errorf("csvdata: usage survey header: %w", err)
	}
	var records []enrichment.UsageRecord
	for {
		var row usageRow
		if err := dec.Decode(&row); err == io.EOF {
			break
		} else if err != nil {
			return nil, fmt.Errorf("csvdata: decode usage row: %w", err)
		}
		records = append(records, enrichment.UsageRecord{
			City:       row.City,
			CensusArea: row.CensusArea,
			Monthly: [enrichment.MonthsPerYear]float64{
				row.M1, row.M2, row.M3, row.M4, row.M5, row.M6,
				row.M7, row.M8, row.M9, row.M10, row.M11, row.M12,
			},
		})
	}
	return records, nil
}
