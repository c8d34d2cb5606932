// Package export writes the enrichment result to its published forms:
// the CSV dataset tables, an Excel workbook, a PDF run report and an
// optional relational mirror.
package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/jszwec/csvutil"

	"akenergy-data/internal/enrichment/application"
	enrichment "akenergy-data/internal/enrichment/domain"
)

// Published dataset filenames.
const (
	CommunitiesFilename = "city.csv"
	UtilitiesFilename   = "utility.csv"
	MiscInfoFilename    = "misc_info.csv"
)

type communityRow struct {
	ID                   int      `csv:"ID"`
	Name                 string   `csv:"Name"`
	Latitude             *float64 `csv:"Latitude"`
	Longitude            *float64 `csv:"Longitude"`
	ERHRegionID          *int64   `csv:"ERHRegionID"`
	WAPRegionID          *int64   `csv:"WAPRegionID"`
	ImprovementCostLevel *int64   `csv:"ImprovementCostLevel"`
	FuelRefer            bool     `csv:"FuelRefer"`
	FuelCityID           int      `csv:"FuelCityID"`
	Oil1Price            *float64 `csv:"Oil1Price"`
	Oil2Price            *float64 `csv:"Oil2Price"`
	PropanePrice         *float64 `csv:"PropanePrice"`
	BirchPrice           *float64 `csv:"BirchPrice"`
	SprucePrice          *float64 `csv:"SprucePrice"`
	CoalPrice            *float64 `csv:"CoalPrice"`
	SteamPrice           *float64 `csv:"SteamPrice"`
	HotWaterPrice        *float64 `csv:"HotWaterPrice"`
	MunicipalSalesTax    *float64 `csv:"MunicipalSalesTax"`
	BoroughSalesTax      *float64 `csv:"BoroughSalesTax"`
	ClimateSiteID        int      `csv:"TMYid"`
	ClimateSiteName      string   `csv:"TMYname"`
	ElectricUtilities    string   `csv:"ElecUtilities"`
	GasPrice             *float64 `csv:"GasPrice"`
	CensusArea           string   `csv:"census_area"`
	Hub                  bool     `csv:"hub"`
	Use1                 float64  `csv:"use_1"`
	Use2                 float64  `csv:"use_2"`
	Use3                 float64  `csv:"use_3"`
	Use4                 float64  `csv:"use_4"`
	Use5                 float64  `csv:"use_5"`
	Use6                 float64  `csv:"use_6"`
	Use7                 float64  `csv:"use_7"`
	Use8                 float64  `csv:"use_8"`
	Use9                 float64  `csv:"use_9"`
	Use10                float64  `csv:"use_10"`
	Use11                float64  `csv:"use_11"`
	Use12                float64  `csv:"use_12"`
}

// FormatUtilities renders the (name, ID) pairs into the single display
// column used by the dataset.
func FormatUtilities(refs []enrichment.UtilityRef) string {
	parts := make([]string, 0, len(refs))
	for _, ref := range refs {
		parts = append(parts, fmt.Sprintf("%s (%d)", ref.Name, ref.ID))
	}
	return strings.Join(parts, "; ")
}

func newCommunityRow(c enrichment.EnrichedCommunity) communityRow {
	row := communityRow{
		ID:                   c.ID,
		Name:                 c.Name,
		Latitude:             c.Latitude,
		Longitude:            c.Longitude,
		ERHRegionID:          c.ERHRegionID,
		WAPRegionID:          c.WAPRegionID,
		ImprovementCostLevel: c.ImprovementCostLevel,
		FuelRefer:            c.FuelRefer,
		FuelCityID:           c.FuelCityID,
		Oil1Price:            c.FuelPrices.Oil1,
		Oil2Price:            c.FuelPrices.Oil2,
		PropanePrice:         c.FuelPrices.Propane,
		BirchPrice:           c.FuelPrices.Birch,
		SprucePrice:          c.FuelPrices.Spruce,
		CoalPrice:            c.FuelPrices.Coal,
		SteamPrice:           c.FuelPrices.Steam,
		HotWaterPrice:        c.FuelPrices.HotWater,
		MunicipalSalesTax:    c.MunicipalSalesTax,
		BoroughSalesTax:      c.BoroughSalesTax,
		ClimateSiteID:        c.ClimateSiteID,
		ClimateSiteName:      c.ClimateSiteName,
		ElectricUtilities:    FormatUtilities(c.ElectricUtilities),
		GasPrice:             c.GasPrice,
		CensusArea:           c.AreaName,
		Hub:                  c.Hub,
	}
	uses := []*float64{
		&row.Use1, &row.Use2, &row.Use3, &row.Use4, &row.Use5, &row.Use6,
		&row.Use7, &row.Use8, &row.Use9, &row.Use10, &row.Use11, &row.Use12,
	}
	for i, v := range c.UsageProfile {
		*uses[i] = v
	}
	return row
}

type utilityRow struct {
	ID           int      `csv:"ID"`
	Name         string   `csv:"Name"`
	NameShort    string   `csv:"NameShort"`
	Type         int      `csv:"Type"`
	Active       bool     `csv:"Active"`
	IsCommercial bool     `csv:"IsCommercial"`
	ChargesRCC   bool     `csv:"ChargesRCC"`
	PCE          *float64 `csv:"PCE"`
	Blocks       string   `csv:"Blocks"`
}

// FormatBlocks renders the effective (threshold, rate) tiers into the
// single display column used by the dataset. Tiers without a rate do
// not exist; a missing threshold marks the unbounded last tier.
func FormatBlocks(blocks []enrichment.TariffBlock) string {
	parts := make([]string, 0, len(blocks))
	for _, b := range blocks {
		if b.Rate == nil {
			continue
		}
		threshold := "inf"
		if b.Threshold != nil {
			threshold = strconv.FormatFloat(*b.Threshold, 'g', -1, 64)
		}
		parts = append(parts, fmt.Sprintf("(%s, %s)", threshold, strconv.FormatFloat(*b.Rate, 'g', -1, 64)))
	}
	return strings.Join(parts, "; ")
}

// WriteCommunities writes the enriched community table.
func WriteCommunities(path string, communities []enrichment.EnrichedCommunity) error {
	rows := make([]communityRow, 0, len(communities))
	for _, c := range communities {
		rows = append(rows, newCommunityRow(c))
	}
	return writeCSV(path, rows)
}

// WriteUtilities writes the utility table after subsidy resolution and
// tariff normalization. The raw block, rate and surcharge columns are
// replaced by the single Blocks column of effective tiers.
func WriteUtilities(path string, utilities []enrichment.Utility) error {
	rows := make([]utilityRow, 0, len(utilities))
	for _, u := range utilities {
		rows = append(rows, utilityRow{
			ID:           u.ID,
			Name:         u.Name,
			NameShort:    u.NameShort,
			Type:         u.Type,
			Active:       u.Active,
			IsCommercial: u.IsCommercial,
			ChargesRCC:   u.ChargesRCC,
			PCE:          u.PCE,
			Blocks:       FormatBlocks(u.Blocks[:]),
		})
	}
	return writeCSV(path, rows)
}

// WriteMiscInfo writes the miscellaneous-information record as a
// single passthrough row with its columns in sorted order.
func WriteMiscInfo(path string, misc enrichment.MiscInfo) error {
	keys := make([]string, 0, len(misc.Raw))
	for k := range misc.Raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	values := make([]string, 0, len(keys))
	for _, k := range keys {
		values = append(values, formatRawValue(misc.Raw[k]))
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("export: create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(keys); err != nil {
		return fmt.Errorf("export: write misc header: %w", err)
	}
	if err := w.Write(values); err != nil {
		return fmt.Errorf("export: write misc row: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("export: write %s: %w", path, err)
	}
	return nil
}

// WriteDataset writes all three dataset tables into dir.
func WriteDataset(dir string, result *application.Result) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("export: create output dir: %w", err)
	}
	if err := WriteCommunities(filepath.Join(dir, CommunitiesFilename), result.Communities); err != nil {
		return err
	}
	if err := WriteUtilities(filepath.Join(dir, UtilitiesFilename), result.Utilities); err != nil {
		return err
	}
	return WriteMiscInfo(filepath.Join(dir, MiscInfoFilename), result.MiscInfo)
}

func writeCSV[T any](path string, rows []T) error {
	data, err := csvutil.Marshal(rows)
	if err != nil {
		return fmt.Errorf("export: marshal %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("export: write %s: %w", path, err)
	}
	return nil
}

func formatRawValue(v any) string {
	switch value := v.(type) {
	case nil:
		return ""
	case []byte:
		return string(value)
	case float64:
		return fmt.Sprintf("%g", value)
	default:
		return fmt.Sprintf("%v", value)
	}
}
