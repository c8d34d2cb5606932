package export

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"akenergy-data/internal/enrichment/application"
	enrichment "akenergy-data/internal/enrichment/domain"
)

func testResult() *application.Result {
	gas := 0.11
	pce := 0.1885
	community := enrichment.EnrichedCommunity{
		Community: enrichment.Community{
			ID:        7,
			Name:      "Bethel",
			Latitude:  enrichment.Float64(60.79),
			Longitude: enrichment.Float64(-161.76),
			FuelPrices: enrichment.FuelPrices{
				Oil1: enrichment.Float64(6.10),
			},
		},
		ClimateSiteID:   702190,
		ClimateSiteName: "Bethel, AK",
		ElectricUtilities: []enrichment.UtilityRef{
			{Name: "Bethel Utilities Corp", ID: 22},
			{Name: "Bethel Utilities Corp - Commercial", ID: 23},
		},
		GasPrice: &gas,
		AreaName: "Bethel Census Area",
		Hub:      true,
	}
	for i := range community.UsageProfile {
		community.UsageProfile[i] = 600 + float64(i)
	}
	return &application.Result{
		Communities: []enrichment.EnrichedCommunity{community},
		Utilities: []enrichment.Utility{
			{
				ID: 22, Name: "Bethel Utilities Corp", NameShort: "Bethel",
				Type: enrichment.UtilityTypeElectric, Active: true, PCE: &pce,
				Blocks: [5]enrichment.TariffBlock{
					{Threshold: enrichment.Float64(500), Rate: enrichment.Float64(0.1107)},
					{Rate: enrichment.Float64(0.0907)},
				},
			},
		},
		MiscInfo: enrichment.MiscInfo{
			RegulatorySurchargeElectric: enrichment.Float64(0.0007),
			Raw:                         map[string]any{"RegulatorySurchargeElectric": 0.0007, "ID": int64(1)},
		},
		Unmatched: []application.UnmatchedName{
			{Query: "Zzyzx Landing", Closest: "Bethel", Score: 31},
		},
	}
}

func TestFormatUtilities(t *testing.T) {
	got := FormatUtilities([]enrichment.UtilityRef{
		{Name: "Alpha", ID: 1},
		{Name: "Beta", ID: 2},
	})
	if got != "Alpha (1); Beta (2)" {
		t.Fatalf("unexpected format %q", got)
	}
	if FormatUtilities(nil) != "" {
		t.Fatal("expected empty string for no utilities")
	}
}

func readCSVFile(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open %s: %v", path, err)
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return rows
}

func TestWriteDataset(t *testing.T) {
	dir := t.TempDir()
	if err := WriteDataset(dir, testResult()); err != nil {
		t.Fatalf("write dataset: %v", err)
	}

	communities := readCSVFile(t, filepath.Join(dir, CommunitiesFilename))
	if len(communities) != 2 {
		t.Fatalf("expected header plus one row, got %d rows", len(communities))
	}
	header := communities[0]
	row := communities[1]
	col := func(name string) string {
		t.Helper()
		for i, h := range header {
			if h == name {
				return row[i]
			}
		}
		t.Fatalf("missing column %q", name)
		return ""
	}
	if col("Name") != "Bethel" {
		t.Fatalf("unexpected name %q", col("Name"))
	}
	if col("TMYname") != "Bethel, AK" {
		t.Fatalf("unexpected site %q", col("TMYname"))
	}
	if !strings.Contains(col("ElecUtilities"), "Bethel Utilities Corp (22)") {
		t.Fatalf("unexpected utilities %q", col("ElecUtilities"))
	}
	if col("Oil2Price") != "" {
		t.Fatalf("expected absent price to stay empty, got %q", col("Oil2Price"))
	}
	use1, err := strconv.ParseFloat(col("use_1"), 64)
	if err != nil || use1 != 600 {
		t.Fatalf("unexpected use_1 %q: %v", col("use_1"), err)
	}
	use12, err := strconv.ParseFloat(col("use_12"), 64)
	if err != nil || use12 != 611 {
		t.Fatalf("unexpected use_12 %q: %v", col("use_12"), err)
	}

	if col("FuelRefer") != "false" || col("FuelCityID") != "0" {
		t.Fatalf("unexpected referral columns %q %q", col("FuelRefer"), col("FuelCityID"))
	}

	utilities := readCSVFile(t, filepath.Join(dir, UtilitiesFilename))
	if len(utilities) != 2 {
		t.Fatalf("expected header plus one utility, got %d rows", len(utilities))
	}
	blocksCol := -1
	for i, h := range utilities[0] {
		if h == "Blocks" {
			blocksCol = i
			continue
		}
		if strings.HasPrefix(h, "Block") || strings.HasPrefix(h, "Rate") {
			t.Fatalf("raw tariff column %q must not be published", h)
		}
	}
	if blocksCol < 0 {
		t.Fatal("expected a Blocks column")
	}
	if got := utilities[1][blocksCol]; got != "(500, 0.1107); (inf, 0.0907)" {
		t.Fatalf("unexpected blocks %q", got)
	}

	misc := readCSVFile(t, filepath.Join(dir, MiscInfoFilename))
	if len(misc) != 2 {
		t.Fatalf("expected header plus one misc row, got %d rows", len(misc))
	}
	if misc[0][0] != "ID" || misc[0][1] != "RegulatorySurchargeElectric" {
		t.Fatalf("expected sorted misc columns, got %v", misc[0])
	}
}

func TestBuildWorkbook(t *testing.T) {
	data, err := BuildWorkbook(testResult())
	if err != nil {
		t.Fatalf("build workbook: %v", err)
	}
	wb, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("reopen workbook: %v", err)
	}
	defer wb.Close()

	name, err := wb.GetCellValue("communities", "B2")
	if err != nil {
		t.Fatalf("read cell: %v", err)
	}
	if name != "Bethel" {
		t.Fatalf("unexpected community cell %q", name)
	}
	utility, err := wb.GetCellValue("utilities", "B2")
	if err != nil {
		t.Fatalf("read cell: %v", err)
	}
	if utility != "Bethel Utilities Corp" {
		t.Fatalf("unexpected utility cell %q", utility)
	}
}

func TestBuildRunReport(t *testing.T) {
	data, err := BuildRunReport(testResult(), time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("build report: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		t.Fatal("expected PDF output")
	}
}
