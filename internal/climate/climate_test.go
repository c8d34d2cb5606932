package climate

import (
	"io"
	"log"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"
)

const rawSite = `702610,"Fairbanks",AK,-9.0,64.817,-147.856,138.0
Date (MM/DD/YYYY),Time (HH:MM),Dry-bulb (C),RHum (%),Wspd (m/s)
01/01/2005,1:00,-20.0,70,2.0
01/01/2005,2:00,-10.0,60,4.0
07/01/2005,13:00,20.0,50,1.0
`

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestReadSiteHeaderAndConversions(t *testing.T) {
	meta, observations, err := readSite(strings.NewReader(rawSite))
	if err != nil {
		t.Fatalf("read site: %v", err)
	}
	if meta.ID != 702610 || meta.City != "Fairbanks" || meta.State != "AK" {
		t.Fatalf("unexpected meta %+v", meta)
	}
	if !almostEqual(meta.ElevationFt, 138.0*3.28084) {
		t.Fatalf("unexpected elevation %f", meta.ElevationFt)
	}
	if len(observations) != 3 {
		t.Fatalf("expected 3 observations, got %d", len(observations))
	}
	first := observations[0]
	if !almostEqual(first.DryBulbF, -4.0) {
		t.Fatalf("expected -20 C as -4 F, got %f", first.DryBulbF)
	}
	if !almostEqual(first.WindSpeedMPH, 2.0*2.23694) {
		t.Fatalf("unexpected wind speed %f", first.WindSpeedMPH)
	}
	want := time.Date(2018, 1, 1, 0, 30, 0, 0, time.UTC)
	if !first.Timestamp.Equal(want) {
		t.Fatalf("expected mid-hour stamp %v, got %v", want, first.Timestamp)
	}
	if observations[2].Month() != 7 {
		t.Fatalf("expected July, got month %d", observations[2].Month())
	}
}

func TestParseTimestampHourEnding(t *testing.T) {
	ts, err := parseTimestamp("12/31/2005", "24:00")
	if err != nil {
		t.Fatalf("parse timestamp: %v", err)
	}
	want := time.Date(2018, 12, 31, 23, 30, 0, 0, time.UTC)
	if !ts.Equal(want) {
		t.Fatalf("expected %v, got %v", want, ts)
	}
}

func TestQuantileLinearInterpolation(t *testing.T) {
	values := []float64{4, 1, 3, 2}
	if got := quantile(values, 0.5); !almostEqual(got, 2.5) {
		t.Fatalf("expected median 2.5, got %f", got)
	}
	if got := quantile(values, 0.0); !almostEqual(got, 1) {
		t.Fatalf("expected minimum 1, got %f", got)
	}
	if got := quantile(values, 1.0); !almostEqual(got, 4) {
		t.Fatalf("expected maximum 4, got %f", got)
	}
	if got := quantile([]float64{7}, 0.01); !almostEqual(got, 7) {
		t.Fatalf("expected single value 7, got %f", got)
	}
}

func writeDesignTemps(t *testing.T, dir string, temps map[int]float64) {
	t.Helper()
	wb := excelize.NewFile()
	sheet := wb.GetSheetName(0)
	if err := wb.SetSheetRow(sheet, "A1", &[]any{"tmy_id", "htg_design_temp"}); err != nil {
		t.Fatalf("write header: %v", err)
	}
	row := 2
	for id, temp := range temps {
		cell, _ := excelize.CoordinatesToCellName(1, row)
		if err := wb.SetSheetRow(sheet, cell, &[]any{id, temp}); err != nil {
			t.Fatalf("write row: %v", err)
		}
		row++
	}
	if err := wb.SaveAs(filepath.Join(dir, DesignTempsFilename)); err != nil {
		t.Fatalf("save design temps: %v", err)
	}
}

func TestProcessDirWritesSeriesAndCatalog(t *testing.T) {
	rawDir := t.TempDir()
	outDir := t.TempDir()
	writeDesignTemps(t, rawDir, map[int]float64{702610: -47.0})
	if err := os.WriteFile(filepath.Join(rawDir, "702610.csv"), []byte(rawSite), 0o644); err != nil {
		t.Fatalf("write raw site: %v", err)
	}

	processor, err := NewProcessor(log.New(io.Discard, "", 0))
	if err != nil {
		t.Fatalf("new processor: %v", err)
	}
	catalog, err := processor.ProcessDir(rawDir, outDir)
	if err != nil {
		t.Fatalf("process dir: %v", err)
	}
	if len(catalog) != 1 {
		t.Fatalf("expected 1 site, got %d", len(catalog))
	}
	meta := catalog[0]
	if meta.HeatingDesignTemp != -47.0 {
		t.Fatalf("expected published design temp, got %f", meta.HeatingDesignTemp)
	}
	wantAvg := (-4.0 + 14.0 + 68.0) / 3
	if !almostEqual(meta.AvgTemp, wantAvg) {
		t.Fatalf("expected average temp %f, got %f", wantAvg, meta.AvgTemp)
	}

	if _, err := os.Stat(filepath.Join(outDir, "702610.csv")); err != nil {
		t.Fatalf("expected series file: %v", err)
	}
	loaded, err := LoadCatalog(filepath.Join(outDir, CatalogFilename))
	if err != nil {
		t.Fatalf("load catalog: %v", err)
	}
	if len(loaded) != 1 || loaded[0].ID != 702610 || loaded[0].City != "Fairbanks" {
		t.Fatalf("unexpected reloaded catalog %+v", loaded)
	}

	sites := Sites(loaded)
	if sites[0].Label() != "Fairbanks, AK" {
		t.Fatalf("unexpected site label %q", sites[0].Label())
	}
}

func TestProcessDirQuantileFallback(t *testing.T) {
	rawDir := t.TempDir()
	outDir := t.TempDir()
	writeDesignTemps(t, rawDir, map[int]float64{999999: -10.0})
	if err := os.WriteFile(filepath.Join(rawDir, "702610.csv"), []byte(rawSite), 0o644); err != nil {
		t.Fatalf("write raw site: %v", err)
	}

	processor, err := NewProcessor(log.New(io.Discard, "", 0))
	if err != nil {
		t.Fatalf("new processor: %v", err)
	}
	catalog, err := processor.ProcessDir(rawDir, outDir)
	if err != nil {
		t.Fatalf("process dir: %v", err)
	}
	// 1% quantile of [-4, 14, 68] interpolates just above the coldest hour.
	want := -4.0 + 0.02*(14.0-(-4.0))
	if !almostEqual(catalog[0].HeatingDesignTemp, want) {
		t.Fatalf("expected fallback design temp %f, got %f", want, catalog[0].HeatingDesignTemp)
	}
}
