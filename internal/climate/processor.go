package climate

import (
	"encoding/csv"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jszwec/csvutil"

	enrichment "akenergy-data/internal/enrichment/domain"
)

// DesignTempsFilename is the supplemental workbook expected alongside
// the raw TMY3 files.
const DesignTempsFilename = "design_temps.xlsx"

// CatalogFilename is the site catalog written to the output directory.
const CatalogFilename = "tmy3_meta.csv"

// Processor converts a directory of raw TMY3 files into per-site
// hourly series plus a site catalog.
type Processor struct {
	logger *log.Logger
}

// NewProcessor constructs a processor.
func NewProcessor(logger *log.Logger) (*Processor, error) {
	if logger == nil {
		return nil, fmt.Errorf("climate: nil logger")
	}
	return &Processor{logger: logger}, nil
}

// ProcessDir reads every raw TMY3 CSV under rawDir, writes one hourly
// series file per site and the catalog to outDir, and returns the
// catalog entries sorted by site ID. Sites without a published heating
// design temperature get the cold-end quantile of their own series.
func (p *Processor) ProcessDir(rawDir, outDir string) ([]SiteMeta, error) {
	designTemps, err := LoadDesignTemps(filepath.Join(rawDir, DesignTempsFilename))
	if err != nil {
		return nil, err
	}

	paths, err := filepath.Glob(filepath.Join(rawDir, "*.csv"))
	if err != nil {
		return nil, fmt.Errorf("climate: list raw files: %w", err)
	}
	sort.Strings(paths)

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("climate: create output dir: %w", err)
	}

	var catalog []SiteMeta
	for _, path := range paths {
		meta, err := p.processFile(path, outDir, designTemps)
		if err != nil {
			return nil, err
		}
		catalog = append(catalog, meta)
	}
	sort.Slice(catalog, func(i, j int) bool { return catalog[i].ID < catalog[j].ID })

	if err := writeCatalog(filepath.Join(outDir, CatalogFilename), catalog); err != nil {
		return nil, err
	}
	p.logger.Printf("processed %d weather sites into %s", len(catalog), outDir)
	return catalog, nil
}

func (p *Processor) processFile(path, outDir string, designTemps map[int]float64) (SiteMeta, error) {
	f, err := os.Open(path)
	if err != nil {
		return SiteMeta{}, fmt.Errorf("climate: open %s: %w", path, err)
	}
	defer f.Close()

	meta, observations, err := readSite(f)
	if err != nil {
		return SiteMeta{}, fmt.Errorf("climate: %s: %w", filepath.Base(path), err)
	}
	if len(observations) == 0 {
		return SiteMeta{}, fmt.Errorf("climate: %s: no observations", filepath.Base(path))
	}

	var tempSum, humSum, windSum float64
	temps := make([]float64, len(observations))
	for i, obs := range observations {
		tempSum += obs.DryBulbF
		humSum += obs.RelHumidity
		windSum += obs.WindSpeedMPH
		temps[i] = obs.DryBulbF
	}
	n := float64(len(observations))
	meta.AvgTemp = tempSum / n
	meta.AvgHumidity = humSum / n
	meta.AvgWindSpeed = windSum / n

	if published, ok := designTemps[meta.ID]; ok {
		meta.HeatingDesignTemp = published
	} else {
		meta.HeatingDesignTemp = quantile(temps, designTempQuantile)
		p.logger.Printf("site %d (%s): no published design temp, using %.1f F from series",
			meta.ID, meta.City, meta.HeatingDesignTemp)
	}

	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	if err := writeSeries(filepath.Join(outDir, stem+".csv"), observations); err != nil {
		return SiteMeta{}, err
	}
	return meta, nil
}

type seriesRow struct {
	Timestamp string  `csv:"timestamp"`
	DryBulb   float64 `csv:"db_temp"`
	RelHum    float64 `csv:"rh"`
	WindSpeed float64 `csv:"wind_spd"`
	Month     int     `csv:"month"`
}

func writeSeries(path string, observations []Observation) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("climate: create series %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	enc := csvutil.NewEncoder(w)
	for _, obs := range observations {
		row := seriesRow{
			Timestamp: obs.Timestamp.Format("2006-01-02 15:04:05"),
			DryBulb:   obs.DryBulbF,
			RelHum:    obs.RelHumidity,
			WindSpeed: obs.WindSpeedMPH,
			Month:     obs.Month(),
		}
		if err := enc.Encode(row); err != nil {
			return fmt.Errorf("climate: encode series row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("climate: write series %s: %w", path, err)
	}
	return nil
}

func writeCatalog(path string, catalog []SiteMeta) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("climate: create catalog: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	enc := csvutil.NewEncoder(w)
	for _, meta := range catalog {
		if err := enc.Encode(meta); err != nil {
			return fmt.Errorf("climate: encode catalog row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("climate: write catalog: %w", err)
	}
	return nil
}

// Sites converts catalog entries to the site form used by enrichment.
func Sites(catalog []SiteMeta) []enrichment.ClimateSite {
	sites := make([]enrichment.ClimateSite, 0, len(catalog))
	for _, meta := range catalog {
		sites = append(sites, enrichment.ClimateSite{
			ID:                meta.ID,
			City:              meta.City,
			State:             meta.State,
			Latitude:          meta.Latitude,
			Longitude:         meta.Longitude,
			AvgTemp:           meta.AvgTemp,
			AvgHumidity:       meta.AvgHumidity,
			AvgWindSpeed:      meta.AvgWindSpeed,
			HeatingDesignTemp: meta.HeatingDesignTemp,
		})
	}
	return sites
}

// LoadCatalog reads a previously written site catalog.
func LoadCatalog(path string) ([]SiteMeta, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("climate: read catalog: %w", err)
	}
	var catalog []SiteMeta
	if err := csvutil.Unmarshal(data, &catalog); err != nil {
		return nil, fmt.Errorf("climate: decode catalog: %w", err)
	}
	return catalog, nil
}
