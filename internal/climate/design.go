package climate

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// designTempQuantile is the cold-end quantile used when a site has no
// published heating design temperature.
const designTempQuantile = 0.01

// LoadDesignTemps reads the published heating design temperatures from
// the supplemental workbook, keyed by site ID. The first sheet carries
// a header row with tmy_id and htg_design_temp columns.
func LoadDesignTemps(path string) (map[int]float64, error) {
	wb, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("climate: open design temps: %w", err)
	}
	defer wb.Close()

	sheet := wb.GetSheetName(0)
	rows, err := wb.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("climate: read design temps: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("climate: design temps sheet %q is empty", sheet)
	}

	idCol, tempCol := -1, -1
	for i, name := range rows[0] {
		switch strings.TrimSpace(name) {
		case "tmy_id":
			idCol = i
		case "htg_design_temp":
			tempCol = i
		}
	}
	if idCol < 0 || tempCol < 0 {
		return nil, fmt.Errorf("climate: design temps sheet %q missing tmy_id or htg_design_temp column", sheet)
	}

	temps := make(map[int]float64, len(rows)-1)
	for _, row := range rows[1:] {
		if idCol >= len(row) || tempCol >= len(row) {
			continue
		}
		idText := strings.TrimSpace(row[idCol])
		tempText := strings.TrimSpace(row[tempCol])
		if idText == "" || tempText == "" {
			continue
		}
		id, err := strconv.Atoi(idText)
		if err != nil {
			return nil, fmt.Errorf("climate: design temp site id %q: %w", idText, err)
		}
		temp, err := strconv.ParseFloat(tempText, 64)
		if err != nil {
			return nil, fmt.Errorf("climate: design temp for site %d: %w", id, err)
		}
		temps[id] = temp
	}
	return temps, nil
}

// quantile returns the q-th quantile of values with linear
// interpolation between the two nearest order statistics.
func quantile(values []float64, q float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	pos := q * float64(len(sorted)-1)
	lower := int(math.Floor(pos))
	if lower >= len(sorted)-1 {
		return sorted[len(sorted)-1]
	}
	frac := pos - float64(lower)
	return sorted[lower] + frac*(sorted[lower+1]-sorted[lower])
}
