// Package climate turns raw TMY3 weather files into per-site hourly
// series and a site catalog with seasonal averages and heating design
// temperatures.
package climate

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/jszwec/csvutil"
)

// Unit conversion factors for the raw TMY3 metric columns.
const (
	metersToFeet               = 3.28084
	metersPerSecToMilesPerHour = 2.23694
)

// observationYear pins every series timestamp to a single common year
// so typical-year data from different vintages lines up.
const observationYear = 2018

// SiteMeta is the catalog entry for one weather site.
type SiteMeta struct {
	ID                int     `csv:"tmy_id"`
	City              string  `csv:"city"`
	State             string  `csv:"state"`
	UTCOffset         float64 `csv:"utc_offset"`
	Latitude          float64 `csv:"latitude"`
	Longitude         float64 `csv:"longitude"`
	ElevationFt       float64 `csv:"elevation"`
	AvgTemp           float64 `csv:"db_temp_avg"`
	AvgHumidity       float64 `csv:"rh_avg"`
	AvgWindSpeed      float64 `csv:"wind_spd_avg"`
	HeatingDesignTemp float64 `csv:"heating_design_temp"`
}

// Observation is one hourly record, converted to US customary units
// and stamped at the middle of its hour.
type Observation struct {
	Timestamp    time.Time
	DryBulbF     float64
	RelHumidity  float64
	WindSpeedMPH float64
}

// Month returns the calendar month of the observation, kept alongside
// the series for seasonal grouping downstream.
func (o Observation) Month() int {
	return int(o.Timestamp.Month())
}

type tmyRow struct {
	Date     string  `csv:"Date (MM/DD/YYYY)"`
	Time     string  `csv:"Time (HH:MM)"`
	DryBulbC float64 `csv:"Dry-bulb (C)"`
	RelHum   float64 `csv:"RHum (%)"`
	WindMS   float64 `csv:"Wspd (m/s)"`
}

// readSite parses one raw TMY3 file: the one-line site header followed
// by the hourly table. Averages and the design temperature are filled
// in by the processor.
func readSite(r io.Reader) (SiteMeta, []Observation, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	hdr, err := cr.Read()
	if err != nil {
		return SiteMeta{}, nil, fmt.Errorf("climate: read site header: %w", err)
	}
	meta, err := parseHeader(hdr)
	if err != nil {
		return SiteMeta{}, nil, err
	}

	dec, err := csvutil.NewDecoder(cr)
	if err != nil {
		return SiteMeta{}, nil, fmt.Errorf("climate: read column header: %w", err)
	}
	var observations []Observation
	for {
		var row tmyRow
		if err := dec.Decode(&row); err == io.EOF {
			break
		} else if err != nil {
			return SiteMeta{}, nil, fmt.Errorf("climate: decode observation: %w", err)
		}
		ts, err := parseTimestamp(row.Date, row.Time)
		if err != nil {
			return SiteMeta{}, nil, err
		}
		observations = append(observations, Observation{
			Timestamp:    ts,
			DryBulbF:     row.DryBulbC*1.8 + 32.0,
			RelHumidity:  row.RelHum,
			WindSpeedMPH: row.WindMS * metersPerSecToMilesPerHour,
		})
	}
	return meta, observations, nil
}

// parseHeader decodes the positional site header: id, city, state,
// UTC offset, latitude, longitude and elevation in meters.
func parseHeader(fields []string) (SiteMeta, error) {
	if len(fields) < 7 {
		return SiteMeta{}, fmt.Errorf("climate: short site header: %d fields", len(fields))
	}
	id, err := strconv.Atoi(strings.TrimSpace(fields[0]))
	if err != nil {
		return SiteMeta{}, fmt.Errorf("climate: site id: %w", err)
	}
	nums := make([]float64, 4)
	for i, idx := range []int{3, 4, 5, 6} {
		v, err := strconv.ParseFloat(strings.TrimSpace(fields[idx]), 64)
		if err != nil {
			return SiteMeta{}, fmt.Errorf("climate: header field %d: %w", idx, err)
		}
		nums[i] = v
	}
	return SiteMeta{
		ID:          id,
		City:        strings.TrimSpace(fields[1]),
		State:       strings.TrimSpace(fields[2]),
		UTCOffset:   nums[0],
		Latitude:    nums[1],
		Longitude:   nums[2],
		ElevationFt: nums[3] * metersToFeet,
	}, nil
}

// parseTimestamp combines the raw date and hour-ending time columns
// into a mid-hour stamp in the common observation year. Hour 24 wraps
// to 23:30 of the same day under the hour-ending convention.
func parseTimestamp(date, clock string) (time.Time, error) {
	dateParts := strings.Split(date, "/")
	if len(dateParts) != 3 {
		return time.Time{}, fmt.Errorf("climate: bad date %q", date)
	}
	month, err1 := strconv.Atoi(dateParts[0])
	day, err2 := strconv.Atoi(dateParts[1])
	hourStr, _, found := strings.Cut(clock, ":")
	if !found {
		return time.Time{}, fmt.Errorf("climate: bad time %q", clock)
	}
	hour, err3 := strconv.Atoi(hourStr)
	if err1 != nil || err2 != nil || err3 != nil {
		return time.Time{}, fmt.Errorf("climate: bad timestamp %q %q", date, clock)
	}
	return time.Date(observationYear, time.Month(month), day, hour-1, 30, 0, 0, time.UTC), nil
}
