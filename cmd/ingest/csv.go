package main

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/2beens/cyclingcoach/internal/activities"

	"github.com/google/uuid"
)

var csvColumns = []string{
	"start_time",
	"end_time",
	"duration_seconds",
	"distance_km",
	"avg_speed_kmh",
	"active_energy_kcal",
	"elevation_gain_m",
	"avg_hr_bpm",
	"max_hr_bpm",
	"vo2max",
}

func parseCSV(r io.Reader, userID uuid.UUID) ([]activities.CreateActivityRequest, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("empty csv")
		}
		return nil, fmt.Errorf("read header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.ToLower(strings.TrimSpace(name))] = i
	}
	var missing []string
	for _, col := range csvColumns {
		if _, ok := index[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing columns: %s", strings.Join(missing, ", "))
	}

	var requests []activities.CreateActivityRequest
	for line := 2; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		row := csvRow{record: record, index: index}
		req := activities.CreateActivityRequest{
			UserID:    userID.String(),
			StartTime: row.text("start_time"),
			EndTime:   row.text("end_time"),
		}

		duration, err := row.float("duration_seconds")
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if duration != nil {
			seconds := int(*duration)
			req.DurationSeconds = &seconds
		}

		fields := []struct {
			column string
			dest   **float64
		}{
			{"distance_km", &req.DistanceKm},
			{"avg_speed_kmh", &req.AvgSpeedKmh},
			{"active_energy_kcal", &req.ActiveEnergyKcal},
			{"elevation_gain_m", &req.ElevationGainM},
			{"avg_hr_bpm", &req.AvgHrBpm},
			{"max_hr_bpm", &req.MaxHrBpm},
			{"vo2max", &req.Vo2max},
		}
		for _, field := range fields {
			value, err := row.float(field.column)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", line, err)
			}
			*field.dest = value
		}

		requests = append(requests, req)
	}

	return requests, nil
}

type csvRow struct {
	record []string
	index  map[string]int
}

func (r csvRow) text(column string) string {
	i := r.index[column]
	if i >= len(r.record) {
		return ""
	}
	return strings.TrimSpace(r.record[i])
}

// float returns nil for empty cells.
func (r csvRow) float(column string) (*float64, error) {
	raw := r.text(column)
	if raw == "" {
		return nil, nil
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, fmt.Errorf("column %s: invalid number %q", column, raw)
	}
	return &value, nil
}
