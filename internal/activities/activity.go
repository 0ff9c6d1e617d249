package activities

import (
	"time"

	"github.com/2beens/cyclingcoach/pkg"

	"github.com/google/uuid"
)

// Activity mirrors one cycling_activities row. Optional columns are pointers
// so an absent value stays distinguishable from a measured zero.
type Activity struct {
	ID     *uuid.UUID `json:"id"`
	UserID *uuid.UUID `json:"user_id"`

	StartedAt       time.Time `json:"started_at"`
	EndedAt         time.Time `json:"ended_at"`
	DurationSeconds int       `json:"duration_seconds"`
	DistanceKm      float64   `json:"distance_km"`

	AvgSpeedKmh      *float64 `json:"avg_speed_kmh"`
	ActiveEnergyKcal *float64 `json:"active_energy_kcal"`
	ElevationGainM   *float64 `json:"elevation_gain_m"`
	AvgHrBpm         *int     `json:"avg_hr_bpm"`
	MaxHrBpm         *int     `json:"max_hr_bpm"`
	Vo2max           *float64 `json:"vo2max"`

	CreatedAt *time.Time `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at"`
}

// ComputedSpeedKmh derives speed from distance and duration; nil when duration is not positive.
func (a Activity) ComputedSpeedKmh() *float64 {
	if a.DurationSeconds <= 0 {
		return nil
	}
	speed := a.DistanceKm / (float64(a.DurationSeconds) / 3600.0)
	return &speed
}

// SpeedKmh prefers the recorded average speed and falls back to the computed one.
func (a Activity) SpeedKmh() *float64 {
	if a.AvgSpeedKmh != nil {
		speed := *a.AvgSpeedKmh
		return &speed
	}
	return a.ComputedSpeedKmh()
}

func (a Activity) ElevationGain() float64 {
	if a.ElevationGainM == nil {
		return 0
	}
	return *a.ElevationGainM
}

// ClimbDensity is metres climbed per km, 0 without distance.
func (a Activity) ClimbDensity() float64 {
	if a.DistanceKm <= 0 {
		return 0
	}
	return a.ElevationGain() / a.DistanceKm
}

// DayKey is the UTC start date, YYYY-MM-DD.
func (a Activity) DayKey() string {
	return a.StartedAt.UTC().Format(pkg.DateLayout)
}

// ISOWeek returns the ISO year and week of the start time, plus the week's Monday date.
func (a Activity) ISOWeek() (int, int, string) {
	start := a.StartedAt.UTC()
	year, week := start.ISOWeek()

	isoWeekday := int(start.Weekday())
	if isoWeekday == 0 {
		isoWeekday = 7
	}
	monday := start.AddDate(0, 0, -(isoWeekday - 1))

	return year, week, monday.Format(pkg.DateLayout)
}
