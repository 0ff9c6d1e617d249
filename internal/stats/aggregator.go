package stats

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/2beens/cyclingcoach/internal/activities"
	"github.com/2beens/cyclingcoach/pkg"

	"github.com/google/uuid"
)

const (
	DefaultCtlDays = 42
	DefaultAtlDays = 7

	acuteWindowDays   = 7
	chronicWindowDays = 28

	// BaselineWindow is the trailing window workload scores are normalized against.
	BaselineWindow = 28 * 24 * time.Hour

	DefaultRankingLimit = 10
)

var ErrInvalidOrderBy = errors.New("invalid order by")

type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

type Summary struct {
	TotalDistanceKm      float64  `json:"total_distance_km"`
	TotalDurationSeconds int      `json:"total_duration_seconds"`
	TotalElevationGainM  float64  `json:"total_elevation_gain_m"`
	RidesCount           int      `json:"rides_count"`
	AvgSpeedKmh          *float64 `json:"avg_speed_kmh"`
}

type WeeklyBucket struct {
	IsoYear         int    `json:"iso_year"`
	IsoWeek         int    `json:"iso_week"`
	WeekStartMonday string `json:"week_start_monday"`
	Summary
}

type DailyBucket struct {
	Day string `json:"day"`
	Summary
}

type HeartRateParams struct {
	HrMax  *int
	HrRest *int
}

type OvertrainingParams struct {
	// Start is inclusive, End exclusive.
	Start     time.Time
	End       time.Time
	HeartRate HeartRateParams
	CtlDays   int
	AtlDays   int
}

type Overtraining struct {
	Tsb   float64   `json:"tsb"`
	Acwr  *float64  `json:"acwr"`
	Risk  RiskLevel `json:"risk"`
	Flags []string  `json:"flags"`
}

type WorkloadItem struct {
	ID           *uuid.UUID `json:"id"`
	StartedAt    time.Time  `json:"started_at"`
	DistanceKm   float64    `json:"distance_km"`
	SpeedKmh     *float64   `json:"speed_kmh"`
	ClimbDensity float64    `json:"climb_density"`
	Score        float64    `json:"score"`
}

type Workload struct {
	Scores []WorkloadItem `json:"scores"`
	Avg7d  *float64       `json:"avg7d"`
	Avg28d *float64       `json:"avg28d"`
}

type Vo2maxTrend struct {
	RollingPR   *float64 `json:"rolling_pr"`
	SlopePer30d *float64 `json:"slope_per_30d"`
}

type ClimbRow struct {
	ID              *uuid.UUID `json:"id"`
	StartedAt       time.Time  `json:"started_at"`
	VamMPerH        float64    `json:"vam_m_per_h"`
	ClimbPerKm      float64    `json:"climb_per_km"`
	ElevationGainM  float64    `json:"elevation_gain_m"`
	DistanceKm      float64    `json:"distance_km"`
	DurationSeconds int        `json:"duration_seconds"`
}

type Climb struct {
	BestVam          []ClimbRow `json:"best_vam"`
	BestClimbDensity []ClimbRow `json:"best_climb_density"`
}

type OrderBy string

const (
	OrderByDistance  OrderBy = "distance"
	OrderByDuration  OrderBy = "duration"
	OrderByElevation OrderBy = "elevation"
	OrderBySpeed     OrderBy = "speed"
)

func ParseOrderBy(value string) (OrderBy, error) {
	switch OrderBy(value) {
	case "":
		return OrderByDistance, nil
	case OrderByDistance, OrderByDuration, OrderByElevation, OrderBySpeed:
		return OrderBy(value), nil
	default:
		return "", fmt.Errorf("%w: %s", ErrInvalidOrderBy, value)
	}
}

type Ride struct {
	ID              *uuid.UUID `json:"id"`
	StartedAt       time.Time  `json:"started_at"`
	EndedAt         time.Time  `json:"ended_at"`
	DistanceKm      float64    `json:"distance_km"`
	DurationSeconds int        `json:"duration_seconds"`
	ElevationGainM  float64    `json:"elevation_gain_m"`
	SpeedKmh        *float64   `json:"speed_kmh"`
}

type totals struct {
	distanceKm      float64
	durationSeconds int
	elevationGainM  float64
	rides           int
}

func (t *totals) add(a activities.Activity) {
	t.distanceKm += a.DistanceKm
	t.durationSeconds += a.DurationSeconds
	t.elevationGainM += a.ElevationGain()
	t.rides++
}

func (t totals) summary() Summary {
	s := Summary{
		TotalDistanceKm:      pkg.Round(t.distanceKm, 6),
		TotalDurationSeconds: t.durationSeconds,
		TotalElevationGainM:  pkg.Round(t.elevationGainM, 6),
		RidesCount:           t.rides,
	}
	if t.durationSeconds > 0 {
		speed := pkg.Round(t.distanceKm/(float64(t.durationSeconds)/3600.0), 6)
		s.AvgSpeedKmh = &speed
	}
	return s
}

func Summarize(acts []activities.Activity) Summary {
	var t totals
	for _, a := range acts {
		t.add(a)
	}
	return t.summary()
}

// WeeklyRollup buckets activities by ISO week of their UTC start, ordered by the week's Monday.
func WeeklyRollup(acts []activities.Activity) []WeeklyBucket {
	type weekAgg struct {
		year, week int
		monday     string
		totals     totals
	}

	byWeek := make(map[string]*weekAgg)
	for _, a := range acts {
		year, week, monday := a.ISOWeek()
		key := fmt.Sprintf("%d-W%02d", year, week)
		agg, ok := byWeek[key]
		if !ok {
			agg = &weekAgg{year: year, week: week, monday: monday}
			byWeek[key] = agg
		}
		agg.totals.add(a)
	}

	weeks := make([]WeeklyBucket, 0, len(byWeek))
	for _, agg := range byWeek {
		weeks = append(weeks, WeeklyBucket{
			IsoYear:         agg.year,
			IsoWeek:         agg.week,
			WeekStartMonday: agg.monday,
			Summary:         agg.totals.summary(),
		})
	}
	sort.Slice(weeks, func(i, j int) bool {
		return weeks[i].WeekStartMonday < weeks[j].WeekStartMonday
	})

	return weeks
}

// DailyRollup buckets activities by UTC start day, ascending.
func DailyRollup(acts []activities.Activity) []DailyBucket {
	byDay := make(map[string]*totals)
	for _, a := range acts {
		day := a.DayKey()
		t, ok := byDay[day]
		if !ok {
			t = &totals{}
			byDay[day] = t
		}
		t.add(a)
	}

	days := make([]DailyBucket, 0, len(byDay))
	for day, t := range byDay {
		days = append(days, DailyBucket{Day: day, Summary: t.summary()})
	}
	sort.Slice(days, func(i, j int) bool {
		return days[i].Day < days[j].Day
	})

	return days
}

// ActivityTrimp is the training impulse of one session. With heart rate
// parameters and an average heart rate it is the Banister exponential TRIMP,
// otherwise a speed based proxy.
func ActivityTrimp(a activities.Activity, hr HeartRateParams) float64 {
	durationMin := float64(a.DurationSeconds) / 60.0

	if hr.HrMax != nil && hr.HrRest != nil && a.AvgHrBpm != nil {
		hrReserve := math.Max(1, float64(*hr.HrMax-*hr.HrRest))
		delta := clamp(float64(*a.AvgHrBpm-*hr.HrRest)/hrReserve, 0, 1)
		return durationMin * 0.64 * math.Exp(1.92*delta) * delta
	}

	speed := 0.0
	if s := a.SpeedKmh(); s != nil {
		speed = *s
	}
	intensity := math.Min(1.5, speed/30.0)
	return durationMin * (0.5 + intensity)
}

// DailyTrimp sums session TRIMP per UTC start day.
func DailyTrimp(acts []activities.Activity, hr HeartRateParams) map[string]float64 {
	dayToTrimp := make(map[string]float64)
	for _, a := range acts {
		dayToTrimp[a.DayKey()] += ActivityTrimp(a, hr)
	}
	return dayToTrimp
}

// DailySeries materializes one TRIMP value per day in [start, end), gaps filled with 0.
func DailySeries(dayToTrimp map[string]float64, start, end time.Time) []float64 {
	start, end = start.UTC(), end.UTC()
	var series []float64
	for d := start; d.Before(end); d = d.AddDate(0, 0, 1) {
		series = append(series, dayToTrimp[d.Format(pkg.DateLayout)])
	}
	return series
}

// EMA runs an exponential moving average with time constant n days, seeded at 0,
// and returns the value after the last day.
func EMA(series []float64, n int) float64 {
	alpha := 1.0 - math.Exp(-1.0/float64(n))
	ema := 0.0
	for _, v := range series {
		ema += alpha * (v - ema)
	}
	return ema
}

func tailMean(series []float64, days int) float64 {
	n := min(days, len(series))
	if n == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range series[len(series)-n:] {
		sum += v
	}
	return sum / float64(n)
}

// ACWR is the acute (7 day) over chronic (28 day) mean load; nil if the chronic mean is not positive.
func ACWR(series []float64) *float64 {
	chronic := tailMean(series, chronicWindowDays)
	if chronic <= 0 {
		return nil
	}
	acwr := tailMean(series, acuteWindowDays) / chronic
	return &acwr
}

func ClassifyRisk(tsb float64, acwr *float64) RiskLevel {
	switch {
	case tsb < -20 || (acwr != nil && *acwr > 1.5):
		return RiskHigh
	case tsb < -10 || (acwr != nil && *acwr > 1.3):
		return RiskMedium
	default:
		return RiskLow
	}
}

func OvertrainingSnapshot(acts []activities.Activity, params OvertrainingParams) Overtraining {
	if params.CtlDays <= 0 {
		params.CtlDays = DefaultCtlDays
	}
	if params.AtlDays <= 0 {
		params.AtlDays = DefaultAtlDays
	}

	series := DailySeries(DailyTrimp(acts, params.HeartRate), params.Start, params.End)

	tsb := 0.0
	if len(series) > 0 {
		tsb = EMA(series, params.CtlDays) - EMA(series, params.AtlDays)
	}
	acwr := ACWR(series)

	flags := []string{}
	if tsb < -10 {
		flags = append(flags, "tsb")
	}
	if acwr != nil && *acwr > 1.3 {
		flags = append(flags, "acwr")
	}

	return Overtraining{
		Tsb:   pkg.Round(tsb, 2),
		Acwr:  pkg.RoundPtr(acwr, 2),
		Risk:  ClassifyRisk(tsb, acwr),
		Flags: flags,
	}
}

type features struct {
	distance float64
	speed    float64
	density  float64
}

func featuresOf(a activities.Activity) features {
	speed := 0.0
	if s := a.SpeedKmh(); s != nil {
		speed = *s
	}
	return features{
		distance: a.DistanceKm,
		speed:    speed,
		density:  a.ClimbDensity(),
	}
}

// meanStd uses the population variance; near-zero variance and empty input give std 1.
func meanStd(values []float64) (float64, float64) {
	if len(values) == 0 {
		return 0, 1
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(len(values))

	variance := 0.0
	for _, v := range values {
		variance += (v - mean) * (v - mean)
	}
	variance /= float64(len(values))

	if variance <= 1e-9 {
		return mean, 1
	}
	return mean, math.Sqrt(variance)
}

// WorkloadScores scores each activity against the baseline feature distribution,
// 5 being a baseline-typical ride. end is the exclusive end of the query window.
func WorkloadScores(acts, baseline []activities.Activity, end time.Time) Workload {
	var dists, speeds, densities []float64
	for _, a := range baseline {
		f := featuresOf(a)
		dists = append(dists, f.distance)
		speeds = append(speeds, f.speed)
		densities = append(densities, f.density)
	}
	meanDist, stdDist := meanStd(dists)
	meanSpeed, stdSpeed := meanStd(speeds)
	meanDensity, stdDensity := meanStd(densities)

	items := make([]WorkloadItem, 0, len(acts))
	for _, a := range acts {
		f := featuresOf(a)
		z := 0.4*((f.distance-meanDist)/stdDist) +
			0.4*((f.speed-meanSpeed)/stdSpeed) +
			0.2*((f.density-meanDensity)/stdDensity)

		items = append(items, WorkloadItem{
			ID:           a.ID,
			StartedAt:    a.StartedAt,
			DistanceKm:   a.DistanceKm,
			SpeedKmh:     a.SpeedKmh(),
			ClimbDensity: f.density,
			Score:        pkg.Round(5+clamp(z, -4, 4), 2),
		})
	}

	avgSince := func(days int) *float64 {
		cutoff := end.AddDate(0, 0, -days)
		sum, n := 0.0, 0
		for _, it := range items {
			if !it.StartedAt.Before(cutoff) {
				sum += it.Score
				n++
			}
		}
		if n == 0 {
			return nil
		}
		avg := pkg.Round(sum/float64(n), 2)
		return &avg
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].StartedAt.After(items[j].StartedAt)
	})

	return Workload{
		Scores: items,
		Avg7d:  avgSince(7),
		Avg28d: avgSince(28),
	}
}

func Vo2maxTrendOf(acts []activities.Activity) Vo2maxTrend {
	type point struct {
		at    time.Time
		value float64
	}

	var points []point
	for _, a := range acts {
		if a.Vo2max != nil {
			points = append(points, point{at: a.StartedAt, value: *a.Vo2max})
		}
	}
	if len(points) == 0 {
		return Vo2maxTrend{}
	}

	sort.SliceStable(points, func(i, j int) bool {
		return points[i].at.Before(points[j].at)
	})

	pr := points[0].value
	for _, p := range points[1:] {
		pr = math.Max(pr, p.value)
	}
	trend := Vo2maxTrend{RollingPR: pkg.RoundPtr(&pr, 2)}

	if len(points) < 2 {
		return trend
	}

	t0 := points[0].at
	var sx, sy, sxx, sxy float64
	for _, p := range points {
		// whole days elapsed, like a timedelta's day component
		x := math.Floor(p.at.Sub(t0).Hours() / 24)
		sx += x
		sy += p.value
		sxx += x * x
		sxy += x * p.value
	}

	n := float64(len(points))
	denom := n*sxx - sx*sx
	if math.Abs(denom) <= 1e-9 {
		return trend
	}

	slopePerDay := (n*sxy - sx*sy) / denom
	slope := pkg.Round(slopePerDay*30, 3)
	trend.SlopePer30d = &slope

	return trend
}

func ClimbMetrics(acts []activities.Activity, limit int) Climb {
	rows := make([]ClimbRow, 0, len(acts))
	for _, a := range acts {
		durationH := float64(a.DurationSeconds) / 3600.0
		elevation := a.ElevationGain()

		vam := 0.0
		if durationH > 0 {
			vam = elevation / durationH
		}

		rows = append(rows, ClimbRow{
			ID:              a.ID,
			StartedAt:       a.StartedAt,
			VamMPerH:        pkg.Round(vam, 1),
			ClimbPerKm:      pkg.Round(a.ClimbDensity(), 3),
			ElevationGainM:  elevation,
			DistanceKm:      a.DistanceKm,
			DurationSeconds: a.DurationSeconds,
		})
	}

	bestVam := make([]ClimbRow, len(rows))
	copy(bestVam, rows)
	sort.SliceStable(bestVam, func(i, j int) bool {
		return bestVam[i].VamMPerH > bestVam[j].VamMPerH
	})

	bestDensity := make([]ClimbRow, len(rows))
	copy(bestDensity, rows)
	sort.SliceStable(bestDensity, func(i, j int) bool {
		return bestDensity[i].ClimbPerKm > bestDensity[j].ClimbPerKm
	})

	return Climb{
		BestVam:          topN(bestVam, limit),
		BestClimbDensity: topN(bestDensity, limit),
	}
}

// TopRides ranks activities descending by the given metric. Missing speeds rank last.
func TopRides(acts []activities.Activity, orderBy OrderBy, limit int) ([]Ride, error) {
	var metric func(Ride) float64
	switch orderBy {
	case OrderByDistance, "":
		metric = func(r Ride) float64 { return r.DistanceKm }
	case OrderByDuration:
		metric = func(r Ride) float64 { return float64(r.DurationSeconds) }
	case OrderByElevation:
		metric = func(r Ride) float64 { return r.ElevationGainM }
	case OrderBySpeed:
		metric = func(r Ride) float64 {
			if r.SpeedKmh == nil {
				return math.Inf(-1)
			}
			return *r.SpeedKmh
		}
	default:
		return nil, fmt.Errorf("%w: %s", ErrInvalidOrderBy, orderBy)
	}

	rides := make([]Ride, 0, len(acts))
	for _, a := range acts {
		rides = append(rides, Ride{
			ID:              a.ID,
			StartedAt:       a.StartedAt,
			EndedAt:         a.EndedAt,
			DistanceKm:      a.DistanceKm,
			DurationSeconds: a.DurationSeconds,
			ElevationGainM:  a.ElevationGain(),
			SpeedKmh:        pkg.RoundPtr(a.SpeedKmh(), 6),
		})
	}

	sort.SliceStable(rides, func(i, j int) bool {
		return metric(rides[i]) > metric(rides[j])
	})

	return topN(rides, limit), nil
}

func topN[T any](items []T, limit int) []T {
	if limit <= 0 {
		limit = DefaultRankingLimit
	}
	if len(items) > limit {
		return items[:limit]
	}
	return items
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
