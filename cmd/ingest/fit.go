package main

import (
	"errors"
	"fmt"
	"io"
	"math"
	"time"

	"github.com/2beens/cyclingcoach/internal/activities"

	"github.com/google/uuid"
	"github.com/tormoder/fit"
)

func parseFIT(r io.Reader, userID uuid.UUID) (activities.CreateActivityRequest, error) {
	decoded, err := fit.Decode(r)
	if err != nil {
		return activities.CreateActivityRequest{}, fmt.Errorf("decode fit: %w", err)
	}

	activity, err := decoded.Activity()
	if err != nil {
		return activities.CreateActivityRequest{}, fmt.Errorf("activity fit expected: %w", err)
	}
	if len(activity.Sessions) == 0 {
		return activities.CreateActivityRequest{}, errors.New("activity file has no session message")
	}

	return sessionToRequest(activity.Sessions[0], userID)
}

func sessionToRequest(session *fit.SessionMsg, userID uuid.UUID) (activities.CreateActivityRequest, error) {
	start := session.StartTime
	if start.IsZero() || fit.IsBaseTime(start) {
		return activities.CreateActivityRequest{}, errors.New("session has no start time")
	}

	timerSeconds := positive(session.GetTotalTimerTimeScaled())
	if timerSeconds == nil {
		timerSeconds = positive(session.GetTotalElapsedTimeScaled())
	}
	durationSeconds := 0
	if timerSeconds != nil {
		durationSeconds = int(math.Round(*timerSeconds))
	}

	end := session.Timestamp
	if end.IsZero() || fit.IsBaseTime(end) || end.Before(start) {
		end = start.Add(time.Duration(durationSeconds) * time.Second)
	}

	distanceKm := 0.0
	if meters := positive(session.GetTotalDistanceScaled()); meters != nil {
		distanceKm = *meters / 1000
	}

	req := activities.CreateActivityRequest{
		UserID:          userID.String(),
		StartTime:       start.UTC().Format(time.RFC3339),
		EndTime:         end.UTC().Format(time.RFC3339),
		DurationSeconds: &durationSeconds,
		DistanceKm:      &distanceKm,
	}

	speedMps := positive(session.GetEnhancedAvgSpeedScaled())
	if speedMps == nil {
		speedMps = positive(session.GetAvgSpeedScaled())
	}
	if speedMps != nil {
		kmh := *speedMps * 3.6
		req.AvgSpeedKmh = &kmh
	}

	if session.TotalAscent != math.MaxUint16 {
		ascent := float64(session.TotalAscent)
		req.ElevationGainM = &ascent
	}
	if session.TotalCalories != math.MaxUint16 {
		kcal := float64(session.TotalCalories)
		req.ActiveEnergyKcal = &kcal
	}
	if session.AvgHeartRate != math.MaxUint8 {
		hr := float64(session.AvgHeartRate)
		req.AvgHrBpm = &hr
	}
	if session.MaxHeartRate != math.MaxUint8 {
		hr := float64(session.MaxHeartRate)
		req.MaxHrBpm = &hr
	}

	return req, nil
}

func positive(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return nil
	}
	return &v
}
