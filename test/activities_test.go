package test

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2beens/cyclingcoach/internal/activities"
	"github.com/2beens/cyclingcoach/internal/stats"
)

type fakeRide struct {
	start      time.Time
	duration   int
	distanceKm float64
	elevationM float64
	avgHr      float64
}

func newFakeRides(faker *gofakeit.Faker, firstDay time.Time, n int) []fakeRide {
	rides := make([]fakeRide, n)
	for i := range rides {
		rides[i] = fakeRide{
			start:      firstDay.AddDate(0, 0, i).Add(time.Duration(faker.Number(6, 18)) * time.Hour),
			duration:   faker.Number(1800, 3*3600),
			distanceKm: math.Round(faker.Float64Range(10, 90)*10) / 10,
			elevationM: float64(faker.Number(0, 1500)),
			avgHr:      faker.Float64Range(110, 165),
		}
	}
	return rides
}

func (s *IntegrationTestSuite) createRide(ctx context.Context, userID uuid.UUID, ride fakeRide) uuid.UUID {
	t := s.T()

	elevation := ride.elevationM
	avgHr := ride.avgHr
	req := activities.CreateActivityRequest{
		UserID:          userID.String(),
		StartTime:       ride.start.Format(time.RFC3339),
		EndTime:         ride.start.Add(time.Duration(ride.duration) * time.Second).Format(time.RFC3339),
		DurationSeconds: &ride.duration,
		DistanceKm:      &ride.distanceKm,
		ElevationGainM:  &elevation,
		AvgHrBpm:        &avgHr,
	}

	status, body := s.doRequest(ctx, http.MethodPost, "/api/tools/create_cycling_activity", req, s.toolHeaders())
	require.Equal(t, http.StatusCreated, status, string(body))

	var created activities.CreateActivityResponse
	require.NoError(t, json.Unmarshal(body, &created))
	require.NotEqual(t, uuid.Nil, created.ID)
	return created.ID
}

func (s *IntegrationTestSuite) TestActivitiesAndStats() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	t := s.T()

	faker := gofakeit.New(42)
	userID := uuid.New()
	firstDay := time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC) // monday
	rides := newFakeRides(faker, firstDay, 10)

	var totalKm float64
	var totalSeconds int
	for _, ride := range rides {
		s.createRide(ctx, userID, ride)
		totalKm += ride.distanceKm
		totalSeconds += ride.duration
	}
	// another user's ride must not leak into the window
	s.createRide(ctx, uuid.New(), rides[0])

	// tool route needs the secret
	status, _ := s.doRequest(ctx, http.MethodPost, "/api/tools/load_cycling_activities", map[string]string{
		"start_date_iso": "2025-03-01T00:00:00Z",
		"end_date_iso":   "2025-04-01T00:00:00Z",
	}, nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	status, body := s.doRequest(ctx, http.MethodPost, "/api/tools/load_cycling_activities", map[string]string{
		"start_date_iso": "2025-03-01T00:00:00Z",
		"end_date_iso":   "2025-04-01T00:00:00Z",
		"user_id":        userID.String(),
	}, s.toolHeaders())
	require.Equal(t, http.StatusOK, status, string(body))

	var loaded activities.LoadActivitiesResponse
	require.NoError(t, json.Unmarshal(body, &loaded))
	require.Len(t, loaded.Activities, len(rides))
	for _, a := range loaded.Activities {
		require.NotNil(t, a.AvgHrBpm)
		assert.Equal(t, userID, *a.UserID)
	}

	window := fmt.Sprintf("startDateIso=2025-03-01T00:00:00Z&endDateIso=2025-04-01T00:00:00Z&userId=%s", userID)
	status, body = s.doRequest(ctx, http.MethodGet, "/stats/summary?"+window, nil, nil)
	require.Equal(t, http.StatusOK, status, string(body))

	var summary stats.Summary
	require.NoError(t, json.Unmarshal(body, &summary))
	assert.Equal(t, len(rides), summary.RidesCount)
	assert.Equal(t, totalSeconds, summary.TotalDurationSeconds)
	assert.InDelta(t, totalKm, summary.TotalDistanceKm, 0.01)

	status, body = s.doRequest(ctx, http.MethodGet, fmt.Sprintf("/stats/weekly?startDate=2025-03-01&endDate=2025-04-01&userId=%s", userID), nil, nil)
	require.Equal(t, http.StatusOK, status, string(body))

	var weekly stats.WeeklyResponse
	require.NoError(t, json.Unmarshal(body, &weekly))
	require.Len(t, weekly.Weeks, 2)
	assert.Equal(t, "2025-03-03", weekly.Weeks[0].WeekStartMonday)
	assert.Equal(t, 7, weekly.Weeks[0].RidesCount)
	assert.Equal(t, 3, weekly.Weeks[1].RidesCount)

	status, body = s.doRequest(ctx, http.MethodGet, "/stats/top_rides?"+window+"&orderBy=distance&limit=3", nil, nil)
	require.Equal(t, http.StatusOK, status, string(body))

	var top stats.TopRidesResponse
	require.NoError(t, json.Unmarshal(body, &top))
	require.Len(t, top.Rides, 3)

	status, _ = s.doRequest(ctx, http.MethodGet, "/stats/top_rides?"+window+"&orderBy=watts", nil, nil)
	assert.Equal(t, http.StatusBadRequest, status)

	status, body = s.doRequest(ctx, http.MethodGet, "/stats/overtraining?"+window+"&hrMax=190&hrRest=50", nil, nil)
	require.Equal(t, http.StatusOK, status, string(body))
	assert.Contains(t, string(body), `"risk"`)
}

func (s *IntegrationTestSuite) TestCreateActivity_Validation() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	status, _ := s.doRequest(ctx, http.MethodPost, "/api/tools/create_cycling_activity", map[string]any{
		"user_id":          uuid.NewString(),
		"start_time":       "2025-03-01T08:00:00Z",
		"end_time":         "2025-03-01T09:00:00Z",
		"duration_seconds": 3600,
		"distance_km":      -1,
	}, s.toolHeaders())
	assert.Equal(s.T(), http.StatusUnprocessableEntity, status)
}
