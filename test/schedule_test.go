package test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2beens/cyclingcoach/internal/schedule"
)

func (s *IntegrationTestSuite) TestScheduleIntervals() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	t := s.T()

	userID := uuid.New()
	title := "hill repeats"
	status, body := s.doRequest(ctx, http.MethodPost, "/schedule/intervals", schedule.CreateIntervalRequest{
		UserID:   userID.String(),
		Type:     "Cycling",
		StartIso: "2025-04-05T08:07:00Z",
		EndIso:   "2025-04-05T10:00:00+00:00",
		Title:    &title,
	}, nil)
	require.Equal(t, http.StatusOK, status, string(body))
	var created schedule.IDResponse
	require.NoError(t, json.Unmarshal(body, &created))

	status, body = s.doRequest(ctx, http.MethodPost, "/schedule/intervals", schedule.CreateIntervalRequest{
		UserID:   userID.String(),
		Type:     "Work",
		StartIso: "2025-04-07T09:00:00Z",
		EndIso:   "2025-04-07T17:00:00Z",
	}, nil)
	require.Equal(t, http.StatusOK, status, string(body))

	listPath := fmt.Sprintf("/schedule/intervals?startDateIso=2025-04-01T00:00:00Z&endDateIso=2025-04-30T00:00:00Z&userId=%s", userID)
	status, body = s.doRequest(ctx, http.MethodGet, listPath, nil, nil)
	require.Equal(t, http.StatusOK, status, string(body))
	var listed schedule.ListResponse
	require.NoError(t, json.Unmarshal(body, &listed))
	require.Len(t, listed.Intervals, 2)
	// stored on the quarter hour grid
	assert.True(t, listed.Intervals[0].StartAt.Equal(time.Date(2025, 4, 5, 8, 0, 0, 0, time.UTC)))

	status, body = s.doRequest(ctx, http.MethodGet, listPath+"&types=Work", nil, nil)
	require.Equal(t, http.StatusOK, status, string(body))
	require.NoError(t, json.Unmarshal(body, &listed))
	require.Len(t, listed.Intervals, 1)
	assert.Equal(t, schedule.TypeWork, listed.Intervals[0].Type)

	status, body = s.doRequest(ctx, http.MethodGet, listPath+"&types=Gym", nil, nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, string(body), "Cycling, Work, Other")

	newStart := "2025-04-05T09:08:00Z"
	noSnap := false
	status, body = s.doRequest(ctx, http.MethodPatch, "/schedule/intervals", schedule.UpdateIntervalRequest{
		ID:          created.ID.String(),
		NewStartIso: &newStart,
		Snap:        &noSnap,
	}, nil)
	require.Equal(t, http.StatusOK, status, string(body))
	var updated schedule.IntervalResponse
	require.NoError(t, json.Unmarshal(body, &updated))
	require.NotNil(t, updated.Interval)
	assert.True(t, updated.Interval.StartAt.Equal(time.Date(2025, 4, 5, 9, 8, 0, 0, time.UTC)))
	require.NotNil(t, updated.Interval.Title)
	assert.Equal(t, title, *updated.Interval.Title)

	status, _ = s.doRequest(ctx, http.MethodPatch, "/schedule/intervals", schedule.UpdateIntervalRequest{
		ID:          uuid.NewString(),
		NewStartIso: &newStart,
	}, nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = s.doRequest(ctx, http.MethodDelete, "/schedule/intervals?id="+created.ID.String(), nil, nil)
	assert.Equal(t, http.StatusOK, status)
	status, _ = s.doRequest(ctx, http.MethodDelete, "/schedule/intervals?id="+created.ID.String(), nil, nil)
	assert.Equal(t, http.StatusNotFound, status)
}
