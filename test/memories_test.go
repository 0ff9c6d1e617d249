package test

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2beens/cyclingcoach/internal/memories"
)

func (s *IntegrationTestSuite) TestMemories() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	t := s.T()

	status, body := s.doRequest(ctx, http.MethodPost, "/memories", map[string]any{
		"content": "  prefers long climbs on saturdays  ",
		"title":   "riding habits",
	}, nil)
	require.Equal(t, http.StatusOK, status, string(body))
	var first memories.IDResponse
	require.NoError(t, json.Unmarshal(body, &first))

	// wrapped body, as sent by the voice agent webhook
	status, body = s.doRequest(ctx, http.MethodPost, "/memories", map[string]any{
		"body": map[string]any{"content": "eats a gel every 40 minutes"},
	}, nil)
	require.Equal(t, http.StatusOK, status, string(body))
	var second memories.IDResponse
	require.NoError(t, json.Unmarshal(body, &second))

	status, _ = s.doRequest(ctx, http.MethodPost, "/memories", map[string]any{"content": "   "}, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, status)

	status, body = s.doRequest(ctx, http.MethodGet, "/memories?userId="+memories.FixedUserID.String(), nil, nil)
	require.Equal(t, http.StatusOK, status, string(body))
	var listed memories.ListResponse
	require.NoError(t, json.Unmarshal(body, &listed))
	require.Len(t, listed.Memories, 2)
	// newest first
	assert.Equal(t, second.ID, listed.Memories[0].ID)
	assert.Equal(t, "prefers long climbs on saturdays", listed.Memories[1].Content)

	status, _ = s.doRequest(ctx, http.MethodDelete, "/memories?id="+first.ID.String()+"&userId="+memories.FixedUserID.String(), nil, nil)
	assert.Equal(t, http.StatusOK, status)

	status, body = s.doRequest(ctx, http.MethodDelete, "/memories?id="+first.ID.String()+"&userId="+memories.FixedUserID.String(), nil, nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Contains(t, string(body), "Memory not found")

	status, _ = s.doRequest(ctx, http.MethodDelete, "/memories?id=nope&userId="+uuid.NewString(), nil, nil)
	assert.Equal(t, http.StatusBadRequest, status)
}
