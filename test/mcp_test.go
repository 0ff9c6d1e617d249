package test

import (
	"context"
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type toolSecretTransport struct {
	secret string
	next   http.RoundTripper
}

func (t *toolSecretTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.Header.Set("x-tool-secret", t.secret)
	return t.next.RoundTrip(req)
}

func (s *IntegrationTestSuite) TestMcpOverHttp() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	t := s.T()

	client := mcp.NewClient(&mcp.Implementation{Name: "integration-test", Version: "0.0.1"}, nil)
	session, err := client.Connect(ctx, &mcp.StreamableClientTransport{
		Endpoint: serverEndpoint + "/mcp",
		HTTPClient: &http.Client{
			Transport: &toolSecretTransport{secret: testToolSecret, next: http.DefaultTransport},
		},
	}, nil)
	require.NoError(t, err)
	defer func() {
		_ = session.Close()
	}()

	tools, err := session.ListTools(ctx, nil)
	require.NoError(t, err)
	var names []string
	for _, tool := range tools.Tools {
		names = append(names, tool.Name)
	}
	assert.ElementsMatch(t, []string{"agg_cycling_summary", "ts_cycling_daily", "wk_cycling_summary", "top_rides"}, names)

	res, err := session.CallTool(ctx, &mcp.CallToolParams{
		Name: "agg_cycling_summary",
		Arguments: map[string]any{
			"start_date_iso": "2020-01-01T00:00:00Z",
			"end_date_iso":   "2020-02-01T00:00:00Z",
		},
	})
	require.NoError(t, err)
	assert.False(t, res.IsError)
	require.Len(t, res.Content, 1)
	text, ok := res.Content[0].(*mcp.TextContent)
	require.True(t, ok)
	assert.Contains(t, text.Text, `"rides_count": 0`)
}
