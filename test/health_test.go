package test

import (
	"context"
	"net/http"

	"github.com/stretchr/testify/assert"
)

func (s *IntegrationTestSuite) TestHealth() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	for _, path := range []string{"/temp/health", "/temp/health/"} {
		status, body := s.doRequest(ctx, http.MethodGet, path, nil, nil)
		assert.Equal(s.T(), http.StatusOK, status, path)
		assert.JSONEq(s.T(), `{"info":"test check"}`, string(body), path)
	}
}
