package server

import (
	"context"
	"net/http"
	"net/http/httptest"

	"github.com/mesh-intelligence/kroeg/pkg/types"
)

// Simulate runs h for req under a pre-built Context and returns the
// recorded response. No socket is involved.
func Simulate(ctx context.Context, c *types.Context, h http.Handler, req *http.Request) *http.Response {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req.WithContext(types.WithContext(ctx, c)))
	return rec.Result()
}
