package commands

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookstore-api/internal/shared/middleware"
	"bookstore-api/internal/shared/response"
	"bookstore-api/pkg/client"
)

func fakeAPI(t *testing.T, origins []string, healthy bool) *client.Client {
	t.Helper()
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(middleware.CORS(origins))
	r.GET("/health", func(c *gin.Context) {
		if !healthy {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "UNAVAILABLE"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "OK", "uptime": 42.0, "environment": "production"})
	})
	r.GET("/api/books", func(c *gin.Context) {
		response.SuccessWithPagination(c, []gin.H{}, response.NewPagination(1, 1, 7))
	})

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return client.New(srv.URL)
}

func TestRunVerifyPasses(t *testing.T) {
	results := runVerify(context.Background(), fakeAPI(t, []string{"https://shop.example"}, true), "https://shop.example")

	require.Len(t, results, 3)
	for _, r := range results {
		assert.True(t, r.OK, "%s: %s", r.Name, r.Detail)
	}
	assert.Equal(t, "7 book(s) in catalogue", results[1].Detail)
	assert.Zero(t, report(results))
}

func TestRunVerifyReportsFailures(t *testing.T) {
	results := runVerify(context.Background(), fakeAPI(t, []string{"https://other.example"}, false), "https://shop.example")

	require.Len(t, results, 3)
	assert.False(t, results[0].OK)
	assert.True(t, results[1].OK)
	assert.False(t, results[2].OK)
	assert.Equal(t, 2, report(results))
}
