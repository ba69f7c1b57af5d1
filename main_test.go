package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/chatwidget-api/tests/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMain(m *testing.M) {
	if !testutil.EnsureTestEnvironment() {
		os.Stderr.WriteString("SAFETY CHECK FAILED: tests must run with GO_ENV=test\n")
		os.Exit(1)
	}
	os.Exit(m.Run())
}

// TestHealthCheck is a unit test for the healthCheck handler function
func TestHealthCheck(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	healthCheck(c)

	assert.Equal(t, http.StatusOK, w.Code, "Expected status code 200")

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err, "Response should be valid JSON")
	assert.Equal(t, true, response["success"], "Expected success to be true")
	assert.Equal(t, healthMessage, response["message"], "Expected correct message")
}

// TestHealthCheckResponseFormat tests the exact JSON format
func TestHealthCheckResponseFormat(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	healthCheck(c)

	assert.Equal(t, "application/json; charset=utf-8", w.Header().Get("Content-Type"))

	var response map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &response)
	assert.Len(t, response, 2, "Response should have exactly 2 fields")
	assert.Contains(t, response, "success")
	assert.Contains(t, response, "message")
}

func TestAssetPrefix(t *testing.T) {
	assert.Equal(t, "/iframes", assetPrefix("/iframes"))
	assert.Equal(t, "/iframes", assetPrefix("iframes/"))
	assert.Equal(t, "/static/widgets", assetPrefix("/static/widgets/"))
	assert.Equal(t, "/iframes", assetPrefix(""))
	assert.Equal(t, "/iframes", assetPrefix("/"))
}
