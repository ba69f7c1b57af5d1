package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/kendall-kelly/chatwidget-api/config"
	"github.com/kendall-kelly/chatwidget-api/generator"
	"github.com/kendall-kelly/chatwidget-api/models"
	"github.com/kendall-kelly/chatwidget-api/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestServerStartup verifies the full router can be built
func TestServerStartup(t *testing.T) {
	router, _ := newTestRouter(t)
	assert.NotNil(t, router, "Router should be initialized")
}

// TestWidgetLifecycleAcceptance drives a real HTTP server the way an
// operator and a customer's browser would.
func TestWidgetLifecycleAcceptance(t *testing.T) {
	router, _ := newTestRouter(t)
	testutil.SeedOrder(t, config.GetDB(), "ORD-1001",
		models.ChatbotConfig{HeaderTitle: "Ask Acme", WelcomeMessage: "Hello!", Position: "bottom-left"},
		models.CompanyInfo{Name: "Acme", Email: "help@acme.test"})

	server := httptest.NewServer(router)
	defer server.Close()
	client := &http.Client{Timeout: 30 * time.Second}

	// Operator triggers generation
	req, err := http.NewRequest(http.MethodPost, server.URL+"/api/v1/orders/ORD-1001/iframe", nil)
	require.NoError(t, err)
	req.Header.Set(testutil.ScopesHeader, "write:iframes read:iframes")
	resp, err := client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var generated struct {
		Success bool `json:"success"`
		Data    struct {
			Status     string `json:"status"`
			PublicPath string `json:"public_path"`
			IframeURL  string `json:"iframe_url"`
			EmbedCode  string `json:"embed_code"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&generated))
	assert.True(t, generated.Success)
	assert.Equal(t, models.BuildStatusReady, generated.Data.Status)
	assert.Contains(t, generated.Data.EmbedCode, "<iframe src=")

	// Browser loads the widget and its assets
	page := fetch(t, client, server.URL+generated.Data.PublicPath)
	assert.Contains(t, page, "Ask Acme")
	assert.Contains(t, page, "chat-widget--bottom-left")

	id := generator.NewIdentifier("ORD-1001")
	assert.Contains(t, fetch(t, client, server.URL+"/iframes/"+id+".css"), "--cw-primary")
	assert.Contains(t, fetch(t, client, server.URL+"/iframes/"+id+".js"), id)

	// Regeneration serves identical bytes
	resp2, err := client.Do(req.Clone(req.Context()))
	require.NoError(t, err)
	resp2.Body.Close()
	require.Equal(t, http.StatusOK, resp2.StatusCode)
	assert.Equal(t, page, fetch(t, client, server.URL+generated.Data.PublicPath))
}

func fetch(t *testing.T, client *http.Client, url string) string {
	t.Helper()
	resp, err := client.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode, url)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(body)
}

// TestHealthEndpointAvailability tests that the health endpoint is available immediately
func TestHealthEndpointAvailability(t *testing.T) {
	router, _ := newTestRouter(t)

	for i := 0; i < 5; i++ {
		req, _ := http.NewRequest("GET", "/api/v1/health", nil)
		recorder := &testResponseWriter{header: make(http.Header)}
		router.ServeHTTP(recorder, req)

		assert.Equal(t, http.StatusOK, recorder.statusCode,
			fmt.Sprintf("Request %d should succeed", i+1))

		var response map[string]interface{}
		json.Unmarshal(recorder.body, &response)
		assert.Equal(t, true, response["success"],
			fmt.Sprintf("Request %d should have success=true", i+1))
	}
}

// TestHealthEndpointResponseTime tests that the endpoint responds quickly
func TestHealthEndpointResponseTime(t *testing.T) {
	router, _ := newTestRouter(t)

	req, _ := http.NewRequest("GET", "/api/v1/health", nil)
	recorder := &testResponseWriter{header: make(http.Header)}

	start := time.Now()
	router.ServeHTTP(recorder, req)
	duration := time.Since(start)

	assert.Less(t, duration, 100*time.Millisecond,
		"Health endpoint should respond in less than 100ms")
	assert.True(t, strings.HasPrefix(recorder.header.Get("Content-Type"), "application/json"))
}

// testResponseWriter is a helper for acceptance testing
type testResponseWriter struct {
	header     http.Header
	body       []byte
	statusCode int
}

func (w *testResponseWriter) Header() http.Header {
	return w.header
}

func (w *testResponseWriter) Write(b []byte) (int, error) {
	if w.statusCode == 0 {
		w.statusCode = http.StatusOK
	}
	w.body = append(w.body, b...)
	return len(b), nil
}

func (w *testResponseWriter) WriteHeader(statusCode int) {
	w.statusCode = statusCode
}
