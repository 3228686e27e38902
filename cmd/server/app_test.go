package main

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/relia-oss/relia-api/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{Port: 8080, LogLevel: "info"},
		Task: config.TaskConfig{
			Workers:                2,
			CleanupIntervalMinutes: 60,
			MaxAgeHours:            24,
		},
	}
}

func testApplication(t *testing.T, cfg *config.Config) *application {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	app, err := newApplication(context.Background(), cfg, logger)
	require.NoError(t, err)
	t.Cleanup(app.cleanup)
	return app
}

func TestNewApplication_DatabaseDisabled(t *testing.T) {
	app := testApplication(t, testConfig())

	assert.Nil(t, app.db, "no database connection should be opened when disabled")
	assert.NotNil(t, app.recorder, "telemetry should fall back to the log recorder")
	assert.NotNil(t, app.taskQueue)
	assert.NotNil(t, app.janitor)
	assert.Nil(t, app.jwtService, "auth should be disabled without a secret")
}

func TestNewApplication_AuthEnabled(t *testing.T) {
	cfg := testConfig()
	cfg.Auth.JWTSecret = "thisisasecretkeythatis32charslong!!"

	app := testApplication(t, cfg)
	assert.NotNil(t, app.jwtService)
}

func TestHealthEndpoint(t *testing.T) {
	app := testApplication(t, testConfig())

	srv := httptest.NewServer(app.setupRouter())
	defer srv.Close()

	app.taskQueue.Create(context.Background(), "lint", "user-1")

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Status string `json:"status"`
		Tasks  struct {
			Pending int `json:"pending"`
			Running int `json:"running"`
			Total   int `json:"total"`
		} `json:"tasks"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "ok", body.Status)
	assert.Equal(t, 1, body.Tasks.Pending)
	assert.Equal(t, 1, body.Tasks.Total)
}

func TestTaskRoutesRequireAuthWhenEnabled(t *testing.T) {
	cfg := testConfig()
	cfg.Auth.JWTSecret = "thisisasecretkeythatis32charslong!!"
	app := testApplication(t, cfg)

	srv := httptest.NewServer(app.setupRouter())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/tasks")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
