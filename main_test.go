package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"f1databridge/pkg/caster"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const racesFixture = `{"MRData":{"series":"f1","limit":"100","offset":"0","total":"1","RaceTable":{"season":"2024","Races":[
{"season":"2024","round":"1","raceName":"Bahrain Grand Prix","Circuit":{"circuitId":"bahrain","circuitName":"Bahrain International Circuit","Location":{"locality":"Sakhir","country":"Bahrain"}},"date":"2024-03-02","time":"15:00:00Z","FirstPractice":{"date":"2024-02-29","time":"11:30:00Z"},"SecondPractice":{"date":"2024-02-29","time":"15:00:00Z"},"ThirdPractice":{"date":"2024-03-01","time":"12:30:00Z"},"Qualifying":{"date":"2024-03-01","time":"16:00:00Z"}}]}}}`

func setupEnv(t *testing.T, hits *int32) string {
	t.Helper()
	r := mux.NewRouter()
	r.HandleFunc("/ergast/2024.json", func(w http.ResponseWriter, req *http.Request) {
		atomic.AddInt32(hits, 1)
		_, _ = w.Write([]byte(racesFixture))
	})
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	dir := t.TempDir()
	t.Setenv("F1BRIDGE_CACHE_DIR", dir)
	t.Setenv("F1BRIDGE_ERGAST_URL", srv.URL+"/ergast")
	t.Setenv("F1BRIDGE_OPENF1_URL", srv.URL+"/openf1/")
	t.Setenv("F1BRIDGE_LOG_LEVEL", "debug")
	return dir
}

func runLine(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	run(context.Background(), args, &out)
	require.True(t, strings.HasSuffix(out.String(), "\n"))
	require.Equal(t, 1, strings.Count(out.String(), "\n"))
	return strings.TrimSuffix(out.String(), "\n")
}

func TestRunDispatchErrors(t *testing.T) {
	var hits int32
	setupEnv(t, &hits)

	assert.Equal(t, `{"status":"error","message":"No function specified"}`, runLine(t))
	assert.Equal(t, `{"status":"error","message":"Unknown function: nope"}`, runLine(t, "nope"))
}

func TestRunScheduleUsesCache(t *testing.T) {
	var hits int32
	dir := setupEnv(t, &hits)

	for i := 0; i < 2; i++ {
		line := runLine(t, "get_event_schedule", "2024")
		assert.True(t, strings.HasPrefix(line, `{"status":"success","data":[{"RoundNumber":1,"Country":"Bahrain"`), line)
	}
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))

	_, err := os.Stat(filepath.Join(dir, "http_cache.sqlite"))
	assert.NoError(t, err)
	logs, err := os.ReadFile(filepath.Join(dir, "bridge.log"))
	require.NoError(t, err)
	assert.Contains(t, string(logs), `"function":"get_event_schedule"`)
}

func TestRunCacheDisabled(t *testing.T) {
	var hits int32
	setupEnv(t, &hits)
	t.Setenv("F1BRIDGE_CACHE_DISABLED", "true")

	for i := 0; i < 2; i++ {
		line := runLine(t, "get_event_schedule", "2024")
		assert.Contains(t, line, `"status":"success"`)
	}
	assert.Equal(t, int32(2), atomic.LoadInt32(&hits))
}

func TestRunOperationError(t *testing.T) {
	var hits int32
	setupEnv(t, &hits)

	line := runLine(t, "get_event_info", "2024", "Atlantis")
	assert.Contains(t, line, `"status":"error"`)
	assert.Contains(t, line, `"traceback":"`)
}

func TestRunConfigError(t *testing.T) {
	var hits int32
	setupEnv(t, &hits)
	t.Setenv("F1BRIDGE_LOG_LEVEL", "verbose")

	line := runLine(t, "get_event_schedule", "2024")
	assert.Contains(t, line, `"status":"error"`)
	assert.Contains(t, line, "config validation failed")
	assert.Equal(t, int32(0), atomic.LoadInt32(&hits))
}

func TestRunDispatchErrorsIgnoreBrokenEnv(t *testing.T) {
	var hits int32
	setupEnv(t, &hits)
	t.Setenv("F1BRIDGE_LOG_LEVEL", "verbose")

	assert.Equal(t, `{"status":"error","message":"No function specified"}`, runLine(t))
	assert.Equal(t, `{"status":"error","message":"Unknown function: foo"}`, runLine(t, "foo"))

	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))
	t.Setenv("F1BRIDGE_LOG_LEVEL", "info")
	t.Setenv("F1BRIDGE_CACHE_DIR", filepath.Join(blocker, "cache"))

	assert.Equal(t, `{"status":"error","message":"No function specified"}`, runLine(t))
	assert.Equal(t, `{"status":"error","message":"Unknown function: foo"}`, runLine(t, "foo"))
}

func TestRunSessionUnknownEvent(t *testing.T) {
	var hits int32
	setupEnv(t, &hits)

	env, err := caster.JSONCaster[map[string]any]{}.From(runLine(t, "get_session_results", "2024", "Atlantis", "R"))
	require.NoError(t, err)
	assert.Equal(t, "error", env["status"])
	msg, _ := env["message"].(string)
	tb, _ := env["traceback"].(string)
	assert.Contains(t, msg, "Atlantis")
	assert.NotEmpty(t, tb)
}

func TestRunScheduleRoundTrip(t *testing.T) {
	var hits int32
	setupEnv(t, &hits)

	line := runLine(t, "get_event_schedule", "2024")
	decoded, err := caster.JSONCaster[map[string]any]{}.From(line)
	require.NoError(t, err)
	require.Equal(t, "success", decoded["status"])

	again, err := caster.JSONCaster[map[string]any]{}.To(decoded)
	require.NoError(t, err)
	assert.JSONEq(t, line, again)

	redecoded, err := caster.JSONCaster[map[string]any]{}.From(again)
	require.NoError(t, err)
	assert.Equal(t, decoded, redecoded)
}
