package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// labeledGateway answers from a fixed text → response table.
func labeledGateway(t *testing.T) *httptest.Server {
	t.Helper()
	answers := map[string]struct {
		status int
		body   string
	}{
		"tp1":    {200, `{"pred":"positive"}`},
		"tp2":    {200, `{"pred":"positive"}`},
		"tp3":    {200, `{"pred":"positive"}`},
		"fp1":    {200, `{"pred":"positive"}`},
		"fn1":    {200, `{"pred":"negative"}`},
		"fn2":    {200, `{"pred":"negative"}`},
		"tn1":    {200, `{"pred":"negative"}`},
		"tn2":    {200, `{"pred":"negative"}`},
		"tn3":    {200, `{"pred":"negative"}`},
		"tn4":    {200, `{"pred":"negative"}`},
		"stocks": {422, `{"detail":"Not a movie review, invalid input"}`},
		"slow":   {408, `{"detail":"context deadline exceeded"}`},
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		a, ok := answers[body["text"]]
		if !assert.True(t, ok, body["text"]) {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(a.status)
		_, _ = w.Write([]byte(a.body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func writeLabeled(t *testing.T) string {
	t.Helper()
	rows := []string{
		`{"text":"tp1","label":"positive"}`,
		`{"text":"tp2","label":"positive"}`,
		`{"text":"tp3","label":1}`,
		`{"text":"fp1","label":"negative"}`,
		`{"text":"fn1","label":"positive"}`,
		`{"text":"fn2","label":"positive"}`,
		`{"text":"tn1","label":"negative"}`,
		`{"text":"tn2","label":"negative"}`,
		`{"text":"tn3","label":0}`,
		`{"text":"tn4","label":"negative"}`,
		`{"text":"stocks","label":"negative"}`,
		`{"text":"slow","label":"positive"}`,
	}
	path := filepath.Join(t.TempDir(), "labeled.jsonl")
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(rows, "\n")+"\n"), 0o644))
	return path
}

func TestEvalCommand(t *testing.T) {
	gw := labeledGateway(t)
	in := writeLabeled(t)
	out := filepath.Join(t.TempDir(), "metrics.json")

	stdout, err := run(t, "", "eval", "-g", gw.URL, "--file", in, "--out", out)
	require.NoError(t, err)

	assert.Contains(t, stdout, "The precision score is:  0.75\n")
	assert.Contains(t, stdout, "The recall score is:  0.60\n")
	assert.Contains(t, stdout, "The f1_score score is:  0.67\n")
	assert.Contains(t, stdout, "The accuracy score is:  0.70\n")
	assert.Contains(t, stdout, "Scored 10 of 12 reviews (1 rejected, 1 failed)")

	b, err := os.ReadFile(out)
	require.NoError(t, err)
	var saved map[string]any
	require.NoError(t, json.Unmarshal(b, &saved))
	assert.Equal(t, 0.75, saved["precision"])
	assert.Equal(t, 0.6, saved["recall"])
	assert.Equal(t, 0.6667, saved["f1_score"])
	assert.Equal(t, 0.7, saved["accuracy"])
	assert.Equal(t, 1.0, saved["rejected"])
	assert.Equal(t, 1.0, saved["failed"])
	assert.Equal(t, map[string]any{"tp": 3.0, "fp": 1.0, "tn": 4.0, "fn": 2.0}, saved["confusion"])
}

func TestEvalCommand_Errors(t *testing.T) {
	gw := labeledGateway(t)

	_, err := run(t, "", "eval", "-g", gw.URL)
	assert.EqualError(t, err, "--file is required")

	empty := filepath.Join(t.TempDir(), "empty.jsonl")
	require.NoError(t, os.WriteFile(empty, nil, 0o644))
	_, err = run(t, "", "eval", "-g", gw.URL, "--file", empty)
	assert.Error(t, err)

	_, err = run(t, "", "eval", "-g", gw.URL, "--file", filepath.Join(t.TempDir(), "missing.jsonl"))
	assert.Error(t, err)
}
