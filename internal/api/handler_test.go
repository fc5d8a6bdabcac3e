package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/escherba/phraser/internal/analysis"
	"github.com/escherba/phraser/internal/engine"
	"github.com/escherba/phraser/internal/storage"
)

const threat = `threat_statement = subject aux verb object
----------
i
----------
will
----------
kill
----------
you
`

func newTestRouter(t *testing.T, build bool) http.Handler {
	t.Helper()
	eng := engine.NewEngine()
	if build {
		require.NoError(t, eng.Build([]storage.ConfigRow{{Name: "threat.txt", Body: threat}}))
	}
	return Router(NewAnalyzeHandler(eng, analysis.DefaultOptions()))
}

func TestAnalyze_Scenarios(t *testing.T) {
	tests := []struct {
		name        string
		build       bool
		body        string
		wantStatus  int
		wantPhrases []string
	}{
		{"match", true, `{"text": "i will kill you."}`, http.StatusOK, []string{"threat_statement"}},
		{"no match", true, `{"text": "blah blah some string"}`, http.StatusOK, []string{}},
		{"options applied", true, `{"text": "i will kill you", "options": {"destutter_max_consecutive": 1}}`, http.StatusOK, []string{}},
		{"bad json", true, `{"text":`, http.StatusBadRequest, nil},
		{"missing text", true, `{"options": {}}`, http.StatusBadRequest, nil},
		{"unknown option", true, `{"text": "x", "options": {"bogus": 1}}`, http.StatusBadRequest, nil},
		{"wrong option type", true, `{"text": "x", "options": {"replace_html_entities": "yes"}}`, http.StatusBadRequest, nil},
		{"too long", true, `{"text": "` + strings.Repeat("a", analysis.TextMaxLen+1) + `"}`, http.StatusRequestEntityTooLarge, nil},
		{"not initialized", false, `{"text": "i will kill you."}`, http.StatusServiceUnavailable, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newTestRouter(t, tt.build)
			req := httptest.NewRequest("POST", "/v1/analyze", strings.NewReader(tt.body))
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			require.Equal(t, tt.wantStatus, w.Code, w.Body.String())
			if tt.wantStatus != http.StatusOK {
				var er errorResponse
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &er))
				assert.NotEmpty(t, er.Error)
				return
			}

			var res analysis.Result
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
			got := []string{}
			for _, m := range res.PhraseMatches {
				got = append(got, m.PhraseName)
			}
			assert.Equal(t, tt.wantPhrases, got)
		})
	}
}

func TestAnalyze_ResultShape(t *testing.T) {
	router := newTestRouter(t, true)
	req := httptest.NewRequest("POST", "/v1/analyze", strings.NewReader(`{"text": "I will kill you."}`))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	for _, k := range []string{"original_text", "clean_text", "tokens", "phrase_matches"} {
		assert.Contains(t, body, k)
	}
	matches := body["phrase_matches"].([]any)
	require.Len(t, matches, 1)
	m := matches[0].(map[string]any)
	assert.Equal(t, "threat_statement", m["phrase_name"])
	assert.Equal(t, []any{[]any{0.0, 1.0, 2.0, 3.0, 4.0}}, m["index_lists"])
}

func TestPhrasesAndProbes(t *testing.T) {
	tests := []struct {
		name       string
		build      bool
		path       string
		wantStatus int
	}{
		{"phrases", true, "/v1/phrases", http.StatusOK},
		{"healthz", false, "/healthz", http.StatusOK},
		{"ready", true, "/readyz", http.StatusOK},
		{"not ready", false, "/readyz", http.StatusServiceUnavailable},
		{"metrics", true, "/metrics", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := httptest.NewServer(newTestRouter(t, tt.build))
			defer ts.Close()

			resp, err := http.Get(ts.URL + tt.path)
			require.NoError(t, err)
			defer resp.Body.Close()
			assert.Equal(t, tt.wantStatus, resp.StatusCode)
		})
	}
}

func TestPhrases_Body(t *testing.T) {
	w := httptest.NewRecorder()
	newTestRouter(t, true).ServeHTTP(w, httptest.NewRequest("GET", "/v1/phrases", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var d engine.Dump
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &d))
	assert.True(t, d.Initialized)
	require.Len(t, d.PhraseList, 1)
	assert.Equal(t, []string{"subject", "aux", "verb", "object"}, d.PhraseList[0].PieceNames)
}
