package web

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/justestif/go-moodtune/internal/analysis"
	"github.com/justestif/go-moodtune/internal/clustering"
)

func quietLog() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

type staticCatalog struct {
	cat *clustering.Catalog
}

func (s staticCatalog) LoadCatalog(context.Context, string) (*clustering.Catalog, error) {
	return s.cat, nil
}

func testCatalog(t *testing.T) *clustering.Catalog {
	t.Helper()
	track := func(id, name string, pop int, v, e, d, a, tempo float32) clustering.Track {
		return clustering.Track{
			ID: id, Name: name, Artist: "Artist " + id, Popularity: pop,
			Valence: clustering.F32(v), Energy: clustering.F32(e), Danceability: clustering.F32(d),
			Acousticness: clustering.F32(a), Tempo: clustering.F32(tempo),
		}
	}
	cat, err := clustering.BuildCatalog([]clustering.Track{
		track("a", "Sunny", 80, 0.9, 0.8, 0.8, 0.2, 128),
		track("b", "Rain", 30, 0.1, 0.2, 0.3, 0.8, 70),
		track("c", "Middle", 50, 0.5, 0.5, 0.5, 0.5, 100),
	}, 1)
	if err != nil {
		t.Fatalf("BuildCatalog() error = %v", err)
	}
	return cat
}

func newTestServer(t *testing.T, start bool, opts ...HandlersOption) http.Handler {
	t.Helper()
	svc := analysis.NewService(analysis.WithLogger(quietLog()))
	if start {
		if err := svc.Start(); err != nil {
			t.Fatalf("Start() error = %v", err)
		}
	}
	h := NewHandlers(svc, append([]HandlersOption{WithLogger(quietLog())}, opts...)...)
	return NewServer(ServerConfig{}, h, quietLog()).Handler()
}

func do(t *testing.T, h http.Handler, method, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var out map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("%s %s: response is not a JSON object: %v (%q)", method, path, err, rec.Body.String())
	}
	return rec, out
}

func TestHealth(t *testing.T) {
	tests := []struct {
		name       string
		start      bool
		wantStatus string
		wantLoaded bool
	}{
		{"ready", true, "healthy", true},
		{"not started", false, "loading", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestServer(t, tt.start, WithOracleMode("vader"))
			rec, body := do(t, h, http.MethodGet, "/health", "")
			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d", rec.Code)
			}
			if body["status"] != tt.wantStatus || body["models_loaded"] != tt.wantLoaded {
				t.Errorf("body = %v", body)
			}
			if body["oracle"] != "vader" {
				t.Errorf("oracle = %v, want vader", body["oracle"])
			}
		})
	}
}

func TestHealth_OracleCircuit(t *testing.T) {
	h := newTestServer(t, true,
		WithOracleMode("http"),
		WithOracleCircuit(func() string { return "open" }),
	)
	_, body := do(t, h, http.MethodGet, "/health", "")
	if body["oracle_circuit"] != "open" {
		t.Errorf("oracle_circuit = %v, want open", body["oracle_circuit"])
	}

	h = newTestServer(t, true)
	if _, body := do(t, h, http.MethodGet, "/health", ""); body["oracle_circuit"] != nil {
		t.Errorf("oracle_circuit = %v without a breaker", body["oracle_circuit"])
	}
}

func TestAnalyze(t *testing.T) {
	h := newTestServer(t, true)
	text := `{"text": "I feel amazing today!"}`

	rec, body := do(t, h, http.MethodPost, "/analyze", text)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %v", rec.Code, body)
	}
	if body["primary_emotion"] != "joy" {
		t.Errorf("primary_emotion = %v, want joy", body["primary_emotion"])
	}
	if body["approach"] != "patterns" || body["cache_hit"] != false {
		t.Errorf("body = %v", body)
	}
	if _, ok := body["emotion_scores"]; ok {
		t.Error("/analyze should not include scoring details")
	}

	_, body = do(t, h, http.MethodPost, "/analyze", text)
	if body["cache_hit"] != true {
		t.Error("repeated text should hit the cache")
	}
}

func TestAnalyzeVariants(t *testing.T) {
	h := newTestServer(t, true)
	text := `{"text": "I feel amazing today!"}`

	_, mood := do(t, h, http.MethodPost, "/analyze_mood", text)
	if _, ok := mood["audio_targets"]; !ok {
		t.Errorf("/analyze_mood missing audio_targets: %v", mood)
	}
	if _, ok := mood["confidence_breakdown"]; ok {
		t.Error("/analyze_mood should not include the confidence breakdown")
	}

	_, detailed := do(t, h, http.MethodPost, "/analyze_detailed", text)
	for _, key := range []string{"emotion_scores", "confidence_breakdown", "context_boosts", "text_hash", "keywords"} {
		if _, ok := detailed[key]; !ok {
			t.Errorf("/analyze_detailed missing %s", key)
		}
	}
}

func TestAnalyze_BadRequests(t *testing.T) {
	h := newTestServer(t, true)

	tests := []struct {
		name string
		body string
		want string
	}{
		{"empty text", `{"text": ""}`, "text"},
		{"whitespace text", `{"text": "   "}`, "empty"},
		{"unknown field", `{"text": "hi", "mood": "x"}`, "unknown field"},
		{"not json", `hello`, "invalid json"},
		{"two values", `{"text": "a"} {"text": "b"}`, "multiple"},
		{"too long", `{"text": "` + strings.Repeat("a", 5001) + `"}`, "max"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, body := do(t, h, http.MethodPost, "/analyze", tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", rec.Code)
			}
			msg, _ := body["error"].(string)
			if !strings.Contains(msg, tt.want) {
				t.Errorf("error = %q, want it to mention %q", msg, tt.want)
			}
		})
	}

	t.Run("body too large", func(t *testing.T) {
		rec, _ := do(t, h, http.MethodPost, "/analyze", `{"text": "`+strings.Repeat("a", maxBodyBytes)+`"}`)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
	})
}

func TestAnalyze_NotReady(t *testing.T) {
	h := newTestServer(t, false)
	rec, body := do(t, h, http.MethodPost, "/analyze", `{"text": "hello"}`)
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503 (%v)", rec.Code, body)
	}
}

func TestRecommend(t *testing.T) {
	h := newTestServer(t, true, WithCatalog(staticCatalog{testCatalog(t)}))

	rec, body := do(t, h, http.MethodPost, "/recommend", `{"sentiment_score": 0.8, "num_songs": 2}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %v", rec.Code, body)
	}
	if body["method"] != "target_based" {
		t.Errorf("method = %v", body["method"])
	}
	recs, _ := body["recommendations"].([]any)
	if len(recs) != 2 {
		t.Fatalf("got %d recommendations, want 2", len(recs))
	}
	if first := recs[0].(map[string]any); first["track_name"] != "Sunny" {
		t.Errorf("first track = %v, want Sunny", first["track_name"])
	}
	mapping, _ := body["sentiment_mapping"].(map[string]any)
	if mapping["valence"] != 0.85 {
		t.Errorf("sentiment_mapping = %v", mapping)
	}
}

func TestRecommend_Errors(t *testing.T) {
	withCatalog := newTestServer(t, true, WithCatalog(staticCatalog{testCatalog(t)}))
	noCatalog := newTestServer(t, true)

	tests := []struct {
		name   string
		h      http.Handler
		body   string
		status int
	}{
		{"missing sentiment", withCatalog, `{}`, http.StatusBadRequest},
		{"sentiment out of range", withCatalog, `{"sentiment_score": 1.5}`, http.StatusBadRequest},
		{"unknown emotion", withCatalog, `{"sentiment_score": 0.1, "emotion": "glee"}`, http.StatusBadRequest},
		{"too many songs", withCatalog, `{"sentiment_score": 0.1, "num_songs": 500}`, http.StatusBadRequest},
		{"no catalog", noCatalog, `{"sentiment_score": 0.1}`, http.StatusServiceUnavailable},
		{"zero sentiment with emotion", withCatalog, `{"sentiment_score": 0, "emotion": "sadness"}`, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, body := do(t, tt.h, http.MethodPost, "/recommend", tt.body)
			if rec.Code != tt.status {
				t.Errorf("status = %d, want %d (%v)", rec.Code, tt.status, body)
			}
		})
	}
}

func TestAnalyzeAndRecommend(t *testing.T) {
	h := newTestServer(t, true, WithCatalog(staticCatalog{testCatalog(t)}), WithNumSongs(2))

	rec, body := do(t, h, http.MethodPost, "/analyze-and-recommend", `{"text": "I feel amazing today!"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %v", rec.Code, body)
	}
	a, _ := body["analysis"].(map[string]any)
	if a["primary_emotion"] != "joy" {
		t.Errorf("analysis = %v", a)
	}
	if body["method"] != "emotion_based" || body["emotion"] != "joy" {
		t.Errorf("method = %v emotion = %v", body["method"], body["emotion"])
	}
	if recs, _ := body["recommendations"].([]any); len(recs) != 2 {
		t.Errorf("got %d recommendations, want 2", len(recs))
	}
}

func TestCacheEndpoints(t *testing.T) {
	h := newTestServer(t, true)

	rec, body := do(t, h, http.MethodPost, "/prewarm", "")
	if rec.Code != http.StatusOK || body["prewarmed"] != float64(5) {
		t.Fatalf("prewarm: status = %d body = %v", rec.Code, body)
	}

	_, stats := do(t, h, http.MethodGet, "/cache/stats", "")
	if stats["cache_size"] != float64(5) {
		t.Errorf("cache_size = %v, want 5", stats["cache_size"])
	}

	_, cleared := do(t, h, http.MethodPost, "/cache/clear", "")
	if cleared["message"] != "All caches cleared" || cleared["cleared"] != float64(5) {
		t.Errorf("clear = %v", cleared)
	}

	_, stats = do(t, h, http.MethodGet, "/cache/stats", "")
	if stats["cache_size"] != float64(0) {
		t.Errorf("cache_size after clear = %v, want 0", stats["cache_size"])
	}
}

func TestCacheStats_NotReady(t *testing.T) {
	h := newTestServer(t, false)
	rec, _ := do(t, h, http.MethodGet, "/cache/stats", "")
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rec.Code)
	}
}
