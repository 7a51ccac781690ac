package web

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/justestif/go-moodtune/internal/analysis"
	"github.com/justestif/go-moodtune/internal/clustering"
	"github.com/justestif/go-moodtune/internal/mood"
	"github.com/justestif/go-moodtune/internal/recommend"
)

var (
	errEmptyText = errors.New("text must not be empty")
	errNoCatalog = errors.New("no track catalog configured")
)

// Analyzer is the analysis service the handlers use.
type Analyzer interface {
	Analyze(ctx context.Context, text string) (analysis.Analysis, error)
	Prewarm(ctx context.Context) (int, error)
	State() (analysis.State, error)
	Cache() *analysis.Cache
}

// CatalogSource loads the clustered tracks recommendations draw from.
// userID may be empty.
type CatalogSource interface {
	LoadCatalog(ctx context.Context, userID string) (*clustering.Catalog, error)
}

// Handlers contains the HTTP handlers of the API.
type Handlers struct {
	analyzer   Analyzer
	catalogs   CatalogSource
	oracleMode string
	circuit    func() string
	numSongs   int
	log        *logrus.Entry
}

// HandlersOption configures Handlers.
type HandlersOption func(*Handlers)

// WithCatalog sets where recommendation catalogs come from. Without one the
// recommendation endpoints answer 503.
func WithCatalog(c CatalogSource) HandlersOption {
	return func(h *Handlers) {
		h.catalogs = c
	}
}

// WithOracleMode sets the oracle mode reported by /health.
func WithOracleMode(mode string) HandlersOption {
	return func(h *Handlers) {
		h.oracleMode = mode
	}
}

// WithOracleCircuit reports the oracle's circuit breaker state on /health.
func WithOracleCircuit(state func() string) HandlersOption {
	return func(h *Handlers) {
		h.circuit = state
	}
}

// WithNumSongs sets the default playlist length.
func WithNumSongs(n int) HandlersOption {
	return func(h *Handlers) {
		if n > 0 {
			h.numSongs = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *logrus.Entry) HandlersOption {
	return func(h *Handlers) {
		if l != nil {
			h.log = l
		}
	}
}

// NewHandlers creates the handlers over an analyzer.
func NewHandlers(a Analyzer, opts ...HandlersOption) *Handlers {
	h := &Handlers{
		analyzer:   a,
		oracleMode: "none",
		numSongs:   recommend.DefaultNumSongs,
		log:        logrus.WithField("component", "web"),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

type analyzeRequest struct {
	Text   string `json:"text" validate:"required,max=5000"`
	UserID string `json:"user_id" validate:"max=128"`
}

type preferences struct {
	NumSongs         int      `json:"num_songs" validate:"omitempty,min=1,max=100"`
	PreferredTracks  []string `json:"preferred_tracks" validate:"max=20,dive,max=200"`
	PreferredArtists []string `json:"preferred_artists" validate:"max=20,dive,max=200"`
}

type recommendRequest struct {
	Sentiment *float64 `json:"sentiment_score" validate:"required,min=-1,max=1"`
	Emotion   string   `json:"emotion" validate:"omitempty,emotion"`
	UserID    string   `json:"user_id" validate:"max=128"`
	preferences
}

type analyzeRecommendRequest struct {
	analyzeRequest
	preferences
}

// legacyResponse is the compact analysis shape served by /analyze.
type legacyResponse struct {
	Sentiment         float64             `json:"sentiment_score"`
	Confidence        float64             `json:"confidence"`
	Primary           mood.Emotion        `json:"primary_emotion"`
	Approach          string              `json:"approach"`
	ProcessingTime    string              `json:"processing_time"`
	EmotionConfidence float64             `json:"emotion_confidence"`
	Intensity         mood.IntensityLevel `json:"intensity_level"`
	Contexts          []mood.Context      `json:"context_detected"`
	MixedEmotions     bool                `json:"mixed_emotions"`
	NegationDetected  bool                `json:"negation_detected"`
	CacheHit          bool                `json:"cache_hit"`
}

// moodResponse carries the engine's outputs without scoring details.
type moodResponse struct {
	Sentiment         float64             `json:"sentiment_score"`
	Confidence        float64             `json:"confidence"`
	Primary           mood.Emotion        `json:"primary_emotion"`
	EmotionConfidence float64             `json:"emotion_confidence"`
	Secondary         []mood.EmotionScore `json:"secondary_emotions"`
	AudioTargets      mood.AudioTargets   `json:"audio_targets"`
	Contexts          []mood.Context      `json:"context_detected"`
	NegationDetected  bool                `json:"negation_detected"`
	Intensity         mood.IntensityLevel `json:"intensity_level"`
	MixedEmotions     bool                `json:"mixed_emotions"`
	Temporal          mood.Temporal       `json:"temporal_progression"`
}

type trackResponse struct {
	ID            string   `json:"track_id"`
	Name          string   `json:"track_name"`
	Artist        string   `json:"artist_name"`
	Popularity    int      `json:"popularity"`
	Valence       *float32 `json:"valence,omitempty"`
	Energy        *float32 `json:"energy,omitempty"`
	Danceability  *float32 `json:"danceability,omitempty"`
	Acousticness  *float32 `json:"acousticness,omitempty"`
	Tempo         *float32 `json:"tempo,omitempty"`
	Score         float64  `json:"score"`
	TargetValence float64  `json:"target_valence,omitempty"`
}

type recommendResponse struct {
	Method           recommend.Method    `json:"method"`
	Emotion          mood.Emotion        `json:"emotion"`
	Sentiment        float64             `json:"sentiment_score"`
	SentimentMapping clustering.Features `json:"sentiment_mapping"`
	Recommendations  []trackResponse     `json:"recommendations"`
	ProcessingTime   string              `json:"processing_time"`
}

type analyzeRecommendResponse struct {
	Analysis moodResponse `json:"analysis"`
	recommendResponse
}

// Health reports readiness (GET /health).
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	state, err := h.analyzer.State()
	body := map[string]any{
		"status":        healthStatus(state),
		"state":         state.String(),
		"models_loaded": state == analysis.Ready,
		"oracle":        h.oracleMode,
		"catalog":       h.catalogs != nil,
	}
	if c := h.analyzer.Cache(); c != nil {
		body["cache_size"] = c.Stats().Size
	}
	if h.circuit != nil {
		body["oracle_circuit"] = h.circuit()
	}
	status := http.StatusOK
	if state == analysis.Failed {
		status = http.StatusServiceUnavailable
		if err != nil {
			body["error"] = err.Error()
		}
	}
	writeJSON(w, status, body)
}

func healthStatus(s analysis.State) string {
	switch s {
	case analysis.Ready:
		return "healthy"
	case analysis.Failed:
		return "unhealthy"
	default:
		return "loading"
	}
}

// Analyze returns the compact analysis (POST /analyze).
func (h *Handlers) Analyze(w http.ResponseWriter, r *http.Request) {
	a, ok := h.analyze(w, r)
	if !ok {
		return
	}
	approach := "patterns"
	if a.OracleFused {
		approach = "patterns+oracle"
	}
	writeJSON(w, http.StatusOK, legacyResponse{
		Sentiment:         a.Sentiment,
		Confidence:        a.Confidence,
		Primary:           a.Primary,
		Approach:          approach,
		ProcessingTime:    processingTime(a.Duration),
		EmotionConfidence: a.EmotionConfidence,
		Intensity:         a.Intensity,
		Contexts:          a.Contexts,
		MixedEmotions:     a.MixedEmotions,
		NegationDetected:  a.NegationDetected,
		CacheHit:          a.CacheHit,
	})
}

// AnalyzeMood returns the engine outputs (POST /analyze_mood).
func (h *Handlers) AnalyzeMood(w http.ResponseWriter, r *http.Request) {
	a, ok := h.analyze(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, toMoodResponse(a.Result))
}

// AnalyzeDetailed returns the full analysis including scores, the
// confidence breakdown and context boosts (POST /analyze_detailed).
func (h *Handlers) AnalyzeDetailed(w http.ResponseWriter, r *http.Request) {
	a, ok := h.analyze(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func (h *Handlers) analyze(w http.ResponseWriter, r *http.Request) (analysis.Analysis, bool) {
	var req analyzeRequest
	if !h.decode(w, r, &req) {
		return analysis.Analysis{}, false
	}
	if strings.TrimSpace(req.Text) == "" {
		writeError(w, http.StatusBadRequest, errEmptyText.Error())
		return analysis.Analysis{}, false
	}
	a, err := h.analyzer.Analyze(r.Context(), req.Text)
	if err != nil {
		h.fail(w, r, err)
		return analysis.Analysis{}, false
	}
	return a, true
}

// Recommend picks tracks for a sentiment and optional emotion by matching
// its audio profile against the nearest clusters (POST /recommend).
func (h *Handlers) Recommend(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	var req recommendRequest
	if !h.decode(w, r, &req) {
		return
	}

	cat, err := h.catalog(r.Context(), req.UserID)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	emotion := mood.Emotion(req.Emotion)
	target := recommend.SentimentTargets(*req.Sentiment, emotion)
	recs, err := recommend.ByTargets(cat, target, h.options(req.preferences))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if emotion == "" {
		emotion = recommend.EmotionFromSentiment(*req.Sentiment)
	}

	writeJSON(w, http.StatusOK, recommendResponse{
		Method:           recommend.MethodTargets,
		Emotion:          emotion,
		Sentiment:        *req.Sentiment,
		SentimentMapping: target,
		Recommendations:  toTrackResponses(recs),
		ProcessingTime:   processingTime(time.Since(start)),
	})
}

// AnalyzeAndRecommend analyzes text and builds a playlist for the detected
// emotion (POST /analyze-and-recommend).
func (h *Handlers) AnalyzeAndRecommend(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	var req analyzeRecommendRequest
	if !h.decode(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		writeError(w, http.StatusBadRequest, errEmptyText.Error())
		return
	}

	cat, err := h.catalog(r.Context(), req.UserID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	a, err := h.analyzer.Analyze(r.Context(), req.Text)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	res, err := recommend.Recommend(cat, recommend.Input{Emotion: a.Primary, Sentiment: a.Sentiment}, h.options(req.preferences))
	if err != nil {
		h.fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, analyzeRecommendResponse{
		Analysis: toMoodResponse(a.Result),
		recommendResponse: recommendResponse{
			Method:           res.Method,
			Emotion:          res.Emotion,
			Sentiment:        res.Sentiment,
			SentimentMapping: recommend.SentimentTargets(a.Sentiment, a.Primary),
			Recommendations:  toTrackResponses(res.Tracks),
			ProcessingTime:   processingTime(time.Since(start)),
		},
	})
}

// CacheStats reports analysis cache usage (GET /cache/stats).
func (h *Handlers) CacheStats(w http.ResponseWriter, r *http.Request) {
	c := h.analyzer.Cache()
	if c == nil {
		h.fail(w, r, analysis.ErrNotReady)
		return
	}
	writeJSON(w, http.StatusOK, c.Stats())
}

// CacheClear empties the analysis cache (POST /cache/clear).
func (h *Handlers) CacheClear(w http.ResponseWriter, r *http.Request) {
	c := h.analyzer.Cache()
	if c == nil {
		h.fail(w, r, analysis.ErrNotReady)
		return
	}
	n := c.Purge()
	h.log.WithField("cleared", n).Info("Cache cleared")
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "All caches cleared",
		"cleared": n,
	})
}

// Prewarm analyzes common moods into the cache (POST /prewarm).
func (h *Handlers) Prewarm(w http.ResponseWriter, r *http.Request) {
	n, err := h.analyzer.Prewarm(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message":   fmt.Sprintf("Prewarmed %d analyses", n),
		"prewarmed": n,
	})
}

func (h *Handlers) catalog(ctx context.Context, userID string) (*clustering.Catalog, error) {
	if h.catalogs == nil {
		return nil, errNoCatalog
	}
	return h.catalogs.LoadCatalog(ctx, userID)
}

func (h *Handlers) options(p preferences) recommend.Options {
	n := p.NumSongs
	if n == 0 {
		n = h.numSongs
	}
	return recommend.Options{
		NumSongs:         n,
		PreferredTracks:  p.PreferredTracks,
		PreferredArtists: p.PreferredArtists,
	}
}

func (h *Handlers) decode(w http.ResponseWriter, r *http.Request, out any) bool {
	if err := decodeJSONBody(r, maxBodyBytes, out); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return false
	}
	if err := validateRequest(out); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return false
	}
	return true
}

// fail maps service errors to status codes.
func (h *Handlers) fail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, analysis.ErrNotReady):
		writeError(w, http.StatusServiceUnavailable, "models are still loading")
	case errors.Is(err, errNoCatalog),
		errors.Is(err, recommend.ErrEmptyCatalog),
		errors.Is(err, clustering.ErrNoTracks):
		writeError(w, http.StatusServiceUnavailable, err.Error())
	case errors.Is(err, context.Canceled):
		writeError(w, http.StatusRequestTimeout, "request cancelled")
	default:
		h.log.WithError(err).WithField("path", r.URL.Path).Error("Request failed")
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func toMoodResponse(res mood.Result) moodResponse {
	return moodResponse{
		Sentiment:         res.Sentiment,
		Confidence:        res.Confidence,
		Primary:           res.Primary,
		EmotionConfidence: res.EmotionConfidence,
		Secondary:         res.Secondary,
		AudioTargets:      res.AudioTargets,
		Contexts:          res.Contexts,
		NegationDetected:  res.NegationDetected,
		Intensity:         res.Intensity,
		MixedEmotions:     res.MixedEmotions,
		Temporal:          res.Temporal,
	}
}

func toTrackResponses(recs []recommend.Recommendation) []trackResponse {
	out := make([]trackResponse, len(recs))
	for i, rec := range recs {
		t := rec.Track
		out[i] = trackResponse{
			ID:            t.ID,
			Name:          t.Name,
			Artist:        t.Artist,
			Popularity:    t.Popularity,
			Valence:       t.Valence,
			Energy:        t.Energy,
			Danceability:  t.Danceability,
			Acousticness:  t.Acousticness,
			Tempo:         t.Tempo,
			Score:         rec.Score,
			TargetValence: rec.TargetValence,
		}
	}
	return out
}

func processingTime(d time.Duration) string {
	return fmt.Sprintf("%.3f seconds", d.Seconds())
}
