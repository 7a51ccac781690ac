// Package analysis runs the mood engine as a service: readiness tracking,
// result caching, oracle fusion and optional persistence and publication of
// each analysis.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/justestif/go-moodtune/internal/mood"
	"github.com/justestif/go-moodtune/internal/oracle"
)

// Analysis is one analyzed text.
type Analysis struct {
	ID       uuid.UUID `json:"id"`
	Text     string    `json:"text"`
	TextHash string    `json:"text_hash"`
	mood.Result

	OracleSentiment *float64            `json:"oracle_sentiment,omitempty"`
	OracleEmotions  []mood.EmotionScore `json:"oracle_emotions,omitempty"`
	Keywords        []string            `json:"keywords"`
	CacheHit        bool                `json:"cache_hit"`
	AnalyzedAt      time.Time           `json:"analyzed_at"`
	Duration        time.Duration       `json:"duration_ns"`
}

// clone copies the analysis deep enough that callers may modify slices and
// maps without touching the cached entry.
func (a Analysis) clone() Analysis {
	a.Result = a.Result.Clone()
	a.Keywords = slices.Clone(a.Keywords)
	a.OracleEmotions = slices.Clone(a.OracleEmotions)
	if a.OracleSentiment != nil {
		v := *a.OracleSentiment
		a.OracleSentiment = &v
	}
	return a
}

// HistoryRecorder persists analyses.
type HistoryRecorder interface {
	RecordAnalysis(ctx context.Context, a Analysis) error
}

// Publisher announces analyses to other systems.
type Publisher interface {
	PublishAnalysis(ctx context.Context, a Analysis) error
}

// sentenceScorer is implemented by classifiers that can average sentiment
// per sentence.
type sentenceScorer interface {
	SentenceSentiment(text string) float64
}

// Service analyzes texts.
type Service struct {
	readiness Readiness
	engine    *mood.Engine
	cache     *Cache
	oracle    oracle.Classifier
	recorder  HistoryRecorder
	publisher Publisher
	log       *logrus.Entry
	now       func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithOracle sets the classifier fused into each analysis.
func WithOracle(c oracle.Classifier) Option {
	return func(s *Service) {
		s.oracle = c
	}
}

// WithCache sets the result cache.
func WithCache(c *Cache) Option {
	return func(s *Service) {
		s.cache = c
	}
}

// WithRecorder sets where analyses are persisted.
func WithRecorder(r HistoryRecorder) Option {
	return func(s *Service) {
		s.recorder = r
	}
}

// WithPublisher sets where analyses are published.
func WithPublisher(p Publisher) Option {
	return func(s *Service) {
		s.publisher = p
	}
}

// WithLogger sets the logger.
func WithLogger(l *logrus.Entry) Option {
	return func(s *Service) {
		if l != nil {
			s.log = l
		}
	}
}

// NewService creates a service. Call Start before Analyze.
func NewService(opts ...Option) *Service {
	s := &Service{
		log: logrus.WithField("component", "analysis"),
		now: time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start builds the engine.
func (s *Service) Start() error {
	if !s.readiness.begin() {
		return nil
	}
	start := s.now()
	e, err := mood.NewEngine()
	if err != nil {
		err = fmt.Errorf("building mood engine: %w", err)
		s.readiness.finish(err)
		return err
	}
	s.engine = e
	if s.cache == nil {
		if s.cache, err = NewCache(DefaultCacheSize); err != nil {
			err = fmt.Errorf("creating cache: %w", err)
			s.readiness.finish(err)
			return err
		}
	}
	s.readiness.finish(nil)
	s.log.WithField("elapsed", time.Since(start)).Info("Mood engine ready")
	return nil
}

// State returns the readiness state.
func (s *Service) State() (State, error) {
	return s.readiness.State()
}

// HasOracle reports whether a classifier is configured.
func (s *Service) HasOracle() bool {
	return s.oracle != nil
}

// Cache returns the result cache, or nil before Start.
func (s *Service) Cache() *Cache {
	return s.cache
}

// Analyze runs the engine on text, fusing oracle emotions when available.
// Results are cached by text; a cached result is returned with CacheHit set.
func (s *Service) Analyze(ctx context.Context, text string) (Analysis, error) {
	if !s.readiness.ready() {
		return Analysis{}, ErrNotReady
	}
	start := s.now()
	key := HashText(text)
	log := s.log.WithField("text_hash", key)

	if a, ok := s.cache.Get(key); ok {
		a.CacheHit = true
		log.Debug("Cache hit")
		return a, nil
	}

	a := Analysis{
		ID:       uuid.New(),
		Text:     text,
		TextHash: key,
	}

	var oracleEmotions []mood.EmotionScore
	if s.oracle != nil && strings.TrimSpace(text) != "" {
		oracleEmotions = s.classifyEmotions(ctx, log, text)
		if v, ok := s.classifySentiment(ctx, log, text); ok {
			a.OracleSentiment = &v
		}
	}

	a.Result = s.engine.AnalyzeWithOracle(text, oracleEmotions)
	a.OracleEmotions = oracleEmotions
	a.Keywords = Keywords(text)
	a.AnalyzedAt = s.now().UTC()
	a.Duration = s.now().Sub(start)

	s.cache.Add(key, a)

	if s.recorder != nil {
		if err := s.recorder.RecordAnalysis(ctx, a); err != nil {
			log.WithError(err).Warn("Failed to record analysis")
		}
	}
	if s.publisher != nil {
		if err := s.publisher.PublishAnalysis(ctx, a); err != nil {
			log.WithError(err).Warn("Failed to publish analysis")
		}
	}

	log.WithFields(logrus.Fields{
		"primary":   a.Primary,
		"sentiment": a.Sentiment,
		"fused":     a.OracleFused,
	}).Debug("Analyzed text")
	return a, nil
}

func (s *Service) classifyEmotions(ctx context.Context, log *logrus.Entry, text string) []mood.EmotionScore {
	out, err := s.oracle.ClassifyEmotions(ctx, text)
	if err != nil {
		logOracleError(log, "emotions", err)
		return nil
	}
	return oracle.Emotions(out)
}

func (s *Service) classifySentiment(ctx context.Context, log *logrus.Entry, text string) (float64, bool) {
	if ss, ok := s.oracle.(sentenceScorer); ok {
		return ss.SentenceSentiment(text), true
	}
	out, err := s.oracle.ClassifySentiment(ctx, text)
	if err != nil {
		logOracleError(log, "sentiment", err)
		return 0, false
	}
	return out.Sentiment(), true
}

func logOracleError(log *logrus.Entry, task string, err error) {
	if errors.Is(err, oracle.ErrUnsupported) {
		return
	}
	log.WithError(err).WithField("task", task).Warn("Oracle failed, using patterns only")
}

// prewarmTexts are common moods analyzed at startup so the first requests
// hit the cache.
var prewarmTexts = []string{
	"I'm feeling happy and energetic",
	"I'm sad and need comfort",
	"I'm anxious and stressed",
	"I'm neutral, just looking for good music",
	"I'm excited about life",
}

// Prewarm analyzes a fixed set of common moods. It returns the number of
// texts analyzed.
func (s *Service) Prewarm(ctx context.Context) (int, error) {
	n := 0
	for _, text := range prewarmTexts {
		if err := ctx.Err(); err != nil {
			return n, err
		}
		if _, err := s.Analyze(ctx, text); err != nil {
			return n, fmt.Errorf("prewarming %q: %w", text, err)
		}
		n++
	}
	s.log.WithField("count", n).Info("Prewarmed analysis cache")
	return n, nil
}
