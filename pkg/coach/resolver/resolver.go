// Package resolver decides where a coach reply comes from: the scenario catalog,
// the vision capability, or the ordered keyword rules.
package resolver

import (
	"context"
	"errors"
	"time"

	"chart-coach-be/internal/entity"
	"chart-coach-be/internal/pkg/apperror"
	"chart-coach-be/internal/pkg/logger"
	"chart-coach-be/pkg/coach/scenario"
	"chart-coach-be/pkg/vision"
)

const resolverModule = "Resolver"

type Source string

const (
	SourceScenario Source = "scenario"
	SourceVision   Source = "vision"
	SourceRule     Source = "rule"
)

type Request struct {
	Text       string
	Image      *vision.Image
	ScenarioID string
	Mode       entity.ResponseMode
}

type Result struct {
	Text     string
	Mode     entity.ResponseMode
	Source   Source
	RuleName string // set when Source is SourceRule
}

type Resolver struct {
	catalog         *scenario.Catalog
	analyzer        vision.Analyzer
	rules           []Rule
	delay           time.Duration
	analysisTimeout time.Duration
	logger          logger.ILogger
}

type Option func(*Resolver)

// WithDelay adds an artificial typing delay before canned replies.
func WithDelay(d time.Duration) Option {
	return func(r *Resolver) {
		r.delay = d
	}
}

// WithAnalysisTimeout bounds the vision call; expiry is an analysis error.
func WithAnalysisTimeout(d time.Duration) Option {
	return func(r *Resolver) {
		r.analysisTimeout = d
	}
}

func WithRules(rules []Rule) Option {
	return func(r *Resolver) {
		r.rules = rules
	}
}

func WithLogger(l logger.ILogger) Option {
	return func(r *Resolver) {
		r.logger = l
	}
}

// New builds a resolver. analyzer may be nil, in which case image requests fail.
func New(catalog *scenario.Catalog, analyzer vision.Analyzer, opts ...Option) *Resolver {
	r := &Resolver{
		catalog:  catalog,
		analyzer: analyzer,
		rules:    DefaultRules,
		logger:   logger.NewNopLogger(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// NormalizeMode defaults an empty mode to tldr.
func NormalizeMode(mode entity.ResponseMode) (entity.ResponseMode, error) {
	if mode == "" {
		return entity.ResponseModeTLDR, nil
	}
	if !mode.Valid() {
		return "", apperror.Validation("mode must be one of [tldr full]")
	}
	return mode, nil
}

// Resolve has no persistence side effects. Scenario wins over image, image over text.
func (r *Resolver) Resolve(ctx context.Context, req Request) (Result, error) {
	mode, err := NormalizeMode(req.Mode)
	if err != nil {
		return Result{}, err
	}

	switch {
	case req.ScenarioID != "":
		s, err := r.catalog.Lookup(req.ScenarioID)
		if err != nil {
			return Result{}, err
		}
		if err := r.wait(ctx); err != nil {
			return Result{}, err
		}
		return Result{Text: s.Response(mode), Mode: mode, Source: SourceScenario}, nil

	case req.Image != nil:
		text, err := r.analyze(ctx, *req.Image, mode)
		if err != nil {
			return Result{}, err
		}
		return Result{Text: text, Mode: mode, Source: SourceVision}, nil

	default:
		rule := Match(r.rules, req.Text)
		r.logger.Debug(resolverModule, "Keyword rule selected", map[string]interface{}{
			"rule": rule.Name,
			"mode": string(mode),
		})
		if err := r.wait(ctx); err != nil {
			return Result{}, err
		}
		return Result{Text: rule.Reply(mode), Mode: mode, Source: SourceRule, RuleName: rule.Name}, nil
	}
}

func (r *Resolver) analyze(ctx context.Context, img vision.Image, mode entity.ResponseMode) (string, error) {
	if r.analyzer == nil {
		return "", apperror.Analysis(errors.New("no vision provider configured"))
	}

	if r.analysisTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.analysisTimeout)
		defer cancel()
	}

	started := time.Now()
	text, err := r.analyzer.Analyze(ctx, img, mode)
	if err == nil && ctx.Err() != nil {
		// A provider that ignores ctx still counts as timed out.
		err = ctx.Err()
	}
	if err != nil {
		r.logger.Warn(resolverModule, "Vision analysis failed", map[string]interface{}{
			"error":    err.Error(),
			"duration": time.Since(started).String(),
		})
		return "", apperror.Analysis(err)
	}
	return text, nil
}

func (r *Resolver) wait(ctx context.Context) error {
	if r.delay <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(r.delay)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
