package resolver

import (
	"context"
	"errors"
	"testing"
	"time"

	"chart-coach-be/internal/entity"
	"chart-coach-be/internal/pkg/apperror"
	"chart-coach-be/pkg/coach/scenario"
	"chart-coach-be/pkg/vision"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var chart = &vision.Image{Data: []byte("png"), MimeType: "image/png"}

func TestScenarioReplyIsCanned(t *testing.T) {
	catalog := scenario.Default()
	flag, _ := catalog.Get("bull_flag")
	r := New(catalog, nil)

	for _, mode := range []entity.ResponseMode{entity.ResponseModeTLDR, entity.ResponseModeFull} {
		first, err := r.Resolve(context.Background(), Request{ScenarioID: "bull_flag", Mode: mode})
		require.NoError(t, err)
		second, err := r.Resolve(context.Background(), Request{ScenarioID: "bull_flag", Mode: mode})
		require.NoError(t, err)

		assert.Equal(t, flag.Response(mode), first.Text)
		assert.Equal(t, first.Text, second.Text)
		assert.Equal(t, mode, first.Mode)
		assert.Equal(t, SourceScenario, first.Source)
	}
}

func TestScenarioTakesPrecedence(t *testing.T) {
	called := false
	analyzer := vision.AnalyzerFunc(func(ctx context.Context, img vision.Image, mode entity.ResponseMode) (string, error) {
		called = true
		return "vision", nil
	})
	r := New(scenario.Default(), analyzer)

	res, err := r.Resolve(context.Background(), Request{ScenarioID: "double_top", Image: chart, Text: "buyers"})
	require.NoError(t, err)
	assert.Equal(t, SourceScenario, res.Source)
	assert.False(t, called, "scenario replies never call the vision provider")
}

func TestUnknownScenario(t *testing.T) {
	r := New(scenario.Default(), nil)
	_, err := r.Resolve(context.Background(), Request{ScenarioID: "nope"})
	assert.ErrorIs(t, err, apperror.ErrUnknownScenario)
}

func TestKeywordRules(t *testing.T) {
	r := New(scenario.Default(), nil)

	tests := []struct {
		text string
		rule string
	}{
		{"I think buyers are strong", "buyer_long"},
		{"Should I go LONG here?", "buyer_long"},
		{"sellers stepped in hard", "seller_short"},
		{"thinking about a short", "seller_short"},
		{"buyers vs sellers, who wins?", "buyer_long"},
		{"what is the weather", "fallback"},
		{"", "fallback"},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			for _, mode := range []entity.ResponseMode{entity.ResponseModeTLDR, entity.ResponseModeFull} {
				res, err := r.Resolve(context.Background(), Request{Text: tt.text, Mode: mode})
				require.NoError(t, err)
				assert.Equal(t, tt.rule, res.RuleName)
				assert.Equal(t, SourceRule, res.Source)
				assert.Equal(t, mode, res.Mode)
			}
		})
	}
}

func TestModeSelectsTemplate(t *testing.T) {
	r := New(scenario.Default(), nil)

	tldr, err := r.Resolve(context.Background(), Request{Text: "buyers"})
	require.NoError(t, err)
	assert.Equal(t, entity.ResponseModeTLDR, tldr.Mode, "empty mode defaults to tldr")
	assert.Equal(t, DefaultRules[0].TLDR, tldr.Text)

	full, err := r.Resolve(context.Background(), Request{Text: "buyers", Mode: entity.ResponseModeFull})
	require.NoError(t, err)
	assert.Equal(t, DefaultRules[0].Full, full.Text)

	_, err = r.Resolve(context.Background(), Request{Text: "buyers", Mode: "verbose"})
	assert.ErrorIs(t, err, apperror.ErrValidation)
}

func TestCustomRulesKeepOrder(t *testing.T) {
	rules := []Rule{
		{Name: "first", Keywords: []string{"flag"}, TLDR: "one"},
		{Name: "second", Keywords: []string{"bull"}, TLDR: "two"},
	}
	r := New(scenario.Default(), nil, WithRules(rules))

	res, err := r.Resolve(context.Background(), Request{Text: "Bull flag?"})
	require.NoError(t, err)
	assert.Equal(t, "first", res.RuleName)
	assert.Equal(t, "one", res.Text)
}

func TestImageDelegatesToAnalyzer(t *testing.T) {
	var gotMode entity.ResponseMode
	analyzer := vision.AnalyzerFunc(func(ctx context.Context, img vision.Image, mode entity.ResponseMode) (string, error) {
		gotMode = mode
		return "Higher lows into resistance.", nil
	})
	r := New(scenario.Default(), analyzer)

	res, err := r.Resolve(context.Background(), Request{Image: chart, Mode: entity.ResponseModeFull})
	require.NoError(t, err)
	assert.Equal(t, "Higher lows into resistance.", res.Text)
	assert.Equal(t, SourceVision, res.Source)
	assert.Equal(t, entity.ResponseModeFull, gotMode)
}

func TestAnalyzerFailureIsAnalysisError(t *testing.T) {
	analyzer := vision.AnalyzerFunc(func(ctx context.Context, img vision.Image, mode entity.ResponseMode) (string, error) {
		return "", errors.New("quota exceeded")
	})
	r := New(scenario.Default(), analyzer)

	_, err := r.Resolve(context.Background(), Request{Image: chart})
	assert.ErrorIs(t, err, apperror.ErrAnalysis)
	assert.ErrorContains(t, err, "quota exceeded")
}

func TestMissingAnalyzer(t *testing.T) {
	_, err := New(scenario.Default(), nil).Resolve(context.Background(), Request{Image: chart})
	assert.ErrorIs(t, err, apperror.ErrAnalysis)
}

func TestAnalysisTimeout(t *testing.T) {
	analyzer := vision.AnalyzerFunc(func(ctx context.Context, img vision.Image, mode entity.ResponseMode) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	})
	r := New(scenario.Default(), analyzer, WithAnalysisTimeout(20*time.Millisecond))

	_, err := r.Resolve(context.Background(), Request{Image: chart})
	assert.ErrorIs(t, err, apperror.ErrAnalysis)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestSlowAnalyzerIgnoringContextStillTimesOut(t *testing.T) {
	analyzer := vision.AnalyzerFunc(func(ctx context.Context, img vision.Image, mode entity.ResponseMode) (string, error) {
		time.Sleep(30 * time.Millisecond)
		return "late", nil
	})
	r := New(scenario.Default(), analyzer, WithAnalysisTimeout(5*time.Millisecond))

	_, err := r.Resolve(context.Background(), Request{Image: chart})
	assert.ErrorIs(t, err, apperror.ErrAnalysis)
}

func TestDelay(t *testing.T) {
	r := New(scenario.Default(), nil, WithDelay(30*time.Millisecond))

	started := time.Now()
	_, err := r.Resolve(context.Background(), Request{Text: "hello"})
	require.NoError(t, err)
	assert.GreaterOrEqual(t, time.Since(started), 30*time.Millisecond)
}

func TestDelayHonorsCancellation(t *testing.T) {
	r := New(scenario.Default(), nil, WithDelay(time.Hour))

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	_, err := r.Resolve(ctx, Request{ScenarioID: "bull_flag"})
	assert.ErrorIs(t, err, context.Canceled)
}
