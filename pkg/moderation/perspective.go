package moderation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"google.golang.org/api/commentanalyzer/v1alpha1"
	"google.golang.org/api/option"
	"needu.com/community/pkg/apperror"
)

const attributeToxicity = "TOXICITY"

// Classifier scores text on a 0..1 toxicity scale.
type Classifier interface {
	Toxicity(ctx context.Context, text string) (float64, error)
}

type perspectiveClassifier struct {
	svc     *commentanalyzer.Service
	timeout time.Duration
}

// NewPerspectiveClassifier builds a Classifier backed by the Perspective comment analyzer.
func NewPerspectiveClassifier(ctx context.Context, apiKey string, timeout time.Duration, opts ...option.ClientOption) (Classifier, error) {
	if apiKey == "" {
		return nil, errors.New("perspective api key is empty")
	}

	opts = append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)
	svc, err := commentanalyzer.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create perspective client: %w", err)
	}

	return &perspectiveClassifier{svc: svc, timeout: timeout}, nil
}

func (p *perspectiveClassifier) Toxicity(ctx context.Context, text string) (float64, error) {
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	req := &commentanalyzer.AnalyzeCommentRequest{
		Comment: &commentanalyzer.TextEntry{Text: text},
		RequestedAttributes: map[string]commentanalyzer.AttributeParameters{
			attributeToxicity: {},
		},
		DoNotStore: true,
	}

	resp, err := p.svc.Comments.Analyze(req).Context(ctx).Do()
	if err != nil {
		return 0, fmt.Errorf("perspective analyze: %v: %w", err, apperror.ErrUpstream)
	}

	score, ok := resp.AttributeScores[attributeToxicity]
	if !ok || score.SummaryScore == nil {
		return 0, fmt.Errorf("perspective returned no toxicity score: %w", apperror.ErrUpstream)
	}

	return score.SummaryScore.Value, nil
}

// StaticClassifier returns a fixed score. It stands in when no API key is configured.
type StaticClassifier struct {
	Score float64
}

func (s StaticClassifier) Toxicity(context.Context, string) (float64, error) {
	return s.Score, nil
}
