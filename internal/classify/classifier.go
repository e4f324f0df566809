// Package classify implements the two-stage review classification pipeline:
// a filter call decides whether the text is a film or TV review, and only
// then a sentiment call labels it positive or negative.
package classify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/mark3labs/flyt"

	"github.com/gonkalabs/reviewsense/internal/completion"
	"github.com/gonkalabs/reviewsense/internal/requestid"
)

// Sentiment labels.
const (
	LabelPositive = "positive"
	LabelNegative = "negative"
)

// Params are the sampling parameters of one stage.
type Params struct {
	MaxTokens   int
	Temperature float64
}

// Config configures the completion calls of both stages.
type Config struct {
	Model     string
	Timeout   time.Duration // bound on each completion call
	Filter    Params
	Sentiment Params
}

// Outcome is the terminal state of one pipeline run.
type Outcome struct {
	State        State
	Label        string // set when State == StateDone
	FilterAnswer string // normalized filter answer, if the filter stage completed
	Err          error  // *Error when State is StateRejected or StateFailed
}

// Classifier runs the pipeline against a completion service.
// It is safe for concurrent use.
type Classifier struct {
	completer completion.Completer
	cfg       Config
	metrics   *Metrics
	logger    *slog.Logger
}

// Option customizes the classifier.
type Option func(*Classifier)

// WithMetrics records outcomes and call latency.
func WithMetrics(m *Metrics) Option {
	return func(c *Classifier) {
		c.metrics = m
	}
}

// WithLogger overrides the default slog logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Classifier) {
		if l != nil {
			c.logger = l
		}
	}
}

// New creates a Classifier that issues its completion calls through completer.
func New(completer completion.Completer, cfg Config, opts ...Option) *Classifier {
	c := &Classifier{
		completer: completer,
		cfg:       cfg,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Classify returns the sentiment label of text, or an *Error whose kind is
// ErrInvalidInput or ErrGatewayTimeout.
func (c *Classifier) Classify(ctx context.Context, text string) (string, error) {
	out := c.Run(ctx, text)
	return out.Label, out.Err
}

// Run executes the pipeline and reports its terminal state.
func (c *Classifier) Run(ctx context.Context, text string) Outcome {
	shared := flyt.NewSharedStore()
	shared.Set(keyText, text)

	err := c.newFlow().Run(ctx, shared)
	state := stateOf(shared)

	out := Outcome{FilterAnswer: stringOf(shared, keyAnswer)}
	switch {
	case err != nil:
		out.State = StateFailed
		out.Err = failure(state, err)
	case state == StateRejected:
		out.State = StateRejected
		out.Err = rejected()
	case state == StateDone:
		out.State = StateDone
		out.Label = stringOf(shared, keyLabel)
	default:
		out.State = StateFailed
		out.Err = failed(state.stage(), fmt.Errorf("pipeline stopped while %s", state))
	}

	c.log(ctx, text, out)
	c.metrics.observeOutcome(out.State, out.Label)
	return out
}

func (c *Classifier) complete(ctx context.Context, stage Stage, prompt string, p Params) (string, error) {
	start := time.Now()
	answer, err := c.completer.Complete(ctx, completion.Request{
		Prompt:      prompt,
		Model:       c.cfg.Model,
		MaxTokens:   p.MaxTokens,
		Temperature: p.Temperature,
		Timeout:     c.cfg.Timeout,
	})
	c.metrics.observeCall(stage, time.Since(start), err)
	return answer, err
}

// failure converts a flow error into a GatewayTimeout *Error carrying the
// completion error text rather than flyt's wrapping.
func failure(state State, err error) *Error {
	var se *stageError
	if errors.As(err, &se) {
		return failed(se.stage, se.err)
	}
	return failed(state.stage(), err)
}

func (c *Classifier) log(ctx context.Context, text string, out Outcome) {
	attrs := []any{"state", out.State.String(), "text_len", len(text)}
	if id, ok := requestid.From(ctx); ok {
		attrs = append(attrs, "request_id", id)
	}

	switch out.State {
	case StateDone:
		attrs = append(attrs, "label", out.Label)
		if out.Label != LabelPositive && out.Label != LabelNegative {
			c.logger.Warn("classify: unexpected sentiment label", attrs...)
			return
		}
		c.logger.Info("classify: done", attrs...)
	case StateRejected:
		c.logger.Info("classify: rejected", append(attrs, "filter_answer", out.FilterAnswer)...)
	default:
		var e *Error
		if errors.As(out.Err, &e) {
			attrs = append(attrs, "stage", string(e.Stage))
		}
		c.logger.Error("classify: failed", append(attrs, "err", out.Err)...)
	}
}
