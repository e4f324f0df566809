// Package evaluate scores the gateway against a labeled review set:
// precision, recall, F1 and accuracy with "positive" as the positive class.
package evaluate

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/gonkalabs/reviewsense/internal/gatewayclient"
)

const positive = "positive"

// Example is one labeled review.
type Example struct {
	Text  string
	Label string // "positive" or "negative"
}

// ReadJSONL parses one {"text": ..., "label": ...} object per line. Labels
// may be strings or the numbers 1 (positive) and 0 (negative). Blank lines
// are skipped.
func ReadJSONL(r io.Reader) ([]Example, error) {
	var out []Example
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 4*1024*1024)
	for line := 1; sc.Scan(); line++ {
		raw := strings.TrimSpace(sc.Text())
		if raw == "" {
			continue
		}
		var row struct {
			Text  string          `json:"text"`
			Label json.RawMessage `json:"label"`
		}
		if err := json.Unmarshal([]byte(raw), &row); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		label, err := parseLabel(row.Label)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		out = append(out, Example{Text: row.Text, Label: label})
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func parseLabel(raw json.RawMessage) (string, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		s = strings.ToLower(strings.TrimSpace(s))
		if s == "positive" || s == "negative" {
			return s, nil
		}
		return "", fmt.Errorf("label %q: want positive or negative", s)
	}
	var n int
	if err := json.Unmarshal(raw, &n); err == nil {
		switch n {
		case 1:
			return "positive", nil
		case 0:
			return "negative", nil
		}
	}
	return "", fmt.Errorf("label %s: want positive, negative, 1 or 0", string(raw))
}

// Confusion counts predictions against truth for the positive class.
type Confusion struct {
	TruePositive  int `json:"tp"`
	FalsePositive int `json:"fp"`
	TrueNegative  int `json:"tn"`
	FalseNegative int `json:"fn"`
}

// Metrics are rounded to four decimal places. A ratio with a zero
// denominator is reported as 0.
type Metrics struct {
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	F1Score   float64 `json:"f1_score"`
	Accuracy  float64 `json:"accuracy"`
}

// Compute scores predicted against truth. Any prediction other than
// "positive" counts as a negative prediction.
func Compute(truth, predicted []string) (Metrics, Confusion) {
	var c Confusion
	correct := 0
	for i := range truth {
		t, p := truth[i] == positive, predicted[i] == positive
		switch {
		case t && p:
			c.TruePositive++
		case !t && p:
			c.FalsePositive++
		case t && !p:
			c.FalseNegative++
		default:
			c.TrueNegative++
		}
		if truth[i] == predicted[i] {
			correct++
		}
	}

	precision := ratio(c.TruePositive, c.TruePositive+c.FalsePositive)
	recall := ratio(c.TruePositive, c.TruePositive+c.FalseNegative)
	var f1 float64
	if precision+recall > 0 {
		f1 = 2 * precision * recall / (precision + recall)
	}
	return Metrics{
		Precision: round4(precision),
		Recall:    round4(recall),
		F1Score:   round4(f1),
		Accuracy:  round4(ratio(correct, len(truth))),
	}, c
}

func ratio(n, d int) float64 {
	if d == 0 {
		return 0
	}
	return float64(n) / float64(d)
}

func round4(x float64) float64 {
	return math.Round(x*1e4) / 1e4
}

// Predictor submits review text to the gateway. *gatewayclient.Client
// implements it.
type Predictor interface {
	Predict(ctx context.Context, text string) (string, error)
}

// Report is the result of evaluating a labeled set. Rejected and failed
// rows are excluded from the metrics.
type Report struct {
	Metrics
	Confusion Confusion `json:"confusion"`
	Total     int       `json:"total"`
	Scored    int       `json:"scored"`
	Rejected  int       `json:"rejected"`
	Failed    int       `json:"failed"`
}

// Run classifies every example through p and scores the answers. It stops
// early only when ctx is cancelled.
func Run(ctx context.Context, p Predictor, examples []Example) (Report, error) {
	rep := Report{Total: len(examples)}
	var truth, predicted []string

	for _, ex := range examples {
		if err := ctx.Err(); err != nil {
			return rep, err
		}
		label, err := p.Predict(ctx, ex.Text)
		if err != nil {
			var se *gatewayclient.StatusError
			if errors.As(err, &se) && se.Rejected() {
				rep.Rejected++
			} else {
				rep.Failed++
			}
			continue
		}
		truth = append(truth, ex.Label)
		predicted = append(predicted, label)
	}

	rep.Scored = len(truth)
	rep.Metrics, rep.Confusion = Compute(truth, predicted)
	return rep, nil
}

// Print writes a human-readable summary of rep.
func Print(w io.Writer, rep Report) {
	fmt.Fprintf(w, "The precision score is:  %.2f\n", rep.Precision)
	fmt.Fprintf(w, "The recall score is:  %.2f\n", rep.Recall)
	fmt.Fprintf(w, "The f1_score score is:  %.2f\n", rep.F1Score)
	fmt.Fprintf(w, "The accuracy score is:  %.2f\n", rep.Accuracy)
	fmt.Fprintf(w, "Scored %d of %d reviews (%d rejected, %d failed)\n", rep.Scored, rep.Total, rep.Rejected, rep.Failed)
}
