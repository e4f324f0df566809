package evaluate

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/gonkalabs/reviewsense/internal/gatewayclient"
)

// MockPredictor is a mock implementation of Predictor
type MockPredictor struct {
	mock.Mock
}

func (m *MockPredictor) Predict(ctx context.Context, text string) (string, error) {
	args := m.Called(ctx, text)
	return args.String(0), args.Error(1)
}

func TestCompute(t *testing.T) {
	// tp=3 fp=1 fn=2 tn=4
	truth := []string{"positive", "positive", "positive", "negative", "positive", "positive", "negative", "negative", "negative", "negative"}
	pred := []string{"positive", "positive", "positive", "positive", "negative", "negative", "negative", "negative", "negative", "negative"}

	m, c := Compute(truth, pred)

	assert.Equal(t, Confusion{TruePositive: 3, FalsePositive: 1, TrueNegative: 4, FalseNegative: 2}, c)
	assert.Equal(t, Metrics{Precision: 0.75, Recall: 0.6, F1Score: 0.6667, Accuracy: 0.7}, m)
}

func TestCompute_Degenerate(t *testing.T) {
	m, c := Compute(nil, nil)
	assert.Equal(t, Metrics{}, m)
	assert.Equal(t, Confusion{}, c)

	m, _ = Compute([]string{"negative", "negative"}, []string{"negative", "neutral"})
	assert.Equal(t, Metrics{Accuracy: 0.5}, m)
}

func TestReadJSONL(t *testing.T) {
	in := `{"text":"Loved it","label":"positive"}

{"text":"Dull","label":"Negative"}
{"text":"Superb","label":1}
{"text":"Awful","label":0}
`
	got, err := ReadJSONL(strings.NewReader(in))

	require.NoError(t, err)
	assert.Equal(t, []Example{
		{Text: "Loved it", Label: "positive"},
		{Text: "Dull", Label: "negative"},
		{Text: "Superb", Label: "positive"},
		{Text: "Awful", Label: "negative"},
	}, got)
}

func TestReadJSONL_Errors(t *testing.T) {
	for name, in := range map[string]string{
		"bad json":   "{\"text\":\n",
		"bad label":  `{"text":"x","label":"neutral"}`,
		"bad number": `{"text":"x","label":2}`,
		"missing":    `{"text":"x"}`,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := ReadJSONL(strings.NewReader(in))
			require.Error(t, err)
			assert.Contains(t, err.Error(), "line 1")
		})
	}
}

func TestRun(t *testing.T) {
	m := new(MockPredictor)
	m.On("Predict", mock.Anything, "great").Return("positive", nil)
	m.On("Predict", mock.Anything, "awful").Return("negative", nil)
	m.On("Predict", mock.Anything, "stocks").Return("", &gatewayclient.StatusError{StatusCode: 422, Detail: "Not a movie review, invalid input"})
	m.On("Predict", mock.Anything, "slow").Return("", &gatewayclient.StatusError{StatusCode: 408, Detail: "timeout"})
	m.On("Predict", mock.Anything, "down").Return("", errors.New("connection refused"))

	rep, err := Run(context.Background(), m, []Example{
		{Text: "great", Label: "positive"},
		{Text: "awful", Label: "positive"},
		{Text: "stocks", Label: "negative"},
		{Text: "slow", Label: "positive"},
		{Text: "down", Label: "negative"},
	})

	require.NoError(t, err)
	assert.Equal(t, 5, rep.Total)
	assert.Equal(t, 2, rep.Scored)
	assert.Equal(t, 1, rep.Rejected)
	assert.Equal(t, 2, rep.Failed)
	assert.Equal(t, Confusion{TruePositive: 1, FalseNegative: 1}, rep.Confusion)
	assert.Equal(t, Metrics{Precision: 1, Recall: 0.5, F1Score: 0.6667, Accuracy: 0.5}, rep.Metrics)
}

func TestRun_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	m := new(MockPredictor)

	_, err := Run(ctx, m, []Example{{Text: "great", Label: "positive"}})

	assert.ErrorIs(t, err, context.Canceled)
	m.AssertNotCalled(t, "Predict", mock.Anything, mock.Anything)
}

func TestPrint(t *testing.T) {
	var buf bytes.Buffer
	Print(&buf, Report{Metrics: Metrics{Precision: 0.75, Recall: 0.6, F1Score: 0.6667, Accuracy: 0.7}, Total: 10, Scored: 10})

	assert.Equal(t, "The precision score is:  0.75\n"+
		"The recall score is:  0.60\n"+
		"The f1_score score is:  0.67\n"+
		"The accuracy score is:  0.70\n"+
		"Scored 10 of 10 reviews (0 rejected, 0 failed)\n", buf.String())
}
