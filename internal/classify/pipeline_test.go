package classify

import (
	"testing"

	"github.com/mark3labs/flyt"
	"github.com/stretchr/testify/assert"
)

var (
	_ flyt.Node          = (*filterNode)(nil)
	_ flyt.Node          = (*sentimentNode)(nil)
	_ flyt.RetryableNode = (*filterNode)(nil)
	_ flyt.RetryableNode = (*sentimentNode)(nil)
)

func TestStageNodes_SingleAttempt(t *testing.T) {
	c := New(new(MockCompleter), testConfig)
	filter, sentiment := c.newNodes()

	for _, n := range []flyt.RetryableNode{filter, sentiment} {
		assert.Equal(t, 1, n.GetMaxRetries())
		assert.Zero(t, n.GetWait())
	}
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "yes", normalize("  YES\n"))
	assert.Equal(t, "yes.", normalize("Yes."))
	assert.Equal(t, "", normalize(" \t"))
}
