package agent

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const excludedOnlyReply = `{
  "destinations": [
    {"name": "Lisbon", "country": "Portugal", "score": 92, "estimated_daily_cost": 120}
  ],
  "reasoning_summary": "Lisbon again"
}`

const mixedReply = `{
  "destinations": [
    {"name": "Lisbon", "country": "Portugal", "score": 92, "estimated_daily_cost": 120},
    {"name": "Porto", "country": "Portugal", "score": 85, "estimated_daily_cost": 90},
    {"name": "Seville", "country": "Spain", "score": 88, "estimated_daily_cost": 100}
  ],
  "reasoning_summary": "Iberian alternatives"
}`

func TestRecommendErrorsWhenModelIgnoresExclusions(t *testing.T) {
	// A model that only re-recommends rejected destinations must surface
	// an error, never an empty set with a nil error.
	provider := &capturingProvider{name: "openai/gpt-4o-mini", reply: excludedOnlyReply}
	rec := NewDestinationRecommender(provider)

	result, err := rec.Recommend(context.Background(), parsedFixture(), 1, []string{"Lisbon"})
	require.Error(t, err)
	assert.Nil(t, result)
	assert.Contains(t, err.Error(), "no destinations")
}

func TestRecommendDropsExcludedKeepsRest(t *testing.T) {
	provider := &capturingProvider{name: "openai/gpt-4o-mini", reply: mixedReply}
	rec := NewDestinationRecommender(provider)

	result, err := rec.Recommend(context.Background(), parsedFixture(), 3, []string{"lisbon"})
	require.NoError(t, err)
	require.Len(t, result.Destinations, 2)

	// Sorted by score, Lisbon gone
	assert.Equal(t, "Seville", result.Destinations[0].Name)
	assert.Equal(t, "Porto", result.Destinations[1].Name)
}

func TestRecommendExclusionListReachesPrompt(t *testing.T) {
	provider := &capturingProvider{name: "openai/gpt-4o-mini", reply: mixedReply}
	rec := NewDestinationRecommender(provider)

	_, err := rec.Recommend(context.Background(), parsedFixture(), 3, []string{"Lisbon", "Madrid"})
	require.NoError(t, err)
	require.Len(t, provider.prompts, 1)
	assert.Contains(t, provider.prompts[0], "REJECTED DESTINATIONS")
	assert.Contains(t, provider.prompts[0], "Lisbon, Madrid")
}
