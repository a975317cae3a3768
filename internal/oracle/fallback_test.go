package oracle

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"casetrail/internal/domain"
	"casetrail/internal/semantic"
)

func buildContext(amount float64, days, attempts int) semantic.Context {
	return semantic.Build(domain.Case{
		ID:          "CASE-T",
		Amount:      amount,
		DaysOverdue: days,
		Attempts:    attempts,
		Priority:    domain.PriorityMedium,
		Region:      "Karnataka",
	})
}

func classify(t *testing.T, amount float64, days, attempts int) fallbackPayload {
	t.Helper()
	raw, err := NewFallback().Classify(context.Background(), buildContext(amount, days, attempts))
	require.NoError(t, err)
	require.Equal(t, domain.SourceFallback, raw.Source)

	var p fallbackPayload
	require.NoError(t, json.Unmarshal(raw.Payload, &p))
	return p
}

func TestFallback_RulePriority(t *testing.T) {
	tests := []struct {
		name      string
		amount    float64
		days      int
		attempts  int
		wantLevel domain.RiskLevel
		bandLow   float64
		bandHigh  float64
	}{
		{"rule 1: severe case", 600_000, 130, 3, domain.RiskHigh, 0.85, 0.95},
		{"rule 2: high amount long overdue", 250_000, 70, 0, domain.RiskHigh, 0.70, 0.85},
		{"rule 2 wins over rule 3", 300_000, 100, 2, domain.RiskHigh, 0.70, 0.85},
		{"rule 3: aging case", 40_000, 95, 0, domain.RiskMedium, 0.55, 0.70},
		{"rule 3: repeated attempts", 40_000, 10, 2, domain.RiskMedium, 0.55, 0.70},
		{"rule 4: fresh small case", 10_000, 5, 0, domain.RiskLow, 0.40, 0.55},
		{"rule 1 requires all three conditions", 600_000, 130, 2, domain.RiskHigh, 0.70, 0.85},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := classify(t, tt.amount, tt.days, tt.attempts)
			assert.Equal(t, string(tt.wantLevel), p.RiskLevel)
			assert.GreaterOrEqual(t, p.Confidence, tt.bandLow)
			assert.Less(t, p.Confidence, tt.bandHigh)
			assert.NotEmpty(t, p.Reason)
			assert.NotEmpty(t, p.RecommendedAction)
		})
	}
}

func TestFallback_Deterministic(t *testing.T) {
	first := classify(t, 320_000, 85, 4)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, classify(t, 320_000, 85, 4))
	}
}

func TestFallback_ConfidenceMonotonic(t *testing.T) {
	// Within rule 1, worse inputs must never lower confidence.
	mild := classify(t, 550_000, 125, 3)
	severe := classify(t, 950_000, 250, 9)

	assert.Equal(t, string(domain.RiskHigh), mild.RiskLevel)
	assert.Equal(t, string(domain.RiskHigh), severe.RiskLevel)
	assert.Greater(t, severe.Confidence, mild.Confidence)
}

func TestFallback_TotalOverInvariantRange(t *testing.T) {
	// Boundary sweep: every valid case yields a parseable, in-band verdict.
	amounts := []float64{0, 49_999, 50_000, 200_000, 200_001, 500_000, 500_001, 2_000_000}
	days := []int{0, 29, 30, 60, 61, 90, 91, 120, 121, 400}
	attempts := []int{0, 1, 2, 3, 10}

	for _, a := range amounts {
		for _, d := range days {
			for _, n := range attempts {
				p := classify(t, a, d, n)
				_, err := domain.ParseRiskLevel(p.RiskLevel)
				require.NoError(t, err)
				require.GreaterOrEqual(t, p.Confidence, 0.40)
				require.Less(t, p.Confidence, 0.95)
			}
		}
	}
}

func TestFallback_RecoveryFieldsPresent(t *testing.T) {
	p := classify(t, 600_000, 130, 5)
	assert.Equal(t, string(domain.RecoveryVeryLow), p.RecoveryProbability)
	assert.Equal(t, 15, p.RecoveryPercentage)
}
