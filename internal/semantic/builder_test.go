package semantic

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"casetrail/internal/domain"
)

func sampleCase() domain.Case {
	return domain.Case{
		ID:            "CASE003",
		CustomerName:  "ABC Enterprises",
		Amount:        600_000,
		DaysOverdue:   130,
		SLATargetDays: 30,
		Priority:      domain.PriorityCritical,
		Region:        "Maharashtra",
		Attempts:      3,
		AgencyRef:     "DCA-07",
	}
}

func TestBuild_Deterministic(t *testing.T) {
	c := sampleCase()

	first := Build(c)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first.Text, Build(c).Text)
		assert.Equal(t, first.PromptBody(), Build(c).PromptBody())
	}
}

func TestBuild_Tiers(t *testing.T) {
	tests := []struct {
		name        string
		amount      float64
		days        int
		attempts    int
		wantAmount  AmountTier
		wantOverdue OverdueTier
		wantAttempt AttemptTier
	}{
		{"small fresh case", 10_000, 5, 0, AmountUnder50K, OverdueUnder30, AttemptsNone},
		{"amount boundary 50k", 50_000, 30, 1, Amount50KTo2L, Overdue30To60, AttemptsFew},
		{"amount boundary 2L", 200_000, 61, 2, Amount2LTo5L, Overdue60To120, AttemptsFew},
		{"amount boundary 5L", 500_000, 120, 3, AmountOver5L, Overdue60To120, AttemptsMany},
		{"extreme case", 900_000, 200, 8, AmountOver5L, OverdueBeyond120, AttemptsMany},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := Build(domain.Case{ID: "C", Amount: tt.amount, DaysOverdue: tt.days, Attempts: tt.attempts})
			assert.Equal(t, tt.wantAmount, ctx.AmountTier)
			assert.Equal(t, tt.wantOverdue, ctx.OverdueTier)
			assert.Equal(t, tt.wantAttempt, ctx.AttemptTier)
		})
	}
}

func TestBuild_TextMentionsKeyFacts(t *testing.T) {
	ctx := Build(sampleCase())

	assert.Contains(t, ctx.Text, "CASE003")
	assert.Contains(t, ctx.Text, "critical")
	assert.Contains(t, ctx.Text, "Maharashtra")
	assert.Contains(t, ctx.Text, "critically overdue")
	assert.Contains(t, ctx.Text, "very high amount")
}

func TestPromptBody_Sections(t *testing.T) {
	body := Build(sampleCase()).PromptBody()

	assert.Contains(t, body, "FINANCIAL CONTEXT:")
	assert.Contains(t, body, "OVERDUE STATUS:")
	assert.Contains(t, body, "RECOVERY HISTORY:")
	assert.Contains(t, body, "Case ID: CASE003")
}
