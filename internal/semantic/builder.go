// Package semantic turns raw case numbers into the decision-ready context the
// reasoning oracle consumes. The oracle only ever reasons over this derived
// description, never over the case store itself.
package semantic

import (
	"fmt"
	"strings"

	"casetrail/internal/domain"
)

// Tier indices. Kept on the context so the deterministic fallback can reuse
// the same bucketing the description was built from.
type (
	AmountTier  int
	OverdueTier int
	AttemptTier int
)

const (
	AmountUnder50K AmountTier = iota // < ₹50,000
	Amount50KTo2L                    // ₹50,000 – ₹2,00,000
	Amount2LTo5L                     // ₹2,00,000 – ₹5,00,000
	AmountOver5L                     // > ₹5,00,000
)

const (
	OverdueUnder30 OverdueTier = iota // < 30 days
	Overdue30To60                     // 30 – 60 days
	Overdue60To120                    // 60 – 120 days
	OverdueBeyond120                  // > 120 days
)

const (
	AttemptsNone AttemptTier = iota // no attempts yet
	AttemptsFew                     // 1 – 2 attempts
	AttemptsMany                    // 3+ attempts
)

// Context is the short-lived semantic view of one case. It exists only within
// a single pipeline invocation and is never persisted.
type Context struct {
	CaseID      string
	Text        string // single deterministic sentence
	AmountTier  AmountTier
	OverdueTier OverdueTier
	AttemptTier AttemptTier

	// Raw values the fallback strategy needs; the tiers alone are too coarse
	// for its confidence bands.
	Amount      float64
	DaysOverdue int
	Attempts    int
}

// Build derives the semantic context for a case. Identical input yields a
// byte-identical Text, which is what makes oracle-response caching safe.
func Build(c domain.Case) Context {
	amountTier := bucketAmount(c.Amount)
	overdueTier := bucketOverdue(c.DaysOverdue)
	attemptTier := bucketAttempts(c.Attempts)

	text := fmt.Sprintf(
		"Case %s: %s priority debt of %s in %s, %s, %s.",
		c.ID,
		c.Priority,
		amountPhrase(amountTier, c.Amount),
		regionPhrase(c.Region),
		overduePhrase(overdueTier, c.DaysOverdue),
		attemptsPhrase(attemptTier, c.Attempts),
	)

	return Context{
		CaseID:      c.ID,
		Text:        text,
		AmountTier:  amountTier,
		OverdueTier: overdueTier,
		AttemptTier: attemptTier,
		Amount:      c.Amount,
		DaysOverdue: c.DaysOverdue,
		Attempts:    c.Attempts,
	}
}

// PromptBody renders the sectioned case brief sent to the remote oracle.
// Same determinism contract as Text.
func (c Context) PromptBody() string {
	var b strings.Builder
	b.WriteString("CASE DETAILS FOR RISK ASSESSMENT:\n")
	fmt.Fprintf(&b, "Case ID: %s\n", c.CaseID)
	b.WriteString("\nFINANCIAL CONTEXT:\n")
	fmt.Fprintf(&b, "- Amount: %s\n", amountPhrase(c.AmountTier, c.Amount))
	b.WriteString("\nOVERDUE STATUS:\n")
	fmt.Fprintf(&b, "- Duration: %s\n", overduePhrase(c.OverdueTier, c.DaysOverdue))
	b.WriteString("\nRECOVERY HISTORY:\n")
	fmt.Fprintf(&b, "- Past Attempts: %s\n", attemptsPhrase(c.AttemptTier, c.Attempts))
	b.WriteString("\nSUMMARY:\n")
	fmt.Fprintf(&b, "%s\n", c.Text)
	return b.String()
}

func bucketAmount(amount float64) AmountTier {
	switch {
	case amount < 50_000:
		return AmountUnder50K
	case amount < 200_000:
		return Amount50KTo2L
	case amount < 500_000:
		return Amount2LTo5L
	default:
		return AmountOver5L
	}
}

func bucketOverdue(days int) OverdueTier {
	switch {
	case days < 30:
		return OverdueUnder30
	case days <= 60:
		return Overdue30To60
	case days <= 120:
		return Overdue60To120
	default:
		return OverdueBeyond120
	}
}

func bucketAttempts(attempts int) AttemptTier {
	switch {
	case attempts == 0:
		return AttemptsNone
	case attempts <= 2:
		return AttemptsFew
	default:
		return AttemptsMany
	}
}

func amountPhrase(tier AmountTier, amount float64) string {
	switch tier {
	case AmountUnder50K:
		return fmt.Sprintf("a low amount (₹%.0f, below ₹50,000)", amount)
	case Amount50KTo2L:
		return fmt.Sprintf("a medium amount (₹%.0f, between ₹50,000 and ₹2,00,000)", amount)
	case Amount2LTo5L:
		return fmt.Sprintf("a high amount (₹%.0f, between ₹2,00,000 and ₹5,00,000)", amount)
	default:
		return fmt.Sprintf("a very high amount (₹%.0f, above ₹5,00,000)", amount)
	}
}

func overduePhrase(tier OverdueTier, days int) string {
	switch tier {
	case OverdueUnder30:
		return fmt.Sprintf("recently overdue (%d days)", days)
	case Overdue30To60:
		return fmt.Sprintf("moderately overdue (%d days, needs attention)", days)
	case Overdue60To120:
		return fmt.Sprintf("long overdue (%d days, serious concern)", days)
	default:
		return fmt.Sprintf("critically overdue (%d days, immediate action required)", days)
	}
}

func attemptsPhrase(tier AttemptTier, attempts int) string {
	switch tier {
	case AttemptsNone:
		return "no recovery attempts made yet"
	case AttemptsFew:
		return fmt.Sprintf("few recovery attempts (%d)", attempts)
	default:
		return fmt.Sprintf("multiple failed recovery attempts (%d)", attempts)
	}
}

func regionPhrase(region string) string {
	if region == "" {
		return "an unspecified region"
	}
	return region
}
