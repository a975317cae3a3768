package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"casetrail/internal/domain"
	"casetrail/internal/oracle"
)

func rawOracle(payload string) oracle.RawVerdict {
	return oracle.RawVerdict{Source: domain.SourceOracle, Payload: []byte(payload)}
}

func TestValidate_WellFormed(t *testing.T) {
	v := New()

	verdict, err := v.Validate(rawOracle(
		`{"risk_level":"high","confidence":0.82,"reason":"  long overdue  ","recommended_action":"escalate"}`))
	require.NoError(t, err)

	assert.Equal(t, domain.RiskHigh, verdict.RiskLevel)
	assert.Equal(t, 0.82, verdict.Confidence)
	assert.Equal(t, "long overdue", verdict.Reason, "whitespace is trimmed")
	assert.Equal(t, "escalate", verdict.RecommendedAction)
	assert.Equal(t, domain.SourceOracle, verdict.Source)
}

func TestValidate_ConfidenceClamping(t *testing.T) {
	v := New()

	t.Run("above range clamps to 1.0", func(t *testing.T) {
		verdict, err := v.Validate(rawOracle(
			`{"risk_level":"LOW","confidence":1.4,"reason":"r","recommended_action":"a"}`))
		require.NoError(t, err)
		assert.Equal(t, 1.0, verdict.Confidence)
	})

	t.Run("below range clamps to 0.0", func(t *testing.T) {
		verdict, err := v.Validate(rawOracle(
			`{"risk_level":"LOW","confidence":-0.2,"reason":"r","recommended_action":"a"}`))
		require.NoError(t, err)
		assert.Equal(t, 0.0, verdict.Confidence)
	})

	t.Run("clamping disabled rejects out-of-range", func(t *testing.T) {
		strict := New(WithClamping(false))
		_, err := strict.Validate(rawOracle(
			`{"risk_level":"LOW","confidence":1.4,"reason":"r","recommended_action":"a"}`))
		var verr *Error
		require.ErrorAs(t, err, &verr)
	})

	t.Run("string confidence is coerced", func(t *testing.T) {
		verdict, err := v.Validate(rawOracle(
			`{"risk_level":"LOW","confidence":"0.6","reason":"r","recommended_action":"a"}`))
		require.NoError(t, err)
		assert.Equal(t, 0.6, verdict.Confidence)
	})

	t.Run("missing confidence gets the default", func(t *testing.T) {
		verdict, err := v.Validate(rawOracle(
			`{"risk_level":"LOW","reason":"r","recommended_action":"a"}`))
		require.NoError(t, err)
		assert.Equal(t, defaultConfidence, verdict.Confidence)
	})
}

func TestValidate_Rejections(t *testing.T) {
	v := New()

	tests := []struct {
		name    string
		payload string
	}{
		{"not JSON", `the case looks risky to me`},
		{"unknown risk level", `{"risk_level":"extreme","confidence":0.9,"reason":"r","recommended_action":"a"}`},
		{"missing risk level", `{"confidence":0.9,"reason":"r","recommended_action":"a"}`},
		{"unparseable confidence", `{"risk_level":"HIGH","confidence":"very sure","reason":"r","recommended_action":"a"}`},
		{"blank reason", `{"risk_level":"HIGH","confidence":0.9,"reason":"   ","recommended_action":"a"}`},
		{"blank action", `{"risk_level":"HIGH","confidence":0.9,"reason":"r","recommended_action":""}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := v.Validate(rawOracle(tt.payload))
			var verr *Error
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, []byte(tt.payload), verr.Raw, "raw payload is preserved for diagnosis")
		})
	}
}

func TestValidate_RecoveryInference(t *testing.T) {
	v := New()

	t.Run("missing recovery fields inferred from risk level", func(t *testing.T) {
		verdict, err := v.Validate(rawOracle(
			`{"risk_level":"MEDIUM","confidence":0.6,"reason":"r","recommended_action":"a"}`))
		require.NoError(t, err)
		assert.Equal(t, domain.RecoveryModerate, verdict.RecoveryProbability)
		assert.Equal(t, 50, verdict.RecoveryPercent)
	})

	t.Run("supplied recovery fields pass through", func(t *testing.T) {
		verdict, err := v.Validate(rawOracle(
			`{"risk_level":"LOW","confidence":0.9,"reason":"r","recommended_action":"a",
			  "recovery_probability":"very high","recovery_percentage":88}`))
		require.NoError(t, err)
		assert.Equal(t, domain.RecoveryVeryHigh, verdict.RecoveryProbability)
		assert.Equal(t, 88, verdict.RecoveryPercent)
	})

	t.Run("out-of-range percentage clamps", func(t *testing.T) {
		verdict, err := v.Validate(rawOracle(
			`{"risk_level":"LOW","confidence":0.9,"reason":"r","recommended_action":"a",
			  "recovery_probability":"HIGH","recovery_percentage":140}`))
		require.NoError(t, err)
		assert.Equal(t, 100, verdict.RecoveryPercent)
	})
}

func TestValidate_SourcePreserved(t *testing.T) {
	v := New()

	raw := oracle.RawVerdict{
		Source:  domain.SourceFallback,
		Payload: []byte(`{"risk_level":"LOW","confidence":0.5,"reason":"r","recommended_action":"a"}`),
	}
	verdict, err := v.Validate(raw)
	require.NoError(t, err)
	assert.Equal(t, domain.SourceFallback, verdict.Source)
}
