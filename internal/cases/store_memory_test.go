package cases

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"casetrail/internal/domain"
	"casetrail/pkg/platform/sentinel"
)

func TestInMemoryStore_GetAndList(t *testing.T) {
	store := NewInMemoryStore(
		domain.Case{ID: "CASE001", Amount: 10_000, SLATargetDays: 60},
		domain.Case{ID: "CASE002", Amount: 600_000, SLATargetDays: 30},
	)
	ctx := context.Background()

	got, err := store.Get(ctx, "CASE002")
	require.NoError(t, err)
	assert.Equal(t, 600_000.0, got.Amount)

	_, err = store.Get(ctx, "CASE999")
	assert.ErrorIs(t, err, sentinel.ErrNotFound)

	list, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "CASE001", list[0].ID, "list preserves seed order")
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cases.json")
	content := `[
		{"case_id":"CASE001","customer_name":"Ravi Kumar","amount":15000,
		 "days_overdue":10,"sla_target_days":60,"priority":"low",
		 "region":"Tamil Nadu","past_attempts":0,"assigned_agency":"DCA-01"},
		{"case_id":"CASE003","customer_name":"ABC Enterprises","amount":600000,
		 "days_overdue":130,"sla_target_days":30,"priority":"critical",
		 "region":"Maharashtra","past_attempts":3,"assigned_agency":"DCA-07"}
	]`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	store, err := LoadFile(path)
	require.NoError(t, err)

	got, err := store.Get(context.Background(), "CASE003")
	require.NoError(t, err)
	assert.Equal(t, domain.PriorityCritical, got.Priority)
	assert.Equal(t, 3, got.Attempts)
	assert.Equal(t, "DCA-07", got.AgencyRef)
}

func TestLoadFile_NormalizesPriority(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cases.json")
	content := `[
		{"case_id":"CASE004","customer_name":"Priya Sharma","amount":42000,
		 "days_overdue":45,"sla_target_days":60,"priority":" HIGH ",
		 "region":"Karnataka","past_attempts":1,"assigned_agency":"DCA-03"}
	]`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	store, err := LoadFile(path)
	require.NoError(t, err)

	got, err := store.Get(context.Background(), "CASE004")
	require.NoError(t, err)
	assert.Equal(t, domain.PriorityHigh, got.Priority)
}

func TestLoadFile_Invalid(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := LoadFile(filepath.Join(t.TempDir(), "missing.json"))
		assert.Error(t, err)
	})

	t.Run("malformed JSON", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "cases.json")
		require.NoError(t, os.WriteFile(path, []byte(`{not json`), 0o600))
		_, err := LoadFile(path)
		assert.Error(t, err)
	})

	t.Run("case violating invariants", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "cases.json")
		require.NoError(t, os.WriteFile(path, []byte(`[{"case_id":"C1","amount":-5}]`), 0o600))
		_, err := LoadFile(path)
		assert.Error(t, err)
	})

	t.Run("unknown priority", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "cases.json")
		require.NoError(t, os.WriteFile(path, []byte(`[{"case_id":"C1","amount":5,"priority":"urgent"}]`), 0o600))
		_, err := LoadFile(path)
		assert.ErrorContains(t, err, "unknown priority")
	})
}
