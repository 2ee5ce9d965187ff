package storage

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func newCycle(mode, provider string, success bool) *Cycle {
	c := &Cycle{
		CycleID:              uuid.NewString(),
		Mode:                 mode,
		Provider:             provider,
		SourceLanguage:       "de",
		TargetLanguage:       "en",
		OriginalText:         "Hallo Welt",
		ResultText:           "Hello world",
		CharacterCount:       10,
		DetectionLatencyMs:   40,
		TranslationLatencyMs: 600,
		TotalLatencyMs:       700,
		Success:              success,
	}
	if !success {
		c.ResultText = ""
		c.ErrorMessage = "backend unavailable"
	}
	return c
}

func TestSaveAndGetCycles(t *testing.T) {
	db := openTestDB(t)

	first := newCycle("translate", "azure", true)
	require.NoError(t, db.SaveCycle(first))
	assert.NotZero(t, first.ID)

	second := newCycle("correct", "openai", false)
	require.NoError(t, db.SaveCycle(second))

	cycles, err := db.GetCycles(10, 0)
	require.NoError(t, err)
	require.Len(t, cycles, 2)
	assert.Equal(t, second.CycleID, cycles[0].CycleID)
	assert.Equal(t, "backend unavailable", cycles[0].ErrorMessage)
	assert.False(t, cycles[0].Timestamp.IsZero())

	count, err := db.GetCycleCount()
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	got, err := db.GetCycle(first.CycleID)
	require.NoError(t, err)
	assert.Equal(t, "Hello world", got.ResultText)
	assert.True(t, got.Success)
}

func TestGetCycle_NotFound(t *testing.T) {
	db := openTestDB(t)

	_, err := db.GetCycle(uuid.NewString())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteCycle(t *testing.T) {
	db := openTestDB(t)

	c := newCycle("translate", "azure", true)
	require.NoError(t, db.SaveCycle(c))
	require.NoError(t, db.DeleteCycle(c.ID))

	assert.ErrorIs(t, db.DeleteCycle(c.ID), ErrNotFound)

	count, err := db.GetCycleCount()
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestStats(t *testing.T) {
	db := openTestDB(t)

	require.NoError(t, db.SaveCycle(newCycle("translate", "azure", true)))
	require.NoError(t, db.SaveCycle(newCycle("translate", "azure", false)))
	require.NoError(t, db.SaveCycle(newCycle("correct", "openai", true)))

	overall, err := db.GetOverallStats(7)
	require.NoError(t, err)
	assert.Equal(t, 3, overall.TotalCycles)
	assert.Equal(t, 2, overall.SuccessCount)
	assert.Equal(t, 1, overall.FailureCount)
	assert.Equal(t, 30, overall.TotalCharacters)
	assert.InDelta(t, 700, overall.AvgTotalLatencyMs, 0.001)

	modes, err := db.GetModeStats(7)
	require.NoError(t, err)
	require.Len(t, modes, 2)
	assert.Equal(t, "translate", modes[0].Key)
	assert.Equal(t, 2, modes[0].TotalCycles)

	providers, err := db.GetProviderStats(7)
	require.NoError(t, err)
	require.Len(t, providers, 2)

	daily, err := db.GetDailyStats(7)
	require.NoError(t, err)
	require.Len(t, daily, 1)
	assert.Equal(t, 3, daily[0].TotalCycles)
}

func TestOverallStats_Empty(t *testing.T) {
	db := openTestDB(t)

	overall, err := db.GetOverallStats(7)
	require.NoError(t, err)
	assert.Zero(t, overall.TotalCycles)
	assert.Zero(t, overall.SuccessCount)
}
