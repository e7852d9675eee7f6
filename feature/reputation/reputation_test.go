package reputation

import (
	"context"
	"testing"
	"time"

	"bansync/core/models"
	"bansync/core/store"
	"bansync/core/store/storetest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var now = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

func at(t time.Time) *time.Time { return &t }

func TestPoints(t *testing.T) {
	tests := []struct {
		name string
		bans []models.Ban
		want int
	}{
		{"no bans", nil, 0},
		{"one active", []models.Ban{{ListID: "A"}}, 3},
		{"one active two expired same list", []models.Ban{
			{ListID: "A"}, {ListID: "A", Expired: true}, {ListID: "A", Expired: true},
		}, 5},
		{"two active same list count once", []models.Ban{{ListID: "A"}, {ListID: "A"}}, 3},
		{"only expired", []models.Ban{{ListID: "A", Expired: true}}, 1},
		{"lists sum independently", []models.Ban{
			{ListID: "A"}, {ListID: "A", Expired: true}, {ListID: "A", Expired: true},
			{ListID: "B"}, {ListID: "C", Expired: true},
		}, 9},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Points(tt.bans))
		})
	}
}

func TestPointsAsOf(t *testing.T) {
	cutoff := now.AddDate(0, -1, 0)

	bans := []models.Ban{
		// Created after cutoff: ignored.
		{ListID: "A", Created: now.Add(-time.Hour)},
		// Active at cutoff, expired since.
		{ListID: "B", Created: cutoff.Add(-48 * time.Hour), Expires: at(cutoff.Add(time.Hour)), Expired: true},
		// Already expired at cutoff.
		{ListID: "C", Created: cutoff.Add(-48 * time.Hour), Expires: at(cutoff)},
		// Lifted without an expiry date: expired.
		{ListID: "D", Created: cutoff.Add(-48 * time.Hour), Expired: true},
		// Permanent and not lifted: active.
		{ListID: "E", Created: cutoff.Add(-48 * time.Hour)},
	}

	assert.Equal(t, 3+1+1+3, PointsAsOf(bans, cutoff))
}

func TestRank(t *testing.T) {
	ranks := Rank([]store.UserPoints{
		{ID: "c", ReputationPoints: 7},
		{ID: "a", ReputationPoints: 10},
		{ID: "b", ReputationPoints: 10},
		{ID: "d", ReputationPoints: 0},
		{ID: "e", ReputationPoints: 7},
	})

	assert.Equal(t, map[string]int{"a": 1, "b": 1, "c": 3, "e": 3, "d": 5}, ranks)
	assert.Empty(t, Rank(nil))
}

func TestScorer_Run(t *testing.T) {
	ctx := context.Background()
	s := storetest.New(t)
	require.NoError(t, s.InsertUsersIfAbsent(ctx, []string{"u1", "u2", "u3"}))

	old := now.AddDate(0, -2, 0)
	for _, b := range []models.Ban{
		{ID: "1", ListID: "A", UserID: "u1", Created: old},
		{ID: "2", ListID: "A", UserID: "u1", Created: old, Expired: true, Expires: at(old.Add(time.Hour))},
		{ID: "3", ListID: "A", UserID: "u1", Created: now.Add(-time.Hour), Expired: true, Expires: at(now.Add(-time.Minute))},
		{ID: "4", ListID: "B", UserID: "u2", Created: now.Add(-time.Hour)},
	} {
		_, _, err := s.FindOrCreateBan(ctx, b)
		require.NoError(t, err)
	}

	// u3 is already scored and must not be recomputed.
	require.NoError(t, s.SavePoints(ctx, "u3", store.Points{Current: 42}, now.Add(-time.Hour)))

	scorer := NewScorer(s, zap.NewNop())
	scorer.now = func() time.Time { return now }

	report, err := scorer.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, report.Scored)
	assert.Equal(t, 3, report.Ranked)

	u1, err := s.GetUser(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 5, u1.ReputationPoints)
	assert.Equal(t, 4, u1.ReputationPointsMonthBefore)
	assert.Equal(t, 1, u1.ReputationPointsMonthChange)
	require.NotNil(t, u1.ReputationRank)
	assert.Equal(t, 2, *u1.ReputationRank)

	u2, err := s.GetUser(ctx, "u2")
	require.NoError(t, err)
	assert.Equal(t, 3, u2.ReputationPoints)
	assert.Equal(t, 0, u2.ReputationPointsMonthBefore)
	assert.Equal(t, 3, *u2.ReputationRank)

	u3, err := s.GetUser(ctx, "u3")
	require.NoError(t, err)
	assert.Equal(t, 42, u3.ReputationPoints)
	assert.Equal(t, 1, *u3.ReputationRank)
	require.NotNil(t, u3.LastRefreshedReputationRank)
	assert.True(t, now.Equal(*u3.LastRefreshedReputationRank))
}
