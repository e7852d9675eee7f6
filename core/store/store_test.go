package store_test

import (
	"context"
	"testing"
	"time"

	"bansync/core/models"
	"bansync/core/store"
	"bansync/core/store/storetest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stamp(t time.Time) *time.Time { return &t }

func seedUser(t *testing.T, s *store.Store, u models.User) {
	t.Helper()
	require.NoError(t, s.DB().Create(&u).Error)
}

func TestInsertUsersIfAbsent_KeepsExistingRows(t *testing.T) {
	ctx := context.Background()
	s := storetest.New(t)
	now := time.Now().UTC().Truncate(time.Second)

	seedUser(t, s, models.User{ID: "1", Name: "alice", LastRefreshedInfo: &now})

	require.NoError(t, s.InsertUsersIfAbsent(ctx, []string{"1", "2", "2", ""}))
	// Repeating is a no-op
	require.NoError(t, s.InsertUsersIfAbsent(ctx, []string{"1", "2"}))

	users, err := s.UsersByID(ctx, []string{"1", "2"})
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "alice", users["1"].Name)
	assert.NotNil(t, users["1"].LastRefreshedInfo)
	assert.Nil(t, users["2"].LastRefreshedInfo)
}

func TestFindOrCreateBan_RequiresUser(t *testing.T) {
	ctx := context.Background()
	s := storetest.New(t)

	_, _, err := s.FindOrCreateBan(ctx, models.Ban{ID: "b1", ListID: "l1", UserID: "nobody", Created: time.Unix(1700000000, 0).UTC()})
	assert.Error(t, err)

	var n int64
	require.NoError(t, s.DB().Model(&models.Ban{}).Count(&n).Error)
	assert.Zero(t, n)
}

func TestFindOrCreateBan(t *testing.T) {
	ctx := context.Background()
	s := storetest.New(t)
	require.NoError(t, s.InsertUsersIfAbsent(ctx, []string{"u1"}))

	ban := models.Ban{ID: "b1", ListID: "l1", UserID: "u1", Created: time.Unix(1700000000, 0).UTC(), Reason: "cheating"}

	stored, created, err := s.FindOrCreateBan(ctx, ban)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "cheating", stored.Reason)

	ban.Reason = "changed"
	stored, created, err = s.FindOrCreateBan(ctx, ban)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, "cheating", stored.Reason, "existing row is returned, not overwritten")
}

func TestInvalidateUser(t *testing.T) {
	ctx := context.Background()
	s := storetest.New(t)
	now := time.Now().UTC().Truncate(time.Second)
	seedUser(t, s, models.User{
		ID: "1", Name: "bob", ReputationPoints: 4,
		LastRefreshedInfo: &now, LastRefreshedReputationPoints: &now,
		LastRefreshedReputationRank: &now, LastRefreshedExport: &now,
	})

	require.NoError(t, s.InvalidateUser(ctx, "1"))

	u, err := s.GetUser(ctx, "1")
	require.NoError(t, err)
	assert.Nil(t, u.LastRefreshedInfo)
	assert.Nil(t, u.LastRefreshedReputationPoints)
	assert.Nil(t, u.LastRefreshedReputationRank)
	assert.Nil(t, u.LastRefreshedExport)
	assert.Equal(t, "bob", u.Name)
	assert.Equal(t, 4, u.ReputationPoints)
}

func TestOrphans_ScopedToListAndKeepSet(t *testing.T) {
	ctx := context.Background()
	s := storetest.New(t)
	now := time.Now().UTC().Truncate(time.Second)

	for _, id := range []string{"u1", "u2", "u3"} {
		seedUser(t, s, models.User{ID: id, LastRefreshedInfo: &now, LastRefreshedExport: &now})
	}
	for _, b := range []models.Ban{
		{ID: "a", ListID: "L", UserID: "u1"},
		{ID: "b", ListID: "L", UserID: "u2"},
		{ID: "c", ListID: "M", UserID: "u3"},
	} {
		_, _, err := s.FindOrCreateBan(ctx, b)
		require.NoError(t, err)
	}

	n, err := s.CountOrphans(ctx, "L", []string{"a"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	require.NoError(t, s.InvalidateOrphanOwners(ctx, "L", []string{"a"}))
	deleted, err := s.DeleteOrphans(ctx, "L", []string{"a"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	users, err := s.UsersByID(ctx, []string{"u1", "u2", "u3"})
	require.NoError(t, err)
	assert.NotNil(t, users["u1"].LastRefreshedInfo)
	assert.Nil(t, users["u2"].LastRefreshedInfo)
	assert.Nil(t, users["u2"].LastRefreshedExport)
	assert.NotNil(t, users["u3"].LastRefreshedInfo)

	bans, err := s.BansForUsers(ctx, []string{"u1", "u2", "u3"})
	require.NoError(t, err)
	var ids []string
	for _, b := range bans {
		ids = append(ids, b.ID)
	}
	assert.ElementsMatch(t, []string{"a", "c"}, ids)
}

func TestStaleProfileIDs(t *testing.T) {
	ctx := context.Background()
	s := storetest.New(t)
	now := time.Now().UTC().Truncate(time.Second)

	seedUser(t, s, models.User{ID: "fresh", LastRefreshedInfo: stamp(now.Add(-time.Hour))})
	seedUser(t, s, models.User{ID: "old", LastRefreshedInfo: stamp(now.Add(-8 * 24 * time.Hour))})
	seedUser(t, s, models.User{ID: "never"})

	ids, err := s.StaleProfileIDs(ctx, now.Add(-7*24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, []string{"never", "old"}, ids)
}

func TestPointsAndRanks(t *testing.T) {
	ctx := context.Background()
	s := storetest.New(t)
	now := time.Now().UTC().Truncate(time.Second)
	require.NoError(t, s.InsertUsersIfAbsent(ctx, []string{"a", "b"}))

	ids, err := s.UnscoredUserIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, ids)

	require.NoError(t, s.SavePoints(ctx, "a", store.Points{Current: 5, MonthBefore: 3, MonthChange: 2}, now))
	require.NoError(t, s.SaveRanks(ctx, map[string]int{"a": 1, "b": 2}, now))

	ids, err = s.UnscoredUserIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, ids)

	pts, err := s.AllPoints(ctx)
	require.NoError(t, err)
	require.Len(t, pts, 2)
	assert.Equal(t, store.UserPoints{ID: "a", ReputationPoints: 5}, pts[0])

	u, err := s.GetUser(ctx, "a")
	require.NoError(t, err)
	require.NotNil(t, u.ReputationRank)
	assert.Equal(t, 1, *u.ReputationRank)
	assert.Equal(t, 2, u.ReputationPointsMonthChange)
	require.NotNil(t, u.LastRefreshedReputationRank)
	assert.True(t, now.Equal(*u.LastRefreshedReputationRank))
}

func TestListsAndExports(t *testing.T) {
	ctx := context.Background()
	s := storetest.New(t)

	require.NoError(t, s.UpsertLists(ctx, []models.BanSourceList{
		{ID: "src", Provider: models.ProviderJSONFeed, Name: "Source"},
		{ID: "out", Provider: models.ProviderBucketExport, MinPoints: 3},
	}))
	require.NoError(t, s.UpsertLists(ctx, []models.BanSourceList{
		{ID: "src", Provider: models.ProviderJSONFeed, Name: "Renamed"},
	}))

	in, err := s.IngestLists(ctx)
	require.NoError(t, err)
	require.Len(t, in, 1)
	assert.Equal(t, "Renamed", in[0].Name)

	out, err := s.ExportLists(ctx)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.True(t, out[0].IsExport())

	rec := &models.ExportRecord{UserID: "u", ListID: "out", Status: models.ExportPendingCreate}
	require.NoError(t, s.CreateExportRecord(ctx, rec))
	require.NotZero(t, rec.ID)

	pending, err := s.PendingExports(ctx)
	require.NoError(t, err)
	assert.Len(t, pending, 1)

	require.NoError(t, s.SetExportStatus(ctx, rec.ID, models.ExportCreated))
	pending, err = s.PendingExports(ctx)
	require.NoError(t, err)
	assert.Empty(t, pending)

	require.NoError(t, s.DeleteExportRecord(ctx, rec.ID))
	recs, err := s.ExportRecordsForUsers(ctx, []string{"u"})
	require.NoError(t, err)
	assert.Empty(t, recs)
}
