package integrity

import (
	"context"
	"testing"

	"bansync/core/models"
	"bansync/core/storage/mocks"
	"bansync/core/store"
	"bansync/core/store/storetest"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func seededStore(t *testing.T) *store.Store {
	s := storetest.New(t)
	require.NoError(t, s.UpsertLists(context.Background(), []models.BanSourceList{
		{ID: "feed", Name: "Feed", Provider: models.ProviderJSONFeed, URL: "https://example.test/bans"},
		{ID: "dump", Name: "Dump", Provider: models.ProviderBucketDump, URL: "dumps/dump.json"},
		{ID: "community", Name: "Community", Provider: models.ProviderBucketExport},
	}))
	return s
}

func emptyListing() <-chan minio.ObjectInfo {
	ch := make(chan minio.ObjectInfo)
	close(ch)
	return ch
}

func TestService_CheckStructure(t *testing.T) {
	s := seededStore(t)
	mockClient := new(mocks.Client)
	svc := NewService(mockClient, "bans", "exports", s, s.DB(), zap.NewNop())

	mockClient.On("BucketExists", mock.Anything, "bans").Return(true, nil)
	mockClient.On("ListObjects", mock.Anything, "bans", mock.MatchedBy(func(o minio.ListObjectsOptions) bool {
		return o.Prefix == "exports/community/"
	})).Return(emptyListing())

	missing, err := svc.CheckStructure(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"exports/community"}, missing)

	mockClient.On("PutObject", mock.Anything, "bans", "exports/community/", mock.Anything, int64(0), mock.Anything).
		Return(minio.UploadInfo{}, nil)
	assert.NoError(t, svc.FixStructure(context.Background(), missing))
	mockClient.AssertExpectations(t)
}

func TestService_CheckDumps(t *testing.T) {
	s := seededStore(t)
	mockClient := new(mocks.Client)
	svc := NewService(mockClient, "bans", "exports", s, s.DB(), zap.NewNop())

	mockClient.On("BucketExists", mock.Anything, "bans").Return(true, nil)
	mockClient.On("ListObjects", mock.Anything, "bans", mock.Anything).Return(emptyListing())

	missing, err := svc.CheckDumps(context.Background())
	require.NoError(t, err)
	// Only bucket-dump lists have an object to check.
	assert.Equal(t, []string{"dumps/dump.json"}, missing)
	mockClient.AssertNumberOfCalls(t, "ListObjects", 1)
}

func TestService_CheckAll(t *testing.T) {
	s := seededStore(t)
	mockClient := new(mocks.Client)
	svc := NewService(mockClient, "bans", "exports", s, s.DB(), zap.NewNop())

	mockClient.On("BucketExists", mock.Anything, "bans").Return(false, nil)

	r := svc.CheckAll(context.Background())
	assert.NotNil(t, r.Schema)
	assert.Equal(t, "error", r.Structure.(map[string]any)["status"])
	assert.Equal(t, "error", r.Dumps.(map[string]any)["status"])
}
