package integrity

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"bansync/core/storage/mocks"

	"github.com/gofiber/fiber/v2"
	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setupTestApp(t *testing.T) (*fiber.App, *mocks.Client) {
	app := fiber.New()
	mockClient := new(mocks.Client)
	s := seededStore(t)
	svc := NewService(mockClient, "bans", "exports", s, s.DB(), zap.NewNop())
	NewHandler(svc).RegisterRoutes(app)
	return app, mockClient
}

func decode(t *testing.T, app *fiber.App, target string) (int, map[string]any) {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest("GET", target, nil))
	require.NoError(t, err)
	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return resp.StatusCode, body
}

func TestHandleSchemaCheck(t *testing.T) {
	app, _ := setupTestApp(t)

	status, body := decode(t, app, "/integrity/schema")
	assert.Equal(t, 200, status)
	assert.Equal(t, true, body["matched"])
}

func TestHandleStructureCheck(t *testing.T) {
	app, mockClient := setupTestApp(t)
	mockClient.On("BucketExists", mock.Anything, "bans").Return(true, nil)
	mockClient.On("ListObjects", mock.Anything, "bans", mock.Anything).Return(emptyListing())

	status, body := decode(t, app, "/integrity/structure")
	assert.Equal(t, 200, status)
	assert.Equal(t, "checked", body["status"])
	assert.Equal(t, []any{"exports/community"}, body["missing"])
	mockClient.AssertNotCalled(t, "PutObject", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestHandleStructureCheck_Fix(t *testing.T) {
	app, mockClient := setupTestApp(t)
	mockClient.On("BucketExists", mock.Anything, "bans").Return(true, nil)
	mockClient.On("ListObjects", mock.Anything, "bans", mock.Anything).Return(emptyListing())
	mockClient.On("PutObject", mock.Anything, "bans", "exports/community/", mock.Anything, int64(0), mock.Anything).
		Return(minio.UploadInfo{}, nil)

	status, body := decode(t, app, "/integrity/structure?fix=true")
	assert.Equal(t, 200, status)
	assert.Equal(t, "fixed", body["status"])
}

func TestHandleStructureCheck_BucketMissing(t *testing.T) {
	app, mockClient := setupTestApp(t)
	mockClient.On("BucketExists", mock.Anything, "bans").Return(false, nil)

	status, body := decode(t, app, "/integrity/structure")
	assert.Equal(t, 500, status)
	assert.Contains(t, body["error"], "does not exist")
}

func TestHandleDumpCheck(t *testing.T) {
	app, mockClient := setupTestApp(t)
	mockClient.On("BucketExists", mock.Anything, "bans").Return(true, nil)
	ch := make(chan minio.ObjectInfo, 1)
	ch <- minio.ObjectInfo{Key: "dumps/dump.json"}
	close(ch)
	mockClient.On("ListObjects", mock.Anything, "bans", mock.Anything).Return((<-chan minio.ObjectInfo)(ch))

	status, body := decode(t, app, "/integrity/dumps")
	assert.Equal(t, 200, status)
	assert.Nil(t, body["missing"])
}

func TestHandleIntegrityCheck(t *testing.T) {
	app, mockClient := setupTestApp(t)
	mockClient.On("BucketExists", mock.Anything, "bans").Return(true, nil)
	mockClient.On("ListObjects", mock.Anything, "bans", mock.Anything).Return(emptyListing())

	status, body := decode(t, app, "/integrity")
	assert.Equal(t, 200, status)
	assert.Contains(t, body, "schema")
	assert.Contains(t, body, "structure")
	assert.Contains(t, body, "dumps")
}
