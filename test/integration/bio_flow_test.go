package integration

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"crimson-crm-be/internal/bootstrap"
	"crimson-crm-be/internal/config"
	"crimson-crm-be/internal/dto"
	"crimson-crm-be/internal/pkg/serverutils"
	"crimson-crm-be/internal/server"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newApp(t *testing.T) *fiber.App {
	t.Helper()

	dir := t.TempDir()
	t.Setenv("STORAGE_DRIVER", "memory")
	t.Setenv("PERPLEXITY_API_KEY", "your_perplexity_api_key_here")
	t.Setenv("NATS_URL", "")
	t.Setenv("SMTP_HOST", "")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("BIO_PROXY_URL", "")
	t.Setenv("LOG_FILE_PATH", filepath.Join(dir, "app.log"))
	t.Setenv("STATIC_DIR", dir)

	cfg := config.Load()
	container := bootstrap.NewContainer(nil, cfg)
	t.Cleanup(container.Close)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	require.NoError(t, container.ConsumerService.Consume(ctx))

	return server.New(cfg, container).GetApp()
}

func call(t *testing.T, app *fiber.App, method, path, body string, out interface{}) int {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if out != nil {
		require.NoError(t, json.Unmarshal(raw, out), string(raw))
	}
	return resp.StatusCode
}

func TestBioProxyMockData(t *testing.T) {
	app := newApp(t)

	var res dto.BioResult
	status := call(t, app, "POST", "/api/generate-bio", `{"name":"Jane Doe","employer":"Acme"}`, &res)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, dto.ModelMockData, res.Model)
	assert.Len(t, res.Headlines, 3)
}

func TestProfileFlowPersistsPermanentHides(t *testing.T) {
	app := newApp(t)

	mount := func() string {
		var res serverutils.BaseResponse[dto.ProfileSnapshotResponse]
		status := call(t, app, "POST", "/api/profiles", `{"donor_id":"donor-1","name":"Jane Doe","employer":"Acme"}`, &res)
		require.Equal(t, fiber.StatusCreated, status)
		return "/api/profiles/" + res.Data.SessionId.String()
	}

	first := mount()
	var snap serverutils.BaseResponse[dto.ProfileSnapshotResponse]
	require.Equal(t, fiber.StatusOK, call(t, app, "POST", first+"/bio/generate", "", &snap))
	assert.Equal(t, dto.ModelMockData, snap.Data.SmartBio.Model)
	require.Len(t, snap.Data.VisibleCitations, 1)

	require.Equal(t, fiber.StatusOK, call(t, app, "POST", first+"/citations/hide",
		`{"title":"Public Records","url":"https://example.com","permanent":true}`, &snap))
	assert.Empty(t, snap.Data.VisibleCitations)

	second := mount()
	require.Equal(t, fiber.StatusOK, call(t, app, "POST", second+"/bio/generate", "", &snap))
	assert.Empty(t, snap.Data.VisibleCitations)
	require.Len(t, snap.Data.HiddenCitations, 1)
	assert.True(t, snap.Data.HiddenCitations[0].Permanent)

	var fb serverutils.BaseResponse[dto.FeedbackResponse]
	require.Equal(t, fiber.StatusOK, call(t, app, "POST", second+"/feedback", `{"feedback_type":"negative","comment":"outdated"}`, &fb))
	assert.True(t, fb.Data.Accepted)
}
