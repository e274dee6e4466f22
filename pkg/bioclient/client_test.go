package bioclient

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"crimson-crm-be/internal/controller"
	"crimson-crm-be/internal/dto"
	"crimson-crm-be/internal/pkg/logger"
	"crimson-crm-be/internal/service"
	"crimson-crm-be/pkg/biostate"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newProxyServer(t *testing.T) *httptest.Server {
	t.Helper()
	log := logger.NewNopLogger()
	bios := service.NewBioService(nil, service.BioServiceConfig{}, log)

	app := fiber.New()
	controller.NewBioController(bios, log).RegisterRoutes(app.Group("/api"))

	srv := httptest.NewServer(adaptor.FiberApp(app))
	t.Cleanup(srv.Close)
	return srv
}

func TestGenerateBioAgainstProxy(t *testing.T) {
	srv := newProxyServer(t)
	c := New(srv.URL+"/", 5*time.Second)

	bio, err := c.GenerateBio(context.Background(), biostate.Donor{Name: "Jane Doe", Employer: "Acme"})
	require.NoError(t, err)
	assert.Equal(t, dto.ModelMockData, bio.Model)
	assert.Equal(t, "Currently affiliated with Acme.", bio.Headlines[1])
	assert.Equal(t, []biostate.Citation{{Title: "Public Records", URL: "https://example.com"}}, bio.Citations)
}

func TestGenerateBioSurfacesProxyErrors(t *testing.T) {
	srv := newProxyServer(t)
	c := New(srv.URL, 5*time.Second)

	_, err := c.GenerateBio(context.Background(), biostate.Donor{Name: "  "})
	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, 400, statusErr.StatusCode)
	assert.Equal(t, "Name is required", statusErr.Message)
}

func TestGenerateBioUnreachable(t *testing.T) {
	srv := newProxyServer(t)
	url := srv.URL
	srv.Close()

	_, err := New(url, time.Second).GenerateBio(context.Background(), biostate.Donor{Name: "Jane"})
	assert.Error(t, err)
}
