package client_test

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"net"
	"net/http"
	"os"
	"testing"
	"time"

	"heroes/internal/app"
	"heroes/internal/catalog"
	"heroes/internal/config"
	"heroes/internal/models"
	"heroes/internal/repositories"
	"heroes/internal/validation"
	"heroes/pkg/client"
	"heroes/pkg/logger"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	logger.Silence()
	os.Exit(m.Run())
}

// startServer serves a seeded in-memory catalog on a loopback port.
func startServer(t *testing.T, mutate func(*config.Config)) string {
	t.Helper()
	cfg := config.Default()
	cfg.Database.Driver = "memory"
	cfg.Database.Seed = true
	if mutate != nil {
		mutate(&cfg)
	}

	a, err := app.New(context.Background(), cfg, app.WithFs(afero.NewMemMapFs()))
	require.NoError(t, err)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go func() { _ = a.Fiber.Listener(ln) }()
	t.Cleanup(func() { _ = a.Shutdown() })

	return "http://" + ln.Addr().String()
}

func newClient(t *testing.T, baseURL string, opts ...client.Option) *client.Client {
	t.Helper()
	c, err := client.New(baseURL, opts...)
	require.NoError(t, err)
	return c
}

func names(characters []models.Character) []string {
	out := make([]string, len(characters))
	for i, c := range characters {
		out[i] = c.Name
	}
	return out
}

func asClientError(t *testing.T, err error) *client.Error {
	t.Helper()
	require.Error(t, err)
	var cerr *client.Error
	require.ErrorAs(t, err, &cerr)
	return cerr
}

func TestNew_RejectsInvalidBaseURL(t *testing.T) {
	for _, raw := range []string{"", "localhost:8080", "ftp://example.com", "http://"} {
		_, err := client.New(raw)
		assert.Error(t, err, raw)
	}
}

func TestImageURL(t *testing.T) {
	c := newClient(t, "http://localhost:8080/")

	assert.Equal(t, "", c.ImageURL(""))
	assert.Equal(t, "https://cdn.example.com/a.png", c.ImageURL("https://cdn.example.com/a.png"))
	assert.Equal(t, "http://other/a.png", c.ImageURL("http://other/a.png"))
	assert.Equal(t, "http://localhost:8080/uploads/a.png", c.ImageURL("/uploads/a.png"))
	assert.Equal(t, "http://localhost:8080/uploads/a.png", c.ImageURL("uploads/a.png"))
}

func TestList(t *testing.T) {
	c := newClient(t, startServer(t, nil))
	ctx := context.Background()

	all, err := c.List(ctx, catalog.Criteria{})
	require.NoError(t, err)
	assert.Len(t, all, 10)

	filtered, err := c.List(ctx, catalog.Criteria{Text: "man"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Superman", "Batman", "Wonder Woman", "Aquaman", "Martian Manhunter"}, names(filtered))

	// The server result equals the local filter over the full snapshot.
	assert.Equal(t, catalog.Filter(all, catalog.Criteria{Text: "man"}), filtered)
}

func TestList_InvalidEnumIsValidationError(t *testing.T) {
	c := newClient(t, startServer(t, nil))

	_, err := c.List(context.Background(), catalog.Criteria{Status: "ZOMBIE"})

	cerr := asClientError(t, err)
	assert.Equal(t, client.KindValidation, cerr.Kind)
	assert.Equal(t, http.StatusBadRequest, cerr.Status)
	assert.Contains(t, cerr.Message, "invalid character status")
}

func TestSaveLifecycle(t *testing.T) {
	c := newClient(t, startServer(t, nil))
	ctx := context.Background()

	draft := models.NewCharacter()
	draft.Name = "Supergirl"
	draft.RealName = "Kara Zor-El"
	draft.Alignment = models.AlignmentHero

	created, err := c.Save(ctx, draft)
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)
	assert.Equal(t, models.StatusActive, created.Status)

	edit := created.Clone()
	edit.Status = models.StatusInactive
	updated, err := c.Save(ctx, edit)
	require.NoError(t, err)
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, models.StatusInactive, updated.Status)

	got, err := c.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Kara Zor-El", got.RealName)

	stats, err := c.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 11, stats.Total)
	assert.Equal(t, 1, stats.Inactive)

	require.NoError(t, c.Delete(ctx, created.ID))

	_, err = c.Get(ctx, created.ID)
	cerr := asClientError(t, err)
	assert.Equal(t, client.KindNotFound, cerr.Kind)
	assert.Equal(t, http.StatusNotFound, cerr.Status)
	assert.True(t, client.IsNotFound(err))
}

func TestSave_InvalidRecordNeverLeavesTheClient(t *testing.T) {
	// Nothing listens here; a network call would fail with KindNetwork.
	c := newClient(t, "http://127.0.0.1:1")

	_, err := c.Save(context.Background(), models.NewCharacter())

	verr, ok := validation.AsError(err)
	require.True(t, ok)
	assert.Contains(t, verr.Fields, "name")
	assert.Contains(t, verr.Fields, "alignment")
}

func TestNetworkError(t *testing.T) {
	c := newClient(t, "http://127.0.0.1:1", client.WithTimeout(time.Second))

	_, err := c.List(context.Background(), catalog.Criteria{})

	cerr := asClientError(t, err)
	assert.Equal(t, client.KindNetwork, cerr.Kind)
	assert.Equal(t, client.StatusNetwork, cerr.Status)
	assert.NotEmpty(t, cerr.Message)
}

func TestCanceledContextIsUnknownError(t *testing.T) {
	c := newClient(t, "http://127.0.0.1:1")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Stats(ctx)

	cerr := asClientError(t, err)
	assert.Equal(t, client.KindUnknown, cerr.Kind)
	assert.Equal(t, client.StatusUnknown, cerr.Status)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLookups(t *testing.T) {
	c := newClient(t, startServer(t, nil))
	ctx := context.Background()

	byName, err := c.SearchByName(ctx, "flash")
	require.NoError(t, err)
	assert.Equal(t, []string{"The Flash"}, names(byName))

	byRealName, err := c.SearchByRealName(ctx, "wayne")
	require.NoError(t, err)
	assert.Equal(t, []string{"Batman"}, names(byRealName))

	byOrigin, err := c.SearchByOrigin(ctx, "krypton")
	require.NoError(t, err)
	assert.Equal(t, []string{"Superman"}, names(byOrigin))

	byAffiliation, err := c.SearchByAffiliation(ctx, "Justice League")
	require.NoError(t, err)
	assert.Len(t, byAffiliation, 10)

	byStatus, err := c.SearchByStatus(ctx, models.StatusDead)
	require.NoError(t, err)
	assert.Empty(t, byStatus)

	combined, err := c.Search(ctx, repositories.SearchCriteria{Name: "green", Origin: "star"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Green Arrow"}, names(combined))

	exists, err := c.Exists(ctx, "batman")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestImages(t *testing.T) {
	c := newClient(t, startServer(t, nil))
	ctx := context.Background()

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 40, 40))))

	res, err := c.UploadImage(ctx, "portrait.png", buf.Bytes())
	require.NoError(t, err)
	assert.Contains(t, res.URL, "/uploads/")
	assert.NotEmpty(t, res.Filename)

	resp, err := http.Get(c.ImageURL(res.URL))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	require.NoError(t, c.DeleteImage(ctx, res.Filename))
	assert.True(t, client.IsNotFound(c.DeleteImage(ctx, res.Filename)))

	_, err = c.UploadImage(ctx, "notes.txt", []byte("not an image"))
	cerr := asClientError(t, err)
	assert.Equal(t, client.KindValidation, cerr.Kind)
}

func TestAuth(t *testing.T) {
	base := startServer(t, func(cfg *config.Config) {
		cfg.Auth.Enabled = true
		cfg.Auth.JWTSecret = "test_jwt_secret"
		cfg.Auth.AdminPassword = "password123"
	})
	c := newClient(t, base)
	ctx := context.Background()

	draft := models.NewCharacter()
	draft.Name = "Zatanna"
	draft.Alignment = models.AlignmentHero

	_, err := c.Save(ctx, draft)
	cerr := asClientError(t, err)
	assert.Equal(t, client.KindUnknown, cerr.Kind)
	assert.Equal(t, http.StatusUnauthorized, cerr.Status)

	_, err = c.Login(ctx, "admin", "wrong")
	assert.Equal(t, http.StatusUnauthorized, asClientError(t, err).Status)

	token, err := c.Login(ctx, "admin", "password123")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, token, c.Token())

	created, err := c.Save(ctx, draft)
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)

	// Reads stay public.
	anon := newClient(t, base)
	_, err = anon.Get(ctx, created.ID)
	assert.NoError(t, err)
}
