package main

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/png"
	"net"
	"os"
	"path/filepath"
	"testing"

	"heroes/internal/app"
	"heroes/internal/catalog"
	"heroes/internal/config"
	"heroes/internal/models"
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

func startServer(t *testing.T) string {
	t.Helper()
	cfg := config.Default()
	cfg.Database.Driver = "memory"
	cfg.Database.Seed = true

	a, err := app.New(context.Background(), cfg, app.WithFs(afero.NewMemMapFs()))
	require.NoError(t, err)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go func() { _ = a.Fiber.Listener(ln) }()
	t.Cleanup(func() { _ = a.Shutdown() })

	return "http://" + ln.Addr().String()
}

func run(t *testing.T, server string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	argv := append([]string{"heroesctl", "--server", server}, args...)
	err := newRootCommand(&out).Run(context.Background(), argv)
	return out.String(), err
}

func TestList(t *testing.T) {
	server := startServer(t)

	out, err := run(t, server, "list", "--q", "man")
	require.NoError(t, err)
	assert.Contains(t, out, "Superman")
	assert.Contains(t, out, "Martian Manhunter")
	assert.NotContains(t, out, "The Flash")

	out, err = run(t, server, "list", "--json", "--status", "active", "--alignment", "villain")
	require.NoError(t, err)
	var items []models.Character
	require.NoError(t, json.Unmarshal([]byte(out), &items))
	assert.Empty(t, items)

	_, err = run(t, server, "list", "--status", "zombie")
	assert.ErrorContains(t, err, "unknown status")
}

func TestStats(t *testing.T) {
	server := startServer(t)

	out, err := run(t, server, "stats", "--json")
	require.NoError(t, err)
	var stats catalog.Stats
	require.NoError(t, json.Unmarshal([]byte(out), &stats))
	assert.Equal(t, 10, stats.Total)
	assert.Equal(t, 10, stats.Active)
	assert.Equal(t, 10, stats.Affiliations["Justice League"])

	out, err = run(t, server, "stats")
	require.NoError(t, err)
	assert.Contains(t, out, "AFFILIATION")
	assert.Contains(t, out, "Earth-1")
}

func TestCreateUpdateDelete(t *testing.T) {
	server := startServer(t)

	out, err := run(t, server, "create", "--json", "--name", "Supergirl", "--real-name", "Kara Zor-El", "--alignment", "hero")
	require.NoError(t, err)
	var created models.Character
	require.NoError(t, json.Unmarshal([]byte(out), &created))
	require.NotEmpty(t, created.ID)
	assert.Equal(t, models.StatusActive, created.Status)
	assert.Equal(t, models.AlignmentHero, created.Alignment)

	out, err = run(t, server, "update", "--json", "--status", "dead", created.ID)
	require.NoError(t, err)
	var updated models.Character
	require.NoError(t, json.Unmarshal([]byte(out), &updated))
	assert.Equal(t, models.StatusDead, updated.Status)
	assert.Equal(t, "Kara Zor-El", updated.RealName)

	out, err = run(t, server, "get", created.ID)
	require.NoError(t, err)
	assert.Contains(t, out, "Supergirl")
	assert.Contains(t, out, "Dead")

	out, err = run(t, server, "delete", created.ID)
	require.NoError(t, err)
	assert.Contains(t, out, "deleted "+created.ID)

	_, err = run(t, server, "get", created.ID)
	assert.True(t, client.IsNotFound(err))
}

func TestCreateInvalid(t *testing.T) {
	server := startServer(t)

	out, err := run(t, server, "create", "--real-name", "Nobody")
	assert.EqualError(t, err, "character is invalid")
	assert.Contains(t, out, "Name is required")
	assert.Contains(t, out, "alignment")
}

func TestUpload(t *testing.T) {
	server := startServer(t)

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 40, 40))))
	path := filepath.Join(t.TempDir(), "portrait.png")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o600))

	out, err := run(t, server, "list", "--json", "--q", "batman")
	require.NoError(t, err)
	var batman []models.Character
	require.NoError(t, json.Unmarshal([]byte(out), &batman))
	require.Len(t, batman, 1)

	out, err = run(t, server, "upload", "--json", "--character", batman[0].ID, path)
	require.NoError(t, err)
	var res client.UploadResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Contains(t, res.URL, "/uploads/")

	out, err = run(t, server, "get", "--json", batman[0].ID)
	require.NoError(t, err)
	var got models.Character
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, res.URL, got.ImageURL)
}

func TestMissingArgument(t *testing.T) {
	_, err := run(t, "http://127.0.0.1:1", "get")
	assert.ErrorContains(t, err, "missing <id> argument")
}

func TestUnreachableServer(t *testing.T) {
	_, err := run(t, "http://127.0.0.1:1", "--timeout", "1s", "stats")

	var cerr *client.Error
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, client.KindNetwork, cerr.Kind)
}
