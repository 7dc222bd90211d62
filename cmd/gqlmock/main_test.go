package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mycelian/gqltest/link"
	"github.com/mycelian/gqltest/mock"
)

func writeFixtures(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fixtures.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadFixtures(t *testing.T) {
	path := writeFixtures(t, `{"Pets": {"pets": ["Rex"]}, "Empty": null}`)
	m, err := loadFixtures(path)
	require.NoError(t, err)

	ctx := context.Background()
	res, err := m.Resolve(ctx, link.Query("Pets", nil))
	require.NoError(t, err)
	assert.Equal(t, []any{"Rex"}, res.Data["pets"])

	_, err = m.Resolve(ctx, link.Query("Empty", nil))
	assert.NoError(t, err)

	_, err = m.Resolve(ctx, link.Query("Unknown", nil))
	assert.ErrorIs(t, err, mock.ErrNoMock)
}

func TestLoadFixtures_Errors(t *testing.T) {
	_, err := loadFixtures(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)

	_, err = loadFixtures(writeFixtures(t, `[1, 2]`))
	assert.Error(t, err)

	_, err = loadFixtures(writeFixtures(t, `{"Pets": "not an object"}`))
	assert.ErrorIs(t, err, mock.ErrInvalidFixture)

	m, err := loadFixtures("")
	require.NoError(t, err)
	_, err = m.Resolve(context.Background(), link.Query("Any", nil))
	assert.ErrorIs(t, err, mock.ErrNoMock)
}

func TestCheckCmd(t *testing.T) {
	path := writeFixtures(t, `{"Pets": {}, "AdoptPet": {"adopt": true}}`)

	var out bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs([]string{"check", path})
	require.NoError(t, cmd.Execute())
	assert.Equal(t, "AdoptPet\nPets\n", out.String())
}

func TestCheckCmd_RequiresPath(t *testing.T) {
	cmd := NewRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"check"})
	assert.Error(t, cmd.Execute())
}

func TestServeCmd_InvalidFixtures(t *testing.T) {
	cmd := NewRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"serve", "--fixtures", writeFixtures(t, `{"Pets": 1}`)})
	assert.ErrorIs(t, cmd.Execute(), mock.ErrInvalidFixture)
}
