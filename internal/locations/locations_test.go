package locations

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Builtin(t *testing.T) {
	r, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 2, r.Len())

	loc, err := r.Lookup("Wurzburg")
	require.NoError(t, err)
	assert.Equal(t, "wurzburg", loc.Name)
	assert.Equal(t, "Europe/Berlin", loc.Zone().String())
}

func TestLoad_FileOverridesBuiltin(t *testing.T) {
	r, err := Load(filepath.Join("testdata", "locations.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 3, r.Len())

	kyiv, err := r.Lookup("kyiv")
	require.NoError(t, err)
	assert.Equal(t, 50.45, kyiv.Latitude)

	mayapur, err := r.Lookup(" mayapur ")
	require.NoError(t, err)
	assert.Equal(t, "Asia/Kolkata", mayapur.TimezoneID)

	names := []string{}
	for _, loc := range r.All() {
		names = append(names, loc.Name)
	}
	assert.Equal(t, []string{"kyiv", "mayapur", "wurzburg"}, names)
}

func TestLoad_InvalidFile(t *testing.T) {
	_, err := Load(filepath.Join("testdata", "invalid.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `location "nowhere"`)
	assert.Contains(t, err.Error(), "location #4: name is required")
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join("testdata", "missing.yaml"))
	assert.Error(t, err)
}

func TestLookup_Unknown(t *testing.T) {
	r, err := Load("")
	require.NoError(t, err)

	_, err = r.Lookup("atlantis")
	assert.True(t, errors.Is(err, ErrUnknownLocation))
}
