package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveAndLoadRoundTrip(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	require.NoError(t, SaveConfig(&Config{AWSProfile: "saml-pub", DatasetPath: "/a/b"}))

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "saml-pub", cfg.AWSProfile)
	assert.Equal(t, "/a/b", cfg.DatasetPath)
}

func TestLoadMissingFileIsEmptyConfig(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, &Config{}, cfg)
}

func TestSetProfile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	require.NoError(t, SetProfile("scratch"))
	assert.Equal(t, "scratch", GetSavedProfile())

	// Setting again overwrites without clobbering other fields.
	require.NoError(t, SaveConfig(&Config{AWSProfile: "scratch", DatasetPath: "/x"}))
	require.NoError(t, SetProfile("saml-pub"))
	assert.Equal(t, "saml-pub", GetSavedProfile())
	assert.Equal(t, "/x", GetSavedDatasetPath())
}
