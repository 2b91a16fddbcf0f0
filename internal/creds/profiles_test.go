package creds

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListMergesBothFiles(t *testing.T) {
	r := newTestResolver(t, `[saml-pub]
aws_access_key_id = a
aws_secret_access_key = b
aws_session_token = c

[scratch]
aws_access_key_id = d
aws_secret_access_key = e
`, `[profile saml-pub]
region = us-west-2

[profile sso-only]
region = eu-central-1

[default]
region = us-east-1
`)

	profiles, err := r.List()
	require.NoError(t, err)

	byName := make(map[string]string)
	var names []string
	for _, p := range profiles {
		byName[p.Name] = p.Region
		names = append(names, p.Name)
	}

	// "default" sorts first, the rest alphabetically.
	assert.Equal(t, []string{"default", "saml-pub", "scratch", "sso-only"}, names)

	// Region merged from the config file into a credentials-file profile.
	assert.Equal(t, "us-west-2", byName["saml-pub"])
	// Config-only profile keeps its region; credentials-only has none.
	assert.Equal(t, "eu-central-1", byName["sso-only"])
	assert.Equal(t, "", byName["scratch"])
}

func TestListWithNeitherFile(t *testing.T) {
	r := newTestResolver(t, "", "")

	profiles, err := r.List()
	require.NoError(t, err)
	assert.Empty(t, profiles)
}

func TestExists(t *testing.T) {
	r := newTestResolver(t, goodCredentials, goodConfig)

	assert.True(t, r.Exists("saml-pub"))
	assert.False(t, r.Exists("nope"))
}
