// Package creds resolves a named AWS profile into a complete credential
// bundle, reading the shared credentials and config files directly rather
// than going through the SDK's provider chain. Resolution is all-or-nothing:
// the first missing file, section or key is terminal, so a partially
// populated bundle can never reach the signing layer.
package creds

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/ini.v1"

	"github.com/earthdata-tools/h5remote/pkg/types"
)

const (
	keyAccessKeyID     = "aws_access_key_id"
	keySecretAccessKey = "aws_secret_access_key"
	keySessionToken    = "aws_session_token"
	keyRegion          = "region"

	// The config file prefixes every non-default section with "profile ",
	// while the credentials file uses the bare name. Both spellings refer
	// to the same profile.
	configSectionPrefix = "profile "
)

// Resolver loads credentials and region for a profile. The zero value is not
// usable; construct with NewResolver. Paths are exported so tests can point
// the resolver at fixture files.
type Resolver struct {
	CredentialsPath string
	ConfigPath      string
}

// NewResolver returns a resolver bound to the standard AWS file locations
// under the invoking user's home directory.
func NewResolver() *Resolver {
	return &Resolver{
		CredentialsPath: DefaultCredentialsPath(),
		ConfigPath:      DefaultConfigPath(),
	}
}

// DefaultCredentialsPath returns ~/.aws/credentials.
func DefaultCredentialsPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".aws", "credentials")
	}
	return filepath.Join(home, ".aws", "credentials")
}

// DefaultConfigPath returns ~/.aws/config.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".aws", "config")
	}
	return filepath.Join(home, ".aws", "config")
}

// Resolve returns the complete bundle for profile, or a *Error describing
// the first problem found. The config file is never opened when the
// credentials stage fails, and field extraction stops at the first missing
// key.
func (r *Resolver) Resolve(profile string) (*types.CredentialBundle, error) {
	if _, err := os.Stat(r.CredentialsPath); err != nil {
		return nil, &Error{Kind: ErrCredentialsFileMissing, Path: r.CredentialsPath, Profile: profile}
	}

	credFile, err := ini.Load(r.CredentialsPath)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", r.CredentialsPath, err)
	}

	sec, err := credFile.GetSection(profile)
	if err != nil {
		return nil, &Error{Kind: ErrProfileNotFoundInCredentials, Path: r.CredentialsPath, Profile: profile}
	}

	bundle := &types.CredentialBundle{}
	for _, f := range []struct {
		key string
		dst *[]byte
	}{
		{keyAccessKeyID, &bundle.AccessKey},
		{keySecretAccessKey, &bundle.SecretKey},
		{keySessionToken, &bundle.SessionToken},
	} {
		k, err := sec.GetKey(f.key)
		if err != nil {
			return nil, &Error{Kind: ErrMissingCredentialField, Path: r.CredentialsPath, Profile: profile, Field: f.key}
		}
		// Key.Value is the untransformed value: no variable expansion,
		// no re-encoding. These bytes feed request signing.
		*f.dst = []byte(k.Value())
	}

	if _, err := os.Stat(r.ConfigPath); err != nil {
		return nil, &Error{Kind: ErrConfigFileMissing, Path: r.ConfigPath, Profile: profile}
	}

	cfgFile, err := ini.Load(r.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", r.ConfigPath, err)
	}

	cfgSectionName := configSectionPrefix + profile
	cfgSec, err := cfgFile.GetSection(cfgSectionName)
	if err != nil {
		return nil, &Error{Kind: ErrProfileNotFoundInConfig, Path: r.ConfigPath, Profile: cfgSectionName}
	}

	regionKey, err := cfgSec.GetKey(keyRegion)
	if err != nil {
		return nil, &Error{Kind: ErrMissingRegionField, Path: r.ConfigPath, Profile: cfgSectionName}
	}
	bundle.Region = []byte(regionKey.Value())

	return bundle, nil
}
