package creds

import (
	"sort"
	"strings"

	"gopkg.in/ini.v1"

	"github.com/earthdata-tools/h5remote/pkg/types"
)

// List reads AWS profiles from both shared files, merging region information
// from the config file into entries discovered in the credentials file.
// Either file may be absent; a missing file contributes no profiles.
func (r *Resolver) List() ([]types.AWSProfile, error) {
	profileMap := make(map[string]*types.AWSProfile)

	if credFile, err := ini.Load(r.CredentialsPath); err == nil {
		for _, sec := range credFile.Sections() {
			if sec.Name() == ini.DefaultSection {
				continue
			}
			profileMap[sec.Name()] = &types.AWSProfile{
				Name:   sec.Name(),
				Source: "credentials",
			}
		}
	}

	if cfgFile, err := ini.Load(r.ConfigPath); err == nil {
		for _, sec := range cfgFile.Sections() {
			name := sec.Name()
			if name == ini.DefaultSection {
				continue
			}
			// Config sections are "profile <name>", except [default].
			if name != "default" {
				if !strings.HasPrefix(name, configSectionPrefix) {
					continue
				}
				name = strings.TrimPrefix(name, configSectionPrefix)
			}

			region := ""
			if k, err := sec.GetKey(keyRegion); err == nil {
				region = k.String()
			}

			if existing, ok := profileMap[name]; ok {
				if existing.Region == "" {
					existing.Region = region
				}
			} else {
				profileMap[name] = &types.AWSProfile{
					Name:   name,
					Region: region,
					Source: "config",
				}
			}
		}
	}

	profiles := make([]types.AWSProfile, 0, len(profileMap))
	for _, p := range profileMap {
		profiles = append(profiles, *p)
	}

	sort.Slice(profiles, func(i, j int) bool {
		// Put "default" first, then sort alphabetically
		if profiles[i].Name == "default" {
			return true
		}
		if profiles[j].Name == "default" {
			return false
		}
		return profiles[i].Name < profiles[j].Name
	})

	return profiles, nil
}

// Exists reports whether a profile appears in either shared file.
func (r *Resolver) Exists(name string) bool {
	profiles, err := r.List()
	if err != nil {
		return false
	}
	for _, p := range profiles {
		if p.Name == name {
			return true
		}
	}
	return false
}
