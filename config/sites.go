package config

import (
	"encoding/json"
	"path/filepath"
	"sort"

	"github.com/cockroachdb/errors"
	"github.com/spf13/afero"

	"frappe-site-bootstrap/models"
)

// ReadSiteConfig reads the database credentials the framework generated for a site
func ReadSiteConfig(fs afero.Fs, sitesDir, siteName string) (*models.SiteConfig, error) {
	path := filepath.Join(sitesDir, siteName, SiteConfigFile)

	content, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read site config for %s", siteName)
	}

	var siteConfig models.SiteConfig
	if err := json.Unmarshal(content, &siteConfig); err != nil {
		return nil, errors.Wrapf(err, "failed to parse %s", path)
	}

	return &siteConfig, nil
}

// ListSites returns the names of directories in sitesDir that hold a site_config.json
func ListSites(fs afero.Fs, sitesDir string) ([]string, error) {
	entries, err := afero.ReadDir(fs, sitesDir)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to list %s", sitesDir)
	}

	var sites []string
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		// assets, archived and friends have no site config
		ok, err := afero.Exists(fs, filepath.Join(sitesDir, entry.Name(), SiteConfigFile))
		if err != nil {
			return nil, err
		}
		if ok {
			sites = append(sites, entry.Name())
		}
	}

	sort.Strings(sites)
	return sites, nil
}
