package config

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadSiteConfig(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/sites/s1.local/site_config.json",
		[]byte(`{"db_name": "_a1b2c3", "db_password": "p4ss", "db_type": "mariadb"}`), 0644))

	siteConfig, err := ReadSiteConfig(fs, "/sites", "s1.local")
	require.NoError(t, err)
	assert.Equal(t, "_a1b2c3", siteConfig.DBName)
	assert.Equal(t, "p4ss", siteConfig.DBPassword)
}

func TestReadSiteConfigMissing(t *testing.T) {
	_, err := ReadSiteConfig(afero.NewMemMapFs(), "/sites", "s1.local")
	require.Error(t, err)
}

func TestListSites(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/sites/b.local/site_config.json", []byte(`{}`), 0644))
	require.NoError(t, afero.WriteFile(fs, "/sites/a.local/site_config.json", []byte(`{}`), 0644))
	require.NoError(t, fs.MkdirAll("/sites/assets", 0755))
	require.NoError(t, afero.WriteFile(fs, "/sites/common_site_config.json", []byte(`{}`), 0644))

	sites, err := ListSites(fs, "/sites")
	require.NoError(t, err)
	assert.Equal(t, []string{"a.local", "b.local"}, sites)
}
