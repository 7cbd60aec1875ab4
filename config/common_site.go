package config

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"
	"github.com/spf13/afero"
	"github.com/spf13/viper"
)

const (
	// CommonSiteConfigFile is shared by every site of a bench
	CommonSiteConfigFile = "common_site_config.json"
	// SiteConfigFile lives in each site's directory
	SiteConfigFile = "site_config.json"

	// DefaultMariaDBPort is used when common_site_config.json has no db_port
	DefaultMariaDBPort = 3306
)

// CommonSiteConfig holds the keys of common_site_config.json the bootstrapper needs
type CommonSiteConfig struct {
	Path       string
	DBHost     string
	DBPort     int
	RedisCache string
}

// LoadCommonSiteConfig reads the shared config from the sites directory
func LoadCommonSiteConfig(fs afero.Fs, sitesDir string) (*CommonSiteConfig, error) {
	path := filepath.Join(sitesDir, CommonSiteConfigFile)

	v := viper.New()
	v.SetFs(fs)
	v.SetConfigFile(path)
	v.SetConfigType("json")
	v.SetDefault("db_port", DefaultMariaDBPort)

	if err := v.ReadInConfig(); err != nil {
		return nil, errors.Wrapf(err, "failed to read %s", path)
	}

	return &CommonSiteConfig{
		Path:       path,
		DBHost:     v.GetString("db_host"),
		DBPort:     v.GetInt("db_port"),
		RedisCache: v.GetString("redis_cache"),
	}, nil
}

// UpdateCommonSiteConfig sets key to value in the shared config file,
// keeping every other key as it was. Values are not validated.
func UpdateCommonSiteConfig(fs afero.Fs, path, key string, value interface{}) error {
	conf := map[string]interface{}{}

	content, err := afero.ReadFile(fs, path)
	switch {
	case err == nil:
		dec := json.NewDecoder(bytes.NewReader(content))
		dec.UseNumber()
		if err := dec.Decode(&conf); err != nil {
			return errors.Wrapf(err, "failed to parse %s", path)
		}
	case os.IsNotExist(err):
		// written from scratch below
	default:
		return errors.Wrapf(err, "failed to read %s", path)
	}

	conf[key] = value

	// Same layout the framework writes: sorted keys, one space indent
	data, err := json.MarshalIndent(conf, "", " ")
	if err != nil {
		return errors.Wrap(err, "failed to encode site config")
	}

	if err := afero.WriteFile(fs, path, data, 0644); err != nil {
		return errors.Wrapf(err, "failed to write %s", path)
	}

	return nil
}
