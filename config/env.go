package config

import (
	"strings"

	"github.com/samber/lo"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"frappe-site-bootstrap/models"
)

const (
	DefaultSiteName      = "site1.localhost"
	DefaultRootUser      = "root"
	DefaultRootPassword  = "admin"
	DefaultAdminPassword = "admin"

	// PostgresPort is always used for the postgres backend
	PostgresPort = 5432
)

// newEnv binds the plain (non-secret) environment inputs
func newEnv() *viper.Viper {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("site_name", DefaultSiteName)
	v.SetDefault("db_root_user", DefaultRootUser)
	return v
}

// LoadBootstrapConfig assembles the site parameters from the environment and the
// shared config. A non-empty POSTGRES_PASSWORD selects the postgres backend.
func LoadBootstrapConfig(resolver *SecretResolver, common *CommonSiteConfig, logger *zap.Logger) (*models.BootstrapConfig, error) {
	env := newEnv()

	rootPassword, err := resolver.Resolve("MYSQL_ROOT_PASSWORD", DefaultRootPassword)
	if err != nil {
		return nil, err
	}
	postgresPassword, err := resolver.Resolve("POSTGRES_PASSWORD", "")
	if err != nil {
		return nil, err
	}
	adminPassword, err := resolver.Resolve("ADMIN_PASSWORD", DefaultAdminPassword)
	if err != nil {
		return nil, err
	}

	cfg := &models.BootstrapConfig{
		SiteName:      env.GetString("site_name"),
		RootUsername:  env.GetString("db_root_user"),
		RootPassword:  rootPassword,
		AdminPassword: adminPassword,
		DBType:        models.MariaDB,
		DBHost:        common.DBHost,
		DBPort:        common.DBPort,
		Force:         env.GetString("force") != "",
		InstallApps:   ParseInstallApps(env.GetString("install_apps")),
	}

	if postgresPassword != "" {
		cfg.DBType = models.Postgres
		cfg.PostgresRootPassword = postgresPassword
		cfg.DBPort = PostgresPort
		cfg.DBHost = env.GetString("postgres_host")
		if cfg.DBHost == "" {
			logger.Warn("Environment variable POSTGRES_HOST not found, using db_host from "+CommonSiteConfigFile,
				zap.String("db_host", common.DBHost))
			cfg.DBHost = common.DBHost
		}
	}

	return cfg, nil
}

// ParseInstallApps splits a comma separated app list, keeping order.
// Blank entries are dropped.
func ParseInstallApps(raw string) []string {
	apps := lo.Map(strings.Split(raw, ","), func(app string, _ int) string {
		return strings.TrimSpace(app)
	})
	return lo.Compact(apps)
}
