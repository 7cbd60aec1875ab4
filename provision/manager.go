package provision

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/hashicorp/go-version"
	"github.com/samber/lo"
	"github.com/spf13/afero"
	"go.uber.org/zap"

	"frappe-site-bootstrap/config"
	"frappe-site-bootstrap/models"
)

// Options locate the bench and the client binaries
type Options struct {
	SitesDir string
	BenchDir string
	MysqlBin string
	// FrameworkVersion skips detection when set
	FrameworkVersion string
}

// Bootstrapper creates a site and opens its database to other containers
type Bootstrapper struct {
	fs          afero.Fs
	resolver    *config.SecretResolver
	installer   Installer
	adminRunner Runner
	services    *ServiceChecker
	logger      *zap.Logger
	opts        Options
}

// NewBootstrapper wires a bootstrapper. adminRunner runs the mysql client.
func NewBootstrapper(fs afero.Fs, resolver *config.SecretResolver, installer Installer, adminRunner Runner, logger *zap.Logger, opts Options) *Bootstrapper {
	return &Bootstrapper{
		fs:          fs,
		resolver:    resolver,
		installer:   installer,
		adminRunner: adminRunner,
		services:    NewServiceChecker(logger),
		logger:      logger,
		opts:        opts,
	}
}

// Run performs the whole bootstrap. Any error means the site may be incomplete.
func (b *Bootstrapper) Run(ctx context.Context) error {
	defer func() {
		if err := b.services.Close(); err != nil {
			b.logger.Warn("Failed to close cache connection", zap.Error(err))
		}
	}()

	common, err := config.LoadCommonSiteConfig(b.fs, b.opts.SitesDir)
	if err != nil {
		return err
	}

	cfg, err := config.LoadBootstrapConfig(b.resolver, common, b.logger)
	if err != nil {
		return err
	}

	b.logger.Info("Bootstrapping site",
		zap.String("site", cfg.SiteName),
		zap.String("db_type", string(cfg.DBType)),
		zap.String("db_host", cfg.DBHost),
		zap.Int("db_port", cfg.DBPort),
		zap.Strings("apps", cfg.InstallApps),
		zap.Bool("force", cfg.Force))

	if cfg.DBType == models.Postgres {
		if err := b.storeRootCredentials(common, cfg); err != nil {
			return err
		}
	}

	b.preflight(ctx, common, cfg)

	frameworkVersion, err := b.frameworkVersion()
	if err != nil {
		return err
	}

	params := NewSiteParams{
		SiteName:      cfg.SiteName,
		RootUsername:  cfg.RootUsername,
		RootPassword:  cfg.RootPassword,
		AdminPassword: cfg.AdminPassword,
		Verbose:       true,
		InstallApps:   cfg.InstallApps,
		Force:         cfg.Force,
	}
	if SupportsDBParams(frameworkVersion) {
		params.IncludeDBParams = true
		params.DBType = cfg.DBType
		params.DBHost = cfg.DBHost
		params.DBPort = cfg.DBPort
	}

	if err := b.installer.NewSite(ctx, params); err != nil {
		return err
	}
	b.logger.Info("Site created", zap.String("site", cfg.SiteName))

	if cfg.DBType == models.MariaDB {
		siteConfig, err := config.ReadSiteConfig(b.fs, b.opts.SitesDir, cfg.SiteName)
		if err != nil {
			return err
		}
		NewDBAdmin(b.adminRunner, b.opts.MysqlBin, cfg, b.logger).GrantRemoteAccess(ctx, siteConfig)
	}

	return nil
}

// storeRootCredentials lets later processes read the postgres root login back
func (b *Bootstrapper) storeRootCredentials(common *config.CommonSiteConfig, cfg *models.BootstrapConfig) error {
	if err := config.UpdateCommonSiteConfig(b.fs, common.Path, "root_login", cfg.RootUsername); err != nil {
		return err
	}
	return config.UpdateCommonSiteConfig(b.fs, common.Path, "root_password", cfg.PostgresRootPassword)
}

func (b *Bootstrapper) preflight(ctx context.Context, common *config.CommonSiteConfig, cfg *models.BootstrapConfig) {
	b.services.CheckCache(ctx, common.RedisCache)
	if cfg.DBType == models.Postgres {
		b.services.CheckPostgres(ctx, cfg)
	}

	sites, err := config.ListSites(b.fs, b.opts.SitesDir)
	if err != nil {
		b.logger.Warn("Could not list existing sites", zap.Error(err))
		return
	}
	if lo.Contains(sites, cfg.SiteName) && !cfg.Force {
		b.logger.Warn("Site already exists and FORCE is not set, creation will fail",
			zap.String("site", cfg.SiteName))
	}
}

func (b *Bootstrapper) frameworkVersion() (*version.Version, error) {
	if b.opts.FrameworkVersion != "" {
		return ParseFrameworkVersion(b.opts.FrameworkVersion)
	}

	v, err := DetectFrameworkVersion(b.fs, b.opts.BenchDir)
	if err != nil {
		return nil, errors.WithHint(err, "pass --framework-version when the framework source is not in the bench")
	}
	return v, nil
}
