package main

import (
	"context"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/joho/godotenv"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"frappe-site-bootstrap/config"
	"frappe-site-bootstrap/provision"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		opts     provision.Options
		benchBin string
		envFile  string
		logLevel string
	)

	cmd := &cobra.Command{
		Use:   "site-bootstrap",
		Short: "Create a site and open its database to the other containers",
		Long: `Create a new site in the bench using SITE_NAME, INSTALL_APPS, FORCE and the
database credentials from the environment (MYSQL_ROOT_PASSWORD, POSTGRES_PASSWORD,
ADMIN_PASSWORD, each also readable from a file named by <VAR>_FILE).

Run it from the sites directory.`,
		Args:          cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := newLogger(logLevel)
			if err != nil {
				return err
			}
			defer logger.Sync() //nolint:errcheck

			if err := godotenv.Load(envFile); err != nil {
				logger.Debug("No env file loaded, using process environment", zap.String("path", envFile))
			}

			err = run(cmd.Context(), logger, opts, benchBin)
			for _, hint := range errors.GetAllHints(err) {
				logger.Info(hint)
			}
			return err
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.SitesDir, "sites-dir", ".", "bench sites directory")
	flags.StringVar(&opts.BenchDir, "bench-dir", "..", "bench root directory")
	flags.StringVar(&opts.MysqlBin, "mysql-bin", "mysql", "mysql client binary")
	flags.StringVar(&opts.FrameworkVersion, "framework-version", "", "framework version, detected from the bench when empty")
	flags.StringVar(&benchBin, "bench-bin", "bench", "bench binary")
	flags.StringVar(&envFile, "env-file", ".env", "optional env file")
	flags.StringVar(&logLevel, "log-level", "info", "log level")

	return cmd
}

func run(ctx context.Context, logger *zap.Logger, opts provision.Options, benchBin string) error {
	fs := afero.NewOsFs()
	resolver := config.NewSecretResolver(fs)

	installer := &provision.BenchInstaller{
		Runner:   &provision.LocalRunner{Dir: opts.BenchDir, Output: os.Stdout},
		BenchBin: benchBin,
	}

	var adminRunner provision.Runner = &provision.LocalRunner{}
	sshConfig, err := provision.SSHConfigFromEnv(resolver)
	if err != nil {
		return err
	}
	if sshConfig != nil {
		sshRunner, err := provision.NewSSHRunner(sshConfig, logger)
		if err != nil {
			return err
		}
		defer sshRunner.Close()
		adminRunner = sshRunner
	}

	return provision.NewBootstrapper(fs, resolver, installer, adminRunner, logger, opts).Run(ctx)
}

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid log level %q", level)
	}

	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.DisableStacktrace = true
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	return cfg.Build()
}
