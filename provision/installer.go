package provision

import (
	"context"
	"strconv"

	"github.com/cockroachdb/errors"

	"frappe-site-bootstrap/models"
)

// NewSiteParams is what the framework needs to create a site.
// Sites are always created fresh: no SQL snapshot is restored and nothing is reinstalled.
type NewSiteParams struct {
	SiteName      string
	RootUsername  string
	RootPassword  string
	AdminPassword string
	Verbose       bool
	InstallApps   []string
	Force         bool

	// IncludeDBParams is false for framework versions that pick the database
	// themselves and reject the flags below
	IncludeDBParams bool
	DBType          models.DBType
	DBHost          string
	DBPort          int
}

// Installer creates sites
type Installer interface {
	NewSite(ctx context.Context, params NewSiteParams) error
}

// BenchInstaller creates sites with `bench new-site`
type BenchInstaller struct {
	Runner   Runner
	BenchBin string
}

// NewSite runs bench new-site and fails if the framework reports an error
func (b *BenchInstaller) NewSite(ctx context.Context, params NewSiteParams) error {
	if _, err := b.Runner.Run(ctx, b.BenchBin, NewSiteArgs(params)...); err != nil {
		return errors.Wrapf(err, "failed to create site %s", params.SiteName)
	}
	return nil
}

// NewSiteArgs builds the bench arguments for params
func NewSiteArgs(params NewSiteParams) []string {
	args := []string{
		"new-site", params.SiteName,
		"--mariadb-root-username", params.RootUsername,
		"--mariadb-root-password", params.RootPassword,
		"--admin-password", params.AdminPassword,
	}

	if params.Verbose {
		args = append(args, "--verbose")
	}
	for _, app := range params.InstallApps {
		args = append(args, "--install-app", app)
	}
	if params.Force {
		args = append(args, "--force")
	}

	if params.IncludeDBParams {
		args = append(args, "--db-type", string(params.DBType))
		if params.DBHost != "" {
			args = append(args, "--db-host", params.DBHost)
		}
		if params.DBPort != 0 {
			args = append(args, "--db-port", strconv.Itoa(params.DBPort))
		}
	}

	return args
}
