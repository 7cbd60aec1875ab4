package provision

import (
	"context"
	"fmt"

	"github.com/valyala/fasttemplate"
	"go.uber.org/zap"

	"frappe-site-bootstrap/models"
)

// Statements run after site creation so the site's database user can connect
// from other containers. The framework names the user after the database.
var adminTemplates = []string{
	// Allow the user from any host
	"UPDATE mysql.user SET Host = '%' where User = '{db_name}'; FLUSH PRIVILEGES;",
	// Host changed, so set the password again
	"ALTER USER '{db_name}'@'%' IDENTIFIED BY '{db_password}'; FLUSH PRIVILEGES;",
	"GRANT ALL PRIVILEGES ON `{db_name}`.* TO '{db_name}'@'%'; FLUSH PRIVILEGES;",
}

// AdminStatements renders the administrative statements for a site.
// Names and passwords are generated by the framework and never contain quotes.
func AdminStatements(site *models.SiteConfig) []string {
	values := map[string]interface{}{
		"db_name":     site.DBName,
		"db_password": site.DBPassword,
	}

	statements := make([]string, 0, len(adminTemplates))
	for _, tmpl := range adminTemplates {
		statements = append(statements, fasttemplate.ExecuteString(tmpl, "{", "}", values))
	}
	return statements
}

// DBAdmin issues statements through the mysql command line client
type DBAdmin struct {
	runner   Runner
	mysqlBin string
	host     string
	port     int
	user     string
	password string
	logger   *zap.Logger
}

// NewDBAdmin creates an admin client logging in as the root user of cfg
func NewDBAdmin(runner Runner, mysqlBin string, cfg *models.BootstrapConfig, logger *zap.Logger) *DBAdmin {
	return &DBAdmin{
		runner:   runner,
		mysqlBin: mysqlBin,
		host:     cfg.DBHost,
		port:     cfg.DBPort,
		user:     cfg.RootUsername,
		password: cfg.RootPassword,
		logger:   logger,
	}
}

// GrantRemoteAccess runs each statement as its own client invocation.
// Failures are logged and otherwise ignored.
func (a *DBAdmin) GrantRemoteAccess(ctx context.Context, site *models.SiteConfig) {
	for i, statement := range AdminStatements(site) {
		_, err := a.runner.Run(ctx, a.mysqlBin, a.args(statement)...)
		if err != nil {
			a.logger.Warn("Administrative statement failed",
				zap.Int("statement", i+1),
				zap.String("db_name", site.DBName),
				zap.Error(err))
			continue
		}
		a.logger.Info("Administrative statement applied",
			zap.Int("statement", i+1),
			zap.String("db_name", site.DBName))
	}
}

func (a *DBAdmin) args(statement string) []string {
	args := []string{"-h" + a.host}
	if a.port != 0 {
		args = append(args, fmt.Sprintf("-P%d", a.port))
	}
	return append(args,
		"-u"+a.user,
		fmt.Sprintf("-p%s", a.password),
		"-e", statement,
	)
}
