package provision

import (
	"context"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"frappe-site-bootstrap/models"
)

var testSiteConfig = &models.SiteConfig{DBName: "_5e5899d8398b5f7b", DBPassword: "kYd8H2bPq"}

func TestAdminStatements(t *testing.T) {
	assert.Equal(t, []string{
		"UPDATE mysql.user SET Host = '%' where User = '_5e5899d8398b5f7b'; FLUSH PRIVILEGES;",
		"ALTER USER '_5e5899d8398b5f7b'@'%' IDENTIFIED BY 'kYd8H2bPq'; FLUSH PRIVILEGES;",
		"GRANT ALL PRIVILEGES ON `_5e5899d8398b5f7b`.* TO '_5e5899d8398b5f7b'@'%'; FLUSH PRIVILEGES;",
	}, AdminStatements(testSiteConfig))
}

func TestGrantRemoteAccess(t *testing.T) {
	runner := &fakeRunner{}
	cfg := &models.BootstrapConfig{DBHost: "mariadb", DBPort: 3306, RootUsername: "root", RootPassword: "admin"}

	NewDBAdmin(runner, "mysql", cfg, zap.NewNop()).GrantRemoteAccess(context.Background(), testSiteConfig)

	require.Len(t, runner.calls, 3)
	statements := AdminStatements(testSiteConfig)
	for i, call := range runner.calls {
		assert.Equal(t, "mysql", call.Command)
		assert.Equal(t, []string{"-hmariadb", "-P3306", "-uroot", "-padmin", "-e", statements[i]}, call.Args)
	}
}

func TestGrantRemoteAccessIgnoresFailures(t *testing.T) {
	runner := &fakeRunner{failOn: map[int]error{0: errors.New("exit status 1")}}
	cfg := &models.BootstrapConfig{DBHost: "mariadb", RootUsername: "root", RootPassword: "admin"}
	core, logs := observer.New(zap.WarnLevel)

	NewDBAdmin(runner, "mysql", cfg, zap.New(core)).GrantRemoteAccess(context.Background(), testSiteConfig)

	assert.Len(t, runner.calls, 3)
	assert.Equal(t, 1, logs.Len())
	assert.NotContains(t, runner.calls[0].Args, "-P0")
}
