package provision

import (
	"context"
	"net"
	"os"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/knownhosts"

	"frappe-site-bootstrap/config"
)

const defaultSSHPort = "22"

// SSHConfig holds SSH connection settings for running the database client remotely
type SSHConfig struct {
	Host           string
	User           string
	Port           string
	KeyPath        string
	Password       string
	KnownHostsPath string
}

// SSHConfigFromEnv reads the DB_ADMIN_SSH_* variables.
// It returns nil when no SSH host is configured.
func SSHConfigFromEnv(resolver *config.SecretResolver) (*SSHConfig, error) {
	host := resolver.Getenv("DB_ADMIN_SSH_HOST")
	if host == "" {
		return nil, nil
	}

	password, err := resolver.Resolve("DB_ADMIN_SSH_PASSWORD", "")
	if err != nil {
		return nil, err
	}

	cfg := &SSHConfig{
		Host:           host,
		User:           resolver.Getenv("DB_ADMIN_SSH_USER"),
		Port:           resolver.Getenv("DB_ADMIN_SSH_PORT"),
		KeyPath:        resolver.Getenv("DB_ADMIN_SSH_KEY_PATH"),
		Password:       password,
		KnownHostsPath: resolver.Getenv("DB_ADMIN_SSH_KNOWN_HOSTS"),
	}
	if cfg.Port == "" {
		cfg.Port = defaultSSHPort
	}

	if cfg.User == "" || (cfg.KeyPath == "" && cfg.Password == "") {
		return nil, errors.New("incomplete SSH configuration")
	}

	return cfg, nil
}

// SSHRunner runs commands through a shell on a remote host
type SSHRunner struct {
	client *ssh.Client
}

// NewSSHRunner connects to the configured host
func NewSSHRunner(cfg *SSHConfig, logger *zap.Logger) (*SSHRunner, error) {
	var authMethods []ssh.AuthMethod

	if cfg.KeyPath != "" {
		key, err := os.ReadFile(cfg.KeyPath)
		if err != nil {
			return nil, errors.Wrap(err, "unable to read private key")
		}

		signer, err := ssh.ParsePrivateKey(key)
		if err != nil {
			return nil, errors.Wrap(err, "unable to parse private key")
		}
		authMethods = append(authMethods, ssh.PublicKeys(signer))
	}

	if cfg.Password != "" {
		authMethods = append(authMethods, ssh.Password(cfg.Password))
	}

	hostKeyCallback := ssh.InsecureIgnoreHostKey()
	if cfg.KnownHostsPath != "" {
		cb, err := knownhosts.New(cfg.KnownHostsPath)
		if err != nil {
			return nil, errors.Wrap(err, "unable to load known hosts")
		}
		hostKeyCallback = cb
	} else {
		logger.Warn("No known hosts file configured, host key will not be verified",
			zap.String("host", cfg.Host))
	}

	clientConfig := &ssh.ClientConfig{
		User:            cfg.User,
		Auth:            authMethods,
		HostKeyCallback: hostKeyCallback,
		Timeout:         30 * time.Second,
	}

	addr := net.JoinHostPort(cfg.Host, cfg.Port)
	logger.Info("Connecting to SSH server", zap.String("addr", addr), zap.String("user", cfg.User))
	client, err := ssh.Dial("tcp", addr, clientConfig)
	if err != nil {
		return nil, errors.Wrap(err, "unable to connect to SSH server")
	}

	return &SSHRunner{client: client}, nil
}

// Run executes the command in a new session. Arguments are quoted for the remote shell.
func (r *SSHRunner) Run(ctx context.Context, command string, args ...string) ([]byte, error) {
	session, err := r.client.NewSession()
	if err != nil {
		return nil, errors.Wrap(err, "failed to create session")
	}
	defer session.Close()

	type result struct {
		output []byte
		err    error
	}
	done := make(chan result, 1)

	cmdline := shellJoin(append([]string{command}, args...))
	go func() {
		output, err := session.CombinedOutput(cmdline)
		done <- result{output: output, err: err}
	}()

	select {
	case res := <-done:
		if res.err != nil {
			return res.output, errors.Wrapf(res.err, "failed to execute '%s' remotely: %s", command, strings.TrimSpace(string(res.output)))
		}
		return res.output, nil
	case <-ctx.Done():
		session.Close()
		return nil, ctx.Err()
	}
}

// Close closes the SSH connection
func (r *SSHRunner) Close() error {
	return r.client.Close()
}

// shellJoin quotes every word for a POSIX shell
func shellJoin(words []string) string {
	quoted := make([]string, len(words))
	for i, word := range words {
		quoted[i] = "'" + strings.ReplaceAll(word, "'", `'\''`) + "'"
	}
	return strings.Join(quoted, " ")
}
