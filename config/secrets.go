package config

import (
	"os"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/spf13/afero"
)

// secretFileSuffix marks the variable holding a path to a mounted secret,
// usually somewhere under /run/secrets/
const secretFileSuffix = "_FILE"

// SecretResolver looks up credentials from the environment, falling back to
// docker-style secret files
type SecretResolver struct {
	Fs     afero.Fs
	Getenv func(string) string
}

// NewSecretResolver creates a resolver reading the process environment
func NewSecretResolver(fs afero.Fs) *SecretResolver {
	return &SecretResolver{Fs: fs, Getenv: os.Getenv}
}

// Resolve returns the value of name, then the trimmed contents of the file
// named by name_FILE, then def. Empty values count as missing at each step.
func (r *SecretResolver) Resolve(name, def string) (string, error) {
	if val := r.Getenv(name); val != "" {
		return val, nil
	}

	val, err := r.fromFile(name + secretFileSuffix)
	if err != nil {
		return "", err
	}
	if val != "" {
		return val, nil
	}

	return def, nil
}

func (r *SecretResolver) fromFile(envVar string) (string, error) {
	path := r.Getenv(envVar)
	if path == "" {
		return "", nil
	}

	content, err := afero.ReadFile(r.Fs, path)
	if err != nil {
		return "", errors.Wrapf(err, "failed to read secret file from %s", envVar)
	}

	return strings.TrimSpace(string(content)), nil
}
