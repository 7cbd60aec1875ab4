package provision

import (
	"path/filepath"
	"regexp"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/hashicorp/go-version"
	"github.com/spf13/afero"
)

// lastMajorWithoutDBParams is the newest framework major that infers the
// database type, host and port on its own
const lastMajorWithoutDBParams = 11

var versionRegex = regexp.MustCompile(`(?m)^__version__\s*=\s*["']([^"']+)["']`)

// DetectFrameworkVersion reads __version__ from the framework package in benchDir
func DetectFrameworkVersion(fs afero.Fs, benchDir string) (*version.Version, error) {
	path := filepath.Join(benchDir, "apps", "frappe", "frappe", "__init__.py")

	content, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read framework version")
	}

	match := versionRegex.FindSubmatch(content)
	if match == nil {
		return nil, errors.Newf("no __version__ found in %s", path)
	}

	return ParseFrameworkVersion(string(match[1]))
}

// ParseFrameworkVersion parses a version string. Develop builds such as
// 15.x.x-develop have their x segments read as 0.
func ParseFrameworkVersion(raw string) (*version.Version, error) {
	core, pre, hasPre := strings.Cut(strings.TrimSpace(raw), "-")

	segments := strings.Split(core, ".")
	for i, segment := range segments {
		if segment == "x" || segment == "X" {
			segments[i] = "0"
		}
	}

	normalized := strings.Join(segments, ".")
	if hasPre {
		normalized += "-" + pre
	}

	v, err := version.NewVersion(normalized)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid framework version %q", raw)
	}
	return v, nil
}

// SupportsDBParams reports whether new-site accepts explicit db type, host and port
func SupportsDBParams(v *version.Version) bool {
	return v.Segments()[0] > lastMajorWithoutDBParams
}
