package provision

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFrameworkVersion(t *testing.T) {
	tests := []struct {
		raw       string
		major     int
		dbParams  bool
		wantError bool
	}{
		{raw: "11.1.68", major: 11, dbParams: false},
		{raw: "12.0.0", major: 12, dbParams: true},
		{raw: "13.2.1", major: 13, dbParams: true},
		{raw: "15.x.x-develop", major: 15, dbParams: true},
		{raw: "v10.1.0", major: 10, dbParams: false},
		{raw: "develop", wantError: true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			v, err := ParseFrameworkVersion(tt.raw)
			if tt.wantError {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.major, v.Segments()[0])
			assert.Equal(t, tt.dbParams, SupportsDBParams(v))
		})
	}
}

func TestDetectFrameworkVersion(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/bench/apps/frappe/frappe/__init__.py", []byte(`# Copyright notice
import os

__version__ = "14.45.0"
__title__ = "Frappe Framework"
`), 0644))

	v, err := DetectFrameworkVersion(fs, "/bench")
	require.NoError(t, err)
	assert.Equal(t, "14.45.0", v.String())
}

func TestDetectFrameworkVersionSingleQuotes(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/bench/apps/frappe/frappe/__init__.py", []byte("__version__ = '11.1.68'\n"), 0644))

	v, err := DetectFrameworkVersion(fs, "/bench")
	require.NoError(t, err)
	assert.False(t, SupportsDBParams(v))
}

func TestDetectFrameworkVersionMissing(t *testing.T) {
	fs := afero.NewMemMapFs()
	_, err := DetectFrameworkVersion(fs, "/bench")
	require.Error(t, err)

	require.NoError(t, afero.WriteFile(fs, "/bench/apps/frappe/frappe/__init__.py", []byte("import os\n"), 0644))
	_, err = DetectFrameworkVersion(fs, "/bench")
	require.Error(t, err)
}
