package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rp1-run/rp1/internal/testutil"
)

func TestLoad_ConfigVersion(t *testing.T) {
	cases := []struct {
		name    string
		content string
		wantErr string
	}{
		{"current", "configVersion: \"1\"\n", ""},
		{"unknown", "{\n  configVersion: \"2\"\n}\n", `unsupported configVersion: "2" (supported: 1)`},
		{"missing", "plugin: \"base\"\n", "configVersion"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d := t.TempDir()
			testutil.WriteTree(t, d, map[string]string{DefaultFileName: tc.content})
			_, err := Load(filepath.Join(d, DefaultFileName))
			if tc.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}
