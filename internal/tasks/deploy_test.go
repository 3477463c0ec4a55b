package tasks

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	hderrors "github.com/alexisbeaulieu97/hardhatdesk/pkg/errors"
)

func TestFindDeployModule(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		setup   func(t *testing.T, dir string)
		want    string
		wantErr bool
	}{
		{
			name:    "missing modules directory",
			setup:   func(t *testing.T, dir string) {},
			wantErr: true,
		},
		{
			name: "empty modules directory",
			setup: func(t *testing.T, dir string) {
				require.NoError(t, os.MkdirAll(filepath.Join(dir, ModulesDir), 0o755))
			},
			wantErr: true,
		},
		{
			name: "only unrelated files",
			setup: func(t *testing.T, dir string) {
				writeModule(t, dir, "README.md")
				require.NoError(t, os.MkdirAll(filepath.Join(dir, ModulesDir, "nested.js"), 0o755))
			},
			wantErr: true,
		},
		{
			name: "picks the first module by name",
			setup: func(t *testing.T, dir string) {
				writeModule(t, dir, "Vault.js")
				writeModule(t, dir, "notes.txt")
				writeModule(t, dir, "Auction.ts")
			},
			want: filepath.Join(ModulesDir, "Auction.ts"),
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			dir := t.TempDir()
			tc.setup(t, dir)

			got, err := FindDeployModule(dir)
			if tc.wantErr {
				var preErr *hderrors.PreconditionError
				require.ErrorAs(t, err, &preErr)
				assert.Empty(t, got)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}
