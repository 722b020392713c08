package cmd

import (
	"errors"
	"testing"

	"github.com/quantmind-br/appcenter/internal/helpers"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckDependency(t *testing.T) {
	t.Parallel()

	runner := &helpers.MockCommandRunner{
		LookPathFunc: func(name string) (string, error) {
			if name == "flatpak" {
				return "/usr/bin/flatpak", nil
			}
			return "", helpers.ErrCommandNotFound
		},
	}

	path, ok := checkDependency(runner, "flatpak")
	assert.True(t, ok)
	assert.Equal(t, "/usr/bin/flatpak", path)

	_, ok = checkDependency(runner, "nonexistentcommand123")
	assert.False(t, ok)
}

func TestCheckDirectory(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("/data/exists", 0755))
	require.NoError(t, afero.WriteFile(fs, "/data/file.txt", []byte("x"), 0644))

	assert.True(t, checkDirectory(fs, "/data/exists"))
	assert.True(t, checkDirectory(fs, "/data/create_me"))
	exists, err := afero.DirExists(fs, "/data/create_me")
	require.NoError(t, err)
	assert.True(t, exists)

	assert.False(t, checkDirectory(fs, "/data/file.txt"))
	assert.False(t, checkDirectory(afero.NewReadOnlyFs(afero.NewMemMapFs()), "/nowhere"))

	probe, err := afero.Exists(fs, "/data/exists/.appcenter-test")
	require.NoError(t, err)
	assert.False(t, probe)
}

func TestCheckUserDir(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("/home/test/.local/share/flatpak", 0755))
	require.NoError(t, afero.WriteFile(fs, "/home/test/flatpak-file", []byte("x"), 0644))

	assert.Equal(t, dirOK, checkUserDir(fs, "/home/test/.local/share/flatpak"))
	assert.Equal(t, dirMissing, checkUserDir(fs, "/home/test/missing"))
	assert.Equal(t, dirInvalid, checkUserDir(fs, "/home/test/flatpak-file"))
}

func TestDoctorCmd_Healthy(t *testing.T) {
	t.Parallel()

	deps := testDeps(t, testInstallation(t))
	_, err := runCmd(t, NewDoctorCmd(testConfig(), nopLogger(), deps), "--verbose")
	require.NoError(t, err)

	exists, err := afero.DirExists(deps.Fs, testConfig().Paths.DataDir)
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestDoctorCmd_MissingFlatpak(t *testing.T) {
	t.Parallel()

	deps := testDeps(t, testInstallation(t))
	deps.Runner = &helpers.MockCommandRunner{
		LookPathFunc: func(string) (string, error) {
			return "", helpers.ErrCommandNotFound
		},
	}

	_, err := runCmd(t, NewDoctorCmd(testConfig(), nopLogger(), deps))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 issue(s)")
}

func TestDoctorCmd_DisabledBackendSkipsCommand(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	cfg.Flatpak.Enabled = false
	deps := testDeps(t, testInstallation(t))
	deps.Runner = &helpers.MockCommandRunner{
		LookPathFunc: func(string) (string, error) {
			return "", helpers.ErrCommandNotFound
		},
	}

	_, err := runCmd(t, NewDoctorCmd(cfg, nopLogger(), deps))
	assert.NoError(t, err)
}

func TestDoctorCmd_UserDirIsFile(t *testing.T) {
	t.Parallel()

	deps := testDeps(t, testInstallation(t))
	require.NoError(t, afero.WriteFile(deps.Fs, deps.Paths.FlatpakUserDir(), []byte("x"), 0644))

	_, err := runCmd(t, NewDoctorCmd(testConfig(), nopLogger(), deps))
	assert.Error(t, err)
}

func TestDoctorCmd_RegistryFailure(t *testing.T) {
	t.Parallel()

	_, err := runCmd(t, NewDoctorCmd(testConfig(), nopLogger(), failingDeps(t, errors.New("boom"))))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 issue(s)")
}
