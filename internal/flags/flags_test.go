package flags

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

// TestUniqueFlags asserts that all flag names are unique.
func TestUniqueFlags(t *testing.T) {
	seen := make(map[string]struct{})
	for _, f := range Flags {
		for _, name := range f.Names() {
			_, dup := seen[name]
			require.False(t, dup, "duplicate flag %s", name)
			seen[name] = struct{}{}
		}
	}
}

func TestHasEnvVar(t *testing.T) {
	for _, f := range Flags {
		name := f.Names()[0]
		t.Run(name, func(t *testing.T) {
			envFlag, ok := f.(interface{ GetEnvVars() []string })
			require.True(t, ok, "must be able to cast the flag to an EnvVar interface")
			envs := envFlag.GetEnvVars()
			require.Len(t, envs, 1, "flags should have exactly one env var")
			want := EnvVarPrefix + "_" + strings.ToUpper(strings.ReplaceAll(name, "-", "_"))
			require.Equal(t, want, envs[0])
		})
	}
}

func TestNoneRequired(t *testing.T) {
	for _, f := range Flags {
		rf, ok := f.(cli.RequiredFlag)
		require.True(t, ok)
		require.False(t, rf.IsRequired(), f.Names()[0])
	}
}

func checkArgs(t *testing.T, args ...string) error {
	t.Helper()
	app := cli.NewApp()
	app.Flags = Flags
	app.Writer = io.Discard
	app.ErrWriter = io.Discard
	app.Action = Check
	return app.Run(append([]string{"probe"}, args...))
}

func TestCheck(t *testing.T) {
	require.NoError(t, checkArgs(t))
	require.NoError(t, checkArgs(t, "-v", "3"))
	require.NoError(t, checkArgs(t, "--verbosity", "0"))
	require.Error(t, checkArgs(t, "--verbosity", "4"))
	require.Error(t, checkArgs(t, "-v", "-1"))
	require.Error(t, checkArgs(t, "-v", "7"))
}

func TestVerbosityAliasReachesLongName(t *testing.T) {
	var got int
	app := cli.NewApp()
	app.Flags = Flags
	app.Action = func(c *cli.Context) error {
		got = c.Int(Verbosity.Name)
		return nil
	}
	require.NoError(t, app.Run([]string{"probe", "-v", "2"}))
	require.Equal(t, 2, got)
}
