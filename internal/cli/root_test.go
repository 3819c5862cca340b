package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "fieldline", cmd.Use)
	assert.Contains(t, cmd.Long, "CUE")
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	commands := []string{"validate", "eval", "seed", "versions", "audit"}

	for _, cmdName := range commands {
		t.Run(cmdName, func(t *testing.T) {
			subCmd, _, err := cmd.Find([]string{cmdName})
			require.NoError(t, err, "Command %s should exist", cmdName)
			require.NotNil(t, subCmd)
			assert.Equal(t, cmdName, subCmd.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	verboseFlag := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verboseFlag)
	assert.Equal(t, "v", verboseFlag.Shorthand)
	assert.Equal(t, "false", verboseFlag.DefValue)

	formatFlag := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, formatFlag)
	assert.Equal(t, "text", formatFlag.DefValue)
}

func TestInvalidFormatRejected(t *testing.T) {
	_, err := execute(t, "--format", "xml", "eval", "1 + 1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}

func TestSeedCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	seedCmd, _, err := cmd.Find([]string{"seed"})
	require.NoError(t, err)

	for _, name := range []string{"db", "reset", "yes"} {
		require.NotNil(t, seedCmd.Flags().Lookup(name), "flag %s", name)
	}
}

func TestAuditCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	auditCmd, _, err := cmd.Find([]string{"audit"})
	require.NoError(t, err)

	require.NotNil(t, auditCmd.Flags().Lookup("db"))
	require.NotNil(t, auditCmd.Flags().Lookup("verify"))
}

func TestGetExitCode(t *testing.T) {
	assert.Equal(t, ExitFailure, GetExitCode(assert.AnError))
	assert.Equal(t, ExitCommandError, GetExitCode(NewExitError(ExitCommandError, "boom")))
}
