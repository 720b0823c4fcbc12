package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCmdRegistersSubcommands(t *testing.T) {
	root := newRootCmd()

	for _, name := range []string{"init", "seed"} {
		cmd, _, err := root.Find([]string{name})
		require.NoError(t, err)
		assert.Equal(t, name, cmd.Name())
	}

	seed, _, err := root.Find([]string{"seed"})
	require.NoError(t, err)
	assert.NotNil(t, seed.Flags().Lookup("file"))
}

func TestCommandsRequireDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")

	for _, name := range []string{"init", "seed"} {
		root := newRootCmd()
		var out bytes.Buffer
		root.SetOut(&out)
		root.SetErr(&out)
		root.SetArgs([]string{name, "--database-url", ""})

		err := root.Execute()
		assert.ErrorContains(t, err, "DATABASE_URL is required", name)
	}
}
