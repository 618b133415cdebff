package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfirm(t *testing.T) {
	cases := map[string]bool{
		"yes\n": true,
		"Y\n":   true,
		" y ":   true,
		"no\n":  false,
		"\n":    false,
		"":      false,
		"maybe": false,
	}
	for input, want := range cases {
		var out bytes.Buffer
		assert.Equal(t, want, confirm(strings.NewReader(input), &out, "ok? "), "%q", input)
		assert.Equal(t, "ok? ", out.String())
	}
}

func TestRootCmd_Subcommands(t *testing.T) {
	root := newRootCmd()

	for _, name := range []string{"migrate", "seed", "archive"} {
		cmd, _, err := root.Find([]string{name})
		require.NoError(t, err)
		assert.Equal(t, name, cmd.Name())
	}

	seed, _, err := root.Find([]string{"seed"})
	require.NoError(t, err)
	assert.NotNil(t, seed.Flags().Lookup("yes"))
}

func TestSeedCmd_RequiresPath(t *testing.T) {
	root := newRootCmd()
	root.SetArgs([]string{"seed"})
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})

	assert.Error(t, root.Execute())
}

func TestSeedCmd_MissingFile(t *testing.T) {
	root := newRootCmd()
	root.SetArgs([]string{"seed", "does-not-exist.xlsx", "--yes"})
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})

	err := root.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open workbook")
}
