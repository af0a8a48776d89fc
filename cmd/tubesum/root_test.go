package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anatolykoptev/go_tubesum/internal/engine"
)

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestConfigInitAndShow(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tubesum", "config.yaml")
	t.Setenv("TUBESUM_CONFIG", path)

	out, err := run(t, "", "config", "init")
	require.NoError(t, err)
	assert.Contains(t, out, "Created configuration file: "+path)
	_, err = os.Stat(path)
	require.NoError(t, err)

	_, err = run(t, "", "config", "init")
	require.Error(t, err)

	out, err = run(t, "", "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "Configuration file: "+path)
	assert.Contains(t, out, "provider=local format=markdown")
	assert.Contains(t, out, "local")
}

func TestArgumentErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"transcript needs a video", []string{"transcript"}},
		{"channel takes one url", []string{"channel", "a", "b"}},
		{"history takes no args", []string{"history", "extra"}},
		{"summarize needs input", []string{"summarize"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, "", tt.args...)
			assert.Error(t, err)
		})
	}
}

func TestSummarizeInput(t *testing.T) {
	newCmd := func(args ...string) *cobra.Command {
		cmd := newSummarizeCmd(&rootOptions{})
		require.NoError(t, cmd.ParseFlags(args))
		return cmd
	}

	t.Run("video argument", func(t *testing.T) {
		cmd := newCmd("--provider", "openai")
		in, err := summarizeInput(cmd, engine.SummarizeInput{}, []string{"dQw4w9WgXcQ"}, "", 0)
		require.NoError(t, err)
		assert.Equal(t, "dQw4w9WgXcQ", in.Video)
		assert.Nil(t, in.Temperature)
	})

	t.Run("stdin text", func(t *testing.T) {
		cmd := newCmd("--temperature", "0.7")
		cmd.SetIn(strings.NewReader("spoken words here"))
		in, err := summarizeInput(cmd, engine.SummarizeInput{}, nil, "-", 0.7)
		require.NoError(t, err)
		assert.Equal(t, "spoken words here", in.Text)
		require.NotNil(t, in.Temperature)
		assert.InDelta(t, 0.7, *in.Temperature, 1e-9)
	})

	t.Run("both video and file", func(t *testing.T) {
		cmd := newCmd()
		_, err := summarizeInput(cmd, engine.SummarizeInput{}, []string{"dQw4w9WgXcQ"}, "-", 0)
		assert.Error(t, err)
	})

	t.Run("empty stdin", func(t *testing.T) {
		cmd := newCmd()
		cmd.SetIn(strings.NewReader("   "))
		_, err := summarizeInput(cmd, engine.SummarizeInput{}, nil, "-", 0)
		assert.Error(t, err)
	})
}

func TestMask(t *testing.T) {
	assert.Equal(t, "-", mask(""))
	assert.Equal(t, "****", mask("abc"))
	assert.Equal(t, "****cdef", mask("sk-abcdef"))
}
