package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoadmapCommandPrintsDefault(t *testing.T) {
	roadmapFile = ""
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"roadmap"})

	require.NoError(t, cmd.Execute())
	assert.True(t, strings.HasSuffix(strings.TrimSpace(out.String()), "7 levels, 33 tasks"))
	assert.Contains(t, out.String(), "1. 1枚ページの作成 [success]")
}

func TestRoadmapCommandRejectsInvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("levels: [{number: 1, title: x, color: teal}]"), 0o644))

	cmd := newRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"roadmap", "--file", path})
	assert.Error(t, cmd.Execute())
	roadmapFile = ""
}
