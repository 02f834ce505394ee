// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package fsutil

import (
	"os"
	"os/user"
	"path"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReplaceTildeInDir(t *testing.T) {
	dir, err := ReplaceTildeInDir("/tmp/kernels")
	require.NoError(t, err)
	assert.Equal(t, "/tmp/kernels", dir)

	usr, err := user.Current()
	require.NoError(t, err)
	dir, err = ReplaceTildeInDir("~/.cache/evtgen")
	require.NoError(t, err)
	assert.Equal(t, path.Join(usr.HomeDir, ".cache/evtgen"), dir)
}

func TestWriteFile(t *testing.T) {
	filePath := path.Join(t.TempDir(), "ab", "cabc.cu")
	require.NoError(t, WriteFile(filePath, "// kernel"))
	contents, err := os.ReadFile(filePath)
	require.NoError(t, err)
	assert.Equal(t, "// kernel", string(contents))
}
