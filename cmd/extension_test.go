package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtensionMechanism(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("extension scripts need a POSIX shell")
	}
	dir, _ := setup(t)

	script := `#!/bin/sh
echo "` + EnvBookFile + `=$` + EnvBookFile + `"
echo "` + EnvVerbose + `=$` + EnvVerbose + `"
echo "args=$*"
exit 3
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tb-hello"), []byte(script), 0755))
	t.Setenv("PATH", dir+string(os.PathListSeparator)+os.Getenv("PATH"))

	var out bytes.Buffer
	stdout = &out
	found, code := RunExtension("hello", []string{"a", "b"})
	require.True(t, found)
	assert.Equal(t, 3, code)

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	assert.Equal(t, []string{
		EnvBookFile + "=" + *bookFile,
		EnvVerbose + "=false",
		"args=a b",
	}, lines)
}

func TestExtensionNotFound(t *testing.T) {
	setup(t)
	t.Setenv("PATH", t.TempDir())
	found, code := RunExtension("missing", nil)
	assert.False(t, found)
	assert.Equal(t, 0, code)
}
