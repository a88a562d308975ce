package executil

import (
	"context"
	"errors"
	"os/exec"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRealExecutor_Run(t *testing.T) {
	exec := &RealExecutor{}
	ctx := context.Background()

	t.Run("successful command", func(t *testing.T) {
		out, err := exec.Run(ctx, "echo", "hello")
		require.NoError(t, err)
		assert.Equal(t, "hello\n", string(out))
	})

	t.Run("command not found", func(t *testing.T) {
		_, err := exec.Run(ctx, "nonexistent-command-12345")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "exec nonexistent-command-12345")
	})
}

func TestRealExecutor_Output(t *testing.T) {
	ex := &RealExecutor{}
	ctx := context.Background()

	t.Run("stdout only", func(t *testing.T) {
		out, err := ex.Output(ctx, "sh", "-c", "echo out; echo err >&2")
		require.NoError(t, err)
		assert.Equal(t, "out\n", string(out))
	})

	t.Run("stderr folded into error", func(t *testing.T) {
		_, err := ex.Output(ctx, "sh", "-c", "echo 'daemon not running' >&2; exit 1")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "daemon not running")

		var exitErr *exec.ExitError
		assert.ErrorAs(t, err, &exitErr, "original ExitError should be preserved via wrapping")
	})

	t.Run("stderr capped", func(t *testing.T) {
		_, err := ex.Output(ctx, "sh", "-c", "printf '%s' \""+strings.Repeat("A", maxStderrLen*2)+"\" >&2; exit 1")
		require.Error(t, err)
		assert.NotContains(t, err.Error(), strings.Repeat("A", maxStderrLen+1))
	})
}

func TestRecordingExecutor(t *testing.T) {
	ctx := context.Background()

	t.Run("records commands", func(t *testing.T) {
		ex := &RecordingExecutor{}

		_, _ = ex.Run(ctx, "docker", "volume", "rm", "abc")
		_, _ = ex.Output(ctx, "docker", "images")

		assert.Equal(t, []string{"docker volume rm abc", "docker images"}, ex.Lines())
	})

	t.Run("longest prefix wins", func(t *testing.T) {
		ex := &RecordingExecutor{
			Outputs: map[string][]byte{
				"docker":        []byte("generic"),
				"docker images": []byte("images"),
			},
			Errors: map[string]error{
				"docker volume rm": errors.New("in use"),
			},
		}

		out, err := ex.Output(ctx, "docker", "images", "-f", "dangling=true")
		require.NoError(t, err)
		assert.Equal(t, "images", string(out))

		out, err = ex.Output(ctx, "docker", "ps")
		require.NoError(t, err)
		assert.Equal(t, "generic", string(out))

		_, err = ex.Run(ctx, "docker", "volume", "rm", "x")
		assert.EqualError(t, err, "in use")
	})

	t.Run("lookpath honors missing", func(t *testing.T) {
		ex := &RecordingExecutor{Missing: map[string]bool{"docker": true}}

		_, err := ex.LookPath("docker")
		require.ErrorIs(t, err, exec.ErrNotFound)

		p, err := ex.LookPath("node")
		require.NoError(t, err)
		assert.Equal(t, "/usr/bin/node", p)
	})

	t.Run("reset clears commands", func(t *testing.T) {
		ex := &RecordingExecutor{}
		_, _ = ex.Run(ctx, "echo", "hello")
		require.Len(t, ex.Commands, 1)

		ex.Reset()
		assert.Empty(t, ex.Commands)
	})
}
