package probes

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hay-kot/rnclean/internal/core/task"
	"github.com/hay-kot/rnclean/pkg/executil"
)

func TestParseDockerSize(t *testing.T) {
	tests := []struct {
		in   string
		want uint64
	}{
		{"1.2GB", 1_200_000_000},
		{"512kB (40%)", 512_000},
		{"0B (virtual 3MB)", 0},
		{"", 0},
		{"garbage", 0},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseDockerSize(tt.in))
		})
	}
}

func TestDockerProbe(t *testing.T) {
	rec := &executil.RecordingExecutor{
		Outputs: map[string][]byte{
			"docker container ls": []byte("abc123,web,2MB (virtual 300MB)\ndef456,idle,0B (virtual 1GB)\n"),
			"docker images":       []byte("sha256:aa,150MB\n"),
			"docker volume ls":    []byte("vol1\nvol2\n"),
			"docker system df":    []byte("Images\t5\t2GB\t1GB (50%)\nBuild Cache\t12\t800MB\t600MB\n"),
		},
	}

	scan := func(kind DockerKind) []task.Item {
		p := &DockerProbe{Kind: kind, Binary: "docker", Exec: rec, Logger: zerolog.Nop()}
		items, err := p.Scan(context.Background())
		require.NoError(t, err)
		return items
	}

	containers := scan(DockerContainer)
	require.Len(t, containers, 1)
	assert.Equal(t, "docker://container/abc123", containers[0].Path)
	assert.Equal(t, uint64(2_000_000), containers[0].Size)
	assert.True(t, containers[0].IsContainerResource())

	images := scan(DockerImage)
	require.Len(t, images, 1)
	assert.Equal(t, "docker://image/sha256:aa", images[0].Path)

	volumes := scan(DockerVolume)
	require.Len(t, volumes, 2)
	assert.Equal(t, uint64(DefaultVolumeSize), volumes[1].Size)

	cache := scan(DockerCache)
	require.Len(t, cache, 1)
	assert.Equal(t, "docker://cache/build", cache[0].Path)
	assert.Equal(t, uint64(600_000_000), cache[0].Size)

	assert.Contains(t, rec.Lines(), "docker container ls -a --filter status=exited --format {{.ID}},{{.Names}},{{.Size}}")
}

func TestDockerProbe_Unavailable(t *testing.T) {
	t.Run("binary missing", func(t *testing.T) {
		rec := &executil.RecordingExecutor{Missing: map[string]bool{"docker": true}}
		p := &DockerProbe{Kind: DockerImage, Binary: "docker", Exec: rec, Logger: zerolog.Nop()}

		items, err := p.Scan(context.Background())
		require.NoError(t, err)
		assert.Empty(t, items)
		assert.Empty(t, rec.Commands)
	})

	t.Run("daemon down", func(t *testing.T) {
		rec := &executil.RecordingExecutor{
			Errors: map[string]error{"docker": errors.New("Cannot connect to the Docker daemon")},
		}
		p := &DockerProbe{Kind: DockerVolume, Binary: "docker", Exec: rec, Logger: zerolog.Nop()}

		items, err := p.Scan(context.Background())
		require.NoError(t, err)
		assert.Empty(t, items)
	})
}
