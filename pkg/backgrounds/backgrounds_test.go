package backgrounds

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/borgmon/reminder-clock/pkg/models"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func touch(t *testing.T, root string, names ...string) {
	t.Helper()
	for _, name := range names {
		path := filepath.Join(root, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, nil, 0o644))
	}
}

func TestTitleize(t *testing.T) {
	cases := map[string]string{
		"nocturne":        "Nocturne",
		"late-night_rain": "Late Night Rain",
		"city--lights":    "City Lights",
		"neonCity":        "NeonCity",
	}
	for in, want := range cases {
		assert.Equal(t, want, Titleize(in), in)
	}
}

func TestBuild_PairsVideosWithThumbs(t *testing.T) {
	root := t.TempDir()
	touch(t, root,
		"videos/Nocturne.mov", "thumbs/Nocturne.png",
		"videos/late-rain.MP4", "thumbs/late-rain.webp",
		"videos/orphan.webm",
		"thumbs/lonely.jpg",
		"videos/notes.txt", "thumbs/notes.png",
	)
	require.NoError(t, os.Mkdir(filepath.Join(root, "videos", "dir.mp4"), 0o755))

	items, err := Build(root)
	require.NoError(t, err)

	want := []Item{
		{Key: "Nocturne", Label: "Nocturne", VideoSrc: "/videos/Nocturne.mov", ThumbSrc: "/thumbs/Nocturne.png"},
		{Key: "late-rain", Label: "Late Rain", VideoSrc: "/videos/late-rain.MP4", ThumbSrc: "/thumbs/late-rain.webp"},
	}
	if diff := cmp.Diff(want, items); diff != "" {
		t.Errorf("manifest mismatch (-want +got):\n%s", diff)
	}
}

func TestBuild_MissingDirsYieldNothing(t *testing.T) {
	items, err := Build(t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestWriteRead(t *testing.T) {
	path := filepath.Join(t.TempDir(), "backgrounds.json")
	require.NoError(t, Write(path, nil))

	items, err := Read(path)
	require.NoError(t, err)
	assert.Empty(t, items)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "[]\n", string(data))
}

func TestCatalog_LoadFindResolve(t *testing.T) {
	path := filepath.Join(t.TempDir(), "backgrounds.json")
	c := NewCatalog(path)
	require.NoError(t, c.Load(), "missing manifest is empty, not an error")
	assert.Empty(t, c.Items())

	rain := Item{Key: "rain", Label: "Rain", VideoSrc: "/videos/rain.mp4", ThumbSrc: "/thumbs/rain.png"}
	require.NoError(t, Write(path, []Item{rain}))
	require.NoError(t, c.Load())

	got, ok := c.Find("rain")
	require.True(t, ok)
	assert.Equal(t, rain, got)
	_, ok = c.Find("/videos/rain.mp4")
	assert.True(t, ok)
	assert.Equal(t, []string{"/videos/rain.mp4"}, c.Sources())

	assert.Equal(t, rain, c.Resolve(models.Background{Label: "x", Src: "/videos/rain.mp4"}))
	fallback := c.Resolve(models.DefaultBackground)
	assert.Equal(t, "Nocturne", fallback.Label)
	assert.Equal(t, models.DefaultBackground, fallback.Background())
}

func TestCatalog_LoadRejectsCorruptManifest(t *testing.T) {
	path := filepath.Join(t.TempDir(), "backgrounds.json")
	require.NoError(t, os.WriteFile(path, []byte("{"), 0o644))

	assert.Error(t, NewCatalog(path).Load())
}

func TestCatalog_WatchReloads(t *testing.T) {
	path := filepath.Join(t.TempDir(), "backgrounds.json")
	require.NoError(t, Write(path, nil))

	c := NewCatalog(path)
	require.NoError(t, c.Load())

	reloaded := make(chan []Item, 4)
	unsubscribe := c.Subscribe(func(items []Item) {
		select {
		case reloaded <- items:
		default:
		}
	})
	defer unsubscribe()

	require.NoError(t, c.Watch(context.Background()))
	defer c.Close()

	dawn := Item{Key: "dawn", Label: "Dawn", VideoSrc: "/videos/dawn.mp4", ThumbSrc: "/thumbs/dawn.png"}
	require.NoError(t, Write(path, []Item{dawn}))

	select {
	case items := <-reloaded:
		assert.Equal(t, []Item{dawn}, items)
	case <-time.After(5 * time.Second):
		t.Fatal("manifest was not reloaded")
	}
	assert.Equal(t, []Item{dawn}, c.Items())
}

func TestCatalog_WatchStopsWithContext(t *testing.T) {
	path := filepath.Join(t.TempDir(), "backgrounds.json")
	c := NewCatalog(path)

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, c.Watch(ctx))
	require.NoError(t, c.Watch(ctx), "second Watch is a no-op")
	cancel()
	c.Close()
	c.Close()
}

func TestBuild_PrefersRankedExtensions(t *testing.T) {
	root := t.TempDir()
	touch(t, root,
		"videos/rain.webm", "videos/rain.mov", "videos/rain.mp4",
		"thumbs/rain.webp", "thumbs/rain.jpg",
	)

	items, err := Build(root)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "/videos/rain.mp4", items[0].VideoSrc)
	assert.Equal(t, "/thumbs/rain.jpg", items[0].ThumbSrc)
}
