// Package backgrounds builds and serves the catalog of background videos.
package backgrounds

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/borgmon/reminder-clock/pkg/models"
	"github.com/google/renameio/v2"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Item is one manifest entry: a video with its thumbnail.
type Item struct {
	Key      string `json:"key"`
	Label    string `json:"label"`
	VideoSrc string `json:"videoSrc"`
	ThumbSrc string `json:"thumbSrc"`
}

// Background converts the item to the persisted selection.
func (it Item) Background() models.Background {
	return models.Background{Label: it.Label, Src: it.VideoSrc, Thumb: it.ThumbSrc}
}

var (
	// Lower rank wins when one base name has several files.
	videoExts = map[string]int{".mp4": 0, ".mov": 1, ".webm": 2}
	thumbExts = map[string]int{".png": 0, ".jpg": 1, ".jpeg": 2, ".webp": 3}

	separators = regexp.MustCompile(`[-_]+`)
)

// Titleize turns a file base name into a label: "late-night_rain" -> "Late Night Rain".
func Titleize(name string) string {
	// Casers are stateful, so each call gets its own.
	return cases.Title(language.English, cases.NoLower).String(separators.ReplaceAllString(name, " "))
}

// Build pairs <root>/videos and <root>/thumbs by base name. Only complete
// pairs are returned, sorted by key. Missing directories yield no items.
func Build(root string) ([]Item, error) {
	videos, err := listFiles(filepath.Join(root, "videos"), videoExts)
	if err != nil {
		return nil, err
	}
	thumbs, err := listFiles(filepath.Join(root, "thumbs"), thumbExts)
	if err != nil {
		return nil, err
	}

	keys := make([]string, 0, len(videos))
	for key := range videos {
		if _, ok := thumbs[key]; ok {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)

	items := make([]Item, 0, len(keys))
	for _, key := range keys {
		items = append(items, Item{
			Key:      key,
			Label:    Titleize(key),
			VideoSrc: "/videos/" + videos[key],
			ThumbSrc: "/thumbs/" + thumbs[key],
		})
	}
	return items, nil
}

// listFiles maps base name to file name for regular files with an allowed
// extension, keeping the best ranked extension per base name.
func listFiles(dir string, exts map[string]int) (map[string]string, error) {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", dir, err)
	}

	files := make(map[string]string, len(entries))
	ranks := make(map[string]int, len(entries))
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		ext := filepath.Ext(e.Name())
		rank, ok := exts[strings.ToLower(ext)]
		if !ok {
			continue
		}
		base := strings.TrimSuffix(e.Name(), ext)
		if best, seen := ranks[base]; seen && best <= rank {
			continue
		}
		files[base] = e.Name()
		ranks[base] = rank
	}
	return files, nil
}

// Write stores items as indented JSON, replacing path atomically.
func Write(path string, items []Item) error {
	if items == nil {
		items = []Item{}
	}
	data, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}
	if err := renameio.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}
	return nil
}

// Read loads a manifest written by Write.
func Read(path string) ([]Item, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	var items []Item
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("decode manifest %s: %w", path, err)
	}
	return items, nil
}
