package main

import (
	"os"
	"path/filepath"
	"strings"
)

var imageExtensions = []string{".png", ".jpg", ".jpeg", ".gif", ".webp"}

// PlayerImage resolves the image for a player name, falling back to the
// shared default image.
func (ic ImageConfig) PlayerImage(name string) (string, bool) {
	return ic.findWithDefault("players", name)
}

// ItemImage resolves the image for an item name, with the default fallback.
func (ic ImageConfig) ItemImage(name string) (string, bool) {
	return ic.findWithDefault("items", name)
}

// LocationImage resolves the image for a location name, with the default
// fallback.
func (ic ImageConfig) LocationImage(name string) (string, bool) {
	return ic.findWithDefault("locations", name)
}

// EventImage resolves the badge for an event type. No default fallback: an
// unknown event type simply shows no badge.
func (ic ImageConfig) EventImage(t EventType) (string, bool) {
	return ic.find("events", string(t))
}

func (ic ImageConfig) findWithDefault(sub, name string) (string, bool) {
	if path, ok := ic.find(sub, name); ok {
		return path, true
	}
	if ic.DefaultImage != "" {
		if _, err := os.Stat(ic.DefaultImage); err == nil {
			return ic.DefaultImage, true
		}
	}
	return "", false
}

// find looks for <dir>/<sub>/<sanitized name>.<ext>, trying each known
// extension, then falls back to a case-insensitive scan of the directory.
func (ic ImageConfig) find(sub, name string) (string, bool) {
	if !ic.Enabled || name == "" {
		return "", false
	}

	dir := filepath.Join(ic.Dir, sub)
	base := sanitizeImageName(name)

	for _, ext := range imageExtensions {
		path := filepath.Join(dir, base+ext)
		if _, err := os.Stat(path); err == nil {
			return path, true
		}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", false
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		stem := strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name()))
		if strings.EqualFold(stem, base) {
			return filepath.Join(dir, entry.Name()), true
		}
	}
	return "", false
}

// sanitizeImageName maps a display name to a filesystem-safe stem: spaces
// and punctuation become underscores, runs collapse to one.
func sanitizeImageName(name string) string {
	var b strings.Builder
	lastUnderscore := false
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastUnderscore = false
		default:
			if !lastUnderscore && b.Len() > 0 {
				b.WriteByte('_')
				lastUnderscore = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "_")
}
