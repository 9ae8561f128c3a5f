package worksheets

import (
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"sync/atomic"
	"time"
)

// ThumbnailPrefix is the key prefix for preview images.
const ThumbnailPrefix = "thumbnails/"

// Keyer hands out storage keys of the form "<unix-millis>-<name>". The
// millisecond component strictly increases within a process, so two uploads
// of the same file never share a key.
type Keyer struct {
	last atomic.Int64
	now  func() time.Time
}

// NewKeyer creates a Keyer using the wall clock.
func NewKeyer() *Keyer {
	return &Keyer{now: time.Now}
}

// Key returns a fresh storage key for the client-supplied filename.
func (k *Keyer) Key(originalName string) string {
	return strconv.FormatInt(k.next(), 10) + "-" + SanitizeFilename(originalName)
}

func (k *Keyer) next() int64 {
	for {
		now := k.now().UnixMilli()
		last := k.last.Load()
		if now <= last {
			now = last + 1
		}
		if k.last.CompareAndSwap(last, now) {
			return now
		}
	}
}

// SanitizeFilename strips directories and characters unsafe in object keys.
func SanitizeFilename(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	replacer := strings.NewReplacer(
		" ", "_",
		"/", "_",
		":", "_",
		"*", "_",
		"?", "_",
		"\"", "_",
		"<", "_",
		">", "_",
		"|", "_",
		"#", "_",
		"%", "_",
	)
	name = replacer.Replace(name)
	if name == "" || name == "." || name == ".." {
		return "file"
	}
	return name
}

// ThumbnailKey derives the preview key for a stored file key.
func ThumbnailKey(key, ext string) string {
	stem := strings.TrimSuffix(key, path.Ext(key))
	return ThumbnailPrefix + stem + "." + ext
}
