// Package worksheets stores uploaded worksheet files and their descriptive metadata.
// Uploads write the blob first and only persist a record once the blob exists.
package worksheets

import (
	"fmt"
	"strings"
	"time"
)

// DefaultSubject is assigned when an upload omits a subject.
const DefaultSubject = "Other"

// Worksheet is a stored worksheet record. JSON names match the public API.
type Worksheet struct {
	ID            string    `json:"_id"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	Category      string    `json:"category"`
	Subject       string    `json:"subject"`
	Tags          []string  `json:"tags"`
	Grade         string    `json:"grade"`
	AgeGroup      string    `json:"ageGroup"`
	FileURL       string    `json:"fileUrl"`
	FileName      string    `json:"fileName"`
	OriginalName  string    `json:"originalName"`
	ContentType   string    `json:"contentType,omitempty"`
	SizeBytes     int64     `json:"sizeBytes,omitempty"`
	PageCount     *int      `json:"pageCount,omitempty"`
	ThumbnailURL  string    `json:"thumbnailUrl,omitempty"`
	ThumbnailName string    `json:"thumbnailName,omitempty"`
	UploadDate    time.Time `json:"uploadDate"`
}

// UploadCommand carries a file payload and the descriptive fields submitted with it.
// Tags is the raw comma-separated form value.
type UploadCommand struct {
	Data         []byte
	ContentType  string
	OriginalName string
	PageCount    *int
	Title        string
	Description  string
	Category     string
	Subject      string
	Tags         string
	Grade        string
	AgeGroup     string
}

// Validate checks the structural requirements of an upload. A maxSize of zero
// disables the size check. Missing descriptive fields are not errors.
func (c *UploadCommand) Validate(maxSize int64) error {
	if len(c.Data) == 0 {
		return fmt.Errorf("%w: empty payload", ErrInvalidFile)
	}
	if strings.TrimSpace(c.OriginalName) == "" {
		return fmt.Errorf("%w: missing file name", ErrInvalidFile)
	}
	if maxSize > 0 && int64(len(c.Data)) > maxSize {
		return ErrFileTooLarge
	}
	return nil
}

// NormalizedSubject returns the subject, or DefaultSubject when blank.
func (c *UploadCommand) NormalizedSubject() string {
	if s := strings.TrimSpace(c.Subject); s != "" {
		return s
	}
	return DefaultSubject
}

// EditCommand replaces the supplied fields of a record. Nil fields are left unchanged.
type EditCommand struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Category    *string `json:"category,omitempty"`
	Tags        *string `json:"tags,omitempty"`
	Grade       *string `json:"grade,omitempty"`
}

// Empty reports whether the command changes nothing.
func (c EditCommand) Empty() bool {
	return c.Title == nil && c.Description == nil && c.Category == nil && c.Tags == nil && c.Grade == nil
}

// Apply writes the supplied fields onto w.
func (c EditCommand) Apply(w *Worksheet) {
	if c.Title != nil {
		w.Title = *c.Title
	}
	if c.Description != nil {
		w.Description = *c.Description
	}
	if c.Category != nil {
		w.Category = *c.Category
	}
	if c.Tags != nil {
		w.Tags = ParseTags(*c.Tags)
	}
	if c.Grade != nil {
		w.Grade = *c.Grade
	}
}

// ParseTags splits comma-separated text into trimmed, non-empty tags.
// The result is never nil.
func ParseTags(raw string) []string {
	tags := make([]string, 0)
	for t := range strings.SplitSeq(raw, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}
