package core

import (
	"strings"
)

// FileTypeLink marks a record that points at an external resource rather
// than a stored payload. Matching is case-insensitive.
const FileTypeLink = "URL"

// DefaultMIMEType is used when a record's file type has no known mapping.
const DefaultMIMEType = "application/octet-stream"

// mimeTypes maps canonical file type labels to their MIME types.
var mimeTypes = map[string]string{
	"PDF":  "application/pdf",
	"EPUB": "application/epub+zip",
	"TXT":  "text/plain",
	"MP3":  "audio/mpeg",
	"MP4":  "video/mp4",
	"PNG":  "image/png",
	"JPG":  "image/jpeg",
}

// MIMETypeForFileType returns the MIME type for a file type label, falling
// back to DefaultMIMEType for unknown labels. Lookup is case-insensitive.
func MIMETypeForFileType(fileType string) string {
	if mt, ok := mimeTypes[strings.ToUpper(fileType)]; ok {
		return mt
	}
	return DefaultMIMEType
}

// Record is a catalog entry describing one user-owned document.
// The record carries descriptive metadata only; binary content lives in a
// separate Payload keyed by the record id.
type Record struct {
	Id          string `json:"id"`
	AddedDate   Date   `json:"addedDate"`
	Title       string `json:"title"`
	Level       string `json:"level,omitempty"`
	Category    string `json:"category,omitempty"`
	FileType    string `json:"fileType"`
	Language    string `json:"language,omitempty"`
	CoverEmoji  string `json:"coverEmoji,omitempty"`
	CoverColor  string `json:"coverColor,omitempty"`
	Description string `json:"description,omitempty"`
	SourceUrl   string `json:"sourceUrl,omitempty"`
}

// HasBinaryPayload reports whether the record is expected to have stored
// binary content. Link records reference external resources and carry none.
func (r *Record) HasBinaryPayload() bool {
	return !strings.EqualFold(r.FileType, FileTypeLink)
}

// Draft holds the caller-supplied fields for a new record, before an id and
// added date are assigned.
type Draft struct {
	Title       string
	Level       string
	Category    string
	FileType    string
	Language    string
	CoverEmoji  string
	CoverColor  string
	Description string
	SourceUrl   string
}

// NewRecord builds a Record from a draft plus the generated id and date.
func NewRecord(d Draft, id string, added Date) *Record {
	return &Record{
		Id:          id,
		AddedDate:   added,
		Title:       d.Title,
		Level:       d.Level,
		Category:    d.Category,
		FileType:    d.FileType,
		Language:    d.Language,
		CoverEmoji:  d.CoverEmoji,
		CoverColor:  d.CoverColor,
		Description: d.Description,
		SourceUrl:   d.SourceUrl,
	}
}

// Patch describes a partial update to a record's metadata. Nil fields are
// left unchanged. The id and added date of a record are fixed at creation
// and cannot be patched.
type Patch struct {
	Title       *string
	Level       *string
	Category    *string
	FileType    *string
	Language    *string
	CoverEmoji  *string
	CoverColor  *string
	Description *string
	SourceUrl   *string
}

// Apply copies the patch's non-nil fields onto the record. Patching the
// file type never touches any stored payload.
func (p Patch) Apply(r *Record) {
	if p.Title != nil {
		r.Title = *p.Title
	}
	if p.Level != nil {
		r.Level = *p.Level
	}
	if p.Category != nil {
		r.Category = *p.Category
	}
	if p.FileType != nil {
		r.FileType = *p.FileType
	}
	if p.Language != nil {
		r.Language = *p.Language
	}
	if p.CoverEmoji != nil {
		r.CoverEmoji = *p.CoverEmoji
	}
	if p.CoverColor != nil {
		r.CoverColor = *p.CoverColor
	}
	if p.Description != nil {
		r.Description = *p.Description
	}
	if p.SourceUrl != nil {
		r.SourceUrl = *p.SourceUrl
	}
}

// Payload is the binary content attached to a record.
type Payload struct {
	RecordId string
	MimeType string
	Bytes    []byte
}

// PayloadOutcome reports how payload handling went for an operation that
// may succeed on metadata while degrading on content.
type PayloadOutcome int

const (
	// PayloadNotAttempted means the operation had no payload to store.
	PayloadNotAttempted PayloadOutcome = iota
	// PayloadOK means the payload was stored and is retrievable.
	PayloadOK
	// PayloadDegraded means the record was stored but its payload was not.
	PayloadDegraded
)

// String implements fmt.Stringer.
func (o PayloadOutcome) String() string {
	switch o {
	case PayloadNotAttempted:
		return "not-attempted"
	case PayloadOK:
		return "ok"
	case PayloadDegraded:
		return "degraded"
	default:
		return "unknown"
	}
}
