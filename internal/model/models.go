package model

import "time"

// RootID is the id of the single designated root folder.
const RootID = "root"

// NoParent is the parent sentinel carried by the root record.
const NoParent = ""

// Kind classifies a record.
type Kind string

const (
	KindFolder   Kind = "folder"
	KindDocument Kind = "document"
	KindImage    Kind = "image"
	KindVideo    Kind = "video"
	KindAudio    Kind = "audio"
	KindArchive  Kind = "archive"
	KindCode     Kind = "code"
	KindPDF      Kind = "pdf"
	KindUnknown  Kind = "unknown"
)

// Kinds lists every valid kind in display order.
var Kinds = []Kind{
	KindFolder, KindDocument, KindImage, KindVideo, KindAudio,
	KindArchive, KindCode, KindPDF, KindUnknown,
}

// Valid reports whether k is one of the known kinds.
func (k Kind) Valid() bool {
	for _, known := range Kinds {
		if k == known {
			return true
		}
	}
	return false
}

// FileRecord is one node in the virtual tree: either a folder or a file.
// Records are treated as values; mutations produce modified clones.
type FileRecord struct {
	ID         string    // Opaque unique id, never reused
	Name       string    // Display name, not unique among siblings
	Kind       Kind      // folder, document, image, ...
	Size       int64     // Byte count; 0 for folders
	ModifiedAt time.Time // Bumped by content-affecting mutations
	Content    *string   // Text payload; nil when absent (always nil for folders)
	ParentID   string    // Containing folder id, or NoParent for the root

	IsEncrypted    bool   // True between a successful encrypt and decrypt
	Permissions    string // Free-form mode token, e.g. "644"
	Owner          string
	LastAccessedBy string
	Version        int

	// OriginalID links an archive produced by compression back to its source.
	OriginalID string
}

// IsFolder reports whether the record is a folder.
func (f *FileRecord) IsFolder() bool {
	return f.Kind == KindFolder
}

// IsRoot reports whether the record is the root folder.
func (f *FileRecord) IsRoot() bool {
	return f.ParentID == NoParent
}

// HasContent reports whether the record carries a non-empty payload.
func (f *FileRecord) HasContent() bool {
	return f.Content != nil && *f.Content != ""
}

// Text returns the payload, or "" when absent.
func (f *FileRecord) Text() string {
	if f.Content == nil {
		return ""
	}
	return *f.Content
}

// Clone returns a copy that shares no mutable state with f.
func (f *FileRecord) Clone() *FileRecord {
	c := *f
	if f.Content != nil {
		s := *f.Content
		c.Content = &s
	}
	return &c
}

// StringPtr returns a pointer to s. Handy for building Content values.
func StringPtr(s string) *string {
	return &s
}

// Action is an access-controlled verb.
type Action string

const (
	ActionRead    Action = "read"
	ActionWrite   Action = "write"
	ActionDelete  Action = "delete"
	ActionEncrypt Action = "encrypt"
)

// Role is a static, named permission set.
// A missing action in Permissions means the action is denied.
type Role struct {
	ID          string
	Name        string
	Permissions map[Action]bool
}

// Allows reports whether the role grants action.
func (r *Role) Allows(action Action) bool {
	return r.Permissions[action]
}
