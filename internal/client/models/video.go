// Package models defines client-side data models used by the clipshelf CLI.
package models

import (
	"strings"
	"time"

	"golang.org/x/text/cases"
)

// TimeLayout is the persisted form of every timestamp: fixed-width UTC, so
// that lexical order of the stored text equals chronological order.
const TimeLayout = "2006-01-02T15:04:05.000000000Z"

// ClipLength is the duration, in seconds, of every clip produced by a capture.
const ClipLength = 5.0

// VideoRecord is one saved clip and its metadata.
type VideoRecord struct {
	// ID is opaque and immutable.
	ID string

	Name        string
	Description string

	// VideoLocation is the local path of the stored clip. Immutable.
	VideoLocation string

	// ThumbnailLocation is empty when no still was generated.
	ThumbnailLocation string

	// Duration is the clip length in seconds.
	Duration float64

	// CropInfo records the trim window within the source video. Informational.
	CropInfo *CropInfo

	// CreatedAt is set once at insertion, in UTC.
	CreatedAt time.Time

	// UpdatedAt is nil until the first update.
	UpdatedAt *time.Time
}

// CropInfo is the window [StartTime, EndTime) of the source, in seconds.
type CropInfo struct {
	StartTime float64
	EndTime   float64
	Duration  float64
}

// LastModified returns UpdatedAt, or CreatedAt when the record was never updated.
func (r VideoRecord) LastModified() time.Time {
	if r.UpdatedAt != nil {
		return *r.UpdatedAt
	}
	return r.CreatedAt
}

// Matches reports whether q occurs in the name or description under Unicode
// case folding. This is the in-memory twin of the repository search.
func (r VideoRecord) Matches(q string) bool {
	return FoldContains(r.Name, q) || FoldContains(r.Description, q)
}

// FoldContains reports whether needle occurs in haystack once both are case
// folded, so "STRASSE" matches "Straße".
func FoldContains(haystack, needle string) bool {
	// a Caser keeps state and must not be shared between goroutines
	fold := cases.Fold()
	return strings.Contains(fold.String(haystack), fold.String(needle))
}

// Apply returns a copy of r with the non-nil patch fields and updatedAt set.
func (r VideoRecord) Apply(p Patch, updatedAt time.Time) VideoRecord {
	if p.Name != nil {
		r.Name = *p.Name
	}
	if p.Description != nil {
		r.Description = *p.Description
	}
	if p.ThumbnailLocation != nil {
		r.ThumbnailLocation = *p.ThumbnailLocation
	}
	r.UpdatedAt = &updatedAt
	return r
}

// Patch is a partial update. Nil fields are left untouched; an empty
// ThumbnailLocation clears the thumbnail.
type Patch struct {
	Name              *string
	Description       *string
	ThumbnailLocation *string
}

// IsEmpty reports whether the patch touches no field.
func (p Patch) IsEmpty() bool {
	return p.Name == nil && p.Description == nil && p.ThumbnailLocation == nil
}

// Page is one slice of the newest-first listing.
type Page struct {
	Records []VideoRecord
	HasMore bool
	Total   int
}

// Stats aggregates the whole collection. Times are nil when it is empty.
type Stats struct {
	Count           int
	TotalDuration   float64
	OldestCreatedAt *time.Time
	NewestCreatedAt *time.Time
}

// Metadata is the raw name/description pair entered by the user.
type Metadata struct {
	Name        string `validate:"required,max=50"`
	Description string `validate:"max=200"`
}

// CropWindow is a trim request against a source video, in seconds.
type CropWindow struct {
	StartTime float64 `validate:"gte=0"`
	EndTime   float64 `validate:"gte=0,gtfield=StartTime"`
	Duration  float64 `validate:"gte=0.1,lte=5"`
}

// Info converts the window to the CropInfo stored on a record.
func (c CropWindow) Info() *CropInfo {
	return &CropInfo{StartTime: c.StartTime, EndTime: c.EndTime, Duration: c.Duration}
}

// Ptr returns a pointer to v, handy when building a Patch.
func Ptr[T any](v T) *T {
	return &v
}
