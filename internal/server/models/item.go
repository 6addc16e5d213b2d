package models

import "time"

// Usage frequency, attachment, intention and joy are free-form enums the
// clients agree on; the server stores them verbatim.
const (
	UsageUndefined = "undefined"

	AttachmentUndefined = "undefined"

	IntentionUndecided = "undecided"

	JoyMedium = "medium"
)

// Item is an inventory record. Name, ImageBlob and ThumbnailBlob are sealed
// ciphertext; the image metadata (mime, dimensions) is plaintext. When an
// object store is configured, full-size originals live there and ImageKey
// holds the storage key instead of ImageBlob holding bytes.
type Item struct {
	ID            string
	UserID        string
	Name          []byte
	ImageBlob     []byte
	ThumbnailBlob []byte
	ImageKey      string
	ImageMime     string
	ThumbMime     string
	ImageWidth    int
	ImageHeight   int
	ThumbWidth    int
	ThumbHeight   int
	Quantity      float64
	UsageFreq     string
	Attachment    string
	Intention     string
	Joy           string
	IsIsolated    bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
