package location

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

// Location is one filming location in the catalog.
//
// Images is the canonical image list. LegacyImage maps the historical
// singular "image" column some old records carry; it is read-only and
// folded into Images at the service boundary, never written.
type Location struct {
	ID          string    `gorm:"column:id;primaryKey" json:"id"`
	Name        string    `gorm:"column:name;not null" json:"name"`
	Description string    `gorm:"column:description;not null" json:"description"`
	Movie       *string   `gorm:"column:movie" json:"movie"`
	Latitude    float64   `gorm:"column:latitude;not null" json:"latitude"`
	Longitude   float64   `gorm:"column:longitude;not null" json:"longitude"`
	Images      ImageList `gorm:"column:images;type:text" json:"images"`
	LegacyImage ImageList `gorm:"column:image;type:text" json:"-"`
	CreatedAt   time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at" json:"updated_at"`
}

func (Location) TableName() string { return "locations" }

var imageExtRe = regexp.MustCompile(`(?i)\.(jpg|jpeg|png|gif)$`)

// ValidImagePath reports whether the path string ends in an accepted
// image extension. This mirrors the schema-level check of the stored
// shape: it inspects the literal suffix only, not file content.
func ValidImagePath(p string) bool {
	return imageExtRe.MatchString(p)
}

// ImageList stores an ordered list of image paths as JSON text while
// tolerating every historical stored shape on read: a JSON array of
// strings, a JSON-quoted string, a bare path string, or NULL.
type ImageList []string

func (l *ImageList) Scan(value any) error {
	if value == nil {
		*l = nil
		return nil
	}

	var raw string
	switch v := value.(type) {
	case []byte:
		raw = string(v)
	case string:
		raw = v
	default:
		return fmt.Errorf("unsupported image column type %T", value)
	}

	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "null" {
		*l = nil
		return nil
	}

	switch raw[0] {
	case '[':
		var list []string
		if err := json.Unmarshal([]byte(raw), &list); err != nil {
			return fmt.Errorf("invalid image list: %w", err)
		}
		*l = list
	case '"':
		var single string
		if err := json.Unmarshal([]byte(raw), &single); err != nil {
			return fmt.Errorf("invalid image string: %w", err)
		}
		*l = ImageList{single}
	default:
		// Bare path written by the oldest records.
		*l = ImageList{raw}
	}

	return nil
}

func (l ImageList) Value() (driver.Value, error) {
	if l == nil {
		l = ImageList{}
	}
	b, err := json.Marshal([]string(l))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Validate rejects entries whose literal suffix is not an accepted
// image extension.
func (l ImageList) Validate() error {
	for _, p := range l {
		if !ValidImagePath(p) {
			return fmt.Errorf("%s is not a valid image format", filepath.Base(p))
		}
	}
	return nil
}
