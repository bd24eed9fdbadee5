package models

import "time"

// AnnouncementCategory is the canonical announcement category set
type AnnouncementCategory string

const (
	AnnouncementEvent   AnnouncementCategory = "Event"
	AnnouncementHealth  AnnouncementCategory = "Health"
	AnnouncementNotice  AnnouncementCategory = "Notice"
	AnnouncementGeneral AnnouncementCategory = "General"
)

// AnnouncementCategories lists the accepted announcement categories in display order
var AnnouncementCategories = []AnnouncementCategory{
	AnnouncementEvent, AnnouncementHealth, AnnouncementNotice, AnnouncementGeneral,
}

// Valid reports whether c is one of AnnouncementCategories
func (c AnnouncementCategory) Valid() bool {
	for _, v := range AnnouncementCategories {
		if c == v {
			return true
		}
	}
	return false
}

// GalleryCategory is the canonical gallery category set
type GalleryCategory string

const (
	GalleryEvent     GalleryCategory = "Event"
	GalleryCommunity GalleryCategory = "Community"
	GallerySports    GalleryCategory = "Sports"
	GalleryEducation GalleryCategory = "Education"
	GalleryHealth    GalleryCategory = "Health"
	GalleryGeneral   GalleryCategory = "General"
)

var GalleryCategories = []GalleryCategory{
	GalleryEvent, GalleryCommunity, GallerySports, GalleryEducation, GalleryHealth, GalleryGeneral,
}

func (c GalleryCategory) Valid() bool {
	for _, v := range GalleryCategories {
		if c == v {
			return true
		}
	}
	return false
}

// DateLayout is the stored form of announcement and gallery dates
const DateLayout = "2006-01-02"

// Announcement is a public notice managed from the admin panel
type Announcement struct {
	ID          string               `json:"id"`
	Title       string               `json:"title"`
	Description string               `json:"description"`
	Category    AnnouncementCategory `json:"category"`
	Date        string               `json:"date"`
	Images      []string             `json:"images"`
	CreatedAt   time.Time            `json:"created_at"`
	UpdatedAt   time.Time            `json:"updated_at"`
}

// GalleryItem is a single photo in the public gallery
type GalleryItem struct {
	ID        string          `json:"id"`
	Title     string          `json:"title"`
	Image     string          `json:"image"`
	Date      string          `json:"date"`
	Category  GalleryCategory `json:"category"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}
