package models

import "time"

const AttractionStatusAvailable = "available"

// MaxAttractionImages is the number of image slots on an attraction
const MaxAttractionImages = 4

// Attraction is a shared catalog entry, unique per (country, name)
type Attraction struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Country     string    `json:"country" gorm:"size:100;not null;uniqueIndex:idx_attractions_country_name,priority:1"`
	Name        string    `json:"name" gorm:"size:200;not null;uniqueIndex:idx_attractions_country_name,priority:2"`
	Lat         float64   `json:"lat" gorm:"not null"`
	Lng         float64   `json:"lng" gorm:"not null"`
	Description *string   `json:"description"`
	Image1      *string   `json:"image1" gorm:"size:1024"`
	Image2      *string   `json:"image2" gorm:"size:1024"`
	Image3      *string   `json:"image3" gorm:"size:1024"`
	Image4      *string   `json:"image4" gorm:"size:1024"`
	Status      string    `json:"status" gorm:"size:32;not null;default:available"`
	CreatedAt   time.Time `json:"created_at"`
}

// SetImages fills the image slots in order, dropping anything past the fourth.
func (a *Attraction) SetImages(urls []string) {
	slots := []**string{&a.Image1, &a.Image2, &a.Image3, &a.Image4}
	for i, slot := range slots {
		if i < len(urls) && urls[i] != "" {
			u := urls[i]
			*slot = &u
		} else {
			*slot = nil
		}
	}
}

// Images returns the populated image URLs in slot order.
func (a *Attraction) Images() []string {
	var out []string
	for _, img := range []*string{a.Image1, a.Image2, a.Image3, a.Image4} {
		if img != nil && *img != "" {
			out = append(out, *img)
		}
	}
	return out
}

// AddAttractionRequest represents the catalog add payload
type AddAttractionRequest struct {
	Country     string   `json:"country" validate:"required,max=100"`
	Name        string   `json:"name" validate:"required,max=200"`
	Lat         *float64 `json:"lat" validate:"required,latitude"`
	Lng         *float64 `json:"lng" validate:"required,longitude"`
	Description *string  `json:"description" validate:"omitempty,max=2000"`
	Image1      *string  `json:"image1" validate:"omitempty,url"`
	Image2      *string  `json:"image2" validate:"omitempty,url"`
	Image3      *string  `json:"image3" validate:"omitempty,url"`
	Image4      *string  `json:"image4" validate:"omitempty,url"`
	Status      string   `json:"status" validate:"omitempty,max=32"`
}

// AddAttractionResponse reports whether the attraction was created or already present
type AddAttractionResponse struct {
	ID      uint   `json:"id"`
	Created bool   `json:"created"`
	Message string `json:"message"`
}

// AttractionView is the public listing shape with images collapsed to a list
type AttractionView struct {
	ID          uint     `json:"id"`
	Name        string   `json:"name"`
	Lat         float64  `json:"lat"`
	Lng         float64  `json:"lng"`
	Description *string  `json:"description"`
	Images      []string `json:"images"`
	Status      string   `json:"status"`
}

// View converts the row into its listing shape.
func (a *Attraction) View() AttractionView {
	images := a.Images()
	if images == nil {
		images = []string{}
	}
	return AttractionView{
		ID:          a.ID,
		Name:        a.Name,
		Lat:         a.Lat,
		Lng:         a.Lng,
		Description: a.Description,
		Images:      images,
		Status:      a.Status,
	}
}

// CountryAttractionsResponse lists the catalog for a country
type CountryAttractionsResponse struct {
	Country     string           `json:"country"`
	Attractions []AttractionView `json:"attractions"`
	Message     string           `json:"message,omitempty"`
}

// DeleteResponse acknowledges a removal
type DeleteResponse struct {
	ID      uint   `json:"id"`
	Message string `json:"message"`
}
