package review

import (
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

const (
	MinRating        = 1
	MaxRating        = 5
	MinCommentRunes  = 20
	MaxCommentRunes  = 500
	MaxPhotos        = 5
	featuredMinRunes = 100
	featuredMinStars = 4
	featuredMinPhoto = 2
)

// Photo is one image attached to a review.
type Photo struct {
	ID           uuid.UUID `json:"id"`
	URL          string    `json:"url"`
	ThumbnailURL string    `json:"thumbnail_url"`
	Key          string    `json:"key"`
	ThumbnailKey string    `json:"thumbnail_key"`
	Width        int       `json:"width"`
	Height       int       `json:"height"`
}

// Review is a guest's opinion of a completed stay.
type Review struct {
	ID            uuid.UUID  `json:"id"`
	ReservationID uuid.UUID  `json:"reservation_id"`
	ListingID     uuid.UUID  `json:"listing_id"`
	GuestID       uuid.UUID  `json:"guest_id"`
	Rating        int        `json:"rating"`
	Comment       string     `json:"comment"`
	Recommends    bool       `json:"recommends"`
	Verified      bool       `json:"verified"`
	Response      string     `json:"response,omitempty"`
	RespondedAt   *time.Time `json:"responded_at,omitempty"`
	Photos        []Photo    `json:"photos"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// IsFeatured reports whether the review is good and rich enough to be highlighted.
func (r *Review) IsFeatured() bool {
	return r.Rating >= featuredMinStars &&
		utf8.RuneCountInString(r.Comment) >= featuredMinRunes &&
		len(r.Photos) >= featuredMinPhoto
}

func validComment(comment string) bool {
	n := utf8.RuneCountInString(comment)
	return n >= MinCommentRunes && n <= MaxCommentRunes
}

// AddInput describes a new review.
type AddInput struct {
	ReservationID uuid.UUID
	ListingID     uuid.UUID // optional; checked against the reservation when set
	Rating        int
	Comment       string
	Recommends    bool
}

// Summary aggregates the reviews of one listing.
type Summary struct {
	ListingID        uuid.UUID   `json:"listing_id"`
	Average          float64     `json:"average"`
	Count            int         `json:"count"`
	Distribution     map[int]int `json:"distribution"`
	RecommendPercent int         `json:"recommend_percent"`
}

func summarize(listingID uuid.UUID, reviews []*Review) Summary {
	s := Summary{ListingID: listingID, Distribution: make(map[int]int, MaxRating)}
	for i := MinRating; i <= MaxRating; i++ {
		s.Distribution[i] = 0
	}
	if len(reviews) == 0 {
		return s
	}
	total, recommends := 0, 0
	for _, r := range reviews {
		total += r.Rating
		s.Distribution[r.Rating]++
		if r.Recommends {
			recommends++
		}
	}
	s.Count = len(reviews)
	s.Average = float64(total) / float64(s.Count)
	s.RecommendPercent = recommends * 100 / s.Count
	return s
}
