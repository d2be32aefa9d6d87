package domain

import (
	"strconv"
	"strings"
	"time"
)

const (
	// CurrentUser is the author id attached to locally drafted reviews.
	CurrentUser = "currentUser"

	// DraftRating is the rating attached to every locally drafted review.
	DraftRating = 5

	// LocalIDPrefix namespaces locally generated review ids.
	LocalIDPrefix = "local_"
)

// Review is a rating plus comment for one perfume, either fetched from the
// remote store or drafted locally.
type Review struct {
	ID         string    `json:"id"`
	PerfumeID  string    `json:"perfume_id"`
	UserID     string    `json:"user_id"`
	Rating     int       `json:"rating"`
	Comment    string    `json:"comment"`
	CreatedAt  time.Time `json:"created_at"`
	AuthorName string    `json:"author_name,omitempty"`
}

// IsLocal reports whether the review was drafted on this device.
func (r Review) IsLocal() bool {
	return strings.HasPrefix(r.ID, LocalIDPrefix)
}

// LocalReviewID builds a local review id from a timestamp.
func LocalReviewID(t time.Time) string {
	return LocalIDPrefix + strconv.FormatInt(t.UnixMilli(), 10)
}

// ReviewWithPerfume is a review joined with its perfume. Perfume is nil when
// the catalog row could not be loaded.
type ReviewWithPerfume struct {
	Review
	Perfume *Perfume `json:"perfume"`
}
