package domain

// Brand is the optional joined brand row of a perfume.
type Brand struct {
	Name    string `json:"name"`
	LogoURL string `json:"logo_url,omitempty"`
}

// Perfume is a catalog item. AverageRating and ReviewCount are derived from
// review rows on every read and are never stored.
type Perfume struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Brand         string   `json:"brand"`
	Description   string   `json:"description"`
	ImageURL      string   `json:"image_url"`
	Notes         []string `json:"notes"`
	AverageRating float64  `json:"average_rating"`
	ReviewCount   int      `json:"review_count"`
	BrandInfo     *Brand   `json:"brands,omitempty"`
}

// Rating is the minimal review projection used for stats aggregation.
type Rating struct {
	ID        string `json:"id"`
	PerfumeID string `json:"perfume_id"`
	Rating    int    `json:"rating"`
}
