package model

const (
	DefaultPageLimit = 20
	MaxPageLimit     = 100
	// MaxPage keeps Offset well inside int range.
	MaxPage = 10000
)

// Page is a 1-based page request.
type Page struct {
	Page  int
	Limit int
}

// NewPage clamps page to 1..MaxPage and limit to 1..MaxPageLimit, using
// DefaultPageLimit when limit is zero or negative.
func NewPage(page, limit int) Page {
	if page < 1 {
		page = 1
	}
	if page > MaxPage {
		page = MaxPage
	}
	if limit <= 0 {
		limit = DefaultPageLimit
	}
	if limit > MaxPageLimit {
		limit = MaxPageLimit
	}
	return Page{Page: page, Limit: limit}
}

func (p Page) Offset() int {
	return (p.Page - 1) * p.Limit
}

// VideoList is the API response for every video feed.
type VideoList struct {
	Videos []*Video `json:"videos"`
	Page   int      `json:"page"`
	Limit  int      `json:"limit"`
}
