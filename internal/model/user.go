package model

import "time"

// User is a registered account. PasswordHash is never serialized.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Phone        string    `json:"phone"`
	PasswordHash string    `json:"-"`
	ChannelID    *string   `json:"channelId,omitempty"`
	LogoURL      string    `json:"logoUrl,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// UserSummary is the public projection of a user embedded in other responses.
type UserSummary struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// SignupRequest is the body of POST /auth/signup. ChannelName takes
// precedence over Name when both are sent.
type SignupRequest struct {
	Name        string `json:"name" form:"name"`
	ChannelName string `json:"channelName" form:"channelName"`
	Email       string `json:"email" form:"email"`
	Phone       string `json:"phone" form:"phone"`
	Password    string `json:"password" form:"password"`
	Description string `json:"description" form:"description"`
}

// LoginRequest is the body of POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse is returned by a successful login.
type LoginResponse struct {
	User  *User  `json:"user"`
	Token string `json:"token"`
}

// StatsResponse is the API response for platform totals.
type StatsResponse struct {
	TotalUsers    int   `json:"totalUsers"`
	TotalChannels int   `json:"totalChannels"`
	TotalVideos   int   `json:"totalVideos"`
	TotalComments int   `json:"totalComments"`
	TotalViews    int64 `json:"totalViews"`
	TotalLikes    int64 `json:"totalLikes"`
	ActiveUploads int   `json:"activeUploads"`
	NewVideos24h  int   `json:"newVideos24h"`
}
