package model

import "time"

// Channel is the publishing identity of a user. A user owns at most one.
type Channel struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	LogoURL     string    `json:"logoUrl,omitempty"`
	LogoKey     string    `json:"-"`
	OwnerID     string    `json:"ownerId"`
	Subscribers int       `json:"subscribers"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// ChannelSummary is embedded in video responses.
type ChannelSummary struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	LogoURL     string `json:"logoUrl,omitempty"`
	Subscribers int    `json:"subscribers"`
}

// CreateChannelRequest is the form body of POST /channel.
type CreateChannelRequest struct {
	Name        string `json:"name" form:"name"`
	Description string `json:"description" form:"description"`
}

// SubscriptionResult is returned by subscribe and unsubscribe.
type SubscriptionResult struct {
	ChannelID   string `json:"channelId"`
	Subscribed  bool   `json:"subscribed"`
	Subscribers int    `json:"subscribers"`
}
