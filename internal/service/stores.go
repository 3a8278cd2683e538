package service

import (
	"context"
	"time"

	"github.com/rajbhoyar729/LokDarpan/internal/model"
	"github.com/rajbhoyar729/LokDarpan/internal/repository"
	"github.com/rajbhoyar729/LokDarpan/internal/storage"
)

// The services depend on these interfaces rather than on the repository
// types so tests can substitute in-memory implementations. The
// *repository.XRepo types satisfy them.

type UserStore interface {
	Create(ctx context.Context, u *model.User, ch *model.Channel) error
	FindByID(ctx context.Context, id string) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	NameExists(ctx context.Context, name string) (bool, error)
	GetStats(ctx context.Context) (*model.StatsResponse, error)
}

type ChannelStore interface {
	Create(ctx context.Context, ch *model.Channel) error
	FindByID(ctx context.Context, id string) (*model.Channel, error)
	FindByOwner(ctx context.Context, ownerID string) (*model.Channel, error)
	Subscribe(ctx context.Context, userID, channelID string) (int, error)
	Unsubscribe(ctx context.Context, userID, channelID string) (int, error)
	ListSubscribed(ctx context.Context, userID string) ([]*model.Channel, error)
}

type VideoStore interface {
	Create(ctx context.Context, v *model.Video) error
	FindByID(ctx context.Context, id string) (*model.Video, error)
	FindDetail(ctx context.Context, id, viewerID string) (*model.VideoDetail, error)
	Update(ctx context.Context, id string, p model.VideoPatch) (*model.Video, error)
	TransitionStatus(ctx context.Context, id string, from, to model.VideoStatus) (*model.Video, error)
	Delete(ctx context.Context, id string) error
	ReactionState(ctx context.Context, videoID, userID string) (*model.ReactionState, error)
	ApplyReaction(ctx context.Context, videoID, userID string, expectedVersion int64, t model.ReactionTransition) (likes, dislikes int, err error)
	RecordView(ctx context.Context, videoID, viewerID string) (int64, error)
	List(ctx context.Context, f repository.VideoFilter, page model.Page) ([]*model.Video, error)
}

type CommentStore interface {
	Create(ctx context.Context, c *model.Comment) error
	FindByID(ctx context.Context, id string) (*model.Comment, error)
	UpdateText(ctx context.Context, id, text string) (*model.Comment, error)
	Delete(ctx context.Context, id string) (videoID string, err error)
	ListByVideo(ctx context.Context, videoID string, page model.Page) ([]*model.Comment, error)
}

// AssetStore is the storage gateway as seen by the services.
// *storage.Gateway satisfies it.
type AssetStore interface {
	Upload(ctx context.Context, f storage.File, category storage.Category) (storage.Object, error)
	Delete(ctx context.Context, keyOrURL string)
	PresignUpload(ctx context.Context, category storage.Category, filename, contentType string, ttl time.Duration) (storage.Object, string, error)
	Stat(ctx context.Context, key string) (storage.ObjectInfo, error)
}

var (
	_ UserStore    = (*repository.UserRepo)(nil)
	_ ChannelStore = (*repository.ChannelRepo)(nil)
	_ VideoStore   = (*repository.VideoRepo)(nil)
	_ CommentStore = (*repository.CommentRepo)(nil)
	_ AssetStore   = (*storage.Gateway)(nil)
)
