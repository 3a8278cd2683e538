// Package servicetest provides in-memory implementations of the service
// store interfaces. They follow the constraint semantics of the Postgres
// repositories closely enough for service and handler tests.
package servicetest

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/rajbhoyar729/LokDarpan/internal/model"
	"github.com/rajbhoyar729/LokDarpan/internal/repository"
)

type pair struct{ a, b string }

// Store holds every table in memory behind one lock. Users, Channels,
// Videos and Comments return views that satisfy the service interfaces.
type Store struct {
	mu        sync.Mutex
	seq       int64
	now       func() time.Time
	users     map[string]*model.User
	channels  map[string]*model.Channel
	subs      map[pair]bool // user, channel
	videos    map[string]*model.Video
	reactions map[pair]model.Reaction // video, user
	views     map[pair]bool           // video, user
	comments  map[string]*model.Comment
	order     map[string]int64 // insertion order of videos and comments

	// StaleApplies makes the next n ApplyReaction calls fail with
	// repository.ErrStaleVersion, as if another toggle had won.
	StaleApplies int
	// ApplyCalls counts ApplyReaction calls.
	ApplyCalls int
}

func NewStore() *Store {
	return &Store{
		now:       time.Now,
		users:     make(map[string]*model.User),
		channels:  make(map[string]*model.Channel),
		subs:      make(map[pair]bool),
		videos:    make(map[string]*model.Video),
		reactions: make(map[pair]model.Reaction),
		views:     make(map[pair]bool),
		comments:  make(map[string]*model.Comment),
		order:     make(map[string]int64),
	}
}

func (s *Store) Users() *UserStore       { return &UserStore{s} }
func (s *Store) Channels() *ChannelStore { return &ChannelStore{s} }
func (s *Store) Videos() *VideoStore     { return &VideoStore{s} }
func (s *Store) Comments() *CommentStore { return &CommentStore{s} }

// Reactions returns the users holding each reaction on a video.
func (s *Store) Reactions(videoID string) (likedBy, dislikedBy []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, r := range s.reactions {
		if k.a != videoID {
			continue
		}
		if r == model.ReactionLike {
			likedBy = append(likedBy, k.b)
		} else {
			dislikedBy = append(dislikedBy, k.b)
		}
	}
	sort.Strings(likedBy)
	sort.Strings(dislikedBy)
	return likedBy, dislikedBy
}

// CommentCount returns the number of comments stored for a video.
func (s *Store) CommentCount(videoID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, c := range s.comments {
		if c.VideoID == videoID {
			n++
		}
	}
	return n
}

// Backdate moves a video's timestamps into the past.
func (s *Store) Backdate(videoID string, d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if v, ok := s.videos[videoID]; ok {
		v.CreatedAt = v.CreatedAt.Add(-d)
		v.UpdatedAt = v.UpdatedAt.Add(-d)
	}
}

func (s *Store) nextSeq() int64 {
	s.seq++
	return s.seq
}

func (s *Store) nameTaken(name string) bool {
	for _, u := range s.users {
		if strings.EqualFold(u.Name, name) {
			return true
		}
	}
	for _, c := range s.channels {
		if strings.EqualFold(c.Name, name) {
			return true
		}
	}
	return false
}

func copyVideo(v *model.Video) *model.Video {
	c := *v
	c.Tags = append([]string{}, v.Tags...)
	return &c
}

// UserStore implements service.UserStore.
type UserStore struct{ s *Store }

func (u *UserStore) Create(_ context.Context, user *model.User, ch *model.Channel) error {
	s := u.s
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.users {
		if strings.EqualFold(existing.Email, user.Email) {
			return repository.ErrDuplicateEmail
		}
		if strings.EqualFold(existing.Name, user.Name) {
			return repository.ErrDuplicateName
		}
	}
	if ch != nil {
		for _, existing := range s.channels {
			if strings.EqualFold(existing.Name, ch.Name) {
				return repository.ErrDuplicateChannelName
			}
		}
	}

	now := s.now()
	user.ID = uuid.NewString()
	user.CreatedAt, user.UpdatedAt = now, now
	if ch != nil {
		ch.ID = uuid.NewString()
		ch.OwnerID = user.ID
		ch.CreatedAt, ch.UpdatedAt = now, now
		chCopy := *ch
		s.channels[ch.ID] = &chCopy
		id := ch.ID
		user.ChannelID = &id
	}
	uCopy := *user
	s.users[user.ID] = &uCopy
	return nil
}

func (u *UserStore) FindByID(_ context.Context, id string) (*model.User, error) {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()
	user, ok := u.s.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	c := *user
	return &c, nil
}

func (u *UserStore) FindByEmail(_ context.Context, email string) (*model.User, error) {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()
	for _, user := range u.s.users {
		if strings.EqualFold(user.Email, email) {
			c := *user
			return &c, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (u *UserStore) EmailExists(ctx context.Context, email string) (bool, error) {
	_, err := u.FindByEmail(ctx, email)
	return err == nil, nil
}

func (u *UserStore) NameExists(_ context.Context, name string) (bool, error) {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()
	return u.s.nameTaken(name), nil
}

func (u *UserStore) GetStats(_ context.Context) (*model.StatsResponse, error) {
	s := u.s
	s.mu.Lock()
	defer s.mu.Unlock()

	st := &model.StatsResponse{
		TotalUsers:    len(s.users),
		TotalChannels: len(s.channels),
		TotalComments: len(s.comments),
	}
	cutoff := s.now().Add(-24 * time.Hour)
	for _, v := range s.videos {
		st.TotalViews += v.Views
		st.TotalLikes += int64(v.Likes)
		switch v.Status {
		case model.StatusCompleted:
			st.TotalVideos++
			if v.CreatedAt.After(cutoff) {
				st.NewVideos24h++
			}
		case model.StatusPendingMetadata, model.StatusUploading, model.StatusProcessing:
			st.ActiveUploads++
		}
	}
	return st, nil
}

// ChannelStore implements service.ChannelStore.
type ChannelStore struct{ s *Store }

func (c *ChannelStore) Create(_ context.Context, ch *model.Channel) error {
	s := c.s
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[ch.OwnerID]
	if !ok {
		return pgx.ErrNoRows
	}
	if user.ChannelID != nil {
		return repository.ErrUserHasChannel
	}
	for _, existing := range s.channels {
		if strings.EqualFold(existing.Name, ch.Name) {
			return repository.ErrDuplicateChannelName
		}
	}

	now := s.now()
	ch.ID = uuid.NewString()
	ch.CreatedAt, ch.UpdatedAt = now, now
	cp := *ch
	s.channels[ch.ID] = &cp
	id := ch.ID
	user.ChannelID = &id
	return nil
}

func (c *ChannelStore) FindByID(_ context.Context, id string) (*model.Channel, error) {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	ch, ok := c.s.channels[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *ch
	return &cp, nil
}

func (c *ChannelStore) FindByOwner(_ context.Context, ownerID string) (*model.Channel, error) {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	for _, ch := range c.s.channels {
		if ch.OwnerID == ownerID {
			cp := *ch
			return &cp, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (c *ChannelStore) Subscribe(_ context.Context, userID, channelID string) (int, error) {
	s := c.s
	s.mu.Lock()
	defer s.mu.Unlock()
	ch, ok := s.channels[channelID]
	if !ok {
		return 0, pgx.ErrNoRows
	}
	k := pair{userID, channelID}
	if s.subs[k] {
		return 0, repository.ErrAlreadySubscribed
	}
	s.subs[k] = true
	ch.Subscribers++
	return ch.Subscribers, nil
}

func (c *ChannelStore) Unsubscribe(_ context.Context, userID, channelID string) (int, error) {
	s := c.s
	s.mu.Lock()
	defer s.mu.Unlock()
	ch, ok := s.channels[channelID]
	if !ok {
		return 0, pgx.ErrNoRows
	}
	k := pair{userID, channelID}
	if !s.subs[k] {
		return 0, repository.ErrNotSubscribed
	}
	delete(s.subs, k)
	ch.Subscribers = max(ch.Subscribers-1, 0)
	return ch.Subscribers, nil
}

func (c *ChannelStore) ListSubscribed(_ context.Context, userID string) ([]*model.Channel, error) {
	s := c.s
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []*model.Channel{}
	for k := range s.subs {
		if k.a == userID {
			cp := *s.channels[k.b]
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// VideoStore implements service.VideoStore.
type VideoStore struct{ s *Store }

func (v *VideoStore) Create(_ context.Context, video *model.Video) error {
	s := v.s
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[video.OwnerID]; !ok {
		return pgx.ErrNoRows
	}
	for _, ch := range s.channels {
		if ch.OwnerID == video.OwnerID {
			id := ch.ID
			video.ChannelID = &id
		}
	}
	now := s.now()
	video.ID = uuid.NewString()
	video.Version = 1
	video.CreatedAt, video.UpdatedAt = now, now
	if video.Tags == nil {
		video.Tags = []string{}
	}
	s.videos[video.ID] = copyVideo(video)
	s.order[video.ID] = s.nextSeq()
	return nil
}

func (v *VideoStore) FindByID(_ context.Context, id string) (*model.Video, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	video, ok := v.s.videos[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return copyVideo(video), nil
}

func (v *VideoStore) FindDetail(_ context.Context, id, viewerID string) (*model.VideoDetail, error) {
	s := v.s
	s.mu.Lock()
	defer s.mu.Unlock()

	video, ok := s.videos[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	d := &model.VideoDetail{Video: copyVideo(video), CommentIDs: []string{}}
	if owner, ok := s.users[video.OwnerID]; ok {
		d.Owner = &model.UserSummary{ID: owner.ID, Name: owner.Name}
	}
	if video.ChannelID != nil {
		if ch, ok := s.channels[*video.ChannelID]; ok {
			d.Channel = &model.ChannelSummary{ID: ch.ID, Name: ch.Name, LogoURL: ch.LogoURL, Subscribers: ch.Subscribers}
		}
	}
	var comments []*model.Comment
	for _, c := range s.comments {
		if c.VideoID == id {
			comments = append(comments, c)
		}
	}
	sort.Slice(comments, func(i, j int) bool { return s.order[comments[i].ID] < s.order[comments[j].ID] })
	for _, c := range comments {
		d.CommentIDs = append(d.CommentIDs, c.ID)
	}
	if viewerID != "" {
		d.ViewerReaction = s.reactions[pair{id, viewerID}]
	}
	return d, nil
}

func (v *VideoStore) Update(_ context.Context, id string, p model.VideoPatch) (*model.Video, error) {
	s := v.s
	s.mu.Lock()
	defer s.mu.Unlock()

	video, ok := s.videos[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	if p.Title != nil {
		video.Title = *p.Title
	}
	if p.Description != nil {
		video.Description = *p.Description
	}
	if p.Category != nil {
		video.Category = *p.Category
	}
	if p.Tags != nil {
		video.Tags = append([]string{}, (*p.Tags)...)
	}
	if p.IsShort != nil {
		video.IsShort = *p.IsShort
	}
	if p.ThumbnailURL != nil {
		video.ThumbnailURL = *p.ThumbnailURL
	}
	if p.ThumbnailKey != nil {
		video.ThumbnailKey = *p.ThumbnailKey
	}
	video.Version++
	video.UpdatedAt = s.now()
	return copyVideo(video), nil
}

func (v *VideoStore) TransitionStatus(_ context.Context, id string, from, to model.VideoStatus) (*model.Video, error) {
	s := v.s
	s.mu.Lock()
	defer s.mu.Unlock()

	video, ok := s.videos[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	if video.Status != from || !from.CanTransition(to) {
		return nil, repository.ErrStaleVersion
	}
	video.Status = to
	video.Version++
	video.UpdatedAt = s.now()
	return copyVideo(video), nil
}

// Delete removes a video together with its reactions, views and comments.
func (v *VideoStore) Delete(_ context.Context, id string) error {
	s := v.s
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.videos[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(s.videos, id)
	for k := range s.reactions {
		if k.a == id {
			delete(s.reactions, k)
		}
	}
	for k := range s.views {
		if k.a == id {
			delete(s.views, k)
		}
	}
	for cid, c := range s.comments {
		if c.VideoID == id {
			delete(s.comments, cid)
		}
	}
	return nil
}

func (v *VideoStore) ReactionState(_ context.Context, videoID, userID string) (*model.ReactionState, error) {
	s := v.s
	s.mu.Lock()
	defer s.mu.Unlock()

	video, ok := s.videos[videoID]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &model.ReactionState{
		Likes:    video.Likes,
		Dislikes: video.Dislikes,
		Version:  video.Version,
		Current:  s.reactions[pair{videoID, userID}],
	}, nil
}

func (v *VideoStore) ApplyReaction(_ context.Context, videoID, userID string, expectedVersion int64, t model.ReactionTransition) (int, int, error) {
	s := v.s
	s.mu.Lock()
	defer s.mu.Unlock()

	s.ApplyCalls++
	if s.StaleApplies > 0 {
		s.StaleApplies--
		return 0, 0, repository.ErrStaleVersion
	}

	video, ok := s.videos[videoID]
	if !ok || video.Version != expectedVersion {
		return 0, 0, repository.ErrStaleVersion
	}

	video.Likes += t.LikesDelta
	video.Dislikes += t.DislikesDelta
	video.Version++
	video.UpdatedAt = s.now()

	k := pair{videoID, userID}
	if t.To == model.ReactionNone {
		delete(s.reactions, k)
	} else {
		s.reactions[k] = t.To
	}
	return video.Likes, video.Dislikes, nil
}

func (v *VideoStore) RecordView(_ context.Context, videoID, viewerID string) (int64, error) {
	s := v.s
	s.mu.Lock()
	defer s.mu.Unlock()

	video, ok := s.videos[videoID]
	if !ok || video.Status != model.StatusCompleted {
		return 0, pgx.ErrNoRows
	}
	if viewerID != "" {
		k := pair{videoID, viewerID}
		if s.views[k] {
			return video.Views, nil
		}
		s.views[k] = true
	}
	video.Views++
	return video.Views, nil
}

func (v *VideoStore) List(_ context.Context, f repository.VideoFilter, page model.Page) ([]*model.Video, error) {
	s := v.s
	s.mu.Lock()
	defer s.mu.Unlock()

	q := strings.ToLower(strings.TrimSpace(f.Query))
	var matched []*model.Video
	for _, video := range s.videos {
		switch {
		case !f.AnyStatus && video.Status != model.StatusCompleted,
			f.OwnerID != "" && video.OwnerID != f.OwnerID,
			f.ChannelID != "" && (video.ChannelID == nil || *video.ChannelID != f.ChannelID),
			f.ShortsOnly && !video.IsShort,
			q != "" && !matchesQuery(video, q),
			f.SubscriberID != "" && (video.ChannelID == nil || !s.subs[pair{f.SubscriberID, *video.ChannelID}]),
			f.LikedBy != "" && s.reactions[pair{video.ID, f.LikedBy}] != model.ReactionLike,
			!f.Since.IsZero() && video.CreatedAt.Before(f.Since):
			continue
		}
		matched = append(matched, video)
	}

	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return s.order[matched[i].ID] > s.order[matched[j].ID]
	})

	out := []*model.Video{}
	start := page.Offset()
	for i := start; i < len(matched) && i < start+page.Limit; i++ {
		out = append(out, copyVideo(matched[i]))
	}
	return out, nil
}

func matchesQuery(v *model.Video, q string) bool {
	fields := []string{v.Title, v.Description, v.Category, strings.Join(v.Tags, " ")}
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), q) {
			return true
		}
	}
	return false
}

// CommentStore implements service.CommentStore.
type CommentStore struct{ s *Store }

func (c *CommentStore) Create(_ context.Context, comment *model.Comment) error {
	s := c.s
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.videos[comment.VideoID]; !ok {
		return pgx.ErrNoRows
	}
	author, ok := s.users[comment.AuthorID]
	if !ok {
		return pgx.ErrNoRows
	}
	now := s.now()
	comment.ID = uuid.NewString()
	comment.AuthorName = author.Name
	comment.CreatedAt, comment.UpdatedAt = now, now
	cp := *comment
	s.comments[comment.ID] = &cp
	s.order[comment.ID] = s.nextSeq()
	return nil
}

func (c *CommentStore) FindByID(_ context.Context, id string) (*model.Comment, error) {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	comment, ok := c.s.comments[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *comment
	return &cp, nil
}

func (c *CommentStore) UpdateText(_ context.Context, id, text string) (*model.Comment, error) {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	comment, ok := c.s.comments[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	comment.Text = text
	comment.UpdatedAt = c.s.now()
	cp := *comment
	return &cp, nil
}

func (c *CommentStore) Delete(_ context.Context, id string) (string, error) {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	comment, ok := c.s.comments[id]
	if !ok {
		return "", pgx.ErrNoRows
	}
	delete(c.s.comments, id)
	return comment.VideoID, nil
}

func (c *CommentStore) ListByVideo(_ context.Context, videoID string, page model.Page) ([]*model.Comment, error) {
	s := c.s
	s.mu.Lock()
	defer s.mu.Unlock()

	var matched []*model.Comment
	for _, comment := range s.comments {
		if comment.VideoID == videoID {
			matched = append(matched, comment)
		}
	}
	sort.Slice(matched, func(i, j int) bool { return s.order[matched[i].ID] > s.order[matched[j].ID] })

	out := []*model.Comment{}
	start := page.Offset()
	for i := start; i < len(matched) && i < start+page.Limit; i++ {
		cp := *matched[i]
		out = append(out, &cp)
	}
	return out, nil
}
