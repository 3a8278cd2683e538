package handler

import (
	"context"

	"github.com/gofiber/fiber/v3"

	"github.com/rajbhoyar729/LokDarpan/internal/middleware"
	"github.com/rajbhoyar729/LokDarpan/internal/model"
	"github.com/rajbhoyar729/LokDarpan/internal/service"
	"github.com/rajbhoyar729/LokDarpan/internal/storage"
)

const defaultTrendingLimit = 20

type VideoHandler struct {
	svc       *service.VideoService
	metrics   *Metrics
	uploadDir string
}

func NewVideoHandler(svc *service.VideoService, metrics *Metrics, uploadDir string) *VideoHandler {
	return &VideoHandler{svc: svc, metrics: metrics, uploadDir: uploadDir}
}

// initiateUploadRequest is the body of POST /video/initiate-upload.
type initiateUploadRequest struct {
	model.UploadVideoRequest
	Filename string `json:"filename"`
}

// List handles GET /video
func (h *VideoHandler) List(c fiber.Ctx) error {
	page, errMsg := pageQuery(c)
	if errMsg != "" {
		return invalidField(c, errMsg)
	}
	list, err := h.svc.List(c.Context(), page)
	if err != nil {
		return err
	}
	return c.JSON(list)
}

// Trending handles GET /video/trending?limit=
func (h *VideoHandler) Trending(c fiber.Ctx) error {
	limit, errMsg := middleware.ParsePositiveInt("limit", c.Query("limit"))
	if errMsg != "" {
		return invalidField(c, errMsg)
	}
	if limit == 0 {
		limit = defaultTrendingLimit
	}
	list, err := h.svc.Trending(c.Context(), limit)
	if err != nil {
		return err
	}
	return c.JSON(list)
}

// Shorts handles GET /video/shorts
func (h *VideoHandler) Shorts(c fiber.Ctx) error {
	page, errMsg := pageQuery(c)
	if errMsg != "" {
		return invalidField(c, errMsg)
	}
	list, err := h.svc.Shorts(c.Context(), page)
	if err != nil {
		return err
	}
	return c.JSON(list)
}

// Search handles GET /video/search?q=
func (h *VideoHandler) Search(c fiber.Ctx) error {
	q, errMsg := middleware.ValidateSearchQuery(c.Query("q"))
	if errMsg != "" {
		return invalidField(c, errMsg)
	}
	page, errMsg := pageQuery(c)
	if errMsg != "" {
		return invalidField(c, errMsg)
	}
	list, err := h.svc.Search(c.Context(), q, page)
	if err != nil {
		return err
	}
	return c.JSON(list)
}

// SubscriptionFeed handles GET /video/subscriptions
func (h *VideoHandler) SubscriptionFeed(c fiber.Ctx) error {
	page, errMsg := pageQuery(c)
	if errMsg != "" {
		return invalidField(c, errMsg)
	}
	list, err := h.svc.SubscriptionFeed(c.Context(), middleware.UserID(c), page)
	if err != nil {
		return err
	}
	return c.JSON(list)
}

// Liked handles GET /video/liked
func (h *VideoHandler) Liked(c fiber.Ctx) error {
	page, errMsg := pageQuery(c)
	if errMsg != "" {
		return invalidField(c, errMsg)
	}
	list, err := h.svc.Liked(c.Context(), middleware.UserID(c), page)
	if err != nil {
		return err
	}
	return c.JSON(list)
}

// Get handles GET /video/:videoId. The viewer is optional.
func (h *VideoHandler) Get(c fiber.Ctx) error {
	videoID, errMsg := middleware.ValidateID("videoId", c.Params("videoId"))
	if errMsg != "" {
		return invalidField(c, errMsg)
	}
	detail, err := h.svc.Get(c.Context(), videoID, middleware.UserID(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"video": detail})
}

// View handles POST /video/:videoId/view
func (h *VideoHandler) View(c fiber.Ctx) error {
	videoID, errMsg := middleware.ValidateID("videoId", c.Params("videoId"))
	if errMsg != "" {
		return invalidField(c, errMsg)
	}
	views, err := h.svc.RecordView(c.Context(), videoID, middleware.UserID(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"views": views})
}

// Upload handles POST /video/upload (multipart video, thumbnail and metadata)
func (h *VideoHandler) Upload(c fiber.Ctx) error {
	if !isMultipart(c) {
		return invalidField(c, "Upload must be multipart/form-data")
	}
	fields, err := formFields(c)
	if err != nil {
		return invalidBody(c)
	}
	meta, errMsg := videoMetadata(fields)
	if errMsg != "" {
		return invalidField(c, errMsg)
	}

	video, err := formFile(c, "video", h.uploadDir)
	if err != nil {
		return err
	}
	thumbnail, err := formFile(c, "thumbnail", h.uploadDir)
	if err != nil {
		discardFiles(video)
		return err
	}
	if video == nil || thumbnail == nil {
		discardFiles(video, thumbnail)
		return invalidField(c, "Both video and thumbnail files are required")
	}

	v, err := h.svc.Create(c.Context(), middleware.UserID(c), meta, *video, *thumbnail)
	h.metrics.ObserveUpload("multipart", err)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Video uploaded successfully",
		"videoId": v.ID,
		"video":   v,
	})
}

// InitiateUpload handles POST /video/initiate-upload
func (h *VideoHandler) InitiateUpload(c fiber.Ctx) error {
	var req initiateUploadRequest
	if err := c.Bind().JSON(&req); err != nil {
		return invalidBody(c)
	}
	meta, errMsg := uploadMetadata(req.UploadVideoRequest)
	if errMsg != "" {
		return invalidField(c, errMsg)
	}
	if req.ContentType == "" {
		return invalidField(c, "contentType is required")
	}

	resp, err := h.svc.InitiateUpload(c.Context(), middleware.UserID(c), meta, req.Filename, req.ContentType)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(resp)
}

// CompleteUpload handles POST /video/:videoId/complete-upload
func (h *VideoHandler) CompleteUpload(c fiber.Ctx) error {
	videoID, errMsg := middleware.ValidateID("videoId", c.Params("videoId"))
	if errMsg != "" {
		return invalidField(c, errMsg)
	}
	v, err := h.svc.CompleteUpload(c.Context(), videoID, middleware.UserID(c))
	h.metrics.ObserveUpload("direct", err)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"video": v})
}

// Update handles PUT /video/:videoId (JSON, or multipart with a thumbnail)
func (h *VideoHandler) Update(c fiber.Ctx) error {
	videoID, errMsg := middleware.ValidateID("videoId", c.Params("videoId"))
	if errMsg != "" {
		return invalidField(c, errMsg)
	}

	var req model.UpdateVideoRequest
	multipart := isMultipart(c)
	if multipart {
		fields, err := formFields(c)
		if err != nil {
			return invalidBody(c)
		}
		if req, errMsg = updateRequestFromForm(fields); errMsg != "" {
			return invalidField(c, errMsg)
		}
	} else if err := c.Bind().JSON(&req); err != nil {
		return invalidBody(c)
	}

	patch, errMsg := videoPatch(req)
	if errMsg != "" {
		return invalidField(c, errMsg)
	}

	var thumbnail *storage.File
	if multipart {
		var err error
		if thumbnail, err = formFile(c, "thumbnail", h.uploadDir); err != nil {
			return err
		}
	}

	v, err := h.svc.Update(c.Context(), videoID, middleware.UserID(c), patch, thumbnail)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"message": "Video updated successfully",
		"video":   v,
	})
}

// Delete handles DELETE /video/:videoId
func (h *VideoHandler) Delete(c fiber.Ctx) error {
	videoID, errMsg := middleware.ValidateID("videoId", c.Params("videoId"))
	if errMsg != "" {
		return invalidField(c, errMsg)
	}
	if err := h.svc.Delete(c.Context(), videoID, middleware.UserID(c)); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Video deleted successfully"})
}

// Like handles PUT /video/:videoId/like
func (h *VideoHandler) Like(c fiber.Ctx) error {
	return h.react(c, h.svc.ToggleLike)
}

// Dislike handles PUT /video/:videoId/dislike
func (h *VideoHandler) Dislike(c fiber.Ctx) error {
	return h.react(c, h.svc.ToggleDislike)
}

type toggleFunc func(ctx context.Context, videoID, userID string) (*model.ReactionResult, error)

func (h *VideoHandler) react(c fiber.Ctx, toggle toggleFunc) error {
	videoID, errMsg := middleware.ValidateID("videoId", c.Params("videoId"))
	if errMsg != "" {
		return invalidField(c, errMsg)
	}
	res, err := toggle(c.Context(), videoID, middleware.UserID(c))
	if err != nil {
		return err
	}
	h.metrics.ObserveReaction(string(res.Action))

	return c.JSON(fiber.Map{
		"message":  reactionMessage(res.Action),
		"action":   res.Action,
		"reaction": res.Reaction,
		"likes":    res.Likes,
		"dislikes": res.Dislikes,
	})
}

func reactionMessage(a model.ReactionAction) string {
	switch a {
	case model.ActionLiked:
		return "Video liked successfully"
	case model.ActionUnliked:
		return "Like removed successfully"
	case model.ActionDisliked:
		return "Video disliked successfully"
	default:
		return "Dislike removed successfully"
	}
}

// videoMetadata validates the text fields of a multipart upload.
func videoMetadata(fields map[string][]string) (model.VideoMetadata, string) {
	var req model.UploadVideoRequest
	req.Title, _ = formValue(fields, "title")
	req.Description, _ = formValue(fields, "description")
	req.Category, _ = formValue(fields, "category")
	req.Tags, _ = formValue(fields, "tags")
	raw, _ := formValue(fields, "isShort")
	isShort, errMsg := parseBool(raw)
	if errMsg != "" {
		return model.VideoMetadata{}, errMsg
	}
	req.IsShort = isShort
	return uploadMetadata(req)
}

func uploadMetadata(req model.UploadVideoRequest) (model.VideoMetadata, string) {
	var meta model.VideoMetadata
	var errMsg string
	if meta.Title, errMsg = middleware.ValidateTitle(req.Title); errMsg != "" {
		return meta, errMsg
	}
	if meta.Description, errMsg = middleware.ValidateDescription(req.Description, middleware.MaxDescriptionLen); errMsg != "" {
		return meta, errMsg
	}
	if meta.Category, errMsg = middleware.ValidateCategory(req.Category); errMsg != "" {
		return meta, errMsg
	}
	meta.Tags = model.ParseTags(req.Tags)
	if errMsg = middleware.ValidateTags(meta.Tags); errMsg != "" {
		return meta, errMsg
	}
	meta.IsShort = req.IsShort
	return meta, ""
}

func updateRequestFromForm(fields map[string][]string) (model.UpdateVideoRequest, string) {
	var req model.UpdateVideoRequest
	if v, ok := formValue(fields, "title"); ok {
		req.Title = &v
	}
	if v, ok := formValue(fields, "description"); ok {
		req.Description = &v
	}
	if v, ok := formValue(fields, "category"); ok {
		req.Category = &v
	}
	if v, ok := formValue(fields, "tags"); ok {
		req.Tags = &v
	}
	if v, ok := formValue(fields, "isShort"); ok {
		b, errMsg := parseBool(v)
		if errMsg != "" {
			return req, errMsg
		}
		req.IsShort = &b
	}
	return req, ""
}

// videoPatch validates only the fields present in req.
func videoPatch(req model.UpdateVideoRequest) (model.VideoPatch, string) {
	var patch model.VideoPatch
	if req.Title != nil {
		title, errMsg := middleware.ValidateTitle(*req.Title)
		if errMsg != "" {
			return patch, errMsg
		}
		patch.Title = &title
	}
	if req.Description != nil {
		desc, errMsg := middleware.ValidateDescription(*req.Description, middleware.MaxDescriptionLen)
		if errMsg != "" {
			return patch, errMsg
		}
		patch.Description = &desc
	}
	if req.Category != nil {
		category, errMsg := middleware.ValidateCategory(*req.Category)
		if errMsg != "" {
			return patch, errMsg
		}
		patch.Category = &category
	}
	if req.Tags != nil {
		tags := model.ParseTags(*req.Tags)
		if errMsg := middleware.ValidateTags(tags); errMsg != "" {
			return patch, errMsg
		}
		patch.Tags = &tags
	}
	patch.IsShort = req.IsShort
	return patch, ""
}
