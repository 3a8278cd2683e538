package handler

import (
	"github.com/gofiber/fiber/v3"

	"github.com/rajbhoyar729/LokDarpan/internal/middleware"
	"github.com/rajbhoyar729/LokDarpan/internal/model"
	"github.com/rajbhoyar729/LokDarpan/internal/service"
)

type CommentHandler struct {
	svc *service.CommentService
}

func NewCommentHandler(svc *service.CommentService) *CommentHandler {
	return &CommentHandler{svc: svc}
}

// List handles GET /comment/:videoId/comments
func (h *CommentHandler) List(c fiber.Ctx) error {
	videoID, errMsg := middleware.ValidateID("videoId", c.Params("videoId"))
	if errMsg != "" {
		return invalidField(c, errMsg)
	}
	page, errMsg := pageQuery(c)
	if errMsg != "" {
		return invalidField(c, errMsg)
	}

	comments, err := h.svc.List(c.Context(), videoID, page)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"comments": comments,
		"page":     page.Page,
		"limit":    page.Limit,
	})
}

// Create handles POST /comment/:videoId/comments
func (h *CommentHandler) Create(c fiber.Ctx) error {
	videoID, errMsg := middleware.ValidateID("videoId", c.Params("videoId"))
	if errMsg != "" {
		return invalidField(c, errMsg)
	}
	text, errMsg := commentText(c)
	if errMsg != "" {
		return invalidField(c, errMsg)
	}

	comment, err := h.svc.Create(c.Context(), videoID, middleware.UserID(c), text)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Comment added",
		"comment": comment,
	})
}

// Update handles PUT /comment/:commentId
func (h *CommentHandler) Update(c fiber.Ctx) error {
	commentID, errMsg := middleware.ValidateID("commentId", c.Params("commentId"))
	if errMsg != "" {
		return invalidField(c, errMsg)
	}
	text, errMsg := commentText(c)
	if errMsg != "" {
		return invalidField(c, errMsg)
	}

	comment, err := h.svc.Update(c.Context(), commentID, middleware.UserID(c), text)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"message": "Comment updated",
		"comment": comment,
	})
}

// Delete handles DELETE /comment/:commentId
func (h *CommentHandler) Delete(c fiber.Ctx) error {
	commentID, errMsg := middleware.ValidateID("commentId", c.Params("commentId"))
	if errMsg != "" {
		return invalidField(c, errMsg)
	}
	if err := h.svc.Delete(c.Context(), commentID, middleware.UserID(c)); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Comment deleted"})
}

func commentText(c fiber.Ctx) (string, string) {
	var req model.CommentRequest
	if err := c.Bind().JSON(&req); err != nil {
		return "", "Invalid JSON body"
	}
	return middleware.ValidateComment(req.Text)
}
