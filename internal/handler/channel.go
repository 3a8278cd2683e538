package handler

import (
	"github.com/gofiber/fiber/v3"

	"github.com/rajbhoyar729/LokDarpan/internal/middleware"
	"github.com/rajbhoyar729/LokDarpan/internal/model"
	"github.com/rajbhoyar729/LokDarpan/internal/service"
)

type ChannelHandler struct {
	svc       *service.ChannelService
	uploadDir string
}

func NewChannelHandler(svc *service.ChannelService, uploadDir string) *ChannelHandler {
	return &ChannelHandler{svc: svc, uploadDir: uploadDir}
}

// Create handles POST /channel (multipart name, description, logo)
func (h *ChannelHandler) Create(c fiber.Ctx) error {
	var req model.CreateChannelRequest
	if isMultipart(c) {
		fields, err := formFields(c)
		if err != nil {
			return invalidBody(c)
		}
		req.Name, _ = formValue(fields, "name")
		req.Description, _ = formValue(fields, "description")
	} else if err := c.Bind().JSON(&req); err != nil {
		return invalidBody(c)
	}

	var msg string
	if req.Name, msg = middleware.ValidateName(req.Name); msg != "" {
		return invalidField(c, msg)
	}
	if req.Description, msg = middleware.ValidateDescription(req.Description, middleware.MaxChannelDescLen); msg != "" {
		return invalidField(c, msg)
	}

	logo, err := formFile(c, "logo", h.uploadDir)
	if err != nil {
		return err
	}

	ch, err := h.svc.Create(c.Context(), middleware.UserID(c), req, logo)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Channel created successfully",
		"channel": ch,
	})
}

// Mine handles GET /channel/me
func (h *ChannelHandler) Mine(c fiber.Ctx) error {
	ch, err := h.svc.Mine(c.Context(), middleware.UserID(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"channel": ch})
}

// Get handles GET /channel/:channelId
func (h *ChannelHandler) Get(c fiber.Ctx) error {
	channelID, errMsg := middleware.ValidateID("channelId", c.Params("channelId"))
	if errMsg != "" {
		return invalidField(c, errMsg)
	}

	ch, err := h.svc.Get(c.Context(), channelID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"channel": ch})
}

// Videos handles GET /channel/:channelId/videos
func (h *ChannelHandler) Videos(c fiber.Ctx) error {
	channelID, errMsg := middleware.ValidateID("channelId", c.Params("channelId"))
	if errMsg != "" {
		return invalidField(c, errMsg)
	}
	page, errMsg := pageQuery(c)
	if errMsg != "" {
		return invalidField(c, errMsg)
	}

	list, err := h.svc.Videos(c.Context(), channelID, page)
	if err != nil {
		return err
	}
	return c.JSON(list)
}
