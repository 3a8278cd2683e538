package handler

import (
	"github.com/gofiber/fiber/v3"

	"github.com/rajbhoyar729/LokDarpan/internal/middleware"
	"github.com/rajbhoyar729/LokDarpan/internal/service"
)

type UserHandler struct {
	svc *service.UserService
}

func NewUserHandler(svc *service.UserService) *UserHandler {
	return &UserHandler{svc: svc}
}

// Subscriptions handles GET /user/subscriptions
func (h *UserHandler) Subscriptions(c fiber.Ctx) error {
	channels, err := h.svc.Subscriptions(c.Context(), middleware.UserID(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"channels": channels})
}

// Subscribe handles PUT /user/:channelId/subscribe
func (h *UserHandler) Subscribe(c fiber.Ctx) error {
	channelID, errMsg := middleware.ValidateID("channelId", c.Params("channelId"))
	if errMsg != "" {
		return invalidField(c, errMsg)
	}

	res, err := h.svc.Subscribe(c.Context(), middleware.UserID(c), channelID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"message":     "Subscribed successfully",
		"subscribed":  res.Subscribed,
		"subscribers": res.Subscribers,
	})
}

// Unsubscribe handles PUT /user/:channelId/unsubscribe
func (h *UserHandler) Unsubscribe(c fiber.Ctx) error {
	channelID, errMsg := middleware.ValidateID("channelId", c.Params("channelId"))
	if errMsg != "" {
		return invalidField(c, errMsg)
	}

	res, err := h.svc.Unsubscribe(c.Context(), middleware.UserID(c), channelID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"message":     "Unsubscribed successfully",
		"subscribed":  res.Subscribed,
		"subscribers": res.Subscribers,
	})
}
