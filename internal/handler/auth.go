package handler

import (
	"github.com/gofiber/fiber/v3"

	"github.com/rajbhoyar729/LokDarpan/internal/middleware"
	"github.com/rajbhoyar729/LokDarpan/internal/model"
	"github.com/rajbhoyar729/LokDarpan/internal/service"
	"github.com/rajbhoyar729/LokDarpan/internal/storage"
)

type AuthHandler struct {
	svc       *service.AuthService
	uploadDir string
}

func NewAuthHandler(svc *service.AuthService, uploadDir string) *AuthHandler {
	return &AuthHandler{svc: svc, uploadDir: uploadDir}
}

// Signup handles POST /auth/signup (JSON, or multipart with a logo)
func (h *AuthHandler) Signup(c fiber.Ctx) error {
	var req model.SignupRequest
	if isMultipart(c) {
		fields, err := formFields(c)
		if err != nil {
			return invalidBody(c)
		}
		req.Name, _ = formValue(fields, "name")
		req.ChannelName, _ = formValue(fields, "channelName")
		req.Email, _ = formValue(fields, "email")
		req.Phone, _ = formValue(fields, "phone")
		req.Password, _ = formValue(fields, "password")
		req.Description, _ = formValue(fields, "description")
	} else if err := c.Bind().JSON(&req); err != nil {
		return invalidBody(c)
	}

	if msg := validateSignup(&req); msg != "" {
		return invalidField(c, msg)
	}

	var logo *storage.File
	if isMultipart(c) {
		var err error
		if logo, err = formFile(c, "logo", h.uploadDir); err != nil {
			return err
		}
	}

	user, err := h.svc.Signup(c.Context(), req, logo)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "User created successfully",
		"user":    user,
	})
}

// validateSignup normalizes req in place and returns the first problem.
func validateSignup(req *model.SignupRequest) string {
	var msg string
	if req.ChannelName != "" {
		if req.ChannelName, msg = middleware.ValidateName(req.ChannelName); msg != "" {
			return msg
		}
	} else if req.Name, msg = middleware.ValidateName(req.Name); msg != "" {
		return msg
	}
	if req.Email, msg = middleware.ValidateEmail(req.Email); msg != "" {
		return msg
	}
	if req.Phone, msg = middleware.ValidatePhone(req.Phone); msg != "" {
		return msg
	}
	if msg = middleware.ValidatePassword(req.Password); msg != "" {
		return msg
	}
	if req.Description, msg = middleware.ValidateDescription(req.Description, middleware.MaxChannelDescLen); msg != "" {
		return msg
	}
	return ""
}

// Login handles POST /auth/login
func (h *AuthHandler) Login(c fiber.Ctx) error {
	var req model.LoginRequest
	if err := c.Bind().JSON(&req); err != nil {
		return invalidBody(c)
	}
	email, msg := middleware.ValidateEmail(req.Email)
	if msg != "" {
		return invalidField(c, msg)
	}
	if req.Password == "" {
		return invalidField(c, "Password is required")
	}
	req.Email = email

	resp, err := h.svc.Login(c.Context(), req)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"message": "Login successful",
		"user":    resp.User,
		"token":   resp.Token,
	})
}

// Me handles GET /user/me
func (h *AuthHandler) Me(c fiber.Ctx) error {
	user, err := h.svc.Me(c.Context(), middleware.UserID(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"user": user})
}
