package handler

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v3"
	"github.com/valyala/fasthttp"

	"github.com/rajbhoyar729/LokDarpan/internal/apperr"
	"github.com/rajbhoyar729/LokDarpan/internal/middleware"
	"github.com/rajbhoyar729/LokDarpan/internal/model"
	"github.com/rajbhoyar729/LokDarpan/internal/storage"
)

// pageQuery reads ?page= and ?limit=.
func pageQuery(c fiber.Ctx) (model.Page, string) {
	page, msg := middleware.ParsePositiveInt("page", c.Query("page"))
	if msg != "" {
		return model.Page{}, msg
	}
	if page > model.MaxPage {
		return model.Page{}, fmt.Sprintf("page must be at most %d", model.MaxPage)
	}
	limit, msg := middleware.ParsePositiveInt("limit", c.Query("limit"))
	if msg != "" {
		return model.Page{}, msg
	}
	return model.NewPage(page, limit), ""
}

func isMultipart(c fiber.Ctx) bool {
	return strings.HasPrefix(strings.ToLower(c.Get(fiber.HeaderContentType)), fiber.MIMEMultipartForm)
}

// formFields returns the text fields of a multipart request.
func formFields(c fiber.Ctx) (map[string][]string, error) {
	form, err := c.MultipartForm()
	if err != nil {
		return nil, err
	}
	return form.Value, nil
}

func formValue(fields map[string][]string, key string) (string, bool) {
	v, ok := fields[key]
	if !ok || len(v) == 0 {
		return "", false
	}
	return v[0], true
}

// formFile spools the named file of a multipart request into dir. It
// returns nil when the field is absent.
func formFile(c fiber.Ctx, field, dir string) (*storage.File, error) {
	fh, err := c.FormFile(field)
	if err != nil {
		if errors.Is(err, fasthttp.ErrMissingFile) || errors.Is(err, fasthttp.ErrNoMultipartForm) {
			return nil, nil
		}
		return nil, apperr.Validation("Invalid " + field + " upload")
	}
	f, err := storage.Spool(fh, dir)
	if err != nil {
		return nil, apperr.Internal("Failed to receive upload", err)
	}
	return &f, nil
}

// discardFiles removes spooled files that will not reach a service.
func discardFiles(files ...*storage.File) {
	for _, f := range files {
		if f != nil {
			storage.Discard(*f)
		}
	}
}

func parseBool(raw string) (bool, string) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "false", "0", "off", "no":
		return false, ""
	case "true", "1", "on", "yes":
		return true, ""
	}
	return false, "isShort must be a boolean"
}
