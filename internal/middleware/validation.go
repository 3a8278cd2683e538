package middleware

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
)

// Field limits matching the database schema and the public API contract.
const (
	MinNameLen        = 3
	MaxNameLen        = 50
	MinPasswordLen    = 6
	MaxPasswordLen    = 72 // bcrypt ignores anything longer
	MaxTitleLen       = 200
	MaxDescriptionLen = 5000
	MaxChannelDescLen = 500
	MaxCategoryLen    = 50
	MaxCommentLen     = 2000
	MaxSearchQueryLen = 100
	MaxTags           = 20
	MaxTagLen         = 30
	MaxEmailLen       = 254
	MinPhoneDigits    = 10
	MaxPhoneDigits    = 15
)

var (
	// emailRe only checks the local@domain.tld shape.
	emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phoneRe = regexp.MustCompile(`^\+?[0-9]+$`)
)

// ErrorResponse is a helper that returns a standard API error response.
func ErrorResponse(c fiber.Ctx, status int, code, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"error": fiber.Map{
			"code":    code,
			"message": message,
		},
	})
}

// ValidateID checks that a path id is a UUID. field names the parameter in
// the error message.
func ValidateID(field, id string) (string, string) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", field + " is required"
	}
	u, err := uuid.Parse(id)
	if err != nil {
		return "", field + " must be a valid id"
	}
	return u.String(), ""
}

// ValidateName checks a user or channel name.
func ValidateName(name string) (string, string) {
	name = strings.TrimSpace(name)
	n := utf8.RuneCountInString(name)
	if n < MinNameLen || n > MaxNameLen {
		return "", fmt.Sprintf("Name must be %d-%d characters", MinNameLen, MaxNameLen)
	}
	return name, ""
}

// ValidateEmail checks the email shape and lower-cases it.
func ValidateEmail(email string) (string, string) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return "", "Email is required"
	}
	if len(email) > MaxEmailLen || !emailRe.MatchString(email) {
		return "", "Email is invalid"
	}
	return email, ""
}

// ValidatePhone accepts 10-15 digits with an optional leading +. Spaces and
// dashes are stripped.
func ValidatePhone(phone string) (string, string) {
	phone = strings.NewReplacer(" ", "", "-", "").Replace(strings.TrimSpace(phone))
	if !phoneRe.MatchString(phone) {
		return "", "Phone must contain only digits"
	}
	digits := len(strings.TrimPrefix(phone, "+"))
	if digits < MinPhoneDigits || digits > MaxPhoneDigits {
		return "", fmt.Sprintf("Phone must be %d-%d digits", MinPhoneDigits, MaxPhoneDigits)
	}
	return phone, ""
}

// ValidatePassword checks password length. The password is not trimmed.
func ValidatePassword(pw string) string {
	if len(pw) < MinPasswordLen {
		return fmt.Sprintf("Password must be at least %d characters", MinPasswordLen)
	}
	if len(pw) > MaxPasswordLen {
		return fmt.Sprintf("Password must be at most %d bytes", MaxPasswordLen)
	}
	return ""
}

// ValidateTitle checks a video title.
func ValidateTitle(title string) (string, string) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", "Title is required"
	}
	if utf8.RuneCountInString(title) > MaxTitleLen {
		return "", fmt.Sprintf("Title must be at most %d characters", MaxTitleLen)
	}
	return title, ""
}

// ValidateDescription checks an optional description against max.
func ValidateDescription(desc string, max int) (string, string) {
	desc = strings.TrimSpace(desc)
	if utf8.RuneCountInString(desc) > max {
		return "", fmt.Sprintf("Description must be at most %d characters", max)
	}
	return desc, ""
}

// ValidateCategory checks an optional category.
func ValidateCategory(category string) (string, string) {
	category = strings.TrimSpace(category)
	if utf8.RuneCountInString(category) > MaxCategoryLen {
		return "", fmt.Sprintf("Category must be at most %d characters", MaxCategoryLen)
	}
	return category, ""
}

// ValidateTags checks a parsed tag list.
func ValidateTags(tags []string) string {
	if len(tags) > MaxTags {
		return fmt.Sprintf("At most %d tags are allowed", MaxTags)
	}
	for _, t := range tags {
		if utf8.RuneCountInString(t) > MaxTagLen {
			return fmt.Sprintf("Tags must be at most %d characters", MaxTagLen)
		}
	}
	return ""
}

// ValidateComment checks comment text.
func ValidateComment(text string) (string, string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", "Comment text is required"
	}
	if utf8.RuneCountInString(text) > MaxCommentLen {
		return "", fmt.Sprintf("Comment must be at most %d characters", MaxCommentLen)
	}
	return text, ""
}

// ValidateSearchQuery checks the q parameter of a search.
func ValidateSearchQuery(q string) (string, string) {
	q = strings.TrimSpace(q)
	if q == "" {
		return "", "Search query is required"
	}
	if utf8.RuneCountInString(q) > MaxSearchQueryLen {
		return "", fmt.Sprintf("Search query must be at most %d characters", MaxSearchQueryLen)
	}
	return q, ""
}

// ParsePositiveInt parses an optional positive integer query value. Empty
// yields 0.
func ParsePositiveInt(field, raw string) (int, string) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, ""
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, field + " must be a positive integer"
	}
	return n, ""
}
