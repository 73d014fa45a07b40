package service

import (
	"regexp"
	"unicode/utf8"

	"github.com/C0de-cloud/Notes-API/models"
)

var hexColorRegex = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)
var emailRegex = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
var usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_.-]+$`)

const (
	minUsernameLen = 3
	maxUsernameLen = 50
	minPasswordLen = 8
	maxTitleLen    = 200
	maxNameLen     = 100
	maxTagLen      = 50
	maxTagsPerNote = 32
)

func ValidateEmail(email string) error {
	if !emailRegex.MatchString(email) {
		return validationError("invalid email")
	}
	return nil
}

func ValidateUsername(username string) error {
	if len(username) < minUsernameLen || len(username) > maxUsernameLen {
		return validationError("username must be 3-50 characters")
	}
	if !usernameRegex.MatchString(username) {
		return validationError("username contains invalid characters")
	}
	return nil
}

func ValidatePassword(password string) error {
	if len(password) < minPasswordLen {
		return validationError("password must be at least 8 characters")
	}
	return nil
}

func ValidateColor(color string) error {
	// Color is optional everywhere it appears
	if color == "" {
		return nil
	}
	if !hexColorRegex.MatchString(color) {
		return validationError("color must be a #rrggbb hex value")
	}
	return nil
}

func ValidateTitle(title string) error {
	if title == "" {
		return validationError("title must not be empty")
	}
	if utf8.RuneCountInString(title) > maxTitleLen {
		return validationError("title too long")
	}
	return nil
}

func ValidateContent(content string) error {
	if content == "" {
		return validationError("content must not be empty")
	}
	if !utf8.ValidString(content) {
		return validationError("content is not valid UTF-8")
	}
	return nil
}

func ValidateTags(tags []string) error {
	if len(tags) > maxTagsPerNote {
		return validationError("too many tags")
	}
	seen := make(map[string]struct{}, len(tags))
	for _, tag := range tags {
		if tag == "" || utf8.RuneCountInString(tag) > maxTagLen {
			return validationError("tags must be 1-50 characters")
		}
		if _, dup := seen[tag]; dup {
			return validationError("duplicate tag: " + tag)
		}
		seen[tag] = struct{}{}
	}
	return nil
}

func ValidateCollectionName(name string) error {
	if name == "" {
		return validationError("name must not be empty")
	}
	if utf8.RuneCountInString(name) > maxNameLen {
		return validationError("name too long")
	}
	return nil
}

func ValidatePermission(permission models.Permission) error {
	switch permission {
	case models.PermissionRead, models.PermissionWrite:
		return nil
	}
	return validationError("permission must be read or write")
}
