// Package validator provides input validation and sanitization functions
// for the Postoffice front ends.
package validator

import (
	"errors"
	"net/mail"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/welldanyogia/postoffice/internal/models"
)

// Validation errors
var (
	ErrInvalidEmail     = errors.New("invalid email format")
	ErrInvalidNumber    = errors.New("invalid number")
	ErrInputTooLong     = errors.New("input exceeds maximum length")
	ErrInvalidCharacter = errors.New("input contains invalid characters")
	ErrEmptyInput       = errors.New("input cannot be empty")
	ErrOutOfRange       = errors.New("value out of range")
)

// Identifier length limits. A folder row key is owner:folder and a
// conversation row key is owner:discriminator; both must fit the 255
// character row key column.
const (
	MaxOwnerIDLength       = 128
	MaxFolderNameLength    = 64
	MaxDiscriminatorLength = 64
)

// validateIdentifier rejects empty values, the row key delimiter and
// control characters
func validateIdentifier(value string, maxLength int) error {
	if value == "" {
		return ErrEmptyInput
	}
	if utf8.RuneCountInString(value) > maxLength {
		return ErrInputTooLong
	}
	if strings.Contains(value, models.Delimiter) {
		return ErrInvalidCharacter
	}
	for _, r := range value {
		if r < 32 || r == 127 {
			return ErrInvalidCharacter
		}
	}
	return nil
}

// ValidateOwnerID validates a user identifier
func ValidateOwnerID(owner string) error {
	return validateIdentifier(owner, MaxOwnerIDLength)
}

// ValidateFolderName validates a folder name such as "inbox" or "sent"
func ValidateFolderName(folder string) error {
	return validateIdentifier(folder, MaxFolderNameLength)
}

// ValidateDiscriminator validates the conversation discriminator of a reply
func ValidateDiscriminator(discriminator string) error {
	return validateIdentifier(discriminator, MaxDiscriminatorLength)
}

// ValidateEmail validates email address format according to RFC 5322.
// Returns nil if valid, or an appropriate error.
func ValidateEmail(email string) error {
	email = strings.TrimSpace(strings.ToLower(email))

	if email == "" {
		return ErrEmptyInput
	}

	// RFC 5321 specifies max email length of 254 characters
	if utf8.RuneCountInString(email) > 254 {
		return ErrInputTooLong
	}

	if _, err := mail.ParseAddress(email); err != nil {
		return ErrInvalidEmail
	}

	return nil
}

// Pagination constants
const (
	DefaultCount = 20
	MaxCount     = 100
)

// ParseStart parses the offset of a folder page. It must be a non-negative
// integer; an empty value means 0.
func ParseStart(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	start, err := strconv.Atoi(raw)
	if err != nil {
		return 0, ErrInvalidNumber
	}
	if start < 0 {
		return 0, ErrOutOfRange
	}
	return start, nil
}

// ParseCount parses the size of a folder page. It must be a positive
// integer and is capped at MaxCount; an empty value means DefaultCount.
func ParseCount(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return DefaultCount, nil
	}
	count, err := strconv.Atoi(raw)
	if err != nil {
		return 0, ErrInvalidNumber
	}
	if count <= 0 {
		return 0, ErrOutOfRange
	}
	if count > MaxCount {
		count = MaxCount
	}
	return count, nil
}

// SanitizeString removes potentially dangerous characters and enforces length limits.
// Removes control characters and trims whitespace.
func SanitizeString(input string, maxLength int) string {
	// Remove control characters (ASCII 0-31 and 127)
	input = strings.Map(func(r rune) rune {
		if r < 32 || r == 127 {
			return -1
		}
		return r
	}, input)

	input = strings.TrimSpace(input)

	if maxLength > 0 && utf8.RuneCountInString(input) > maxLength {
		runes := []rune(input)
		input = string(runes[:maxLength])
	}

	return input
}
