package validator

import (
	"fmt"
	"mime"
	"regexp"
	"strings"
)

const (
	minUsernameLength = 1
	maxUsernameLength = 150
	minPasswordLength = 8
	maxPasswordLength = 128
	maxTaskTitleLen   = 200
	maxFileNameLen    = 255
	maxContentTypeLen = 255
	asciiControlStart = 32
	asciiDelete       = 127

	errUsernameLengthFmt       = "username must be between %d and %d characters"
	errUsernameInvalidFmt      = "username may contain only letters, digits and @.+-_"
	errPasswordMinLengthFmt    = "password must be at least %d characters"
	errPasswordMaxLengthFmt    = "password must not exceed %d characters"
	errTaskTitleEmptyFmt       = "task title cannot be empty"
	errTaskTitleMaxLengthFmt   = "task title must not exceed %d characters"
	errFileNameEmptyFmt        = "file name cannot be empty"
	errFileNameMaxLengthFmt    = "file name must not exceed %d characters"
	errFileNamePathSepFmt      = "file name cannot contain path separators"
	errFileNameControlCharsFmt = "file name cannot contain control characters"
	errContentTypeMaxLengthFmt = "content type must not exceed %d characters"
	errContentTypeInvalidFmt   = "invalid content type"
	errFileSizeNegativeFmt     = "file size cannot be negative"
	errFileSizeMaxFmt          = "file size exceeds maximum of %d bytes"
)

var usernameRegex = regexp.MustCompile(`^[\w.@+-]+$`)

func Username(username string) error {
	if len(username) < minUsernameLength || len(username) > maxUsernameLength {
		return fmt.Errorf(errUsernameLengthFmt, minUsernameLength, maxUsernameLength)
	}

	if !usernameRegex.MatchString(username) {
		return fmt.Errorf(errUsernameInvalidFmt)
	}

	return nil
}

func Password(password string) error {
	if len(password) < minPasswordLength {
		return fmt.Errorf(errPasswordMinLengthFmt, minPasswordLength)
	}

	if len(password) > maxPasswordLength {
		return fmt.Errorf(errPasswordMaxLengthFmt, maxPasswordLength)
	}

	return nil
}

// TaskTitle expects an already trimmed title.
func TaskTitle(title string) error {
	if title == "" {
		return fmt.Errorf(errTaskTitleEmptyFmt)
	}

	if len([]rune(title)) > maxTaskTitleLen {
		return fmt.Errorf(errTaskTitleMaxLengthFmt, maxTaskTitleLen)
	}

	return nil
}

func FileName(name string) error {
	if name == "" {
		return fmt.Errorf(errFileNameEmptyFmt)
	}

	if len(name) > maxFileNameLen {
		return fmt.Errorf(errFileNameMaxLengthFmt, maxFileNameLen)
	}

	if strings.Contains(name, "..") || strings.Contains(name, "/") || strings.Contains(name, "\\") {
		return fmt.Errorf(errFileNamePathSepFmt)
	}

	for _, char := range name {
		if char < asciiControlStart || char == asciiDelete {
			return fmt.Errorf(errFileNameControlCharsFmt)
		}
	}

	return nil
}

func FileSize(size, limit int64) error {
	if size < 0 {
		return fmt.Errorf(errFileSizeNegativeFmt)
	}

	if limit > 0 && size > limit {
		return fmt.Errorf(errFileSizeMaxFmt, limit)
	}

	return nil
}

func ContentType(contentType string) error {
	if contentType == "" {
		return nil
	}

	if len(contentType) > maxContentTypeLen {
		return fmt.Errorf(errContentTypeMaxLengthFmt, maxContentTypeLen)
	}

	if _, _, err := mime.ParseMediaType(contentType); err != nil {
		return fmt.Errorf(errContentTypeInvalidFmt)
	}

	return nil
}
