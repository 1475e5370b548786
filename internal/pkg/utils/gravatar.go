package utils

import (
	"crypto/md5"
	"fmt"
	"strings"
)

// GetGravatarURL generates a Gravatar URL for the given email address
// Default size is 200px if not specified
func GetGravatarURL(email string, size int) string {
	if size <= 0 {
		size = 200
	}

	email = strings.ToLower(strings.TrimSpace(email))
	hash := md5.Sum([]byte(email))

	return fmt.Sprintf("https://www.gravatar.com/avatar/%x?s=%d&d=mp", hash, size)
}

// AvatarURL prefers the picture stored on the account and falls back to Gravatar.
func AvatarURL(stored, email string, size int) string {
	if s := strings.TrimSpace(stored); s != "" {
		return s
	}
	if strings.TrimSpace(email) == "" {
		return ""
	}
	return GetGravatarURL(email, size)
}
