package gravatar

import (
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"strconv"
	"strings"
)

const baseURL = "https://www.gravatar.com/avatar/"

// Avatars builds Gravatar image URLs for user email addresses.
type Avatars struct {
	enabled bool
	query   string
}

// Options controls which avatar images Gravatar serves.
type Options struct {
	Enabled      bool
	DefaultImage string
	Rating       string
	Size         int
}

// New creates an avatar resolver. Nil or disabled options yield a resolver
// that returns no URLs.
func New(cfg *Options) *Avatars {
	if cfg == nil || !cfg.Enabled {
		return &Avatars{}
	}

	params := url.Values{}
	if cfg.DefaultImage != "" {
		params.Add("d", cfg.DefaultImage)
	}
	if cfg.Rating != "" {
		params.Add("r", cfg.Rating)
	}
	if cfg.Size > 0 {
		params.Add("s", strconv.Itoa(cfg.Size))
	}

	return &Avatars{
		enabled: true,
		query:   params.Encode(),
	}
}

// Enabled reports whether avatars should be shown at all.
func (a *Avatars) Enabled() bool {
	return a != nil && a.enabled
}

// URL returns the avatar URL for email, or an empty string if avatars are
// disabled or the email is blank.
func (a *Avatars) URL(email string) string {
	if !a.Enabled() {
		return ""
	}
	hash := Hash(email)
	if hash == "" {
		return ""
	}
	if a.query == "" {
		return baseURL + hash
	}
	return baseURL + hash + "?" + a.query
}

// Hash returns the hex encoded SHA-256 of the normalized email address.
func Hash(email string) string {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(email))
	return hex.EncodeToString(sum[:])
}

// IsValidDefaultImage checks if the provided default image value is valid for Gravatar.
func IsValidDefaultImage(defaultImage string) bool {
	validDefaults := map[string]bool{
		"404":       true,
		"mp":        true,
		"identicon": true,
		"monsterid": true,
		"wavatar":   true,
		"retro":     true,
		"robohash":  true,
		"blank":     true,
	}
	return validDefaults[defaultImage]
}

// IsValidRating checks if the provided rating value is valid for Gravatar.
func IsValidRating(rating string) bool {
	validRatings := map[string]bool{
		"g":  true,
		"pg": true,
		"r":  true,
		"x":  true,
	}
	return validRatings[rating]
}

// IsValidSize checks if the provided size value is valid for Gravatar (1-2048 pixels).
func IsValidSize(size int) bool {
	return size >= 1 && size <= 2048
}
