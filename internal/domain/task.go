package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type Platform string

const (
	PlatformYouTube Platform = "youtube"
	PlatformTikTok  Platform = "tiktok"
	PlatformTrivia  Platform = "trivia"
	PlatformText    Platform = "text"
)

// Platforms lists every platform a task can be published on.
var Platforms = []Platform{PlatformYouTube, PlatformTikTok, PlatformTrivia, PlatformText}

// ParsePlatform accepts both the short form ("youtube") and the
// dashboard's "video-" prefixed form ("video-youtube").
func ParsePlatform(s string) (Platform, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.TrimPrefix(s, "video-")
	for _, p := range Platforms {
		if string(p) == s {
			return p, true
		}
	}
	return "", false
}

// Task is a reward-bearing item authored outside this service. Read-only here.
type Task struct {
	ID           uuid.UUID
	Title        string
	URL          string
	Platform     Platform
	RewardAmount int64
	IsActive     bool
	CreatedAt    time.Time
}
