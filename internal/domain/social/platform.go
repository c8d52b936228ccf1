package social

import "strings"

type Platform string

const (
	PlatformInstagram Platform = "instagram"
	PlatformTwitter   Platform = "twitter"
	PlatformTikTok    Platform = "tiktok"
	PlatformFacebook  Platform = "facebook"
	PlatformLinkedIn  Platform = "linkedin"
	PlatformYouTube   Platform = "youtube"
)

// Platforms lists every supported platform in display order.
var Platforms = []Platform{
	PlatformInstagram,
	PlatformTwitter,
	PlatformTikTok,
	PlatformFacebook,
	PlatformLinkedIn,
	PlatformYouTube,
}

func ParsePlatform(raw string) (Platform, bool) {
	p := Platform(strings.ToLower(strings.TrimSpace(raw)))
	for _, known := range Platforms {
		if p == known {
			return p, true
		}
	}
	return "", false
}

// MaxCaptionRunes is the per-platform caption limit; zero means the generic limit applies.
func (p Platform) MaxCaptionRunes() int {
	switch p {
	case PlatformTwitter:
		return 280
	case PlatformInstagram, PlatformTikTok:
		return 2200
	case PlatformLinkedIn:
		return 3000
	default:
		return 0
	}
}
