package model

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Platform is the closed set of social platforms a storefront can link to.
type Platform string

const (
	PlatformInstagram Platform = "instagram"
	PlatformTikTok    Platform = "tiktok"
	PlatformWhatsApp  Platform = "whatsapp"
	PlatformFacebook  Platform = "facebook"
	PlatformYouTube   Platform = "youtube"
	PlatformTwitter   Platform = "twitter"
	PlatformShopee    Platform = "shopee"
	PlatformTokopedia Platform = "tokopedia"
	PlatformWebsite   Platform = "website"
)

// FallbackIcon is returned only for values outside AllPlatforms.
const FallbackIcon = "link"

// AllPlatforms lists every known platform. Icon must handle each one.
func AllPlatforms() []Platform {
	return []Platform{
		PlatformInstagram,
		PlatformTikTok,
		PlatformWhatsApp,
		PlatformFacebook,
		PlatformYouTube,
		PlatformTwitter,
		PlatformShopee,
		PlatformTokopedia,
		PlatformWebsite,
	}
}

func ParsePlatform(s string) (Platform, error) {
	p := Platform(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range AllPlatforms() {
		if p == known {
			return p, nil
		}
	}
	return "", fmt.Errorf("unknown platform %q", s)
}

// Icon maps a platform to its icon key.
func (p Platform) Icon() string {
	switch p {
	case PlatformInstagram:
		return "instagram"
	case PlatformTikTok:
		return "music-note"
	case PlatformWhatsApp:
		return "message-circle"
	case PlatformFacebook:
		return "facebook"
	case PlatformYouTube:
		return "youtube"
	case PlatformTwitter:
		return "twitter"
	case PlatformShopee:
		return "shopping-bag"
	case PlatformTokopedia:
		return "store"
	case PlatformWebsite:
		return "globe"
	}
	return FallbackIcon
}

type SocialLink struct {
	BaseModel
	UserID   uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	Platform Platform  `gorm:"type:varchar(20);not null" json:"platform"`
	URL      string    `gorm:"type:varchar(500);not null" json:"url"`
	Position int       `gorm:"not null;default:0" json:"position"`
}

type SocialLinkView struct {
	Platform Platform `json:"platform"`
	URL      string   `json:"url"`
	Icon     string   `json:"icon"`
}

func (l SocialLink) View() SocialLinkView {
	return SocialLinkView{Platform: l.Platform, URL: l.URL, Icon: l.Platform.Icon()}
}
