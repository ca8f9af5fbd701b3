// Package useragent classifies raw User-Agent strings into coarse device
// information for click analytics.
package useragent

import (
	ua "github.com/mileusna/useragent"

	"github.com/avolkov/url-shortener/internal/models"
)

const (
	DeviceDesktop = "Desktop"
	DeviceMobile  = "Mobile"
	DeviceTablet  = "Tablet"
	DeviceBot     = "Bot"
)

type Classifier struct{}

func NewClassifier() *Classifier {
	return &Classifier{}
}

// Classify parses a User-Agent header. Fields that cannot be derived are
// left empty rather than guessed.
func (c *Classifier) Classify(userAgent string) models.DeviceInfo {
	if userAgent == "" {
		return models.DeviceInfo{}
	}

	parsed := ua.Parse(userAgent)

	return models.DeviceInfo{
		DeviceType:      deviceType(parsed),
		Browser:         parsed.Name,
		OperatingSystem: parsed.OS,
	}
}

func deviceType(parsed ua.UserAgent) string {
	switch {
	case parsed.Bot:
		return DeviceBot
	case parsed.Tablet:
		return DeviceTablet
	case parsed.Mobile:
		return DeviceMobile
	case parsed.Desktop:
		return DeviceDesktop
	default:
		return ""
	}
}
