package updatecheck

import (
	"fmt"
	"strings"
)

const DefaultAppID = "6464370385"

// StoreURL is the App Store deep link for the listing.
func StoreURL(appID string) string {
	return fmt.Sprintf("itms-apps://itunes.apple.com/app/%s", normalizeAppID(appID))
}

// WebStoreURL is the browser form of StoreURL.
func WebStoreURL(appID string) string {
	return fmt.Sprintf("https://apps.apple.com/app/id%s", normalizeAppID(appID))
}

func normalizeAppID(appID string) string {
	appID = strings.TrimPrefix(strings.TrimSpace(appID), "id")
	if appID == "" {
		return DefaultAppID
	}
	return appID
}
