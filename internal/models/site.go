package models

// Site setting keys shown on the public pages
const (
	SiteHeroTitle      = "site.hero_title"
	SiteHeroSubtitle   = "site.hero_subtitle"
	SiteAboutText      = "site.about_text"
	SiteContactAddress = "site.contact_address"
	SiteContactPhone   = "site.contact_phone"
	SiteContactEmail   = "site.contact_email"
	SiteContactHours   = "site.contact_hours"
)

// SiteKeys is the closed set of editable site settings
var SiteKeys = []string{
	SiteHeroTitle, SiteHeroSubtitle, SiteAboutText,
	SiteContactAddress, SiteContactPhone, SiteContactEmail, SiteContactHours,
}

// IsSiteKey reports whether key may be edited through the admin API
func IsSiteKey(key string) bool {
	for _, k := range SiteKeys {
		if k == key {
			return true
		}
	}
	return false
}
