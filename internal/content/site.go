package content

import (
	"sort"
	"strings"

	"skportal-backend/internal/models"
)

// Site returns the public site settings through the read-only connection
func (s *Service) Site() (map[string]string, error) {
	return s.publicSettings.GetPrefix("site.")
}

// UpdateSite applies a partial update. Unknown keys reject the whole request.
func (s *Service) UpdateSite(actor Actor, values map[string]string) (map[string]string, error) {
	if len(values) == 0 {
		return nil, invalid("settings", "no settings given")
	}
	clean := make(map[string]string, len(values))
	keys := make([]string, 0, len(values))
	for k, v := range values {
		if !models.IsSiteKey(k) {
			return nil, invalid(k, "unknown setting %q", k)
		}
		clean[k] = strings.TrimSpace(v)
		keys = append(keys, k)
	}

	if err := s.settings.SetMany(clean); err != nil {
		return nil, err
	}
	sort.Strings(keys)
	s.record(actor, models.ActionSiteUpdate, "site", map[string]any{"keys": keys})
	return s.settings.GetPrefix("site.")
}
