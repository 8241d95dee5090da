package targeting

import (
	"strings"

	"github.com/prismads/prism/internal/models"
)

// Matching helpers for campaign targeting criteria. An empty criteria
// list means "no restriction" and matches everything.

// MatchesCountry reports whether the ISO country code passes the
// campaign's country list.
func MatchesCountry(criteria models.TargetingCriteria, countryCode string) bool {
	if len(criteria.Countries) == 0 {
		return true
	}
	countryCode = strings.ToUpper(countryCode)
	for _, c := range criteria.Countries {
		if strings.ToUpper(c) == countryCode {
			return true
		}
	}
	return false
}

// MatchesRegion reports whether the region name passes the campaign's
// region list. Comparison is case-insensitive.
func MatchesRegion(criteria models.TargetingCriteria, region string) bool {
	if len(criteria.Regions) == 0 {
		return true
	}
	region = strings.ToLower(region)
	for _, r := range criteria.Regions {
		if strings.ToLower(r) == region {
			return true
		}
	}
	return false
}

// MatchesDemographic reports whether an age band is targeted.
func MatchesDemographic(criteria models.TargetingCriteria, ageBand string) bool {
	if len(criteria.Demographics) == 0 {
		return true
	}
	for _, d := range criteria.Demographics {
		if d == ageBand {
			return true
		}
	}
	return false
}

// MatchesContentType reports whether a content type is targeted.
func MatchesContentType(criteria models.TargetingCriteria, contentType string) bool {
	if len(criteria.ContentTypes) == 0 {
		return true
	}
	contentType = strings.ToLower(contentType)
	for _, ct := range criteria.ContentTypes {
		if strings.ToLower(ct) == contentType {
			return true
		}
	}
	return false
}

// MatchesGeo checks country and region together against a resolved
// viewer location. A nil location only passes when the campaign has no
// geo restrictions at all.
func MatchesGeo(criteria models.TargetingCriteria, info *GeoInfo) bool {
	if info == nil {
		return len(criteria.Countries) == 0 && len(criteria.Regions) == 0
	}
	return MatchesCountry(criteria, info.CountryCode) && MatchesRegion(criteria, info.Region)
}
