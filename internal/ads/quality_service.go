package ads

import (
	"context"
	"fmt"
	"strings"

	"github.com/prismads/prism/internal/analytics"
	"github.com/prismads/prism/internal/config"
	"github.com/prismads/prism/internal/metrics"
	"github.com/prismads/prism/internal/models"
	"github.com/prismads/prism/internal/storage"
	"go.uber.org/zap"
)

// Keyword screens used by the review pipeline. Matching is substring
// based over lowercased title and description.
var (
	brandSafetyKeywords = []string{
		"violence", "weapon", "gambling", "tobacco", "narcotic",
		"hate", "extremist", "counterfeit",
	}
	familyStandardsKeywords = []string{
		"explicit", "adult only", "nsfw", "graphic content",
	}
)

// QualityService reviews ad creatives against platform standards and
// summarizes review outcomes per campaign.
type QualityService struct {
	ads    storage.AdRepo
	cfg    config.QualityConfig
	logger *zap.Logger
	prom   *metrics.Metrics
}

// NewQualityService constructs a QualityService.
func NewQualityService(ads storage.AdRepo, cfg config.QualityConfig, logger *zap.Logger, prom *metrics.Metrics) *QualityService {
	return &QualityService{ads: ads, cfg: cfg, logger: logger, prom: prom}
}

// ReviewCheck is one dimension of an ad review.
type ReviewCheck struct {
	Name   string   `json:"name"`
	Score  float64  `json:"score"` // 0-5
	Passed bool     `json:"passed"`
	Issues []string `json:"issues,omitempty"`
}

// ReviewResult is the outcome of reviewing a single ad.
type ReviewResult struct {
	AdID         string                `json:"ad_id"`
	OverallScore float64               `json:"overall_score"` // 0-5
	Status       models.ApprovalStatus `json:"status"`
	Checks       []ReviewCheck         `json:"checks"`
}

// ReviewAd runs the full review pipeline on one ad and persists the
// outcome. A brand-safety failure rejects outright; otherwise the
// overall score against the configured threshold decides between
// approval and manual review.
func (s *QualityService) ReviewAd(ctx context.Context, adID string) (*ReviewResult, error) {
	ad, err := s.ads.GetByID(ctx, adID)
	if err != nil {
		return nil, err
	}
	if ad == nil {
		return nil, ErrNotFound
	}

	checks := []ReviewCheck{
		s.checkTechnicalSpecs(ad),
		s.checkBrandSafety(ad),
		s.checkContentGuidelines(ad),
		s.checkFamilyStandards(ad),
	}

	var sum float64
	safetyFailed := false
	for _, c := range checks {
		sum += c.Score
		if !c.Passed && (c.Name == "brand_safety" || c.Name == "family_standards") {
			safetyFailed = true
		}
	}
	overall := analytics.Round2(sum / float64(len(checks)))

	var status models.ApprovalStatus
	switch {
	case safetyFailed:
		status = models.ApprovalRejected
	case overall >= s.cfg.ScoreThreshold:
		status = models.ApprovalApproved
	default:
		status = models.ApprovalNeedsReview
	}

	if err := s.ads.UpdateReview(ctx, adID, status, overall); err != nil {
		return nil, err
	}

	s.logger.Info("ad reviewed",
		zap.String("ad_id", adID),
		zap.Float64("score", overall),
		zap.String("status", string(status)),
	)
	if s.prom != nil {
		s.prom.RecordAdReview(string(status))
	}

	return &ReviewResult{
		AdID:         adID,
		OverallScore: overall,
		Status:       status,
		Checks:       checks,
	}, nil
}

// checkTechnicalSpecs verifies file size, video duration and creative
// URL shape.
func (s *QualityService) checkTechnicalSpecs(ad *models.Ad) ReviewCheck {
	check := ReviewCheck{Name: "technical_specs", Score: 5, Passed: true}

	if ad.FileSizeBytes > s.cfg.MaxFileSizeBytes {
		check.Score -= 2
		check.Issues = append(check.Issues,
			fmt.Sprintf("file size %d exceeds limit %d", ad.FileSizeBytes, s.cfg.MaxFileSizeBytes))
	}
	if ad.Format == models.FormatVideo && ad.DurationSeconds > s.cfg.MaxVideoSeconds {
		check.Score -= 2
		check.Issues = append(check.Issues,
			fmt.Sprintf("video duration %ds exceeds limit %ds", ad.DurationSeconds, s.cfg.MaxVideoSeconds))
	}
	if ad.CreativeURL == "" {
		check.Score -= 1
		check.Issues = append(check.Issues, "creative URL is missing")
	} else if !strings.HasPrefix(ad.CreativeURL, "https://") {
		check.Score -= 1
		check.Issues = append(check.Issues, "creative URL must use https")
	}

	if check.Score < 0 {
		check.Score = 0
	}
	check.Passed = len(check.Issues) == 0
	return check
}

// checkBrandSafety screens the copy for prohibited topics.
func (s *QualityService) checkBrandSafety(ad *models.Ad) ReviewCheck {
	check := ReviewCheck{Name: "brand_safety", Score: 5, Passed: true}

	text := strings.ToLower(ad.Title + " " + ad.Description)
	for _, kw := range brandSafetyKeywords {
		if strings.Contains(text, kw) {
			check.Issues = append(check.Issues, "prohibited topic: "+kw)
		}
	}
	if len(check.Issues) > 0 {
		check.Score = 0
		check.Passed = false
	}
	return check
}

// checkContentGuidelines verifies copy lengths and the click-through
// destination.
func (s *QualityService) checkContentGuidelines(ad *models.Ad) ReviewCheck {
	check := ReviewCheck{Name: "content_guidelines", Score: 5, Passed: true}

	if len(ad.Title) < 5 {
		check.Score -= 2
		check.Issues = append(check.Issues, "title is too short")
	}
	if len(ad.Title) > 100 {
		check.Score -= 1
		check.Issues = append(check.Issues, "title exceeds 100 characters")
	}
	if len(ad.Description) > 500 {
		check.Score -= 1
		check.Issues = append(check.Issues, "description exceeds 500 characters")
	}
	if ad.ClickThroughURL == "" {
		check.Score -= 1
		check.Issues = append(check.Issues, "click-through URL is missing")
	} else if !strings.HasPrefix(ad.ClickThroughURL, "https://") {
		check.Score -= 1
		check.Issues = append(check.Issues, "click-through URL must use https")
	}

	if check.Score < 0 {
		check.Score = 0
	}
	check.Passed = len(check.Issues) == 0
	return check
}

// checkFamilyStandards screens for content unsuitable for a general
// streaming audience.
func (s *QualityService) checkFamilyStandards(ad *models.Ad) ReviewCheck {
	check := ReviewCheck{Name: "family_standards", Score: 5, Passed: true}

	text := strings.ToLower(ad.Title + " " + ad.Description)
	for _, kw := range familyStandardsKeywords {
		if strings.Contains(text, kw) {
			check.Issues = append(check.Issues, "not suitable for general audiences: "+kw)
		}
	}
	if len(check.Issues) > 0 {
		check.Score = 0
		check.Passed = false
	}
	return check
}

// QualityReport summarizes review outcomes across a campaign's ads.
type QualityReport struct {
	CampaignID          string         `json:"campaign_id"`
	TotalAds            int            `json:"total_ads"`
	Approved            int            `json:"approved"`
	Rejected            int            `json:"rejected"`
	NeedsReview         int            `json:"needs_review"`
	Pending             int            `json:"pending"`
	ApprovalRatePercent float64        `json:"approval_rate_percent"`
	AverageScore        float64        `json:"average_score"`
	ScoreDistribution   map[string]int `json:"score_distribution"`
}

// CampaignQualityReport aggregates approval status and score
// distribution for every ad in a campaign.
func (s *QualityService) CampaignQualityReport(ctx context.Context, campaignID string) (*QualityReport, error) {
	adsList, err := s.ads.ListByCampaign(ctx, campaignID)
	if err != nil {
		return nil, err
	}

	report := &QualityReport{
		CampaignID:        campaignID,
		TotalAds:          len(adsList),
		ScoreDistribution: map[string]int{"0-1": 0, "1-2": 0, "2-3": 0, "3-4": 0, "4-5": 0},
	}

	var scoreSum float64
	scored := 0
	for _, ad := range adsList {
		switch ad.ApprovalStatus {
		case models.ApprovalApproved:
			report.Approved++
		case models.ApprovalRejected:
			report.Rejected++
		case models.ApprovalNeedsReview:
			report.NeedsReview++
		default:
			report.Pending++
		}

		if ad.QualityScore > 0 {
			scoreSum += ad.QualityScore
			scored++
			report.ScoreDistribution[scoreBucket(ad.QualityScore)]++
		}
	}

	if report.TotalAds > 0 {
		report.ApprovalRatePercent = analytics.Round2(float64(report.Approved) / float64(report.TotalAds) * 100)
	}
	if scored > 0 {
		report.AverageScore = analytics.Round2(scoreSum / float64(scored))
	}

	return report, nil
}

func scoreBucket(score float64) string {
	switch {
	case score < 1:
		return "0-1"
	case score < 2:
		return "1-2"
	case score < 3:
		return "2-3"
	case score < 4:
		return "3-4"
	default:
		return "4-5"
	}
}
