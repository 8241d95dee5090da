package ads

import (
	"context"
	"testing"

	"github.com/prismads/prism/internal/models"
	"github.com/prismads/prism/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newQualityFixture(t *testing.T) (*QualityService, storage.AdRepo) {
	t.Helper()
	repo := storage.NewInMemoryAdRepo()
	svc := NewQualityService(repo, testQualityConfig(), zap.NewNop(), nil)
	return svc, repo
}

func seedAd(t *testing.T, repo storage.AdRepo, ad *models.Ad) {
	t.Helper()
	if ad.ApprovalStatus == "" {
		ad.ApprovalStatus = models.ApprovalPending
	}
	require.NoError(t, repo.Upsert(context.Background(), ad))
}

func TestReviewAdApproved(t *testing.T) {
	ctx := context.Background()
	svc, repo := newQualityFixture(t)
	seedAd(t, repo, &models.Ad{
		ID: "ad_1", CampaignID: "cmp_1",
		Title:           "Stream the new season today",
		Description:     "All episodes available now.",
		CreativeURL:     "https://cdn.example.com/creative.mp4",
		ClickThroughURL: "https://example.com/watch",
		Format:          models.FormatVideo,
		DurationSeconds: 15,
		FileSizeBytes:   2 * 1024 * 1024,
	})

	result, err := svc.ReviewAd(ctx, "ad_1")
	require.NoError(t, err)

	assert.Equal(t, models.ApprovalApproved, result.Status)
	assert.Equal(t, 5.0, result.OverallScore)
	require.Len(t, result.Checks, 4)
	for _, c := range result.Checks {
		assert.True(t, c.Passed, c.Name)
	}

	// The outcome is persisted on the ad.
	stored, err := repo.GetByID(ctx, "ad_1")
	require.NoError(t, err)
	assert.Equal(t, models.ApprovalApproved, stored.ApprovalStatus)
	assert.Equal(t, 5.0, stored.QualityScore)
}

func TestReviewAdBrandSafetyRejection(t *testing.T) {
	ctx := context.Background()
	svc, repo := newQualityFixture(t)
	seedAd(t, repo, &models.Ad{
		ID: "ad_2", CampaignID: "cmp_1",
		Title:           "Online gambling made easy",
		CreativeURL:     "https://cdn.example.com/c.png",
		ClickThroughURL: "https://example.com",
	})

	result, err := svc.ReviewAd(ctx, "ad_2")
	require.NoError(t, err)

	// A safety violation rejects regardless of the other scores.
	assert.Equal(t, models.ApprovalRejected, result.Status)
	for _, c := range result.Checks {
		if c.Name == "brand_safety" {
			assert.False(t, c.Passed)
			assert.Zero(t, c.Score)
		}
	}
}

func TestReviewAdNeedsReview(t *testing.T) {
	ctx := context.Background()
	svc, repo := newQualityFixture(t)
	seedAd(t, repo, &models.Ad{
		ID: "ad_3", CampaignID: "cmp_1",
		Title:           "Ad", // too short
		CreativeURL:     "http://cdn.example.com/big.mp4",
		Format:          models.FormatVideo,
		DurationSeconds: 90,
		FileSizeBytes:   50 * 1024 * 1024,
	})

	result, err := svc.ReviewAd(ctx, "ad_3")
	require.NoError(t, err)

	// Technical and guideline deductions pull the average below the
	// approval threshold without any safety violation.
	assert.Equal(t, models.ApprovalNeedsReview, result.Status)
	assert.Less(t, result.OverallScore, 3.5)
	assert.Greater(t, result.OverallScore, 0.0)
}

func TestReviewAdNotFound(t *testing.T) {
	svc, _ := newQualityFixture(t)
	_, err := svc.ReviewAd(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCampaignQualityReport(t *testing.T) {
	ctx := context.Background()
	svc, repo := newQualityFixture(t)

	seedAd(t, repo, &models.Ad{ID: "ad_1", CampaignID: "cmp_1", Title: "One",
		ApprovalStatus: models.ApprovalApproved, QualityScore: 4.5})
	seedAd(t, repo, &models.Ad{ID: "ad_2", CampaignID: "cmp_1", Title: "Two",
		ApprovalStatus: models.ApprovalApproved, QualityScore: 4.0})
	seedAd(t, repo, &models.Ad{ID: "ad_3", CampaignID: "cmp_1", Title: "Three",
		ApprovalStatus: models.ApprovalRejected, QualityScore: 1.5})
	seedAd(t, repo, &models.Ad{ID: "ad_4", CampaignID: "cmp_1", Title: "Four"})
	seedAd(t, repo, &models.Ad{ID: "ad_other", CampaignID: "cmp_2", Title: "Elsewhere",
		ApprovalStatus: models.ApprovalApproved, QualityScore: 5})

	report, err := svc.CampaignQualityReport(ctx, "cmp_1")
	require.NoError(t, err)

	assert.Equal(t, 4, report.TotalAds)
	assert.Equal(t, 2, report.Approved)
	assert.Equal(t, 1, report.Rejected)
	assert.Equal(t, 1, report.Pending)
	assert.Equal(t, 50.0, report.ApprovalRatePercent)
	// (4.5 + 4.0 + 1.5) / 3
	assert.InDelta(t, 3.33, report.AverageScore, 0.01)
	assert.Equal(t, 1, report.ScoreDistribution["1-2"])
	assert.Equal(t, 2, report.ScoreDistribution["4-5"])
}

func TestCampaignQualityReportEmpty(t *testing.T) {
	svc, _ := newQualityFixture(t)
	report, err := svc.CampaignQualityReport(context.Background(), "cmp_none")
	require.NoError(t, err)
	assert.Zero(t, report.TotalAds)
	assert.Zero(t, report.ApprovalRatePercent)
	assert.Zero(t, report.AverageScore)
}
