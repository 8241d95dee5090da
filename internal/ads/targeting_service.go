package ads

import (
	"context"
	"sort"

	"github.com/prismads/prism/internal/analytics"
	"github.com/prismads/prism/internal/metrics"
	"github.com/prismads/prism/internal/storage"
	"github.com/prismads/prism/internal/targeting"
	"go.uber.org/zap"
)

// segmentBenchmark is an observed platform-wide performance baseline
// for one targetable segment. The tables come from the platform's
// historical delivery analysis and change rarely; they are compiled in
// rather than stored.
type segmentBenchmark struct {
	CTRPercent float64
	CVRPercent float64
}

var (
	ageBandBenchmarks = map[string]segmentBenchmark{
		"18-24": {CTRPercent: 2.8, CVRPercent: 3.2},
		"25-34": {CTRPercent: 3.5, CVRPercent: 4.8},
		"35-44": {CTRPercent: 3.1, CVRPercent: 5.1},
		"45-54": {CTRPercent: 2.4, CVRPercent: 4.2},
		"55+":   {CTRPercent: 1.9, CVRPercent: 3.6},
	}
	contentTypeBenchmarks = map[string]segmentBenchmark{
		"movies":        {CTRPercent: 3.2, CVRPercent: 4.5},
		"tv_shows":      {CTRPercent: 3.6, CVRPercent: 4.9},
		"sports":        {CTRPercent: 4.1, CVRPercent: 3.8},
		"documentaries": {CTRPercent: 2.2, CVRPercent: 5.4},
		"kids":          {CTRPercent: 1.6, CVRPercent: 2.1},
	}
	countryBenchmarks = map[string]segmentBenchmark{
		"US": {CTRPercent: 3.4, CVRPercent: 4.6},
		"GB": {CTRPercent: 3.1, CVRPercent: 4.3},
		"DE": {CTRPercent: 2.9, CVRPercent: 4.8},
		"FR": {CTRPercent: 2.7, CVRPercent: 4.1},
		"JP": {CTRPercent: 2.5, CVRPercent: 5.2},
		"BR": {CTRPercent: 3.8, CVRPercent: 3.4},
	}
)

// TargetingService produces targeting recommendations from segment
// benchmarks and resolves audience geography for insight reports.
type TargetingService struct {
	campaigns storage.CampaignRepo
	geo       targeting.GeoProvider
	logger    *zap.Logger
	prom      *metrics.Metrics
}

// NewTargetingService constructs a TargetingService. geo may be nil
// when no GeoIP database is configured; insights then skip location
// resolution.
func NewTargetingService(campaigns storage.CampaignRepo, geo targeting.GeoProvider, logger *zap.Logger, prom *metrics.Metrics) *TargetingService {
	return &TargetingService{campaigns: campaigns, geo: geo, logger: logger, prom: prom}
}

// SegmentSuggestion is one actionable change to a campaign's targeting.
type SegmentSuggestion struct {
	Dimension  string  `json:"dimension"` // demographics, content_types, countries
	Segment    string  `json:"segment"`
	Action     string  `json:"action"` // add, remove
	CTRPercent float64 `json:"benchmark_ctr_percent"`
	CVRPercent float64 `json:"benchmark_cvr_percent"`
	Reason     string  `json:"reason"`
}

// TargetingRecommendations is the optimization output for one campaign.
type TargetingRecommendations struct {
	CampaignID        string              `json:"campaign_id"`
	OptimizationScore float64             `json:"optimization_score"` // 0-100
	Suggestions       []SegmentSuggestion `json:"suggestions"`
}

// OptimizeTargeting scores a campaign's targeting breadth and suggests
// adding strong untargeted segments and dropping weak targeted ones.
func (s *TargetingService) OptimizeTargeting(ctx context.Context, campaignID string) (*TargetingRecommendations, error) {
	c, err := s.campaigns.GetByID(ctx, campaignID)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, ErrNotFound
	}

	rec := &TargetingRecommendations{CampaignID: campaignID}

	rec.Suggestions = append(rec.Suggestions,
		suggestForDimension("demographics", c.Targeting.Demographics, ageBandBenchmarks)...)
	rec.Suggestions = append(rec.Suggestions,
		suggestForDimension("content_types", c.Targeting.ContentTypes, contentTypeBenchmarks)...)
	rec.Suggestions = append(rec.Suggestions,
		suggestForDimension("countries", c.Targeting.Countries, countryBenchmarks)...)

	// Fewer outstanding suggestions means the targeting is closer to
	// the benchmark optimum.
	totalSegments := len(ageBandBenchmarks) + len(contentTypeBenchmarks) + len(countryBenchmarks)
	rec.OptimizationScore = analytics.Round2(100 * (1 - float64(len(rec.Suggestions))/float64(totalSegments)))
	if rec.OptimizationScore < 0 {
		rec.OptimizationScore = 0
	}

	return rec, nil
}

// suggestForDimension flags untargeted segments whose benchmark CTR is
// in the dimension's top half (add) and targeted segments in the bottom
// (remove). An empty selection means "all", which needs no additions.
func suggestForDimension(dimension string, selected []string, benchmarks map[string]segmentBenchmark) []SegmentSuggestion {
	names := make([]string, 0, len(benchmarks))
	var ctrSum float64
	for name, b := range benchmarks {
		names = append(names, name)
		ctrSum += b.CTRPercent
	}
	sort.Strings(names)
	avgCTR := ctrSum / float64(len(benchmarks))

	selectedSet := make(map[string]bool, len(selected))
	for _, s := range selected {
		selectedSet[s] = true
	}

	var suggestions []SegmentSuggestion
	for _, name := range names {
		b := benchmarks[name]
		switch {
		case len(selected) > 0 && !selectedSet[name] && b.CTRPercent > avgCTR:
			suggestions = append(suggestions, SegmentSuggestion{
				Dimension:  dimension,
				Segment:    name,
				Action:     "add",
				CTRPercent: b.CTRPercent,
				CVRPercent: b.CVRPercent,
				Reason:     "segment outperforms the dimension average and is not targeted",
			})
		case selectedSet[name] && b.CTRPercent < avgCTR*0.7:
			suggestions = append(suggestions, SegmentSuggestion{
				Dimension:  dimension,
				Segment:    name,
				Action:     "remove",
				CTRPercent: b.CTRPercent,
				CVRPercent: b.CVRPercent,
				Reason:     "segment performs well below the dimension average",
			})
		}
	}
	return suggestions
}

// CountryShare is one country's share of a sampled audience.
type CountryShare struct {
	CountryCode string  `json:"country_code"`
	Country     string  `json:"country"`
	Viewers     int     `json:"viewers"`
	Percent     float64 `json:"percent"`
	Targeted    bool    `json:"targeted"`
}

// AudienceInsights locates a sample of viewer IPs and relates the
// result to the campaign's geo targeting.
type AudienceInsights struct {
	CampaignID      string         `json:"campaign_id"`
	SampledViewers  int            `json:"sampled_viewers"`
	ResolvedViewers int            `json:"resolved_viewers"`
	Countries       []CountryShare `json:"countries"`
	InTargetPercent float64        `json:"in_target_percent"`
}

// Insights resolves sampled viewer IPs through the geo provider and
// reports the audience's country mix against the campaign targeting.
func (s *TargetingService) Insights(ctx context.Context, campaignID string, viewerIPs []string) (*AudienceInsights, error) {
	c, err := s.campaigns.GetByID(ctx, campaignID)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, ErrNotFound
	}

	insights := &AudienceInsights{
		CampaignID:     campaignID,
		SampledViewers: len(viewerIPs),
	}
	if s.geo == nil || len(viewerIPs) == 0 {
		return insights, nil
	}

	type tally struct {
		name  string
		count int
	}
	countries := make(map[string]*tally)
	inTarget := 0

	for _, ip := range viewerIPs {
		info, err := s.geo.Lookup(ip)
		if err != nil || info == nil || info.CountryCode == "" {
			continue
		}
		insights.ResolvedViewers++

		t, ok := countries[info.CountryCode]
		if !ok {
			t = &tally{name: info.Country}
			countries[info.CountryCode] = t
		}
		t.count++

		if targeting.MatchesGeo(c.Targeting, info) {
			inTarget++
		}
	}

	for code, t := range countries {
		insights.Countries = append(insights.Countries, CountryShare{
			CountryCode: code,
			Country:     t.name,
			Viewers:     t.count,
			Percent:     analytics.Round2(float64(t.count) / float64(insights.ResolvedViewers) * 100),
			Targeted:    targeting.MatchesCountry(c.Targeting, code),
		})
	}
	sort.Slice(insights.Countries, func(i, j int) bool {
		if insights.Countries[i].Viewers != insights.Countries[j].Viewers {
			return insights.Countries[i].Viewers > insights.Countries[j].Viewers
		}
		return insights.Countries[i].CountryCode < insights.Countries[j].CountryCode
	})

	if insights.ResolvedViewers > 0 {
		insights.InTargetPercent = analytics.Round2(float64(inTarget) / float64(insights.ResolvedViewers) * 100)
	}

	return insights, nil
}
