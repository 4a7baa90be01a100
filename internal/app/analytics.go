/**
 * @description
 * Read-only analytics over the investment ledger and the collaboration
 * workflow. Every rollup here is a snapshot derived from committed data; none
 * of these paths mutate state. Recording an investment and reading analytics
 * never block one another beyond normal MVCC.
 */

package app

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/Bi11y4real/Startup-connect/internal/domain"
	"github.com/Bi11y4real/Startup-connect/internal/store"
)

const defaultActivityDays = 30

// DailyActivityPoint is one day of platform-wide funding volume.
type DailyActivityPoint struct {
	Date   string `json:"date"` // YYYY-MM-DD, UTC
	Amount int64  `json:"amount"`
}

// SectorSlice is one sector's share of an investor's portfolio.
type SectorSlice struct {
	Sector  string `json:"sector"`
	Amount  int64  `json:"amount"`
	Percent int    `json:"percent"`
}

// ProjectProgress is a founder-facing funding completion snapshot.
type ProjectProgress struct {
	ProjectID     uuid.UUID `json:"project_id"`
	Title         string    `json:"title"`
	FundingRaised int64     `json:"funding_raised"`
	FundingGoal   int64     `json:"funding_goal"`
	Percent       int       `json:"percent"`
}

// SummaryStats backs the platform dashboard.
type SummaryStats struct {
	TotalProjects      int   `json:"total_projects"`
	TotalFundingRaised int64 `json:"total_funding_raised"`
	TotalInvestors     int   `json:"total_investors"`
	PendingRequests    int   `json:"pending_requests"`
}

// ApplicationTrends summarizes recent collaboration-request volume for a
// founder's projects.
type ApplicationTrends struct {
	ThisWeek   int `json:"this_week"`
	LastWeek   int `json:"last_week"`
	ThisMonth  int `json:"this_month"`
	GrowthRate int `json:"growth_rate"` // week-over-week, percent
}

// DailyFundingActivity returns a dense, zero-filled series of daily investment
// totals for the trailing `days` UTC calendar days, oldest first. Days with no
// investments appear with a zero amount so chart consumers never interpolate.
func (s *Service) DailyFundingActivity(ctx context.Context, days int) ([]DailyActivityPoint, error) {
	if days <= 0 {
		days = defaultActivityDays
	}

	now := time.Now().UTC()
	start := now.AddDate(0, 0, -(days - 1)).Truncate(24 * time.Hour)

	totals, err := s.repo.DailyFundingTotals(ctx, start)
	if err != nil {
		return nil, err
	}

	byDay := make(map[string]int64, len(totals))
	for _, t := range totals {
		byDay[t.Day] = t.Amount
	}

	series := make([]DailyActivityPoint, 0, days)
	for i := 0; i < days; i++ {
		day := start.AddDate(0, 0, i).Format("2006-01-02")
		series = append(series, DailyActivityPoint{Date: day, Amount: byDay[day]})
	}
	return series, nil
}

// SectorAllocation breaks an investor's cumulative positions down by project
// sector as whole percentages of their total, sorted largest first. An
// investor with no positions gets an empty slice, not an error.
func (s *Service) SectorAllocation(ctx context.Context, investorID uuid.UUID) ([]SectorSlice, error) {
	totals, err := s.repo.SectorTotalsForInvestor(ctx, investorID)
	if err != nil {
		return nil, err
	}
	if len(totals) == 0 {
		return []SectorSlice{}, nil
	}

	var grand int64
	for _, t := range totals {
		grand += t.Amount
	}

	slices := make([]SectorSlice, 0, len(totals))
	for _, t := range totals {
		percent := 0
		if grand > 0 {
			percent = int(math.Round(float64(t.Amount) / float64(grand) * 100))
		}
		slices = append(slices, SectorSlice{Sector: t.Sector, Amount: t.Amount, Percent: percent})
	}

	sort.Slice(slices, func(i, j int) bool {
		if slices[i].Percent != slices[j].Percent {
			return slices[i].Percent > slices[j].Percent
		}
		return slices[i].Sector < slices[j].Sector
	})
	return slices, nil
}

// FundingOverview returns each of the founder's projects with its completion
// percentage. A zero goal reads as a goal of one so the division is total.
func (s *Service) FundingOverview(ctx context.Context, founderID uuid.UUID) ([]ProjectProgress, error) {
	projects, err := s.repo.FindProjectsByFounder(ctx, founderID)
	if err != nil {
		return nil, err
	}

	overview := make([]ProjectProgress, 0, len(projects))
	for _, p := range projects {
		goal := p.FundingGoal
		if goal < 1 {
			goal = 1
		}
		overview = append(overview, ProjectProgress{
			ProjectID:     p.ID,
			Title:         p.Title,
			FundingRaised: p.FundingRaised,
			FundingGoal:   p.FundingGoal,
			Percent:       int(math.Round(float64(p.FundingRaised) / float64(goal) * 100)),
		})
	}
	return overview, nil
}

// PlatformSummary aggregates platform-wide dashboard counters.
func (s *Service) PlatformSummary(ctx context.Context) (*SummaryStats, error) {
	counts, err := s.repo.PlatformSummaryCounts(ctx)
	if err != nil {
		return nil, err
	}
	return &SummaryStats{
		TotalProjects:      counts.TotalProjects,
		TotalFundingRaised: counts.TotalFundingRaised,
		TotalInvestors:     counts.TotalInvestors,
		PendingRequests:    counts.PendingRequests,
	}, nil
}

// ApplicationTrends counts collaboration requests against the founder's
// projects over the trailing week, the week before it and the trailing month,
// plus the week-over-week growth rate in whole percent.
func (s *Service) ApplicationTrends(ctx context.Context, founderID uuid.UUID) (*ApplicationTrends, error) {
	now := time.Now().UTC()
	monthAgo := now.AddDate(0, 0, -30)

	times, err := s.repo.RequestTimesForFounder(ctx, founderID, monthAgo)
	if err != nil {
		return nil, err
	}

	weekAgo := now.AddDate(0, 0, -7)
	twoWeeksAgo := now.AddDate(0, 0, -14)

	var trends ApplicationTrends
	for _, t := range times {
		trends.ThisMonth++
		switch {
		case !t.Before(weekAgo):
			trends.ThisWeek++
		case !t.Before(twoWeeksAgo):
			trends.LastWeek++
		}
	}

	switch {
	case trends.LastWeek > 0:
		trends.GrowthRate = int(math.Round(float64(trends.ThisWeek-trends.LastWeek) / float64(trends.LastWeek) * 100))
	case trends.ThisWeek > 0:
		trends.GrowthRate = 100
	}
	return &trends, nil
}

// RequestStatusDistribution counts all collaboration requests by status.
func (s *Service) RequestStatusDistribution(ctx context.Context) (*domain.RequestStatusCounts, error) {
	return s.repo.RequestStatusCounts(ctx)
}

// SectorDistribution counts projects per sector for the discovery dashboard.
func (s *Service) SectorDistribution(ctx context.Context) ([]store.SectorCount, error) {
	return s.repo.SectorCounts(ctx)
}
