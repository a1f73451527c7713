package services

import (
	"context"
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/username/fintrack/backend/src/analytics"
	"github.com/username/fintrack/backend/src/logger"
	"github.com/username/fintrack/backend/src/models"
	"github.com/username/fintrack/backend/src/storage"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultCacheExpiration = 5 * time.Minute
	CacheCleanupInterval   = 10 * time.Minute
)

// periodTokens is the closed vocabulary of symbolic periods; it drives
// cache invalidation fan-out.
var periodTokens = []string{"7d", "30d", "90d", "1y"}

// PeriodSummaryResponse is the payload of GET /api/transactions.
type PeriodSummaryResponse struct {
	Period       string               `json:"period"`
	DateRange    analytics.Period     `json:"dateRange"`
	Summary      analytics.Summary    `json:"summary"`
	Transactions []models.Transaction `json:"transactions"`
	Count        int                  `json:"count"`
}

// AnalyticsResponse is the payload of GET /api/analytics.
type AnalyticsResponse struct {
	Period            string                    `json:"period"`
	DateRange         analytics.Period          `json:"dateRange"`
	Summary           analytics.Summary         `json:"summary"`
	ChartData         []analytics.DailyPoint    `json:"chartData"`
	CategoryBreakdown analytics.BreakdownResult `json:"categoryBreakdown"`
}

// MoneyMetric is a dashboard value with its month-over-month movement.
type MoneyMetric struct {
	Value            models.Cents `json:"value"`
	PercentageChange int          `json:"percentageChange"`
	Trend            string       `json:"trend"`
}

// ScoreMetric is like MoneyMetric but for the unit-less health score.
type ScoreMetric struct {
	Value            int    `json:"value"`
	PercentageChange int    `json:"percentageChange"`
	Trend            string `json:"trend"`
}

// DashboardResponse is the payload of GET /api/dashboard.
type DashboardResponse struct {
	MonthlyIncome  MoneyMetric     `json:"monthlyIncome"`
	MonthlyExpense MoneyMetric     `json:"monthlyExpense"`
	CurrentBalance MoneyMetric     `json:"currentBalance"`
	HealthScore    ScoreMetric     `json:"healthScore"`
	Period         DashboardPeriod `json:"period"`
}

type DashboardPeriod struct {
	Current  analytics.Period `json:"current"`
	Previous analytics.Period `json:"previous"`
}

// AnalyticsService assembles the derived views served by the summary,
// analytics and dashboard endpoints. Every view is recomputed from the
// current transaction set; the go-cache layer is a short-TTL response
// cache invalidated on every transaction create or delete.
type AnalyticsService struct {
	store storage.Store
	cache *cache.Cache
	now   func() time.Time
}

func NewAnalyticsService(store storage.Store, responseCache *cache.Cache) *AnalyticsService {
	return &AnalyticsService{
		store: store,
		cache: responseCache,
		now:   time.Now,
	}
}

// PeriodSummary resolves the symbolic token and returns the period's
// transactions together with their aggregate.
func (s *AnalyticsService) PeriodSummary(ctx context.Context, userID int64, token string) (*PeriodSummaryResponse, error) {
	period, err := analytics.ResolvePeriod(token, s.now())
	if err != nil {
		return nil, err
	}

	cacheKey := summaryCacheKey(userID, token)
	if cached, found := s.cache.Get(cacheKey); found {
		return cached.(*PeriodSummaryResponse), nil
	}

	txs, err := s.store.ListTransactions(ctx, userID, period.Start, period.End)
	if err != nil {
		return nil, fmt.Errorf("fetch transactions: %w", err)
	}

	resp := &PeriodSummaryResponse{
		Period:       token,
		DateRange:    period,
		Summary:      analytics.Aggregate(txs),
		Transactions: txs,
		Count:        len(txs),
	}
	s.cache.Set(cacheKey, resp, cache.DefaultExpiration)
	return resp, nil
}

// Analytics returns the daily chart series and category breakdown for
// a symbolic period. The chart's cumulative balance is seeded so that
// the fold lands exactly on the user's stored balance.
func (s *AnalyticsService) Analytics(ctx context.Context, userID int64, token string) (*AnalyticsResponse, error) {
	period, err := analytics.ResolvePeriod(token, s.now())
	if err != nil {
		return nil, err
	}

	cacheKey := analyticsCacheKey(userID, token)
	if cached, found := s.cache.Get(cacheKey); found {
		return cached.(*AnalyticsResponse), nil
	}

	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	txs, err := s.store.ListTransactions(ctx, userID, period.Start, period.End)
	if err != nil {
		return nil, fmt.Errorf("fetch transactions: %w", err)
	}

	summary := analytics.Aggregate(txs)
	opening := analytics.OpeningBalance(user.Balance, summary)

	resp := &AnalyticsResponse{
		Period:            token,
		DateRange:         period,
		Summary:           summary,
		ChartData:         analytics.BuildDailySeries(txs, opening),
		CategoryBreakdown: analytics.Breakdown(txs),
	}
	s.cache.Set(cacheKey, resp, cache.DefaultExpiration)
	return resp, nil
}

// Dashboard compares the current UTC calendar month against the
// previous one. The two month fetches run concurrently.
func (s *AnalyticsService) Dashboard(ctx context.Context, userID int64) (*DashboardResponse, error) {
	cacheKey := dashboardCacheKey(userID)
	if cached, found := s.cache.Get(cacheKey); found {
		return cached.(*DashboardResponse), nil
	}

	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	current, previous := analytics.ResolveMonthPair(s.now())

	var curTxs, prevTxs []models.Transaction
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		curTxs, err = s.store.ListTransactions(gctx, userID, current.Start, current.End)
		return err
	})
	g.Go(func() error {
		var err error
		prevTxs, err = s.store.ListTransactions(gctx, userID, previous.Start, previous.End)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("fetch month transactions: %w", err)
	}

	curSummary := analytics.Aggregate(curTxs)
	prevSummary := analytics.Aggregate(prevTxs)

	curScore := analytics.HealthScore(curSummary.TotalIncome, curSummary.TotalExpenses)
	prevScore := analytics.HealthScore(prevSummary.TotalIncome, prevSummary.TotalExpenses)

	// The balance at the start of the current month is the stored
	// balance minus everything the month contributed so far.
	monthOpening := user.Balance - curSummary.NetAmount

	resp := &DashboardResponse{
		MonthlyIncome:  moneyMetric(curSummary.TotalIncome, prevSummary.TotalIncome),
		MonthlyExpense: moneyMetric(curSummary.TotalExpenses, prevSummary.TotalExpenses),
		CurrentBalance: moneyMetric(user.Balance, monthOpening),
		HealthScore: ScoreMetric{
			Value:            curScore,
			PercentageChange: analytics.PercentageChange(int64(curScore), int64(prevScore)),
			Trend:            analytics.Trend(analytics.PercentageChange(int64(curScore), int64(prevScore))),
		},
		Period: DashboardPeriod{Current: current, Previous: previous},
	}
	s.cache.Set(cacheKey, resp, cache.DefaultExpiration)
	return resp, nil
}

// InvalidateUser drops every cached view for the user. Called after
// each transaction create or delete.
func (s *AnalyticsService) InvalidateUser(userID int64) {
	for _, token := range periodTokens {
		s.cache.Delete(summaryCacheKey(userID, token))
		s.cache.Delete(analyticsCacheKey(userID, token))
	}
	s.cache.Delete(dashboardCacheKey(userID))
	logger.L.Debug("Analytics cache invalidated", "userID", userID)
}

func moneyMetric(current, previous models.Cents) MoneyMetric {
	change := analytics.PercentageChange(int64(current), int64(previous))
	return MoneyMetric{
		Value:            current,
		PercentageChange: change,
		Trend:            analytics.Trend(change),
	}
}

func summaryCacheKey(userID int64, token string) string {
	return fmt.Sprintf("summary:%d:%s", userID, token)
}

func analyticsCacheKey(userID int64, token string) string {
	return fmt.Sprintf("analytics:%d:%s", userID, token)
}

func dashboardCacheKey(userID int64) string {
	return fmt.Sprintf("dashboard:%d", userID)
}
