package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/username/fintrack/backend/src/analytics"
	"github.com/username/fintrack/backend/src/storage"
	"google.golang.org/genai"
)

// insightWindow is the period fed to the model as numeric context.
const insightWindow = "90d"

// topCategories caps how many expense categories are included in the
// prompt.
const topCategories = 5

// InsightService turns the 90-day aggregate and top expense categories
// into plain numeric context for the language model. The model client
// is constructed once at startup and injected.
type InsightService struct {
	store  storage.Store
	client *genai.Client
	model  string
	now    func() time.Time
}

func NewInsightService(store storage.Store, client *genai.Client, model string) *InsightService {
	return &InsightService{
		store:  store,
		client: client,
		model:  model,
		now:    time.Now,
	}
}

// GenerateInsights asks the model for observations about the user's
// last 90 days of activity.
func (s *InsightService) GenerateInsights(ctx context.Context, userID int64) (string, error) {
	prompt, err := s.buildContext(ctx, userID)
	if err != nil {
		return "", err
	}
	prompt += "\nGive three short, practical observations about this person's finances. " +
		"Plain text, no markdown.\n"
	return s.generate(ctx, prompt)
}

// Chat answers a free-form question with the same numeric context
// prepended.
func (s *InsightService) Chat(ctx context.Context, userID int64, question string) (string, error) {
	prompt, err := s.buildContext(ctx, userID)
	if err != nil {
		return "", err
	}
	prompt += "\nAnswer the user's question using the data above when relevant. " +
		"Plain text, no markdown.\n\nQuestion: " + question + "\n"
	return s.generate(ctx, prompt)
}

// buildContext renders the 90-day summary and top-5 expense categories
// as a compact numeric block. The model sees the same aggregation
// outputs the analytics endpoint serves.
func (s *InsightService) buildContext(ctx context.Context, userID int64) (string, error) {
	period, err := analytics.ResolvePeriod(insightWindow, s.now())
	if err != nil {
		return "", err
	}
	txs, err := s.store.ListTransactions(ctx, userID, period.Start, period.End)
	if err != nil {
		return "", fmt.Errorf("fetch transactions: %w", err)
	}

	summary := analytics.Aggregate(txs)
	breakdown := analytics.Breakdown(txs)

	var b strings.Builder
	b.WriteString("Financial activity for the last 90 days:\n")
	fmt.Fprintf(&b, "- total income: %.2f\n", summary.TotalIncome.Float64())
	fmt.Fprintf(&b, "- total expenses: %.2f\n", summary.TotalExpenses.Float64())
	fmt.Fprintf(&b, "- net amount: %.2f\n", summary.NetAmount.Float64())
	fmt.Fprintf(&b, "- transaction count: %d\n", summary.TransactionCount)

	top := breakdown.Expense
	if len(top) > topCategories {
		top = top[:topCategories]
	}
	if len(top) > 0 {
		b.WriteString("Top expense categories:\n")
		for _, slice := range top {
			fmt.Fprintf(&b, "- %s: %.2f (%d%%)\n", slice.Category, slice.Amount.Float64(), slice.Percentage)
		}
	}
	return b.String(), nil
}

func (s *InsightService) generate(ctx context.Context, prompt string) (string, error) {
	contents := []*genai.Content{
		{
			Role:  "user",
			Parts: []*genai.Part{{Text: prompt}},
		},
	}
	resp, err := s.client.Models.GenerateContent(ctx, s.model, contents, nil)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}
	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("empty response from model")
	}
	return text, nil
}
