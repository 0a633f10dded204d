// Package valuation turns holdings and resolved quotes into portfolio valuations
package valuation

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/bobmcallan/fundwatch/internal/common"
	"github.com/bobmcallan/fundwatch/internal/interfaces"
	"github.com/bobmcallan/fundwatch/internal/models"
	"github.com/bobmcallan/fundwatch/internal/services/session"
)

// DefaultWorkers bounds concurrent quote resolution when none is configured.
const DefaultWorkers = 10

// BuildView values one holding against a resolved quote. A nil quote yields
// the offline view priced at cost, so day and total profit are zero.
func BuildView(h models.Holding, q *models.Quote) models.ValuationView {
	view := models.ValuationView{
		Code:   h.Code,
		Shares: h.Shares,
		Cost:   h.Cost,
	}

	if q != nil {
		view.Estimate = q.Estimate
		view.LastNetValue = q.LastNetValue
		view.PercentChange = q.PercentChange
		view.Name = q.Name
		if view.Name == "" {
			view.Name = h.DisplayName()
		}
		view.Source = q.Source
		view.UpdateTime = q.Timestamp
		if view.UpdateTime == "" {
			view.UpdateTime = models.NoUpdateTime
		}
	} else {
		view.Estimate = h.Cost
		view.LastNetValue = h.Cost
		view.PercentChange = 0
		view.Name = h.DisplayName()
		view.Source = models.SourceOffline
		view.UpdateTime = models.NoUpdateTime
	}

	view.MarketValue = h.Shares * view.Estimate
	view.DayProfit = (view.Estimate - view.LastNetValue) * h.Shares
	view.TotalProfit = (view.Estimate - h.Cost) * h.Shares
	return view
}

// Summarize sums market value, day profit and total profit over views.
// resolvedAt is the time aggregation completed.
func Summarize(views []models.ValuationView, resolvedAt time.Time) models.Summary {
	var s models.Summary
	for _, v := range views {
		s.TotalMarketValue += v.MarketValue
		s.TotalDayProfit += v.DayProfit
		s.TotalHoldProfit += v.TotalProfit
	}
	s.ResolvedAt = resolvedAt
	s.UpdatedAt = resolvedAt.Format(time.TimeOnly)
	return s
}

// Service values holdings by resolving their quotes through a bounded pool.
type Service struct {
	quotes     interfaces.QuoteService
	classifier *session.Classifier
	workers    int
	logger     *common.Logger
}

// NewService creates a valuation service. workers < 1 uses DefaultWorkers.
func NewService(quotes interfaces.QuoteService, classifier *session.Classifier, workers int, logger *common.Logger) *Service {
	if workers < 1 {
		workers = DefaultWorkers
	}
	if classifier == nil {
		classifier = session.NewClassifier(nil)
	}
	return &Service{
		quotes:     quotes,
		classifier: classifier,
		workers:    workers,
		logger:     logger,
	}
}

// Valuate classifies the session once and values every holding, preserving
// input order. Provider failures degrade to offline views; an error is only
// returned when ctx is cancelled.
func (s *Service) Valuate(ctx context.Context, holdings []models.Holding) (*models.Valuation, error) {
	start := time.Now()
	state := s.classifier.Current()
	views := make([]models.ValuationView, len(holdings))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i, h := range holdings {
		i, h := i, h
		g.Go(func() error {
			views[i] = BuildView(h, s.quotes.Resolve(gctx, h.Code, state))
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result := &models.Valuation{
		Session: state,
		Data:    views,
		Summary: Summarize(views, s.classifier.Now()),
	}

	offline := 0
	for _, v := range views {
		if v.Source == models.SourceOffline {
			offline++
		}
	}
	s.logger.Info().
		Str("session", string(state)).
		Int("holdings", len(holdings)).
		Int("offline", offline).
		Float64("market_value", result.Summary.TotalMarketValue).
		Dur("elapsed", time.Since(start)).
		Msg("Valuation complete")

	return result, nil
}

// Ensure Service implements ValuationService
var _ interfaces.ValuationService = (*Service)(nil)
