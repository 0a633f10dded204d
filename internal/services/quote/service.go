// Package quote resolves which provider's quote to trust for a fund
package quote

import (
	"context"
	"time"

	"github.com/bobmcallan/fundwatch/internal/clients/providererr"
	"github.com/bobmcallan/fundwatch/internal/common"
	"github.com/bobmcallan/fundwatch/internal/interfaces"
	"github.com/bobmcallan/fundwatch/internal/models"
	"github.com/bobmcallan/fundwatch/internal/services/session"
)

// FallbackOrder is the decision table: for each session state, the providers
// in order of preference. Resolution stops at the first available quote, so
// later providers are only fetched when earlier ones fail.
var FallbackOrder = map[models.SessionState][]models.Source{
	models.SessionTradingHours: {models.SourcePrimary, models.SourceSecondary},
	models.SessionWeekend:      {models.SourceSecondary, models.SourcePrimary},
	models.SessionOffHours:     {models.SourcePrimary, models.SourceSecondary},
}

// Service implements QuoteService over a primary estimator and a secondary snapshot.
type Service struct {
	providers  map[models.Source]interfaces.QuoteProvider
	classifier *session.Classifier
	logger     *common.Logger
}

// NewService creates a new quote service.
// Either provider may be nil, in which case it is always unavailable.
func NewService(primary, secondary interfaces.QuoteProvider, classifier *session.Classifier, logger *common.Logger) *Service {
	if classifier == nil {
		classifier = session.NewClassifier(nil)
	}
	providers := make(map[models.Source]interfaces.QuoteProvider, 2)
	if primary != nil {
		providers[models.SourcePrimary] = primary
	}
	if secondary != nil {
		providers[models.SourceSecondary] = secondary
	}
	return &Service{
		providers:  providers,
		classifier: classifier,
		logger:     logger,
	}
}

// Resolve returns the quote chosen by the fallback policy, or nil when no
// provider could supply one. Provider failures are logged, never returned.
func (s *Service) Resolve(ctx context.Context, code string, state models.SessionState) *models.Quote {
	order, ok := FallbackOrder[state]
	if !ok {
		order = FallbackOrder[models.SessionOffHours]
	}

	for _, source := range order {
		provider, ok := s.providers[source]
		if !ok {
			continue
		}

		start := time.Now()
		q, err := provider.GetQuote(ctx, code)
		if err != nil {
			event := s.logger.Warn().Err(err).
				Str("code", code).
				Str("provider", string(source)).
				Str("session", string(state)).
				Dur("elapsed", time.Since(start))
			if kind := providererr.Kind(err); kind != nil {
				event = event.Str("kind", kind.Error())
			}
			event.Msg("Quote provider unavailable")
			continue
		}
		if q == nil {
			continue
		}

		s.logger.Debug().
			Str("code", code).
			Str("provider", string(source)).
			Str("session", string(state)).
			Msg("Quote resolved")
		return q
	}

	s.logger.Info().Str("code", code).Str("session", string(state)).Msg("No quote available, using cost basis")
	return nil
}

// ResolveNow classifies the current time and resolves.
func (s *Service) ResolveNow(ctx context.Context, code string) *models.Quote {
	return s.Resolve(ctx, code, s.classifier.Current())
}

// Session returns the current session state.
func (s *Service) Session() models.SessionState {
	return s.classifier.Current()
}

// Ensure Service implements QuoteService
var _ interfaces.QuoteService = (*Service)(nil)
