package quote

import (
	"context"
	"testing"
	"time"

	"github.com/bobmcallan/fundwatch/internal/clients/providererr"
	"github.com/bobmcallan/fundwatch/internal/common"
	"github.com/bobmcallan/fundwatch/internal/models"
	"github.com/bobmcallan/fundwatch/internal/services/session"
)

// --- Mocks ---

type mockProvider struct {
	source models.Source
	quote  *models.Quote
	err    error
	calls  int
}

func (m *mockProvider) Source() models.Source { return m.source }

func (m *mockProvider) GetQuote(_ context.Context, _ string) (*models.Quote, error) {
	m.calls++
	return m.quote, m.err
}

func newProvider(source models.Source, available bool) *mockProvider {
	p := &mockProvider{source: source}
	if available {
		p.quote = &models.Quote{Source: source, Name: "X", Estimate: 1.6, LastNetValue: 1.55}
	} else {
		p.err = providererr.New(string(source), "000001", providererr.ErrNetwork, nil)
	}
	return p
}

func newTestService(primary, secondary *mockProvider) *Service {
	return NewService(primary, secondary, nil, common.NewSilentLogger())
}

// --- Tests ---

// TestResolve_DecisionTable covers every session x availability combination.
// fetchSecondary/fetchPrimary record whether a provider is expected to be called at all.
func TestResolve_DecisionTable(t *testing.T) {
	none := models.Source("")
	tests := []struct {
		name           string
		state          models.SessionState
		primaryUp      bool
		secondaryUp    bool
		want           models.Source
		fetchPrimary   bool
		fetchSecondary bool
	}{
		{"trading primary up", models.SessionTradingHours, true, true, models.SourcePrimary, true, false},
		{"trading primary up secondary down", models.SessionTradingHours, true, false, models.SourcePrimary, true, false},
		{"trading primary down", models.SessionTradingHours, false, true, models.SourceSecondary, true, true},
		{"trading both down", models.SessionTradingHours, false, false, none, true, true},
		{"weekend both up", models.SessionWeekend, true, true, models.SourceSecondary, false, true},
		{"weekend secondary down", models.SessionWeekend, true, false, models.SourcePrimary, true, true},
		{"weekend primary down", models.SessionWeekend, false, true, models.SourceSecondary, false, true},
		{"weekend both down", models.SessionWeekend, false, false, none, true, true},
		{"off hours primary up", models.SessionOffHours, true, true, models.SourcePrimary, true, false},
		{"off hours primary up secondary down", models.SessionOffHours, true, false, models.SourcePrimary, true, false},
		{"off hours primary down", models.SessionOffHours, false, true, models.SourceSecondary, true, true},
		{"off hours both down", models.SessionOffHours, false, false, none, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			primary := newProvider(models.SourcePrimary, tt.primaryUp)
			secondary := newProvider(models.SourceSecondary, tt.secondaryUp)
			svc := newTestService(primary, secondary)

			q := svc.Resolve(context.Background(), "000001", tt.state)

			if tt.want == none {
				if q != nil {
					t.Fatalf("expected no quote, got source %s", q.Source)
				}
			} else {
				if q == nil {
					t.Fatalf("expected source %s, got none", tt.want)
				}
				if q.Source != tt.want {
					t.Errorf("expected source %s, got %s", tt.want, q.Source)
				}
			}

			if got := primary.calls > 0; got != tt.fetchPrimary {
				t.Errorf("primary fetched = %v, want %v", got, tt.fetchPrimary)
			}
			if got := secondary.calls > 0; got != tt.fetchSecondary {
				t.Errorf("secondary fetched = %v, want %v", got, tt.fetchSecondary)
			}
			if primary.calls > 1 || secondary.calls > 1 {
				t.Errorf("each provider gets at most one attempt (primary=%d secondary=%d)", primary.calls, secondary.calls)
			}
		})
	}
}

func TestResolve_NilProviders(t *testing.T) {
	svc := NewService(nil, nil, nil, common.NewSilentLogger())
	if q := svc.Resolve(context.Background(), "000001", models.SessionTradingHours); q != nil {
		t.Errorf("expected nil quote with no providers, got %+v", q)
	}
}

func TestResolve_OnlySecondaryConfigured(t *testing.T) {
	secondary := newProvider(models.SourceSecondary, true)
	svc := NewService(nil, secondary, nil, common.NewSilentLogger())
	q := svc.Resolve(context.Background(), "000001", models.SessionTradingHours)
	if q == nil || q.Source != models.SourceSecondary {
		t.Fatalf("expected secondary quote, got %+v", q)
	}
}

func TestResolve_UnknownStateUsesOffHoursOrder(t *testing.T) {
	primary := newProvider(models.SourcePrimary, true)
	secondary := newProvider(models.SourceSecondary, true)
	svc := newTestService(primary, secondary)

	q := svc.Resolve(context.Background(), "000001", models.SessionState("holiday"))
	if q == nil || q.Source != models.SourcePrimary {
		t.Fatalf("expected primary quote, got %+v", q)
	}
	if secondary.calls != 0 {
		t.Error("secondary should not be fetched when primary is available")
	}
}

func TestResolve_NilQuoteWithoutErrorIsUnavailable(t *testing.T) {
	primary := &mockProvider{source: models.SourcePrimary}
	secondary := newProvider(models.SourceSecondary, true)
	svc := newTestService(primary, secondary)

	q := svc.Resolve(context.Background(), "000001", models.SessionTradingHours)
	if q == nil || q.Source != models.SourceSecondary {
		t.Fatalf("expected secondary fallback, got %+v", q)
	}
}

func TestResolveNow_UsesClassifier(t *testing.T) {
	saturday := time.Date(2024, 1, 6, 10, 0, 0, 0, time.UTC)
	classifier := session.NewClassifier(time.UTC).WithClock(func() time.Time { return saturday })

	primary := newProvider(models.SourcePrimary, true)
	secondary := newProvider(models.SourceSecondary, true)
	svc := NewService(primary, secondary, classifier, common.NewSilentLogger())

	if svc.Session() != models.SessionWeekend {
		t.Fatalf("Session() = %s, want weekend", svc.Session())
	}
	q := svc.ResolveNow(context.Background(), "000001")
	if q == nil || q.Source != models.SourceSecondary {
		t.Fatalf("expected secondary on weekend, got %+v", q)
	}
	if primary.calls != 0 {
		t.Error("primary should not be fetched on a weekend when secondary is available")
	}
}
