package calendar

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"github.com/slotsmith/slotsmith/services/scheduling-service/internal/model"
)

// GoogleConfig carries the OAuth application credentials plus the
// directory holding one refresh token file per user (token-<userID>.json,
// written by a separate consent flow).
type GoogleConfig struct {
	ClientID     string
	ClientSecret string
	TokenDir     string
}

// GoogleProvider reads busy intervals from each user's primary Google
// Calendar through the freebusy API.
type GoogleProvider struct {
	cfg    GoogleConfig
	oauth  *oauth2.Config
	logger *slog.Logger

	mu       sync.Mutex
	services map[string]*calendar.Service
}

func NewGoogleProvider(cfg GoogleConfig, logger *slog.Logger) (*GoogleProvider, error) {
	if cfg.ClientID == "" || cfg.ClientSecret == "" {
		return nil, fmt.Errorf("google calendar client credentials are required")
	}
	if cfg.TokenDir == "" {
		cfg.TokenDir = "."
	}
	return &GoogleProvider{
		cfg: cfg,
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			Scopes:       []string{calendar.CalendarReadonlyScope},
			Endpoint:     google.Endpoint,
		},
		logger:   logger,
		services: map[string]*calendar.Service{},
	}, nil
}

func (p *GoogleProvider) BusyIntervals(ctx context.Context, userID string, start, end time.Time) ([]model.Interval, error) {
	svc, err := p.serviceFor(ctx, userID)
	if err != nil {
		return nil, err
	}

	resp, err := svc.Freebusy.Query(&calendar.FreeBusyRequest{
		TimeMin: start.UTC().Format(time.RFC3339),
		TimeMax: end.UTC().Format(time.RFC3339),
		Items:   []*calendar.FreeBusyRequestItem{{Id: "primary"}},
	}).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("freebusy query for user %s: %w", userID, err)
	}

	var intervals []model.Interval
	for _, cal := range resp.Calendars {
		for _, apiErr := range cal.Errors {
			return nil, fmt.Errorf("freebusy calendar error for user %s: %s", userID, apiErr.Reason)
		}
		for _, period := range cal.Busy {
			busyStart, err := time.Parse(time.RFC3339, period.Start)
			if err != nil {
				return nil, fmt.Errorf("parse busy start %q: %w", period.Start, err)
			}
			busyEnd, err := time.Parse(time.RFC3339, period.End)
			if err != nil {
				return nil, fmt.Errorf("parse busy end %q: %w", period.End, err)
			}
			intervals = append(intervals, model.Interval{Start: busyStart, End: busyEnd})
		}
	}

	p.logger.Debug("fetched busy intervals",
		"user_id", userID,
		"count", len(intervals),
		"range_start", start.UTC().Format(time.RFC3339),
		"range_end", end.UTC().Format(time.RFC3339),
	)
	return intervals, nil
}

// serviceFor returns a calendar client authenticated as userID, creating
// and caching it on first use. The oauth2 token source refreshes the
// access token on its own.
func (p *GoogleProvider) serviceFor(ctx context.Context, userID string) (*calendar.Service, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if svc, ok := p.services[userID]; ok {
		return svc, nil
	}

	token, err := p.loadToken(userID)
	if err != nil {
		return nil, fmt.Errorf("load calendar token for user %s: %w", userID, err)
	}

	svc, err := calendar.NewService(ctx, option.WithTokenSource(p.oauth.TokenSource(ctx, token)))
	if err != nil {
		return nil, fmt.Errorf("create calendar service for user %s: %w", userID, err)
	}
	p.services[userID] = svc
	return svc, nil
}

func (p *GoogleProvider) loadToken(userID string) (*oauth2.Token, error) {
	path := filepath.Join(p.cfg.TokenDir, fmt.Sprintf("token-%s.json", userID))
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	token := &oauth2.Token{}
	if err := json.NewDecoder(f).Decode(token); err != nil {
		return nil, fmt.Errorf("decode token file %s: %w", path, err)
	}
	return token, nil
}
