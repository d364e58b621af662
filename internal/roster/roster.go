// Package roster keeps a display-ready view of pending requests and approved
// clients, rebuilt from change feed snapshots.
package roster

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/dtroode/greenhouse-admin/internal/logger"
	"github.com/dtroode/greenhouse-admin/internal/model"
)

// RequestView is a request as shown to operators.
type RequestView struct {
	ID          string `json:"id"`
	CIN         string `json:"cin"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	RequestType string `json:"requestType"`
	Date        string `json:"date"`
	Status      string `json:"status"`
	AuthUID     string `json:"authUid"`
	EC          int    `json:"ec"`
}

// ClientView is an approved client as shown to operators.
type ClientView struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	CIN          string `json:"cin"`
	RequestType  string `json:"requestType"`
	DateAccepted string `json:"dateAccepted"`
}

// Projection mirrors the requests and clients collections. Documents are kept
// as observed and translated only when read.
type Projection struct {
	feed          model.ChangeFeed
	logger        *logger.Logger
	defaultLocale string

	mu       sync.RWMutex
	requests []model.Document
	clients  []model.Document
}

func NewProjection(feed model.ChangeFeed, logger *logger.Logger, defaultLocale string) *Projection {
	return &Projection{
		feed:          feed,
		logger:        logger,
		defaultLocale: defaultLocale,
	}
}

// Run subscribes to both collections and blocks until ctx is done or either
// subscription fails.
func (p *Projection) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		err := p.feed.Watch(ctx, model.CollectionRequests, func(s model.Snapshot) {
			p.mu.Lock()
			p.requests = s.Documents
			p.mu.Unlock()
			p.logger.Debug("Roster: requests updated", "count", len(s.Documents), "changes", len(s.Changes))
		})
		if err != nil {
			return fmt.Errorf("failed to watch requests: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		err := p.feed.Watch(ctx, model.CollectionClients, func(s model.Snapshot) {
			p.mu.Lock()
			p.clients = s.Documents
			p.mu.Unlock()
			p.logger.Debug("Roster: clients updated", "count", len(s.Documents), "changes", len(s.Changes))
		})
		if err != nil {
			return fmt.Errorf("failed to watch clients: %w", err)
		}
		return nil
	})

	return g.Wait()
}

// Requests returns the latest pending requests, rendered for locale. An empty
// locale uses the projection default.
func (p *Projection) Requests(locale string) []RequestView {
	ph := p.placeholders(locale)

	p.mu.RLock()
	docs := p.requests
	p.mu.RUnlock()

	views := make([]RequestView, 0, len(docs))
	for _, doc := range docs {
		views = append(views, requestView(doc, ph))
	}
	sort.Slice(views, func(i, j int) bool { return views[i].ID < views[j].ID })
	return views
}

// Clients returns the latest approved clients, rendered for locale.
func (p *Projection) Clients(locale string) []ClientView {
	ph := p.placeholders(locale)

	p.mu.RLock()
	docs := p.clients
	p.mu.RUnlock()

	views := make([]ClientView, 0, len(docs))
	for _, doc := range docs {
		views = append(views, clientView(doc, ph))
	}
	sort.Slice(views, func(i, j int) bool { return views[i].ID < views[j].ID })
	return views
}

func (p *Projection) placeholders(locale string) Placeholders {
	if locale == "" {
		locale = p.defaultLocale
	}
	return Lookup(locale)
}

func requestView(doc model.Document, ph Placeholders) RequestView {
	d := doc.Data
	return RequestView{
		ID:          doc.ID,
		CIN:         orDefault(text(d, model.FieldCIN), doc.ID),
		Name:        orDefault(text(d, model.FieldName), ph.Unknown),
		Email:       orDefault(text(d, model.FieldEmail), ph.NotAvailable),
		Phone:       orDefault(text(d, model.FieldPhone), ph.NotAvailable),
		RequestType: orDefault(text(d, model.FieldRequestType), ph.Unknown),
		Date:        ph.FormatDate(text(d, model.FieldDate)),
		Status:      orDefault(text(d, model.FieldStatus), string(model.RequestStatusPending)),
		AuthUID:     text(d, model.FieldAuthUID),
		EC:          number(d, model.FieldEC),
	}
}

func clientView(doc model.Document, ph Placeholders) ClientView {
	d := doc.Data
	return ClientView{
		ID:           doc.ID,
		Name:         orDefault(text(d, model.FieldName), ph.Unknown),
		Email:        orDefault(text(d, model.FieldEmail), ph.NotAvailable),
		CIN:          orDefault(text(d, model.FieldCIN), ph.NotAvailable),
		RequestType:  orDefault(text(d, model.FieldRequestType), ph.Unknown),
		DateAccepted: ph.FormatDate(text(d, model.FieldDateAccepted)),
	}
}

// text reads a string field; values of any other type count as absent.
func text(data map[string]any, key string) string {
	s, _ := data[key].(string)
	return s
}

// number reads a numeric field, falling back to zero.
func number(data map[string]any, key string) int {
	switch n := data[key].(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	default:
		return 0
	}
}

func orDefault(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
