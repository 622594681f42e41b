// Package app assembles the bot from configuration: database, outbound
// transport, classifier, formatter, payment provider and services. The
// serve, sweep and classify commands all start from an App.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/tbourn/go-society-bot/internal/classifier"
	"github.com/tbourn/go-society-bot/internal/config"
	"github.com/tbourn/go-society-bot/internal/domain"
	"github.com/tbourn/go-society-bot/internal/format"
	"github.com/tbourn/go-society-bot/internal/http/handlers"
	"github.com/tbourn/go-society-bot/internal/payments"
	"github.com/tbourn/go-society-bot/internal/services"
	"github.com/tbourn/go-society-bot/internal/transport"
)

// App holds the wired services.
type App struct {
	Config     config.Config
	DB         *gorm.DB
	Sender     transport.Sender
	Classifier *classifier.Classifier
	Formatter  *format.Formatter

	Listings     *services.ListingService
	Leads        *services.LeadService
	Entitlements *services.EntitlementService
	Callbacks    *services.CallbackService
	Commands     *services.CommandService
	Webhooks     *services.WebhookService
	Maintenance  *services.MaintenanceService
}

// NewClassifier loads the category catalog and enables the remote
// strategy when an API key is configured.
func NewClassifier(cfg config.ClassifierConfig) (*classifier.Classifier, error) {
	cat, err := classifier.LoadCatalog(cfg.CatalogPath)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	var opts []classifier.Option
	if cfg.APIKey != "" {
		completer := classifier.NewAnthropicCompleter(cfg.APIKey, cfg.Model)
		opts = append(opts, classifier.WithRemote(classifier.NewRemote(completer, cat, cfg.Timeout, cfg.RPS)))
		log.Info().Str("model", cfg.Model).Msg("remote classifier enabled")
	}
	return classifier.New(cat, opts...), nil
}

// Build wires the services over an open database and sender.
func Build(cfg config.Config, db *gorm.DB, sender transport.Sender) (*App, error) {
	if db == nil {
		return nil, errors.New("app: nil database")
	}
	if sender == nil {
		return nil, errors.New("app: nil sender")
	}

	clf, err := NewClassifier(cfg.Classifier)
	if err != nil {
		return nil, err
	}
	f := format.New(clf.Catalog(), format.Options{
		BotUsername: cfg.Bot.Username,
		FreeLeads:   cfg.Leads.FreeLeads,
		Tiers:       cfg.Leads.Tiers,
	})

	a := &App{
		Config:     cfg,
		DB:         db,
		Sender:     sender,
		Classifier: clf,
		Formatter:  f,
	}

	a.Listings = &services.ListingService{
		DB:         db,
		Classifier: clf,
		Formatter:  f,
		Sender:     sender,
		Policy:     services.ChatPolicy{Allowed: cfg.Bot.AllowedChatIDs},
		TTL:        cfg.Listings.TTL(),
		SampleSize: cfg.Listings.MaxResults,
	}
	a.Leads = &services.LeadService{
		DB:        db,
		Formatter: f,
		Sender:    sender,
		FreeLeads: cfg.Leads.FreeLeads,
	}
	a.Entitlements = &services.EntitlementService{
		DB:              db,
		Leads:           a.Leads,
		Formatter:       f,
		Sender:          sender,
		Channel:         cfg.Payments.Channel,
		ProviderTimeout: cfg.Payments.Timeout,
		Tiers:           cfg.Leads,
		AdminUserID:     cfg.Bot.AdminUserID,
		UPIVPA:          cfg.Payments.UPIVPA,
		UPIPayee:        cfg.Payments.UPIPayeeName,
	}
	if cfg.Payments.Channel == domain.ChannelRazorpay {
		if cfg.Payments.RazorpayKeyID == "" || cfg.Payments.RazorpayKeySecret == "" {
			// Claims fail with ErrPaymentUnavailable until keys are set.
			log.Warn().Msg("razorpay channel selected without api keys")
		} else {
			a.Entitlements.Provider = payments.NewRazorpay(
				cfg.Payments.RazorpayBaseURL,
				cfg.Payments.RazorpayKeyID,
				cfg.Payments.RazorpayKeySecret,
				payments.WithRetry(3, 300*time.Millisecond),
			)
		}
	}
	a.Callbacks = &services.CallbackService{
		Entitlements: a.Entitlements,
		Formatter:    f,
		Sender:       sender,
	}
	a.Commands = &services.CommandService{
		DB:        db,
		Formatter: f,
		Sender:    sender,
	}
	a.Webhooks = &services.WebhookService{
		DB:           db,
		Entitlements: a.Entitlements,
		TTL:          cfg.WebhookEventTTL,
	}
	a.Maintenance = &services.MaintenanceService{DB: db}
	return a, nil
}

// Services returns the bundle the HTTP handlers are built from.
func (a *App) Services() handlers.Services {
	return handlers.Services{
		Listings:    a.Listings,
		Leads:       a.Leads,
		Callbacks:   a.Callbacks,
		Commands:    a.Commands,
		Webhooks:    a.Webhooks,
		Maintenance: a.Maintenance,
		Claims:      a.Entitlements,
	}
}

// WebhookSeen reports whether a provider event id was already processed.
func (a *App) WebhookSeen(ctx context.Context, eventID string) (bool, error) {
	return a.Webhooks.Seen(ctx, eventID)
}

// Close releases the sender and the database pool.
func (a *App) Close() error {
	var errs []error
	if err := a.Sender.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close sender: %w", err))
	}
	if sqlDB, err := a.DB.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close db: %w", err))
		}
	}
	return errors.Join(errs...)
}
