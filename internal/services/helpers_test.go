package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tbourn/go-society-bot/internal/classifier"
	"github.com/tbourn/go-society-bot/internal/config"
	"github.com/tbourn/go-society-bot/internal/domain"
	"github.com/tbourn/go-society-bot/internal/format"
	"github.com/tbourn/go-society-bot/internal/payments"
	"github.com/tbourn/go-society-bot/internal/repo"
	"github.com/tbourn/go-society-bot/internal/transport"
)

const (
	testAdminID = int64(1000)
	testTTL     = 30 * 24 * time.Hour
)

var testNow = time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return testNow }

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:svc_%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	db.Exec("PRAGMA foreign_keys=ON;")
	// Shared-cache memory databases lock whole tables; one connection keeps
	// concurrent tests from failing on SQLITE_LOCKED.
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := repo.AutoMigrate(db); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

// ----- Fakes -----

type recordingSender struct {
	mu   sync.Mutex
	msgs []transport.Message
	// failFor makes Send fail for one chat id.
	failFor int64
}

func (s *recordingSender) Send(_ context.Context, m transport.Message) error {
	if err := m.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failFor != 0 && m.ChatID == s.failFor {
		return errors.New("chat unreachable")
	}
	s.msgs = append(s.msgs, m)
	return nil
}

func (s *recordingSender) Close() error { return nil }

func (s *recordingSender) sent() []transport.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]transport.Message(nil), s.msgs...)
}

func (s *recordingSender) to(chatID int64) []transport.Message {
	var out []transport.Message
	for _, m := range s.sent() {
		if m.ChatID == chatID {
			out = append(out, m)
		}
	}
	return out
}

func (s *recordingSender) countContaining(chatID int64, sub string) int {
	n := 0
	for _, m := range s.to(chatID) {
		if strings.Contains(m.Text, sub) {
			n++
		}
	}
	return n
}

type fakeClassifier map[string]*classifier.Result

func (f fakeClassifier) Classify(_ context.Context, text string) *classifier.Result {
	return f[text]
}

type fakeProvider struct {
	mu    sync.Mutex
	calls []payments.LinkRequest
	err   error
}

func (p *fakeProvider) CreateLink(_ context.Context, req payments.LinkRequest) (payments.Link, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, req)
	if p.err != nil {
		return payments.Link{}, p.err
	}
	n := len(p.calls)
	return payments.Link{
		ID:  fmt.Sprintf("plink_%d", n),
		URL: fmt.Sprintf("https://rzp.io/l/%d", n),
	}, nil
}

// ----- Fixtures -----

func testTiers() config.LeadsConfig {
	return config.LeadsConfig{
		FreeLeads: 2,
		Tiers: []config.Tier{
			{Code: "t1", Price: 59, Leads: 3},
			{Code: "t2", Price: 199, Leads: 15, Tips: true},
		},
	}
}

func testFormatter() *format.Formatter {
	lc := testTiers()
	return format.New(classifier.DefaultCatalog(), format.Options{
		BotUsername: "society_bot",
		FreeLeads:   lc.FreeLeads,
		Tiers:       lc.Tiers,
	})
}

type fixture struct {
	db     *gorm.DB
	sender *recordingSender
	fmt    *format.Formatter
	leads  *LeadService
	ent    *EntitlementService
}

func newFixture(t *testing.T, channel string, provider payments.Provider) *fixture {
	t.Helper()
	db := newTestDB(t)
	sender := &recordingSender{}
	f := testFormatter()
	leads := &LeadService{DB: db, Formatter: f, Sender: sender, FreeLeads: testTiers().FreeLeads, Now: fixedClock}
	ent := &EntitlementService{
		DB:          db,
		Leads:       leads,
		Formatter:   f,
		Sender:      sender,
		Channel:     channel,
		Provider:    provider,
		Tiers:       testTiers(),
		AdminUserID: testAdminID,
		UPIVPA:      "society@upi",
		UPIPayee:    "Society Bot",
	}
	return &fixture{db: db, sender: sender, fmt: f, leads: leads, ent: ent}
}

// seedOffers inserts n maid offers with distinct contacts; offer i is
// created i minutes after the first, so the last one is the newest.
func seedOffers(t *testing.T, db *gorm.DB, n int) []domain.Listing {
	t.Helper()
	out := make([]domain.Listing, 0, n)
	for i := 0; i < n; i++ {
		l := domain.Listing{
			UserID:      int64(100 + i),
			FirstName:   domain.Str(fmt.Sprintf("Helper%d", i)),
			ChatID:      -1,
			MessageID:   int64(i + 1),
			Category:    "maid",
			ListingType: domain.ListingOffer,
			Contact:     domain.Str(fmt.Sprintf("90000000%02d", i)),
			Message:     "Maid available for cooking",
		}
		created := testNow.Add(-time.Hour).Add(time.Duration(i) * time.Minute)
		if err := repo.InsertListing(context.Background(), db, &l, testTTL, created); err != nil {
			t.Fatalf("insert listing: %v", err)
		}
		out = append(out, l)
	}
	return out
}

// seedRequest stores a maid query snapshot for userID.
func seedRequest(t *testing.T, db *gorm.DB, userID int64) *domain.LeadRequest {
	t.Helper()
	r := &domain.LeadRequest{
		UserID:       userID,
		Category:     "maid",
		Direction:    domain.ListingQuery,
		SourceChatID: -1,
	}
	if err := repo.CreateLeadRequest(context.Background(), db, r, testNow); err != nil {
		t.Fatalf("create lead request: %v", err)
	}
	return r
}
