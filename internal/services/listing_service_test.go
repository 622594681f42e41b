package services

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/tbourn/go-society-bot/internal/classifier"
	"github.com/tbourn/go-society-bot/internal/domain"
	"github.com/tbourn/go-society-bot/internal/repo"
	"github.com/tbourn/go-society-bot/internal/transport"
)

const (
	offerText = "Maid available for cooking, call 9876543210"
	queryText = "Need a maid for cooking, anyone?"
)

func testClassifier() fakeClassifier {
	return fakeClassifier{
		offerText: {Category: "maid", ListingType: domain.ListingOffer, Contact: domain.Str("9876543210")},
		queryText: {Category: "maid", ListingType: domain.ListingQuery},
		"Need a maid, call 9123456780": {
			Category: "maid", ListingType: domain.ListingQuery, Contact: domain.Str("9123456780"),
		},
	}
}

func newListingService(t *testing.T, allowed ...int64) (*ListingService, *recordingSender) {
	t.Helper()
	db := newTestDB(t)
	sender := &recordingSender{}
	return &ListingService{
		DB:         db,
		Classifier: testClassifier(),
		Formatter:  testFormatter(),
		Sender:     sender,
		Policy:     ChatPolicy{Allowed: allowed},
		TTL:        testTTL,
		SampleSize: 10,
		Now:        fixedClock,
	}, sender
}

func countListings(t *testing.T, s *ListingService) int64 {
	t.Helper()
	var n int64
	if err := s.DB.Model(&domain.Listing{}).Count(&n).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	return n
}

func TestHandleGroupMessage_EmptyText(t *testing.T) {
	s, _ := newListingService(t)
	res, err := s.HandleGroupMessage(context.Background(), IncomingMessage{ChatID: -1, Text: "   "})
	if !errors.Is(err, ErrEmptyMessage) {
		t.Fatalf("err = %v; want ErrEmptyMessage", err)
	}
	if res.Outcome != OutcomeIgnored {
		t.Fatalf("outcome = %q", res.Outcome)
	}
}

func TestHandleGroupMessage_ChatNotAllowed(t *testing.T) {
	s, sender := newListingService(t, -42)
	_, err := s.HandleGroupMessage(context.Background(), IncomingMessage{ChatID: -1, UserID: 5, Text: offerText})
	if !errors.Is(err, ErrChatNotAllowed) {
		t.Fatalf("err = %v; want ErrChatNotAllowed", err)
	}
	if n := countListings(t, s); n != 0 {
		t.Fatalf("stored %d listings from a foreign chat", n)
	}
	if len(sender.sent()) != 0 {
		t.Fatalf("unexpected messages: %+v", sender.sent())
	}
}

func TestHandleGroupMessage_NoiseIsIgnored(t *testing.T) {
	s, sender := newListingService(t)
	res, err := s.HandleGroupMessage(context.Background(), IncomingMessage{ChatID: -1, UserID: 5, Text: "Good morning!"})
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if res.Outcome != OutcomeIgnored || res.ListingID != 0 {
		t.Fatalf("res = %+v", res)
	}
	if n := countListings(t, s); n != 0 {
		t.Fatalf("listings = %d; want 0", n)
	}
	if len(sender.sent()) != 0 {
		t.Fatalf("bot must stay silent on noise")
	}
}

func TestHandleGroupMessage_StoredWithoutLeads(t *testing.T) {
	s, sender := newListingService(t)
	res, err := s.HandleGroupMessage(context.Background(), IncomingMessage{
		ChatID: -1, MessageID: 7, UserID: 5, Username: "@asha", Text: offerText,
	})
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if res.Outcome != OutcomeStored || res.ListingID == 0 || res.LeadRequestID != 0 {
		t.Fatalf("res = %+v", res)
	}
	l, err := repo.GetListing(context.Background(), s.DB, res.ListingID)
	if err != nil {
		t.Fatalf("get listing: %v", err)
	}
	if domain.Val(l.Username) != "asha" {
		t.Fatalf("username = %q; want stripped @", domain.Val(l.Username))
	}
	if !l.ExpiresAt.Equal(testNow.Add(testTTL)) {
		t.Fatalf("expires_at = %v", l.ExpiresAt)
	}
	if len(sender.sent()) != 0 {
		t.Fatalf("no hook without leads")
	}
}

func TestHandleGroupMessage_QueryMatchesOffers(t *testing.T) {
	s, sender := newListingService(t)
	seedOffers(t, s.DB, 3)

	res, err := s.HandleGroupMessage(context.Background(), IncomingMessage{
		ChatID: -1, MessageID: 99, UserID: 5, Text: queryText,
	})
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if res.Outcome != OutcomeMatched || res.LeadRequestID == 0 {
		t.Fatalf("res = %+v", res)
	}

	req, err := repo.GetLeadRequest(context.Background(), s.DB, res.LeadRequestID)
	if err != nil {
		t.Fatalf("get request: %v", err)
	}
	if req.Direction != domain.ListingQuery || req.SearchType() != domain.ListingOffer || req.UserID != 5 {
		t.Fatalf("request = %+v", req)
	}

	msgs := sender.to(-1)
	if len(msgs) != 1 {
		t.Fatalf("group messages = %d; want 1", len(msgs))
	}
	hook := msgs[0]
	if hook.ReplyTo != 99 {
		t.Fatalf("reply_to = %d", hook.ReplyTo)
	}
	if !strings.Contains(hook.Text, "3 verified contacts") {
		t.Fatalf("hook text = %q", hook.Text)
	}
	wantURL := "https://t.me/society_bot?start=leads_" + strconv.FormatUint(req.ID, 10)
	if len(hook.Buttons) != 1 || hook.Buttons[0][0].URL != wantURL {
		t.Fatalf("buttons = %+v; want %s", hook.Buttons, wantURL)
	}
}

func TestHandleGroupMessage_OfferMatchesQueriesWithContact(t *testing.T) {
	s, sender := newListingService(t)

	// A query without a number is not a sellable lead.
	if _, err := s.HandleGroupMessage(context.Background(), IncomingMessage{ChatID: -1, MessageID: 1, UserID: 6, Text: queryText}); err != nil {
		t.Fatalf("seed query: %v", err)
	}
	res, err := s.HandleGroupMessage(context.Background(), IncomingMessage{ChatID: -1, MessageID: 2, UserID: 5, Text: offerText})
	if err != nil || res.Outcome != OutcomeStored {
		t.Fatalf("res = %+v err = %v; want stored", res, err)
	}

	if _, err := s.HandleGroupMessage(context.Background(), IncomingMessage{ChatID: -1, MessageID: 3, UserID: 7, Text: "Need a maid, call 9123456780"}); err != nil {
		t.Fatalf("seed query: %v", err)
	}
	before := len(sender.sent())
	res, err = s.HandleGroupMessage(context.Background(), IncomingMessage{ChatID: -1, MessageID: 4, UserID: 8, Text: offerText})
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if res.Outcome != OutcomeMatched {
		t.Fatalf("outcome = %q; want matched", res.Outcome)
	}
	msgs := sender.sent()[before:]
	var hook *transport.Message
	for i := range msgs {
		if msgs[i].ReplyTo == 4 {
			hook = &msgs[i]
		}
	}
	if hook == nil {
		t.Fatalf("no hook reply in %+v", msgs)
	}
	// Both searchers count towards demand, with or without a number.
	if !strings.Contains(hook.Text, "2 people already looking for maid") {
		t.Fatalf("hook text = %q", hook.Text)
	}
}

func TestHandleGroupMessage_PurgesExpiredListings(t *testing.T) {
	s, _ := newListingService(t)
	old := domain.Listing{UserID: 1, Category: "maid", ListingType: domain.ListingOffer, Contact: domain.Str("9000000001"), Message: "old"}
	if err := repo.InsertListing(context.Background(), s.DB, &old, time.Hour, testNow.Add(-2*time.Hour)); err != nil {
		t.Fatalf("insert: %v", err)
	}

	res, err := s.HandleGroupMessage(context.Background(), IncomingMessage{ChatID: -1, UserID: 5, Text: queryText})
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if res.Outcome != OutcomeStored {
		t.Fatalf("expired offer must not match; outcome = %q", res.Outcome)
	}
	if _, err := repo.GetListing(context.Background(), s.DB, old.ID); !errors.Is(err, repo.ErrNotFound) {
		t.Fatalf("expired listing still present: err = %v", err)
	}
}

func TestHandleGroupMessage_SendFailureDoesNotFail(t *testing.T) {
	s, sender := newListingService(t)
	sender.failFor = -1
	seedOffers(t, s.DB, 1)

	res, err := s.HandleGroupMessage(context.Background(), IncomingMessage{ChatID: -1, UserID: 5, Text: queryText})
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if res.Outcome != OutcomeMatched {
		t.Fatalf("outcome = %q", res.Outcome)
	}
}

func TestChatPolicy(t *testing.T) {
	if !(ChatPolicy{}).Allows(123) {
		t.Fatalf("empty policy must allow every chat")
	}
	p := ChatPolicy{Allowed: []int64{-100, -200}}
	if !p.Allows(-200) || p.Allows(-300) {
		t.Fatalf("policy mismatch")
	}
}

func TestHandleMembership(t *testing.T) {
	s, sender := newListingService(t, -100)

	left, err := s.HandleMembership(context.Background(), -100, true)
	if err != nil || left {
		t.Fatalf("allowed chat: left=%v err=%v", left, err)
	}
	left, err = s.HandleMembership(context.Background(), -999, false)
	if err != nil || left {
		t.Fatalf("removal: left=%v err=%v", left, err)
	}
	left, err = s.HandleMembership(context.Background(), -999, true)
	if err != nil || !left {
		t.Fatalf("foreign chat: left=%v err=%v", left, err)
	}
	msgs := sender.sent()
	if len(msgs) != 1 || msgs[0].Action != transport.ActionLeave || msgs[0].ChatID != -999 {
		t.Fatalf("messages = %+v", msgs)
	}
}

var _ Classifier = (*classifier.Classifier)(nil)
