// Package services – CommandService
//
// This file answers the slash commands the bot understands in groups and
// private chats.
package services

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/go-society-bot/internal/format"
	"github.com/tbourn/go-society-bot/internal/repo"
	"github.com/tbourn/go-society-bot/internal/transport"
)

// Commands.
const (
	CommandStats = "/stats"
	CommandHelp  = "/help"
	CommandStart = "/start"
)

// CommandService renders /stats and /help.
type CommandService struct {
	DB        *gorm.DB
	Formatter *format.Formatter
	Sender    transport.Sender

	// Now is the clock; nil means time.Now.
	Now func() time.Time
}

// NormalizeCommand lowercases cmd and strips a "@botname" suffix and any
// arguments.
func NormalizeCommand(cmd string) string {
	f := strings.Fields(cmd)
	if len(f) == 0 {
		return ""
	}
	name, _, _ := strings.Cut(f[0], "@")
	return strings.ToLower(name)
}

// Counts returns active listings per category, largest first, and their
// sum.
func (s *CommandService) Counts(ctx context.Context) ([]format.CategoryCount, int64, error) {
	now := time.Now()
	if s.Now != nil {
		now = s.Now()
	}
	rows, err := repo.CountByCategory(ctx, s.DB, now)
	if err != nil {
		return nil, 0, err
	}
	var total int64
	counts := make([]format.CategoryCount, 0, len(rows))
	for _, r := range rows {
		total += r.Count
		counts = append(counts, format.CategoryCount{Category: r.Category, Count: r.Count})
	}
	return counts, total, nil
}

// Stats returns the active-listing breakdown text.
func (s *CommandService) Stats(ctx context.Context) (string, error) {
	counts, total, err := s.Counts(ctx)
	if err != nil {
		return "", err
	}
	return s.Formatter.Stats(total, counts), nil
}

// Handle replies to a command in chatID. It reports false for commands it
// does not know.
func (s *CommandService) Handle(ctx context.Context, chatID, messageID int64, command string) (bool, error) {
	var text string
	switch NormalizeCommand(command) {
	case CommandStats:
		t, err := s.Stats(ctx)
		if err != nil {
			return true, err
		}
		text = t
	case CommandHelp, CommandStart:
		text = s.Formatter.Help()
	default:
		return false, nil
	}
	return true, s.Sender.Send(ctx, transport.Reply(chatID, messageID, text))
}
