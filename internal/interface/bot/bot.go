package bot

import (
	"context"
	"fmt"

	"github.com/gongdew-hub/study-community-bot/internal/domain/leaderboard"
	"github.com/gongdew-hub/study-community-bot/internal/infrastructure/external/chat"
	"github.com/gongdew-hub/study-community-bot/internal/interface/bot/presenter"
	"github.com/gongdew-hub/study-community-bot/pkg/logger"
)

// Bot connects the gateway event stream to the router.
type Bot struct {
	client *chat.Client
	router *Router
	log    *logger.Logger
}

// New creates a Bot.
func New(client *chat.Client, router *Router, log *logger.Logger) *Bot {
	return &Bot{
		client: client,
		router: router,
		log:    log.With(logger.Component("bot")),
	}
}

// Run long-polls the gateway until the context is cancelled.
func (b *Bot) Run(ctx context.Context) error {
	b.log.Info("bot started", logger.Int("commands", len(b.router.Commands())))
	return b.client.StartPolling(ctx, b.router.HandleEvent)
}

// ══════════════════════════════════════════════════════════════════════════════
// RANKING ANNOUNCER
// ══════════════════════════════════════════════════════════════════════════════

// RankingAnnouncer posts daily leaderboard snapshots to the ranking channel.
type RankingAnnouncer struct {
	sender    Sender
	channelID string
}

// NewRankingAnnouncer creates an announcer bound to the given channel.
func NewRankingAnnouncer(sender Sender, channelID string) *RankingAnnouncer {
	return &RankingAnnouncer{sender: sender, channelID: channelID}
}

// AnnounceRanking posts the snapshot.
func (a *RankingAnnouncer) AnnounceRanking(ctx context.Context, snap *leaderboard.Snapshot) error {
	_, err := a.sender.SendMessage(ctx, a.channelID, presenter.RankingSnapshot(snap))
	if err != nil {
		return fmt.Errorf("announce ranking: %w", err)
	}
	return nil
}
