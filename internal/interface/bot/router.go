// Package bot implements the chat interface of the study community bot.
// It routes gateway events (commands and voice presence changes) to the
// application layer and posts the formatted Korean replies.
package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/gongdew-hub/study-community-bot/internal/application/command"
	"github.com/gongdew-hub/study-community-bot/internal/application/query"
	"github.com/gongdew-hub/study-community-bot/internal/domain/activity"
	"github.com/gongdew-hub/study-community-bot/internal/infrastructure/external/chat"
	"github.com/gongdew-hub/study-community-bot/internal/interface/bot/presenter"
	"github.com/gongdew-hub/study-community-bot/pkg/logger"
)

// CommandPrefix marks a chat message as a bot command.
const CommandPrefix = "!"

// Sender posts and edits chat messages. *chat.Client satisfies it.
type Sender interface {
	SendMessage(ctx context.Context, channelID, content string) (*chat.Message, error)
	EditMessage(ctx context.Context, channelID, messageID, content string) (*chat.Message, error)
}

// Request carries the parsed command and its sender.
type Request struct {
	// MemberID is the chat platform ID of the invoking member.
	MemberID string

	// Nickname is the member's display name.
	Nickname string

	// ChannelID is where the command was posted and where the reply goes.
	ChannelID string

	// Args is the text after the command name.
	Args string
}

// HandlerFunc handles a single command and returns the reply text.
type HandlerFunc func(ctx context.Context, req Request) (string, error)

// Handlers bundles the application dependencies the router dispatches to.
type Handlers struct {
	MarkDaily   *command.MarkDailyHandler
	Presence    *command.PresenceTracker
	Profile     *query.ProfileHandler
	WindowStats *query.WindowStatsHandler
	Streak      *query.StreakHandler
	MarkHistory *query.MarkHistoryHandler
	Ranking     *query.RankingHandler
}

// Router routes gateway events to command handlers.
type Router struct {
	sender   Sender
	handlers Handlers
	log      *logger.Logger

	mu       sync.RWMutex
	commands map[string]HandlerFunc
}

// NewRouter creates a router with all community commands registered.
func NewRouter(sender Sender, handlers Handlers, log *logger.Logger) *Router {
	r := &Router{
		sender:   sender,
		handlers: handlers,
		log:      log.With(logger.Component("router")),
		commands: make(map[string]HandlerFunc),
	}

	r.Register("출석", r.handleMark(activity.KindAttendance))
	r.Register("기상", r.handleMark(activity.KindWakeUp))
	r.Register("굿모닝", r.handleMark(activity.KindWakeUp))
	r.Register("출석기록", r.handleMarkHistory)
	r.Register("내정보", r.handleProfile)
	r.Register("주통계", r.handleWindowStats(query.WindowWeek))
	r.Register("월통계", r.handleWindowStats(query.WindowMonth))
	r.Register("연속출석", r.handleStreak(query.StreakAttendance))
	r.Register("연속기상", r.handleStreak(query.StreakWakeUp))
	r.Register("연속공부", r.handleStreak(query.StreakStudy))
	r.Register("랭킹", r.handleRanking)
	r.Register("명령어", r.handleHelp)

	return r
}

// Register binds a command name (without the prefix) to a handler.
func (r *Router) Register(name string, fn HandlerFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.commands[name] = fn
}

// Commands returns the registered command names.
func (r *Router) Commands() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.commands))
	for name := range r.commands {
		names = append(names, name)
	}
	return names
}

// ══════════════════════════════════════════════════════════════════════════════
// EVENT DISPATCH
// ══════════════════════════════════════════════════════════════════════════════

// HandleEvent dispatches a gateway event. Non-command chatter and events
// from other bots are ignored.
func (r *Router) HandleEvent(ctx context.Context, event *chat.Event) error {
	switch event.Type {
	case chat.EventMessage:
		if event.Message == nil || event.Message.Author.Bot {
			return nil
		}
		return r.handleMessage(ctx, event.Message)
	case chat.EventPresenceJoin:
		if event.Presence == nil {
			return nil
		}
		return r.handlePresenceJoin(ctx, event.Presence)
	case chat.EventPresenceLeave:
		if event.Presence == nil {
			return nil
		}
		return r.handlePresenceLeave(ctx, event.Presence)
	default:
		r.log.Debug("ignoring unknown event type", logger.String("event_type", string(event.Type)))
		return nil
	}
}

func (r *Router) handleMessage(ctx context.Context, msg *chat.Message) error {
	name, args, ok := parseCommand(msg.Content)
	if !ok {
		return nil
	}

	r.mu.RLock()
	fn, found := r.commands[name]
	r.mu.RUnlock()

	if !found {
		return nil
	}

	req := Request{
		MemberID:  msg.Author.ID,
		Nickname:  msg.Author.Username,
		ChannelID: msg.ChannelID,
		Args:      args,
	}

	reply, err := fn(ctx, req)
	if err != nil {
		r.log.Error("command failed",
			logger.Command(name),
			logger.MemberID(req.MemberID),
			logger.Err(err),
		)
		return fmt.Errorf("command %s: %w", name, err)
	}
	if reply == "" {
		return nil
	}

	if _, err := r.sender.SendMessage(ctx, req.ChannelID, reply); err != nil {
		return fmt.Errorf("command %s: send reply: %w", name, err)
	}
	return nil
}

// parseCommand splits "!출석 args" into its name and arguments.
func parseCommand(content string) (name, args string, ok bool) {
	content = strings.TrimSpace(content)
	if !strings.HasPrefix(content, CommandPrefix) {
		return "", "", false
	}

	rest := strings.TrimPrefix(content, CommandPrefix)
	if rest == "" {
		return "", "", false
	}

	name, args, _ = strings.Cut(rest, " ")
	return name, strings.TrimSpace(args), true
}

// ══════════════════════════════════════════════════════════════════════════════
// PRESENCE
// ══════════════════════════════════════════════════════════════════════════════

func (r *Router) handlePresenceJoin(ctx context.Context, p *chat.Presence) error {
	if _, err := r.handlers.Presence.Join(ctx, p.MemberID, p.Username); err != nil {
		return fmt.Errorf("presence join: %w", err)
	}

	msg, err := r.sender.SendMessage(ctx, p.ChannelID, presenter.SessionStart(p.Username))
	if err != nil {
		return fmt.Errorf("presence join: send message: %w", err)
	}

	// Remember the announcement so the session outcome can replace it.
	r.handlers.Presence.SetExternalRef(p.MemberID, msg.ID)
	return nil
}

func (r *Router) handlePresenceLeave(ctx context.Context, p *chat.Presence) error {
	res, err := r.handlers.Presence.Leave(ctx, p.MemberID)
	if errors.Is(err, activity.ErrNoActiveSession) {
		// A leave without a join, e.g. after a bot restart.
		return nil
	}
	if err != nil {
		return fmt.Errorf("presence leave: %w", err)
	}

	content := presenter.SessionEnd(p.Username, res)
	if res.ExternalRef != "" {
		if _, err := r.sender.EditMessage(ctx, p.ChannelID, res.ExternalRef, content); err == nil {
			return nil
		}
		// The announcement may have been deleted; fall back to a new message.
	}

	if _, err := r.sender.SendMessage(ctx, p.ChannelID, content); err != nil {
		return fmt.Errorf("presence leave: send message: %w", err)
	}
	return nil
}

// ══════════════════════════════════════════════════════════════════════════════
// COMMAND HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

func (r *Router) handleMark(kind activity.Kind) HandlerFunc {
	return func(ctx context.Context, req Request) (string, error) {
		res, err := r.handlers.MarkDaily.Handle(ctx, command.MarkDailyCommand{
			MemberID: req.MemberID,
			Nickname: req.Nickname,
			Kind:     kind,
		})
		if err != nil {
			return "", err
		}
		return presenter.MarkResult(req.Nickname, kind, res), nil
	}
}

func (r *Router) handleProfile(ctx context.Context, req Request) (string, error) {
	res, err := r.handlers.Profile.Handle(ctx, query.ProfileQuery{MemberID: req.MemberID})
	if err != nil {
		return "", err
	}
	if res.Nickname == "" {
		res.Nickname = req.Nickname
	}
	return presenter.Profile(res), nil
}

func (r *Router) handleWindowStats(window query.Window) HandlerFunc {
	return func(ctx context.Context, req Request) (string, error) {
		res, err := r.handlers.WindowStats.Handle(ctx, query.WindowStatsQuery{
			MemberID: req.MemberID,
			Window:   window,
		})
		if err != nil {
			return "", err
		}
		return presenter.WindowStats(res), nil
	}
}

func (r *Router) handleStreak(kind query.StreakKind) HandlerFunc {
	return func(ctx context.Context, req Request) (string, error) {
		res, err := r.handlers.Streak.Handle(ctx, query.StreakQuery{
			MemberID: req.MemberID,
			Kind:     kind,
		})
		if err != nil {
			return "", err
		}
		return presenter.Streak(req.Nickname, res), nil
	}
}

func (r *Router) handleMarkHistory(ctx context.Context, req Request) (string, error) {
	res, err := r.handlers.MarkHistory.Handle(ctx, query.MarkHistoryQuery{
		MemberID: req.MemberID,
		Kind:     activity.KindAttendance,
	})
	if err != nil {
		return "", err
	}
	return presenter.MarkHistory(req.Nickname, res), nil
}

func (r *Router) handleRanking(ctx context.Context, req Request) (string, error) {
	board, err := r.handlers.Ranking.Handle(ctx, query.RankingQuery{})
	if err != nil {
		return "", err
	}
	return presenter.Ranking(board), nil
}

func (r *Router) handleHelp(_ context.Context, _ Request) (string, error) {
	return presenter.Help(), nil
}
