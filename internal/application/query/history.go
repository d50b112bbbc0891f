package query

import (
	"context"
	"errors"
	"fmt"

	"github.com/gongdew-hub/study-community-bot/internal/domain/activity"
)

// ══════════════════════════════════════════════════════════════════════════════
// MARK HISTORY QUERY
// Lists every day a member has recorded a mark of the given kind.
// ══════════════════════════════════════════════════════════════════════════════

// MarkHistoryQuery requests a member's full mark history.
type MarkHistoryQuery struct {
	// MemberID is the chat platform ID of the member.
	MemberID string

	// Kind selects the mark type.
	Kind activity.Kind
}

// MarkHistoryResult contains the member's marked days.
type MarkHistoryResult struct {
	// Kind is the requested mark type.
	Kind activity.Kind

	// Days lists marked days, most recent first.
	Days []activity.Day
}

// MarkHistoryHandler handles the MarkHistoryQuery.
type MarkHistoryHandler struct {
	activityRepo activity.Repository
}

// NewMarkHistoryHandler creates a new MarkHistoryHandler.
func NewMarkHistoryHandler(activityRepo activity.Repository) *MarkHistoryHandler {
	return &MarkHistoryHandler{activityRepo: activityRepo}
}

// Handle executes the mark history query.
func (h *MarkHistoryHandler) Handle(ctx context.Context, q MarkHistoryQuery) (*MarkHistoryResult, error) {
	if q.MemberID == "" {
		return nil, errors.New("history: member_id is required")
	}
	if !q.Kind.IsValid() {
		return nil, fmt.Errorf("history: unknown mark kind: %s", q.Kind)
	}

	days, err := h.activityRepo.ListMarkDays(ctx, q.MemberID, q.Kind)
	if err != nil {
		return nil, fmt.Errorf("history: failed to list days: %w", err)
	}

	return &MarkHistoryResult{Kind: q.Kind, Days: days}, nil
}
