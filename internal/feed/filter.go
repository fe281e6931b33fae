package feed

import (
	"fmt"

	"example.com/sportmeet/internal/domain"
)

// ViewMode selects one of the three feed presentations.
type ViewMode string

const (
	ViewModeAll       ViewMode = "all"
	ViewModeFollowing ViewMode = "following"
	ViewModeMine      ViewMode = "mine"
)

// ParseViewMode validates a wire value, defaulting empty input to "all".
func ParseViewMode(value string) (ViewMode, error) {
	switch ViewMode(value) {
	case "":
		return ViewModeAll, nil
	case ViewModeAll, ViewModeFollowing, ViewModeMine:
		return ViewMode(value), nil
	}
	return "", fmt.Errorf("unknown view mode %q", value)
}

// Selection is the full filter input. A nil Prefs means the preference store
// has not delivered a value yet, which yields a Loading result rather than a
// guessed default.
type Selection struct {
	Prefs         *domain.Preferences
	View          ViewMode
	CurrentUserID string
}

// Filter narrows an assembled feed by the sports selection, the radius
// threshold, and the view mode. Order from the assembler is preserved within
// each partition; "mine" is the only mode that re-partitions the sequence.
func Filter(assembled Result, sel Selection) Result {
	if assembled.State != StateReady {
		return assembled
	}
	if sel.Prefs == nil {
		return Result{State: StateLoading}
	}

	kept := make([]Item, 0, len(assembled.Items))
	for _, item := range assembled.Items {
		if !sel.Prefs.AllowsSport(item.Sport) {
			continue
		}
		if !withinRadius(item, *sel.Prefs) {
			continue
		}
		kept = append(kept, item)
	}

	switch sel.View {
	case ViewModeFollowing:
		kept = keep(kept, func(item Item) bool {
			return !item.IsOngoing && !item.IsCanceled && len(item.FollowedParticipantFullNames) > 0
		})
	case ViewModeMine:
		upcoming := keep(kept, func(item Item) bool {
			return !item.IsOngoing && !item.IsCanceled && item.participatedBy(sel.CurrentUserID)
		})
		ongoingOrCanceled := keep(kept, func(item Item) bool {
			return (item.IsOngoing || item.IsCanceled) && item.participatedBy(sel.CurrentUserID)
		})
		kept = append(upcoming, ongoingOrCanceled...)
	default:
		kept = keep(kept, func(item Item) bool {
			return !item.IsOngoing && !item.IsCanceled
		})
	}

	return Result{State: StateReady, Items: kept}
}

// withinRadius keeps items with no known distance: an activity cannot be
// excluded by a threshold it has no distance to compare against.
func withinRadius(item Item, prefs domain.Preferences) bool {
	if item.Distance == nil || prefs.RadiusUnlimited {
		return true
	}
	return *item.Distance <= prefs.RadiusKm
}

func (i Item) participatedBy(userID string) bool {
	for _, id := range i.ParticipantIDs {
		if id == userID {
			return true
		}
	}
	return false
}

func keep(items []Item, predicate func(Item) bool) []Item {
	out := make([]Item, 0, len(items))
	for _, item := range items {
		if predicate(item) {
			out = append(out, item)
		}
	}
	return out
}
