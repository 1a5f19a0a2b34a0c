package live

import (
	"context"
	"fmt"
	"time"
)

// scheduledTick is a single scheduled live view refresh
type scheduledTick struct {
	at   time.Time
	view *View
}

// Less is utilized to sort scheduled ticks by their due-time (earliest == first)
func (a scheduledTick) Less(b scheduledTick) bool {
	return a.at.Before(b.at)
}

// tickResponse is the refresh routine response
type tickResponse struct {
	view *View
}

// handleTick refreshes the view, and reports back
func handleTick(
	ctx context.Context,
	view *View,
	resCh chan<- *tickResponse,
) {
	view.refresh(ctx)

	select {
	case <-ctx.Done():
	case resCh <- &tickResponse{view: view}:
	}
}

func defaultAlertText(price, threshold float64) string {
	return fmt.Sprintf("Found %.2f < %.2f", price, threshold)
}
