package services

import (
	"context"
	"fmt"

	"course-dashboard/models"

	pubnub "github.com/pubnub/go"
)

// Notifier tells connected dashboards that a load cycle finished.
type Notifier interface {
	Notify(ctx context.Context, state models.DashboardState) error
}

type PubNubNotifier struct {
	channel string
	publish func(channel string, message any) error
}

func NewPubNubNotifier(pn *pubnub.PubNub, channel string) *PubNubNotifier {
	return &PubNubNotifier{
		channel: channel,
		publish: func(channel string, message any) error {
			_, _, err := pn.Publish().
				Channel(channel).
				Message(message).
				Execute()
			return err
		},
	}
}

func (n *PubNubNotifier) Notify(ctx context.Context, state models.DashboardState) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := map[string]any{
		"type":     "dashboard_refreshed",
		"cycle_id": state.CycleID,
		"failed":   state.Failed,
	}
	if state.LoadedAt != nil {
		msg["loaded_at"] = state.LoadedAt.Unix()
	}

	if err := n.publish(n.channel, msg); err != nil {
		return fmt.Errorf("Notify: pubnub.Publish %s: %w", n.channel, err)
	}
	return nil
}
