package notify

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/rsmonitor/internal/models"
)

// Notifier delivers one alert to one channel.
type Notifier interface {
	Name() string
	Notify(ctx context.Context, alert *models.Alert) error
}

// Dispatcher fans an alert out to every enabled channel. Channels without a
// configured target are never registered, so dispatch has no per-channel
// special cases.
type Dispatcher struct {
	notifiers []Notifier
	log       *logrus.Entry
}

func NewDispatcher(notifiers ...Notifier) *Dispatcher {
	return &Dispatcher{
		notifiers: notifiers,
		log:       logrus.WithField("component", "notify"),
	}
}

// Channels returns the names of the enabled channels.
func (d *Dispatcher) Channels() []string {
	names := make([]string, 0, len(d.notifiers))
	for _, n := range d.notifiers {
		names = append(names, n.Name())
	}
	return names
}

// Dispatch sends the alert to all channels concurrently and waits for every
// send to finish. A failed channel is logged and isolated: it affects neither
// the other channels nor the caller.
func (d *Dispatcher) Dispatch(ctx context.Context, alert *models.Alert) {
	var wg sync.WaitGroup
	for _, n := range d.notifiers {
		wg.Add(1)
		go func(n Notifier) {
			defer wg.Done()
			if err := n.Notify(ctx, alert); err != nil {
				d.log.WithError(err).Errorf("%s notification failed for alert %s", n.Name(), alert.ID)
			}
		}(n)
	}
	wg.Wait()
}
