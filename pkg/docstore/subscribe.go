package docstore

import (
	"context"

	"go.uber.org/zap"
)

// Unsubscribe stops a listener. It is idempotent.
type Unsubscribe func()

// OnSnapshot calls fn with the current result of ref immediately and then on
// every poll interval until the returned Unsubscribe is called or ctx is done.
// Fetch errors are logged and skipped.
func (c *Client) OnSnapshot(ctx context.Context, ref CollectionRef, fn func(*QuerySnapshot)) Unsubscribe {
	p := NewPoller(ctx, func(ctx context.Context) (*QuerySnapshot, error) {
		return c.GetDocs(ctx, ref)
	}, fn, c.pollerConfig(ref.Path()))
	p.Start()
	return p.Stop
}

// OnDocSnapshot is OnSnapshot for a single document.
func (c *Client) OnDocSnapshot(ctx context.Context, ref DocumentRef, fn func(*DocumentSnapshot)) Unsubscribe {
	p := NewPoller(ctx, func(ctx context.Context) (*DocumentSnapshot, error) {
		return c.GetDoc(ctx, ref)
	}, fn, c.pollerConfig(ref.Path()))
	p.Start()
	return p.Stop
}

func (c *Client) pollerConfig(path string) PollerConfig {
	return PollerConfig{
		Interval:  c.pollInterval,
		NewTicker: c.newTicker,
		Logger:    c.log.With(zap.String("path", path)),
	}
}
