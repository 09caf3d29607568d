// Package telemetry sends best-effort usage events to the API. Failures are
// logged at debug level and never reach the caller.
package telemetry

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/kevinxuez/social-map/internal/socialgraph"
)

type Poster interface {
	SendTelemetry(ctx context.Context, ev socialgraph.TelemetryEvent) error
}

type Sender struct {
	log     zerolog.Logger
	poster  Poster
	user    string
	timeout time.Duration
	now     func() time.Time
}

func NewSender(log zerolog.Logger, poster Poster, user string) *Sender {
	return &Sender{
		log:     log,
		poster:  poster,
		user:    user,
		timeout: 5 * time.Second,
		now:     time.Now,
	}
}

// Event posts in the background. A nil Sender drops the event.
func (s *Sender) Event(ctx context.Context, typ string, data map[string]any) {
	if s == nil || s.poster == nil {
		return
	}
	ev := s.build(typ, data)
	ctx = context.WithoutCancel(ctx)
	go s.send(ctx, ev)
}

// Send posts synchronously, still swallowing failures.
func (s *Sender) Send(ctx context.Context, typ string, data map[string]any) {
	if s == nil || s.poster == nil {
		return
	}
	s.send(ctx, s.build(typ, data))
}

func (s *Sender) build(typ string, data map[string]any) socialgraph.TelemetryEvent {
	ev := socialgraph.TelemetryEvent{
		Type: typ,
		TS:   s.now().UnixMilli(),
		User: s.user,
	}
	if data != nil {
		ev.Data = data
	}
	return ev
}

func (s *Sender) send(ctx context.Context, ev socialgraph.TelemetryEvent) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	if err := s.poster.SendTelemetry(ctx, ev); err != nil {
		s.log.Debug().Err(err).Str("type", ev.Type).Msg("telemetry dropped")
	}
}
