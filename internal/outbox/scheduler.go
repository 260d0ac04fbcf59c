package outbox

import (
	"context"
	"log"
	"time"

	"go.uber.org/fx"
)

// OutboxScheduler periodically drains the outbox in the background.
type OutboxScheduler struct {
	service *OutboxService
}

// NewOutboxScheduler creates a new scheduler for outbox delivery.
func NewOutboxScheduler(service *OutboxService) *OutboxScheduler {
	return &OutboxScheduler{service: service}
}

// Start registers the background goroutine that sends queued emails on a
// fixed interval.
func (s *OutboxScheduler) Start(lc fx.Lifecycle) {
	ticker := time.NewTicker(time.Minute)
	done := make(chan bool)

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Println("Starting outbox scheduler (sending every minute)...")
			go func() {
				schedulerCtx := context.Background()
				for {
					select {
					case <-ticker.C:
						s.service.SendDueEmails(schedulerCtx)
					case <-done:
						return
					}
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Println("Stopping outbox scheduler...")
			ticker.Stop()
			done <- true
			return nil
		},
	})
}
