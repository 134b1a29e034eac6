package metrics

import (
	"context"
	"time"

	"github.com/openbar/barbot/core/events"
	coremetrics "github.com/openbar/barbot/core/metrics"
	"github.com/openbar/barbot/internal/eventbus"
)

// StartEventCollector subscribes to the event bus and records metrics for
// turret events. It stops when the context is canceled.
func StartEventCollector(ctx context.Context, bus eventbus.EventBus, sink coremetrics.MetricsSink) {
	if bus == nil || sink == nil {
		return
	}
	sub := bus.Subscribe()
	go func() {
		defer bus.Unsubscribe(sub)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-sub:
				if !ok {
					return
				}
				switch e := ev.(type) {
				case events.PourEvent:
					_ = sink.RecordPour(coremetrics.PourRecord{
						JobID:      e.JobID,
						Slot:       e.Slot,
						Ounces:     e.Ounces,
						Duration:   e.Duration,
						Suppressed: e.Suppressed,
						Time:       time.Now(),
					})
				case events.RotationEvent:
					_ = sink.RecordRotation(coremetrics.RotationRecord{
						From:     e.From,
						To:       e.To,
						Steps:    e.Steps,
						CW:       e.CW,
						Duration: e.Duration,
						Time:     time.Now(),
					})
				case events.FaultEvent:
					_ = sink.RecordFault(coremetrics.FaultRecord{
						Reason: e.Reason,
						State:  e.State,
						Time:   e.Time,
					})
				}
			}
		}
	}()
}
