package main

import (
	"context"
	"log/slog"
	"time"

	"github.com/ch0de/video-Chuck-a-Luck/internal/ledring"
	"github.com/ch0de/video-Chuck-a-Luck/internal/mqttbus"
)

// ============================================================================
// Button/LED Daemon Loop
// ============================================================================
// The loop owns the indicator machine and the strip. It reacts to two
// inputs: button presses (debounced, published to the wheel) and state
// strings from the wheel (applied to the indicator). A fixed timer
// advances the animations; the strip is only written when the frame
// actually changed.
// ============================================================================

// animTick paces indicator advancement. The indicator's own intervals
// gate each animation, so ticking faster than the smallest of them only
// burns CPU.
const animTick = time.Millisecond

type daemon struct {
	logger *slog.Logger

	ring  *ledring.Machine
	strip ledring.Strip
	bus   statePublisher

	buttonCode uint16
	debounce   time.Duration
	lastPress  time.Time
}

// statePublisher is satisfied by *mqttbus.Client; tests substitute a
// recorder.
type statePublisher interface {
	Publish(topic, payload string)
}

func (d *daemon) run(ctx context.Context, keys <-chan inputEvent, keyErr <-chan error, busMsgs <-chan mqttbus.Message) error {
	ticker := time.NewTicker(animTick)
	defer ticker.Stop()
	defer d.strip.Close()

	// Light the idle frame before anything arrives.
	d.show()

	for {
		select {
		case <-ctx.Done():
			d.logger.Info("button daemon stopping")
			return ctx.Err()

		case now := <-ticker.C:
			if d.ring.Advance(now) {
				d.show()
			}

		case key := <-keys:
			d.handleKey(key, time.Now())

		case err := <-keyErr:
			d.logger.Error("button reader stopped", "error", err)
			return err

		case msg := <-busMsgs:
			d.handleBusMessage(msg, time.Now())
		}
	}
}

// handleKey publishes a press for the configured button, dropping
// bounces inside the debounce window.
func (d *daemon) handleKey(ev inputEvent, now time.Time) {
	if ev.Type != EV_KEY || ev.Code != d.buttonCode || ev.Value != evValuePress {
		return
	}
	if now.Sub(d.lastPress) < d.debounce {
		d.logger.Debug("press debounced")
		return
	}
	d.lastPress = now
	d.logger.Info("button pressed")
	d.bus.Publish(mqttbus.TopicSpin, mqttbus.PayloadPressed)
}

func (d *daemon) handleBusMessage(msg mqttbus.Message, now time.Time) {
	if msg.Topic != mqttbus.TopicState {
		d.logger.Debug("ignoring bus message", "topic", msg.Topic)
		return
	}
	d.logger.Info("wheel state", "state", msg.Payload)
	d.ring.Apply(msg.Payload, now)
	d.show()
}

func (d *daemon) show() {
	if err := d.strip.Show(d.ring.Frame()); err != nil {
		d.logger.Warn("strip write failed", "error", err)
	}
}
