package airquality

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
)

const DefaultInterval = 15 * time.Second

// LineResult classifies what a single tick did with the line it read.
type LineResult string

const (
	LineReading   LineResult = "reading"
	LineIgnored   LineResult = "ignored"
	LineMalformed LineResult = "malformed"
	LineError     LineResult = "error"
)

// Observer is told about every line and every delivery attempt.
// Implementations must not block.
type Observer interface {
	LineRead(result LineResult)
	ReadingParsed(reading Reading)
	Delivered(leg string, err error)
}

// Relay reads lines from Source and forwards every PM2.5 reading to all Notifiers in order.
type Relay struct {
	Source    LineSource
	Notifiers []Notifier
	Interval  time.Duration
	Observer  Observer

	// Sleep replaces the wait between ticks when set
	Sleep func(time.Duration)
}

// Run ticks until ctx is done, waiting Interval after every tick whether or not it produced a reading.
func (r *Relay) Run(ctx context.Context) {
	for {
		r.Tick()
		if !r.wait(ctx) {
			return
		}
	}
}

// Tick performs one iteration. Failures are logged and never escape.
func (r *Relay) Tick() {
	defer func() {
		if p := recover(); p != nil {
			log.Errorf("recovered from panic in relay tick: %v", p)
		}
	}()

	line, err := r.Source.ReadLine()
	if err != nil {
		r.lineRead(LineError)
		log.Errorf("failed to read from sensor: %s", err)
		return
	}

	reading, matched, err := ParseLine(line)
	if !matched {
		r.lineRead(LineIgnored)
		if line != "" {
			log.Debugf("ignoring line %q", line)
		}
		return
	}
	if err != nil {
		r.lineRead(LineMalformed)
		log.Warnf("skipping line: %s", err)
		return
	}

	r.lineRead(LineReading)
	if r.Observer != nil {
		r.Observer.ReadingParsed(reading)
	}
	log.Infof("Received PM2.5: %s", reading)

	for _, n := range r.Notifiers {
		r.deliver(n, reading)
	}
}

func (r *Relay) deliver(n Notifier, reading Reading) {
	err := safeNotify(n, reading)
	if r.Observer != nil {
		r.Observer.Delivered(n.Name(), err)
	}
	if err != nil {
		log.Errorf("failed to notify %s: %s", n.Name(), err)
	}
}

func safeNotify(n Notifier, reading Reading) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("panic: %v", p)
		}
	}()
	return n.Notify(reading)
}

func (r *Relay) lineRead(result LineResult) {
	if r.Observer != nil {
		r.Observer.LineRead(result)
	}
}

func (r *Relay) wait(ctx context.Context) bool {
	interval := r.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}

	if r.Sleep != nil {
		r.Sleep(interval)
		return ctx.Err() == nil
	}

	t := time.NewTimer(interval)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
