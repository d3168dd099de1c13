package main

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// Analytics event types
const (
	EvtMatchStart   = "match_start"
	EvtMatchEnd     = "match_end"
	EvtPlayerKill   = "player_kill"
	EvtPowerUpTaken = "powerup_taken"
	EvtSessionJoin  = "session_join"
)

// AnalyticsEvent is one journaled gameplay event
type AnalyticsEvent struct {
	Type      string
	PlayerID  int64
	Subject   string
	Timestamp time.Time
}

const (
	analyticsBufSize  = 512
	analyticsBatchMax = 64
	analyticsFlush    = 5 * time.Second
)

// Analytics journals gameplay events to the database off the tick
// loop. Track never blocks; events are dropped if the buffer is full
// or the journal is closed.
type Analytics struct {
	db  *DB
	log *zap.Logger
	ch  chan AnalyticsEvent

	// The send channel is never closed: sessions keep ticking during
	// shutdown and a Track racing Close must stay a silent drop, not a
	// panic. The writer exits via quit instead.
	quit      chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

// NewAnalytics creates the journal and starts its background writer
func NewAnalytics(db *DB, log *zap.Logger) *Analytics {
	a := &Analytics{
		db:   db,
		log:  log,
		ch:   make(chan AnalyticsEvent, analyticsBufSize),
		quit: make(chan struct{}),
		done: make(chan struct{}),
	}
	go a.run()
	return a
}

// Track queues an event. Safe to call from the tick loop and safe
// concurrently with Close.
func (a *Analytics) Track(evtType string, playerID int64, subject string) {
	if a == nil {
		return
	}
	select {
	case <-a.quit:
		return
	default:
	}
	select {
	case a.ch <- AnalyticsEvent{Type: evtType, PlayerID: playerID, Subject: subject, Timestamp: time.Now()}:
	default:
		// buffer full, drop rather than stall the caller
	}
}

// Close flushes pending events and stops the writer. Idempotent.
func (a *Analytics) Close() {
	if a == nil {
		return
	}
	a.closeOnce.Do(func() { close(a.quit) })
	<-a.done
}

func (a *Analytics) run() {
	defer close(a.done)
	batch := make([]AnalyticsEvent, 0, analyticsBatchMax)
	ticker := time.NewTicker(analyticsFlush)
	defer ticker.Stop()

	flush := func() {
		if len(batch) == 0 {
			return
		}
		if err := a.db.InsertEvents(batch); err != nil {
			a.log.Warn("analytics flush failed", zap.Error(err), zap.Int("events", len(batch)))
		}
		batch = batch[:0]
	}

	for {
		select {
		case e := <-a.ch:
			batch = append(batch, e)
			if len(batch) >= analyticsBatchMax {
				flush()
			}
		case <-ticker.C:
			flush()
		case <-a.quit:
			// Drain whatever made it into the buffer, then final flush
			for {
				select {
				case e := <-a.ch:
					batch = append(batch, e)
				default:
					flush()
					return
				}
			}
		}
	}
}
