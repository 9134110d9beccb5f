// Package ringer implements the audio/vibration side of a ringing alarm. The
// server build has no speaker to drive, so the player records and logs its
// state; the interface it satisfies is where a platform audio backend would
// plug in.
package ringer

import (
	"log/slog"
	"sync"
)

// Player tracks whether an alarm is audibly ringing. Start replaces any
// current playback; Stop is idempotent and safe when nothing is playing.
type Player struct {
	logger *slog.Logger

	mu          sync.Mutex
	playing     bool
	vibrate     bool
	ringtoneURI string
}

// NewPlayer constructs a Player. A nil logger falls back to slog.Default.
func NewPlayer(logger *slog.Logger) *Player {
	if logger == nil {
		logger = slog.Default()
	}
	return &Player{logger: logger}
}

// Start begins playback with the given settings, replacing any current one.
func (p *Player) Start(vibrate bool, ringtoneURI string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.playing = true
	p.vibrate = vibrate
	p.ringtoneURI = ringtoneURI

	p.logger.Info("ringtone playback started",
		"vibrate", vibrate,
		"ringtone_uri", ringtoneURI,
	)
}

// Stop halts playback. Calling Stop when nothing is playing is a no-op.
func (p *Player) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.playing {
		return
	}
	p.playing = false
	p.vibrate = false
	p.ringtoneURI = ""

	p.logger.Info("ringtone playback stopped")
}

// Playing reports whether the player is currently ringing.
func (p *Player) Playing() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.playing
}
