package main

// Phase represents the coarse session lifecycle state
type Phase int

const (
	PhaseWaiting Phase = 0 // waiting for the minimum player count
	PhaseActive  Phase = 1
	PhaseOver    Phase = 2
)

// MatchConfig holds the rule settings for one match
type MatchConfig struct {
	MaxScore   int     // kills needed to win outright
	GameTime   float64 // countdown length in seconds
	MinPlayers int     // below this the countdown freezes
}

// DefaultMatchConfig returns the standard arena rules
func DefaultMatchConfig() MatchConfig {
	return MatchConfig{
		MaxScore:   5,
		GameTime:   60,
		MinPlayers: 2,
	}
}

// Match is the session clock and phase machine. Waiting -> Active -> Over,
// with a pause gate on the countdown while the roster is short. Mutated
// only from the owning game's tick loop.
type Match struct {
	Config   MatchConfig
	Phase    Phase
	Paused   bool
	TimeLeft float64
	Elapsed  float64 // wall time the match has been Active, for persistence
}

// NewMatch creates a match in the waiting phase with a full countdown
func NewMatch(cfg MatchConfig) *Match {
	return &Match{
		Config:   cfg,
		Phase:    PhaseWaiting,
		Paused:   true,
		TimeLeft: cfg.GameTime,
	}
}

// UpdatePhase evaluates the waiting->active transition and the pause
// gate against the current connected player count. Called every tick.
func (m *Match) UpdatePhase(connected int) {
	if m.Phase == PhaseOver {
		m.Paused = false
		return
	}
	if m.Phase == PhaseWaiting && connected >= m.Config.MinPlayers {
		m.Phase = PhaseActive
	}
	m.Paused = connected < m.Config.MinPlayers
}

// InputEnabled reports whether client gameplay commands are accepted
func (m *Match) InputEnabled() bool {
	return m.Phase == PhaseActive && !m.Paused
}

// Tick decrements the countdown by elapsed time. The countdown only
// runs while Active, unpaused and not Over. Returns true exactly once,
// on the tick the countdown reaches zero.
func (m *Match) Tick(dt float64) (expired bool) {
	if m.Phase != PhaseActive || m.Paused {
		return false
	}
	m.Elapsed += dt
	if m.TimeLeft <= 0 {
		return false
	}
	m.TimeLeft -= dt
	if m.TimeLeft <= 0 {
		m.TimeLeft = 0
		return true
	}
	return false
}

// ScoreReached reports whether a score hits the win threshold
func (m *Match) ScoreReached(score int) bool {
	return score >= m.Config.MaxScore
}

// Finish moves the match to the Over phase. Returns false if it was
// already over; termination may only happen once.
func (m *Match) Finish() bool {
	if m.Phase == PhaseOver {
		return false
	}
	m.Phase = PhaseOver
	return true
}

// Reset rewinds the match for a rematch after game over
func (m *Match) Reset() {
	m.Phase = PhaseWaiting
	m.Paused = true
	m.TimeLeft = m.Config.GameTime
	m.Elapsed = 0
}
