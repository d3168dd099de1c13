package main

const (
	TankRadius      = 1.0
	PlayerMaxHealth = 10
	FireRate        = 0.75 // seconds between accepted shots
	RespawnDelay    = 5.0  // seconds between kill and respawn
)

// Player is the authoritative per-connection session state. Health and
// alive flag are mutated only by the kill resolver; all other fields only
// by the owning game's tick loop.
type Player struct {
	ID        string
	Name      string
	Team      int
	X, Y      float64
	Turret    float64 // turret heading in degrees, client-replicated
	Health    int
	MaxHealth int
	Alive     bool
	Double    bool    // double damage buff active

	// Per-match counters, persisted for authenticated players
	Kills  int
	Deaths int

	// AuthPlayerID links to an account row, 0 for guests
	AuthPlayerID int64

	nameSet  bool
	nextFire float64 // game-clock timestamp of the next allowed shot
	doubleT  float64 // remaining buff duration
	respawnT float64 // remaining respawn delay, 0 = none pending
}

// NewPlayer creates a live player on the given team at a spawn position
func NewPlayer(id string, team int, x, y float64) *Player {
	return &Player{
		ID:        id,
		Team:      team,
		X:         x,
		Y:         y,
		Health:    PlayerMaxHealth,
		MaxHealth: PlayerMaxHealth,
		Alive:     true,
	}
}

// SetName assigns the display name once per session. Later attempts
// are ignored and reported false.
func (p *Player) SetName(name string) bool {
	if p.nameSet {
		return false
	}
	p.Name = name
	p.nameSet = true
	return true
}

// CanShoot reports whether a shot request is valid right now
func (p *Player) CanShoot(now float64) bool {
	return p.Alive && now >= p.nextFire
}

// MarkShot advances the cooldown; called immediately on acceptance so
// duplicated or replayed requests cannot slip through.
func (p *Player) MarkShot(now float64) {
	p.nextFire = now + FireRate
}

// ActivateDouble applies the damage multiplier buff for the given
// duration. Re-applying restarts the timer.
func (p *Player) ActivateDouble(duration float64) {
	p.Double = true
	p.doubleT = duration
}

// ScheduleRespawn arms the respawn timer. Arming again before it fires
// replaces the pending one, never stacks.
func (p *Player) ScheduleRespawn() {
	p.respawnT = RespawnDelay
}

// RespawnPending reports whether a respawn timer is armed
func (p *Player) RespawnPending() bool {
	return !p.Alive && p.respawnT > 0
}

// Respawn brings the player back at the given spawn position
func (p *Player) Respawn(x, y float64) {
	p.X = x
	p.Y = y
	p.Health = p.MaxHealth
	p.Alive = true
	p.respawnT = 0
}

// ResetForMatch rewinds all per-match state for a rematch: fresh spawn,
// full health, no buff, no cooldown, zeroed counters. The display name
// and team assignment survive across rematches.
func (p *Player) ResetForMatch(x, y float64) {
	p.Respawn(x, y)
	p.Double = false
	p.doubleT = 0
	p.nextFire = 0
	p.Kills = 0
	p.Deaths = 0
}

// Update ticks the player's own timers. Returns true when the respawn
// delay elapsed this tick; the caller performs the actual respawn so it
// can pick a spawn point and broadcast.
func (p *Player) Update(dt float64) (respawnDue bool) {
	if p.Double {
		p.doubleT -= dt
		if p.doubleT <= 0 {
			p.Double = false
			p.doubleT = 0
		}
	}
	if !p.Alive && p.respawnT > 0 {
		p.respawnT -= dt
		if p.respawnT <= 0 {
			p.respawnT = 0
			return true
		}
	}
	return false
}

// ToState converts to the replicated protocol state
func (p *Player) ToState() PlayerState {
	return PlayerState{
		ID:     p.ID,
		Name:   p.Name,
		Team:   p.Team,
		X:      p.X,
		Y:      p.Y,
		Turret: p.Turret,
		HP:     p.Health,
		MaxHP:  p.MaxHealth,
		Alive:  p.Alive,
		Double: p.Double,
	}
}
