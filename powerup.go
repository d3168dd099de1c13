package main

const (
	PowerUpRadius  = 0.8
	PowerUpRespawn = 15.0 // seconds until a taken pickup reactivates
	PowerUpUse     = 5.0  // seconds the damage buff lasts on a player
)

// PowerUp is a double-damage pickup. Pickups are placed once at session
// setup and cycle Active -> Inactive -> Active for the whole session.
type PowerUp struct {
	ID       string
	X, Y     float64
	Active   bool
	respawnT float64 // remaining respawn delay, valid while inactive
}

// DefaultPowerUps returns the standard pickup placement for the arena:
// one in the center and one on each flank of the midline.
func DefaultPowerUps() []*PowerUp {
	return []*PowerUp{
		{ID: "pu-mid", X: WorldWidth / 2, Y: WorldHeight / 2, Active: true},
		{ID: "pu-top", X: WorldWidth / 2, Y: WorldHeight * 0.2, Active: true},
		{ID: "pu-bot", X: WorldWidth / 2, Y: WorldHeight * 0.8, Active: true},
	}
}

// Take deactivates the pickup and arms its respawn timer
func (pu *PowerUp) Take() {
	pu.Active = false
	pu.respawnT = PowerUpRespawn
}

// Reset forces the pickup back to its initial active state
func (pu *PowerUp) Reset() {
	pu.Active = true
	pu.respawnT = 0
}

// Update ticks the respawn timer. Returns true when the pickup
// reactivated this tick so the caller can broadcast the change.
func (pu *PowerUp) Update(dt float64) (reactivated bool) {
	if pu.Active {
		return false
	}
	pu.respawnT -= dt
	if pu.respawnT <= 0 {
		pu.respawnT = 0
		pu.Active = true
		return true
	}
	return false
}

// ToState converts to the replicated protocol state
func (pu *PowerUp) ToState() PowerUpState {
	return PowerUpState{
		ID:     pu.ID,
		X:      pu.X,
		Y:      pu.Y,
		Active: pu.Active,
	}
}
