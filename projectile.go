package main

const (
	BulletSpeed   = 10.0 // units/s
	BulletDamage  = 3
	BulletDespawn = 1.0 // seconds until timeout despawn
	BulletRadius  = 0.25
	BulletOffset  = 1.2 // spawn distance from tank center
)

// Projectile is an in-flight shot. The owner is referenced by stable ID
// plus a team snapshot taken at spawn time, so a hit still resolves
// correctly after the owner disconnects mid-flight.
type Projectile struct {
	ID      string
	OwnerID string
	Team    int // owner's team at spawn time, for friendly-fire checks
	X, Y    float64
	VX, VY  float64
	Heading float64 // degrees
	Damage  int
	Double  bool // damage multiplier snapshot at spawn time
	Life    float64
	Alive   bool
}

// Update moves the projectile one tick; expires it on timeout
func (p *Projectile) Update(dt float64) {
	if !p.Alive {
		return
	}
	p.X += p.VX * dt
	p.Y += p.VY * dt
	p.Life -= dt
	if p.Life <= 0 {
		p.Alive = false
	}
}

// ToState converts to the replicated protocol state
func (p *Projectile) ToState() ProjectileState {
	return ProjectileState{
		ID:    p.ID,
		X:     p.X,
		Y:     p.Y,
		H:     p.Heading,
		Owner: p.OwnerID,
	}
}

// ProjectilePool recycles projectile structs across shots instead of
// allocating per shot. Single-writer use only, no locking.
type ProjectilePool struct {
	free []*Projectile
}

// Acquire returns a projectile ready for initialization
func (pl *ProjectilePool) Acquire() *Projectile {
	n := len(pl.free)
	if n == 0 {
		return &Projectile{}
	}
	p := pl.free[n-1]
	pl.free = pl.free[:n-1]
	return p
}

// Release resets ownership, velocity and flags before returning the
// projectile to the pool.
func (pl *ProjectilePool) Release(p *Projectile) {
	*p = Projectile{}
	pl.free = append(pl.free, p)
}

// FireProjectile initializes a pooled projectile from a shooter's state
// and the requested heading. The damage multiplier is snapshotted here;
// a buff expiring mid-flight does not weaken the shot.
func FireProjectile(pl *ProjectilePool, owner *Player, heading float64) *Projectile {
	dx, dy := HeadingVector(heading)
	p := pl.Acquire()
	p.ID = GenerateID(3)
	p.OwnerID = owner.ID
	p.Team = owner.Team
	p.X = owner.X + dx*BulletOffset
	p.Y = owner.Y + dy*BulletOffset
	p.VX = dx * BulletSpeed
	p.VY = dy * BulletSpeed
	p.Heading = heading
	p.Damage = BulletDamage
	p.Double = owner.Double
	p.Life = BulletDespawn
	p.Alive = true
	return p
}
