package main

// World dimensions in arena units. Tanks move on a flat plane; positions
// are clamped to these bounds rather than wrapped.
const (
	WorldWidth  = 60.0
	WorldHeight = 40.0
)

// SpawnSampleAttempts bounds the rejection sampling loop in SpawnPoint.
const SpawnSampleAttempts = 10

// RegionShape describes the geometry of a spawn region.
type RegionShape int

const (
	RegionPoint   RegionShape = 0 // single point, no area
	RegionRect    RegionShape = 1
	RegionEllipse RegionShape = 2
)

// SpawnRegion is a team's spawn area. X/Y is the anchor (center) point;
// W/H are the full extents of the bounding box when the region has area.
type SpawnRegion struct {
	X, Y  float64
	W, H  float64
	Shape RegionShape
}

// Contains reports whether a point lies inside the region. A point region
// contains nothing but its anchor; unknown shapes contain nothing, which
// makes SpawnPoint fall back to the anchor.
func (r SpawnRegion) Contains(x, y float64) bool {
	switch r.Shape {
	case RegionPoint:
		return x == r.X && y == r.Y
	case RegionRect:
		return x >= r.X-r.W/2 && x <= r.X+r.W/2 &&
			y >= r.Y-r.H/2 && y <= r.Y+r.H/2
	case RegionEllipse:
		if r.W <= 0 || r.H <= 0 {
			return false
		}
		dx := (x - r.X) / (r.W / 2)
		dy := (y - r.Y) / (r.H / 2)
		return dx*dx+dy*dy <= 1
	}
	return false
}

// Team defines one playing team. Created at session configuration,
// never mutated afterwards.
type Team struct {
	Index int
	Name  string
	Color string // hex color for client tinting
	Spawn SpawnRegion
}

// DefaultTeams returns the standard two-team arena setup with spawn
// areas on opposite ends of the world.
func DefaultTeams() []Team {
	return []Team{
		{Index: 0, Name: "Red", Color: "#d43f3f",
			Spawn: SpawnRegion{X: 6, Y: WorldHeight / 2, W: 8, H: 20, Shape: RegionRect}},
		{Index: 1, Name: "Blue", Color: "#3f6fd4",
			Spawn: SpawnRegion{X: WorldWidth - 6, Y: WorldHeight / 2, W: 8, H: 20, Shape: RegionRect}},
	}
}

// SpawnPoint returns a spawn position inside the team's region. Regions
// with area are sampled uniformly over their bounding box, resampling
// until the point lies inside the region; if the attempt budget runs out
// the anchor point is returned.
func SpawnPoint(team Team) (float64, float64) {
	r := team.Spawn
	if r.Shape == RegionPoint || (r.W == 0 && r.H == 0) {
		return r.X, r.Y
	}
	for i := 0; i < SpawnSampleAttempts; i++ {
		x := r.X - r.W/2 + randFloat()*r.W
		y := r.Y - r.H/2 + randFloat()*r.H
		if r.Contains(x, y) {
			return x, y
		}
	}
	return r.X, r.Y
}

// Roster tracks live player counts and scores per team. It is mutated
// only from the owning game's tick loop.
type Roster struct {
	size  []int
	score []int
}

// NewRoster creates a roster for the given team count
func NewRoster(teams int) *Roster {
	return &Roster{
		size:  make([]int, teams),
		score: make([]int, teams),
	}
}

// Teams returns the number of teams
func (r *Roster) Teams() int { return len(r.size) }

// Size returns the player count of a team
func (r *Roster) Size(team int) int { return r.size[team] }

// Score returns the score of a team
func (r *Roster) Score(team int) int { return r.score[team] }

// Sizes returns a copy of all team sizes
func (r *Roster) Sizes() []int {
	out := make([]int, len(r.size))
	copy(out, r.size)
	return out
}

// Scores returns a copy of all team scores
func (r *Roster) Scores() []int {
	out := make([]int, len(r.score))
	copy(out, r.score)
	return out
}

// PlayerCount returns the total number of rostered players
func (r *Roster) PlayerCount() int {
	n := 0
	for _, s := range r.size {
		n += s
	}
	return n
}

// AssignTeam returns the team a joining player should be placed on:
// the team with the minimum current count, ties broken by the lowest
// index encountered in a left-to-right scan. Deterministic by design.
func (r *Roster) AssignTeam() int {
	team := 0
	min := r.size[0]
	for i := 1; i < len(r.size); i++ {
		if r.size[i] < min {
			min = r.size[i]
			team = i
		}
	}
	return team
}

// Join increments a team's player count
func (r *Roster) Join(team int) { r.size[team]++ }

// Leave decrements a team's player count, never below zero
func (r *Roster) Leave(team int) {
	if r.size[team] > 0 {
		r.size[team]--
	}
}

// AddScore increments a team's score and returns the new value
func (r *Roster) AddScore(team int) int {
	r.score[team]++
	return r.score[team]
}

// ResetScores zeroes all team scores for a new round
func (r *Roster) ResetScores() {
	for i := range r.score {
		r.score[i] = 0
	}
}

// MaxScore returns the highest score, the first team holding it, and
// whether that team holds it alone.
func (r *Roster) MaxScore() (team, score int, unique bool) {
	score = r.score[0]
	for i := 1; i < len(r.score); i++ {
		if r.score[i] > score {
			score = r.score[i]
			team = i
		}
	}
	unique = true
	for i := range r.score {
		if i != team && r.score[i] == score {
			unique = false
			break
		}
	}
	return team, score, unique
}
