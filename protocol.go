package main

import "encoding/json"

// Client -> Server message types
const (
	MsgJoin     = "join"
	MsgLeave    = "leave"
	MsgCreate   = "create" // create session
	MsgList     = "list"   // list sessions
	MsgCheck    = "check"  // check if session exists
	MsgMove     = "move"   // client-simulated tank position sync
	MsgShoot    = "shoot"
	MsgTurret   = "turret" // set turret heading
	MsgName     = "name"   // set display name (once)
	MsgRestart  = "restart"
	MsgRegister = "register"
	MsgLogin    = "login"
	MsgAuth     = "auth"   // token re-auth
	MsgProfile  = "profile"
)

// Server -> Client message types
const (
	MsgState       = "state"     // msgpack binary snapshot
	MsgWelcome     = "welcome"
	MsgJoined      = "joined"
	MsgCreated     = "created"
	MsgSessions    = "sessions"
	MsgChecked     = "checked"
	MsgError       = "error"
	MsgRoster      = "roster"    // team player count changed
	MsgScore       = "score"     // team score changed
	MsgKilled      = "killed"    // a player died, carries killer identity
	MsgRespawned   = "respawned" // respawn delay elapsed
	MsgGameOver    = "game_over"
	MsgGameDraw    = "game_draw"
	MsgShot        = "shot"      // projectile spawned (to all but shooter)
	MsgPowerUp     = "powerup"   // pickup active state changed
	MsgAuthOK      = "auth_ok"
	MsgProfileData = "profile_data"
)

// Envelope wraps all outgoing messages with a type field
type Envelope struct {
	T    string      `json:"t"`
	Data interface{} `json:"d,omitempty"`
}

// InEnvelope is used for incoming messages — json.RawMessage avoids double-unmarshal
type InEnvelope struct {
	T string          `json:"t"`
	D json.RawMessage `json:"d,omitempty"`
}

// JoinMsg is sent when a player wants to join a session
type JoinMsg struct {
	Name      string `json:"name"`
	SessionID string `json:"sid"`
}

// CreateMsg is sent when a player wants to create a session
type CreateMsg struct {
	Name        string `json:"name"`
	SessionName string `json:"sname"`
}

// CheckMsg asks whether a session exists
type CheckMsg struct {
	SID string `json:"sid"`
}

// CheckedMsg is the response to a session check
type CheckedMsg struct {
	SID     string `json:"sid"`
	Exists  bool   `json:"exists"`
	Name    string `json:"name,omitempty"`
	Players int    `json:"players,omitempty"`
}

// MoveMsg syncs the client-simulated tank position
type MoveMsg struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// ShootMsg requests a shot in the given heading (degrees)
type ShootMsg struct {
	Heading float64 `json:"h"`
}

// TurretMsg sets the turret heading (degrees)
type TurretMsg struct {
	Heading float64 `json:"h"`
}

// NameMsg sets the display name, accepted once per session
type NameMsg struct {
	Name string `json:"name"`
}

// WelcomeMsg is sent to a player when they join
type WelcomeMsg struct {
	ID   string  `json:"id"`
	Team int     `json:"team"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
}

// RosterMsg announces a team's player count change
type RosterMsg struct {
	Team int `json:"team"`
	Size int `json:"size"`
}

// ScoreMsg announces a team's score change
type ScoreMsg struct {
	Team  int `json:"team"`
	Score int `json:"score"`
}

// KilledMsg announces a kill, carrying the killer identity. Killer
// fields are empty when the shooter disconnected before the hit landed.
type KilledMsg struct {
	VictimID   string `json:"vid"`
	KillerID   string `json:"kid,omitempty"`
	KillerName string `json:"kn,omitempty"`
	KillerTeam int    `json:"kt"`
}

// RespawnedMsg announces a player coming back after the respawn delay
type RespawnedMsg struct {
	ID string  `json:"id"`
	X  float64 `json:"x"`
	Y  float64 `json:"y"`
}

// GameOverMsg announces the winning team
type GameOverMsg struct {
	Team int `json:"team"`
}

// ShotMsg announces a spawned projectile to everyone but the shooter,
// who already simulated a local copy.
type ShotMsg struct {
	ID      string  `json:"id"`
	Owner   string  `json:"o"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Heading float64 `json:"h"`
	Double  bool    `json:"dd,omitempty"`
}

// PowerUpMsg announces a pickup's active state change
type PowerUpMsg struct {
	ID     string `json:"id"`
	Active bool   `json:"active"`
}

// PlayerState is the continuously replicated per-player snapshot
type PlayerState struct {
	ID     string  `json:"id" msgpack:"id"`
	Name   string  `json:"n" msgpack:"n"`
	Team   int     `json:"t" msgpack:"t"`
	X      float64 `json:"x" msgpack:"x"`
	Y      float64 `json:"y" msgpack:"y"`
	Turret float64 `json:"tr" msgpack:"tr"`
	HP     int     `json:"hp" msgpack:"hp"`
	MaxHP  int     `json:"mhp" msgpack:"mhp"`
	Alive  bool    `json:"a" msgpack:"a"`
	Double bool    `json:"dd" msgpack:"dd"`
}

// ProjectileState is the replicated per-projectile snapshot
type ProjectileState struct {
	ID    string  `json:"id" msgpack:"id"`
	X     float64 `json:"x" msgpack:"x"`
	Y     float64 `json:"y" msgpack:"y"`
	H     float64 `json:"h" msgpack:"h"`
	Owner string  `json:"o" msgpack:"o"`
}

// PowerUpState is the replicated per-pickup snapshot
type PowerUpState struct {
	ID     string  `json:"id" msgpack:"id"`
	X      float64 `json:"x" msgpack:"x"`
	Y      float64 `json:"y" msgpack:"y"`
	Active bool    `json:"active" msgpack:"active"`
}

// GameState is the full snapshot of continuously replicated fields,
// broadcast as a binary msgpack message at the broadcast cadence.
type GameState struct {
	Tick        uint64            `json:"tick" msgpack:"tick"`
	Phase       int               `json:"phase" msgpack:"phase"`
	Paused      bool              `json:"paused" msgpack:"paused"`
	TimeLeft    float64           `json:"time" msgpack:"time"`
	Sizes       []int             `json:"sizes" msgpack:"sizes"`
	Scores      []int             `json:"scores" msgpack:"scores"`
	Players     []PlayerState     `json:"p" msgpack:"p"`
	Projectiles []ProjectileState `json:"pr" msgpack:"pr"`
	PowerUps    []PowerUpState    `json:"pu" msgpack:"pu"`
}

// SessionInfo is used in the session list
type SessionInfo struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Players int    `json:"players"`
}

// ErrorMsg sends an error to the client
type ErrorMsg struct {
	Msg string `json:"msg"`
}

// RegisterMsg creates an account
type RegisterMsg struct {
	Username string `json:"u"`
	Password string `json:"p"`
}

// LoginMsg authenticates with credentials
type LoginMsg struct {
	Username string `json:"u"`
	Password string `json:"p"`
}

// AuthMsg authenticates with a previously issued token
type AuthMsg struct {
	Token string `json:"token"`
}

// AuthOKMsg confirms authentication
type AuthOKMsg struct {
	Token    string `json:"token"`
	Username string `json:"username"`
	PlayerID int64  `json:"pid"`
}

// ProfileDataMsg returns persisted account stats
type ProfileDataMsg struct {
	Username string  `json:"username"`
	Kills    int     `json:"kills"`
	Deaths   int     `json:"deaths"`
	Wins     int     `json:"wins"`
	Losses   int     `json:"losses"`
	Playtime float64 `json:"playtime"`
}
