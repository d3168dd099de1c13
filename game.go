package main

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/vmihailenco/msgpack/v5"
	"go.uber.org/zap"
)

const (
	TickRate       = 60 // simulation ticks per second
	BroadcastRate  = 20 // snapshot broadcasts per second
	TickDuration   = time.Second / TickRate
	BroadcastEvery = TickRate / BroadcastRate
)

const (
	maxProjectilesPerSession = 200
	maxPlayersPerSession     = 16
	inboxSize                = 256
)

// Broadcaster is the client-facing send surface used by the game loop
type Broadcaster interface {
	SendJSON(msg interface{})
	SendBinary(data []byte)
}

// command is a queued client request. Commands are enqueued as they
// arrive and drained in arrival order at the start of each tick, so the
// tick loop stays the sole writer of authoritative state.
type command interface{ isCommand() }

type joinCmd struct {
	name   string
	authID int64
	client Broadcaster
	reply  chan *Player
}

type leaveCmd struct{ playerID string }

type moveCmd struct {
	playerID string
	x, y     float64
}

type shootCmd struct {
	playerID string
	heading  float64
}

type turretCmd struct {
	playerID string
	heading  float64
}

type nameCmd struct {
	playerID string
	name     string
}

type restartCmd struct{ playerID string }

func (joinCmd) isCommand()    {}
func (leaveCmd) isCommand()   {}
func (moveCmd) isCommand()    {}
func (shootCmd) isCommand()   {}
func (turretCmd) isCommand()  {}
func (nameCmd) isCommand()    {}
func (restartCmd) isCommand() {}

// outMsg is an event queued during a tick and flushed at tick end
type outMsg struct {
	exclude string // player ID to skip, "" for everyone
	env     Envelope
}

// Game holds the authoritative state for one session. All maps and
// entities are owned by the tick loop; the only cross-goroutine surfaces
// are the inbox channel, the stop channel and the atomic player count.
type Game struct {
	log       *zap.Logger
	db        *DB
	analytics *Analytics

	teams       []Team
	roster      *Roster
	match       *Match
	players     map[string]*Player
	clients     map[string]Broadcaster
	projectiles map[string]*Projectile
	pool        ProjectilePool
	powerups    []*PowerUp

	inbox  chan command
	outbox []outMsg

	tick uint64
	now  float64 // game clock in seconds, drives cooldown timestamps

	playerCount atomic.Int32
	stopOnce    sync.Once
	stop        chan struct{}
	started     bool // match_start tracked once per round
}

// NewGame creates a session game with the standard teams and pickups.
// db and analytics may be nil (nothing is persisted then).
func NewGame(cfg MatchConfig, db *DB, analytics *Analytics, log *zap.Logger) *Game {
	if log == nil {
		log = zap.NewNop()
	}
	teams := DefaultTeams()
	return &Game{
		log:         log,
		db:          db,
		analytics:   analytics,
		teams:       teams,
		roster:      NewRoster(len(teams)),
		match:       NewMatch(cfg),
		players:     make(map[string]*Player),
		clients:     make(map[string]Broadcaster),
		projectiles: make(map[string]*Projectile),
		powerups:    DefaultPowerUps(),
		inbox:       make(chan command, inboxSize),
		stop:        make(chan struct{}),
	}
}

// Run drives the fixed-step tick loop until Stop
func (g *Game) Run() {
	ticker := time.NewTicker(TickDuration)
	defer ticker.Stop()

	dt := 1.0 / float64(TickRate)
	for {
		select {
		case <-ticker.C:
			g.step(dt)
		case <-g.stop:
			return
		}
	}
}

// Stop terminates the game loop
func (g *Game) Stop() {
	g.stopOnce.Do(func() { close(g.stop) })
}

// PlayerCount returns the number of players, safe from any goroutine
func (g *Game) PlayerCount() int {
	return int(g.playerCount.Load())
}

// Join asks the tick loop to admit a player and waits for the result.
// Returns nil when the session is full.
func (g *Game) Join(name string, authID int64, client Broadcaster) *Player {
	reply := make(chan *Player, 1)
	select {
	case g.inbox <- joinCmd{name: name, authID: authID, client: client, reply: reply}:
	case <-g.stop:
		return nil
	}
	// The session may stop before the next drain; never leave the
	// caller's goroutine parked on a reply that cannot come.
	select {
	case p := <-reply:
		return p
	case <-g.stop:
		return nil
	}
}

// Leave enqueues a disconnect. The roster decrement and broadcast happen
// in the drain at the start of the next tick, never later.
func (g *Game) Leave(playerID string) { g.enqueue(leaveCmd{playerID: playerID}) }

// Move enqueues a position sync from the client-side simulation
func (g *Game) Move(playerID string, x, y float64) { g.enqueue(moveCmd{playerID, x, y}) }

// Shoot enqueues a shot request
func (g *Game) Shoot(playerID string, heading float64) { g.enqueue(shootCmd{playerID, heading}) }

// SetTurret enqueues a turret heading update
func (g *Game) SetTurret(playerID string, heading float64) { g.enqueue(turretCmd{playerID, heading}) }

// SetName enqueues a display name request
func (g *Game) SetName(playerID, name string) { g.enqueue(nameCmd{playerID, name}) }

// Restart enqueues a rematch request, valid only after game over
func (g *Game) Restart(playerID string) { g.enqueue(restartCmd{playerID: playerID}) }

func (g *Game) enqueue(cmd command) {
	select {
	case g.inbox <- cmd:
	case <-g.stop:
	}
}

// step runs one authoritative tick: drain commands, mutate state,
// flush replication.
func (g *Game) step(dt float64) {
	g.tick++
	g.now += dt

	g.drainInbox()

	prev := g.match.Phase
	g.match.UpdatePhase(len(g.players))
	if prev == PhaseWaiting && g.match.Phase == PhaseActive && !g.started {
		g.started = true
		if g.analytics != nil {
			g.analytics.Track(EvtMatchStart, 0, "")
		}
	}

	g.stepPlayers(dt)
	g.stepProjectiles(dt)
	g.stepPowerUps(dt)

	if g.match.Tick(dt) {
		g.resolveTimeout()
	}

	g.flushOutbox()
	if g.tick%BroadcastEvery == 0 {
		g.broadcastSnapshot()
	}
}

// drainInbox applies queued commands in arrival order
func (g *Game) drainInbox() {
	for {
		select {
		case cmd := <-g.inbox:
			g.apply(cmd)
		default:
			return
		}
	}
}

func (g *Game) apply(cmd command) {
	switch c := cmd.(type) {
	case joinCmd:
		c.reply <- g.addPlayer(c.name, c.authID, c.client)
	case leaveCmd:
		g.removePlayer(c.playerID)
	case moveCmd:
		g.handleMove(c)
	case shootCmd:
		g.handleShoot(c)
	case turretCmd:
		g.handleTurret(c)
	case nameCmd:
		g.handleName(c)
	case restartCmd:
		g.handleRestart(c)
	}
}

// addPlayer admits a player: team assignment, spawn placement, roster
// bookkeeping and the roster broadcast.
func (g *Game) addPlayer(name string, authID int64, client Broadcaster) *Player {
	if len(g.players) >= maxPlayersPerSession {
		return nil
	}
	team := g.roster.AssignTeam()
	x, y := SpawnPoint(g.teams[team])
	p := NewPlayer(GenerateID(4), team, x, y)
	p.AuthPlayerID = authID
	if name != "" {
		p.SetName(name)
	} else {
		// Placeholder only; the one-shot rename stays available
		p.Name = GenerateGuestName()
	}
	g.players[p.ID] = p
	if client != nil {
		g.clients[p.ID] = client
	}
	g.roster.Join(team)
	g.playerCount.Store(int32(len(g.players)))
	g.broadcast(Envelope{T: MsgRoster, Data: RosterMsg{Team: team, Size: g.roster.Size(team)}})
	g.log.Info("player joined",
		zap.String("player", p.ID),
		zap.Int("team", team),
	)
	return p
}

// removePlayer drops a player and rebalances the roster
func (g *Game) removePlayer(playerID string) {
	p, ok := g.players[playerID]
	if !ok {
		return
	}
	delete(g.players, playerID)
	delete(g.clients, playerID)
	g.roster.Leave(p.Team)
	g.playerCount.Store(int32(len(g.players)))
	g.broadcast(Envelope{T: MsgRoster, Data: RosterMsg{Team: p.Team, Size: g.roster.Size(p.Team)}})
	g.log.Info("player left", zap.String("player", playerID))
}

func (g *Game) handleMove(c moveCmd) {
	p, ok := g.players[c.playerID]
	if !ok || !p.Alive || !g.match.InputEnabled() {
		return
	}
	p.X = Clamp(c.x, 0, WorldWidth)
	p.Y = Clamp(c.y, 0, WorldHeight)
}

// handleShoot validates the cooldown and phase, then spawns a pooled
// projectile. The spawn is announced to everyone except the shooter,
// whose client already predicted a local copy.
func (g *Game) handleShoot(c shootCmd) {
	p, ok := g.players[c.playerID]
	if !ok || !g.match.InputEnabled() || !p.CanShoot(g.now) {
		return
	}
	if len(g.projectiles) >= maxProjectilesPerSession {
		return
	}
	p.MarkShot(g.now)
	proj := FireProjectile(&g.pool, p, NormalizeDegrees(c.heading))
	g.projectiles[proj.ID] = proj
	g.broadcastExcept(p.ID, Envelope{T: MsgShot, Data: ShotMsg{
		ID:      proj.ID,
		Owner:   proj.OwnerID,
		X:       proj.X,
		Y:       proj.Y,
		Heading: proj.Heading,
		Double:  proj.Double,
	}})
}

func (g *Game) handleTurret(c turretCmd) {
	p, ok := g.players[c.playerID]
	if !ok || !p.Alive {
		return
	}
	p.Turret = NormalizeDegrees(c.heading)
}

func (g *Game) handleName(c nameCmd) {
	p, ok := g.players[c.playerID]
	if !ok {
		return
	}
	name := TruncateRunes(c.name, maxNameLen)
	if name != "" {
		p.SetName(name)
	}
}

// handleRestart resets the session for a rematch. Only valid once the
// match is over; anyone still connected may trigger it.
func (g *Game) handleRestart(c restartCmd) {
	if _, ok := g.players[c.playerID]; !ok || g.match.Phase != PhaseOver {
		return
	}
	for id, proj := range g.projectiles {
		delete(g.projectiles, id)
		g.pool.Release(proj)
	}
	for _, pu := range g.powerups {
		wasInactive := !pu.Active
		pu.Reset()
		if wasInactive {
			g.broadcast(Envelope{T: MsgPowerUp, Data: PowerUpMsg{ID: pu.ID, Active: true}})
		}
	}
	g.roster.ResetScores()
	for team := 0; team < g.roster.Teams(); team++ {
		g.broadcast(Envelope{T: MsgScore, Data: ScoreMsg{Team: team, Score: 0}})
	}
	for _, p := range g.players {
		x, y := SpawnPoint(g.teams[p.Team])
		p.ResetForMatch(x, y)
	}
	g.match.Reset()
	g.started = false
	g.log.Info("match restarted", zap.String("by", c.playerID))
}

// stepPlayers ticks buff and respawn timers
func (g *Game) stepPlayers(dt float64) {
	for _, p := range g.players {
		if p.Update(dt) {
			g.respawn(p)
		}
	}
}

// respawn brings a player back once the delay elapsed. A respawn firing
// after the game ended performs no mutation.
func (g *Game) respawn(p *Player) {
	if g.match.Phase == PhaseOver {
		return
	}
	x, y := SpawnPoint(g.teams[p.Team])
	p.Respawn(x, y)
	g.broadcast(Envelope{T: MsgRespawned, Data: RespawnedMsg{ID: p.ID, X: x, Y: y}})
}

// stepProjectiles advances shots, resolves hits and reclaims despawned
// projectiles into the pool. Timeout despawns cause no damage.
func (g *Game) stepProjectiles(dt float64) {
	for id, proj := range g.projectiles {
		proj.Update(dt)
		if proj.Alive {
			for _, p := range g.players {
				if !p.Alive || p.ID == proj.OwnerID {
					continue
				}
				if CheckCollision(proj.X, proj.Y, BulletRadius, p.X, p.Y, TankRadius) {
					g.ResolveHit(proj, p)
					break
				}
			}
		}
		if !proj.Alive {
			delete(g.projectiles, id)
			g.pool.Release(proj)
		}
	}
}

// stepPowerUps ticks pickup respawn timers and applies pickups on contact
func (g *Game) stepPowerUps(dt float64) {
	for _, pu := range g.powerups {
		if pu.Update(dt) {
			g.broadcast(Envelope{T: MsgPowerUp, Data: PowerUpMsg{ID: pu.ID, Active: true}})
		}
		if !pu.Active || g.match.Phase == PhaseOver {
			continue
		}
		for _, p := range g.players {
			if !p.Alive {
				continue
			}
			if CheckCollision(pu.X, pu.Y, PowerUpRadius, p.X, p.Y, TankRadius) {
				pu.Take()
				p.ActivateDouble(PowerUpUse)
				g.broadcast(Envelope{T: MsgPowerUp, Data: PowerUpMsg{ID: pu.ID, Active: false}})
				if g.analytics != nil {
					g.analytics.Track(EvtPowerUpTaken, p.AuthPlayerID, p.ID)
				}
				break
			}
		}
	}
}

// resolveTimeout decides the countdown-expiry outcome: the unique
// highest-scoring team wins, any tie at the maximum is a draw.
func (g *Game) resolveTimeout() {
	team, _, unique := g.roster.MaxScore()
	if unique {
		g.endGame(team)
	} else {
		g.endDraw()
	}
}

// endGame terminates the match with a winner. Exactly one termination
// broadcast ever leaves a match; later triggers are no-ops.
func (g *Game) endGame(team int) {
	if !g.match.Finish() {
		return
	}
	g.broadcast(Envelope{T: MsgGameOver, Data: GameOverMsg{Team: team}})
	g.log.Info("game over", zap.Int("winner", team))
	g.persistMatch(team)
}

// endDraw terminates the match without a winner
func (g *Game) endDraw() {
	if !g.match.Finish() {
		return
	}
	g.broadcast(Envelope{T: MsgGameDraw})
	g.log.Info("game draw")
	g.persistMatch(-1)
}

// persistMatch records the finished match and the per-player stats of
// authenticated participants.
func (g *Game) persistMatch(winner int) {
	if g.analytics != nil {
		g.analytics.Track(EvtMatchEnd, 0, "")
	}
	if g.db == nil {
		return
	}
	matchID, err := g.db.RecordMatch(winner, g.match.Elapsed)
	if err != nil {
		g.log.Warn("record match", zap.Error(err))
		return
	}
	for _, p := range g.players {
		if p.AuthPlayerID == 0 {
			continue
		}
		won := p.Team == winner
		if err := g.db.RecordMatchPlayer(matchID, p.AuthPlayerID, p.Team, p.Kills, p.Deaths); err != nil {
			g.log.Warn("record match player", zap.Error(err))
		}
		if err := g.db.UpdateStatsAfterMatch(p.AuthPlayerID, p.Kills, p.Deaths, won, g.match.Elapsed); err != nil {
			g.log.Warn("update stats", zap.Error(err))
		}
	}
}

// broadcast queues a one-shot event for all connected clients. Events
// are flushed in order at tick end.
func (g *Game) broadcast(env Envelope) {
	g.outbox = append(g.outbox, outMsg{env: env})
}

// broadcastExcept queues an event for all clients except one
func (g *Game) broadcastExcept(playerID string, env Envelope) {
	g.outbox = append(g.outbox, outMsg{exclude: playerID, env: env})
}

// flushOutbox delivers queued events. Slow clients never block the tick;
// their sends are dropped by the client's buffered send path.
func (g *Game) flushOutbox() {
	if len(g.outbox) == 0 {
		return
	}
	for _, m := range g.outbox {
		for id, client := range g.clients {
			if id == m.exclude {
				continue
			}
			client.SendJSON(m.env)
		}
	}
	g.outbox = g.outbox[:0]
}

// broadcastSnapshot pushes the latest values of all continuously
// replicated fields as one msgpack binary message.
func (g *Game) broadcastSnapshot() {
	if len(g.clients) == 0 {
		return
	}
	state := GameState{
		Tick:        g.tick,
		Phase:       int(g.match.Phase),
		Paused:      g.match.Paused,
		TimeLeft:    g.match.TimeLeft,
		Sizes:       g.roster.Sizes(),
		Scores:      g.roster.Scores(),
		Players:     make([]PlayerState, 0, len(g.players)),
		Projectiles: make([]ProjectileState, 0, len(g.projectiles)),
		PowerUps:    make([]PowerUpState, 0, len(g.powerups)),
	}
	for _, p := range g.players {
		state.Players = append(state.Players, p.ToState())
	}
	for _, proj := range g.projectiles {
		state.Projectiles = append(state.Projectiles, proj.ToState())
	}
	for _, pu := range g.powerups {
		state.PowerUps = append(state.PowerUps, pu.ToState())
	}
	data, err := msgpack.Marshal(state)
	if err != nil {
		g.log.Warn("encode snapshot", zap.Error(err))
		return
	}
	for _, client := range g.clients {
		client.SendBinary(data)
	}
}
