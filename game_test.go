package main

import (
	"strings"
	"sync"
	"testing"
	"time"
	"unicode/utf8"
)

// mockBroadcaster captures sent messages for testing
type mockBroadcaster struct {
	mu       sync.Mutex
	messages []Envelope
	binary   [][]byte
}

func (m *mockBroadcaster) SendJSON(msg interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, msg.(Envelope))
}

func (m *mockBroadcaster) SendBinary(data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.binary = append(m.binary, data)
}

func (m *mockBroadcaster) count(msgType string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, env := range m.messages {
		if env.T == msgType {
			n++
		}
	}
	return n
}

const testDt = 1.0 / TickRate

func TestGameAddRemovePlayer(t *testing.T) {
	g := NewGame(DefaultMatchConfig(), nil, nil, nil)
	mock := &mockBroadcaster{}

	p := g.addPlayer("Tank1", 0, mock)
	if p == nil {
		t.Fatal("join should succeed")
	}
	if p.Name != "Tank1" {
		t.Errorf("expected name Tank1, got %s", p.Name)
	}
	if g.PlayerCount() != 1 {
		t.Errorf("expected 1 player, got %d", g.PlayerCount())
	}
	if g.roster.Size(p.Team) != 1 {
		t.Error("roster should count the new player")
	}

	g.removePlayer(p.ID)
	if g.PlayerCount() != 0 {
		t.Errorf("expected 0 players, got %d", g.PlayerCount())
	}
	if g.roster.Size(p.Team) != 0 {
		t.Error("roster should drop the removed player")
	}
}

func TestJoinReturnsAfterStop(t *testing.T) {
	g := NewGame(DefaultMatchConfig(), nil, nil, nil)

	// The loop is not running, so the command sits in the inbox and
	// no drain will ever answer it.
	done := make(chan *Player, 1)
	go func() { done <- g.Join("Late", 0, nil) }()
	time.Sleep(10 * time.Millisecond)
	g.Stop()

	select {
	case p := <-done:
		if p != nil {
			t.Error("join racing a stopped session should return nil")
		}
	case <-time.After(time.Second):
		t.Fatal("Join did not return after Stop")
	}
}

func TestJoinAfterStopReturnsNil(t *testing.T) {
	g := NewGame(DefaultMatchConfig(), nil, nil, nil)
	g.Stop()
	if p := g.Join("Late", 0, nil); p != nil {
		t.Error("join on a stopped session should return nil")
	}
}

func TestGameGuestNameAssigned(t *testing.T) {
	g := NewGame(DefaultMatchConfig(), nil, nil, nil)
	p := g.addPlayer("", 0, nil)
	if !strings.HasPrefix(p.Name, "Guest_") {
		t.Errorf("empty-name join should get a guest name, got %q", p.Name)
	}
	// The placeholder does not consume the one-shot rename
	g.handleName(nameCmd{playerID: p.ID, name: "Real"})
	if p.Name != "Real" {
		t.Errorf("guest should still be able to claim a name, got %q", p.Name)
	}
}

func TestGameNameTruncatesOnRuneBoundary(t *testing.T) {
	g := NewGame(DefaultMatchConfig(), nil, nil, nil)
	p := g.addPlayer("", 0, nil)

	g.handleName(nameCmd{playerID: p.ID, name: strings.Repeat("ü", maxNameLen+5)})
	if n := utf8.RuneCountInString(p.Name); n != maxNameLen {
		t.Errorf("expected %d runes, got %d", maxNameLen, n)
	}
	if !utf8.ValidString(p.Name) {
		t.Error("truncated name must stay valid UTF-8")
	}
}

func TestGameTeamAlternation(t *testing.T) {
	g := NewGame(DefaultMatchConfig(), nil, nil, nil)
	p1 := g.addPlayer("A", 0, nil)
	p2 := g.addPlayer("B", 0, nil)
	p3 := g.addPlayer("C", 0, nil)
	if p1.Team != 0 || p2.Team != 1 || p3.Team != 0 {
		t.Errorf("teams should alternate 0,1,0; got %d,%d,%d", p1.Team, p2.Team, p3.Team)
	}
}

func TestGameSessionFull(t *testing.T) {
	g := NewGame(DefaultMatchConfig(), nil, nil, nil)
	for i := 0; i < maxPlayersPerSession; i++ {
		if g.addPlayer("", 0, nil) == nil {
			t.Fatalf("join %d should succeed", i)
		}
	}
	if g.addPlayer("Late", 0, nil) != nil {
		t.Error("join past the cap should be rejected")
	}
}

func TestGameCommandDrainOrder(t *testing.T) {
	g := NewGame(DefaultMatchConfig(), nil, nil, nil)
	p := g.addPlayer("A", 0, nil)
	g.addPlayer("B", 0, nil)

	g.inbox <- turretCmd{playerID: p.ID, heading: 90}
	g.inbox <- turretCmd{playerID: p.ID, heading: 180}
	g.step(testDt)

	if p.Turret != 180 {
		t.Errorf("later command should win, turret = %f", p.Turret)
	}
}

func TestGameRosterBroadcastOnDisconnect(t *testing.T) {
	g := NewGame(DefaultMatchConfig(), nil, nil, nil)
	p1 := g.addPlayer("A", 0, nil)
	mock := &mockBroadcaster{}
	g.addPlayer("B", 0, mock)
	g.step(testDt) // settle the join broadcasts
	before := mock.count(MsgRoster)

	g.inbox <- leaveCmd{playerID: p1.ID}
	g.step(testDt)

	if mock.count(MsgRoster) != before+1 {
		t.Error("disconnect should broadcast a roster change")
	}
	if g.roster.Size(p1.Team) != 0 {
		t.Error("roster should be rebalanced at the drain")
	}
}

func TestGameShootCooldown(t *testing.T) {
	g := NewGame(DefaultMatchConfig(), nil, nil, nil)
	p := g.addPlayer("A", 0, nil)
	g.addPlayer("B", 0, nil)
	g.match.UpdatePhase(2)

	g.handleShoot(shootCmd{playerID: p.ID, heading: 0})
	if len(g.projectiles) != 1 {
		t.Fatalf("expected 1 projectile, got %d", len(g.projectiles))
	}

	// A duplicated request a hundredth of a second later must be
	// dropped without side effects.
	g.now += 0.01
	g.handleShoot(shootCmd{playerID: p.ID, heading: 0})
	if len(g.projectiles) != 1 {
		t.Errorf("cooldown should reject the second shot, got %d projectiles", len(g.projectiles))
	}

	g.now += FireRate
	g.handleShoot(shootCmd{playerID: p.ID, heading: 0})
	if len(g.projectiles) != 2 {
		t.Errorf("shot after cooldown should pass, got %d projectiles", len(g.projectiles))
	}
}

func TestGameShootRequiresActiveMatch(t *testing.T) {
	g := NewGame(DefaultMatchConfig(), nil, nil, nil)
	p := g.addPlayer("A", 0, nil)

	// Still waiting for a second player: input is rejected
	g.handleShoot(shootCmd{playerID: p.ID, heading: 0})
	if len(g.projectiles) != 0 {
		t.Error("shot before the match starts should be rejected")
	}
}

func TestGameShotExcludesShooter(t *testing.T) {
	g := NewGame(DefaultMatchConfig(), nil, nil, nil)
	shooterMock := &mockBroadcaster{}
	otherMock := &mockBroadcaster{}
	p := g.addPlayer("A", 0, shooterMock)
	g.addPlayer("B", 0, otherMock)
	g.step(testDt)

	g.inbox <- shootCmd{playerID: p.ID, heading: 0}
	g.step(testDt)

	if shooterMock.count(MsgShot) != 0 {
		t.Error("shooter should not receive its own shot event")
	}
	if otherMock.count(MsgShot) != 1 {
		t.Errorf("other player should receive the shot event, got %d", otherMock.count(MsgShot))
	}
}

func TestGameMoveClampedToWorld(t *testing.T) {
	g := NewGame(DefaultMatchConfig(), nil, nil, nil)
	p := g.addPlayer("A", 0, nil)
	g.addPlayer("B", 0, nil)
	g.match.UpdatePhase(2)

	g.handleMove(moveCmd{playerID: p.ID, x: -50, y: WorldHeight + 50})
	if p.X != 0 || p.Y != WorldHeight {
		t.Errorf("position should clamp to world bounds, got (%f, %f)", p.X, p.Y)
	}
}

func TestGameProjectileTimeoutNoDamage(t *testing.T) {
	g := NewGame(DefaultMatchConfig(), nil, nil, nil)
	p := g.addPlayer("A", 0, nil)
	victim := g.addPlayer("B", 0, nil)
	g.match.UpdatePhase(2)

	// Fire away from the victim so the shot only times out
	victim.X = 0
	victim.Y = 0
	p.X = WorldWidth
	p.Y = WorldHeight
	g.handleShoot(shootCmd{playerID: p.ID, heading: 0})

	for i := 0; i < int(BulletDespawn/testDt)+2; i++ {
		g.stepProjectiles(testDt)
	}
	if len(g.projectiles) != 0 {
		t.Error("timed out projectile should be reclaimed")
	}
	if victim.Health != PlayerMaxHealth {
		t.Error("timeout despawn must not deal damage")
	}
	if len(g.pool.free) != 1 {
		t.Errorf("projectile should return to the pool, free = %d", len(g.pool.free))
	}
}

func TestGamePowerUpPickup(t *testing.T) {
	g := NewGame(DefaultMatchConfig(), nil, nil, nil)
	mock := &mockBroadcaster{}
	p := g.addPlayer("A", 0, mock)
	g.addPlayer("B", 0, nil)
	g.match.UpdatePhase(2)

	pu := g.powerups[0]
	p.X = pu.X
	p.Y = pu.Y
	g.stepPowerUps(testDt)
	g.flushOutbox()

	if pu.Active {
		t.Error("pickup should deactivate on contact")
	}
	if !p.Double {
		t.Error("player should receive the damage buff")
	}
	if mock.count(MsgPowerUp) != 1 {
		t.Error("pickup state change should broadcast")
	}

	// Walk the respawn delay; the pickup comes back and announces it
	p.X = 0
	p.Y = 0
	steps := int(PowerUpRespawn/testDt) + 2
	for i := 0; i < steps; i++ {
		g.stepPowerUps(testDt)
	}
	g.flushOutbox()
	if !pu.Active {
		t.Error("pickup should reactivate after the delay")
	}
	if mock.count(MsgPowerUp) != 2 {
		t.Error("reactivation should broadcast")
	}
}

func TestGameTimeoutUniqueLeaderWins(t *testing.T) {
	g := NewGame(DefaultMatchConfig(), nil, nil, nil)
	mock := &mockBroadcaster{}
	g.addPlayer("A", 0, mock)
	g.addPlayer("B", 0, nil)
	g.match.UpdatePhase(2)
	g.roster.score[0] = 3
	g.roster.score[1] = 1

	g.resolveTimeout()
	g.flushOutbox()

	if g.match.Phase != PhaseOver {
		t.Error("timeout should end the match")
	}
	if mock.count(MsgGameOver) != 1 {
		t.Error("unique leader should produce a game over")
	}
}

func TestGameTimeoutTieIsDraw(t *testing.T) {
	g := NewGame(DefaultMatchConfig(), nil, nil, nil)
	mock := &mockBroadcaster{}
	g.addPlayer("A", 0, mock)
	g.addPlayer("B", 0, nil)
	g.match.UpdatePhase(2)
	g.roster.score[0] = 2
	g.roster.score[1] = 2

	g.resolveTimeout()
	g.flushOutbox()

	if mock.count(MsgGameDraw) != 1 {
		t.Error("tied timeout should produce a draw")
	}
	if mock.count(MsgGameOver) != 0 {
		t.Error("a draw must not also broadcast game over")
	}
}

func TestGameTerminationHappensOnce(t *testing.T) {
	g := NewGame(DefaultMatchConfig(), nil, nil, nil)
	mock := &mockBroadcaster{}
	g.addPlayer("A", 0, mock)
	g.addPlayer("B", 0, nil)
	g.match.UpdatePhase(2)

	g.endGame(0)
	g.endGame(1)
	g.endDraw()
	g.flushOutbox()

	if n := mock.count(MsgGameOver) + mock.count(MsgGameDraw); n != 1 {
		t.Errorf("exactly one termination event should leave a match, got %d", n)
	}
}

func TestGameRespawnSkippedAfterGameOver(t *testing.T) {
	g := NewGame(DefaultMatchConfig(), nil, nil, nil)
	p := g.addPlayer("A", 0, nil)
	g.addPlayer("B", 0, nil)
	g.match.UpdatePhase(2)

	p.Alive = false
	p.ScheduleRespawn()
	g.match.Finish()

	steps := int(RespawnDelay/testDt) + 2
	for i := 0; i < steps; i++ {
		g.stepPlayers(testDt)
	}
	if p.Alive {
		t.Error("respawn after game over must not fire")
	}
}

func TestGameRestart(t *testing.T) {
	g := NewGame(DefaultMatchConfig(), nil, nil, nil)
	mock := &mockBroadcaster{}
	a := g.addPlayer("A", 0, mock)
	b := g.addPlayer("B", 0, nil)
	g.match.UpdatePhase(2)

	a.Kills = 3
	g.roster.score[a.Team] = 3
	g.powerups[0].Take()
	g.handleShoot(shootCmd{playerID: b.ID, heading: 0})
	g.endGame(a.Team)

	g.handleRestart(restartCmd{playerID: a.ID})
	g.flushOutbox()

	if g.match.Phase != PhaseWaiting {
		t.Error("restart should rewind to waiting")
	}
	if g.roster.Score(a.Team) != 0 {
		t.Error("restart should zero the scores")
	}
	if a.Kills != 0 {
		t.Error("restart should zero the counters")
	}
	if len(g.projectiles) != 0 {
		t.Error("restart should clear in-flight projectiles")
	}
	if !g.powerups[0].Active {
		t.Error("restart should reset pickups")
	}
	if mock.count(MsgScore) < g.roster.Teams() {
		t.Error("restart should broadcast the zeroed scores")
	}
}

func TestGameRestartOnlyAfterGameOver(t *testing.T) {
	g := NewGame(DefaultMatchConfig(), nil, nil, nil)
	a := g.addPlayer("A", 0, nil)
	g.addPlayer("B", 0, nil)
	g.match.UpdatePhase(2)
	g.roster.score[0] = 2

	g.handleRestart(restartCmd{playerID: a.ID})
	if g.roster.Score(0) != 2 {
		t.Error("restart mid-match must be rejected")
	}
}

func TestGamePauseFreezesCountdown(t *testing.T) {
	g := NewGame(DefaultMatchConfig(), nil, nil, nil)
	g.addPlayer("A", 0, nil)
	p2 := g.addPlayer("B", 0, nil)
	g.step(testDt)
	if g.match.Phase != PhaseActive {
		t.Fatal("two players should start the match")
	}

	g.inbox <- leaveCmd{playerID: p2.ID}
	g.step(testDt)
	if !g.match.Paused {
		t.Error("dropping below minimum should pause")
	}
	frozen := g.match.TimeLeft
	for i := 0; i < 10; i++ {
		g.step(testDt)
	}
	if g.match.TimeLeft != frozen {
		t.Error("countdown should freeze while paused")
	}

	g.addPlayer("C", 0, nil)
	g.step(testDt)
	if g.match.Paused {
		t.Error("rejoin should unpause")
	}
	if g.match.TimeLeft >= frozen {
		t.Error("countdown should resume")
	}
}

func TestGameSnapshotCadence(t *testing.T) {
	g := NewGame(DefaultMatchConfig(), nil, nil, nil)
	mock := &mockBroadcaster{}
	g.addPlayer("A", 0, mock)

	for i := 0; i < TickRate; i++ {
		g.step(testDt)
	}

	mock.mu.Lock()
	n := len(mock.binary)
	mock.mu.Unlock()
	if n != BroadcastRate {
		t.Errorf("expected %d snapshots over one second, got %d", BroadcastRate, n)
	}
}
