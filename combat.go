package main

import "go.uber.org/zap"

// ResolveHit judges a projectile-player collision on the authoritative
// side. Friendly fire and self hits are categorically excluded: the
// projectile despawns with no damage. A qualifying hit applies damage,
// and on a kill attributes the score, checks the win threshold and arms
// the victim's respawn. A projectile resolves at most once; the caller
// reclaims it once Alive is false.
func (g *Game) ResolveHit(proj *Projectile, target *Player) {
	if !proj.Alive || target == nil || !target.Alive {
		return
	}
	proj.Alive = false

	if target.ID == proj.OwnerID || target.Team == proj.Team {
		return
	}

	damage := proj.Damage
	if proj.Double {
		damage *= 2
	}
	target.Health -= damage
	if target.Health > 0 {
		// Non-lethal: the new health value reaches clients via the
		// next snapshot.
		return
	}
	target.Health = 0

	// Kills after the match ended score nothing
	if g.match.Phase == PhaseOver {
		return
	}

	target.Deaths++

	// Owner liveness check: the shooter may have disconnected while the
	// projectile was in flight. The kill still resolves, only the
	// scoring attribution is skipped.
	killed := KilledMsg{VictimID: target.ID, KillerTeam: -1}
	if killer, ok := g.players[proj.OwnerID]; ok {
		killer.Kills++
		killed.KillerID = killer.ID
		killed.KillerName = killer.Name
		killed.KillerTeam = killer.Team

		score := g.roster.AddScore(killer.Team)
		// Score goes out before any game-over broadcast so no client
		// ever sees a game over for a score it has not received.
		g.broadcast(Envelope{T: MsgScore, Data: ScoreMsg{Team: killer.Team, Score: score}})
		if g.analytics != nil {
			g.analytics.Track(EvtPlayerKill, killer.AuthPlayerID, killer.ID)
		}
		if g.match.ScoreReached(score) {
			g.endGame(killer.Team)
			return
		}
	}

	// Health snaps back to max ahead of the respawn; the player stays
	// hidden behind the alive flag until the delay elapses.
	target.Health = target.MaxHealth
	target.Alive = false
	target.ScheduleRespawn()
	g.broadcast(Envelope{T: MsgKilled, Data: killed})
	g.log.Debug("player killed",
		zap.String("victim", target.ID),
		zap.String("killer", killed.KillerID),
	)
}
