package main

import "testing"

func TestProjectileTimeoutDespawn(t *testing.T) {
	pl := &ProjectilePool{}
	owner := NewPlayer("p1", 0, 10, 10)
	proj := FireProjectile(pl, owner, 0)
	if !proj.Alive {
		t.Fatal("fresh projectile should be alive")
	}

	proj.Update(BulletDespawn - 0.01)
	if !proj.Alive {
		t.Error("projectile expired early")
	}
	proj.Update(0.02)
	if proj.Alive {
		t.Error("projectile should despawn after its lifetime")
	}
}

func TestProjectileMoves(t *testing.T) {
	pl := &ProjectilePool{}
	owner := NewPlayer("p1", 0, 10, 10)
	proj := FireProjectile(pl, owner, 0) // heading 0 = +X

	x0 := proj.X
	proj.Update(0.5)
	want := x0 + BulletSpeed*0.5
	if proj.X < want-0.001 || proj.X > want+0.001 {
		t.Errorf("expected X %f, got %f", want, proj.X)
	}
	if proj.Y < 10-0.001 || proj.Y > 10+0.001 {
		t.Errorf("Y should be unchanged, got %f", proj.Y)
	}
}

func TestProjectileSpawnOffset(t *testing.T) {
	pl := &ProjectilePool{}
	owner := NewPlayer("p1", 0, 10, 10)
	proj := FireProjectile(pl, owner, 90) // +Y

	if proj.X < 10-0.001 || proj.X > 10+0.001 {
		t.Errorf("expected spawn X 10, got %f", proj.X)
	}
	want := 10 + BulletOffset
	if proj.Y < want-0.001 || proj.Y > want+0.001 {
		t.Errorf("expected spawn Y %f, got %f", want, proj.Y)
	}
}

func TestFireProjectileSnapshotsOwner(t *testing.T) {
	pl := &ProjectilePool{}
	owner := NewPlayer("p1", 1, 0, 0)
	owner.ActivateDouble(PowerUpUse)
	proj := FireProjectile(pl, owner, 0)

	if !proj.Double {
		t.Error("double flag should be snapshotted at spawn")
	}
	if proj.Team != 1 {
		t.Errorf("expected team snapshot 1, got %d", proj.Team)
	}
	if proj.OwnerID != owner.ID {
		t.Errorf("expected owner %s, got %s", owner.ID, proj.OwnerID)
	}

	// Buff expiring mid-flight must not weaken the shot
	owner.Update(PowerUpUse + 1)
	if !proj.Double {
		t.Error("in-flight projectile should keep its damage snapshot")
	}
}

func TestPoolRecyclesAndResets(t *testing.T) {
	pl := &ProjectilePool{}
	owner := NewPlayer("p1", 0, 0, 0)
	owner.ActivateDouble(PowerUpUse)
	proj := FireProjectile(pl, owner, 45)
	pl.Release(proj)

	got := pl.Acquire()
	if got != proj {
		t.Error("pool should hand back the released projectile")
	}
	if got.Alive || got.Double || got.OwnerID != "" || got.VX != 0 || got.VY != 0 {
		t.Error("released projectile should be fully reset")
	}
}

func TestPoolAllocatesWhenEmpty(t *testing.T) {
	pl := &ProjectilePool{}
	a := pl.Acquire()
	b := pl.Acquire()
	if a == nil || b == nil || a == b {
		t.Error("empty pool should allocate distinct projectiles")
	}
}
