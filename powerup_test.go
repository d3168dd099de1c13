package main

import "testing"

func TestPowerUpCycle(t *testing.T) {
	pu := &PowerUp{ID: "pu1", X: 5, Y: 5, Active: true}

	pu.Take()
	if pu.Active {
		t.Fatal("pickup should be inactive after take")
	}

	if pu.Update(PowerUpRespawn - 0.1) {
		t.Error("pickup reactivated early")
	}
	if !pu.Update(0.2) {
		t.Error("pickup should reactivate once the delay elapsed")
	}
	if !pu.Active {
		t.Error("pickup should be active again")
	}
}

func TestPowerUpUpdateWhileActive(t *testing.T) {
	pu := &PowerUp{ID: "pu1", Active: true}
	if pu.Update(100) {
		t.Error("active pickup should never report reactivation")
	}
}

func TestPowerUpReset(t *testing.T) {
	pu := &PowerUp{ID: "pu1", Active: true}
	pu.Take()
	pu.Update(1)
	pu.Reset()
	if !pu.Active {
		t.Error("reset should force the pickup active")
	}
	if pu.Update(0.01) {
		t.Error("reset pickup should carry no pending reactivation")
	}
}

func TestDefaultPowerUpsPlacement(t *testing.T) {
	pus := DefaultPowerUps()
	if len(pus) != 3 {
		t.Fatalf("expected 3 pickups, got %d", len(pus))
	}
	seen := make(map[string]bool)
	for _, pu := range pus {
		if !pu.Active {
			t.Errorf("pickup %s should start active", pu.ID)
		}
		if seen[pu.ID] {
			t.Errorf("duplicate pickup ID %s", pu.ID)
		}
		seen[pu.ID] = true
		if pu.X != WorldWidth/2 {
			t.Errorf("pickup %s should sit on the midline, got X %f", pu.ID, pu.X)
		}
	}
}
