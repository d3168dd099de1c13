package main

// CheckCollision checks if two circles overlap
func CheckCollision(x1, y1, r1, x2, y2, r2 float64) bool {
	return Distance(x1, y1, x2, y2) <= r1+r2
}
