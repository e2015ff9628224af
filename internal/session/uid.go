package session

import "math/rand/v2"

const uidBound = 1_000_000_000

// RandomUID returns a random 9-digit participant uid. Uniqueness is
// per-session-attempt only; there is no collision check. The generator is
// pluggable on the Manager so a stronger scheme can replace it without
// touching call sites.
func RandomUID() int {
	return rand.IntN(uidBound)
}
