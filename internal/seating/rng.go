package seating

// ShuffleAlgo identifies the exact hash/PRNG pair used to derive seat
// orderings from a plan seed. Persisted seeds are only replayable while the
// algorithm stays fixed, so a change here requires a new identifier and a
// migration plan for historical plans.
const ShuffleAlgo = "fnv1a32-mulberry32-v1"

// hashSeed reduces a seed string to a 32-bit state using the FNV-1a
// polynomial (offset 2166136261, prime 16777619) over the raw bytes.
// Seeds are ASCII (UUID plus "-year-DEPT" suffixes).
func hashSeed(seed string) uint32 {
	h := uint32(2166136261)
	for i := 0; i < len(seed); i++ {
		h ^= uint32(seed[i])
		h *= 16777619
	}
	return h
}

// mulberry32 returns a generator of floats in [0,1). Not cryptographic;
// callers must not assume otherwise.
func mulberry32(state uint32) func() float64 {
	t := state
	return func() float64 {
		t += 0x6d2b79f5
		r := (t ^ (t >> 15)) * (t | 1)
		r ^= r + (r^(r>>7))*(r|61)
		return float64(r^(r>>14)) / 4294967296
	}
}

// SeededShuffle returns a copy of items reordered by a Fisher-Yates pass
// walking from the last index to the first, drawing one PRNG value per step.
// Same seed, same input order and length give the same output order, always.
func SeededShuffle[T any](items []T, seed string) []T {
	rng := mulberry32(hashSeed(seed))
	out := make([]T, len(items))
	copy(out, items)
	for i := len(out) - 1; i > 0; i-- {
		j := int(rng() * float64(i+1))
		out[i], out[j] = out[j], out[i]
	}
	return out
}
