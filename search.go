package hashring

// search returns the smallest table index i such that r.hashes[i] >= target.
// The sentinel guarantees such an index exists for every masked target, so
// the result is always within [0, len(r.hashes)-1].
//
// Instead of bisecting, every probe position is estimated by interpolation:
// assuming hash values spread evenly, the target sits about
// (target - sample) / partition slots away from the sample. The bounds keep
// the usual invariant pair: hashes[hi] >= target and hashes[lo-1] < target.
func (r *Ring[N]) search(target uint64) int {
	var (
		lo = 0
		hi = len(r.hashes) - 1 // Sentinel index.
		i  = 0
	)
	// Every iteration raises lo, lowers hi, or strictly lowers the probe
	// while pinned at hi, so the loop runs a small constant number of times
	// per table slot. The cap turns a broken invariant into a crash instead
	// of a spin.
	limit := 4*len(r.hashes) + 4
	for iter := 0; lo < hi; iter++ {
		if iter > limit {
			panic("hashring: internal error: search did not converge")
		}
		if h := r.hashes[i]; h < target {
			lo = i + 1
			i += step(target-h, r.partition)
			if i > hi {
				i = hi
			}
		} else {
			hi = i
			i -= step(r.hashes[i]-target, r.partition)
			if i < lo {
				i = lo
			}
		}
	}
	assertSearch(r.hashes, target, lo)
	return lo
}

// step estimates how many slots away the target is, given the distance
// between it and the sampled hash. It always moves at least one slot.
func step(distance, partition uint64) int {
	n := distance / partition
	if n == 0 {
		return 1
	}
	return int(n)
}
