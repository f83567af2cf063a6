package bdd

// LevelSwap recursively transforms ref so that the variable formerly at
// level i+1 moves to level i and vice versa (spec §4.5 "Level swap").
// Recursion is memoized per call so sharing is preserved.
func (m *Manager) LevelSwap(root Ref, i int) Ref {
	memo := make(map[Ref]Ref)
	var swap func(Ref) Ref
	swap = func(ref Ref) Ref {
		if IsTerminal(ref) {
			return ref
		}
		if v, ok := memo[ref]; ok {
			return v
		}

		level := m.Level(ref)
		var result Ref
		switch {
		case level > i+1:
			result = ref
		case level == i+1:
			result = m.MakeNode(i, m.Low(ref), m.High(ref))
		case level == i:
			low, high := m.Low(ref), m.High(ref)
			f00, f01 := m.cofactor(low, i+1)
			f10, f11 := m.cofactor(high, i+1)
			newLow := m.MakeNode(i+1, f00, f10)
			newHigh := m.MakeNode(i+1, f01, f11)
			result = m.MakeNode(i, newLow, newHigh)
		default: // level < i
			result = m.MakeNode(level, swap(m.Low(ref)), swap(m.High(ref)))
		}

		memo[ref] = result
		return result
	}
	return swap(root)
}

// Sift runs Rudell's local reordering heuristic over every variable in
// 0..numVars-1 (spec §4.5 "Sifting"): slide each variable down then up
// across all levels via LevelSwap, recording the position with the fewest
// nodes, and leave it there. Repeats full passes until one yields no
// improvement. Returns the possibly-updated root and the permutation
// applied, indexed by new level: permutation[level] is the original level
// (variable) that now sits at that level.
func (m *Manager) Sift(root Ref, numVars int) (newRoot Ref, permutation []int) {
	permutation = make([]int, numVars)
	for i := range permutation {
		permutation[i] = i
	}

	improved := true
	for improved {
		improved = false
		for originalVar := 0; originalVar < numVars; originalVar++ {
			curLevel := indexOf(permutation, originalVar)
			bestLevel := curLevel
			bestRoot := root
			bestCount := m.NodeCount(root)

			// Slide down to level 0.
			level := curLevel
			r := root
			for level > 0 {
				r = m.LevelSwap(r, level-1)
				level--
				if c := m.NodeCount(r); c < bestCount {
					bestCount, bestLevel, bestRoot = c, level, r
				}
			}

			// Slide back up to the top, through every level.
			for level < numVars-1 {
				r = m.LevelSwap(r, level)
				level++
				if c := m.NodeCount(r); c < bestCount {
					bestCount, bestLevel, bestRoot = c, level, r
				}
			}

			// Settle at the level with the smallest observed count,
			// sliding back from the top.
			for level > bestLevel {
				r = m.LevelSwap(r, level-1)
				level--
			}

			if bestRoot != root || bestLevel != curLevel {
				improved = improved || m.NodeCount(bestRoot) < m.NodeCount(root)
			}
			root = bestRoot
			movePermutation(permutation, curLevel, bestLevel)
		}
	}

	return root, permutation
}

func indexOf(perm []int, value int) int {
	for i, v := range perm {
		if v == value {
			return i
		}
	}
	return -1
}

// movePermutation reflects a variable's move from level `from` to level
// `to` in the level->originalVar permutation slice.
func movePermutation(perm []int, from, to int) {
	if from == to {
		return
	}
	v := perm[from]
	if from < to {
		copy(perm[from:to], perm[from+1:to+1])
	} else {
		copy(perm[to+1:from+1], perm[to:from])
	}
	perm[to] = v
}
