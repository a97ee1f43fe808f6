package compare

// Ratcliff/Obershelp sequence matching over runes, compatible with the
// ratio produced by Python's difflib.SequenceMatcher: 2*M/T where M is
// the total size of the longest matching blocks found recursively and
// T the combined length. The matcher's default autojunk heuristic is
// reproduced as well: in second sequences of 200+ runes, runes filling
// more than 1% of the sequence are dropped from the match index. Like
// the original matcher, the ratio depends on argument order.

type block struct {
	a, b, size int
}

// textSimilarity returns a similarity ratio in [0,1] over case-folded
// text. Both empty compares as identical; exactly one empty as fully
// distinct.
func textSimilarity(s1, s2 string) float64 {
	if s1 == "" && s2 == "" {
		return 1.0
	}
	if s1 == "" || s2 == "" {
		return 0.0
	}
	a := []rune(lower(s1))
	b := []rune(lower(s2))

	matched := 0
	for _, bl := range matchingBlocks(a, b) {
		matched += bl.size
	}
	return 2.0 * float64(matched) / float64(len(a)+len(b))
}

func matchingBlocks(a, b []rune) []block {
	b2j := make(map[rune][]int, len(b))
	for j, r := range b {
		b2j[r] = append(b2j[r], j)
	}

	// Autojunk: for long second sequences, discount popular runes
	// (more than 1% of the sequence) so runs of filler cannot inflate
	// the ratio.
	if len(b) >= 200 {
		ntest := len(b)/100 + 1
		for r, indices := range b2j {
			if len(indices) > ntest {
				delete(b2j, r)
			}
		}
	}

	type span struct{ alo, ahi, blo, bhi int }
	queue := []span{{0, len(a), 0, len(b)}}
	var blocks []block

	for len(queue) > 0 {
		s := queue[len(queue)-1]
		queue = queue[:len(queue)-1]

		m := longestMatch(a, b2j, s.alo, s.ahi, s.blo, s.bhi)
		if m.size == 0 {
			continue
		}
		blocks = append(blocks, m)
		if s.alo < m.a && s.blo < m.b {
			queue = append(queue, span{s.alo, m.a, s.blo, m.b})
		}
		if m.a+m.size < s.ahi && m.b+m.size < s.bhi {
			queue = append(queue, span{m.a + m.size, s.ahi, m.b + m.size, s.bhi})
		}
	}
	return blocks
}

// longestMatch finds the longest matching block within the given
// bounds, preferring the earliest position on ties as difflib does.
func longestMatch(a []rune, b2j map[rune][]int, alo, ahi, blo, bhi int) block {
	best := block{a: alo, b: blo}
	j2len := make(map[int]int)

	for i := alo; i < ahi; i++ {
		newj2len := make(map[int]int)
		for _, j := range b2j[a[i]] {
			if j < blo {
				continue
			}
			if j >= bhi {
				break
			}
			k := j2len[j-1] + 1
			newj2len[j] = k
			if k > best.size {
				best = block{a: i - k + 1, b: j - k + 1, size: k}
			}
		}
		j2len = newj2len
	}
	return best
}
