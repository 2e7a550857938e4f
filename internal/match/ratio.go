package match

// similarity computes the Ratcliff/Obershelp sequence-matching ratio between
// two strings: 2*M/T where M is the total length of matching blocks found by
// recursively taking the longest common substring, and T is the combined
// length of both inputs. 1.0 means identical, 0.0 means nothing in common.
func similarity(a, b string) float64 {
	ra := []rune(a)
	rb := []rune(b)
	if len(ra) == 0 && len(rb) == 0 {
		return 1.0
	}
	if len(ra) == 0 || len(rb) == 0 {
		return 0.0
	}

	m := matcher{a: ra, b: rb, b2j: make(map[rune][]int, len(rb))}
	for j, r := range rb {
		m.b2j[r] = append(m.b2j[r], j)
	}

	matched := m.matchedTotal(0, len(ra), 0, len(rb))
	return 2.0 * float64(matched) / float64(len(ra)+len(rb))
}

type matcher struct {
	a, b []rune
	b2j  map[rune][]int
}

// matchedTotal sums matching-block sizes over a[alo:ahi] vs b[blo:bhi] by
// finding the longest match and recursing on the pieces before and after it.
func (m *matcher) matchedTotal(alo, ahi, blo, bhi int) int {
	i, j, size := m.longestMatch(alo, ahi, blo, bhi)
	if size == 0 {
		return 0
	}
	total := size
	total += m.matchedTotal(alo, i, blo, j)
	total += m.matchedTotal(i+size, ahi, j+size, bhi)
	return total
}

// longestMatch finds the longest matching block in a[alo:ahi] and b[blo:bhi].
// Among equally long blocks it returns the one starting earliest in a, then
// earliest in b.
func (m *matcher) longestMatch(alo, ahi, blo, bhi int) (besti, bestj, bestsize int) {
	besti, bestj = alo, blo

	// j2len[j] holds the length of the longest match ending at a[i-1], b[j-1].
	j2len := make(map[int]int)
	for i := alo; i < ahi; i++ {
		next := make(map[int]int)
		for _, j := range m.b2j[m.a[i]] {
			if j < blo {
				continue
			}
			if j >= bhi {
				break
			}
			k := j2len[j-1] + 1
			next[j] = k
			if k > bestsize {
				besti, bestj, bestsize = i-k+1, j-k+1, k
			}
		}
		j2len = next
	}
	return besti, bestj, bestsize
}
