package rtlil

// bitSet groups wire bits that module-level connect statements join into
// one net, using union by rank with path compression. A group may also be
// tied to a constant.
type bitSet struct {
	parent []int
	rank   []int
	konst  map[int]byte // root -> constant
}

func newBitSet(n int) *bitSet {
	s := &bitSet{
		parent: make([]int, n),
		rank:   make([]int, n),
		konst:  make(map[int]byte),
	}
	for i := range s.parent {
		s.parent[i] = i
	}
	return s
}

func (s *bitSet) find(i int) int {
	root := i
	for s.parent[root] != root {
		root = s.parent[root]
	}
	for i != root {
		next := s.parent[i]
		s.parent[i] = root
		i = next
	}
	return root
}

func (s *bitSet) union(a, b int) {
	ra, rb := s.find(a), s.find(b)
	if ra == rb {
		return
	}
	if s.rank[ra] < s.rank[rb] {
		ra, rb = rb, ra
	}
	s.parent[rb] = ra
	if s.rank[ra] == s.rank[rb] {
		s.rank[ra]++
	}
	// the surviving root keeps a constant bound to either side
	if c, ok := s.konst[rb]; ok {
		if _, bound := s.konst[ra]; !bound {
			s.konst[ra] = c
		}
		delete(s.konst, rb)
	}
}

func (s *bitSet) bind(i int, c byte) {
	root := s.find(i)
	if _, ok := s.konst[root]; !ok {
		s.konst[root] = c
	}
}

func (s *bitSet) constant(i int) (byte, bool) {
	c, ok := s.konst[s.find(i)]
	return c, ok
}
