package iterate

import "github.com/tablekit/tablekit/row"

// Compare orders two rows; negative means a sorts before b.
type Compare func(a, b *row.BinaryRow) int

// Merge combines already-sorted iterators into one sorted stream, the
// merge phase of an external sort over spilled runs. Closing the merged
// iterator closes every input; the first close error wins.
func Merge(cmp Compare, iters ...Iterator) Iterator {
	return &mergeIterator{cmp: cmp, iters: iters}
}

// mergeEntry is one heap slot: the head row of input i.
type mergeEntry struct {
	head *row.BinaryRow
	i    int
}

type mergeIterator struct {
	cmp     Compare
	iters   []Iterator
	heap    []mergeEntry
	started bool
}

func (m *mergeIterator) Next() (*row.BinaryRow, error) {
	if !m.started {
		m.started = true
		for i, it := range m.iters {
			r, err := it.Next()
			if err != nil {
				return nil, err
			}
			if r != nil {
				m.push(mergeEntry{head: r, i: i})
			}
		}
	}

	if len(m.heap) == 0 {
		return nil, nil
	}

	top := m.heap[0]
	next, err := m.iters[top.i].Next()
	if err != nil {
		return nil, err
	}
	if next != nil {
		m.heap[0] = mergeEntry{head: next, i: top.i}
		m.siftDown(0)
	} else {
		last := len(m.heap) - 1
		m.heap[0] = m.heap[last]
		m.heap = m.heap[:last]
		if len(m.heap) > 0 {
			m.siftDown(0)
		}
	}
	return top.head, nil
}

func (m *mergeIterator) Close() error {
	var first error
	for _, it := range m.iters {
		if err := it.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func (m *mergeIterator) less(i, j int) bool {
	return m.cmp(m.heap[i].head, m.heap[j].head) < 0
}

func (m *mergeIterator) push(e mergeEntry) {
	m.heap = append(m.heap, e)
	i := len(m.heap) - 1
	for i > 0 {
		p := (i - 1) / 2
		if !m.less(i, p) {
			return
		}
		m.heap[i], m.heap[p] = m.heap[p], m.heap[i]
		i = p
	}
}

func (m *mergeIterator) siftDown(i int) {
	n := len(m.heap)
	for {
		l := 2*i + 1
		if l >= n {
			return
		}
		best := l
		if r := l + 1; r < n && m.less(r, l) {
			best = r
		}
		if !m.less(best, i) {
			return
		}
		m.heap[i], m.heap[best] = m.heap[best], m.heap[i]
		i = best
	}
}
