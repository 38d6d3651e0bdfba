package archive

const arenaChunk = 256

// slotArena hands out scratch slot slices that live until the next reset.
// Chunks are kept across resets so a pooled Builder stops allocating once it
// has seen its working set.
type slotArena struct {
	chunks [][]Slot
	cur    int
	used   int
}

func (a *slotArena) alloc(n int) []Slot {
	if n > arenaChunk {
		return make([]Slot, n)
	}
	for {
		if a.cur < len(a.chunks) {
			c := a.chunks[a.cur]
			if a.used+n <= len(c) {
				s := c[a.used : a.used+n : a.used+n]
				a.used += n
				clear(s)
				return s
			}
			a.cur++
			a.used = 0
			continue
		}
		a.chunks = append(a.chunks, make([]Slot, arenaChunk))
	}
}

func (a *slotArena) reset() {
	a.cur, a.used = 0, 0
}
