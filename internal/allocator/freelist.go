package allocator

// insertFree pushes bp onto the head of the explicit free list (LIFO).
// The previous head's prev pointer is only rewritten when that head is a
// real free block; when the list is empty, freeHead points at the
// prologue, which has no payload words to write into.
func (a *Allocator) insertFree(bp addr) {
	setFreeNext(bp, a.freeHead)
	if a.freeHead != a.prologue {
		setFreePrev(a.freeHead, bp)
	}
	setFreePrev(bp, noFreeLink)
	a.freeHead = bp
}

// removeFree unlinks bp from the free list. next(bp) is either another
// free block or the prologue sentinel the list was seeded with; the
// prologue is never rewritten.
func (a *Allocator) removeFree(bp addr) {
	prev := freePrev(bp)
	next := freeNext(bp)

	if prev != noFreeLink {
		setFreeNext(prev, next)
	} else {
		a.freeHead = next
	}

	if next != a.prologue {
		setFreePrev(next, prev)
	}
}
