package allocator

import (
	"fmt"

	apperrors "github.com/orizon-lang/firstfit/internal/errors"
)

// adjustedSize converts a requested payload size into the doubleWordSize-
// aligned block size that must be reserved for it, including header and
// footer overhead. Requests at or below doubleWordSize still need a full
// minBlockSize block, since a block must have room for free-list prev/next
// pointers while it sits on the free list.
func adjustedSize(size uintptr) uintptr {
	if size <= doubleWordSize {
		return minBlockSize
	}
	return alignUp(size+doubleWordSize, doubleWordSize)
}

// findFit walks the free list for the first block of at least asize
// bytes. Requests repeating the same size more than RepeatThreshold times
// in a row bypass the walk entirely and extend the heap directly; this
// protects workloads like a fixed-size object pool from degrading into an
// O(n) list walk on every call once the list is long and mostly unusable
// for that size.
func (a *Allocator) findFit(asize uintptr) addr {
	if asize == a.lastSize {
		a.repeatCount++
	} else {
		a.repeatCount = 0
		a.lastSize = asize
	}

	if a.repeatCount > a.cfg.RepeatThreshold {
		return a.extendHeap(max(asize, minBlockSize))
	}

	for bp := a.freeHead; !blockAlloc(bp); bp = freeNext(bp) {
		if blockSize(bp) >= asize {
			return bp
		}
	}
	return nullAddr
}

// place carves asize bytes out of the free block bp, splitting off the
// remainder as a new free block when it would be at least minBlockSize;
// otherwise the whole block is handed out to avoid stranding a sliver too
// small to ever satisfy a future request.
func (a *Allocator) place(bp addr, asize uintptr) {
	csize := blockSize(bp)

	if csize-asize >= minBlockSize {
		writeBoundaryTags(bp, asize, true)
		a.removeFree(bp)
		tail := bp + asize
		writeBoundaryTags(tail, csize-asize, false)
		a.coalesce(tail)
	} else {
		writeBoundaryTags(bp, csize, true)
		a.removeFree(bp)
	}
}

// extendHeap asks the region provider for more memory and folds it into
// one new free block, overwriting the old epilogue header and writing a
// fresh one-word epilogue immediately after. The new block is then
// coalesced with its backward neighbor, since the heap's prior last block
// may itself have been free.
func (a *Allocator) extendHeap(size uintptr) addr {
	size = alignUp(size, doubleWordSize)
	if size < minBlockSize {
		size = minBlockSize
	}

	base, err := a.provider.Extend(size)
	if err != nil {
		a.lastErr = apperrors.OutOfMemory(fmt.Sprintf("heap extension of %d bytes: %v", size, err))
		return nullAddr
	}
	a.stats.ExtendCount++

	bp := base
	writeBoundaryTags(bp, size, false)

	a.epilogue = hdr(bp + size)
	setWordAt(a.epilogue, pack(0, true))

	return a.coalesce(bp)
}
