package allocator

import (
	"fmt"
	"io"

	apperrors "github.com/orizon-lang/firstfit/internal/errors"
)

// check verifies that the prologue is an allocated doubleWordSize block,
// walks every block from the first real block to the epilogue, verifying
// each block pointer is doubleWordSize-aligned, each header matches its
// footer, every size is a multiple of doubleWordSize and at least
// minBlockSize, and then walks the free list looking for cycles. When w is
// non-nil, one line per block is written to it in heap order.
func (a *Allocator) check(w io.Writer) error {
	prologueTag := pack(doubleWordSize, true)
	if wordAt(hdr(a.prologue)) != prologueTag || wordAt(a.prologue) != prologueTag {
		return apperrors.CorruptHeap("prologue is not an allocated doubleWordSize block")
	}

	bp := a.firstBlock
	for {
		h := wordAt(hdr(bp))
		sz := sizeOf(h)

		if sz == 0 {
			if !allocOf(h) {
				return apperrors.CorruptHeap("epilogue header is not marked allocated")
			}
			break
		}

		if bp%doubleWordSize != 0 {
			return apperrors.CorruptHeap(fmt.Sprintf("block %#x is not doubleWordSize-aligned", bp))
		}

		f := wordAt(ftr(bp))
		if h != f {
			return apperrors.CorruptHeap(fmt.Sprintf("header/footer mismatch at block %#x: %#x != %#x", bp, h, f))
		}
		if sz%doubleWordSize != 0 {
			return apperrors.CorruptHeap(fmt.Sprintf("block %#x size %d is not doubleWordSize-aligned", bp, sz))
		}
		if sz < minBlockSize {
			return apperrors.CorruptHeap(fmt.Sprintf("block %#x size %d is below the minimum block size", bp, sz))
		}

		if w != nil {
			fmt.Fprintf(w, "block@%#x size=%d alloc=%v\n", bp, sz, allocOf(h))
		}

		bp = nextBlock(bp)
	}

	seen := make(map[addr]bool)
	for fp := a.freeHead; !blockAlloc(fp); fp = freeNext(fp) {
		if seen[fp] {
			return apperrors.CorruptHeap(fmt.Sprintf("cycle in free list at block %#x", fp))
		}
		seen[fp] = true
	}

	return nil
}
