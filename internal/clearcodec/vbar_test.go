package clearcodec

import "testing"

func TestComposeColumnBackgroundFragmentFill(t *testing.T) {
	bkg := [3]byte{10, 20, 30} // BGR
	frag := bgrToRGBAColumn([]byte{1, 2, 3, 4, 5, 6})
	col := composeColumn(bkg, 5, 1, frag)
	if len(col) != 5*4 {
		t.Fatalf("expected 20 bytes, got %d", len(col))
	}
	// row 0: background (RGBA = R30,G20,B10,A255)
	if col[0] != 30 || col[1] != 20 || col[2] != 10 || col[3] != 0xFF {
		t.Fatalf("row0 expected background, got %v", col[0:4])
	}
	// row1,2: fragment pixels (already RGBA from bgrToRGBAColumn)
	if col[4] != 3 || col[5] != 2 || col[6] != 1 {
		t.Fatalf("row1 expected fragment pixel, got %v", col[4:8])
	}
	// row 3,4: background fill after fragment exhausted
	if col[16] != 30 || col[17] != 20 || col[18] != 10 {
		t.Fatalf("row4 expected background fill, got %v", col[16:20])
	}
}

func TestVBarRingHitOnEmptySlotSynthesizesZeroed(t *testing.T) {
	r := newVBarRing()
	col, ok := r.hit(5, 10)
	if !ok {
		t.Fatal("expected ok=true for empty-slot hit")
	}
	if len(col) != 40 {
		t.Fatalf("expected 40 bytes for band height 10, got %d", len(col))
	}
	for _, b := range col {
		if b != 0 {
			t.Fatal("expected zeroed column on empty-slot hit")
		}
	}
	if r.slots[5].empty {
		t.Fatal("slot should no longer be reported empty after synthesis")
	}
}

func TestVBarRingHitSameHeightReturnsStoredColumn(t *testing.T) {
	r := newVBarRing()
	idx := r.append([]byte{1, 2, 3, 4, 5, 6, 7, 8})
	col, ok := r.hit(idx, 2)
	if !ok {
		t.Fatal("expected ok=true when stored height matches band height")
	}
	if col[0] != 1 || col[4] != 5 {
		t.Fatalf("expected stored column returned unchanged, got %v", col)
	}
}

func TestVBarRingHitHeightMismatchFails(t *testing.T) {
	r := newVBarRing()
	// Stored via a 2-row band (e.g. a short-VBar cache miss in a short band).
	idx := r.append([]byte{1, 2, 3, 4, 5, 6, 7, 8})
	// Hit from a taller band must not return the shorter stored slice.
	_, ok := r.hit(idx, 51)
	if ok {
		t.Fatal("expected ok=false when stored column height differs from requested band height")
	}
}

func TestVBarRingResetPreservesEntries(t *testing.T) {
	r := newVBarRing()
	idx := r.append([]byte{1, 2, 3, 4})
	r.reset()
	if r.cursor != 0 {
		t.Fatalf("expected cursor 0 after reset, got %d", r.cursor)
	}
	if r.slots[idx].empty {
		t.Fatal("expected entry to remain addressable after reset")
	}
}

func TestVBarRingCursorWrapsModuloCapacity(t *testing.T) {
	r := &vBarRing{cursor: vBarCount - 1}
	r.append([]byte{1, 2, 3, 4})
	if r.cursor != 0 {
		t.Fatalf("expected cursor to wrap to 0, got %d", r.cursor)
	}
}

func TestShortVBarRingCursorWrapsModuloCapacity(t *testing.T) {
	r := &shortVBarRing{cursor: shortVBarCount - 1}
	r.append([]byte{1, 2, 3, 4})
	if r.cursor != 0 {
		t.Fatalf("expected cursor to wrap to 0, got %d", r.cursor)
	}
}

func TestBgrToRGBAColumn(t *testing.T) {
	out := bgrToRGBAColumn([]byte{1, 2, 3})
	if out[0] != 3 || out[1] != 2 || out[2] != 1 || out[3] != 0xFF {
		t.Fatalf("unexpected conversion: %v", out)
	}
}
