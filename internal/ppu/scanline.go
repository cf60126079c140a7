package ppu

// drainRow streams pixels out of f/q starting at tileX/mapY into out[outFrom:],
// discarding the first `discard` pixels of the first tile (used for the BG's
// SCX fine-scroll offset) and re-fetching tiles as the FIFO runs dry.
func drainRow(f *bgFetcher, q *fifo, mapBase uint16, tileData8000 bool, mapY, tileX uint16, fineY byte, discard int, out *[160]byte, outFrom int) {
	f.Configure(mapBase, tileData8000, mapBase+mapY*32+tileX, fineY)
	f.Fetch()
	for i := 0; i < discard; i++ {
		_, _ = q.Pop()
	}
	for x := outFrom; x < 160; x++ {
		if q.Len() == 0 {
			tileX = f.advanceTile(mapY, tileX)
		}
		px, _ := q.Pop()
		out[x] = px
	}
}

// RenderBGScanlineUsingFetcher renders 160 BG pixels for scanline ly, honoring
// the SCX/SCY scroll registers and wrapping across the 32x32 tilemap.
func RenderBGScanlineUsingFetcher(mem VRAMReader, mapBase uint16, tileData8000 bool, scx, scy, ly byte) [160]byte {
	var out [160]byte

	bgY := uint16(ly) + uint16(scy)
	fineY := byte(bgY & 7)
	mapY := (bgY >> 3) & 31

	startX := uint16(scx)
	tileX := (startX >> 3) & 31
	fineX := int(startX & 7)

	var q fifo
	f := newBGFetcher(mem, &q)
	drainRow(f, &q, mapBase, tileData8000, mapY, tileX, fineY, fineX, &out, 0)
	return out
}

// RenderWindowScanlineUsingFetcher renders the window layer for a scanline.
// It fills pixels starting at wxStart (WX-7) using winLine as the window's
// own internal line counter; pixels before wxStart are left at color index
// 0 so the caller can blend BG and window.
func RenderWindowScanlineUsingFetcher(mem VRAMReader, mapBase uint16, tileData8000 bool, wxStart int, winLine byte) [160]byte {
	var out [160]byte
	if wxStart >= 160 {
		return out
	}
	if wxStart < 0 {
		wxStart = 0
	}

	mapY := (uint16(winLine) >> 3) & 31
	fineY := winLine & 7

	var q fifo
	f := newBGFetcher(mem, &q)
	drainRow(f, &q, mapBase, tileData8000, mapY, 0, fineY, 0, &out, wxStart)
	return out
}
