package ppu

// ShadeRGBA maps a 2-bit DMG shade (0 = lightest) to an RGBA8888 color.
var ShadeRGBA = [4][4]byte{
	{0xFF, 0xFF, 0xFF, 0xFF},
	{0xAA, 0xAA, 0xAA, 0xFF},
	{0x55, 0x55, 0x55, 0xFF},
	{0x00, 0x00, 0x00, 0xFF},
}

// applyPalette maps a 2-bit color index through a BGP/OBPx-style palette byte.
func applyPalette(pal byte, ci byte) byte {
	return (pal >> (ci * 2)) & 0x03
}

// Read implements VRAMReader directly against VRAM, bypassing the CPU-facing
// mode-3 access block in CPURead: the renderer runs logically "between"
// dots and needs the pixels regardless of what mode the line last left.
func (p *PPU) Read(addr uint16) byte {
	if addr >= 0x8000 && addr <= 0x9FFF {
		return p.vram[addr-0x8000]
	}
	return 0xFF
}

// RenderScanline composes BG, window, and sprites for line ly from the
// register snapshot captured at that line's mode2->3 transition (see
// LineRegs), returning 160 shade values (0..3) ready for ShadeRGBA lookup.
func (p *PPU) RenderScanline(ly byte) [160]byte {
	var out [160]byte
	lr := p.LineRegs(int(ly))

	var bgci [160]byte
	if lr.LCDC&0x01 != 0 {
		mapBase := uint16(0x9800)
		if lr.LCDC&0x08 != 0 {
			mapBase = 0x9C00
		}
		bgci = RenderBGScanlineUsingFetcher(p, mapBase, lr.LCDC&0x10 != 0, lr.SCX, lr.SCY, ly)
	}

	if lr.WindowVisible {
		winMapBase := uint16(0x9800)
		if lr.LCDC&0x40 != 0 {
			winMapBase = 0x9C00
		}
		wxStart := int(lr.WX) - 7
		winLine := RenderWindowScanlineUsingFetcher(p, winMapBase, lr.LCDC&0x10 != 0, wxStart, lr.WinLine)
		start := wxStart
		if start < 0 {
			start = 0
		}
		for x := start; x < 160; x++ {
			bgci[x] = winLine[x]
		}
	}

	for x := 0; x < 160; x++ {
		out[x] = applyPalette(lr.BGP, bgci[x])
	}

	if lr.LCDC&0x02 != 0 {
		tall := lr.LCDC&0x04 != 0
		onLine := spritesOnLine(decodeSprites(&p.oam), ly, tall)
		spriteLine := ComposeSpriteLine(p, onLine, ly, bgci, tall)
		for x := 0; x < 160; x++ {
			sp := spriteLine[x]
			if sp == 0 {
				continue
			}
			palByte := lr.OBP0
			if sp&0x04 != 0 {
				palByte = lr.OBP1
			}
			out[x] = applyPalette(palByte, sp&0x03)
		}
	}
	return out
}

// Frame renders the full 160x144 picture into a packed RGBA8888 buffer
// (4 bytes/pixel, row-major), using the line-by-line register snapshots
// captured over the course of the frame.
func (p *PPU) Frame() []byte {
	out := make([]byte, 160*144*4)
	for ly := 0; ly < 144; ly++ {
		line := p.RenderScanline(byte(ly))
		for x := 0; x < 160; x++ {
			c := ShadeRGBA[line[x]]
			i := (ly*160 + x) * 4
			copy(out[i:i+4], c[:])
		}
	}
	return out
}
