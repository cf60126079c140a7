package ppu

import (
	"bytes"
	"encoding/gob"
)

type ppuState struct {
	VRAM           [0x2000]byte
	OAM            [0xA0]byte
	LCDC, STAT     byte
	SCY, SCX       byte
	LY, LYC        byte
	BGP, OBP0, OBP1 byte
	WY, WX         byte
	Dot            int
	WinLineCounter int
}

// SaveState serializes VRAM/OAM and register state for save states. The
// per-line render snapshot (LineRegs) is not persisted: it is rebuilt from
// scratch as the next frame is drawn.
func (p *PPU) SaveState() []byte {
	var buf bytes.Buffer
	_ = gob.NewEncoder(&buf).Encode(ppuState{
		VRAM: p.vram, OAM: p.oam,
		LCDC: p.lcdc, STAT: p.stat,
		SCY: p.scy, SCX: p.scx,
		LY: p.ly, LYC: p.lyc,
		BGP: p.bgp, OBP0: p.obp0, OBP1: p.obp1,
		WY: p.wy, WX: p.wx,
		Dot: p.dot, WinLineCounter: p.winLineCounter,
	})
	return buf.Bytes()
}

func (p *PPU) LoadState(data []byte) {
	if len(data) == 0 {
		return
	}
	var s ppuState
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&s); err != nil {
		return
	}
	p.vram, p.oam = s.VRAM, s.OAM
	p.lcdc, p.stat = s.LCDC, s.STAT
	p.scy, p.scx = s.SCY, s.SCX
	p.ly, p.lyc = s.LY, s.LYC
	p.bgp, p.obp0, p.obp1 = s.BGP, s.OBP0, s.OBP1
	p.wy, p.wx = s.WY, s.WX
	p.dot, p.winLineCounter = s.Dot, s.WinLineCounter
}
