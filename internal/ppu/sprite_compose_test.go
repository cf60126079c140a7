package ppu

import "testing"

func TestComposeSpriteLine_PriorityBitHidesSpriteBehindOpaqueBG(t *testing.T) {
	mem := mockVRAM{}
	base := uint16(0x8000)
	mem[base+0] = 0x01 // opaque pixel at the rightmost column (bit0)
	mem[base+1] = 0x00
	sprites := []Sprite{{X: 30, Y: 8, Tile: 0, Attr: 0, OAMIndex: 0}}
	var bgci [160]byte

	out := ComposeSpriteLine(mem, sprites, 8, bgci, false)
	if out[37] == 0 {
		t.Fatalf("expected an opaque sprite pixel at x=37")
	}

	sprites[0].Attr = 1 << 7 // OBJ-to-BG priority: hide behind non-zero BG
	bgci[37] = 2
	out = ComposeSpriteLine(mem, sprites, 8, bgci, false)
	if out[37] != 0 {
		t.Fatalf("expected sprite pixel hidden: BG priority bit set and BG pixel non-zero")
	}
}

func TestComposeSpriteLine_OverlapResolvedByLowestX(t *testing.T) {
	mem := mockVRAM{}
	base := uint16(0x8000)
	mem[base+0] = 0xFF // fully opaque row
	mem[base+1] = 0x00
	left := Sprite{X: 40, Y: 0, Tile: 0, Attr: spriteAttrDMGPal, OAMIndex: 9}
	right := Sprite{X: 41, Y: 0, Tile: 0, Attr: 0, OAMIndex: 2}
	var bgci [160]byte

	out := ComposeSpriteLine(mem, []Sprite{right, left}, 0, bgci, false)
	if out[41] != (1<<2)|1 {
		t.Fatalf("overlap column x=41: got %#x want %#x (lower-X sprite, OBP1, color 1)", out[41], (1<<2)|1)
	}
}
