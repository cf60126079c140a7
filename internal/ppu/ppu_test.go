package ppu

import "testing"

// statMode reads the 2-bit PPU mode out of STAT (FF41).
func statMode(p *PPU) byte { return p.CPURead(0xFF41) & 0x03 }

func TestPPU_ModeSequence_AcrossOneScanline(t *testing.T) {
	p := New(func(int) {})
	p.CPUWrite(0xFF40, 0x80) // LCD on

	if m := statMode(p); m != 2 {
		t.Fatalf("mode right after LCD-on: got %d want 2 (OAM scan)", m)
	}

	p.Tick(80)
	if m := statMode(p); m != 3 {
		t.Fatalf("mode at dot 80: got %d want 3 (drawing)", m)
	}

	p.Tick(172)
	if m := statMode(p); m != 0 {
		t.Fatalf("mode at dot 252: got %d want 0 (HBlank)", m)
	}

	p.Tick(456 - 252)
	if ly := p.CPURead(0xFF44); ly != 1 {
		t.Fatalf("LY after one full scanline: got %d want 1", ly)
	}
	if m := statMode(p); m != 2 {
		t.Fatalf("mode at start of line 1: got %d want 2", m)
	}
}

func TestPPU_VBlankEntry_FiresVBlankAndSTATInterrupts(t *testing.T) {
	var fired []int
	p := New(func(bit int) { fired = append(fired, bit) })
	p.CPUWrite(0xFF41, 1<<4) // STAT: VBlank interrupt source enabled
	p.CPUWrite(0xFF40, 0x80)

	p.Tick(144 * 456) // run exactly to the start of line 144 (VBlank)

	var vblankCount, statCount int
	for _, bit := range fired {
		switch bit {
		case 0:
			vblankCount++
		case 1:
			statCount++
		}
	}
	if vblankCount == 0 {
		t.Fatalf("expected a VBlank interrupt (IF bit 0) when LY reaches 144")
	}
	if statCount == 0 {
		t.Fatalf("expected a STAT interrupt (IF bit 1) since the VBlank STAT source is enabled")
	}
}

func TestPPU_STATSources_HBlankAndLYCCoincidence(t *testing.T) {
	var fired []int
	p := New(func(bit int) { fired = append(fired, bit) })
	p.CPUWrite(0xFF41, (1<<3)|(1<<5)|(1<<6)) // HBlank, OAM, and LYC sources enabled
	p.CPUWrite(0xFF45, 3)                    // LYC = 3
	p.CPUWrite(0xFF40, 0x80)

	p.Tick(80 + 172) // reach HBlank of line 0

	statCount := func() int {
		n := 0
		for _, b := range fired {
			if b == 1 {
				n++
			}
		}
		return n
	}
	if statCount() == 0 {
		t.Fatalf("expected a STAT interrupt on entering HBlank with the HBlank source enabled")
	}

	fired = fired[:0]
	// finish line 0, run two more full lines to land exactly at the start of line 3
	p.Tick((456 - (80 + 172)) + 2*456 + 1)
	if statCount() == 0 {
		t.Fatalf("expected a STAT interrupt on LYC coincidence once LY reaches 3")
	}
}
