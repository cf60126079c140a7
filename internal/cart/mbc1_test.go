package cart

import "testing"

func TestMBC1_SwitchableROMBankSelection(t *testing.T) {
	// 256KB ROM (16 banks), tag each bank's first byte with its index.
	rom := make([]byte, 256*1024)
	for bank := 0; bank < 16; bank++ {
		rom[bank*0x4000] = byte(bank)
	}
	m := NewMBC1(rom, 0)

	if got := m.Read(0x1000); got != 0x00 {
		t.Fatalf("fixed bank0 region got %02X want 00", got)
	}
	if got := m.Read(0x4000); got != 0x01 {
		t.Fatalf("default switchable bank got %02X want 01", got)
	}

	m.Write(0x2000, 0x0A)
	if got := m.Read(0x4000); got != 0x0A {
		t.Fatalf("bank 10 select got %02X want 0A", got)
	}

	// Selecting bank 0 via the 5-bit register remaps to bank 1, never bank 0.
	m.Write(0x2000, 0x00)
	if got := m.Read(0x4000); got != 0x01 {
		t.Fatalf("bank0->1 remap failed: got %02X", got)
	}
}

func TestMBC1_RAMBankingMode_SwitchesExternalRAMBank(t *testing.T) {
	rom := make([]byte, 256*1024)
	m := NewMBC1(rom, 32*1024)

	m.Write(0x0000, 0x0A) // RAM enable
	m.Write(0x6000, 0x01) // mode 1: upper bits select RAM bank
	m.Write(0x4000, 0x03) // RAM bank 3

	m.Write(0xA000, 0x42)
	if got := m.Read(0xA000); got != 0x42 {
		t.Fatalf("RAM bank3 readback failed: got %02X", got)
	}

	// Switch away and back; bank 3's byte must still be there.
	m.Write(0x4000, 0x01)
	m.Write(0xA000, 0x99)
	m.Write(0x4000, 0x03)
	if got := m.Read(0xA000); got != 0x42 {
		t.Fatalf("RAM bank3 contents clobbered by switching to bank1: got %02X", got)
	}
}
