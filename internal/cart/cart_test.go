package cart

import "testing"

func TestNewCartridge_DispatchesByCartType(t *testing.T) {
	cases := []struct {
		name     string
		cartType byte
		want     string
	}{
		{"rom-only", 0x00, "*cart.ROMOnly"},
		{"mbc1", 0x01, "*cart.MBC1"},
		{"mbc1-ram-battery", 0x03, "*cart.MBC1"},
		{"mbc2", 0x05, "*cart.MBC2"},
		{"mbc3-rtc-battery", 0x0F, "*cart.MBC3"},
		{"mbc5", 0x19, "*cart.MBC5"},
		{"unknown-falls-back-to-rom-only", 0xFE, "*cart.ROMOnly"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rom := make([]byte, 64*1024)
			rom[0x0147] = tc.cartType
			c := NewCartridge(rom)
			got := typeName(c)
			if got != tc.want {
				t.Fatalf("NewCartridge(cartType=%#02x) = %s, want %s", tc.cartType, got, tc.want)
			}
		})
	}
}

func typeName(c Cartridge) string {
	switch c.(type) {
	case *ROMOnly:
		return "*cart.ROMOnly"
	case *MBC1:
		return "*cart.MBC1"
	case *MBC2:
		return "*cart.MBC2"
	case *MBC3:
		return "*cart.MBC3"
	case *MBC5:
		return "*cart.MBC5"
	default:
		return "unknown"
	}
}

func TestROMOnly_ReadsROMAndIgnoresWrites(t *testing.T) {
	rom := make([]byte, 32*1024)
	rom[0x4000] = 0x77
	c := NewROMOnly(rom)

	if got := c.Read(0x4000); got != 0x77 {
		t.Fatalf("ROM read got %02X want 77", got)
	}
	if got := c.Read(0xA000); got != 0xFF {
		t.Fatalf("no external RAM should read FF, got %02X", got)
	}
	c.Write(0x2000, 0x01) // MBC-style bank write, ignored
	c.Write(0xA000, 0x42) // RAM write, ignored (no RAM)
	if got := c.Read(0xA000); got != 0xFF {
		t.Fatalf("write to ROM-only cart should have no effect, got %02X", got)
	}
}

func TestMBC5_BankZeroIsAddressable(t *testing.T) {
	rom := make([]byte, 1024*1024)
	for bank := 0; bank < 16; bank++ {
		rom[bank*0x4000] = byte(bank)
	}
	m := NewMBC5(rom, 8*1024)

	// Unlike MBC1/MBC3, MBC5 legitimately allows selecting bank 0 in 4000-7FFF.
	m.Write(0x2000, 0x00)
	if got := m.Read(0x4000); got != 0x00 {
		t.Fatalf("MBC5 bank 0 read got %02X want 00", got)
	}
	m.Write(0x2000, 0x05)
	if got := m.Read(0x4000); got != 0x05 {
		t.Fatalf("MBC5 bank 5 read got %02X want 05", got)
	}
}

func TestMBC5_RAMEnableAndBanking(t *testing.T) {
	rom := make([]byte, 64*1024)
	m := NewMBC5(rom, 4*0x2000)

	if got := m.Read(0xA000); got != 0xFF {
		t.Fatalf("disabled RAM read got %02X want FF", got)
	}
	m.Write(0x0000, 0x0A) // enable RAM
	m.Write(0x4000, 0x02) // RAM bank 2
	m.Write(0xA000, 0x5A)
	if got := m.Read(0xA000); got != 0x5A {
		t.Fatalf("RAM round-trip got %02X want 5A", got)
	}

	m.Write(0x4000, 0x00) // switch back to bank 0
	if got := m.Read(0xA000); got == 0x5A {
		t.Fatalf("bank 0 should not see bank 2's data")
	}
}

func TestMBC5_SaveLoadState(t *testing.T) {
	rom := make([]byte, 256*1024)
	for bank := 0; bank < 16; bank++ {
		rom[bank*0x4000] = byte(bank)
	}
	m := NewMBC5(rom, 0x2000)
	m.Write(0x0000, 0x0A)
	m.Write(0x2000, 0x03) // ROM bank low byte

	snap := m.SaveState()
	m2 := NewMBC5(rom, 0x2000)
	m2.LoadState(snap)
	if got := m2.Read(0x4000); got != 0x03 {
		t.Fatalf("restored ROM bank read got %02X want 03", got)
	}
}
