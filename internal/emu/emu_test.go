package emu

import "testing"

// romOnly builds a minimal, valid-header ROM-only cartridge image that
// executes as an infinite stream of NOPs (zero-filled body).
func romOnly(size int) []byte {
	rom := make([]byte, size)
	copy(rom[0x0134:0x0144], []byte("TESTROM"))
	rom[0x0147] = 0x00 // ROM ONLY
	rom[0x0148] = 0x00 // 32KB
	rom[0x0149] = 0x00 // no RAM
	return rom
}

func mbc1Battery(size int) []byte {
	rom := romOnly(size)
	rom[0x0147] = 0x03 // MBC1+RAM+BATTERY
	rom[0x0149] = 0x02 // 8KB RAM
	return rom
}

func TestMachine_LoadCartridge_Title(t *testing.T) {
	m := New(Config{})
	if err := m.LoadCartridge(romOnly(32*1024), nil); err != nil {
		t.Fatalf("LoadCartridge: %v", err)
	}
	if got := m.ROMTitle(); got != "TESTROM" {
		t.Fatalf("ROMTitle() = %q, want TESTROM", got)
	}
}

func TestMachine_StepFrame_AdvancesAndRenders(t *testing.T) {
	m := New(Config{})
	if err := m.LoadCartridge(romOnly(32*1024), nil); err != nil {
		t.Fatalf("LoadCartridge: %v", err)
	}
	m.StepFrame()
	fb := m.Framebuffer()
	if len(fb) != 160*144*4 {
		t.Fatalf("Framebuffer() len = %d, want %d", len(fb), 160*144*4)
	}
}

func TestMachine_SaveLoadState_RoundTrip(t *testing.T) {
	m := New(Config{})
	if err := m.LoadCartridge(romOnly(32*1024), nil); err != nil {
		t.Fatalf("LoadCartridge: %v", err)
	}
	for i := 0; i < 3; i++ {
		m.StepFrame()
	}
	snap := m.SaveState()
	if len(snap) == 0 {
		t.Fatalf("SaveState() returned empty blob")
	}

	m2 := New(Config{})
	if err := m2.LoadCartridge(romOnly(32*1024), nil); err != nil {
		t.Fatalf("LoadCartridge (m2): %v", err)
	}
	if !m2.LoadState(snap) {
		t.Fatalf("LoadState() reported failure")
	}
	if m2.cpu.PC != m.cpu.PC || m2.cpu.SP != m.cpu.SP {
		t.Fatalf("restored CPU state mismatch: PC=%04X SP=%04X want PC=%04X SP=%04X",
			m2.cpu.PC, m2.cpu.SP, m.cpu.PC, m.cpu.SP)
	}
}

func TestMachine_SaveLoadBattery_RoundTrip(t *testing.T) {
	m := New(Config{})
	if err := m.LoadCartridge(mbc1Battery(32*1024), nil); err != nil {
		t.Fatalf("LoadCartridge: %v", err)
	}
	// Enable RAM and write a marker byte.
	m.bus.Write(0x0000, 0x0A)
	m.bus.Write(0xA000, 0x42)

	data, ok := m.SaveBattery()
	if !ok || len(data) == 0 {
		t.Fatalf("SaveBattery() ok=%v len=%d", ok, len(data))
	}

	m2 := New(Config{})
	if err := m2.LoadCartridge(mbc1Battery(32*1024), nil); err != nil {
		t.Fatalf("LoadCartridge (m2): %v", err)
	}
	if !m2.LoadBattery(data) {
		t.Fatalf("LoadBattery() reported failure")
	}
	m2.bus.Write(0x0000, 0x0A)
	if got := m2.bus.Read(0xA000); got != 0x42 {
		t.Fatalf("restored battery RAM = %02X, want 42", got)
	}
}

func TestMachine_SetButtons_DoesNotPanicWithoutCartridge(t *testing.T) {
	m := New(Config{})
	m.SetButtons(Buttons{A: true, Up: true})
	m.StepFrame() // no cartridge loaded; must be a no-op, not a panic
}
