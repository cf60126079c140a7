package cart

import "testing"

func TestMBC3_LatchedRTCRegistersFreezeUntilRelatched(t *testing.T) {
	prevNow := nowUnix
	nowUnix = func() int64 { return 1000 }
	defer func() { nowUnix = prevNow }()

	rom := make([]byte, 0x8000)
	m := NewMBC3(rom, 0x2000)

	m.Write(0x0000, 0x0A) // RAM/RTC enable
	m.rtcSec, m.rtcMin, m.rtcHour, m.rtcDay = 12, 34, 8, 0x050
	m.rtcHalt, m.rtcCarry = false, false
	m.Write(0x6000, 0x00)
	m.Write(0x6000, 0x01) // 0->1 edge latches the current registers

	m.Write(0x4000, 0x09) // select minutes
	if got := m.Read(0xA000); got != 34 {
		t.Fatalf("latched min got %d want 34", got)
	}

	m.rtcMin = 50 // live register moves, latched snapshot must not
	if got := m.Read(0xA000); got != 34 {
		t.Fatalf("latched min changed after live update: got %d", got)
	}

	m.Write(0x4000, 0x0B) // day counter low byte
	if got := m.Read(0xA000); got != byte(0x050&0xFF) {
		t.Fatalf("latched day-low got %02X want %02X", got, byte(0x050))
	}
	m.Write(0x4000, 0x0C) // day-high/carry/halt
	got := m.Read(0xA000)
	if (got & 0x01) != 0 {
		t.Fatalf("day-high bit unexpectedly set for day=0x050")
	}
	if (got & 0x40) != 0 {
		t.Fatalf("halt bit set unexpectedly")
	}
}

func TestMBC3_RTCAdvancesWithWallClockAndSurvivesSaveLoad(t *testing.T) {
	prevNow := nowUnix
	nowVal := int64(5000)
	nowUnix = func() int64 { return nowVal }
	defer func() { nowUnix = prevNow }()

	rom := make([]byte, 0x8000)
	m := NewMBC3(rom, 0x2000)
	m.rtcSec, m.rtcMin, m.rtcHour, m.rtcDay = 0, 0, 23, 511 // one hour from day rollover
	m.rtcHalt, m.rtcCarry = false, false
	m.lastRTCWallSec = nowVal

	// +3600s (exactly one hour): hour 23->0, day 511->0, carry set.
	nowVal = 5000 + 3600
	_ = m.Read(0x0000)
	if m.rtcSec != 0 || m.rtcMin != 0 || m.rtcHour != 0 || m.rtcDay != 0 || !m.rtcCarry {
		t.Fatalf("rtc +1h rollover got %02d:%02d:%02d day=%03d carry=%v",
			m.rtcHour, m.rtcMin, m.rtcSec, m.rtcDay, m.rtcCarry)
	}

	data := m.SaveRAM()
	n := NewMBC3(rom, 0x2000)
	n.LoadRAM(data)
	if n.rtcSec != m.rtcSec || n.rtcMin != m.rtcMin || n.rtcHour != m.rtcHour || n.rtcDay != m.rtcDay || n.rtcCarry != m.rtcCarry {
		t.Fatalf("rtc state lost across save/load: got %02d:%02d:%02d day=%03d carry=%v",
			n.rtcHour, n.rtcMin, n.rtcSec, n.rtcDay, n.rtcCarry)
	}
}
