package apu

import "testing"

func TestAPU_RegisterRoundTrip_NR10_NR11(t *testing.T) {
	a := New(48000)

	a.CPUWrite(0xFF10, 0x2D) // sweep period 2, negate, shift 5
	if got := a.CPURead(0xFF10); got != 0xAD {
		t.Fatalf("NR10 read got %02X want AD", got)
	}

	a.CPUWrite(0xFF11, 0x80) // duty 2, length load 0
	if got := a.CPURead(0xFF11); got != 0xBF {
		t.Fatalf("NR11 read got %02X want BF", got)
	}
}

func TestAPU_TriggerCh1_EnablesChannel(t *testing.T) {
	a := New(48000)
	a.CPUWrite(0xFF12, 0xF0) // max volume, DAC on
	a.CPUWrite(0xFF13, 0x00)
	a.CPUWrite(0xFF14, 0x87) // trigger, freq hi bits

	status := a.CPURead(0xFF26)
	if status&(1<<0) == 0 {
		t.Fatalf("NR52 channel-1 status bit not set after trigger: %02X", status)
	}
}

func TestAPU_DACOff_DisablesChannel(t *testing.T) {
	a := New(48000)
	a.CPUWrite(0xFF12, 0xF0)
	a.CPUWrite(0xFF14, 0x80) // trigger
	if a.CPURead(0xFF26)&(1<<0) == 0 {
		t.Fatalf("channel 1 should be enabled before DAC off")
	}
	a.CPUWrite(0xFF12, 0x00) // upper 5 bits zero -> DAC off
	if a.CPURead(0xFF26)&(1<<0) != 0 {
		t.Fatalf("channel 1 should disable when its DAC turns off")
	}
}

func TestAPU_WaveRAM_ReadWrite(t *testing.T) {
	a := New(48000)
	for i := uint16(0); i < 16; i++ {
		a.CPUWrite(0xFF30+i, byte(i*0x11))
	}
	for i := uint16(0); i < 16; i++ {
		if got := a.CPURead(0xFF30 + i); got != byte(i*0x11) {
			t.Fatalf("wave RAM[%d] got %02X want %02X", i, got, byte(i*0x11))
		}
	}
}

func TestAPU_PowerOff_ClearsRegistersButKeepsSampleRate(t *testing.T) {
	a := New(44100)
	a.CPUWrite(0xFF24, 0x77)
	a.CPUWrite(0xFF12, 0xF0)
	a.CPUWrite(0xFF14, 0x80)

	a.CPUWrite(0xFF26, 0x00) // power off
	if a.CPURead(0xFF26)&0x80 != 0 {
		t.Fatalf("NR52 power bit should be clear after power-off write")
	}
	if a.CPURead(0xFF24) != 0 {
		t.Fatalf("NR50 should reset to 0 on power-off, got %02X", a.CPURead(0xFF24))
	}
	if a.sampleRate != 44100 {
		t.Fatalf("sampleRate should survive power-off, got %d", a.sampleRate)
	}

	a.CPUWrite(0xFF26, 0x80) // power back on
	if a.CPURead(0xFF26)&0x80 == 0 {
		t.Fatalf("NR52 power bit should be set after power-on write")
	}
}

func TestAPU_PullStereo_DrainsTickedSamples(t *testing.T) {
	a := New(48000)
	a.CPUWrite(0xFF24, 0x77) // full master volume, both sides
	a.CPUWrite(0xFF25, 0xFF) // route all channels to both sides
	a.CPUWrite(0xFF12, 0xF0)
	a.CPUWrite(0xFF13, 0x00)
	a.CPUWrite(0xFF14, 0x87)

	a.Tick(cpuHz / 10) // ~1/10 second of CPU cycles

	avail := a.StereoAvailable()
	if avail == 0 {
		t.Fatalf("expected buffered stereo frames after ticking, got 0")
	}
	frames := a.PullStereo(avail)
	if len(frames) != avail*2 {
		t.Fatalf("PullStereo returned %d int16s, want %d", len(frames), avail*2)
	}
	if a.StereoAvailable() != 0 {
		t.Fatalf("StereoAvailable should be 0 after draining the full buffer")
	}
}

func TestAPU_SaveLoadState_RoundTrip(t *testing.T) {
	a := New(48000)
	a.CPUWrite(0xFF24, 0x77)
	a.CPUWrite(0xFF12, 0xF0)
	a.CPUWrite(0xFF13, 0x00)
	a.CPUWrite(0xFF14, 0x87)
	a.Tick(1000)

	snap := a.SaveState()

	b := New(48000)
	b.LoadState(snap)
	if b.CPURead(0xFF24) != a.CPURead(0xFF24) {
		t.Fatalf("NR50 mismatch after LoadState: got %02X want %02X", b.CPURead(0xFF24), a.CPURead(0xFF24))
	}
	if b.CPURead(0xFF26) != a.CPURead(0xFF26) {
		t.Fatalf("NR52 mismatch after LoadState: got %02X want %02X", b.CPURead(0xFF26), a.CPURead(0xFF26))
	}
}
