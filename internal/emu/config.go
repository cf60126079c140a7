package emu

// Config contains settings that affect emulation behavior, set once at
// Machine construction and mutated afterward only through the Machine's
// Set* methods.
type Config struct {
	Trace        bool // stored only; the Machine writes no instruction trace
	LimitFPS     bool // stored only; the Machine does not throttle
	UseFetcherBG bool // stored only; the PPU always renders BG via the fetcher/FIFO path

	// SampleRate is the APU's output sample rate in Hz. Zero means keep
	// the APU's own default (48000).
	SampleRate int
}
