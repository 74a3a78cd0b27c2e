package z180emu

import "testing"

type collectingSink struct {
	got []byte
}

func (s *collectingSink) WriteConsole(b []byte) { s.got = append(s.got, b...) }

func newTestMotherboard(rom []byte) *Motherboard {
	return NewMotherboard("test", rom, nil, nil)
}

func TestMotherboard_RunBurstExecutesAndDrainsConsole(t *testing.T) {
	rom := make([]byte, 16)
	// LD A,'!' ; OUT (0xC6),A ; HALT -- the motherboard sets the internal
	// base to 0xC0, so ASCI0's TDR (offset 6) is port 0xC0+6.
	rom[0] = 0x3E
	rom[1] = '!'
	rom[2] = 0xD3
	rom[3] = 0xC0 + offASCI0TDR
	rom[4] = 0x76

	board := newTestMotherboard(rom)
	sink := &collectingSink{}
	board.SetConsoleSink(sink)

	board.RunBurst(10)

	if string(sink.got) != "!" {
		t.Errorf("console got %q, want %q", sink.got, "!")
	}
	if !board.CPU().Halted {
		t.Error("CPU did not reach HALT within the burst")
	}
}

func TestMotherboard_ResetPreservesRAMReloadsROM(t *testing.T) {
	rom := []byte{0x00}
	board := newTestMotherboard(rom)

	board.MMU().SetCBAR(0xF0)
	board.MMU().SetBBR(0x80)
	board.MMU().Write(0x0100, 0x42)

	board.Reset()

	board.MMU().SetCBAR(0xF0)
	board.MMU().SetBBR(0x80)
	if got := board.MMU().Read(0x0100); got != 0x42 {
		t.Errorf("RAM did not survive Reset: Read = %#02x, want 0x42", got)
	}
	if board.CPU().PC != 0 {
		t.Errorf("PC = %#04x, want 0 after Reset", board.CPU().PC)
	}
}

func TestMotherboard_EnqueueInputFeedsASCI0Throttled(t *testing.T) {
	rom := make([]byte, 4)
	rom[0] = 0x00 // NOP, NOP, ... so the burst just ticks cycles forward
	board := newTestMotherboard(rom)

	board.EnqueueInput('Q')
	board.RunBurst(1)

	if stat := board.ASCI0().ReadSTAT(); stat&asciStatRDRF != 0 {
		t.Error("input byte should not be delivered before the throttle interval elapses")
	}

	board.RunBurst(5000)
	if stat := board.ASCI0().ReadSTAT(); stat&asciStatRDRF == 0 {
		t.Error("input byte should have been delivered once enough cycles elapsed")
	}
}

func TestMotherboard_StatusSnapshotReflectsCPUState(t *testing.T) {
	board := newTestMotherboard([]byte{0x76}) // HALT
	board.RunBurst(1)

	status := board.StatusSnapshot()
	if !status.Halted {
		t.Error("StatusSnapshot().Halted = false, want true")
	}
	if status.BoardID != "test" {
		t.Errorf("StatusSnapshot().BoardID = %q, want %q", status.BoardID, "test")
	}
}
