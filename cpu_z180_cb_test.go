package z180emu

import "testing"

func TestCPU_CBRotateLeftWithCarry(t *testing.T) {
	// LD A,0x80 ; CB 17 = RL A
	cpu, _ := newTestCPU(0x3E, 0x80, 0xCB, 0x17)
	cpu.runSteps(2)
	if cpu.A != 0x00 {
		t.Errorf("A = %#02x, want 0x00", cpu.A)
	}
	if !cpu.Flag(flagC) {
		t.Error("C flag not set after rotating out bit 7")
	}
}

func TestCPU_CBBitClearAndSet(t *testing.T) {
	// LD A,0x00 ; CB 47 = BIT 0,A ; CB C7 = SET 0,A
	cpu, _ := newTestCPU(0x3E, 0x00, 0xCB, 0x47, 0xCB, 0xC7)
	cpu.runSteps(2)
	if !cpu.Flag(flagZ) {
		t.Error("Z flag not set by BIT 0,A when bit 0 is clear")
	}
	cpu.runSteps(1)
	if cpu.A != 0x01 {
		t.Errorf("A = %#02x, want 0x01 after SET 0,A", cpu.A)
	}
}

func TestCPU_CBResClearsBit(t *testing.T) {
	// LD A,0xFF ; CB 87 = RES 0,A
	cpu, _ := newTestCPU(0x3E, 0xFF, 0xCB, 0x87)
	cpu.runSteps(2)
	if cpu.A != 0xFE {
		t.Errorf("A = %#02x, want 0xFE", cpu.A)
	}
}

func TestCPU_DDCBBitOnIndexedMemory(t *testing.T) {
	// LD IX,0x4000 ; LD (IX+0),0x00 ; DD CB 00 46 = BIT 0,(IX+0)
	cpu, _ := newTestCPU(
		0xDD, 0x21, 0x00, 0x40,
		0xDD, 0x36, 0x00, 0x00,
		0xDD, 0xCB, 0x00, 0x46,
	)
	cpu.runSteps(3)
	if !cpu.Flag(flagZ) {
		t.Error("Z flag not set by BIT 0,(IX+0) when the byte is zero")
	}
}
