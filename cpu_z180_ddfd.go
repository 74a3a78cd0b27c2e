// cpu_z180_ddfd.go - DD/FD index-register prefix handling.
//
// The spec's own design note for this prefix space is already the
// generalisation the teacher's cpu_z80.go reaches for with its separate
// ddOps/fdOps tables: reinterpret the following opcode with HL replaced by
// IX/IY, and (HL) replaced by (IX+d)/(IY+d). Rather than duplicating the
// base table into two near-identical IX/IY tables the way the teacher
// does, this sets an index-mode flag and re-enters the base table itself —
// readReg8/writeReg8/pairHL/effAddr (cpu_z180.go) already know how to
// redirect under that flag, so only the CB-after-DD/FD case (which moves
// the displacement byte earlier in the instruction) needs its own code.

package z180emu

func (c *CPU) opDDPrefix() { c.runIndexed(indexIX) }
func (c *CPU) opFDPrefix() { c.runIndexed(indexIY) }

func (c *CPU) runIndexed(mode indexMode) {
	c.idxMode = mode
	c.dispSet = false
	opcode := c.fetchOpcode()
	if opcode == 0xCB {
		c.execIndexedCB()
		return
	}
	c.baseOps[opcode](c)
}

// execIndexedCB handles the DD CB d op / FD CB d op encoding, where the
// displacement byte precedes the CB opcode byte rather than following it
// as effAddr's lazy fetch would otherwise assume.
func (c *CPU) execIndexedCB() {
	c.disp = int8(c.fetchByte())
	c.dispSet = true
	opcode := c.fetchOpcode()
	c.cbOps[opcode](c)
}
