package disasm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInstruction_KnownOpcodes(t *testing.T) {
	cases := []struct {
		word uint32
		want string
	}{
		{0x3C0801F0, "lui t0, 0x1F0"},
		{0x10000002, "beq zero, zero, 2"},
		{0x24080005, "addiu t0, zero, 5"},
		{0x0000000C, "syscall"},
		{0x00000000, "nop"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Instruction(tc.word))
	}
}
