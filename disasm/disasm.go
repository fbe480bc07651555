// Package disasm renders a MIPS-I instruction word as a short mnemonic
// string for debug logging: never a reachable debugger surface, just log
// output.
package disasm

import "fmt"

var registerNames = [32]string{
	"zero", "at", "v0", "v1", "a0", "a1", "a2", "a3",
	"t0", "t1", "t2", "t3", "t4", "t5", "t6", "t7",
	"s0", "s1", "s2", "s3", "s4", "s5", "s6", "s7",
	"t8", "t9", "k0", "k1", "gp", "sp", "fp", "ra",
}

func reg(i uint8) string {
	if int(i) >= len(registerNames) {
		return fmt.Sprintf("r%d", i)
	}
	return registerNames[i]
}

func fields(word uint32) (opcode, rs, rt, rd, shamt, funct uint8, imm16 uint16, target26 uint32) {
	opcode = uint8(word >> 26)
	rs = uint8((word >> 21) & 0x1F)
	rt = uint8((word >> 16) & 0x1F)
	rd = uint8((word >> 11) & 0x1F)
	shamt = uint8((word >> 6) & 0x1F)
	funct = uint8(word & 0x3F)
	imm16 = uint16(word & 0xFFFF)
	target26 = word & 0x03FF_FFFF
	return
}

// Instruction renders word as a short mnemonic, for use in slog call sites
// only — never parsed back, never exposed as a stepping/breakpoint surface.
func Instruction(word uint32) string {
	opcode, rs, rt, rd, shamt, funct, imm16, target26 := fields(word)

	if word == 0 {
		return "nop"
	}

	switch opcode {
	case 0x00:
		return special(rs, rt, rd, shamt, funct)
	case 0x01:
		return regimm(rs, rt, imm16)
	case 0x02:
		return fmt.Sprintf("j 0x%07X", target26<<2)
	case 0x03:
		return fmt.Sprintf("jal 0x%07X", target26<<2)
	case 0x04:
		return fmt.Sprintf("beq %s, %s, %d", reg(rs), reg(rt), int16(imm16))
	case 0x05:
		return fmt.Sprintf("bne %s, %s, %d", reg(rs), reg(rt), int16(imm16))
	case 0x06:
		return fmt.Sprintf("blez %s, %d", reg(rs), int16(imm16))
	case 0x07:
		return fmt.Sprintf("bgtz %s, %d", reg(rs), int16(imm16))
	case 0x08:
		return fmt.Sprintf("addi %s, %s, %d", reg(rt), reg(rs), int16(imm16))
	case 0x09:
		return fmt.Sprintf("addiu %s, %s, %d", reg(rt), reg(rs), int16(imm16))
	case 0x0A:
		return fmt.Sprintf("slti %s, %s, %d", reg(rt), reg(rs), int16(imm16))
	case 0x0B:
		return fmt.Sprintf("sltiu %s, %s, %d", reg(rt), reg(rs), int16(imm16))
	case 0x0C:
		return fmt.Sprintf("andi %s, %s, 0x%X", reg(rt), reg(rs), imm16)
	case 0x0D:
		return fmt.Sprintf("ori %s, %s, 0x%X", reg(rt), reg(rs), imm16)
	case 0x0E:
		return fmt.Sprintf("xori %s, %s, 0x%X", reg(rt), reg(rs), imm16)
	case 0x0F:
		return fmt.Sprintf("lui %s, 0x%X", reg(rt), imm16)
	case 0x10:
		return cop0(rs, rt, rd, funct)
	case 0x20:
		return fmt.Sprintf("lb %s, %d(%s)", reg(rt), int16(imm16), reg(rs))
	case 0x21:
		return fmt.Sprintf("lh %s, %d(%s)", reg(rt), int16(imm16), reg(rs))
	case 0x22:
		return fmt.Sprintf("lwl %s, %d(%s)", reg(rt), int16(imm16), reg(rs))
	case 0x23:
		return fmt.Sprintf("lw %s, %d(%s)", reg(rt), int16(imm16), reg(rs))
	case 0x24:
		return fmt.Sprintf("lbu %s, %d(%s)", reg(rt), int16(imm16), reg(rs))
	case 0x25:
		return fmt.Sprintf("lhu %s, %d(%s)", reg(rt), int16(imm16), reg(rs))
	case 0x26:
		return fmt.Sprintf("lwr %s, %d(%s)", reg(rt), int16(imm16), reg(rs))
	case 0x28:
		return fmt.Sprintf("sb %s, %d(%s)", reg(rt), int16(imm16), reg(rs))
	case 0x29:
		return fmt.Sprintf("sh %s, %d(%s)", reg(rt), int16(imm16), reg(rs))
	case 0x2A:
		return fmt.Sprintf("swl %s, %d(%s)", reg(rt), int16(imm16), reg(rs))
	case 0x2B:
		return fmt.Sprintf("sw %s, %d(%s)", reg(rt), int16(imm16), reg(rs))
	case 0x2E:
		return fmt.Sprintf("swr %s, %d(%s)", reg(rt), int16(imm16), reg(rs))
	default:
		return fmt.Sprintf(".word 0x%08X", word)
	}
}

func special(rs, rt, rd, shamt, funct uint8) string {
	switch funct {
	case 0x00:
		return fmt.Sprintf("sll %s, %s, %d", reg(rd), reg(rt), shamt)
	case 0x02:
		return fmt.Sprintf("srl %s, %s, %d", reg(rd), reg(rt), shamt)
	case 0x03:
		return fmt.Sprintf("sra %s, %s, %d", reg(rd), reg(rt), shamt)
	case 0x04:
		return fmt.Sprintf("sllv %s, %s, %s", reg(rd), reg(rt), reg(rs))
	case 0x06:
		return fmt.Sprintf("srlv %s, %s, %s", reg(rd), reg(rt), reg(rs))
	case 0x07:
		return fmt.Sprintf("srav %s, %s, %s", reg(rd), reg(rt), reg(rs))
	case 0x08:
		return fmt.Sprintf("jr %s", reg(rs))
	case 0x09:
		return fmt.Sprintf("jalr %s, %s", reg(rd), reg(rs))
	case 0x0C:
		return "syscall"
	case 0x0D:
		return "break"
	case 0x10:
		return fmt.Sprintf("mfhi %s", reg(rd))
	case 0x11:
		return fmt.Sprintf("mthi %s", reg(rs))
	case 0x12:
		return fmt.Sprintf("mflo %s", reg(rd))
	case 0x13:
		return fmt.Sprintf("mtlo %s", reg(rs))
	case 0x18:
		return fmt.Sprintf("mult %s, %s", reg(rs), reg(rt))
	case 0x19:
		return fmt.Sprintf("multu %s, %s", reg(rs), reg(rt))
	case 0x1A:
		return fmt.Sprintf("div %s, %s", reg(rs), reg(rt))
	case 0x1B:
		return fmt.Sprintf("divu %s, %s", reg(rs), reg(rt))
	case 0x20:
		return fmt.Sprintf("add %s, %s, %s", reg(rd), reg(rs), reg(rt))
	case 0x21:
		return fmt.Sprintf("addu %s, %s, %s", reg(rd), reg(rs), reg(rt))
	case 0x22:
		return fmt.Sprintf("sub %s, %s, %s", reg(rd), reg(rs), reg(rt))
	case 0x23:
		return fmt.Sprintf("subu %s, %s, %s", reg(rd), reg(rs), reg(rt))
	case 0x24:
		return fmt.Sprintf("and %s, %s, %s", reg(rd), reg(rs), reg(rt))
	case 0x25:
		return fmt.Sprintf("or %s, %s, %s", reg(rd), reg(rs), reg(rt))
	case 0x26:
		return fmt.Sprintf("xor %s, %s, %s", reg(rd), reg(rs), reg(rt))
	case 0x27:
		return fmt.Sprintf("nor %s, %s, %s", reg(rd), reg(rs), reg(rt))
	case 0x2A:
		return fmt.Sprintf("slt %s, %s, %s", reg(rd), reg(rs), reg(rt))
	case 0x2B:
		return fmt.Sprintf("sltu %s, %s, %s", reg(rd), reg(rs), reg(rt))
	default:
		return fmt.Sprintf("special funct=0x%02X", funct)
	}
}

func regimm(rs, rt uint8, imm16 uint16) string {
	switch rt {
	case 0x00:
		return fmt.Sprintf("bltz %s, %d", reg(rs), int16(imm16))
	case 0x01:
		return fmt.Sprintf("bgez %s, %d", reg(rs), int16(imm16))
	case 0x10:
		return fmt.Sprintf("bltzal %s, %d", reg(rs), int16(imm16))
	case 0x11:
		return fmt.Sprintf("bgezal %s, %d", reg(rs), int16(imm16))
	default:
		return fmt.Sprintf("regimm rt=0x%02X", rt)
	}
}

func cop0(rs, rt, rd, funct uint8) string {
	switch rs {
	case 0x00:
		return fmt.Sprintf("mfc0 %s, $%d", reg(rt), rd)
	case 0x04:
		return fmt.Sprintf("mtc0 %s, $%d", reg(rt), rd)
	case 0x10:
		if funct == 0x10 {
			return "rfe"
		}
	}
	return "cop0 ?"
}
