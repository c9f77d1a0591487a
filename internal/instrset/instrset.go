// Copyright 2020-2023 Buf Technologies, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package instrset holds the process-wide static data the LSP core
// consults by key: per-CPU instruction sets and one-line descriptions,
// directive documentation with alias resolution, and snippet templates.
// Per spec.md §1/§5, these tables are built once by the host and treated
// as immutable thereafter; no reader synchronizes.
package instrset

import "strings"

// Set is a case-insensitive mnemonic table for one CPU target.
type Set struct {
	CPU   string
	byLex map[string]string // lowercase mnemonic -> one-line description
}

// IsInstruction implements token.InstructionSet.
func (s *Set) IsInstruction(lowercaseLexeme string) bool {
	_, ok := s.byLex[lowercaseLexeme]
	return ok
}

// Describe returns the one-line description for a mnemonic, if known.
func (s *Set) Describe(lexeme string) (string, bool) {
	d, ok := s.byLex[strings.ToLower(lexeme)]
	return d, ok
}

// Mnemonics returns every mnemonic in the set, for completion.
func (s *Set) Mnemonics() map[string]string {
	return s.byLex
}

func newSet(cpu string, entries map[string]string) *Set {
	lower := make(map[string]string, len(entries))
	for k, v := range entries {
		lower[strings.ToLower(k)] = v
	}
	return &Set{CPU: cpu, byLex: lower}
}

// MOS6502 is the base NMOS 6502 instruction set.
var MOS6502 = newSet("6502", map[string]string{
	"adc": "Add with carry",
	"and": "Bitwise AND with accumulator",
	"asl": "Arithmetic shift left",
	"bcc": "Branch if carry clear",
	"bcs": "Branch if carry set",
	"beq": "Branch if equal",
	"bit": "Test bits",
	"bmi": "Branch if minus",
	"bne": "Branch if not equal",
	"bpl": "Branch if plus",
	"brk": "Force interrupt",
	"bvc": "Branch if overflow clear",
	"bvs": "Branch if overflow set",
	"clc": "Clear carry flag",
	"cld": "Clear decimal mode",
	"cli": "Clear interrupt disable",
	"clv": "Clear overflow flag",
	"cmp": "Compare accumulator",
	"cpx": "Compare X register",
	"cpy": "Compare Y register",
	"dec": "Decrement memory",
	"dex": "Decrement X register",
	"dey": "Decrement Y register",
	"eor": "Bitwise exclusive OR",
	"inc": "Increment memory",
	"inx": "Increment X register",
	"iny": "Increment Y register",
	"jmp": "Jump",
	"jsr": "Jump to subroutine",
	"lda": "Load accumulator",
	"ldx": "Load X register",
	"ldy": "Load Y register",
	"lsr": "Logical shift right",
	"nop": "No operation",
	"ora": "Bitwise OR with accumulator",
	"pha": "Push accumulator",
	"php": "Push processor status",
	"pla": "Pull accumulator",
	"plp": "Pull processor status",
	"rol": "Rotate left",
	"ror": "Rotate right",
	"rti": "Return from interrupt",
	"rts": "Return from subroutine",
	"sbc": "Subtract with carry",
	"sec": "Set carry flag",
	"sed": "Set decimal flag",
	"sei": "Set interrupt disable",
	"sta": "Store accumulator",
	"stx": "Store X register",
	"sty": "Store Y register",
	"tax": "Transfer accumulator to X",
	"tay": "Transfer accumulator to Y",
	"tsx": "Transfer stack pointer to X",
	"txa": "Transfer X to accumulator",
	"txs": "Transfer X to stack pointer",
	"tya": "Transfer Y to accumulator",
})

// WDC65816 is the 65C816 instruction set, the 6502 set plus its extended
// opcodes.
var WDC65816 = func() *Set {
	extra := map[string]string{
		"brl": "Branch long",
		"cop": "Co-processor enable",
		"jml": "Jump long",
		"jsl": "Jump subroutine long",
		"mvn": "Block move negative",
		"mvp": "Block move positive",
		"pea": "Push effective address",
		"pei": "Push effective indirect address",
		"per": "Push effective relative address",
		"phb": "Push data bank register",
		"phd": "Push direct page register",
		"phk": "Push program bank register",
		"phx": "Push X register",
		"phy": "Push Y register",
		"plb": "Pull data bank register",
		"pld": "Pull direct page register",
		"plx": "Pull X register",
		"ply": "Pull Y register",
		"rep": "Reset processor status bits",
		"rtl": "Return from subroutine long",
		"sep": "Set processor status bits",
		"stp": "Stop the processor",
		"stz": "Store zero",
		"swa": "Swap accumulator bytes",
		"tcd": "Transfer accumulator to direct page",
		"tcs": "Transfer accumulator to stack pointer",
		"tdc": "Transfer direct page to accumulator",
		"trb": "Test and reset bits",
		"tsb": "Test and set bits",
		"tsc": "Transfer stack pointer to accumulator",
		"txy": "Transfer X to Y",
		"tyx": "Transfer Y to X",
		"wai": "Wait for interrupt",
		"wdm": "Reserved for future expansion",
		"xba": "Exchange B and A accumulator",
		"xce": "Exchange carry and emulation bits",
	}
	merged := make(map[string]string, len(MOS6502.byLex)+len(extra))
	for k, v := range MOS6502.byLex {
		merged[k] = v
	}
	for k, v := range extra {
		merged[k] = v
	}
	return newSet("65816", merged)
}()

// ForCPU returns the instruction set named by a .setcpu string (case
// insensitive), falling back to the 6502 baseline for unknown names so the
// lexer always has something to consult.
func ForCPU(name string) *Set {
	switch strings.ToLower(name) {
	case "65816", "w65c816", "816":
		return WDC65816
	default:
		return MOS6502
	}
}
