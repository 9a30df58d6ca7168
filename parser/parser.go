// Package parser implements the assembly front end: a hand-rolled lexer and
// recursive-descent parser that turn assembly source into an ordered
// sequence of isa.Instruction values, collecting all errors it finds
// (rather than stopping at the first) so a single pass can report
// everything wrong with a source file.
//
// The grammar has no labels, symbols, macros, directives, or string
// escapes — every operand is a register or a numeric literal, and control
// transfers use raw numeric offsets, not named targets. That keeps this
// package a lexer, a parser, and an error list; there is nothing here for a
// symbol table or a preprocessor to do.
package parser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/lookbusy1344/rvm/isa"
)

// Program is the ordered sequence of instructions produced by Parse, ready
// for encoder.Serialize.
type Program struct {
	Instructions []isa.Instruction
}

// Parser turns a token stream into a Program, collecting diagnostics rather
// than stopping at the first error.
type Parser struct {
	lexer  *Lexer
	tokens []Token
	lines  []string
	pos    int
	cur    Token
	peek   Token
	errors *ErrorList
}

// Parse lexes and parses src (from filename, used only in diagnostics) and
// returns the resulting Program along with any errors found.
// Parse always returns a non-nil Program; callers must check
// errs.HasErrors() before using it, since a Program built from a source
// file with errors is incomplete.
func Parse(filename, src string) (*Program, *ErrorList) {
	lowered := strings.ToLower(src)
	lexer := NewLexer(lowered, filename)
	p := &Parser{
		lexer:  lexer,
		tokens: lexer.TokenizeAll(),
		lines:  strings.Split(lowered, "\n"),
		errors: &ErrorList{},
	}
	for _, e := range lexer.Errors().Errors {
		p.errors.AddError(e)
	}
	p.pos = 0
	p.cur = p.tokens[0]
	if len(p.tokens) > 1 {
		p.peek = p.tokens[1]
	}

	prog := &Program{}
	for p.cur.Type != TokenEOF {
		if p.cur.Type == TokenNewline {
			p.advance()
			continue
		}
		if inst, ok := p.parseLine(); ok {
			prog.Instructions = append(prog.Instructions, inst)
		}
	}

	// Attach the offending source line to every diagnostic that lacks one,
	// including those the lexer produced.
	for _, e := range p.errors.Errors {
		if e.Context == "" && e.Pos.Line >= 1 && e.Pos.Line <= len(p.lines) {
			e.Context = strings.TrimRight(p.lines[e.Pos.Line-1], "\r")
		}
	}
	return prog, p.errors
}

func (p *Parser) advance() {
	p.pos++
	p.cur = p.peek
	if p.pos+1 < len(p.tokens) {
		p.peek = p.tokens[p.pos+1]
	} else {
		p.peek = Token{Type: TokenEOF}
	}
}

func (p *Parser) errorf(pos Position, kind ErrorKind, format string, args ...any) {
	p.errors.AddError(NewError(pos, kind, fmt.Sprintf(format, args...)))
}

// parseLine consumes one mnemonic and its operands, then requires the line
// to end at a newline or EOF. On error, it skips to the next newline so one
// bad line doesn't cascade into spurious diagnostics for the rest of the
// file.
func (p *Parser) parseLine() (isa.Instruction, bool) {
	if p.cur.Type != TokenIdentifier {
		p.errorf(p.cur.Pos, ErrorSyntax, "expected an instruction mnemonic, found %s %q", p.cur.Type, p.cur.Literal)
		p.skipLine()
		return isa.Instruction{}, false
	}
	mnemonic := p.cur.Literal
	startPos := p.cur.Pos
	p.advance()

	inst, ok := p.parseOperands(mnemonic, startPos)
	if !ok {
		p.skipLine()
		return isa.Instruction{}, false
	}

	if p.cur.Type != TokenNewline && p.cur.Type != TokenEOF {
		p.errorf(p.cur.Pos, ErrorSyntax, "unexpected trailing token %q after %q", p.cur.Literal, mnemonic)
		p.skipLine()
		return isa.Instruction{}, false
	}
	return inst, true
}

func (p *Parser) skipLine() {
	for p.cur.Type != TokenNewline && p.cur.Type != TokenEOF {
		p.advance()
	}
}

var brFlags = map[string][3]bool{
	// {N, Z, P}
	"brn":  {true, false, false},
	"brz":  {false, true, false},
	"brp":  {false, false, true},
	"brnz": {true, true, false},
	"brnp": {true, false, true},
	"brzp": {false, true, true},
}

var trapVectors = map[string]uint16{
	"tgetc":   isa.TrapGetc,
	"toutc":   isa.TrapOut,
	"tputs":   isa.TrapPuts,
	"tin":     isa.TrapIn,
	"tputsp":  isa.TrapPutsp,
	"thalt":   isa.TrapHalt,
	"tinu16":  isa.TrapInU16,
	"toutu16": isa.TrapOutU16,
}

func (p *Parser) parseOperands(mnemonic string, pos Position) (isa.Instruction, bool) {
	if flags, ok := brFlags[mnemonic]; ok {
		off, ok := p.expectNumber(9)
		if !ok {
			return isa.Instruction{}, false
		}
		return isa.Instruction{Kind: isa.KindBr, N: flags[0], Z: flags[1], P: flags[2], Offset9: off}, true
	}

	switch mnemonic {
	case "add", "and":
		return p.parseAddOrAnd(mnemonic)
	case "ld", "ldi", "lea":
		return p.parseRegNumber(mnemonic)
	case "st", "sti":
		return p.parseRegNumber(mnemonic)
	case "ldr", "str":
		return p.parseRegRegNumber(mnemonic)
	case "not":
		dr, sr, ok := p.expectRegReg()
		if !ok {
			return isa.Instruction{}, false
		}
		return isa.Instruction{Kind: isa.KindNot, DR: dr, SR: sr}, true
	case "jmp":
		base, ok := p.expectRegister()
		if !ok {
			return isa.Instruction{}, false
		}
		return isa.Instruction{Kind: isa.KindJmp, Base: base}, true
	case "jsrr":
		base, ok := p.expectRegister()
		if !ok {
			return isa.Instruction{}, false
		}
		return isa.Instruction{Kind: isa.KindJsrr, Base: base}, true
	case "jsr":
		off, ok := p.expectNumber(11)
		if !ok {
			return isa.Instruction{}, false
		}
		return isa.Instruction{Kind: isa.KindJsr, Offset11: off}, true
	case "rti":
		return isa.Instruction{Kind: isa.KindRti}, true
	case "res":
		return isa.Instruction{Kind: isa.KindRes}, true
	case "trap":
		return p.parseTrap()
	case "halt":
		return isa.Instruction{Kind: isa.KindTrap, TrapVect: isa.TrapHalt}, true
	default:
		p.errorf(pos, ErrorInvalidInstruction, "unknown mnemonic %q", mnemonic)
		return isa.Instruction{}, false
	}
}

// parseAddOrAnd handles "reg,reg,reg" (the register form) or "reg,reg,number"
// (the immediate form) for both add and and.
func (p *Parser) parseAddOrAnd(mnemonic string) (isa.Instruction, bool) {
	dr, ok := p.expectRegister()
	if !ok {
		return isa.Instruction{}, false
	}
	if !p.expectComma() {
		return isa.Instruction{}, false
	}
	sr1, ok := p.expectRegister()
	if !ok {
		return isa.Instruction{}, false
	}
	if !p.expectComma() {
		return isa.Instruction{}, false
	}

	regKind, immKind := isa.KindAddReg, isa.KindAddImm
	if mnemonic == "and" {
		regKind, immKind = isa.KindAndReg, isa.KindAndImm
	}

	if p.cur.Type == TokenRegister {
		sr2, _ := p.expectRegister()
		return isa.Instruction{Kind: regKind, DR: dr, SR1: sr1, SR2: sr2}, true
	}
	imm, ok := p.expectNumber(5)
	if !ok {
		return isa.Instruction{}, false
	}
	return isa.Instruction{Kind: immKind, DR: dr, SR1: sr1, Imm5: imm}, true
}

// parseRegNumber handles the "reg,number" shape shared by ld/ldi/lea/st/sti.
func (p *Parser) parseRegNumber(mnemonic string) (isa.Instruction, bool) {
	r, ok := p.expectRegister()
	if !ok {
		return isa.Instruction{}, false
	}
	if !p.expectComma() {
		return isa.Instruction{}, false
	}
	off, ok := p.expectNumber(9)
	if !ok {
		return isa.Instruction{}, false
	}
	switch mnemonic {
	case "ld":
		return isa.Instruction{Kind: isa.KindLd, DR: r, Offset9: off}, true
	case "ldi":
		return isa.Instruction{Kind: isa.KindLdi, DR: r, Offset9: off}, true
	case "lea":
		return isa.Instruction{Kind: isa.KindLea, DR: r, Offset9: off}, true
	case "st":
		return isa.Instruction{Kind: isa.KindSt, SR: r, Offset9: off}, true
	case "sti":
		return isa.Instruction{Kind: isa.KindSti, SR: r, Offset9: off}, true
	}
	panic("parser: unreachable mnemonic " + mnemonic)
}

// parseRegRegNumber handles the "reg,reg,number" shape shared by ldr/str.
func (p *Parser) parseRegRegNumber(mnemonic string) (isa.Instruction, bool) {
	r, ok := p.expectRegister()
	if !ok {
		return isa.Instruction{}, false
	}
	if !p.expectComma() {
		return isa.Instruction{}, false
	}
	base, ok := p.expectRegister()
	if !ok {
		return isa.Instruction{}, false
	}
	if !p.expectComma() {
		return isa.Instruction{}, false
	}
	off, ok := p.expectNumber(6)
	if !ok {
		return isa.Instruction{}, false
	}
	if mnemonic == "ldr" {
		return isa.Instruction{Kind: isa.KindLdr, DR: r, Base: base, Offset6: off}, true
	}
	return isa.Instruction{Kind: isa.KindStr, SR: r, Base: base, Offset6: off}, true
}

// parseTrap parses "trap <trap-name>". Because the lexer reads a whole
// identifier in one greedy scan, longer trap names like "tinu16" are never
// mistaken for the shorter prefix "tin"; a prefix scanner would have to try
// longer names first.
func (p *Parser) parseTrap() (isa.Instruction, bool) {
	if p.cur.Type != TokenIdentifier {
		p.errorf(p.cur.Pos, ErrorInvalidOperand, "expected a trap name, found %s %q", p.cur.Type, p.cur.Literal)
		return isa.Instruction{}, false
	}
	vect, ok := trapVectors[p.cur.Literal]
	if !ok {
		p.errorf(p.cur.Pos, ErrorInvalidOperand, "unknown trap name %q", p.cur.Literal)
		return isa.Instruction{}, false
	}
	p.advance()
	return isa.Instruction{Kind: isa.KindTrap, TrapVect: vect}, true
}

func (p *Parser) expectComma() bool {
	if p.cur.Type != TokenComma {
		p.errorf(p.cur.Pos, ErrorSyntax, "expected ',', found %s %q", p.cur.Type, p.cur.Literal)
		return false
	}
	p.advance()
	return true
}

func (p *Parser) expectRegister() (int, bool) {
	if p.cur.Type != TokenRegister {
		p.errorf(p.cur.Pos, ErrorInvalidOperand, "expected a register r0-r7, found %s %q", p.cur.Type, p.cur.Literal)
		return 0, false
	}
	reg := int(p.cur.Literal[1] - '0')
	p.advance()
	return reg, true
}

func (p *Parser) expectRegReg() (int, int, bool) {
	a, ok := p.expectRegister()
	if !ok {
		return 0, 0, false
	}
	if !p.expectComma() {
		return 0, 0, false
	}
	b, ok := p.expectRegister()
	if !ok {
		return 0, 0, false
	}
	return a, b, true
}

// expectNumber parses a "#<decimal>" or "x<hex>" literal into its 16-bit
// unsigned bit pattern. bits is the width of the instruction field the
// value is headed for; a literal whose bit pattern does not fit earns a
// truncation warning, since the encoder keeps only the low bits.
func (p *Parser) expectNumber(bits uint) (uint16, bool) {
	if p.cur.Type != TokenNumber {
		p.errorf(p.cur.Pos, ErrorInvalidOperand, "expected a number, found %s %q", p.cur.Type, p.cur.Literal)
		return 0, false
	}
	lit := p.cur.Literal
	pos := p.cur.Pos
	var n uint64
	var err error
	switch {
	case strings.HasPrefix(lit, "#"):
		n, err = strconv.ParseUint(lit[1:], 10, 16)
	case strings.HasPrefix(lit, "x"):
		n, err = strconv.ParseUint(lit[1:], 16, 16)
	default:
		err = strconv.ErrSyntax
	}
	if err != nil {
		p.errorf(pos, ErrorSyntax, "malformed number %q: %v", lit, err)
		return 0, false
	}
	if n >= 1<<bits {
		p.errors.AddWarning(&Warning{
			Pos:     pos,
			Message: fmt.Sprintf("%q does not fit in a %d-bit field; only the low %d bits are encoded", lit, bits, bits),
		})
	}
	p.advance()
	return uint16(n), true
}
