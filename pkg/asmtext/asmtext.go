// Package asmtext reads and writes instruction sequences as line-oriented
// assembly text, generalized from the donor CLI's colon-separated inline
// parsing (cmd/z80opt/main.go's parseAssembly) into both an inline form
// and a multi-line file form.
package asmtext

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/oisee/superopt64/pkg/decode"
	"github.com/oisee/superopt64/pkg/inst"
)

// ReadInline parses a single colon-separated line such as
// "add x0, x1, x2 : mov x3, x0" into a sequence.
func ReadInline(text string) ([]inst.Instruction, error) {
	var seq []inst.Instruction
	for _, part := range strings.Split(text, ":") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		instr, err := decode.Decode(part)
		if err != nil {
			return nil, err
		}
		seq = append(seq, instr)
	}
	if len(seq) == 0 {
		return nil, fmt.Errorf("no instructions parsed from %q", text)
	}
	return seq, nil
}

// ReadSequence reads one instruction per line from r. Blank lines, comment
// lines ('#', ';', '//' or '@' prefix), directives ('.' prefix) and labels
// (trailing ':') are skipped.
func ReadSequence(r io.Reader) ([]inst.Instruction, error) {
	var seq []inst.Instruction
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, ";") ||
			strings.HasPrefix(line, "//") || strings.HasPrefix(line, "@") ||
			strings.HasPrefix(line, ".") || strings.HasSuffix(line, ":") {
			continue
		}
		instr, err := decode.Decode(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		seq = append(seq, instr)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return seq, nil
}

// WriteSequence writes seq as one disassembled instruction per line.
func WriteSequence(w io.Writer, seq []inst.Instruction) error {
	for _, in := range seq {
		if _, err := fmt.Fprintln(w, inst.Disassemble(in)); err != nil {
			return err
		}
	}
	return nil
}

// WriteInline renders seq as a single colon-separated line, matching the
// donor's SourceASM/ReplacementASM JSON field convention.
func WriteInline(seq []inst.Instruction) string {
	return inst.DisassembleSeq(seq)
}
