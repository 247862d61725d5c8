// Package trace reads dynamic instruction traces.
//
// A trace is a whitespace-separated ASCII stream of five-field records: a
// hexadecimal program counter, an operation type, and three architectural
// register numbers (destination and two sources, -1 for none). Records
// normally occupy one line each, but the scanner is token-based so a record
// may span lines.
package trace

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// RegNone marks an absent register operand.
const RegNone = -1

// Record is one dynamic instruction as it appears in the trace.
type Record struct {
	// PC is the program counter of the instruction.
	PC uint64
	// OpType selects the execution latency class (0, 1, or 2).
	OpType int
	// Dest is the destination architectural register, or RegNone.
	Dest int
	// Src1 and Src2 are the source architectural registers, or RegNone.
	Src1 int
	Src2 int
}

// Reader scans instruction records from a trace stream. The first short or
// malformed record exhausts the reader the same way end-of-file does.
type Reader struct {
	scanner *bufio.Scanner
	file    *os.File
	done    bool
}

// NewReader returns a Reader scanning records from r.
func NewReader(r io.Reader) *Reader {
	s := bufio.NewScanner(r)
	s.Split(bufio.ScanWords)
	return &Reader{scanner: s}
}

// Open opens the trace file at path. The returned Reader owns the file;
// call Close when done with it.
func Open(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("could not open trace file %s: %w", path, err)
	}
	r := NewReader(f)
	r.file = f
	return r, nil
}

// Close marks the reader exhausted and releases the underlying file, if any.
// It is safe to call Close more than once.
func (r *Reader) Close() error {
	r.done = true
	if r.file == nil {
		return nil
	}
	err := r.file.Close()
	r.file = nil
	return err
}

// Next returns the next record. ok is false once the trace is exhausted.
func (r *Reader) Next() (rec Record, ok bool) {
	if r.done {
		return Record{}, false
	}

	tok, ok := r.nextToken()
	if !ok {
		return Record{}, false
	}
	pc, err := parsePC(tok)
	if err != nil {
		r.done = true
		return Record{}, false
	}

	var fields [4]int
	for i := range fields {
		tok, ok := r.nextToken()
		if !ok {
			return Record{}, false
		}
		v, err := strconv.Atoi(tok)
		if err != nil {
			r.done = true
			return Record{}, false
		}
		fields[i] = v
	}

	return Record{
		PC:     pc,
		OpType: fields[0],
		Dest:   fields[1],
		Src1:   fields[2],
		Src2:   fields[3],
	}, true
}

func (r *Reader) nextToken() (string, bool) {
	if !r.scanner.Scan() {
		r.done = true
		return "", false
	}
	return r.scanner.Text(), true
}

// parsePC parses a hexadecimal program counter with an optional 0x prefix.
func parsePC(tok string) (uint64, error) {
	if strings.HasPrefix(tok, "0x") || strings.HasPrefix(tok, "0X") {
		tok = tok[2:]
	}
	return strconv.ParseUint(tok, 16, 64)
}
