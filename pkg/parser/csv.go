// Package parser turns raw CSV text into a header list and a
// row-of-strings matrix. It is a best-effort tokenizer, not a strict
// RFC 4180 validator: malformed quoting degrades gracefully and always
// yields some row, never an error.
package parser

import "strings"

// Table is the raw parse result: headers plus untyped rows.
type Table struct {
	Headers []string
	Records [][]string
}

// NumRows returns the number of data rows.
func (t *Table) NumRows() int {
	return len(t.Records)
}

// Parse tokenizes CSV text. Line endings are normalized, blank lines
// dropped, and lines starting with '#' ignored (exported files may
// carry free-form comment trailers). The first surviving line is
// always treated as headers.
func Parse(data []byte) *Table {
	data = SanitizeUTF8(data)
	data = NormalizeLineEndings(data)

	table := &Table{}
	scanner := newLineScanner()

	for _, line := range strings.Split(string(data), "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		if strings.HasPrefix(strings.TrimSpace(line), "#") {
			continue
		}

		fields := scanner.scanLine(line)
		if table.Headers == nil {
			table.Headers = fields
			continue
		}
		table.Records = append(table.Records, fields)
	}

	if table.Headers == nil {
		table.Headers = []string{}
	}
	return table
}

// scanState tracks the tokenizer's position within a field.
type scanState uint8

const (
	stateFieldStart scanState = iota
	stateInField
	stateInQuotedField
	stateQuoteInQuotedField
)

// lineScanner is a per-line finite state machine. It handles embedded
// delimiters, escaped quotes ("" inside a quoted field) and stray
// quotes without ever raising an error.
type lineScanner struct {
	state scanState
	field strings.Builder
}

func newLineScanner() *lineScanner {
	return &lineScanner{}
}

func (s *lineScanner) scanLine(line string) []string {
	fields := make([]string, 0, 8)
	s.state = stateFieldStart
	s.field.Reset()

	flush := func() {
		fields = append(fields, strings.TrimSpace(s.field.String()))
		s.field.Reset()
		s.state = stateFieldStart
	}

	for i := 0; i < len(line); i++ {
		c := line[i]

		switch s.state {
		case stateFieldStart:
			switch c {
			case '"':
				s.state = stateInQuotedField
			case ',':
				flush()
			default:
				s.field.WriteByte(c)
				s.state = stateInField
			}

		case stateInField:
			if c == ',' {
				flush()
			} else {
				s.field.WriteByte(c)
			}

		case stateInQuotedField:
			if c == '"' {
				s.state = stateQuoteInQuotedField
			} else {
				s.field.WriteByte(c)
			}

		case stateQuoteInQuotedField:
			switch c {
			case '"':
				// Escaped quote: emit a literal one.
				s.field.WriteByte('"')
				s.state = stateInQuotedField
			case ',':
				flush()
			default:
				// Stray character after a closing quote; be lenient
				// and keep accumulating.
				s.field.WriteByte(c)
				s.state = stateInField
			}
		}
	}

	// End of line flushes the last field, terminated or not.
	flush()
	return fields
}

// NormalizeLineEndings rewrites \r\n and bare \r to \n in place.
func NormalizeLineEndings(data []byte) []byte {
	if len(data) == 0 {
		return data
	}

	needs := false
	for _, c := range data {
		if c == '\r' {
			needs = true
			break
		}
	}
	if !needs {
		return data
	}

	j := 0
	for i := 0; i < len(data); i++ {
		if data[i] == '\r' {
			data[j] = '\n'
			j++
			if i+1 < len(data) && data[i+1] == '\n' {
				i++
			}
		} else {
			data[j] = data[i]
			j++
		}
	}
	return data[:j]
}

// SanitizeUTF8 replaces invalid UTF-8 sequences with the replacement
// character so mixed-encoding files cannot corrupt downstream string
// handling.
func SanitizeUTF8(data []byte) []byte {
	if len(data) == 0 {
		return data
	}

	valid := true
	for i := 0; i < len(data); {
		if data[i] < 0x80 {
			i++
			continue
		}
		size := utf8SequenceLength(data[i])
		if size == 0 || i+size > len(data) {
			valid = false
			break
		}
		for j := 1; j < size; j++ {
			if data[i+j]&0xC0 != 0x80 {
				valid = false
				break
			}
		}
		if !valid {
			break
		}
		i += size
	}
	if valid {
		return data
	}

	result := make([]byte, 0, len(data))
	for i := 0; i < len(data); {
		if data[i] < 0x80 {
			result = append(result, data[i])
			i++
			continue
		}

		size := utf8SequenceLength(data[i])
		if size == 0 || i+size > len(data) {
			result = append(result, 0xEF, 0xBF, 0xBD)
			i++
			continue
		}

		ok := true
		for j := 1; j < size; j++ {
			if data[i+j]&0xC0 != 0x80 {
				ok = false
				break
			}
		}
		if ok {
			result = append(result, data[i:i+size]...)
			i += size
		} else {
			result = append(result, 0xEF, 0xBF, 0xBD)
			i++
		}
	}
	return result
}

func utf8SequenceLength(b byte) int {
	switch {
	case b < 0x80:
		return 1
	case b < 0xC0:
		return 0
	case b < 0xE0:
		return 2
	case b < 0xF0:
		return 3
	case b < 0xF8:
		return 4
	default:
		return 0
	}
}
