package pdf

import (
	"bytes"
	"errors"
	"io"
	"strconv"
)

type tokenType int

const (
	tokDictOpen tokenType = iota
	tokDictClose
	tokArrayOpen
	tokArrayClose
	tokName
	tokString
	tokNumber
	tokKeyword
)

type token struct {
	typ   tokenType
	str   string
	bytes []byte
	num   float64
	isInt bool
	pos   int
}

// lexer tokenizes an in-memory PDF byte slice. Template documents are small
// so the whole file is held in memory, mirroring how the text content is
// rendered back out.
type lexer struct {
	data []byte
	pos  int
}

func newLexer(data []byte, pos int) *lexer { return &lexer{data: data, pos: pos} }

func isWhitespace(c byte) bool {
	return c == 0x00 || c == 0x09 || c == 0x0A || c == 0x0C || c == 0x0D || c == 0x20
}

func isDelimiter(c byte) bool {
	switch c {
	case '(', ')', '<', '>', '[', ']', '{', '}', '/', '%':
		return true
	}
	return isWhitespace(c)
}

func (l *lexer) skipWS() {
	for l.pos < len(l.data) {
		c := l.data[l.pos]
		if isWhitespace(c) {
			l.pos++
			continue
		}
		if c == '%' {
			for l.pos < len(l.data) && l.data[l.pos] != '\n' && l.data[l.pos] != '\r' {
				l.pos++
			}
			continue
		}
		return
	}
}

func (l *lexer) next() (token, error) {
	l.skipWS()
	if l.pos >= len(l.data) {
		return token{}, io.EOF
	}
	start := l.pos
	c := l.data[l.pos]
	switch c {
	case '<':
		if l.pos+1 < len(l.data) && l.data[l.pos+1] == '<' {
			l.pos += 2
			return token{typ: tokDictOpen, pos: start}, nil
		}
		return l.scanHexString()
	case '>':
		if l.pos+1 < len(l.data) && l.data[l.pos+1] == '>' {
			l.pos += 2
			return token{typ: tokDictClose, pos: start}, nil
		}
		l.pos++
		return token{typ: tokKeyword, str: ">", pos: start}, nil
	case '[':
		l.pos++
		return token{typ: tokArrayOpen, pos: start}, nil
	case ']':
		l.pos++
		return token{typ: tokArrayClose, pos: start}, nil
	case '(':
		return l.scanLiteralString()
	case '/':
		return l.scanName()
	}
	if c == '+' || c == '-' || c == '.' || (c >= '0' && c <= '9') {
		return l.scanNumber()
	}
	return l.scanKeyword()
}

func (l *lexer) scanName() (token, error) {
	start := l.pos
	l.pos++
	var out bytes.Buffer
	for l.pos < len(l.data) {
		c := l.data[l.pos]
		if isDelimiter(c) {
			break
		}
		if c == '#' && l.pos+2 < len(l.data) {
			hi := hexVal(l.data[l.pos+1])
			lo := hexVal(l.data[l.pos+2])
			if hi >= 0 && lo >= 0 {
				out.WriteByte(byte(hi<<4 | lo))
				l.pos += 3
				continue
			}
		}
		out.WriteByte(c)
		l.pos++
	}
	return token{typ: tokName, str: out.String(), pos: start}, nil
}

func (l *lexer) scanNumber() (token, error) {
	start := l.pos
	for l.pos < len(l.data) {
		c := l.data[l.pos]
		if c == '+' || c == '-' || c == '.' || (c >= '0' && c <= '9') {
			l.pos++
			continue
		}
		break
	}
	text := string(l.data[start:l.pos])
	if !bytes.ContainsAny(l.data[start:l.pos], ".") {
		n, err := strconv.ParseInt(text, 10, 64)
		if err == nil {
			return token{typ: tokNumber, num: float64(n), isInt: true, str: text, pos: start}, nil
		}
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return token{}, errors.New("pdf: malformed number at " + strconv.Itoa(start))
	}
	return token{typ: tokNumber, num: f, str: text, pos: start}, nil
}

func (l *lexer) scanKeyword() (token, error) {
	start := l.pos
	for l.pos < len(l.data) && !isDelimiter(l.data[l.pos]) {
		l.pos++
	}
	if l.pos == start {
		l.pos++
		return token{typ: tokKeyword, str: string(l.data[start : start+1]), pos: start}, nil
	}
	return token{typ: tokKeyword, str: string(l.data[start:l.pos]), pos: start}, nil
}

func (l *lexer) scanLiteralString() (token, error) {
	start := l.pos
	l.pos++
	var out bytes.Buffer
	depth := 1
	for l.pos < len(l.data) {
		c := l.data[l.pos]
		switch c {
		case '\\':
			l.pos++
			if l.pos >= len(l.data) {
				return token{}, errors.New("pdf: unterminated string")
			}
			e := l.data[l.pos]
			switch e {
			case 'n':
				out.WriteByte('\n')
			case 'r':
				out.WriteByte('\r')
			case 't':
				out.WriteByte('\t')
			case 'b':
				out.WriteByte('\b')
			case 'f':
				out.WriteByte('\f')
			case '(', ')', '\\':
				out.WriteByte(e)
			case '\n':
				// line continuation
			case '\r':
				if l.pos+1 < len(l.data) && l.data[l.pos+1] == '\n' {
					l.pos++
				}
			default:
				if e >= '0' && e <= '7' {
					v := int(e - '0')
					for k := 0; k < 2 && l.pos+1 < len(l.data); k++ {
						d := l.data[l.pos+1]
						if d < '0' || d > '7' {
							break
						}
						v = v*8 + int(d-'0')
						l.pos++
					}
					out.WriteByte(byte(v))
				} else {
					out.WriteByte(e)
				}
			}
			l.pos++
		case '(':
			depth++
			out.WriteByte(c)
			l.pos++
		case ')':
			depth--
			l.pos++
			if depth == 0 {
				return token{typ: tokString, bytes: out.Bytes(), pos: start}, nil
			}
			out.WriteByte(c)
		default:
			out.WriteByte(c)
			l.pos++
		}
	}
	return token{}, errors.New("pdf: unterminated string")
}

func (l *lexer) scanHexString() (token, error) {
	start := l.pos
	l.pos++
	var out bytes.Buffer
	var nibbles []int
	for l.pos < len(l.data) {
		c := l.data[l.pos]
		if c == '>' {
			l.pos++
			if len(nibbles)%2 == 1 {
				nibbles = append(nibbles, 0)
			}
			for i := 0; i+1 < len(nibbles); i += 2 {
				out.WriteByte(byte(nibbles[i]<<4 | nibbles[i+1]))
			}
			return token{typ: tokString, bytes: out.Bytes(), pos: start}, nil
		}
		if v := hexVal(c); v >= 0 {
			nibbles = append(nibbles, v)
		}
		l.pos++
	}
	return token{}, errors.New("pdf: unterminated hex string")
}

func hexVal(c byte) int {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0')
	case c >= 'a' && c <= 'f':
		return int(c-'a') + 10
	case c >= 'A' && c <= 'F':
		return int(c-'A') + 10
	}
	return -1
}
