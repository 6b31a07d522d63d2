// Package pdf implements the minimal PDF object model, reader, and writer
// the renderer needs: enough to load a branded template document, lift its
// pages into form XObjects, and serialize new paginated documents around
// them.
package pdf

import (
	"bytes"
	"fmt"
	"sort"
	"strconv"
)

// Ref identifies an indirect object.
type Ref struct {
	Num int
	Gen int
}

func (r Ref) String() string { return fmt.Sprintf("%d %d R", r.Num, r.Gen) }

// Object is any PDF value. The concrete types below are the full set.
type Object interface {
	encode(buf *bytes.Buffer)
}

// Name is a PDF name without the leading slash.
type Name string

// Int and Real are the two numeric flavors.
type Int int64
type Real float64

// Bool and Null mirror the PDF primitives.
type Bool bool
type Null struct{}

// Str is a literal string's raw bytes.
type Str []byte

// Array is an ordered heterogeneous sequence.
type Array []Object

// Dict maps names to values. Keys serialize in sorted order so output is
// deterministic.
type Dict map[Name]Object

// Stream couples a dictionary with raw (possibly encoded) data. Length is
// derived from Data at write time.
type Stream struct {
	Dict Dict
	Data []byte
}

func (n Name) encode(buf *bytes.Buffer) {
	buf.WriteByte('/')
	for i := 0; i < len(n); i++ {
		c := n[i]
		if c <= 0x20 || c == '/' || c == '#' || c == '(' || c == ')' ||
			c == '<' || c == '>' || c == '[' || c == ']' || c == '%' {
			fmt.Fprintf(buf, "#%02X", c)
			continue
		}
		buf.WriteByte(c)
	}
}

func (i Int) encode(buf *bytes.Buffer) { buf.WriteString(strconv.FormatInt(int64(i), 10)) }

func (r Real) encode(buf *bytes.Buffer) {
	buf.WriteString(strconv.FormatFloat(float64(r), 'f', -1, 64))
}

func (b Bool) encode(buf *bytes.Buffer) {
	if b {
		buf.WriteString("true")
	} else {
		buf.WriteString("false")
	}
}

func (Null) encode(buf *bytes.Buffer) { buf.WriteString("null") }

func (s Str) encode(buf *bytes.Buffer) {
	buf.WriteByte('(')
	for _, c := range s {
		switch c {
		case '(', ')', '\\':
			buf.WriteByte('\\')
			buf.WriteByte(c)
		case '\n':
			buf.WriteString(`\n`)
		case '\r':
			buf.WriteString(`\r`)
		default:
			buf.WriteByte(c)
		}
	}
	buf.WriteByte(')')
}

func (a Array) encode(buf *bytes.Buffer) {
	buf.WriteByte('[')
	for i, o := range a {
		if i > 0 {
			buf.WriteByte(' ')
		}
		o.encode(buf)
	}
	buf.WriteByte(']')
}

func (d Dict) encode(buf *bytes.Buffer) {
	buf.WriteString("<<")
	keys := make([]string, 0, len(d))
	for k := range d {
		keys = append(keys, string(k))
	}
	sort.Strings(keys)
	for _, k := range keys {
		Name(k).encode(buf)
		buf.WriteByte(' ')
		d[Name(k)].encode(buf)
		buf.WriteByte('\n')
	}
	buf.WriteString(">>")
}

func (s *Stream) encode(buf *bytes.Buffer) {
	d := make(Dict, len(s.Dict)+1)
	for k, v := range s.Dict {
		d[k] = v
	}
	d["Length"] = Int(len(s.Data))
	d.encode(buf)
	buf.WriteString("\nstream\n")
	buf.Write(s.Data)
	buf.WriteString("\nendstream")
}

func (r Ref) encode(buf *bytes.Buffer) {
	fmt.Fprintf(buf, "%d %d R", r.Num, r.Gen)
}

// Typed accessors. All tolerate missing keys by returning the zero value.

// Int64 returns the integer value of a numeric entry.
func (d Dict) Int64(key Name) (int64, bool) {
	switch v := d[key].(type) {
	case Int:
		return int64(v), true
	case Real:
		return int64(v), true
	}
	return 0, false
}

// Float returns the numeric entry as a float.
func (d Dict) Float(key Name) (float64, bool) {
	switch v := d[key].(type) {
	case Int:
		return float64(v), true
	case Real:
		return float64(v), true
	}
	return 0, false
}

// NameValue returns a name entry's value.
func (d Dict) NameValue(key Name) (Name, bool) {
	n, ok := d[key].(Name)
	return n, ok
}

func numValue(o Object) (float64, bool) {
	switch v := o.(type) {
	case Int:
		return float64(v), true
	case Real:
		return float64(v), true
	}
	return 0, false
}
