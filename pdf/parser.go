package pdf

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
)

// File is a parsed PDF with every indirect object loaded eagerly. Templates
// are a handful of pages so lazy loading buys nothing.
type File struct {
	Objects map[int]Object
	Trailer Dict
}

type xrefEntry struct {
	offset    int64
	gen       int
	inStream  bool
	streamNum int
	streamIdx int
}

// Parse reads a complete PDF. It follows classic xref tables, xref streams,
// and hybrid XRefStm pointers; when the xref machinery is broken it falls
// back to a full-file repair scan.
func Parse(data []byte) (*File, error) {
	f, err := parseWithXref(data)
	if err == nil {
		return f, nil
	}
	f2, rerr := repairScan(data)
	if rerr != nil {
		return nil, fmt.Errorf("pdf: parse failed (%v) and repair failed: %w", err, rerr)
	}
	return f2, nil
}

func parseWithXref(data []byte) (*File, error) {
	start := bytes.LastIndex(data, []byte("startxref"))
	if start < 0 {
		return nil, errors.New("pdf: startxref not found")
	}
	l := newLexer(data, start+len("startxref"))
	tok, err := l.next()
	if err != nil || tok.typ != tokNumber {
		return nil, errors.New("pdf: malformed startxref")
	}
	offset := int64(tok.num)

	p := &fileParser{data: data, entries: make(map[int]xrefEntry)}
	seen := make(map[int64]bool)
	for offset > 0 && !seen[offset] {
		seen[offset] = true
		next, err := p.readSection(offset)
		if err != nil {
			return nil, err
		}
		offset = next
	}
	if p.trailer == nil {
		return nil, errors.New("pdf: no trailer found")
	}
	return p.loadAll()
}

type fileParser struct {
	data    []byte
	entries map[int]xrefEntry
	trailer Dict
	objects map[int]Object
}

// addEntry records an object location. Newer sections are read first, so
// the first entry for a number wins.
func (p *fileParser) addEntry(num int, e xrefEntry) {
	if _, ok := p.entries[num]; !ok {
		p.entries[num] = e
	}
}

func (p *fileParser) mergeTrailer(d Dict) {
	if p.trailer == nil {
		p.trailer = make(Dict)
	}
	for k, v := range d {
		if _, ok := p.trailer[k]; !ok {
			p.trailer[k] = v
		}
	}
}

// readSection parses one xref section (table or stream) at offset and
// returns the /Prev offset, or 0 when the chain ends.
func (p *fileParser) readSection(offset int64) (int64, error) {
	if offset < 0 || offset >= int64(len(p.data)) {
		return 0, fmt.Errorf("pdf: xref offset %d out of range", offset)
	}
	l := newLexer(p.data, int(offset))
	tok, err := l.next()
	if err != nil {
		return 0, err
	}
	if tok.typ == tokKeyword && tok.str == "xref" {
		return p.readClassicTable(l)
	}
	// xref stream: "<num> <gen> obj <<...>> stream"
	l = newLexer(p.data, int(offset))
	obj, _, err := p.parseIndirectAt(l)
	if err != nil {
		return 0, err
	}
	stream, ok := obj.(*Stream)
	if !ok {
		return 0, errors.New("pdf: xref offset points at neither table nor stream")
	}
	return p.readXrefStream(stream)
}

func (p *fileParser) readClassicTable(l *lexer) (int64, error) {
	for {
		tok, err := l.next()
		if err != nil {
			return 0, err
		}
		if tok.typ == tokKeyword && tok.str == "trailer" {
			obj, err := parseValue(l)
			if err != nil {
				return 0, err
			}
			trailer, ok := obj.(Dict)
			if !ok {
				return 0, errors.New("pdf: trailer is not a dictionary")
			}
			p.mergeTrailer(trailer)
			// Hybrid files carry an XRefStm pointer for stream-aware readers.
			if stm, ok := trailer.Int64("XRefStm"); ok {
				if _, err := p.readSection(stm); err != nil {
					return 0, err
				}
			}
			if prev, ok := trailer.Int64("Prev"); ok {
				return prev, nil
			}
			return 0, nil
		}
		if tok.typ != tokNumber || !tok.isInt {
			return 0, fmt.Errorf("pdf: bad xref subsection at %d", tok.pos)
		}
		startObj := int(tok.num)
		cnt, err := l.next()
		if err != nil || cnt.typ != tokNumber || !cnt.isInt {
			return 0, errors.New("pdf: bad xref subsection count")
		}
		for i := 0; i < int(cnt.num); i++ {
			offTok, err := l.next()
			if err != nil {
				return 0, err
			}
			genTok, err := l.next()
			if err != nil {
				return 0, err
			}
			kindTok, err := l.next()
			if err != nil {
				return 0, err
			}
			if kindTok.str != "n" {
				continue
			}
			p.addEntry(startObj+i, xrefEntry{offset: int64(offTok.num), gen: int(genTok.num)})
		}
	}
}

func (p *fileParser) readXrefStream(s *Stream) (int64, error) {
	p.mergeTrailer(s.Dict)
	data, err := decodeStreamData(s, nil)
	if err != nil {
		return 0, err
	}
	wArr, ok := s.Dict["W"].(Array)
	if !ok || len(wArr) < 3 {
		return 0, errors.New("pdf: xref stream missing W")
	}
	w := make([]int, 3)
	for i := 0; i < 3; i++ {
		v, ok := numValue(wArr[i])
		if !ok {
			return 0, errors.New("pdf: bad W entry")
		}
		w[i] = int(v)
	}
	size, _ := s.Dict.Int64("Size")
	var index []int
	if idxArr, ok := s.Dict["Index"].(Array); ok {
		for _, v := range idxArr {
			n, _ := numValue(v)
			index = append(index, int(n))
		}
	} else {
		index = []int{0, int(size)}
	}
	rowLen := w[0] + w[1] + w[2]
	pos := 0
	for i := 0; i+1 < len(index); i += 2 {
		first, count := index[i], index[i+1]
		for j := 0; j < count; j++ {
			if pos+rowLen > len(data) {
				return 0, errors.New("pdf: xref stream truncated")
			}
			row := data[pos : pos+rowLen]
			pos += rowLen
			typ := int64(1)
			if w[0] > 0 {
				typ = beInt(row[:w[0]])
			}
			f2 := beInt(row[w[0] : w[0]+w[1]])
			f3 := beInt(row[w[0]+w[1]:])
			num := first + j
			switch typ {
			case 1:
				p.addEntry(num, xrefEntry{offset: f2, gen: int(f3)})
			case 2:
				p.addEntry(num, xrefEntry{inStream: true, streamNum: int(f2), streamIdx: int(f3)})
			}
		}
	}
	if prev, ok := s.Dict.Int64("Prev"); ok {
		return prev, nil
	}
	return 0, nil
}

func beInt(b []byte) int64 {
	var v int64
	for _, c := range b {
		v = v<<8 | int64(c)
	}
	return v
}

// loadAll materializes every object referenced by the xref entries, pulling
// compressed objects out of their container streams last.
func (p *fileParser) loadAll() (*File, error) {
	p.objects = make(map[int]Object, len(p.entries))
	var compressed []int
	for num, e := range p.entries {
		if e.inStream {
			compressed = append(compressed, num)
			continue
		}
		l := newLexer(p.data, int(e.offset))
		obj, gotNum, err := p.parseIndirectAt(l)
		if err != nil {
			return nil, fmt.Errorf("pdf: object %d: %w", num, err)
		}
		if gotNum != num {
			return nil, fmt.Errorf("pdf: xref says %d but found object %d", num, gotNum)
		}
		p.objects[num] = obj
	}
	for _, num := range compressed {
		e := p.entries[num]
		obj, err := p.loadFromObjectStream(e.streamNum, e.streamIdx)
		if err != nil {
			return nil, fmt.Errorf("pdf: compressed object %d: %w", num, err)
		}
		p.objects[num] = obj
	}
	return &File{Objects: p.objects, Trailer: p.trailer}, nil
}

func (p *fileParser) loadFromObjectStream(streamNum, idx int) (Object, error) {
	container, ok := p.objects[streamNum]
	if !ok {
		return nil, fmt.Errorf("object stream %d not loaded", streamNum)
	}
	s, ok := container.(*Stream)
	if !ok {
		return nil, fmt.Errorf("object %d is not a stream", streamNum)
	}
	data, err := decodeStreamData(s, nil)
	if err != nil {
		return nil, err
	}
	n, _ := s.Dict.Int64("N")
	first, _ := s.Dict.Int64("First")
	l := newLexer(data, 0)
	var offsets []int64
	for i := int64(0); i < n; i++ {
		numTok, err := l.next()
		if err != nil {
			return nil, err
		}
		offTok, err := l.next()
		if err != nil {
			return nil, err
		}
		_ = numTok
		offsets = append(offsets, int64(offTok.num))
	}
	if idx < 0 || idx >= len(offsets) {
		return nil, fmt.Errorf("object index %d out of range", idx)
	}
	ol := newLexer(data, int(first+offsets[idx]))
	return parseValue(ol)
}

// parseIndirectAt parses "<num> <gen> obj ... endobj" including trailing
// stream data.
func (p *fileParser) parseIndirectAt(l *lexer) (Object, int, error) {
	numTok, err := l.next()
	if err != nil {
		return nil, 0, err
	}
	if numTok.typ != tokNumber || !numTok.isInt {
		return nil, 0, fmt.Errorf("expected object number at %d", numTok.pos)
	}
	if _, err := l.next(); err != nil { // generation
		return nil, 0, err
	}
	kw, err := l.next()
	if err != nil {
		return nil, 0, err
	}
	if kw.typ != tokKeyword || kw.str != "obj" {
		return nil, 0, fmt.Errorf("expected obj keyword at %d", kw.pos)
	}
	obj, err := parseValue(l)
	if err != nil {
		return nil, 0, err
	}
	dict, isDict := obj.(Dict)
	if !isDict {
		return obj, int(numTok.num), nil
	}
	// Peek for a stream body.
	save := l.pos
	kw2, err := l.next()
	if err != nil || kw2.typ != tokKeyword || kw2.str != "stream" {
		l.pos = save
		return dict, int(numTok.num), nil
	}
	dataStart := l.pos
	// EOL after "stream": CRLF or LF
	if dataStart < len(p.data) && p.data[dataStart] == '\r' {
		dataStart++
	}
	if dataStart < len(p.data) && p.data[dataStart] == '\n' {
		dataStart++
	}
	length, ok := p.resolveLength(dict)
	if !ok || dataStart+int(length) > len(p.data) {
		// Length missing or wrong: scan for endstream.
		end := bytes.Index(p.data[dataStart:], []byte("endstream"))
		if end < 0 {
			return nil, 0, errors.New("endstream not found")
		}
		length = int64(end)
		for length > 0 && (p.data[dataStart+int(length)-1] == '\n' || p.data[dataStart+int(length)-1] == '\r') {
			length--
		}
	}
	raw := make([]byte, length)
	copy(raw, p.data[dataStart:dataStart+int(length)])
	l.pos = dataStart + int(length)
	return &Stream{Dict: dict, Data: raw}, int(numTok.num), nil
}

// resolveLength handles both inline and indirect /Length values. Indirect
// lengths are parsed straight from their xref offset.
func (p *fileParser) resolveLength(dict Dict) (int64, bool) {
	switch v := dict["Length"].(type) {
	case Int:
		return int64(v), true
	case Real:
		return int64(v), true
	case Ref:
		e, ok := p.entries[v.Num]
		if !ok || e.inStream {
			return 0, false
		}
		l := newLexer(p.data, int(e.offset))
		obj, _, err := p.parseIndirectAt(l)
		if err != nil {
			return 0, false
		}
		n, ok := numValue(obj)
		return int64(n), ok
	}
	return 0, false
}

// parseValue parses one PDF value, turning "<int> <int> R" into a Ref.
func parseValue(l *lexer) (Object, error) {
	tok, err := l.next()
	if err != nil {
		return nil, err
	}
	return parseValueFromToken(l, tok)
}

func parseValueFromToken(l *lexer, tok token) (Object, error) {
	switch tok.typ {
	case tokDictOpen:
		d := make(Dict)
		for {
			kt, err := l.next()
			if err != nil {
				return nil, err
			}
			if kt.typ == tokDictClose {
				return d, nil
			}
			if kt.typ != tokName {
				return nil, fmt.Errorf("pdf: expected name key at %d", kt.pos)
			}
			v, err := parseValue(l)
			if err != nil {
				return nil, err
			}
			d[Name(kt.str)] = v
		}
	case tokArrayOpen:
		var a Array
		for {
			it, err := l.next()
			if err != nil {
				return nil, err
			}
			if it.typ == tokArrayClose {
				return a, nil
			}
			v, err := parseValueFromToken(l, it)
			if err != nil {
				return nil, err
			}
			a = append(a, v)
		}
	case tokName:
		return Name(tok.str), nil
	case tokString:
		return Str(tok.bytes), nil
	case tokNumber:
		if tok.isInt {
			// Lookahead for "<gen> R".
			save := l.pos
			genTok, err := l.next()
			if err == nil && genTok.typ == tokNumber && genTok.isInt {
				rTok, err2 := l.next()
				if err2 == nil && rTok.typ == tokKeyword && rTok.str == "R" {
					return Ref{Num: int(tok.num), Gen: int(genTok.num)}, nil
				}
			}
			l.pos = save
			return Int(tok.num), nil
		}
		return Real(tok.num), nil
	case tokKeyword:
		switch tok.str {
		case "true":
			return Bool(true), nil
		case "false":
			return Bool(false), nil
		case "null":
			return Null{}, nil
		}
		return nil, fmt.Errorf("pdf: unexpected keyword %q at %d", tok.str, tok.pos)
	}
	return nil, fmt.Errorf("pdf: unexpected token at %d", tok.pos)
}

// repairScan rebuilds the object map by scanning the whole file for
// "<num> <gen> obj" patterns and the last trailer dictionary. When no
// trailer survives, the catalog is located by its /Type.
func repairScan(data []byte) (*File, error) {
	p := &fileParser{data: data, entries: make(map[int]xrefEntry)}
	objects := make(map[int]Object)
	var trailer Dict

	for pos := 0; pos < len(data); {
		idx := bytes.Index(data[pos:], []byte("obj"))
		if idx < 0 {
			break
		}
		at := pos + idx
		pos = at + 3
		// Walk back over "<num> <gen> " to find the object start.
		start := lineStartBefore(data, at)
		l := newLexer(data, start)
		obj, num, err := p.parseIndirectAt(l)
		if err != nil {
			continue
		}
		objects[num] = obj
		pos = l.pos
	}
	if tIdx := bytes.LastIndex(data, []byte("trailer")); tIdx >= 0 {
		l := newLexer(data, tIdx+len("trailer"))
		if obj, err := parseValue(l); err == nil {
			if d, ok := obj.(Dict); ok {
				trailer = d
			}
		}
	}
	if len(objects) == 0 {
		return nil, errors.New("pdf: repair found no objects")
	}
	if trailer == nil || trailer["Root"] == nil {
		trailer = make(Dict)
		for num, obj := range objects {
			d, ok := obj.(Dict)
			if !ok {
				continue
			}
			if t, ok := d.NameValue("Type"); ok && t == "Catalog" {
				trailer["Root"] = Ref{Num: num}
				break
			}
		}
		if trailer["Root"] == nil {
			return nil, errors.New("pdf: repair found no catalog")
		}
		trailer["Size"] = Int(len(objects) + 1)
	}
	return &File{Objects: objects, Trailer: trailer}, nil
}

// lineStartBefore backs up over the digits and whitespace preceding an
// "obj" keyword.
func lineStartBefore(data []byte, objPos int) int {
	i := objPos - 1
	fields := 0
	for i >= 0 && fields < 2 {
		for i >= 0 && isWhitespace(data[i]) {
			i--
		}
		digits := 0
		for i >= 0 && data[i] >= '0' && data[i] <= '9' {
			i--
			digits++
		}
		if digits == 0 {
			return objPos
		}
		fields++
	}
	return i + 1
}

// Resolve follows references until a direct object is reached.
func (f *File) Resolve(o Object) Object {
	for i := 0; i < 32; i++ {
		ref, ok := o.(Ref)
		if !ok {
			return o
		}
		next, ok := f.Objects[ref.Num]
		if !ok {
			return Null{}
		}
		o = next
	}
	return Null{}
}

// ResolveDict resolves an object expected to be a dictionary.
func (f *File) ResolveDict(o Object) (Dict, bool) {
	switch v := f.Resolve(o).(type) {
	case Dict:
		return v, true
	case *Stream:
		return v.Dict, true
	}
	return nil, false
}

// Catalog returns the document catalog.
func (f *File) Catalog() (Dict, error) {
	root, ok := f.Trailer["Root"]
	if !ok {
		return nil, errors.New("pdf: trailer has no Root")
	}
	cat, ok := f.ResolveDict(root)
	if !ok {
		return nil, errors.New("pdf: Root is not a dictionary")
	}
	return cat, nil
}

// Page is one leaf of the page tree with its inheritable attributes
// resolved.
type Page struct {
	Dict      Dict
	MediaBox  [4]float64
	Resources Dict
}

// Pages walks the page tree in order, carrying inherited MediaBox and
// Resources down to each leaf.
func (f *File) Pages() ([]Page, error) {
	cat, err := f.Catalog()
	if err != nil {
		return nil, err
	}
	rootNode, ok := f.ResolveDict(cat["Pages"])
	if !ok {
		return nil, errors.New("pdf: catalog has no page tree")
	}
	var pages []Page
	var walk func(node Dict, inhBox Array, inhRes Dict, depth int) error
	walk = func(node Dict, inhBox Array, inhRes Dict, depth int) error {
		if depth > 64 {
			return errors.New("pdf: page tree too deep")
		}
		if box, ok := f.Resolve(node["MediaBox"]).(Array); ok {
			inhBox = box
		}
		if res, ok := f.ResolveDict(node["Resources"]); ok {
			inhRes = res
		}
		t, _ := node.NameValue("Type")
		if t == "Page" {
			p := Page{Dict: node, Resources: inhRes}
			if len(inhBox) >= 4 {
				for i := 0; i < 4; i++ {
					v, _ := numValue(f.Resolve(inhBox[i]))
					p.MediaBox[i] = v
				}
			} else {
				p.MediaBox = [4]float64{0, 0, 595.28, 841.89}
			}
			pages = append(pages, p)
			return nil
		}
		kids, ok := f.Resolve(node["Kids"]).(Array)
		if !ok {
			return nil
		}
		for _, kid := range kids {
			kd, ok := f.ResolveDict(kid)
			if !ok {
				continue
			}
			if err := walk(kd, inhBox, inhRes, depth+1); err != nil {
				return err
			}
		}
		return nil
	}
	if err := walk(rootNode, nil, nil, 0); err != nil {
		return nil, err
	}
	if len(pages) == 0 {
		return nil, errors.New("pdf: document has no pages")
	}
	return pages, nil
}

// ContentBytes returns the decoded, concatenated content streams of a page.
func (f *File) ContentBytes(p Page) ([]byte, error) {
	var out bytes.Buffer
	appendStream := func(o Object) error {
		s, ok := f.Resolve(o).(*Stream)
		if !ok {
			return nil
		}
		data, err := decodeStreamData(s, f)
		if err != nil {
			return err
		}
		out.Write(data)
		out.WriteByte('\n')
		return nil
	}
	switch c := f.Resolve(p.Dict["Contents"]).(type) {
	case *Stream:
		if err := appendStream(c); err != nil {
			return nil, err
		}
	case Array:
		for _, o := range c {
			if err := appendStream(o); err != nil {
				return nil, err
			}
		}
	}
	return out.Bytes(), nil
}

// decodeStreamData applies the stream's filter chain. Only FlateDecode and
// ASCIIHexDecode occur in page content; image streams are copied raw and
// never come through here.
func decodeStreamData(s *Stream, f *File) ([]byte, error) {
	resolve := func(o Object) Object {
		if f != nil {
			return f.Resolve(o)
		}
		return o
	}
	var names []Name
	switch v := resolve(s.Dict["Filter"]).(type) {
	case Name:
		names = []Name{v}
	case Array:
		for _, o := range v {
			if n, ok := resolve(o).(Name); ok {
				names = append(names, n)
			}
		}
	}
	var parms []Dict
	switch v := resolve(s.Dict["DecodeParms"]).(type) {
	case Dict:
		parms = []Dict{v}
	case Array:
		for _, o := range v {
			d, _ := resolve(o).(Dict)
			parms = append(parms, d)
		}
	}
	data := s.Data
	for i, n := range names {
		var parm Dict
		if i < len(parms) {
			parm = parms[i]
		}
		var err error
		switch n {
		case "FlateDecode", "Fl":
			data, err = flateDecode(data, parm)
		case "ASCIIHexDecode", "AHx":
			data, err = asciiHexDecode(data)
		default:
			return nil, fmt.Errorf("pdf: unsupported filter %s", n)
		}
		if err != nil {
			return nil, err
		}
	}
	return data, nil
}

func asciiHexDecode(data []byte) ([]byte, error) {
	var out bytes.Buffer
	var nibbles []int
	for _, c := range data {
		if c == '>' {
			break
		}
		if v := hexVal(c); v >= 0 {
			nibbles = append(nibbles, v)
		} else if !isWhitespace(c) {
			return nil, errors.New("pdf: bad hex digit " + strconv.QuoteRune(rune(c)))
		}
	}
	if len(nibbles)%2 == 1 {
		nibbles = append(nibbles, 0)
	}
	for i := 0; i+1 < len(nibbles); i += 2 {
		out.WriteByte(byte(nibbles[i]<<4 | nibbles[i+1]))
	}
	return out.Bytes(), nil
}
