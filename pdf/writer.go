package pdf

import (
	"bytes"
	"fmt"
	"io"
	"sort"
)

// Writer accumulates indirect objects and serializes them with a classic
// xref table. Object numbers are allocated sequentially from 1.
type Writer struct {
	objects map[int]Object
	nextNum int
}

// NewWriter returns an empty writer.
func NewWriter() *Writer {
	return &Writer{objects: make(map[int]Object), nextNum: 1}
}

// Reserve allocates an object number without content, for cycles where a
// child must reference its parent before the parent exists.
func (w *Writer) Reserve() Ref {
	ref := Ref{Num: w.nextNum}
	w.nextNum++
	return ref
}

// Add stores obj under a fresh number.
func (w *Writer) Add(obj Object) Ref {
	ref := w.Reserve()
	w.objects[ref.Num] = obj
	return ref
}

// Set fills a previously reserved number.
func (w *Writer) Set(ref Ref, obj Object) { w.objects[ref.Num] = obj }

// AddFlateStream compresses data and stores it as a FlateDecode stream.
func (w *Writer) AddFlateStream(dict Dict, data []byte) Ref {
	if dict == nil {
		dict = make(Dict)
	}
	dict["Filter"] = Name("FlateDecode")
	return w.Add(&Stream{Dict: dict, Data: flateEncode(data)})
}

// StandardFont adds a non-embedded Type1 font with WinAnsi encoding.
func (w *Writer) StandardFont(base string) Ref {
	return w.Add(Dict{
		"Type":     Name("Font"),
		"Subtype":  Name("Type1"),
		"BaseFont": Name(base),
		"Encoding": Name("WinAnsiEncoding"),
	})
}

// ImportPageXObject lifts one page of a parsed file into this writer as a
// form XObject. The page's content streams are decoded, concatenated, and
// re-compressed; its resource graph is deep-copied with renumbering so the
// template file can be discarded afterwards.
func (w *Writer) ImportPageXObject(f *File, page Page) (Ref, [4]float64, error) {
	content, err := f.ContentBytes(page)
	if err != nil {
		return Ref{}, [4]float64{}, fmt.Errorf("pdf: import page content: %w", err)
	}
	memo := make(map[int]Ref)
	var resources Object = Dict{}
	if page.Resources != nil {
		resources = w.copyObject(f, page.Resources, memo)
	}
	box := page.MediaBox
	dict := Dict{
		"Type":      Name("XObject"),
		"Subtype":   Name("Form"),
		"BBox":      Array{Real(box[0]), Real(box[1]), Real(box[2]), Real(box[3])},
		"Resources": resources,
		"Filter":    Name("FlateDecode"),
	}
	ref := w.Add(&Stream{Dict: dict, Data: flateEncode(content)})
	return ref, box, nil
}

// copyObject transplants an object graph from a parsed file into the
// writer, allocating new numbers for every indirect object it touches. The
// memo map keeps shared subtrees shared and breaks reference cycles.
func (w *Writer) copyObject(f *File, o Object, memo map[int]Ref) Object {
	switch v := o.(type) {
	case Ref:
		if newRef, ok := memo[v.Num]; ok {
			return newRef
		}
		target, ok := f.Objects[v.Num]
		if !ok {
			return Null{}
		}
		newRef := w.Reserve()
		memo[v.Num] = newRef
		w.Set(newRef, w.copyObject(f, target, memo))
		return newRef
	case Dict:
		out := make(Dict, len(v))
		for k, val := range v {
			if k == "Parent" {
				continue // page-tree backlink, meaningless inside an XObject
			}
			out[k] = w.copyObject(f, val, memo)
		}
		return out
	case Array:
		out := make(Array, len(v))
		for i, val := range v {
			out[i] = w.copyObject(f, val, memo)
		}
		return out
	case *Stream:
		data := make([]byte, len(v.Data))
		copy(data, v.Data)
		dc, _ := w.copyObject(f, v.Dict, memo).(Dict)
		return &Stream{Dict: dc, Data: data}
	default:
		return o
	}
}

// Write serializes the accumulated objects, a classic xref table, and the
// trailer. root must reference the document catalog.
func (w *Writer) Write(out io.Writer, root Ref) error {
	var buf bytes.Buffer
	buf.WriteString("%PDF-1.7\n%\xE2\xE3\xCF\xD3\n")

	nums := make([]int, 0, len(w.objects))
	for n := range w.objects {
		nums = append(nums, n)
	}
	sort.Ints(nums)

	offsets := make(map[int]int64, len(nums))
	for _, n := range nums {
		offsets[n] = int64(buf.Len())
		fmt.Fprintf(&buf, "%d 0 obj\n", n)
		w.objects[n].encode(&buf)
		buf.WriteString("\nendobj\n")
	}

	xrefOffset := buf.Len()
	maxNum := 0
	if len(nums) > 0 {
		maxNum = nums[len(nums)-1]
	}
	fmt.Fprintf(&buf, "xref\n0 %d\n", maxNum+1)
	buf.WriteString("0000000000 65535 f \n")
	for i := 1; i <= maxNum; i++ {
		if off, ok := offsets[i]; ok {
			fmt.Fprintf(&buf, "%010d 00000 n \n", off)
		} else {
			buf.WriteString("0000000000 65535 f \n")
		}
	}
	buf.WriteString("trailer\n")
	trailer := Dict{"Size": Int(maxNum + 1), "Root": root}
	trailer.encode(&buf)
	fmt.Fprintf(&buf, "\nstartxref\n%d\n%%%%EOF\n", xrefOffset)

	_, err := out.Write(buf.Bytes())
	return err
}
