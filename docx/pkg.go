package docx

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
)

// pkg is a mutable in-memory copy of the template zip. The entry order of
// the template is preserved on write; new parts append after it.
type pkg struct {
	names []string
	files map[string][]byte
}

func readPackage(data []byte) (*pkg, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open template package: %w", err)
	}
	p := &pkg{files: make(map[string][]byte, len(zr.File))}
	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("open package part %s: %w", f.Name, err)
		}
		content, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("read package part %s: %w", f.Name, err)
		}
		p.names = append(p.names, f.Name)
		p.files[f.Name] = content
	}
	return p, nil
}

func (p *pkg) set(name string, content []byte) {
	if _, ok := p.files[name]; !ok {
		p.names = append(p.names, name)
	}
	p.files[name] = content
}

func (p *pkg) write() ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, name := range p.names {
		w, err := zw.Create(name)
		if err != nil {
			return nil, fmt.Errorf("write package part %s: %w", name, err)
		}
		if _, err := w.Write(p.files[name]); err != nil {
			return nil, fmt.Errorf("write package part %s: %w", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("close package: %w", err)
	}
	return buf.Bytes(), nil
}

var (
	mediaNamePattern = regexp.MustCompile(`^word/media/image(\d+)\.`)
	relIDPattern     = regexp.MustCompile(`Id="rId(\d+)"`)
)

// nextImageID scans existing media filenames so per-render allocation never
// collides with parts already shipped in the template.
func (p *pkg) nextImageID() int {
	max := 0
	for _, name := range p.names {
		m := mediaNamePattern.FindStringSubmatch(name)
		if m == nil {
			continue
		}
		if n, err := strconv.Atoi(m[1]); err == nil && n > max {
			max = n
		}
	}
	return max + 1
}

const (
	relsPath         = "word/_rels/document.xml.rels"
	contentTypesPath = "[Content_Types].xml"

	emptyRels = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n" +
		`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships"></Relationships>`

	imageRelType = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/image"
)

// nextRelID scans the document relationship part for the highest rId.
func (p *pkg) nextRelID() int {
	max := 0
	for _, m := range relIDPattern.FindAllStringSubmatch(string(p.files[relsPath]), -1) {
		if n, err := strconv.Atoi(m[1]); err == nil && n > max {
			max = n
		}
	}
	return max + 1
}

// addImagePart stores the binary payload under word/media, registers its
// relationship, and makes sure the extension has a content-type default.
// It returns the relationship id the drawing markup must reference.
func (p *pkg) addImagePart(seq int, ext string, payload []byte) (string, error) {
	name := fmt.Sprintf("word/media/image%d.%s", seq, ext)
	p.set(name, payload)

	rels, ok := p.files[relsPath]
	if !ok {
		rels = []byte(emptyRels)
	}
	relID := fmt.Sprintf("rId%d", p.nextRelID())
	entry := fmt.Sprintf(`<Relationship Id=%q Type=%q Target="media/image%d.%s"/>`, relID, imageRelType, seq, ext)
	updated, ok := insertBeforeClose(string(rels), "</Relationships>", entry)
	if !ok {
		return "", fmt.Errorf("register image relationship: malformed %s", relsPath)
	}
	p.set(relsPath, []byte(updated))

	if err := p.registerContentType(ext); err != nil {
		return "", err
	}
	return relID, nil
}

// registerContentType appends a Default entry for the extension unless the
// template already declares one.
func (p *pkg) registerContentType(ext string) error {
	ct, ok := p.files[contentTypesPath]
	if !ok {
		return fmt.Errorf("template package has no %s", contentTypesPath)
	}
	body := string(ct)
	if strings.Contains(body, `Extension="`+ext+`"`) {
		return nil
	}
	mime := "image/" + ext
	if ext == "jpg" {
		mime = "image/jpeg"
	}
	entry := fmt.Sprintf(`<Default Extension=%q ContentType=%q/>`, ext, mime)
	updated, ok := insertBeforeClose(body, "</Types>", entry)
	if !ok {
		return fmt.Errorf("register content type: malformed %s", contentTypesPath)
	}
	p.set(contentTypesPath, []byte(updated))
	return nil
}

func insertBeforeClose(doc, closeTag, entry string) (string, bool) {
	idx := strings.LastIndex(doc, closeTag)
	if idx < 0 {
		return doc, false
	}
	return doc[:idx] + entry + doc[idx:], true
}
