package pdf

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/png" // the editing surface emits png and jpeg payloads
	"strings"
)

// ImageData is a decoded embedded image ready to become an image XObject.
// JPEG payloads keep their compressed bytes (DCTDecode passthrough); other
// formats are decoded and re-packed as raw samples.
type ImageData struct {
	Width  int
	Height int

	jpeg   []byte // non-nil for passthrough
	gray   bool   // jpeg component count == 1
	rgb    []byte // raw RGB samples otherwise
	alpha  []byte // raw alpha samples, nil when fully opaque
	format string
}

// Format reports the source payload format ("jpeg", "png", ...).
func (img *ImageData) Format() string { return img.format }

// DecodeDataURI parses a data:<mime>;base64,<payload> reference. An empty
// or undecodable source returns an error; callers skip the image and keep
// rendering.
func DecodeDataURI(src string) (*ImageData, error) {
	if !strings.HasPrefix(src, "data:") {
		return nil, errors.New("pdf: image source is not a data URI")
	}
	comma := strings.IndexByte(src, ',')
	if comma < 0 {
		return nil, errors.New("pdf: malformed data URI")
	}
	meta := src[len("data:"):comma]
	if !strings.HasSuffix(meta, ";base64") {
		return nil, errors.New("pdf: data URI is not base64")
	}
	payload, err := base64.StdEncoding.DecodeString(strings.TrimSpace(src[comma+1:]))
	if err != nil {
		return nil, fmt.Errorf("pdf: decode image payload: %w", err)
	}
	return DecodeImage(payload)
}

// DecodeImage sniffs and decodes an image payload.
func DecodeImage(payload []byte) (*ImageData, error) {
	if len(payload) >= 2 && payload[0] == 0xFF && payload[1] == 0xD8 {
		return decodeJPEGHeader(payload)
	}
	img, format, err := image.Decode(bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("pdf: decode image: %w", err)
	}
	return fromImage(img, format), nil
}

// decodeJPEGHeader walks the JPEG marker segments for the SOF dimensions
// without recompressing the payload.
func decodeJPEGHeader(payload []byte) (*ImageData, error) {
	i := 2
	for i+4 <= len(payload) {
		if payload[i] != 0xFF {
			i++
			continue
		}
		marker := payload[i+1]
		if marker == 0xD8 || (marker >= 0xD0 && marker <= 0xD7) || marker == 0x01 {
			i += 2
			continue
		}
		segLen := int(payload[i+2])<<8 | int(payload[i+3])
		if marker >= 0xC0 && marker <= 0xCF && marker != 0xC4 && marker != 0xC8 && marker != 0xCC {
			if i+9 >= len(payload) {
				break
			}
			height := int(payload[i+5])<<8 | int(payload[i+6])
			width := int(payload[i+7])<<8 | int(payload[i+8])
			components := int(payload[i+9])
			return &ImageData{
				Width:  width,
				Height: height,
				jpeg:   payload,
				gray:   components == 1,
				format: "jpeg",
			}, nil
		}
		i += 2 + segLen
	}
	return nil, errors.New("pdf: JPEG SOF marker not found")
}

func fromImage(img image.Image, format string) *ImageData {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	rgb := make([]byte, 0, w*h*3)
	alpha := make([]byte, 0, w*h)
	opaque := true
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bb, a := img.At(x, y).RGBA()
			rgb = append(rgb, byte(r>>8), byte(g>>8), byte(bb>>8))
			alpha = append(alpha, byte(a>>8))
			if a>>8 != 0xFF {
				opaque = false
			}
		}
	}
	out := &ImageData{Width: w, Height: h, rgb: rgb, format: format}
	if !opaque {
		out.alpha = alpha
	}
	return out
}

// AddTo embeds the image as an XObject in the writer and returns its ref.
func (img *ImageData) AddTo(w *Writer) Ref {
	dict := Dict{
		"Type":             Name("XObject"),
		"Subtype":          Name("Image"),
		"Width":            Int(img.Width),
		"Height":           Int(img.Height),
		"BitsPerComponent": Int(8),
	}
	if img.jpeg != nil {
		dict["Filter"] = Name("DCTDecode")
		if img.gray {
			dict["ColorSpace"] = Name("DeviceGray")
		} else {
			dict["ColorSpace"] = Name("DeviceRGB")
		}
		return w.Add(&Stream{Dict: dict, Data: img.jpeg})
	}
	dict["ColorSpace"] = Name("DeviceRGB")
	dict["Filter"] = Name("FlateDecode")
	if img.alpha != nil {
		smask := w.Add(&Stream{
			Dict: Dict{
				"Type":             Name("XObject"),
				"Subtype":          Name("Image"),
				"Width":            Int(img.Width),
				"Height":           Int(img.Height),
				"ColorSpace":       Name("DeviceGray"),
				"BitsPerComponent": Int(8),
				"Filter":           Name("FlateDecode"),
			},
			Data: flateEncode(img.alpha),
		})
		dict["SMask"] = smask
	}
	return w.Add(&Stream{Dict: dict, Data: flateEncode(img.rgb)})
}
