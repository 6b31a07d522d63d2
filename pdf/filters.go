package pdf

import (
	"bytes"
	"compress/zlib"
	"errors"
	"fmt"
	"io"
)

// flateDecode inflates zlib data and reverses an optional PNG predictor,
// which xref streams in the wild use almost universally.
func flateDecode(data []byte, parms Dict) ([]byte, error) {
	zr, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("pdf: flate: %w", err)
	}
	defer zr.Close()
	out, err := io.ReadAll(zr)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) {
		return nil, fmt.Errorf("pdf: flate: %w", err)
	}
	if parms == nil {
		return out, nil
	}
	predictor, _ := parms.Int64("Predictor")
	if predictor < 2 {
		return out, nil
	}
	columns, ok := parms.Int64("Columns")
	if !ok || columns < 1 {
		columns = 1
	}
	colors, ok := parms.Int64("Colors")
	if !ok || colors < 1 {
		colors = 1
	}
	bpc, ok := parms.Int64("BitsPerComponent")
	if !ok || bpc < 1 {
		bpc = 8
	}
	if predictor == 2 {
		return nil, errors.New("pdf: TIFF predictor not supported")
	}
	return unpredictPNG(out, int(columns), int(colors), int(bpc))
}

// unpredictPNG reverses per-row PNG filtering (filter byte + row data).
func unpredictPNG(data []byte, columns, colors, bpc int) ([]byte, error) {
	bpp := (colors*bpc + 7) / 8
	rowLen := (columns*colors*bpc + 7) / 8
	if rowLen <= 0 {
		return nil, errors.New("pdf: bad predictor row length")
	}
	stride := rowLen + 1
	if len(data)%stride != 0 {
		// tolerate a truncated trailing row
		data = data[:len(data)/stride*stride]
	}
	prev := make([]byte, rowLen)
	var out bytes.Buffer
	for off := 0; off+stride <= len(data); off += stride {
		ft := data[off]
		row := make([]byte, rowLen)
		copy(row, data[off+1:off+stride])
		switch ft {
		case 0: // None
		case 1: // Sub
			for i := bpp; i < rowLen; i++ {
				row[i] += row[i-bpp]
			}
		case 2: // Up
			for i := 0; i < rowLen; i++ {
				row[i] += prev[i]
			}
		case 3: // Average
			for i := 0; i < rowLen; i++ {
				left := 0
				if i >= bpp {
					left = int(row[i-bpp])
				}
				row[i] += byte((left + int(prev[i])) / 2)
			}
		case 4: // Paeth
			for i := 0; i < rowLen; i++ {
				left, upLeft := 0, 0
				if i >= bpp {
					left = int(row[i-bpp])
					upLeft = int(prev[i-bpp])
				}
				row[i] += paeth(left, int(prev[i]), upLeft)
			}
		default:
			return nil, fmt.Errorf("pdf: unknown PNG filter %d", ft)
		}
		out.Write(row)
		prev = row
	}
	return out.Bytes(), nil
}

func paeth(a, b, c int) byte {
	p := a + b - c
	pa, pb, pc := abs(p-a), abs(p-b), abs(p-c)
	if pa <= pb && pa <= pc {
		return byte(a)
	}
	if pb <= pc {
		return byte(b)
	}
	return byte(c)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// flateEncode deflates data for embedding in a stream.
func flateEncode(data []byte) []byte {
	var buf bytes.Buffer
	zw := zlib.NewWriter(&buf)
	zw.Write(data)
	zw.Close()
	return buf.Bytes()
}
