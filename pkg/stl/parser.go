package stl

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/philipparndt/plmview/pkg/geometry"
)

const (
	headerSize = 80
	countSize  = 4
	recordSize = 50
	// tokens per ascii facet: normal triple + three vertex triples
	facetTokens = 12
)

// ErrTruncated is returned together with a partial model when a binary
// buffer holds fewer records than its header declares.
var ErrTruncated = errors.New("stl: truncated binary data")

var asciiKeywords = map[string]bool{
	"facet":    true,
	"normal":   true,
	"outer":    true,
	"loop":     true,
	"vertex":   true,
	"endloop":  true,
	"endfacet": true,
}

// Parse reads an STL file and returns a Model.
// It automatically detects whether the file is ASCII or binary format.
func Parse(filename string) (*Model, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return Decode(data)
}

// ParseReader reads a whole STL stream and decodes it
func ParseReader(reader io.Reader) (*Model, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read STL data: %w", err)
	}
	return Decode(data)
}

// Decode converts an STL byte buffer into a model with face normals.
// Malformed ascii input degrades to a partial or empty mesh instead of
// failing; a short binary buffer returns the partial mesh and ErrTruncated.
// Facets with a non-finite coordinate are dropped in both formats.
func Decode(data []byte) (*Model, error) {
	var (
		model *Model
		err   error
	)
	if IsASCII(data) {
		model = decodeASCII(data)
	} else {
		model, err = decodeBinary(data)
	}
	model.ComputeFaceNormals()
	return model, err
}

// IsASCII reports whether data should be read as ascii STL: it must start
// with "solid " and its binary triangle count must disagree with the buffer
// length. When the lengths match the binary reading wins.
func IsASCII(data []byte) bool {
	if len(data) < 6 || string(data[:6]) != "solid " {
		return false
	}
	if len(data) < headerSize+countSize {
		return true
	}
	count := binary.LittleEndian.Uint32(data[headerSize:])
	return uint64(headerSize+countSize)+uint64(count)*recordSize != uint64(len(data))
}

// decodeASCII flattens the text into a numeric token stream and consumes
// it twelve tokens per facet. Leftover tokens are discarded.
func decodeASCII(data []byte) *Model {
	model := NewModel("")
	model.Format = FormatASCII

	text := string(data)
	if strings.HasPrefix(text, "solid") {
		line, rest, found := strings.Cut(text, "\n")
		model.Name = strings.TrimSpace(strings.TrimPrefix(line, "solid"))
		if !found {
			rest = ""
		}
		text = rest
	}
	if idx := strings.Index(text, "endsolid"); idx >= 0 {
		text = text[:idx]
	}

	points := make([]string, 0)
	for _, field := range strings.Fields(text) {
		if !asciiKeywords[field] {
			points = append(points, field)
		}
	}

	n := len(points) / facetTokens * facetTokens
	for i := 0; i < n; i += facetTokens {
		var v [3]geometry.Vector3
		for k := 0; k < 3; k++ {
			base := i + k*3 + 3
			v[k] = geometry.NewVector3(
				parseFloat(points[base]),
				parseFloat(points[base+1]),
				parseFloat(points[base+2]),
			)
		}
		addFinite(model, v[0], v[1], v[2])
	}
	return model
}

// decodeBinary reads the declared number of 50 byte records, or as many
// complete records as the buffer holds.
func decodeBinary(data []byte) (*Model, error) {
	model := NewModel("")
	model.Format = FormatBinary

	if len(data) < headerSize+countSize {
		return model, fmt.Errorf("%w: %d bytes is shorter than the header", ErrTruncated, len(data))
	}

	header := bytes.TrimRight(data[:headerSize], "\x00 ")
	if isPrintable(header) {
		model.Name = string(header)
	}

	declared := binary.LittleEndian.Uint32(data[headerSize:])
	available := uint64(len(data)-headerSize-countSize) / recordSize
	count := uint64(declared)
	if available < count {
		count = available
	}

	model.Vertices = make([]geometry.Vector3, 0, count*3)
	model.Faces = make([]Face, 0, count)

	offset := headerSize + countSize
	for i := uint64(0); i < count; i++ {
		record := data[offset : offset+recordSize]
		// first triple is the stored normal, recomputed later
		addFinite(model,
			readVector(record[12:]),
			readVector(record[24:]),
			readVector(record[36:]),
		)
		offset += recordSize
	}

	if count < uint64(declared) {
		return model, fmt.Errorf("%w: header declares %d triangles, found %d", ErrTruncated, declared, count)
	}
	return model, nil
}

// addFinite adds the triangle unless one of its coordinates is NaN or
// infinite.
func addFinite(model *Model, a, b, c geometry.Vector3) {
	for _, v := range [3]geometry.Vector3{a, b, c} {
		if !isFinite(v.X) || !isFinite(v.Y) || !isFinite(v.Z) {
			return
		}
	}
	model.AddTriangle(a, b, c)
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func readVector(b []byte) geometry.Vector3 {
	return geometry.NewVector3(
		float64(math.Float32frombits(binary.LittleEndian.Uint32(b[0:]))),
		float64(math.Float32frombits(binary.LittleEndian.Uint32(b[4:]))),
		float64(math.Float32frombits(binary.LittleEndian.Uint32(b[8:]))),
	)
}

func parseFloat(s string) float64 {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN()
	}
	return f
}

func isPrintable(b []byte) bool {
	if len(b) == 0 {
		return false
	}
	for _, c := range b {
		if c < 0x20 || c > 0x7e {
			return false
		}
	}
	return true
}
