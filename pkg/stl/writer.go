package stl

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/philipparndt/plmview/pkg/geometry"
)

// WriteBinary encodes the model as a binary STL stream
func WriteBinary(w io.Writer, model *Model) error {
	bw := bufio.NewWriter(w)

	var header [headerSize]byte
	copy(header[:], model.Name)
	if _, err := bw.Write(header[:]); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	if err := binary.Write(bw, binary.LittleEndian, uint32(len(model.Faces))); err != nil {
		return fmt.Errorf("failed to write triangle count: %w", err)
	}

	var record [recordSize]byte
	for i, f := range model.Faces {
		putVector(record[0:], f.Normal)
		putVector(record[12:], model.Vertices[f.A])
		putVector(record[24:], model.Vertices[f.B])
		putVector(record[36:], model.Vertices[f.C])
		if _, err := bw.Write(record[:]); err != nil {
			return fmt.Errorf("failed to write triangle %d: %w", i, err)
		}
	}
	return bw.Flush()
}

// WriteFile writes the model to a binary STL file
func WriteFile(filename string, model *Model) error {
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	if err := WriteBinary(file, model); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

func putVector(b []byte, v geometry.Vector3) {
	binary.LittleEndian.PutUint32(b[0:], math.Float32bits(float32(v.X)))
	binary.LittleEndian.PutUint32(b[4:], math.Float32bits(float32(v.Y)))
	binary.LittleEndian.PutUint32(b[8:], math.Float32bits(float32(v.Z)))
}
