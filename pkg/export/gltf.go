package export

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/philipparndt/plmview/pkg/scene"
	"github.com/philipparndt/plmview/pkg/stl"
	"github.com/qmuntal/gltf"
)

const gltfVersion = "2.0"

// vertexStride is one float32 position or normal
const vertexStride = 12

// meshAccessors are the accessor indices of one uploaded mesh
type meshAccessors struct {
	position uint32
	normal   uint32
}

// Document converts a frame into a glTF document with one node per visible
// part. Vertices are written per face with the face normal so the model
// stays flat shaded. Parts sharing a mesh share its buffer data.
func Document(frame scene.Frame) (*gltf.Document, error) {
	doc := &gltf.Document{}
	doc.Asset.Version = gltfVersion
	doc.Asset.Generator = "plmview"
	sceneIndex := uint32(0)
	doc.Scene = &sceneIndex
	doc.Scenes = append(doc.Scenes, &gltf.Scene{Name: "assembly"})
	doc.Buffers = append(doc.Buffers, &gltf.Buffer{})

	uploaded := make(map[*stl.Model]meshAccessors)
	for _, part := range frame.Parts {
		if part.Mesh == nil || len(part.Mesh.Faces) == 0 {
			continue
		}

		acc, ok := uploaded[part.Mesh]
		if !ok {
			var err error
			acc, err = addMesh(doc, part.Mesh)
			if err != nil {
				return nil, fmt.Errorf("part %s: %w", part.ID, err)
			}
			uploaded[part.Mesh] = acc
		}

		material := uint32(len(doc.Materials))
		doc.Materials = append(doc.Materials, newMaterial(part))

		meshIndex := uint32(len(doc.Meshes))
		doc.Meshes = append(doc.Meshes, &gltf.Mesh{
			Name: part.ID,
			Primitives: []*gltf.Primitive{{
				Attributes: gltf.Attribute{"POSITION": acc.position, "NORMAL": acc.normal},
				Material:   &material,
				Mode:       gltf.PrimitiveTriangles,
			}},
		})

		doc.Scenes[0].Nodes = append(doc.Scenes[0].Nodes, uint32(len(doc.Nodes)))
		doc.Nodes = append(doc.Nodes, &gltf.Node{
			Name:   part.ID,
			Mesh:   &meshIndex,
			Matrix: part.Matrix.Float32(),
		})
	}
	return doc, nil
}

func addMesh(doc *gltf.Document, mesh *stl.Model) (meshAccessors, error) {
	buffer := doc.Buffers[0]
	count := uint32(len(mesh.Faces) * 3)

	var positions, normals bytes.Buffer
	minimum := [3]float32{math.MaxFloat32, math.MaxFloat32, math.MaxFloat32}
	maximum := [3]float32{-math.MaxFloat32, -math.MaxFloat32, -math.MaxFloat32}

	for _, face := range mesh.Faces {
		normal := [3]float32{float32(face.Normal.X), float32(face.Normal.Y), float32(face.Normal.Z)}
		for _, index := range [3]int{face.A, face.B, face.C} {
			v := mesh.Vertices[index]
			p := [3]float32{float32(v.X), float32(v.Y), float32(v.Z)}
			for k := range p {
				minimum[k] = min(minimum[k], p[k])
				maximum[k] = max(maximum[k], p[k])
			}
			if err := binary.Write(&positions, binary.LittleEndian, p); err != nil {
				return meshAccessors{}, err
			}
			if err := binary.Write(&normals, binary.LittleEndian, normal); err != nil {
				return meshAccessors{}, err
			}
		}
	}

	positionView := appendView(doc, buffer, positions.Bytes())
	normalView := appendView(doc, buffer, normals.Bytes())

	acc := meshAccessors{position: uint32(len(doc.Accessors))}
	doc.Accessors = append(doc.Accessors, &gltf.Accessor{
		BufferView:    &positionView,
		ComponentType: gltf.ComponentFloat,
		Type:          gltf.AccessorVec3,
		Count:         count,
		Min:           minimum[:],
		Max:           maximum[:],
	})
	acc.normal = uint32(len(doc.Accessors))
	doc.Accessors = append(doc.Accessors, &gltf.Accessor{
		BufferView:    &normalView,
		ComponentType: gltf.ComponentFloat,
		Type:          gltf.AccessorVec3,
		Count:         count,
	})
	return acc, nil
}

func appendView(doc *gltf.Document, buffer *gltf.Buffer, data []byte) uint32 {
	view := &gltf.BufferView{
		Buffer:     0,
		ByteOffset: buffer.ByteLength,
		ByteLength: uint32(len(data)),
		ByteStride: vertexStride,
	}
	buffer.Data = append(buffer.Data, data...)
	buffer.ByteLength += uint32(len(data))

	index := uint32(len(doc.BufferViews))
	doc.BufferViews = append(doc.BufferViews, view)
	return index
}

func newMaterial(part scene.FramePart) *gltf.Material {
	r, g, b := part.Color.Components()
	alpha := float32(part.Opacity)
	metallic := float32(0)
	// Blinn-Phong exponent to roughness
	roughness := float32(math.Sqrt(2 / (part.Shininess + 2)))

	m := &gltf.Material{
		Name:        part.ID,
		DoubleSided: true,
		AlphaMode:   gltf.AlphaOpaque,
		PBRMetallicRoughness: &gltf.PBRMetallicRoughness{
			BaseColorFactor: &[4]float32{float32(r), float32(g), float32(b), alpha},
			MetallicFactor:  &metallic,
			RoughnessFactor: &roughness,
		},
	}
	if part.Opacity < 1 {
		m.AlphaMode = gltf.AlphaBlend
	}
	return m
}

// WriteGLB encodes the document as binary glTF
func WriteGLB(w io.Writer, doc *gltf.Document) error {
	enc := gltf.NewEncoder(w)
	enc.AsBinary = true
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("failed to encode glb: %w", err)
	}
	return nil
}

// WriteFile exports a frame to a .glb file
func WriteFile(filename string, frame scene.Frame) error {
	doc, err := Document(frame)
	if err != nil {
		return err
	}

	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	if err := WriteGLB(file, doc); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}
