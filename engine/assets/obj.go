package assets

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/vesper3d/vesper/engine/renderer/metadata"
)

// ImportOBJ parses a Wavefront OBJ file into a mesh. Each usemtl span
// becomes its own part; faces with more than three vertices are
// fan-triangulated. Texture V coordinates are flipped for Vulkan.
func ImportOBJ(path string) (*metadata.Mesh, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening model %s: %w", path, err)
	}
	defer f.Close()

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	mesh, err := parseOBJ(f, name)
	if err != nil {
		return nil, fmt.Errorf("parsing model %s: %w", path, err)
	}
	return mesh, nil
}

func parseOBJ(r io.Reader, name string) (*metadata.Mesh, error) {
	mesh := metadata.NewMesh(name)

	var positions []mgl32.Vec3
	var uvs []mgl32.Vec2

	part := &metadata.MeshPart{Name: name}
	// token -> index into part.Vertices, reset per part
	seen := map[string]uint32{}

	flush := func() {
		if len(part.Vertices) > 0 {
			mesh.Parts = append(mesh.Parts, part)
		}
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
			continue
		}
		switch fields[0] {
		case "v":
			if len(fields) < 4 {
				return nil, fmt.Errorf("line %d: vertex needs 3 components", lineNo)
			}
			p, err := parseFloats(fields[1:4])
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
			positions = append(positions, mgl32.Vec3{p[0], p[1], p[2]})
		case "vt":
			if len(fields) < 3 {
				return nil, fmt.Errorf("line %d: texcoord needs 2 components", lineNo)
			}
			p, err := parseFloats(fields[1:3])
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
			uvs = append(uvs, mgl32.Vec2{p[0], 1.0 - p[1]})
		case "usemtl":
			flush()
			partName := name
			if len(fields) > 1 {
				partName = fields[1]
			}
			part = &metadata.MeshPart{Name: partName}
			seen = map[string]uint32{}
		case "f":
			if len(fields) < 4 {
				return nil, fmt.Errorf("line %d: face needs at least 3 vertices", lineNo)
			}
			corners := fields[1:]
			for i := 2; i < len(corners); i++ {
				for _, tok := range []string{corners[0], corners[i-1], corners[i]} {
					idx, err := resolveCorner(tok, positions, uvs, part, seen)
					if err != nil {
						return nil, fmt.Errorf("line %d: %w", lineNo, err)
					}
					part.Indices = append(part.Indices, idx)
				}
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	flush()

	if len(mesh.Parts) == 0 {
		return nil, fmt.Errorf("model has no faces")
	}
	return mesh, nil
}

// resolveCorner turns a face corner token ("v", "v/vt", "v//vn", "v/vt/vn")
// into an index in the part's vertex list, deduplicating repeats.
func resolveCorner(tok string, positions []mgl32.Vec3, uvs []mgl32.Vec2, part *metadata.MeshPart, seen map[string]uint32) (uint32, error) {
	if idx, ok := seen[tok]; ok {
		return idx, nil
	}

	refs := strings.Split(tok, "/")
	pi, err := objIndex(refs[0], len(positions))
	if err != nil {
		return 0, fmt.Errorf("face corner %q: %w", tok, err)
	}

	v := metadata.Vertex{
		Position: positions[pi],
		Color:    mgl32.Vec3{1, 1, 1},
	}
	if len(refs) > 1 && refs[1] != "" {
		ti, err := objIndex(refs[1], len(uvs))
		if err != nil {
			return 0, fmt.Errorf("face corner %q: %w", tok, err)
		}
		v.UV = uvs[ti]
	}

	idx := uint32(len(part.Vertices))
	part.Vertices = append(part.Vertices, v)
	seen[tok] = idx
	return idx, nil
}

// objIndex converts a 1-based (possibly negative, relative) OBJ reference
// into a 0-based slice index.
func objIndex(ref string, length int) (int, error) {
	n, err := strconv.Atoi(ref)
	if err != nil {
		return 0, err
	}
	if n < 0 {
		n = length + n
	} else {
		n = n - 1
	}
	if n < 0 || n >= length {
		return 0, fmt.Errorf("index %s out of range (%d elements)", ref, length)
	}
	return n, nil
}

func parseFloats(fields []string) ([]float32, error) {
	out := make([]float32, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 32)
		if err != nil {
			return nil, err
		}
		out[i] = float32(v)
	}
	return out, nil
}
