package assets

import (
	"strings"
	"testing"
)

const cubeFace = `
# simple quad with two materials
v 0 0 0
v 1 0 0
v 1 1 0
v 0 1 0
vt 0 0
vt 1 0
vt 1 1
vt 0 1
usemtl wood
f 1/1 2/2 3/3 4/4
usemtl metal
f 1/1 3/3 4/4
`

func TestParseOBJQuadTriangulation(t *testing.T) {
	mesh, err := parseOBJ(strings.NewReader(cubeFace), "quad")
	if err != nil {
		t.Fatal(err)
	}
	if len(mesh.Parts) != 2 {
		t.Fatalf("got %d parts, want 2 (one per usemtl)", len(mesh.Parts))
	}

	wood := mesh.Parts[0]
	if wood.Name != "wood" {
		t.Errorf("first part name = %q, want wood", wood.Name)
	}
	// Quad fans into two triangles.
	if len(wood.Indices) != 6 {
		t.Errorf("quad produced %d indices, want 6", len(wood.Indices))
	}
	// Four distinct corners, deduplicated.
	if len(wood.Vertices) != 4 {
		t.Errorf("quad produced %d vertices, want 4", len(wood.Vertices))
	}

	metal := mesh.Parts[1]
	if len(metal.Indices) != 3 || len(metal.Vertices) != 3 {
		t.Errorf("triangle part: %d indices / %d vertices, want 3/3",
			len(metal.Indices), len(metal.Vertices))
	}
}

func TestParseOBJFlipsV(t *testing.T) {
	mesh, err := parseOBJ(strings.NewReader(`
v 0 0 0
v 1 0 0
v 0 1 0
vt 0 0.25
vt 1 0.25
vt 0 1
f 1/1 2/2 3/3
`), "tri")
	if err != nil {
		t.Fatal(err)
	}
	uv := mesh.Parts[0].Vertices[0].UV
	if uv.Y() != 0.75 {
		t.Errorf("V coordinate = %f, want flipped 0.75", uv.Y())
	}
}

func TestParseOBJNegativeIndices(t *testing.T) {
	mesh, err := parseOBJ(strings.NewReader(`
v 0 0 0
v 1 0 0
v 0 1 0
f -3 -2 -1
`), "tri")
	if err != nil {
		t.Fatal(err)
	}
	p := mesh.Parts[0]
	if len(p.Vertices) != 3 {
		t.Fatalf("got %d vertices, want 3", len(p.Vertices))
	}
	if p.Vertices[1].Position.X() != 1 {
		t.Errorf("negative index resolution wrong: %+v", p.Vertices[1].Position)
	}
}

func TestParseOBJErrors(t *testing.T) {
	cases := map[string]string{
		"no faces":        "v 0 0 0\n",
		"oob index":       "v 0 0 0\nf 1 2 3\n",
		"short vertex":    "v 0 0\nf 1 1 1\n",
		"bad float":       "v a b c\n",
		"degenerate face": "v 0 0 0\nv 1 0 0\nf 1 2\n",
	}
	for label, body := range cases {
		if _, err := parseOBJ(strings.NewReader(body), "bad"); err == nil {
			t.Errorf("%s: expected an error", label)
		}
	}
}
