package loaders

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"

	"github.com/df07/fp-pathtracer/pkg/core"
	"github.com/df07/fp-pathtracer/pkg/geometry"
	"github.com/df07/fp-pathtracer/pkg/scene"
)

// vec3 is the on-disk form of a vector: [x, y, z]
type vec3 [3]float64

func (v vec3) toVec3() core.Vec3 { return core.NewVec3(v[0], v[1], v[2]) }

func fromVec3(v core.Vec3) vec3 { return vec3{v.X, v.Y, v.Z} }

func fromVec3Ptr(v core.Vec3) *vec3 {
	out := fromVec3(v)
	return &out
}

// sceneFile is the JSON document describing a scene
type sceneFile struct {
	Name        string                  `json:"name"`
	Description string                  `json:"description,omitempty"`
	Width       int                     `json:"width,omitempty"`
	Height      int                     `json:"height,omitempty"`
	Environment vec3                    `json:"environment"`
	Camera      *cameraFile             `json:"camera,omitempty"`
	Materials   map[string]materialFile `json:"materials"`
	Primitives  []primitiveFile         `json:"primitives"`
}

type cameraFile struct {
	Position      vec3    `json:"position"`
	Direction     vec3    `json:"direction"`
	Up            vec3    `json:"up"`
	VerticalFOV   float64 `json:"vfov"`
	Aperture      float64 `json:"aperture,omitempty"`
	FocusDistance float64 `json:"focusDistance,omitempty"`
}

type materialFile struct {
	Diffuse      vec3    `json:"diffuse"`
	Emission     vec3    `json:"emission"`
	Reflectivity float64 `json:"reflectivity,omitempty"`
}

// primitiveFile holds any primitive; the fields used depend on Type
type primitiveFile struct {
	Type     string `json:"type"` // sphere, triangle, quad or mesh
	Material string `json:"material"`

	// sphere
	Center *vec3   `json:"center,omitempty"`
	Radius float64 `json:"radius,omitempty"`

	// triangle
	Vertices []vec3 `json:"vertices,omitempty"`

	// quad
	Corner *vec3 `json:"corner,omitempty"`
	U      *vec3 `json:"u,omitempty"`
	V      *vec3 `json:"v,omitempty"`

	// mesh
	File      string  `json:"file,omitempty"`
	Scale     float64 `json:"scale,omitempty"`
	Translate *vec3   `json:"translate,omitempty"`
}

// LoadScene reads a scene from a JSON file. Mesh files are resolved
// relative to the scene file's directory.
func LoadScene(path string) (*scene.Scene, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open scene: %w", err)
	}
	defer f.Close()

	s, err := decodeScene(f, filepath.Dir(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// DecodeScene reads a JSON scene from r. Mesh files are resolved relative
// to the working directory.
func DecodeScene(r io.Reader) (*scene.Scene, error) {
	return decodeScene(r, ".")
}

func decodeScene(r io.Reader, baseDir string) (*scene.Scene, error) {
	var doc sceneFile
	decoder := json.NewDecoder(r)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: decode scene: %w", ErrInvalidSceneFile, err)
	}

	s := scene.New(doc.Name, doc.Environment.toVec3())
	s.Description = doc.Description
	if doc.Width > 0 {
		s.Width = doc.Width
	}
	if doc.Height > 0 {
		s.Height = doc.Height
	}

	materials := make(map[string]geometry.Material, len(doc.Materials))
	for id, m := range doc.Materials {
		materials[id] = geometry.Material{
			Diffuse:      m.Diffuse.toVec3(),
			Emission:     m.Emission.toVec3(),
			Reflectivity: m.Reflectivity,
		}
	}

	for i, p := range doc.Primitives {
		material, ok := materials[p.Material]
		if !ok {
			return nil, fmt.Errorf("primitive %d: %w %q", i, ErrUnknownMaterial, p.Material)
		}
		if err := addPrimitive(s, p, material, baseDir); err != nil {
			return nil, fmt.Errorf("%w: primitive %d: %w", ErrInvalidSceneFile, i, err)
		}
	}

	if doc.Camera != nil {
		s.Camera = scene.CameraConfig{
			Position:      doc.Camera.Position.toVec3(),
			Direction:     doc.Camera.Direction.toVec3(),
			Up:            doc.Camera.Up.toVec3(),
			VerticalFOV:   doc.Camera.VerticalFOV,
			Aperture:      doc.Camera.Aperture,
			FocusDistance: doc.Camera.FocusDistance,
		}
	} else {
		s.Camera = frameCamera(s)
	}

	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

func addPrimitive(s *scene.Scene, p primitiveFile, material geometry.Material, baseDir string) error {
	switch p.Type {
	case "sphere":
		if p.Center == nil {
			return fmt.Errorf("sphere needs a center")
		}
		s.AddSphere(p.Center.toVec3(), p.Radius, material)
	case "triangle":
		if len(p.Vertices) != 3 {
			return fmt.Errorf("triangle needs 3 vertices, got %d", len(p.Vertices))
		}
		s.AddTriangle(p.Vertices[0].toVec3(), p.Vertices[1].toVec3(), p.Vertices[2].toVec3(), material)
	case "quad":
		if p.Corner == nil || p.U == nil || p.V == nil {
			return fmt.Errorf("quad needs corner, u and v")
		}
		s.AddQuad(p.Corner.toVec3(), p.U.toVec3(), p.V.toVec3(), material)
	case "mesh":
		return addMesh(s, p, material, baseDir)
	default:
		return fmt.Errorf("unknown primitive type %q", p.Type)
	}
	return nil
}

// addMesh loads a PLY file and adds its triangles, scaled then translated.
// Degenerate triangles are dropped.
func addMesh(s *scene.Scene, p primitiveFile, material geometry.Material, baseDir string) error {
	if p.File == "" {
		return fmt.Errorf("mesh needs a file")
	}
	path := p.File
	if !filepath.IsAbs(path) {
		path = filepath.Join(baseDir, path)
	}

	data, err := LoadPLY(path)
	if err != nil {
		return err
	}

	scale := p.Scale
	if scale == 0 {
		scale = 1
	}
	var translate core.Vec3
	if p.Translate != nil {
		translate = p.Translate.toVec3()
	}
	transform := func(v core.Vec3) core.Vec3 {
		return v.Multiply(scale).Add(translate)
	}

	skipped := 0
	for _, face := range data.Faces {
		triangle := geometry.NewTriangle(
			transform(data.Vertices[face[0]]),
			transform(data.Vertices[face[1]]),
			transform(data.Vertices[face[2]]),
		)
		if triangle.Degenerate() {
			skipped++
			continue
		}
		s.Primitives = append(s.Primitives, geometry.NewTrianglePrimitive(triangle, material))
	}
	if skipped > 0 {
		logger.Warningf("mesh %s: dropped %d degenerate triangles", p.File, skipped)
	}
	return nil
}

// frameCamera points a camera down -Z at the scene bounds, far enough back
// for the bounding sphere to fit the vertical field of view.
func frameCamera(s *scene.Scene) scene.CameraConfig {
	camera := scene.DefaultCameraConfig()
	if s.PrimitiveCount() == 0 {
		return camera
	}

	bounds := s.Bounds()
	center := bounds.Center()
	radius := bounds.Size().Length() / 2
	halfFOV := camera.VerticalFOV * math.Pi / 360
	distance := radius / math.Sin(halfFOV)

	camera.Position = center.Add(core.NewVec3(0, 0, distance))
	return camera
}

// SaveScene writes a scene as JSON. Materials are shared between primitives
// that use identical values. Quads and meshes are written as triangles.
func SaveScene(path string, s *scene.Scene) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create scene: %w", err)
	}
	defer f.Close()

	if err := EncodeScene(f, s); err != nil {
		return err
	}
	return f.Close()
}

// EncodeScene writes a scene as indented JSON to w
func EncodeScene(w io.Writer, s *scene.Scene) error {
	doc := sceneFile{
		Name:        s.Name,
		Description: s.Description,
		Width:       s.Width,
		Height:      s.Height,
		Environment: fromVec3(s.Environment),
		Camera: &cameraFile{
			Position:      fromVec3(s.Camera.Position),
			Direction:     fromVec3(s.Camera.Direction),
			Up:            fromVec3(s.Camera.Up),
			VerticalFOV:   s.Camera.VerticalFOV,
			Aperture:      s.Camera.Aperture,
			FocusDistance: s.Camera.FocusDistance,
		},
		Materials:  make(map[string]materialFile),
		Primitives: make([]primitiveFile, 0, len(s.Primitives)),
	}

	ids := make(map[geometry.Material]string)
	for _, p := range s.Primitives {
		id, ok := ids[p.Material]
		if !ok {
			id = fmt.Sprintf("m%d", len(ids))
			ids[p.Material] = id
			doc.Materials[id] = materialFile{
				Diffuse:      fromVec3(p.Material.Diffuse),
				Emission:     fromVec3(p.Material.Emission),
				Reflectivity: p.Material.Reflectivity,
			}
		}

		switch p.Kind {
		case geometry.KindSphere:
			doc.Primitives = append(doc.Primitives, primitiveFile{
				Type:     "sphere",
				Material: id,
				Center:   fromVec3Ptr(p.Sphere.Center),
				Radius:   p.Sphere.Radius,
			})
		case geometry.KindTriangle:
			doc.Primitives = append(doc.Primitives, primitiveFile{
				Type:     "triangle",
				Material: id,
				Vertices: []vec3{fromVec3(p.Triangle.V0), fromVec3(p.Triangle.V1), fromVec3(p.Triangle.V2)},
			})
		default:
			return fmt.Errorf("%w: cannot encode %s", ErrInvalidSceneFile, p.Kind)
		}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode scene: %w", err)
	}
	return nil
}
