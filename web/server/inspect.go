package server

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/df07/fp-pathtracer/pkg/core"
	"github.com/df07/fp-pathtracer/pkg/geometry"
	"github.com/df07/fp-pathtracer/pkg/renderer"
	"github.com/df07/fp-pathtracer/pkg/scene"
)

// InspectResponse represents the JSON response for object inspection
type InspectResponse struct {
	Hit          bool                   `json:"hit"`
	GeometryType string                 `json:"geometryType,omitempty"`
	Point        [3]float64             `json:"point"`
	Normal       [3]float64             `json:"normal"`
	Distance     float64                `json:"distance"`
	Material     *MaterialInfo          `json:"material,omitempty"`
	Properties   map[string]interface{} `json:"properties,omitempty"`
}

// MaterialInfo describes the material of an inspected primitive
type MaterialInfo struct {
	Diffuse      [3]float64 `json:"diffuse"`
	Emission     [3]float64 `json:"emission"`
	Reflectivity float64    `json:"reflectivity"`
	Color        string     `json:"color"`
}

func toArray(v core.Vec3) [3]float64 {
	return [3]float64{v.X, v.Y, v.Z}
}

// inspectPixel casts the centre ray of pixel (x, y) and describes the
// nearest primitive it hits
func inspectPixel(sceneObj *scene.Scene, width, height, x, y int) InspectResponse {
	camera := renderer.NewCamera(sceneObj.Camera, float64(width)/float64(height))
	ray := camera.CenterRay(renderer.PixelNDC(x, y, width, height))

	nearest := -1
	var record geometry.IntersectionRecord
	for i := range sceneObj.Primitives {
		candidate, hit := sceneObj.Primitives[i].Intersect(ray)
		if hit && (nearest < 0 || candidate.Hit.Distance < record.Hit.Distance) {
			nearest, record = i, candidate
		}
	}
	if nearest < 0 {
		return InspectResponse{Hit: false}
	}

	primitive := sceneObj.Primitives[nearest]
	m := record.Material
	return InspectResponse{
		Hit:          true,
		GeometryType: primitive.Kind.String(),
		Point:        toArray(record.Hit.Position),
		Normal:       toArray(record.Hit.Normal),
		Distance:     record.Hit.Distance,
		Material: &MaterialInfo{
			Diffuse:      toArray(m.Diffuse),
			Emission:     toArray(m.Emission),
			Reflectivity: m.Reflectivity,
			Color:        hexColor(m.Diffuse),
		},
		Properties: geometryProperties(primitive, nearest),
	}
}

// geometryProperties extracts the shape parameters of a primitive
func geometryProperties(p geometry.Primitive, index int) map[string]interface{} {
	properties := map[string]interface{}{"index": index}
	switch p.Kind {
	case geometry.KindSphere:
		properties["center"] = toArray(p.Sphere.Center)
		properties["radius"] = p.Sphere.Radius
	case geometry.KindTriangle:
		properties["vertices"] = [3][3]float64{
			toArray(p.Triangle.V0), toArray(p.Triangle.V1), toArray(p.Triangle.V2),
		}
	}
	return properties
}

func hexColor(c core.Vec3) string {
	c = c.Clamp(0, 1)
	return fmt.Sprintf("#%02x%02x%02x", int(c.X*255), int(c.Y*255), int(c.Z*255))
}

// handleInspect handles ray casting inspection requests
func (s *Server) handleInspect(w http.ResponseWriter, r *http.Request) {
	values := r.URL.Query()
	sceneName := values.Get("scene")
	if sceneName == "" {
		sceneName = defaultScene
	}

	sceneObj, err := s.createScene(sceneName)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	width, err := parseIntParam(values, "width", sceneObj.Width, 1, maxImageSize)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	height, err := parseIntParam(values, "height", sceneObj.Height, 1, maxImageSize)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	pixelX, err := strconv.Atoi(values.Get("x"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid x coordinate")
		return
	}
	pixelY, err := strconv.Atoi(values.Get("y"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid y coordinate")
		return
	}
	if pixelX < 0 || pixelX >= width || pixelY < 0 || pixelY >= height {
		writeError(w, http.StatusBadRequest, "Pixel coordinates out of bounds")
		return
	}

	writeJSON(w, http.StatusOK, inspectPixel(sceneObj, width, height, pixelX, pixelY))
}
