package scene

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// SceneInfo describes a scene that can be rendered by name
type SceneInfo struct {
	ID          string `json:"id"`          // Name or file path used to load the scene
	Name        string `json:"name"`        // Scene name
	Description string `json:"description"` // Optional description
	Type        string `json:"type"`        // "builtin" or "file"
	FilePath    string `json:"filePath"`    // Path to the scene file (file type only)
}

type builtin struct {
	description string
	build       func() *Scene
}

var builtins = map[string]builtin{
	"cornell":    {"Sphere-walled Cornell box with two diffuse spheres", NewCornellScene},
	"mirror":     {"Cornell box with a perfect mirror and a half-reflective sphere", NewMirrorScene},
	"sphere":     {"One diffuse white sphere under a uniform white sky", NewSphereScene},
	"spheregrid": {"8x8 grid of spheres sweeping hue and reflectivity", NewSphereGridScene},
	"triangles":  {"Triangle pyramid and mirror panel on a floor quad", NewTrianglesScene},
}

// Lookup builds a fresh copy of the named built-in scene
func Lookup(name string) (*Scene, error) {
	b, ok := builtins[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownScene, name)
	}
	return b.build(), nil
}

// List returns the built-in scenes sorted by name
func List() []SceneInfo {
	scenes := make([]SceneInfo, 0, len(builtins))
	for name, b := range builtins {
		scenes = append(scenes, SceneInfo{
			ID:          name,
			Name:        name,
			Description: b.description,
			Type:        "builtin",
		})
	}
	sort.Slice(scenes, func(i, j int) bool {
		return scenes[i].Name < scenes[j].Name
	})
	return scenes
}

// ListSceneFiles scans dir for JSON scene files and reads their metadata.
// A missing directory yields an empty list.
func ListSceneFiles(dir string) ([]SceneInfo, error) {
	if _, err := os.Stat(dir); err != nil {
		return []SceneInfo{}, nil
	}

	files, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return nil, fmt.Errorf("failed to scan scenes directory: %w", err)
	}

	scenes := make([]SceneInfo, 0, len(files))
	for _, filePath := range files {
		info, err := ParseSceneFileMetadata(filePath)
		if err != nil {
			return nil, err
		}
		scenes = append(scenes, info)
	}

	sort.Slice(scenes, func(i, j int) bool {
		return scenes[i].Name < scenes[j].Name
	})
	return scenes, nil
}

// ParseSceneFileMetadata reads the name and description of a JSON scene file
// without building its geometry. The file name is used when no name is set.
func ParseSceneFileMetadata(filePath string) (SceneInfo, error) {
	nameWithoutExt := strings.TrimSuffix(filepath.Base(filePath), filepath.Ext(filePath))
	info := SceneInfo{
		ID:       filePath,
		Name:     nameWithoutExt,
		Type:     "file",
		FilePath: filePath,
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		return info, fmt.Errorf("read scene metadata: %w", err)
	}

	var header struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	if err := json.Unmarshal(data, &header); err != nil {
		return info, fmt.Errorf("decode scene metadata %s: %w", filePath, err)
	}
	if header.Name != "" {
		info.Name = header.Name
	}
	info.Description = header.Description

	return info, nil
}
