// Package scene models the host-side state a bake operates on: objects,
// their meshes and materials, the shared image registry, and the render
// and bake pass settings a run mutates.
package scene

import (
	"errors"
	"fmt"
)

// ErrObjectNotFound is returned when an object name is not in the scene.
var ErrObjectNotFound = errors.New("object not found")

// RenderEngine names the renderer used for bakes.
type RenderEngine string

const (
	EngineEevee  RenderEngine = "BLENDER_EEVEE"
	EngineCycles RenderEngine = "CYCLES"
)

// Device names the compute device of the path tracer.
type Device string

const (
	DeviceCPU Device = "CPU"
	DeviceGPU Device = "GPU"
)

// RenderSettings are the scene-level render options. A bake run switches
// them to the path tracer and does not restore them.
type RenderSettings struct {
	Engine  RenderEngine
	Device  Device
	Samples int
}

// BakeSettings select which contributions a diffuse bake captures and how
// far baked texels are extended past UV island borders.
type BakeSettings struct {
	UsePassDirect   bool
	UsePassIndirect bool
	UsePassColor    bool
	Margin          int // pixels
}

// WorldSettings hold world-level shading options.
type WorldSettings struct {
	AODistance float32 // maximum occluder distance for AO
}

// Scene holds objects, the active object and the image registry.
type Scene struct {
	Objects []*Object
	Active  *Object
	Images  *Registry
	Render  RenderSettings
	Bake    BakeSettings
	World   WorldSettings

	// Sources lists the files the scene was loaded from (mesh, material
	// libraries, textures), used for change detection.
	Sources []string
}

// New creates an empty scene with host defaults.
func New() *Scene {
	return &Scene{
		Images: NewRegistry(),
		Render: RenderSettings{
			Engine:  EngineEevee,
			Device:  DeviceCPU,
			Samples: 64,
		},
		Bake: BakeSettings{
			UsePassDirect:   true,
			UsePassIndirect: true,
			UsePassColor:    true,
			Margin:          16,
		},
		World: WorldSettings{
			AODistance: 10,
		},
	}
}

// Add appends an object. The first object added becomes active.
func (s *Scene) Add(obj *Object) {
	s.Objects = append(s.Objects, obj)
	if s.Active == nil {
		s.Active = obj
	}
}

// Object returns the object with the given name, or nil.
func (s *Scene) Object(name string) *Object {
	for _, o := range s.Objects {
		if o.Name == name {
			return o
		}
	}
	return nil
}

// SetActive makes the named object active.
func (s *Scene) SetActive(name string) error {
	obj := s.Object(name)
	if obj == nil {
		return fmt.Errorf("%w: %s", ErrObjectNotFound, name)
	}
	s.Active = obj
	return nil
}
