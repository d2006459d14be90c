// Package bake runs the PBR texture bake pipeline for one object: diffuse,
// roughness and ambient occlusion bakes, channel packing of roughness into
// the diffuse alpha, and UV layout export.
package bake

import (
	"errors"

	"github.com/Faultbox/texbake/internal/scene"
)

// Errors reported to the user as warnings. A run that returns one of these
// has not written anything.
var (
	ErrNoActiveObject      = errors.New("no active object selected")
	ErrInvalidOutputFolder = errors.New("selected an invalid export folder")
)

// Fatal errors.
var (
	ErrInvalidConfig = errors.New("invalid bake config")
	ErrSizeMismatch  = errors.New("bake images differ in size")
	ErrNoMesh        = errors.New("object has no mesh")
)

// IsWarning reports whether err is a recoverable precondition failure.
func IsWarning(err error) bool {
	return errors.Is(err, ErrNoActiveObject) || errors.Is(err, ErrInvalidOutputFolder)
}

// Type selects what a bake pass renders.
type Type string

const (
	TypeDiffuse   Type = "DIFFUSE"
	TypeRoughness Type = "ROUGHNESS"
	TypeAO        Type = "AO"
)

// Options are passed to the engine for each bake pass.
type Options struct {
	Type                Type
	UseClear            bool
	UseSelectedToActive bool
}

// Engine renders one bake pass into the active image node of every
// material on obj.
type Engine interface {
	Bake(sc *scene.Scene, obj *scene.Object, opts Options) error
}

// Compositor packs rough.r, inverted, into the alpha channel of diffuse.
type Compositor interface {
	Pack(diffuse, rough *scene.Image) error
}

// UVTool unwraps meshes and exports UV layouts. Unwrap operations expect
// the object in edit mode and act on selected faces.
type UVTool interface {
	SmartProject(obj *scene.Object, islandMargin float64, scaleToBounds bool) error
	PackIslands(obj *scene.Object, rotate bool, margin float64) error
	ExportLayout(obj *scene.Object, path string, width, height int) error
}

// SyncContext receives objects that should be (re-)transmitted.
type SyncContext interface {
	SendActiveObject(obj *scene.Object)
}

// Preparer is implemented by sync contexts that need setup before the
// first object is handed to them.
type Preparer interface {
	IsSetup() bool
	FlushPending() error
	Setup(sc *scene.Scene) error
}
