// Package formats provides parsers for the mesh and material file formats
// accepted as bake input.
package formats

// Note: Wavefront OBJ geometry is implemented in obj.go
// Note: Wavefront MTL materials (including the PBR Pr/map_Pr extension) are in mtl.go
