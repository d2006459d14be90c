package scene

import "image"

// ImageNode is an image-texture node in a material's node tree. The
// active node of every material is the bake target.
type ImageNode struct {
	Image    *Image
	Selected bool
}

// Material is a principled surface with optional texture maps.
// Maps are stored top row first and sampled in UV space.
type Material struct {
	Name string

	BaseColor    [3]float32 // linear RGB
	BaseColorMap *image.NRGBA
	Roughness    float32
	RoughnessMap *image.NRGBA

	Nodes  []*ImageNode
	Active *ImageNode
}

// NewMaterial returns a material with principled defaults.
func NewMaterial(name string) *Material {
	return &Material{
		Name:      name,
		BaseColor: [3]float32{0.8, 0.8, 0.8},
		Roughness: 0.5,
	}
}

// NewImageNode adds an image-texture node to the material's node tree.
func (mat *Material) NewImageNode() *ImageNode {
	node := &ImageNode{}
	mat.Nodes = append(mat.Nodes, node)
	return node
}

// SetActive makes node the active node. The node must belong to mat.
func (mat *Material) SetActive(node *ImageNode) {
	mat.Active = node
}

// ActiveImage returns the image of the active node, or nil.
func (mat *Material) ActiveImage() *Image {
	if mat == nil || mat.Active == nil {
		return nil
	}
	return mat.Active.Image
}
