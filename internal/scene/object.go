package scene

// Mode is the interaction mode of an object.
type Mode int

const (
	ModeObject Mode = iota
	ModeEdit
)

// String returns the host's name for the mode.
func (m Mode) String() string {
	if m == ModeEdit {
		return "EDIT"
	}
	return "OBJECT"
}

// Object is a renderable mesh object with ordered material slots.
// A slot may be nil (empty slot).
type Object struct {
	Name      string
	Mesh      *Mesh
	Materials []*Material
	Mode      Mode
}

// SetMode switches the interaction mode.
func (o *Object) SetMode(m Mode) {
	o.Mode = m
}
