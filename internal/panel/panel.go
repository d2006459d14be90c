// Package panel describes the Material Baking and Scene panels as data.
// Panels draw themselves onto a Layout in immediate mode; TextLayout
// renders them for the command line and Binding connects property ids to
// the bake settings in config.BakeConfig.
package panel

import "errors"

// ErrUnknownProperty is returned for ids not in Properties.
var ErrUnknownProperty = errors.New("unknown property")

// Kind is the value type of a property.
type Kind int

const (
	KindInt Kind = iota
	KindBool
	KindPath
)

func (k Kind) String() string {
	switch k {
	case KindInt:
		return "int"
	case KindBool:
		return "bool"
	case KindPath:
		return "path"
	default:
		return "unknown"
	}
}

// Property is an editable setting shown on a panel.
type Property struct {
	ID    string
	Label string
	Kind  Kind
	Min   int // lower bound for KindInt
}

// Operator is an action a panel button triggers.
type Operator struct {
	ID          string
	Label       string
	Description string
}

// Property ids of the Material Baking panel.
const (
	PropWidth   = "bake_width"
	PropHeight  = "bake_height"
	PropFolder  = "bake_folder"
	PropSamples = "samples"
	PropSmartUV = "smart_uv"
)

// Operator ids.
const (
	OpBakeTextures = "meshsync.bake_textures"
	OpAutoSync     = "meshsync.auto_sync"
	OpManualSync   = "meshsync.send_objects"
)

// Icons used by the Auto Sync button.
const (
	IconPlay  = "PLAY"
	IconPause = "PAUSE"
)

// Properties lists every bindable property in panel order.
var Properties = []Property{
	{ID: PropWidth, Label: "Width", Kind: KindInt, Min: 1},
	{ID: PropHeight, Label: "Height", Kind: KindInt, Min: 1},
	{ID: PropFolder, Label: "Export Dir", Kind: KindPath},
	{ID: PropSamples, Label: "Samples", Kind: KindInt, Min: 1},
	{ID: PropSmartUV, Label: "Smart UV Project", Kind: KindBool},
}

// Operators lists every operator a panel can show.
var Operators = []Operator{
	{ID: OpBakeTextures, Label: "Bake Textures", Description: "Bake the object to textures"},
	{ID: OpAutoSync, Label: "Auto Sync", Description: "Start or stop syncing on source changes"},
	{ID: OpManualSync, Label: "Manual Sync", Description: "Send queued objects now"},
}

// LookupProperty returns the property with id.
func LookupProperty(id string) (Property, bool) {
	for _, p := range Properties {
		if p.ID == id {
			return p, true
		}
	}
	return Property{}, false
}

// LookupOperator returns the operator with id.
func LookupOperator(id string) (Operator, bool) {
	for _, op := range Operators {
		if op.ID == id {
			return op, true
		}
	}
	return Operator{}, false
}

// Layout receives panel elements in draw order.
type Layout interface {
	BeginPanel(label string)
	EndPanel()
	BeginBox()
	EndBox()
	Label(text string)
	// Prop shows property id, with label in front of the value.
	Prop(id, label string)
	Operator(id, text, icon string)
	Separator()
}

// State carries the runtime values panels depend on.
type State struct {
	AutoSync bool
}

// Panel draws a group of elements.
type Panel struct {
	ID    string
	Label string
	Draw  func(l Layout, s State)
}

// MaterialBaking is the bake settings panel.
var MaterialBaking = Panel{
	ID:    "MESHSYNC_PT_MaterialBake",
	Label: "Material Baking",
	Draw: func(l Layout, _ State) {
		l.BeginBox()
		l.Prop(PropWidth, "Width:")
		l.Prop(PropHeight, "Height:")
		l.EndBox()

		l.Label("Export Dir:")
		l.Prop(PropFolder, "")

		l.BeginBox()
		l.Prop(PropSamples, "Samples:")
		l.Prop(PropSmartUV, "Smart UV Project:")
		l.EndBox()

		l.Operator(OpBakeTextures, "Bake Textures", "")
	},
}

// Scene is the sync panel. The Auto Sync icon shows the action the
// button performs next.
var Scene = Panel{
	ID:    "MESHSYNC_PT_Scene",
	Label: "Scene",
	Draw: func(l Layout, s State) {
		l.Separator()
		icon := IconPlay
		if s.AutoSync {
			icon = IconPause
		}
		l.Operator(OpAutoSync, "Auto Sync", icon)
		l.Operator(OpManualSync, "Manual Sync", "")
	},
}

// All returns the panels in display order.
func All() []Panel {
	return []Panel{Scene, MaterialBaking}
}

// Render draws panels onto l.
func Render(l Layout, s State, panels ...Panel) {
	for _, p := range panels {
		l.BeginPanel(p.Label)
		p.Draw(l, s)
		l.EndPanel()
	}
}
