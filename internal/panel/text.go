package panel

import (
	"fmt"
	"io"
	"strings"
)

// TextLayout writes panels as indented plain text. Property values come
// from the binding; a nil binding prints the property ids instead.
type TextLayout struct {
	w      io.Writer
	values *Binding
	depth  int
	err    error
}

// NewTextLayout returns a layout writing to w.
func NewTextLayout(w io.Writer, values *Binding) *TextLayout {
	return &TextLayout{w: w, values: values}
}

// Err returns the first write error.
func (t *TextLayout) Err() error { return t.err }

func (t *TextLayout) line(format string, args ...any) {
	if t.err != nil {
		return
	}
	indent := strings.Repeat("  ", t.depth)
	_, t.err = fmt.Fprintf(t.w, indent+format+"\n", args...)
}

func (t *TextLayout) BeginPanel(label string) {
	t.line("[%s]", label)
	t.depth++
}

func (t *TextLayout) EndPanel() {
	t.depth--
	t.line("")
}

func (t *TextLayout) BeginBox() { t.depth++ }
func (t *TextLayout) EndBox()   { t.depth-- }

func (t *TextLayout) Label(text string) { t.line("%s", text) }

func (t *TextLayout) Prop(id, label string) {
	value := "<" + id + ">"
	if t.values != nil {
		if v, err := t.values.Get(id); err == nil {
			value = v
		}
	}
	if label == "" {
		t.line("%s", value)
		return
	}
	t.line("%-18s %s", label, value)
}

func (t *TextLayout) Operator(id, text, icon string) {
	if icon != "" {
		t.line("(%s) %s  [%s]", icon, text, id)
		return
	}
	t.line("(%s)  [%s]", text, id)
}

func (t *TextLayout) Separator() { t.line("--") }
