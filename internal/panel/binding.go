package panel

import (
	"fmt"
	"strconv"

	"github.com/Faultbox/texbake/internal/config"
)

// Binding reads and writes panel properties on a BakeConfig.
type Binding struct {
	cfg *config.BakeConfig
}

// Bind returns a binding over cfg.
func Bind(cfg *config.BakeConfig) *Binding {
	return &Binding{cfg: cfg}
}

// Get returns the value of property id formatted for display.
func (b *Binding) Get(id string) (string, error) {
	switch id {
	case PropWidth:
		return strconv.Itoa(b.cfg.Width), nil
	case PropHeight:
		return strconv.Itoa(b.cfg.Height), nil
	case PropFolder:
		return b.cfg.OutputFolder, nil
	case PropSamples:
		return strconv.Itoa(b.cfg.Samples), nil
	case PropSmartUV:
		return strconv.FormatBool(b.cfg.SmartUVProject), nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnknownProperty, id)
}

// Set parses value and stores it in property id. The config is left
// unchanged when the value does not parse or is out of range.
func (b *Binding) Set(id, value string) error {
	prop, ok := LookupProperty(id)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownProperty, id)
	}

	switch prop.Kind {
	case KindInt:
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("%s: %w", prop.Label, err)
		}
		if n < prop.Min {
			return fmt.Errorf("%s: %d is below minimum %d", prop.Label, n, prop.Min)
		}
		switch id {
		case PropWidth:
			b.cfg.Width = n
		case PropHeight:
			b.cfg.Height = n
		case PropSamples:
			b.cfg.Samples = n
		}
	case KindBool:
		v, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("%s: %w", prop.Label, err)
		}
		b.cfg.SmartUVProject = v
	case KindPath:
		if value == "" {
			return fmt.Errorf("%s: empty path", prop.Label)
		}
		b.cfg.OutputFolder = value
	}
	return nil
}
