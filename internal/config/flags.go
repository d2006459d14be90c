package config

import "flag"

// Flags are command-line overrides. Only flags explicitly given on the
// command line are applied.
type Flags struct {
	fs *flag.FlagSet

	Config  string
	Debug   bool
	LogFile string
	Output  string
	Width   int
	Height  int
	Samples int
	SmartUV bool
	Margin  int
	CPU     bool
	Charset string
}

// RegisterFlags adds the config override flags to fs.
func RegisterFlags(fs *flag.FlagSet) *Flags {
	f := &Flags{fs: fs}
	fs.StringVar(&f.Config, "config", "", "Path to config file")
	fs.BoolVar(&f.Debug, "debug", false, "Enable debug logging")
	fs.StringVar(&f.LogFile, "log-file", "", "Write logs to this file as well")
	fs.StringVar(&f.Output, "out", "", "Output folder for baked textures")
	fs.IntVar(&f.Width, "width", 0, "Bake texture width")
	fs.IntVar(&f.Height, "height", 0, "Bake texture height")
	fs.IntVar(&f.Samples, "samples", 0, "AO sample count")
	fs.BoolVar(&f.SmartUV, "smart-uv", false, "Run Smart UV Project before baking")
	fs.IntVar(&f.Margin, "margin", 0, "Bake margin in pixels")
	fs.BoolVar(&f.CPU, "cpu", false, "Pack channels on the CPU instead of the GPU")
	fs.StringVar(&f.Charset, "charset", "", "Code page of non-UTF-8 model files")
	return f
}

// ConfigPath returns the explicit config path if provided via --config.
func (f *Flags) ConfigPath() string {
	if f == nil {
		return ""
	}
	return f.Config
}

// apply applies CLI flag overrides to the config.
func (f *Flags) apply(cfg *Config) {
	if f == nil || f.fs == nil {
		return
	}
	f.fs.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "debug":
			if f.Debug {
				cfg.Logging.Level = "debug"
			}
		case "log-file":
			cfg.Logging.LogFile = f.LogFile
		case "out":
			cfg.Bake.OutputFolder = f.Output
		case "width":
			cfg.Bake.Width = f.Width
		case "height":
			cfg.Bake.Height = f.Height
		case "samples":
			cfg.Bake.Samples = f.Samples
		case "smart-uv":
			cfg.Bake.SmartUVProject = f.SmartUV
		case "margin":
			cfg.Bake.Margin = f.Margin
		case "cpu":
			cfg.Render.UseGPU = !f.CPU
		case "charset":
			cfg.Input.Charset = f.Charset
		}
	})
}
