// texbake bakes diffuse, roughness and ambient occlusion textures for a
// mesh, packs roughness into the diffuse alpha channel and exports the UV
// layout.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/Faultbox/texbake/internal/config"
	"github.com/Faultbox/texbake/internal/logger"
)

// errUsage reports bad arguments; its message is the command synopsis.
var errUsage = errors.New("usage")

// usageError returns an errUsage carrying the synopsis of a command.
func usageError(synopsis string) error {
	return fmt.Errorf("%w: texbake %s", errUsage, synopsis)
}

// commands run until done and return instead of exiting, so deferred
// cleanup of GL contexts and sync state always happens.
var commands = map[string]func(args []string) error{
	"bake":   cmdBake,
	"watch":  cmdWatch,
	"op":     cmdOp,
	"uv":     cmdUV,
	"panels": cmdPanels,
	"config": cmdConfig,
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "help", "-h", "--help":
		printUsage()
		return
	}
	run, ok := commands[command]
	if !ok {
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
	if err := run(args); err != nil {
		if errors.Is(err, errUsage) {
			fmt.Fprintf(os.Stderr, "Usage%s\n", strings.TrimPrefix(err.Error(), "usage"))
			os.Exit(2)
		}
		fatal("%v", err)
	}
}

func printUsage() {
	fmt.Println(`texbake - PBR texture baker

Usage:
  texbake <command> [options]

Commands:
  bake [options] <model.obj>            Bake textures for the active object
  watch [options] <model.obj>           Rebake whenever the model or its textures change
  uv [options] <model.obj>              Export the UV layout only
  panels [options]                      Show the Material Baking and Scene panels
  op [options] <operator> <model.obj>  Run a panel operator (see "texbake panels")
  config [options] [show|path|save|set <prop>=<value>...]
                                        Inspect or edit settings

Common options:
  -config <file>   Config file (default: ./texbake.yaml, then user config dir)
  -out <dir>       Output folder
  -width, -height  Bake size in pixels
  -samples <n>     AO samples
  -smart-uv        Smart UV Project before baking
  -cpu             Pack channels on the CPU
  -charset <name>  Code page of non-UTF-8 model files (default windows-1252)
  -debug           Debug logging

Examples:
  texbake bake -out ./bakes -width 1024 -height 1024 crate.obj
  texbake bake -object Lid crate.obj
  texbake watch -smart-uv crate.obj
  texbake op meshsync.send_objects crate.obj
  texbake config set bake_width=2048 samples=32`)
}

// setup parses args into fs, loads the configuration and starts the
// logger.
func setup(fs *flag.FlagSet, args []string) (*config.Config, *config.Flags, error) {
	flags := config.RegisterFlags(fs)
	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}

	cfg, err := config.Load(flags)
	if err != nil {
		return nil, nil, fmt.Errorf("config: %w", err)
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		return nil, nil, fmt.Errorf("logger: %w", err)
	}
	logger.Sugar.Debugf("Config: %+v", cfg)
	return cfg, flags, nil
}

func fatal(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	logger.Sync()
	os.Exit(1)
}
