package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/Faultbox/texbake/internal/bake"
	"github.com/Faultbox/texbake/internal/config"
	"github.com/Faultbox/texbake/internal/logger"
	"github.com/Faultbox/texbake/internal/panel"
	"github.com/Faultbox/texbake/internal/scene"
	"github.com/Faultbox/texbake/internal/uv"
)

// operatorActions runs the panel operators from the command line.
var operatorActions = map[string]func(s *session, model, object string) error{
	panel.OpBakeTextures: (*session).bakeOnce,
	panel.OpAutoSync:     (*session).watch,
	panel.OpManualSync:   (*session).sendModel,
}

// sendModel loads model and sends the selected object without baking.
func (s *session) sendModel(model, object string) error {
	sc, err := s.load(model, object)
	if err != nil {
		return err
	}
	return s.sendActive(sc)
}

func cmdOp(args []string) error {
	fs := flag.NewFlagSet("op", flag.ExitOnError)
	object := fs.String("object", "", "Object to operate on (default: first object)")
	cfg, _, err := setup(fs, args)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if fs.NArg() < 2 {
		return usageError("op [options] <operator> <model.obj>")
	}
	op, ok := panel.LookupOperator(fs.Arg(0))
	if !ok {
		return fmt.Errorf("unknown operator %q", fs.Arg(0))
	}
	action, ok := operatorActions[op.ID]
	if !ok {
		return fmt.Errorf("operator %s cannot run from the command line", op.ID)
	}
	logger.Sugar.Debugf("Running operator %s (%s)", op.ID, op.Label)

	s := newSession(cfg)
	defer s.Close()
	return action(s, fs.Arg(1), *object)
}

func cmdUV(args []string) error {
	fs := flag.NewFlagSet("uv", flag.ExitOnError)
	object := fs.String("object", "", "Object to export (default: first object)")
	cfg, _, err := setup(fs, args)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if fs.NArg() < 1 {
		return usageError("uv [options] <model.obj>")
	}

	sc, err := scene.LoadOBJWith(fs.Arg(0), scene.LoadOptions{Charset: cfg.Input.Charset})
	if err != nil {
		return err
	}
	if *object != "" {
		if err := sc.SetActive(*object); err != nil {
			return err
		}
	}
	obj := sc.Active
	if obj == nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", bake.ErrNoActiveObject)
		return nil
	}

	tool := uv.NewTool()
	obj.SetMode(scene.ModeEdit)
	if obj.Mesh != nil {
		obj.Mesh.SelectAll(true)
	}
	if cfg.Bake.SmartUVProject {
		if err := tool.SmartProject(obj, bake.SmartProjectIslandMargin, true); err != nil {
			return err
		}
		if err := tool.PackIslands(obj, true, bake.PackIslandsMargin); err != nil {
			return err
		}
	}
	obj.SetMode(scene.ModeObject)

	path := bake.OutputsFor(cfg.Bake.OutputFolder, obj.Name).UV
	if err := tool.ExportLayout(obj, path, cfg.Bake.Width, cfg.Bake.Height); err != nil {
		return err
	}
	fmt.Println(path)
	return nil
}

func cmdPanels(args []string) error {
	fs := flag.NewFlagSet("panels", flag.ExitOnError)
	autoSync := fs.Bool("auto-sync", false, "Show the Scene panel with auto sync running")
	cfg, _, err := setup(fs, args)
	if err != nil {
		return err
	}
	defer logger.Sync()

	l := panel.NewTextLayout(os.Stdout, panel.Bind(&cfg.Bake))
	panel.Render(l, panel.State{AutoSync: *autoSync}, panel.All()...)
	if err := l.Err(); err != nil {
		return err
	}

	fmt.Println("Operators (texbake op <id> <model.obj>):")
	for _, op := range panel.Operators {
		fmt.Printf("  %-24s %s\n", op.ID, op.Description)
	}
	return nil
}

func cmdConfig(args []string) error {
	fs := flag.NewFlagSet("config", flag.ExitOnError)
	cfg, flags, err := setup(fs, args)
	if err != nil {
		return err
	}
	defer logger.Sync()

	action := "show"
	if fs.NArg() > 0 {
		action = fs.Arg(0)
	}

	switch action {
	case "show":
		data, err := cfg.Marshal()
		if err != nil {
			return err
		}
		os.Stdout.Write(data)
	case "path":
		fmt.Println(config.Path(flags))
	case "save":
		if err := cfg.Save(flags); err != nil {
			return err
		}
		fmt.Printf("Saved %s\n", config.Path(flags))
	case "set":
		if fs.NArg() < 2 {
			return usageError("config set <prop>=<value>...")
		}
		b := panel.Bind(&cfg.Bake)
		for _, kv := range fs.Args()[1:] {
			id, value, ok := strings.Cut(kv, "=")
			if !ok {
				return fmt.Errorf("expected <prop>=<value>, got %q", kv)
			}
			if err := b.Set(id, value); err != nil {
				return err
			}
		}
		if err := cfg.Validate(); err != nil {
			return err
		}
		if err := cfg.Save(flags); err != nil {
			return err
		}
		fmt.Printf("Saved %s\n", config.Path(flags))
	default:
		return fmt.Errorf("unknown config action: %s", action)
	}
	return nil
}
