package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/texbake/internal/assets"
	"github.com/Faultbox/texbake/internal/bake"
	"github.com/Faultbox/texbake/internal/config"
	"github.com/Faultbox/texbake/internal/engine/baker"
	"github.com/Faultbox/texbake/internal/engine/gpu"
	"github.com/Faultbox/texbake/internal/logger"
	"github.com/Faultbox/texbake/internal/meshsync"
	"github.com/Faultbox/texbake/internal/scene"
	"github.com/Faultbox/texbake/internal/uv"
)

// session holds the collaborators of a pipeline for the lifetime of a
// command.
type session struct {
	cfg      *config.Config
	pipeline *bake.Pipeline
	sync     *meshsync.Context
	assets   *assets.Manager
	gpu      *gpu.Compositor
}

func newSession(cfg *config.Config) *session {
	s := &session{cfg: cfg, assets: assets.NewManager()}

	var compositor bake.Compositor = bake.CPUCompositor{}
	if cfg.Render.UseGPU {
		c, err := gpu.New()
		if err != nil {
			logger.Warn("GPU compositor unavailable, packing on CPU", zap.Error(err))
		} else {
			s.gpu = c
			compositor = c
		}
	}

	var sink meshsync.Sink = meshsync.LogSink{}
	if cfg.Sync.Manifest {
		sink = meshsync.MultiSink{meshsync.ManifestSink{Folder: cfg.Bake.OutputFolder}, sink}
	}
	s.sync = meshsync.NewContext(sink, cfg.Bake.Pipeline())

	engine := &baker.Engine{Workers: cfg.Render.Workers, Seed: cfg.Render.Seed}
	s.pipeline = bake.New(engine, compositor, uv.NewTool(), s.sync)
	return s
}

func (s *session) Close() {
	if s.gpu != nil {
		s.gpu.Close()
	}
	s.sync.Destroy()
	s.assets.Close()
}

// load reads the model and selects the object to bake. An empty name
// keeps the first object active.
func (s *session) load(path, object string) (*scene.Scene, error) {
	sc, err := scene.LoadOBJWith(path, scene.LoadOptions{
		Textures: s.assets.Texture,
		Charset:  s.cfg.Input.Charset,
	})
	if err != nil {
		return nil, err
	}
	if object != "" {
		if err := sc.SetActive(object); err != nil {
			return nil, err
		}
	}
	return sc, nil
}

// bake runs the pipeline and delivers the result. Precondition failures
// are reported as warnings and return nil.
func (s *session) bake(sc *scene.Scene) error {
	res, err := s.pipeline.Run(sc, s.cfg.Bake.Pipeline())
	if bake.IsWarning(err) {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
		return nil
	}
	if err != nil {
		return err
	}

	fmt.Printf("Baked %s in %v\n", res.Object, res.Duration.Round(time.Millisecond))
	for _, path := range res.Files.All() {
		fmt.Printf("  %s\n", path)
	}
	return nil
}

// sendActive queues the active object and flushes the sync context.
func (s *session) sendActive(sc *scene.Scene) error {
	if sc.Active == nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", bake.ErrNoActiveObject)
		return nil
	}
	s.sync.SendActiveObject(sc.Active)
	if err := s.sync.FlushPending(); err != nil {
		return fmt.Errorf("sync: %w", err)
	}
	fmt.Printf("Sent %s\n", sc.Active.Name)
	return nil
}

func cmdBake(args []string) error {
	fs := flag.NewFlagSet("bake", flag.ExitOnError)
	object := fs.String("object", "", "Object to bake (default: first object)")
	cfg, _, err := setup(fs, args)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if fs.NArg() < 1 {
		return usageError("bake [options] <model.obj>")
	}

	s := newSession(cfg)
	defer s.Close()
	return s.bakeOnce(fs.Arg(0), *object)
}

// bakeOnce loads model, bakes the selected object and flushes the sync
// context.
func (s *session) bakeOnce(model, object string) error {
	sc, err := s.load(model, object)
	if err != nil {
		return err
	}
	if err := s.bake(sc); err != nil {
		return err
	}
	if err := s.sync.FlushPending(); err != nil {
		return fmt.Errorf("sync: %w", err)
	}
	return nil
}

func cmdWatch(args []string) error {
	fs := flag.NewFlagSet("watch", flag.ExitOnError)
	object := fs.String("object", "", "Object to bake (default: first object)")
	cfg, _, err := setup(fs, args)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if fs.NArg() < 1 {
		return usageError("watch [options] <model.obj>")
	}

	s := newSession(cfg)
	defer s.Close()
	return s.watch(fs.Arg(0), *object)
}

// watch bakes model once, then toggles auto sync on and rebakes whenever
// the model or one of its textures changes, until SIGINT or SIGTERM.
func (s *session) watch(model, object string) error {
	sc, err := s.load(model, object)
	if err != nil {
		return err
	}
	if err := s.bake(sc); err != nil {
		return err
	}

	var ctrl *meshsync.Controller
	ctrl = meshsync.NewController(s.sync, func(changed []string) error {
		logger.Info("sources changed, rebaking", zap.Strings("paths", changed))
		s.assets.Invalidate(changed...)

		name := ""
		if sc.Active != nil {
			name = sc.Active.Name
		}
		next, err := s.load(model, name)
		if err != nil {
			return fmt.Errorf("reloading %s: %w", model, err)
		}
		sc = next
		ctrl.Watch(sc.Sources...)
		return s.bake(sc)
	}, s.cfg.Sync.Interval)
	ctrl.Watch(sc.Sources...)

	state, err := ctrl.Toggle()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Printf("Auto sync %s, watching %d files, press Ctrl+C to stop\n", state, len(sc.Sources))
	// runs on the main goroutine, which owns the GL context
	if err := ctrl.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	if err := s.sync.FlushPending(); err != nil {
		logger.Warn("unsent objects on exit", zap.Error(err))
	}
	return nil
}
