package bake

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Faultbox/texbake/internal/logger"
	"github.com/Faultbox/texbake/internal/scene"
)

// Pipeline bakes, packs and exports textures for the active object.
// It is synchronous; running it twice concurrently on the same object is
// not supported because both runs share the same registry images.
type Pipeline struct {
	engine     Engine
	compositor Compositor
	uv         UVTool
	sync       SyncContext
}

// Result describes a finished run.
type Result struct {
	RunID    string
	Object   string
	Files    Outputs
	Duration time.Duration
}

// New creates a pipeline. sync may be nil.
func New(engine Engine, compositor Compositor, uv UVTool, sync SyncContext) *Pipeline {
	return &Pipeline{
		engine:     engine,
		compositor: compositor,
		uv:         uv,
		sync:       sync,
	}
}

type bakeImages struct {
	diffuse, rough, ao *scene.Image
}

// Run bakes the active object of sc. ErrNoActiveObject and
// ErrInvalidOutputFolder are returned before any side effect; any later
// error leaves already written files in place.
func (p *Pipeline) Run(sc *scene.Scene, cfg Config) (*Result, error) {
	start := time.Now()

	obj := sc.Active
	if obj == nil {
		logger.Warn("No active object selected")
		return nil, ErrNoActiveObject
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if err := checkWritable(cfg.OutputFolder); err != nil {
		logger.Warn("Selected an invalid export folder",
			zap.String("folder", cfg.OutputFolder), zap.Error(err))
		return nil, fmt.Errorf("%w: %s", ErrInvalidOutputFolder, cfg.OutputFolder)
	}
	if obj.Mesh == nil {
		return nil, fmt.Errorf("%w: %s", ErrNoMesh, obj.Name)
	}

	runID := uuid.NewString()
	log := logger.With(zap.String("run", runID), zap.String("object", obj.Name))

	if err := p.prepareSync(sc); err != nil {
		return nil, fmt.Errorf("setting up sync context: %w", err)
	}

	if cfg.SmartUVProject {
		if err := p.unwrap(obj); err != nil {
			return nil, fmt.Errorf("smart UV project: %w", err)
		}
		log.Debug("mesh unwrapped")
	}
	if obj.Mode == scene.ModeEdit {
		obj.SetMode(scene.ModeObject)
	}

	sc.Render.Engine = scene.EngineCycles
	sc.Render.Device = scene.DeviceGPU
	sc.Render.Samples = cfg.Samples
	sc.Bake.Margin = cfg.Margin
	if cfg.AODistance > 0 {
		sc.World.AODistance = cfg.AODistance
	}

	images := lookupImages(sc.Images, obj.Name, cfg)
	out := OutputsFor(cfg.OutputFolder, obj.Name)

	// diffuse: color pass only, no lighting
	attachImageNodes(obj, images.diffuse)
	sc.Bake.UsePassDirect = false
	sc.Bake.UsePassIndirect = false
	sc.Bake.UsePassColor = true
	if err := p.bake(sc, obj, TypeDiffuse, log); err != nil {
		return nil, err
	}
	images.diffuse.FilePath = out.Diffuse
	images.diffuse.FileFormat = scene.FormatPNG

	bindActiveImage(obj, images.rough)
	if err := p.bake(sc, obj, TypeRoughness, log); err != nil {
		return nil, err
	}
	images.rough.FilePath = out.Roughness
	images.rough.FileFormat = scene.FormatPNG
	if err := images.rough.Save(); err != nil {
		return nil, fmt.Errorf("saving roughness: %w", err)
	}

	if err := p.compositor.Pack(images.diffuse, images.rough); err != nil {
		return nil, fmt.Errorf("channel pack: %w", err)
	}
	if err := images.diffuse.Save(); err != nil {
		return nil, fmt.Errorf("saving diffuse: %w", err)
	}
	log.Debug("roughness packed into diffuse alpha")

	bindActiveImage(obj, images.ao)
	if err := p.bake(sc, obj, TypeAO, log); err != nil {
		return nil, err
	}
	images.ao.FilePath = out.AO
	images.ao.FileFormat = scene.FormatPNG
	if err := images.ao.Save(); err != nil {
		return nil, fmt.Errorf("saving ambient occlusion: %w", err)
	}

	obj.SetMode(scene.ModeEdit)
	obj.Mesh.SelectAll(true)
	obj.SetMode(scene.ModeObject)
	if err := p.uv.ExportLayout(obj, out.UV, cfg.Width, cfg.Height); err != nil {
		return nil, fmt.Errorf("exporting UV layout: %w", err)
	}

	if p.sync != nil {
		p.sync.SendActiveObject(obj)
	}

	res := &Result{
		RunID:    runID,
		Object:   obj.Name,
		Files:    out,
		Duration: time.Since(start),
	}
	log.Info("bake finished",
		zap.String("folder", cfg.OutputFolder),
		zap.Int("width", cfg.Width),
		zap.Int("height", cfg.Height),
		zap.Duration("duration", res.Duration),
	)
	return res, nil
}

func (p *Pipeline) prepareSync(sc *scene.Scene) error {
	prep, ok := p.sync.(Preparer)
	if !ok || prep.IsSetup() {
		return nil
	}
	if err := prep.FlushPending(); err != nil {
		return err
	}
	return prep.Setup(sc)
}

// unwrap runs Smart UV Project followed by Pack Islands on every face.
func (p *Pipeline) unwrap(obj *scene.Object) error {
	if obj.Mode == scene.ModeObject {
		obj.SetMode(scene.ModeEdit)
	}
	me := obj.Mesh
	me.SelectMode = scene.SelectVertex
	me.SelectAll(true)
	me.SelectLinked(true)

	if err := p.uv.SmartProject(obj, SmartProjectIslandMargin, true); err != nil {
		return err
	}
	return p.uv.PackIslands(obj, true, PackIslandsMargin)
}

func (p *Pipeline) bake(sc *scene.Scene, obj *scene.Object, t Type, log *zap.Logger) error {
	start := time.Now()
	err := p.engine.Bake(sc, obj, Options{
		Type:                t,
		UseClear:            true,
		UseSelectedToActive: false,
	})
	if err != nil {
		return fmt.Errorf("bake %s: %w", t, err)
	}
	log.Debug("bake pass done", zap.String("type", string(t)), zap.Duration("duration", time.Since(start)))
	return nil
}

// lookupImages finds or creates the three bake images. All three lookups
// are by exact name, so a re-run reuses the same registry entries.
func lookupImages(reg *scene.Registry, object string, cfg Config) bakeImages {
	names := NamesFor(object)
	diffuse, _ := reg.FindOrCreate(names.Diffuse, cfg.Width, cfg.Height, true)
	rough, _ := reg.FindOrCreate(names.Roughness, cfg.Width, cfg.Height, false)
	ao, _ := reg.FindOrCreate(names.AO, cfg.Width, cfg.Height, false)
	return bakeImages{diffuse: diffuse, rough: rough, ao: ao}
}

// attachImageNodes adds a new image node bound to img to every material
// and makes it the active node. The nodes stay attached after the run.
func attachImageNodes(obj *scene.Object, img *scene.Image) {
	for _, mat := range obj.Materials {
		if mat == nil {
			continue
		}
		node := mat.NewImageNode()
		node.Selected = true
		node.Image = img
		mat.SetActive(node)
	}
}

// bindActiveImage rebinds the active node of every material to img.
func bindActiveImage(obj *scene.Object, img *scene.Image) {
	for _, mat := range obj.Materials {
		if mat == nil || mat.Active == nil {
			continue
		}
		mat.Active.Image = img
	}
}
