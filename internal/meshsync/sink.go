package meshsync

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/Faultbox/texbake/internal/logger"
)

// ManifestSuffix is appended to the object name for manifest files.
const ManifestSuffix = "_bake.yaml"

// ManifestSink writes one YAML manifest per object next to its baked
// textures, replacing any previous manifest.
type ManifestSink struct {
	Folder string
}

// ManifestPath returns where the manifest for object is written.
func (s ManifestSink) ManifestPath(object string) string {
	return filepath.Join(s.Folder, object+ManifestSuffix)
}

// Send implements Sink.
func (s ManifestSink) Send(u Update) error {
	data, err := yaml.Marshal(u)
	if err != nil {
		return fmt.Errorf("encoding manifest: %w", err)
	}

	path := s.ManifestPath(u.Object)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing manifest: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("writing manifest: %w", err)
	}
	logger.Debug("manifest written", zap.String("path", path))
	return nil
}

// ReadManifest loads a manifest written by ManifestSink.
func ReadManifest(path string) (Update, error) {
	var u Update
	data, err := os.ReadFile(path)
	if err != nil {
		return u, err
	}
	err = yaml.Unmarshal(data, &u)
	return u, err
}

// LogSink logs each update.
type LogSink struct{}

// Send implements Sink.
func (LogSink) Send(u Update) error {
	logger.Info("object synced",
		zap.String("id", u.ID),
		zap.String("object", u.Object),
		zap.Int("faces", u.Faces),
		zap.Strings("materials", u.Materials),
		zap.Strings("missing", u.Missing),
	)
	return nil
}

// MultiSink sends to every sink, even when one fails, and joins the
// errors.
type MultiSink []Sink

// Send implements Sink.
func (m MultiSink) Send(u Update) error {
	var errs []error
	for _, s := range m {
		if err := s.Send(u); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
