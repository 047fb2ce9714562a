package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/natefinch/atomic"

	"github.com/iamboehnke/dnd-dungeon-master-assistant/pkg/namegen"
)

const (
	backupPrefix     = "name_generator_backup_"
	preRestoreBackup = backupPrefix + "pre_restore.json"
)

// ModelManager owns the name-generation registry and its canonical file on
// disk. The registry itself performs no locking, so every handler reaches
// it through this manager's mutex.
type ModelManager struct {
	mu     sync.Mutex
	reg    *namegen.Registry
	path   string
	logger *slog.Logger
}

// NewModelManager loads the model file at path, or starts a fresh registry
// when the file is absent. A file that exists but cannot be decoded is a
// hard error, so silent data loss never masquerades as a cold start.
func NewModelManager(path string, logger *slog.Logger) (*ModelManager, error) {
	m := &ModelManager{
		path:   path,
		logger: logger,
	}

	reg, err := namegen.LoadFile(path)
	switch {
	case err == nil:
		logger.Info("Model loaded", slog.String("path", path), slog.Int("trained_names", reg.Stats().TrainedNames))
	case errors.Is(err, fs.ErrNotExist):
		logger.Info("No saved model found, starting fresh", slog.String("path", path))
		reg = namegen.NewDefaultRegistry()
	default:
		return nil, fmt.Errorf("failed to load model: %w", err)
	}

	reg.SetLogger(logger)
	m.reg = reg
	return m, nil
}

// Train ingests names into the global model or a category model.
func (m *ModelManager) Train(names []string, category string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.reg.Train(names, category)
}

// Generate produces a single name.
func (m *ModelManager) Generate(opts ...namegen.GenerateOption) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.reg.Generate(opts...)
}

// GenerateMany produces up to count names.
func (m *ModelManager) GenerateMany(count int, unique bool, opts ...namegen.GenerateOption) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.reg.GenerateMany(count, unique, opts...)
}

// ListCategories returns the trained categories in sorted order.
func (m *ModelManager) ListCategories() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.reg.ListCategories()
}

// RemoveCategory removes a category model and its provenance.
func (m *ModelManager) RemoveCategory(name string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.reg.RemoveCategory(name)
}

// SampleKnownNames returns up to count previously-trained names.
func (m *ModelManager) SampleKnownNames(category string, count int) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.reg.SampleKnownNames(category, count)
}

// Stats returns a snapshot of registry statistics.
func (m *ModelManager) Stats() namegen.RegistryStats {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.reg.Stats()
}

// Reset discards all trained state.
func (m *ModelManager) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reg.Reset()
}

// Export writes the registry's serialized form to w.
func (m *ModelManager) Export(w io.Writer) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.reg.Export(w)
}

// Import replaces the registry with one decoded from r. The current
// registry stays in place if decoding fails.
func (m *ModelManager) Import(r io.Reader) error {
	reg, err := namegen.Import(r)
	if err != nil {
		return err
	}
	reg.SetLogger(m.logger)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.reg = reg
	return nil
}

// Save writes the registry to the canonical model path.
func (m *ModelManager) Save() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.reg.SaveFile(m.path)
}

// Load replaces the registry with the contents of the canonical model
// path. The current registry stays in place on any error.
func (m *ModelManager) Load() error {
	reg, err := namegen.LoadFile(m.path)
	if err != nil {
		return err
	}
	reg.SetLogger(m.logger)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.reg = reg
	return nil
}

// Backup copies the saved model file to a timestamped sibling and returns
// the backup's file name. The in-memory registry is saved first so the
// backup reflects current state.
func (m *ModelManager) Backup() (string, error) {
	if err := m.Save(); err != nil {
		return "", err
	}
	name := backupPrefix + time.Now().Format("20060102_150405") + ".json"
	if err := m.copyModelFile(m.path, filepath.Join(filepath.Dir(m.path), name)); err != nil {
		return "", err
	}
	m.logger.Info("Model backed up", slog.String("backup", name))
	return name, nil
}

// ListBackups returns the backup file names next to the model file, most
// recent first.
func (m *ModelManager) ListBackups() ([]string, error) {
	entries, err := os.ReadDir(filepath.Dir(m.path))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}

	var backups []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasPrefix(name, backupPrefix) && strings.HasSuffix(name, ".json") {
			backups = append(backups, name)
		}
	}
	sort.Sort(sort.Reverse(sort.StringSlice(backups)))
	return backups, nil
}

// Restore replaces the model file and the in-memory registry with the
// named backup, after backing up the current state so a restore can
// itself be undone.
func (m *ModelManager) Restore(name string) error {
	// Backup names come from ListBackups; reject anything that could
	// escape the model directory.
	if name != filepath.Base(name) || !strings.HasPrefix(name, backupPrefix) {
		return fmt.Errorf("invalid backup name %q", name)
	}
	backupPath := filepath.Join(filepath.Dir(m.path), name)
	if _, err := os.Stat(backupPath); err != nil {
		return fmt.Errorf("backup %q not found: %w", name, err)
	}

	if _, err := os.Stat(m.path); err == nil {
		if err := m.copyModelFile(m.path, filepath.Join(filepath.Dir(m.path), preRestoreBackup)); err != nil {
			return fmt.Errorf("failed to back up current model before restore: %w", err)
		}
	}

	if err := m.copyModelFile(backupPath, m.path); err != nil {
		return err
	}
	if err := m.Load(); err != nil {
		return err
	}
	m.logger.Info("Model restored", slog.String("backup", name))
	return nil
}

// copyModelFile copies src to dst atomically.
func (m *ModelManager) copyModelFile(src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", src, err)
	}
	if err := atomic.WriteFile(dst, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to write %s: %w", dst, err)
	}
	return nil
}
