// Package storage persists the holdings document.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/bobmcallan/fundwatch/internal/common"
	"github.com/bobmcallan/fundwatch/internal/interfaces"
	"github.com/bobmcallan/fundwatch/internal/models"
)

// ErrCorruptStore is returned when the holdings document exists but is not a
// JSON array of holdings.
var ErrCorruptStore = errors.New("holdings store is corrupt")

// FileStore keeps the ordered holdings list in one JSON document.
// Writes are atomic (temp file + rename) and every read-modify-write runs
// under mu, so concurrent Upsert/Delete calls never lose an update.
type FileStore struct {
	path     string
	versions int
	logger   *common.Logger
	mu       sync.Mutex
}

// NewFileStore creates a FileStore and ensures the parent directory exists.
func NewFileStore(logger *common.Logger, config common.StorageConfig) (*FileStore, error) {
	if config.HoldingsPath == "" {
		return nil, fmt.Errorf("holdings path is required")
	}
	versions := config.Versions
	if versions < 0 {
		versions = 0
	}

	dir := filepath.Dir(config.HoldingsPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	logger.Debug().Str("path", config.HoldingsPath).Int("versions", versions).Msg("FileStore opened")
	return &FileStore{
		path:     config.HoldingsPath,
		versions: versions,
		logger:   logger,
	}, nil
}

// Path returns the location of the holdings document.
func (fs *FileStore) Path() string {
	return fs.path
}

// Load returns the stored holdings. A missing or empty document is an empty list.
func (fs *FileStore) Load(ctx context.Context) ([]models.Holding, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return fs.read()
}

// Save replaces the stored holdings.
func (fs *FileStore) Save(ctx context.Context, holdings []models.Holding) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return fs.write(holdings)
}

// Upsert validates h and inserts it, or updates shares and cost of the holding
// with the same code. The stored name is only replaced when h has one.
func (fs *FileStore) Upsert(ctx context.Context, h models.Holding) error {
	h.Code = strings.TrimSpace(h.Code)
	h.Name = strings.TrimSpace(h.Name)
	if err := h.Validate(); err != nil {
		return err
	}

	fs.mu.Lock()
	defer fs.mu.Unlock()

	holdings, err := fs.read()
	if err != nil {
		return err
	}

	updated := false
	for i := range holdings {
		if holdings[i].Code != h.Code {
			continue
		}
		holdings[i].Shares = h.Shares
		holdings[i].Cost = h.Cost
		if h.Name != "" {
			holdings[i].Name = h.Name
		}
		updated = true
		break
	}
	if !updated {
		if h.Name == "" {
			h.Name = models.PlaceholderName(h.Code)
		}
		holdings = append(holdings, h)
	}

	if err := fs.write(holdings); err != nil {
		return err
	}
	fs.logger.Debug().Str("code", h.Code).Bool("updated", updated).Msg("Holding saved")
	return nil
}

// Delete removes the holding with the given code.
func (fs *FileStore) Delete(ctx context.Context, code string) error {
	code = strings.TrimSpace(code)

	fs.mu.Lock()
	defer fs.mu.Unlock()

	holdings, err := fs.read()
	if err != nil {
		return err
	}

	kept := holdings[:0]
	for _, h := range holdings {
		if h.Code != code {
			kept = append(kept, h)
		}
	}
	if len(kept) == len(holdings) {
		return nil
	}

	if err := fs.write(kept); err != nil {
		return err
	}
	fs.logger.Debug().Str("code", code).Msg("Holding deleted")
	return nil
}

func (fs *FileStore) read() ([]models.Holding, error) {
	data, err := os.ReadFile(fs.path)
	if err != nil {
		if os.IsNotExist(err) {
			return []models.Holding{}, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", fs.path, err)
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return []models.Holding{}, nil
	}

	var holdings []models.Holding
	if err := json.Unmarshal(data, &holdings); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorruptStore, fs.path, err)
	}
	if holdings == nil {
		holdings = []models.Holding{}
	}
	return holdings, nil
}

// write marshals holdings to indented JSON and replaces the document atomically,
// rotating previous versions first.
func (fs *FileStore) write(holdings []models.Holding) error {
	if holdings == nil {
		holdings = []models.Holding{}
	}
	jsonData, err := json.MarshalIndent(holdings, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	jsonData = append(jsonData, '\n')

	dir := filepath.Dir(fs.path)
	tmpFile, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	if _, err := tmpFile.Write(jsonData); err != nil {
		tmpFile.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		tmpFile.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if fs.versions > 0 {
		fs.rotateVersions()
	}

	if err := os.Rename(tmpPath, fs.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}

// rotateVersions shifts backups up and copies the current document to v1.
// v{N} -> deleted, v{N-1} -> v{N}, ..., v1 -> v2, current -> v1
func (fs *FileStore) rotateVersions() {
	os.Remove(fmt.Sprintf("%s.v%d", fs.path, fs.versions))

	for i := fs.versions; i > 1; i-- {
		src := fmt.Sprintf("%s.v%d", fs.path, i-1)
		dst := fmt.Sprintf("%s.v%d", fs.path, i)
		os.Rename(src, dst) // may not exist yet
	}

	// Copy rather than rename so the document never disappears between
	// rotation and the final rename.
	if data, err := os.ReadFile(fs.path); err == nil {
		if err := os.WriteFile(fs.path+".v1", data, 0644); err != nil {
			fs.logger.Warn().Err(err).Str("path", fs.path).Msg("Failed to write holdings backup")
		}
	}
}

// Ensure FileStore implements HoldingStore
var _ interfaces.HoldingStore = (*FileStore)(nil)
