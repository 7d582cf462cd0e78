package publish

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"webring/internal/domain"
)

// JSONFile записывает результат в файл. Запись атомарна: данные сначала
// попадают во временный файл в том же каталоге, затем он переименовывается.
type JSONFile struct {
	path string
	log  *slog.Logger
}

func NewJSONFile(path string, log *slog.Logger) *JSONFile {
	return &JSONFile{
		path: path,
		log:  log.With(slog.String("component", "json_publisher"), slog.String("path", path)),
	}
}

func (p *JSONFile) Path() string { return p.path }

func (p *JSONFile) Publish(ctx context.Context, result domain.Result) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if result.Articles == nil {
		result.Articles = []domain.Article{}
	}
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode webring: %w", err)
	}
	dir := filepath.Dir(p.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		p.log.Error("Failed to create output directory", slog.Any("error", err))
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(p.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)
	if _, err := tmp.Write(append(data, '\n')); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("failed to chmod temp file: %w", err)
	}
	if err := os.Rename(tmpName, p.path); err != nil {
		p.log.Error("Failed to replace output file", slog.Any("error", err))
		return fmt.Errorf("failed to write %s: %w", p.path, err)
	}
	p.log.Info("Webring written", slog.Int("count", len(result.Articles)))
	return nil
}
