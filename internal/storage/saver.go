package storage

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// SaveRequest describes one artifact to persist.
type SaveRequest struct {
	URL          string // Artifact URL served by the remote provider
	OutputPath   string // Caller-supplied directory; empty means the default
	Filename     string // Caller-supplied filename; empty means derive one
	Prompt       string
	Model        string
	OutputFormat string // File extension without the dot; empty means jpg
}

// SaveResult reports where an artifact ended up.
type SaveResult struct {
	SavedPath string
	Filename  string
	Directory string
	Size      int64
}

// Saver is the file-saving collaborator used by the tool dispatcher.
type Saver interface {
	Save(ctx context.Context, req SaveRequest) (*SaveResult, error)
}

// FileSaver downloads artifacts and writes them under a resolved directory,
// with a yaml metadata sidecar next to each image.
type FileSaver struct {
	defaultDir string
	httpClient *http.Client
	logger     *slog.Logger
}

var _ Saver = (*FileSaver)(nil)

// NewFileSaver creates a FileSaver that resolves relative output paths
// against defaultDir.
func NewFileSaver(defaultDir string) *FileSaver {
	return &FileSaver{
		defaultDir: defaultDir,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
		logger: slog.Default(),
	}
}

// Save downloads the artifact and writes it to the resolved destination. The
// image is fully downloaded into memory before any file is created, so a
// failed download leaves nothing behind.
func (s *FileSaver) Save(ctx context.Context, req SaveRequest) (*SaveResult, error) {
	dir, err := s.resolveDir(req.OutputPath)
	if err != nil {
		return nil, err
	}

	format := req.OutputFormat
	if format == "" {
		format = "jpg"
	}

	filename := req.Filename
	if filename == "" {
		filename = deriveFilename(req.Prompt, req.Model, format)
	} else if !strings.Contains(filename, ".") {
		filename += "." + format
	}

	data, err := s.download(ctx, req.URL)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	fullPath := filepath.Join(dir, filename)
	if err := os.WriteFile(fullPath, data, 0644); err != nil {
		return nil, fmt.Errorf("failed to save image: %w", err)
	}

	s.writeMetadata(fullPath, req)

	s.logger.Info("Saved image", "path", fullPath, "size_bytes", len(data))
	return &SaveResult{
		SavedPath: fullPath,
		Filename:  filename,
		Directory: dir,
		Size:      int64(len(data)),
	}, nil
}

// resolveDir maps a caller-supplied output path to a concrete directory:
// absolute paths pass through, ~-prefixed paths expand to the home directory,
// anything else is relative to the default directory.
func (s *FileSaver) resolveDir(outputPath string) (string, error) {
	if outputPath == "" {
		return s.defaultDir, nil
	}
	if outputPath == "~" || strings.HasPrefix(outputPath, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to resolve home directory: %w", err)
		}
		return filepath.Join(home, strings.TrimPrefix(outputPath, "~")), nil
	}
	if filepath.IsAbs(outputPath) {
		return outputPath, nil
	}
	return filepath.Join(s.defaultDir, outputPath), nil
}

func (s *FileSaver) download(ctx context.Context, artifactURL string) ([]byte, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, artifactURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create download request: %w", err)
	}

	resp, err := s.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to download image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to download image: status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read image data: %w", err)
	}
	return data, nil
}

type imageMetadata struct {
	Prompt    string    `yaml:"prompt"`
	Model     string    `yaml:"model"`
	SourceURL string    `yaml:"source_url"`
	Filename  string    `yaml:"filename"`
	Timestamp time.Time `yaml:"timestamp"`
}

// writeMetadata records what produced the image next to it. Best effort: a
// sidecar failure never fails the save.
func (s *FileSaver) writeMetadata(imagePath string, req SaveRequest) {
	meta := imageMetadata{
		Prompt:    req.Prompt,
		Model:     req.Model,
		SourceURL: req.URL,
		Filename:  filepath.Base(imagePath),
		Timestamp: time.Now(),
	}

	data, err := yaml.Marshal(&meta)
	if err != nil {
		s.logger.Warn("Failed to marshal image metadata", "error", err)
		return
	}
	if err := os.WriteFile(imagePath+".yaml", data, 0644); err != nil {
		s.logger.Warn("Failed to write image metadata", "path", imagePath+".yaml", "error", err)
	}
}

// deriveFilename builds a filename from the prompt, model name and current
// time when the caller did not supply one.
func deriveFilename(prompt, model, format string) string {
	base := strings.ToLower(prompt)
	base = strings.ReplaceAll(base, " ", "_")

	var kept []rune
	for _, r := range base {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' {
			kept = append(kept, r)
		}
	}
	base = string(kept)
	if len(base) > 50 {
		base = base[:50]
	}
	if base == "" {
		base = "generated"
	}

	modelSlug := strings.ReplaceAll(strings.ToLower(model), " ", "-")
	modelSlug = strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' || r == '.' {
			return r
		}
		return -1
	}, modelSlug)

	timestamp := time.Now().Format("20060102-150405")
	return fmt.Sprintf("%s_%s_%s.%s", base, modelSlug, timestamp, format)
}
