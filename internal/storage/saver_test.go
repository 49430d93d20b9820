package storage

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// imageServer serves fixed bytes for any path.
func imageServer(data []byte, status int) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		w.Write(data)
	}))
}

func TestSave(t *testing.T) {
	imageBytes := []byte("fake-jpeg-bytes")

	t.Run("DefaultDirAndDerivedFilename", func(t *testing.T) {
		server := imageServer(imageBytes, http.StatusOK)
		defer server.Close()

		defaultDir := t.TempDir()
		saver := NewFileSaver(defaultDir)

		result, err := saver.Save(context.Background(), SaveRequest{
			URL:    server.URL + "/img.jpg",
			Prompt: "A Cat Wearing a Hat!",
			Model:  "FLUX.1 [pro]",
		})
		if err != nil {
			t.Fatalf("Expected no error, got: %v", err)
		}
		if result.Directory != defaultDir {
			t.Errorf("Expected directory %q, got %q", defaultDir, result.Directory)
		}
		if !strings.HasPrefix(result.Filename, "a_cat_wearing_a_hat") {
			t.Errorf("Expected filename derived from prompt, got %q", result.Filename)
		}
		if !strings.HasSuffix(result.Filename, ".jpg") {
			t.Errorf("Expected .jpg extension, got %q", result.Filename)
		}
		if result.Size != int64(len(imageBytes)) {
			t.Errorf("Expected size %d, got %d", len(imageBytes), result.Size)
		}

		saved, err := os.ReadFile(result.SavedPath)
		if err != nil {
			t.Fatalf("Failed to read saved file: %v", err)
		}
		if string(saved) != string(imageBytes) {
			t.Error("Saved bytes do not match the downloaded artifact")
		}

		// Metadata sidecar sits next to the image.
		meta, err := os.ReadFile(result.SavedPath + ".yaml")
		if err != nil {
			t.Fatalf("Failed to read metadata sidecar: %v", err)
		}
		if !strings.Contains(string(meta), "A Cat Wearing a Hat!") {
			t.Error("Metadata sidecar missing the prompt")
		}
	})

	t.Run("ExplicitFilenameGetsExtension", func(t *testing.T) {
		server := imageServer(imageBytes, http.StatusOK)
		defer server.Close()

		saver := NewFileSaver(t.TempDir())
		result, err := saver.Save(context.Background(), SaveRequest{
			URL:      server.URL + "/img.jpg",
			Filename: "custom-name",
			Prompt:   "x",
			Model:    "FLUX.1 [pro]",
		})
		if err != nil {
			t.Fatalf("Expected no error, got: %v", err)
		}
		if result.Filename != "custom-name.jpg" {
			t.Errorf("Expected custom-name.jpg, got %q", result.Filename)
		}
	})

	t.Run("AbsoluteOutputPath", func(t *testing.T) {
		server := imageServer(imageBytes, http.StatusOK)
		defer server.Close()

		target := filepath.Join(t.TempDir(), "nested", "out")
		saver := NewFileSaver(t.TempDir())
		result, err := saver.Save(context.Background(), SaveRequest{
			URL:        server.URL + "/img.jpg",
			OutputPath: target,
			Filename:   "f.jpg",
			Prompt:     "x",
			Model:      "FLUX.1 [pro]",
		})
		if err != nil {
			t.Fatalf("Expected no error, got: %v", err)
		}
		if result.SavedPath != filepath.Join(target, "f.jpg") {
			t.Errorf("Expected save under %q, got %q", target, result.SavedPath)
		}
	})

	t.Run("RelativeOutputPath", func(t *testing.T) {
		server := imageServer(imageBytes, http.StatusOK)
		defer server.Close()

		defaultDir := t.TempDir()
		saver := NewFileSaver(defaultDir)
		result, err := saver.Save(context.Background(), SaveRequest{
			URL:        server.URL + "/img.jpg",
			OutputPath: "renders",
			Filename:   "f.jpg",
			Prompt:     "x",
			Model:      "FLUX.1 [pro]",
		})
		if err != nil {
			t.Fatalf("Expected no error, got: %v", err)
		}
		if result.Directory != filepath.Join(defaultDir, "renders") {
			t.Errorf("Expected directory under the default dir, got %q", result.Directory)
		}
	})

	t.Run("DownloadFailureLeavesNothing", func(t *testing.T) {
		server := imageServer([]byte("gone"), http.StatusNotFound)
		defer server.Close()

		defaultDir := t.TempDir()
		saver := NewFileSaver(defaultDir)
		_, err := saver.Save(context.Background(), SaveRequest{
			URL:    server.URL + "/img.jpg",
			Prompt: "x",
			Model:  "FLUX.1 [pro]",
		})
		if err == nil {
			t.Fatal("Expected an error for a failed download")
		}

		entries, readErr := os.ReadDir(defaultDir)
		if readErr != nil {
			t.Fatalf("Failed to read output dir: %v", readErr)
		}
		if len(entries) != 0 {
			t.Errorf("Expected no files after a failed download, found %d", len(entries))
		}
	})
}

func TestResolveDir(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Fatalf("Failed to resolve home dir: %v", err)
	}

	saver := NewFileSaver("/default/dir")

	testCases := []struct {
		name       string
		outputPath string
		expected   string
	}{
		{
			name:       "Empty",
			outputPath: "",
			expected:   "/default/dir",
		},
		{
			name:       "Absolute",
			outputPath: "/abs/path",
			expected:   "/abs/path",
		},
		{
			name:       "HomePrefixed",
			outputPath: "~/Pictures",
			expected:   filepath.Join(home, "Pictures"),
		},
		{
			name:       "BareTilde",
			outputPath: "~",
			expected:   home,
		},
		{
			name:       "Relative",
			outputPath: "renders/today",
			expected:   "/default/dir/renders/today",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			dir, err := saver.resolveDir(tc.outputPath)
			if err != nil {
				t.Fatalf("Expected no error, got: %v", err)
			}
			if dir != tc.expected {
				t.Errorf("Expected %q, got %q", tc.expected, dir)
			}
		})
	}
}

func TestDeriveFilename(t *testing.T) {
	testCases := []struct {
		name       string
		prompt     string
		model      string
		wantPrefix string
	}{
		{
			name:       "SimplePrompt",
			prompt:     "a cat",
			model:      "FLUX.1 [pro]",
			wantPrefix: "a_cat_flux.1-pro_",
		},
		{
			name:       "SpecialCharactersStripped",
			prompt:     "Neon: city!! (night)",
			model:      "FLUX.1 [dev]",
			wantPrefix: "neon_city_night_flux.1-dev_",
		},
		{
			name:       "EmptyPromptFallsBack",
			prompt:     "!!!",
			model:      "FLUX.1 [pro]",
			wantPrefix: "generated_flux.1-pro_",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := deriveFilename(tc.prompt, tc.model, "jpg")
			if !strings.HasPrefix(got, tc.wantPrefix) {
				t.Errorf("Expected prefix %q, got %q", tc.wantPrefix, got)
			}
			if !strings.HasSuffix(got, ".jpg") {
				t.Errorf("Expected .jpg suffix, got %q", got)
			}
		})
	}

	t.Run("LongPromptCapped", func(t *testing.T) {
		got := deriveFilename(strings.Repeat("word ", 40), "FLUX.1 [pro]", "jpg")
		base := strings.SplitN(got, "_flux", 2)[0]
		if len(base) > 50 {
			t.Errorf("Expected prompt part capped at 50 chars, got %d: %q", len(base), got)
		}
	})
}
