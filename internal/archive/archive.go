// Package archive packs stored reports into a tar.zst stream and restores
// them, so report history survives daemon restarts and can be downloaded over
// the HTTP API.
package archive

import (
	"archive/tar"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/klauspost/compress/zstd"

	"github.com/RishabhS-dev/ai-msme-honeypot/internal/model"
)

const manifestName = "manifest.json"

// Manifest describes the contents of a report archive.
type Manifest struct {
	CreatedAt time.Time         `json:"created_at"`
	Count     int               `json:"count"`
	Checksums map[string]string `json:"checksums"`
}

// Write packs reports into a tar.zst stream: one report_<id>.json per report
// plus a manifest with SHA-256 checksums.
func Write(w io.Writer, reports []*model.Report) error {
	zstdWriter, err := zstd.NewWriter(w)
	if err != nil {
		return fmt.Errorf("failed to create zstd writer: %w", err)
	}
	tarWriter := tar.NewWriter(zstdWriter)

	manifest := Manifest{
		CreatedAt: time.Now().UTC(),
		Count:     len(reports),
		Checksums: make(map[string]string),
	}

	for _, report := range reports {
		data, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal report %s: %w", report.ReportID, err)
		}
		name := fmt.Sprintf("report_%s.json", report.ReportID)
		manifest.Checksums[name] = fmt.Sprintf("%x", sha256.Sum256(data))
		if err := addBytesToTar(tarWriter, name, data); err != nil {
			return fmt.Errorf("failed to add report %s: %w", report.ReportID, err)
		}
	}

	manifestJSON, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal manifest: %w", err)
	}
	if err := addBytesToTar(tarWriter, manifestName, manifestJSON); err != nil {
		return fmt.Errorf("failed to add manifest: %w", err)
	}

	// Close in order so both layers flush; deferred closes would drop the
	// errors that matter here.
	if err := tarWriter.Close(); err != nil {
		return fmt.Errorf("failed to close tar writer: %w", err)
	}
	if err := zstdWriter.Close(); err != nil {
		return fmt.Errorf("failed to close zstd writer: %w", err)
	}
	return nil
}

// Read restores reports from a tar.zst stream produced by Write, verifying
// every file against the manifest checksums.
func Read(r io.Reader) ([]*model.Report, error) {
	zstdReader, err := zstd.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd reader: %w", err)
	}
	defer zstdReader.Close()

	tarReader := tar.NewReader(zstdReader)

	var manifest *Manifest
	var reports []*model.Report
	computed := make(map[string]string)

	for {
		header, err := tarReader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read tar header: %w", err)
		}

		data, err := io.ReadAll(tarReader)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", header.Name, err)
		}

		if header.Name == manifestName {
			var m Manifest
			if err := json.Unmarshal(data, &m); err != nil {
				return nil, fmt.Errorf("failed to unmarshal manifest: %w", err)
			}
			manifest = &m
			continue
		}

		var report model.Report
		if err := json.Unmarshal(data, &report); err != nil {
			return nil, fmt.Errorf("failed to unmarshal %s: %w", header.Name, err)
		}
		computed[header.Name] = fmt.Sprintf("%x", sha256.Sum256(data))
		reports = append(reports, &report)
	}

	if manifest == nil {
		return nil, fmt.Errorf("%s not found in archive", manifestName)
	}
	if manifest.Count != len(reports) {
		return nil, fmt.Errorf("manifest count %d does not match %d archived reports", manifest.Count, len(reports))
	}
	for name, sum := range computed {
		if expected, ok := manifest.Checksums[name]; !ok || expected != sum {
			return nil, fmt.Errorf("checksum mismatch for %s", name)
		}
	}

	return reports, nil
}

// WriteFile archives reports to path, creating parent directories as needed.
func WriteFile(path string, reports []*model.Report) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create archive directory: %w", err)
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create archive %s: %w", path, err)
	}
	if err := Write(file, reports); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

// ReadFile restores reports from the archive at path.
func ReadFile(path string) ([]*model.Report, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open archive %s: %w", path, err)
	}
	defer file.Close()

	return Read(file)
}

func addBytesToTar(tarWriter *tar.Writer, name string, data []byte) error {
	header := &tar.Header{
		Name:    name,
		Size:    int64(len(data)),
		Mode:    0o644,
		ModTime: time.Now(),
	}
	if err := tarWriter.WriteHeader(header); err != nil {
		return err
	}
	_, err := tarWriter.Write(data)
	return err
}
