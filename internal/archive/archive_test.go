package archive

import (
	"archive/tar"
	"bytes"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"testing"
	"time"

	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RishabhS-dev/ai-msme-honeypot/internal/model"
)

func sampleReports() []*model.Report {
	generated := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	return []*model.Report{
		{
			ReportID:  "report-1",
			Timestamp: generated,
			Attacks: []model.Attack{
				{ID: "attack-1", Type: model.AttackBruteForce, Severity: model.SeverityHigh, SourceIP: "203.0.113.7"},
			},
			Anomalies:       []model.Anomaly{},
			Threats:         []model.Threat{{ID: "threat_attack-1", Severity: model.SeverityCritical}},
			Recommendations: []model.Recommendation{},
		},
		{
			ReportID:        "report-2",
			Timestamp:       generated.Add(30 * time.Second),
			Attacks:         []model.Attack{},
			Anomalies:       []model.Anomaly{},
			Threats:         []model.Threat{},
			Recommendations: []model.Recommendation{},
		},
	}
}

func TestWriteRead_RoundTrip(t *testing.T) {
	reports := sampleReports()

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, reports))

	restored, err := Read(&buf)
	require.NoError(t, err)

	require.Len(t, restored, 2)
	assert.Equal(t, reports[0], restored[0])
	assert.Equal(t, reports[1], restored[1])
}

func TestWrite_ManifestDescribesContents(t *testing.T) {
	reports := sampleReports()

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, reports))

	zstdReader, err := zstd.NewReader(&buf)
	require.NoError(t, err)
	defer zstdReader.Close()
	tarReader := tar.NewReader(zstdReader)

	files := make(map[string][]byte)
	for {
		header, err := tarReader.Next()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		data, err := io.ReadAll(tarReader)
		require.NoError(t, err)
		files[header.Name] = data
	}

	require.Contains(t, files, "manifest.json")
	require.Contains(t, files, "report_report-1.json")
	require.Contains(t, files, "report_report-2.json")

	var manifest Manifest
	require.NoError(t, json.Unmarshal(files["manifest.json"], &manifest))
	assert.Equal(t, 2, manifest.Count)
	for _, name := range []string{"report_report-1.json", "report_report-2.json"} {
		want := fmt.Sprintf("%x", sha256.Sum256(files[name]))
		assert.Equal(t, want, manifest.Checksums[name], name)
	}
}

func TestRead_DetectsTamperedReport(t *testing.T) {
	// Pack a report whose manifest checksum does not match its bytes.
	reportJSON, err := json.MarshalIndent(sampleReports()[0], "", "  ")
	require.NoError(t, err)
	manifest := Manifest{
		CreatedAt: time.Now().UTC(),
		Count:     1,
		Checksums: map[string]string{"report_report-1.json": "deadbeef"},
	}
	manifestJSON, err := json.MarshalIndent(manifest, "", "  ")
	require.NoError(t, err)

	var buf bytes.Buffer
	zstdWriter, err := zstd.NewWriter(&buf)
	require.NoError(t, err)
	tarWriter := tar.NewWriter(zstdWriter)
	require.NoError(t, addBytesToTar(tarWriter, "report_report-1.json", reportJSON))
	require.NoError(t, addBytesToTar(tarWriter, "manifest.json", manifestJSON))
	require.NoError(t, tarWriter.Close())
	require.NoError(t, zstdWriter.Close())

	_, err = Read(&buf)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "checksum mismatch")
}

func TestRead_MissingManifest(t *testing.T) {
	reportJSON, err := json.MarshalIndent(sampleReports()[0], "", "  ")
	require.NoError(t, err)

	var buf bytes.Buffer
	zstdWriter, err := zstd.NewWriter(&buf)
	require.NoError(t, err)
	tarWriter := tar.NewWriter(zstdWriter)
	require.NoError(t, addBytesToTar(tarWriter, "report_report-1.json", reportJSON))
	require.NoError(t, tarWriter.Close())
	require.NoError(t, zstdWriter.Close())

	_, err = Read(&buf)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "manifest.json")
}

func TestRead_CountMismatch(t *testing.T) {
	reportJSON, err := json.MarshalIndent(sampleReports()[0], "", "  ")
	require.NoError(t, err)
	manifest := Manifest{
		CreatedAt: time.Now().UTC(),
		Count:     3,
		Checksums: map[string]string{"report_report-1.json": fmt.Sprintf("%x", sha256.Sum256(reportJSON))},
	}
	manifestJSON, err := json.MarshalIndent(manifest, "", "  ")
	require.NoError(t, err)

	var buf bytes.Buffer
	zstdWriter, err := zstd.NewWriter(&buf)
	require.NoError(t, err)
	tarWriter := tar.NewWriter(zstdWriter)
	require.NoError(t, addBytesToTar(tarWriter, "report_report-1.json", reportJSON))
	require.NoError(t, addBytesToTar(tarWriter, "manifest.json", manifestJSON))
	require.NoError(t, tarWriter.Close())
	require.NoError(t, zstdWriter.Close())

	_, err = Read(&buf)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not match")
}

func TestRead_GarbageInput(t *testing.T) {
	_, err := Read(bytes.NewReader([]byte("not a zstd stream")))
	assert.Error(t, err)
}

func TestWriteRead_EmptyArchive(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, nil))

	restored, err := Read(&buf)
	require.NoError(t, err)
	assert.Empty(t, restored)
}

func TestWriteFileReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "reports.tar.zst")
	reports := sampleReports()

	require.NoError(t, WriteFile(path, reports))

	restored, err := ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, reports, restored)
}

func TestReadFile_Missing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "absent.tar.zst")

	_, err := ReadFile(path)

	require.Error(t, err)
	assert.Contains(t, err.Error(), path)
}
