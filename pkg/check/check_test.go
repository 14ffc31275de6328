// Copyright (C) 2026  distcheck authors
//
// SPDX-License-Identifier: Apache-2.0

package check_test

import (
	"archive/tar"
	"archive/zip"
	"bytes"
	"compress/gzip"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/datawire/dlib/dlog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pydist-tools/distcheck/pkg/check"
)

const (
	infoDir     = "spatialdata-0.1.2.dist-info"
	wheelInfo   = "Wheel-Version: 1.0\nGenerator: testfixture 1.0\nRoot-Is-Purelib: true\nTag: py3-none-any\n"
	goodMeta    = "Metadata-Version: 2.1\nName: spatialdata\nVersion: 0.1.2\nSummary: spatial omics\nDescription-Content-Type: text/markdown; variant=GFM\n\n# spatialdata\n"
	fixtureCode = "print('hello')\n"
)

func recordRow(name, content string) string {
	sum := sha256.Sum256([]byte(content))
	return fmt.Sprintf("%s,sha256=%s,%d",
		name, base64.RawURLEncoding.EncodeToString(sum[:]), len(content))
}

// writeWheel writes a wheel with the given METADATA to a temp dir and returns
// its path.  `tamper` (optional) may mutate the file map before it is zipped.
func writeWheel(t *testing.T, metadataTxt string, tamper func(map[string]string)) string {
	t.Helper()
	files := map[string]string{
		"spatialdata/__init__.py": fixtureCode,
		infoDir + "/WHEEL":        wheelInfo,
		infoDir + "/METADATA":     metadataTxt,
	}
	files[infoDir+"/RECORD"] = strings.Join([]string{
		recordRow("spatialdata/__init__.py", fixtureCode),
		recordRow(infoDir+"/WHEEL", wheelInfo),
		recordRow(infoDir+"/METADATA", metadataTxt),
		infoDir + "/RECORD,,",
		"",
	}, "\n")
	if tamper != nil {
		tamper(files)
	}

	var buf bytes.Buffer
	zipWriter := zip.NewWriter(&buf)
	for name, content := range files {
		fileWriter, err := zipWriter.Create(name)
		require.NoError(t, err)
		_, err = fileWriter.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, zipWriter.Close())

	filename := filepath.Join(t.TempDir(), "spatialdata-0.1.2-py3-none-any.whl")
	require.NoError(t, os.WriteFile(filename, buf.Bytes(), 0o644))
	return filename
}

func writeSdist(t *testing.T, pkgInfo string) string {
	t.Helper()
	var buf bytes.Buffer
	gzWriter := gzip.NewWriter(&buf)
	tarWriter := tar.NewWriter(gzWriter)
	for name, content := range map[string]string{
		"spatialdata-0.1.2/PKG-INFO": pkgInfo,
		"spatialdata-0.1.2/setup.py": "",
	} {
		require.NoError(t, tarWriter.WriteHeader(&tar.Header{
			Typeflag: tar.TypeReg,
			Name:     name,
			Mode:     0o644,
			Size:     int64(len(content)),
		}))
		_, err := tarWriter.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, tarWriter.Close())
	require.NoError(t, gzWriter.Close())

	filename := filepath.Join(t.TempDir(), "spatialdata-0.1.2.tar.gz")
	require.NoError(t, os.WriteFile(filename, buf.Bytes(), 0o644))
	return filename
}

func rules(report *check.Report) []string {
	var ret []string
	for _, finding := range report.Findings {
		ret = append(ret, finding.Rule)
	}
	return ret
}

func TestCheckWheelGood(t *testing.T) {
	t.Parallel()
	ctx := dlog.NewTestContext(t, false)

	var report check.Report
	require.NoError(t, check.CheckPath(ctx, writeWheel(t, goodMeta, nil), &report))
	assert.Empty(t, report.Findings)
	assert.Equal(t, 1, report.Checked)
	assert.True(t, report.Pass(true))
}

func TestCheckSdistGood(t *testing.T) {
	t.Parallel()
	ctx := dlog.NewTestContext(t, false)

	var report check.Report
	require.NoError(t, check.CheckPath(ctx, writeSdist(t, goodMeta), &report))
	assert.Empty(t, report.Findings)
}

func TestCheckUnknownType(t *testing.T) {
	t.Parallel()
	ctx := dlog.NewTestContext(t, false)

	var report check.Report
	require.NoError(t, check.CheckPath(ctx, "dist/spatialdata-0.1.2.zip", &report))
	assert.Equal(t, []string{"file-type"}, rules(&report))
	assert.False(t, report.Pass(false))
}

func TestCheckMetadata(t *testing.T) {
	t.Parallel()

	testcases := map[string]struct {
		metadata     string
		expectedRule string
		severity     check.Severity
	}{
		"unknown-metadata-version": {
			metadata:     "Metadata-Version: 3.7\nName: spatialdata\nVersion: 0.1.2\nSummary: s\nDescription-Content-Type: text/plain\n\nd\n",
			expectedRule: "metadata-version",
			severity:     check.SeverityError,
		},
		"missing-name": {
			metadata:     "Metadata-Version: 2.1\nVersion: 0.1.2\nSummary: s\nDescription-Content-Type: text/plain\n\nd\n",
			expectedRule: "name",
			severity:     check.SeverityError,
		},
		"name-mismatch": {
			metadata:     "Metadata-Version: 2.1\nName: otherproject\nVersion: 0.1.2\nSummary: s\nDescription-Content-Type: text/plain\n\nd\n",
			expectedRule: "name",
			severity:     check.SeverityError,
		},
		"version-mismatch": {
			metadata:     "Metadata-Version: 2.1\nName: spatialdata\nVersion: 0.1.3\nSummary: s\nDescription-Content-Type: text/plain\n\nd\n",
			expectedRule: "version",
			severity:     check.SeverityError,
		},
		"missing-description": {
			metadata:     "Metadata-Version: 2.1\nName: spatialdata\nVersion: 0.1.2\nSummary: s\n",
			expectedRule: "description",
			severity:     check.SeverityWarning,
		},
		"placeholder-description": {
			metadata:     "Metadata-Version: 2.1\nName: spatialdata\nVersion: 0.1.2\nSummary: s\nDescription-Content-Type: text/plain\n\nUNKNOWN\n",
			expectedRule: "description",
			severity:     check.SeverityError,
		},
		"bad-content-type": {
			metadata:     "Metadata-Version: 2.1\nName: spatialdata\nVersion: 0.1.2\nSummary: s\nDescription-Content-Type: application/pdf\n\nd\n",
			expectedRule: "description-content-type",
			severity:     check.SeverityError,
		},
		"bad-markdown-variant": {
			metadata:     "Metadata-Version: 2.1\nName: spatialdata\nVersion: 0.1.2\nSummary: s\nDescription-Content-Type: text/markdown; variant=Pandoc\n\nd\n",
			expectedRule: "description-content-type",
			severity:     check.SeverityError,
		},
		"missing-content-type": {
			metadata:     "Metadata-Version: 2.1\nName: spatialdata\nVersion: 0.1.2\nSummary: s\n\nd\n",
			expectedRule: "description-content-type",
			severity:     check.SeverityWarning,
		},
		"bad-requires-python": {
			metadata:     "Metadata-Version: 2.1\nName: spatialdata\nVersion: 0.1.2\nSummary: s\nRequires-Python: >=wrong\nDescription-Content-Type: text/plain\n\nd\n",
			expectedRule: "requires-python",
			severity:     check.SeverityError,
		},
	}
	for tcName, tc := range testcases {
		tc := tc
		t.Run(tcName, func(t *testing.T) {
			t.Parallel()
			ctx := dlog.NewTestContext(t, false)

			var report check.Report
			require.NoError(t, check.CheckPath(ctx, writeWheel(t, tc.metadata, nil), &report))
			require.Len(t, report.Findings, 1, "findings=%v", report.Findings)
			assert.Equal(t, tc.expectedRule, report.Findings[0].Rule)
			assert.Equal(t, tc.severity, report.Findings[0].Severity)
		})
	}
}

func TestCheckWheelRecord(t *testing.T) {
	t.Parallel()
	ctx := dlog.NewTestContext(t, false)

	filename := writeWheel(t, goodMeta, func(files map[string]string) {
		files["spatialdata/__init__.py"] = "print('tampered')\n"
	})
	var report check.Report
	require.NoError(t, check.CheckPath(ctx, filename, &report))
	assert.Equal(t, []string{"record"}, rules(&report))
}

func TestCheckWheelTagMismatch(t *testing.T) {
	t.Parallel()
	ctx := dlog.NewTestContext(t, false)

	filename := writeWheel(t, goodMeta, func(files map[string]string) {
		info := "Wheel-Version: 1.0\nRoot-Is-Purelib: false\nTag: cp39-cp39-manylinux1_x86_64\n"
		files[infoDir+"/WHEEL"] = info
		files[infoDir+"/RECORD"] = strings.Join([]string{
			recordRow("spatialdata/__init__.py", fixtureCode),
			recordRow(infoDir+"/WHEEL", info),
			recordRow(infoDir+"/METADATA", goodMeta),
			infoDir + "/RECORD,,",
			"",
		}, "\n")
	})
	var report check.Report
	require.NoError(t, check.CheckPath(ctx, filename, &report))
	assert.Equal(t, []string{"tag-mismatch"}, rules(&report))
}

func TestCheckSdistBadArchive(t *testing.T) {
	t.Parallel()
	ctx := dlog.NewTestContext(t, false)

	filename := filepath.Join(t.TempDir(), "spatialdata-0.1.2.tar.gz")
	require.NoError(t, os.WriteFile(filename, []byte("not a tarball"), 0o644))
	var report check.Report
	require.NoError(t, check.CheckPath(ctx, filename, &report))
	assert.Equal(t, []string{"archive"}, rules(&report))
}

func TestCheckMissingFile(t *testing.T) {
	t.Parallel()
	ctx := dlog.NewTestContext(t, false)

	var report check.Report
	err := check.CheckPath(ctx, filepath.Join(t.TempDir(), "nope-1.0-py3-none-any.whl"), &report)
	assert.Error(t, err)
}

func TestReportSort(t *testing.T) {
	t.Parallel()

	var report check.Report
	report.Warnf("b.whl", "description", "w")
	report.Errorf("b.whl", "version", "e")
	report.Errorf("a.whl", "name", "e")
	report.Sort()
	assert.Equal(t, []string{"name", "version", "description"}, rules(&report))
	assert.Equal(t, 2, report.Errors())
	assert.Equal(t, 1, report.Warnings())
	assert.True(t, report.Pass(false) == false)
}

func TestCheckWheelDistInfoMismatch(t *testing.T) {
	t.Parallel()
	ctx := dlog.NewTestContext(t, false)

	// METADATA agrees with the filename, but the .dist-info directory is
	// named for a different distribution and version.
	filename := writeWheel(t, goodMeta, func(files map[string]string) {
		wrongDir := "otherpkg-9.9.dist-info"
		for _, base := range []string{"WHEEL", "METADATA", "RECORD"} {
			files[wrongDir+"/"+base] = files[infoDir+"/"+base]
			delete(files, infoDir+"/"+base)
		}
		files[wrongDir+"/RECORD"] = strings.Join([]string{
			recordRow("spatialdata/__init__.py", fixtureCode),
			recordRow(wrongDir+"/WHEEL", wheelInfo),
			recordRow(wrongDir+"/METADATA", goodMeta),
			wrongDir + "/RECORD,,",
			"",
		}, "\n")
	})
	var report check.Report
	require.NoError(t, check.CheckPath(ctx, filename, &report))
	assert.Equal(t, []string{"dist-info", "dist-info"}, rules(&report))
}

func TestCheckWheelBadArchive(t *testing.T) {
	t.Parallel()
	ctx := dlog.NewTestContext(t, false)

	filename := filepath.Join(t.TempDir(), "spatialdata-0.1.2-py3-none-any.whl")
	require.NoError(t, os.WriteFile(filename, []byte("not a zip"), 0o644))
	var report check.Report
	require.NoError(t, check.CheckPath(ctx, filename, &report))
	assert.Equal(t, []string{"archive"}, rules(&report))
}
