package files

import (
	"archive/zip"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode"

	"github.com/farxc/despesas-dw/internal/logger"
	"github.com/farxc/despesas-dw/internal/transparency/types"
	"golang.org/x/text/encoding/charmap"
)

type ExtractionResult struct {
	Success        bool
	OutputDir      string
	ExtractedFiles []string
}

// Table is one decoded tabular file: its header and every well-formed row.
type Table struct {
	Path        string
	Header      []string
	Rows        [][]string
	SkippedRows int
}

// CanonicalFileName derives the extracted table name for an archive: the
// digits of its base name (without extension) followed by the fixed suffix.
func CanonicalFileName(archiveName string) string {
	base := filepath.Base(archiveName)
	base = strings.TrimSuffix(base, filepath.Ext(base))

	var digits strings.Builder
	for _, r := range base {
		if unicode.IsDigit(r) {
			digits.WriteRune(r)
		}
	}
	return digits.String() + types.ExtractedFileSuffix
}

func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func UnzipFile(zipPath string, destDir string, appLogger *logger.Logger) ExtractionResult {
	const component = "Unzipper"

	appLogger.Debug(component, "Starting extraction: zipPath=%s destDir=%s", zipPath, destDir)

	err := os.MkdirAll(destDir, os.ModePerm)
	if err != nil {
		appLogger.Error(component, "Failed to create directory: destDir=%s error=%v", destDir, err)
		return ExtractionResult{Success: false}
	}

	r, err := zip.OpenReader(zipPath)
	if err != nil {
		appLogger.Error(component, "Failed to open zip file: zipPath=%s error=%v", zipPath, err)
		return ExtractionResult{Success: false}
	}
	defer r.Close()

	var extracted []string
	for _, f := range r.File {
		filePath := filepath.Join(destDir, f.Name)

		if !insideDir(destDir, filePath) {
			appLogger.Error(component, "Invalid file path detected (possible zip slip): file=%s", f.Name)
			return ExtractionResult{Success: false}
		}

		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(filePath, os.ModePerm); err != nil {
				appLogger.Error(component, "Failed to create directory: dir=%s error=%v", filePath, err)
				return ExtractionResult{Success: false}
			}
			continue
		}

		if err := extractEntry(f, filePath); err != nil {
			appLogger.Error(component, "Failed to extract file: file=%s error=%v", f.Name, err)
			return ExtractionResult{Success: false}
		}
		extracted = append(extracted, filePath)
	}

	appLogger.Info(component, "Extraction completed: destDir=%s extractedFiles=%d", destDir, len(extracted))
	return ExtractionResult{Success: true, OutputDir: destDir, ExtractedFiles: extracted}
}

func insideDir(dir, path string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(os.PathSeparator))
}

func extractEntry(f *zip.File, filePath string) error {
	if err := os.MkdirAll(filepath.Dir(filePath), os.ModePerm); err != nil {
		return err
	}

	destFile, err := os.OpenFile(filePath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer destFile.Close()

	zippedFile, err := f.Open()
	if err != nil {
		return err
	}
	defer zippedFile.Close()

	_, err = io.Copy(destFile, zippedFile)
	return err
}

// ListTables returns the extracted .csv files of dir sorted by name.
func ListTables(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read dir %s: %w", dir, err)
	}

	var paths []string
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".csv") {
			continue
		}
		paths = append(paths, filepath.Join(dir, e.Name()))
	}
	sort.Strings(paths)
	return paths, nil
}

// OpenFileAndDecode reads an ISO-8859-1, semicolon-delimited table. Lines
// whose field count differs from the header, or whose quoting cannot be
// parsed, are counted in SkippedRows and dropped.
func OpenFileAndDecode(path string) (Table, error) {
	file, err := os.Open(path)
	if err != nil {
		return Table{}, fmt.Errorf("failed to open file %s: %w", path, err)
	}
	defer file.Close()

	decoded := charmap.ISO8859_1.NewDecoder().Reader(file)
	reader := csv.NewReader(decoded)
	reader.Comma = ';'
	reader.LazyQuotes = true
	reader.ReuseRecord = false

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return Table{}, fmt.Errorf("file %s has no header", path)
		}
		return Table{}, fmt.Errorf("failed to read header of %s: %w", path, err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	table := Table{Path: path, Header: header}
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		var parseErr *csv.ParseError
		if errors.As(err, &parseErr) {
			table.SkippedRows++
			continue
		}
		if err != nil {
			return Table{}, fmt.Errorf("failed to read %s: %w", path, err)
		}
		table.Rows = append(table.Rows, record)
	}

	return table, nil
}
