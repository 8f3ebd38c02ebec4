package importer

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/shopspring/decimal"
)

// Format is a recognised CSV header layout. It decides whether a header set
// belongs to it and how a row's signed amount is resolved.
type Format interface {
	Name() string
	Detect(headers map[string]bool) bool
	Amount(fields map[string]string) (decimal.Decimal, error)
}

// aliaser is implemented by formats whose columns go by other names. Each
// alias copies its value to the canonical column when that one is absent.
type aliaser interface {
	Aliases() map[string]string
}

// Registry holds formats in detection order.
type Registry struct {
	formats []Format
}

// FileInfo describes a CSV file in the import directory.
type FileInfo struct {
	Name string
	Path string
	Size int64
}

// NewRegistry creates an empty format registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register appends a format. Panics on duplicate name.
func (r *Registry) Register(f Format) {
	key := strings.ToLower(f.Name())
	for _, existing := range r.formats {
		if strings.ToLower(existing.Name()) == key {
			panic("duplicate import format: " + key)
		}
	}
	r.formats = append(r.formats, f)
}

// Get returns the format registered under name, or nil.
func (r *Registry) Get(name string) Format {
	key := strings.ToLower(name)
	for _, f := range r.formats {
		if strings.ToLower(f.Name()) == key {
			return f
		}
	}
	return nil
}

// Detect returns the first format that accepts the headers, or nil.
func (r *Registry) Detect(headers []string) Format {
	set := make(map[string]bool, len(headers))
	for _, h := range headers {
		set[h] = true
	}
	for _, f := range r.formats {
		if f.Detect(set) {
			return f
		}
	}
	return nil
}

// DefaultRegistry returns a registry with the built-in formats. Standard is
// checked before bank so that a file carrying both amount and debit/credit
// columns is read by its amount column.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(StandardFormat{})
	r.Register(BankFormat{})
	r.Register(ChaseFormat{})
	return r
}

// importDir is the workspace subdirectory for pending CSVs.
const importDir = "import"

// processedDir is the subdirectory for imported CSVs.
const processedDir = "import/processed"

// Scan returns CSV files in <root>/import/.
func Scan(root string) ([]FileInfo, error) {
	dir := filepath.Join(root, importDir)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading import dir: %w", err)
	}

	var files []FileInfo
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(strings.ToLower(e.Name()), ".csv") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", e.Name(), err)
		}
		files = append(files, FileInfo{
			Name: e.Name(),
			Path: filepath.Join(dir, e.Name()),
			Size: info.Size(),
		})
	}
	return files, nil
}

// MarkProcessed moves a file from import/ to import/processed/.
func MarkProcessed(root, fileName string) error {
	dstDir := filepath.Join(root, processedDir)
	if err := os.MkdirAll(dstDir, 0o755); err != nil {
		return fmt.Errorf("creating processed dir: %w", err)
	}

	src := filepath.Join(root, importDir, fileName)
	if err := os.Rename(src, filepath.Join(dstDir, fileName)); err != nil {
		return fmt.Errorf("moving %s to processed: %w", fileName, err)
	}
	return nil
}
