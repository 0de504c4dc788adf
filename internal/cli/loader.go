package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/bindweave/bindweave/internal/source"
)

// Error codes for loading failures.
const (
	ErrCodeGeneric     = "E001" // Generic/unknown error
	ErrCodeScanError   = "E002" // Directory scan error
	ErrCodeNoFiles     = "E003" // No module documents found
	ErrCodeParseFailed = "E004" // YAML parse failed
	ErrCodeNotFound    = "E005" // Path not found
	ErrCodeWriteFailed = "E006" // Output file write error
	ErrCodeBadConfig   = "E007" // Config file invalid
)

// LoadError represents an error that occurred while loading module
// documents or configuration.
type LoadError struct {
	Code    string
	Message string
	File    string
}

func (e *LoadError) Error() string {
	if e.File != "" {
		return fmt.Sprintf("%s: %s: %s", e.File, e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// LoadResult contains the modules loaded from a directory.
type LoadResult struct {
	Modules   []source.Module
	FileCount int
}

// LoadModules reads every module document under dir. Each YAML file may
// hold one or more module documents; files are read in lexical order so
// repeated runs see the same declaration order.
func LoadModules(dir string) (*LoadResult, error) {
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("module directory not found: %s", dir)}
	}
	if err != nil {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("error accessing module directory: %v", err)}
	}
	if !info.IsDir() {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("not a directory: %s", dir)}
	}

	files, err := findModuleFiles(dir)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeScanError, Message: fmt.Sprintf("error scanning directory: %v", err)}
	}
	if len(files) == 0 {
		return nil, &LoadError{Code: ErrCodeNoFiles, Message: fmt.Sprintf("no module documents found in %s", dir)}
	}

	result := &LoadResult{FileCount: len(files)}
	for _, path := range files {
		modules, err := readModuleFile(path)
		if err != nil {
			return nil, err
		}
		result.Modules = append(result.Modules, modules...)
	}
	return result, nil
}

// findModuleFiles lists *.yaml and *.yml files directly under dir,
// sorted lexically.
func findModuleFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch filepath.Ext(e.Name()) {
		case ".yaml", ".yml":
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}

// readModuleFile decodes every YAML document in one file.
func readModuleFile(path string) ([]source.Module, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeNotFound, File: path, Message: err.Error()}
	}
	defer f.Close()

	var modules []source.Module
	dec := yaml.NewDecoder(f)
	for {
		var m source.Module
		err := dec.Decode(&m)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, &LoadError{Code: ErrCodeParseFailed, File: path, Message: err.Error()}
		}
		if m.Name == "" {
			return nil, &LoadError{Code: ErrCodeParseFailed, File: path, Message: "module document missing name"}
		}
		modules = append(modules, m)
	}
	return modules, nil
}
