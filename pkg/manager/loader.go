package manager

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"datalens-hq/saturn/pkg/srl/ast"
	"datalens-hq/saturn/pkg/srl/compiler"
	srlErrors "datalens-hq/saturn/pkg/srl/errors"
	"datalens-hq/saturn/pkg/srl/validator"
	"datalens-hq/saturn/pkg/telemetry/metrics"
)

// RuleLoader handles loading rule documents from the file system.
// It supports single files and directory structures, compiles each
// document, and runs reference validation before accepting a rule.
type RuleLoader struct {
	config    *LoaderConfig
	compiler  *compiler.Compiler
	validator *validator.ReferenceValidator
	logger    *slog.Logger
	metrics   *metrics.LoaderMetrics
}

// NewRuleLoader creates a new rule loader with the given configuration.
// The metrics parameter may be nil to disable instrumentation.
func NewRuleLoader(config *LoaderConfig, comp *compiler.Compiler, logger *slog.Logger, lm *metrics.LoaderMetrics) *RuleLoader {
	if config == nil {
		config = DefaultLoaderConfig()
	}
	if comp == nil {
		comp = compiler.New(compiler.WithMaxFileSize(config.MaxFileSize))
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &RuleLoader{
		config:    config,
		compiler:  comp,
		validator: validator.New(),
		logger:    logger,
		metrics:   lm,
	}
}

// LoadFromFile loads a single rule document from the given path.
// It performs file size validation, UTF-8 validation, compilation, and
// reference validation.
func (l *RuleLoader) LoadFromFile(path string) (*ast.Rule, error) {
	start := time.Now()

	rule, err := l.loadFile(path)
	if err != nil {
		if l.metrics != nil {
			l.metrics.RecordRejected(rejectionReason(err))
		}
		return nil, err
	}

	if l.metrics != nil {
		l.metrics.RecordLoaded(time.Since(start))
	}
	return rule, nil
}

func (l *RuleLoader) loadFile(path string) (*ast.Rule, error) {
	fileInfo, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &LoadError{FilePath: path, Message: "file not found", Cause: err}
		}
		if os.IsPermission(err) {
			return nil, &LoadError{FilePath: path, Message: "permission denied", Cause: err}
		}
		return nil, &LoadError{FilePath: path, Message: "failed to access file", Cause: err}
	}

	if !fileInfo.Mode().IsRegular() {
		return nil, &LoadError{FilePath: path, Message: "not a regular file"}
	}

	if fileInfo.Size() > l.config.MaxFileSize {
		return nil, &LoadError{
			FilePath: path,
			Message:  fmt.Sprintf("file size %d bytes exceeds maximum %d bytes", fileInfo.Size(), l.config.MaxFileSize),
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{FilePath: path, Message: "failed to read file", Cause: err}
	}

	if !utf8.Valid(data) {
		return nil, &LoadError{FilePath: path, Message: "file contains invalid UTF-8 encoding"}
	}

	rule, err := l.compiler.CompileBytes(data, path)
	if err != nil {
		return nil, &CompileError{FilePath: path, Cause: err}
	}

	if err := l.validator.Validate(rule); err != nil {
		return nil, &CompileError{FilePath: path, Cause: err}
	}

	return rule, nil
}

// LoadFromDirectory loads all rule documents from the given directory
// recursively. Documents are compiled concurrently by a bounded worker
// pool. It returns the successfully loaded rules sorted by source path,
// together with an ErrorList describing any rejected documents.
func (l *RuleLoader) LoadFromDirectory(dir string) ([]*ast.Rule, error) {
	fileInfo, err := os.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &LoadError{FilePath: dir, Message: "directory not found", Cause: err}
		}
		return nil, &LoadError{FilePath: dir, Message: "failed to access directory", Cause: err}
	}

	if !fileInfo.IsDir() {
		return nil, &LoadError{FilePath: dir, Message: "not a directory"}
	}

	ruleFiles, err := l.collectRuleFiles(dir)
	if err != nil {
		return nil, err
	}

	if len(ruleFiles) == 0 {
		return nil, &LoadError{FilePath: dir, Message: "no rule files found in directory"}
	}

	rules, errList := l.loadConcurrently(ruleFiles)

	for _, rejected := range errList.Errors {
		l.logger.Warn("Rule file rejected", "error", rejected)
	}

	// Return error if all files failed to load
	if len(rules) == 0 && errList.HasErrors() {
		return nil, errList
	}

	if errList.HasErrors() {
		return rules, errList
	}

	return rules, nil
}

// loadConcurrently compiles the given files with a bounded worker pool.
// Result order follows the input file order, not completion order.
func (l *RuleLoader) loadConcurrently(files []string) ([]*ast.Rule, *ErrorList) {
	workers := l.config.Workers
	if workers < 1 {
		workers = 1
	}
	if workers > len(files) {
		workers = len(files)
	}

	results := make([]*ast.Rule, len(files))
	failures := make([]error, len(files))

	var wg sync.WaitGroup
	jobs := make(chan int)

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				rule, err := l.LoadFromFile(files[i])
				if err != nil {
					failures[i] = err
					continue
				}
				results[i] = rule
			}
		}()
	}

	for i := range files {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	var rules []*ast.Rule
	errList := &ErrorList{}
	for i := range files {
		if failures[i] != nil {
			errList.Add(failures[i])
			continue
		}
		if results[i] != nil {
			rules = append(rules, results[i])
		}
	}

	return rules, errList
}

// collectRuleFiles collects all rule file paths in the given directory.
// It filters by extension and skips hidden files based on configuration.
func (l *RuleLoader) collectRuleFiles(dir string) ([]string, error) {
	var ruleFiles []string
	visited := make(map[string]bool)

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if l.config.SkipHidden && strings.HasPrefix(d.Name(), ".") && path != dir {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			return nil
		}

		if d.Type()&fs.ModeSymlink != 0 {
			if !l.config.FollowSymlinks {
				return nil
			}

			realPath, err := filepath.EvalSymlinks(path)
			if err != nil {
				return &LoadError{FilePath: path, Message: "failed to resolve symlink", Cause: err}
			}

			if visited[realPath] {
				return &LoadError{FilePath: path, Message: "symlink loop detected"}
			}
			visited[realPath] = true

			if !l.config.MatchesExtension(realPath) {
				return nil
			}

			ruleFiles = append(ruleFiles, path)
			return nil
		}

		if !l.config.MatchesExtension(path) {
			return nil
		}

		ruleFiles = append(ruleFiles, path)
		return nil
	})

	if err != nil {
		return nil, &LoadError{FilePath: dir, Message: "failed to walk directory", Cause: err}
	}

	sort.Strings(ruleFiles)
	return ruleFiles, nil
}

// rejectionReason maps a load failure to a bounded metrics label.
func rejectionReason(err error) string {
	var compileErr *CompileError
	if errors.As(err, &compileErr) {
		err = compileErr.Cause
	}

	var list *srlErrors.ErrorList
	if errors.As(err, &list) {
		for _, t := range []srlErrors.ErrorType{
			srlErrors.ErrorTypeSyntax,
			srlErrors.ErrorTypeIO,
			srlErrors.ErrorTypeStructural,
			srlErrors.ErrorTypeReference,
		} {
			if list.HasErrorType(t) {
				return string(t)
			}
		}
	}

	var single *srlErrors.Error
	if errors.As(err, &single) {
		return string(single.Type)
	}

	return string(srlErrors.ErrorTypeIO)
}
