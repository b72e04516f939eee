package catalog

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/load"

	"github.com/roach88/ormlite/internal/schema"
)

// LoadMode controls how errors are handled during catalog loading.
type LoadMode int

const (
	// LoadModeFailFast stops on the first error encountered.
	LoadModeFailFast LoadMode = iota
	// LoadModeCollectAll collects all errors before returning.
	LoadModeCollectAll
)

// Catalog is a set of declared shapes, kept in declaration order.
type Catalog struct {
	Shapes    []*schema.Shape
	FileCount int

	byName map[string]*schema.Shape
}

// Shape returns the shape called name.
func (c *Catalog) Shape(name string) (*schema.Shape, bool) {
	s, ok := c.byName[name]
	return s, ok
}

// Names returns the shape names, sorted.
func (c *Catalog) Names() []string {
	names := make([]string, 0, len(c.Shapes))
	for _, s := range c.Shapes {
		names = append(names, s.Name)
	}
	sort.Strings(names)
	return names
}

// Labels are unique within a CUE struct, so names never collide.
func (c *Catalog) add(s *schema.Shape) {
	if c.byName == nil {
		c.byName = make(map[string]*schema.Shape)
	}
	c.byName[s.Name] = s
	c.Shapes = append(c.Shapes, s)
}

// Load reads every .cue file in dir as one CUE package and compiles the
// shapes it declares.
func Load(dir string, mode LoadMode) (*Catalog, []error) {
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("catalog directory not found: %s", dir)}}
	}
	if err != nil {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("error accessing catalog directory: %v", err)}}
	}
	if !info.IsDir() {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("not a directory: %s", dir)}}
	}

	files, err := FindCUEFiles(dir)
	if err != nil {
		return nil, []error{&LoadError{Code: ErrCodeScanError, Message: fmt.Sprintf("error scanning directory: %v", err)}}
	}
	if len(files) == 0 {
		return nil, []error{&LoadError{Code: ErrCodeNoFiles, Message: fmt.Sprintf("no CUE files found in %s", dir)}}
	}

	ctx := cuecontext.New()
	instances := load.Instances([]string{"."}, &load.Config{Dir: dir})
	if len(instances) == 0 {
		return nil, []error{&LoadError{Code: ErrCodeLoadFailed, Message: "no CUE instances loaded"}}
	}
	inst := instances[0]
	if inst.Err != nil {
		return nil, []error{&LoadError{Code: ErrCodeLoadFailed, Message: fmt.Sprintf("loading CUE files: %v", inst.Err)}}
	}

	value := ctx.BuildInstance(inst)
	if err := value.Err(); err != nil {
		return nil, []error{&LoadError{Code: ErrCodeBuildFailed, Message: fmt.Sprintf("building CUE value: %v", err)}}
	}

	cat, errs := compileValue(value, mode)
	if cat != nil {
		cat.FileCount = len(files)
	}
	return cat, errs
}

// LoadDirs loads each directory with Load and merges the results into one
// catalog. A shape declared in two directories is an ErrCodeShape error.
func LoadDirs(dirs []string, mode LoadMode) (*Catalog, []error) {
	merged := &Catalog{}
	var errs []error
	for _, dir := range dirs {
		cat, loadErrs := Load(dir, mode)
		errs = append(errs, loadErrs...)
		if len(loadErrs) > 0 && mode == LoadModeFailFast {
			return nil, errs
		}
		if cat == nil {
			continue
		}
		merged.FileCount += cat.FileCount
		for _, s := range cat.Shapes {
			if _, dup := merged.Shape(s.Name); dup {
				errs = append(errs, &LoadError{
					Code:    ErrCodeShape,
					Message: fmt.Sprintf("shape %s is declared in more than one catalog (again in %s)", s.Name, dir),
				})
				if mode == LoadModeFailFast {
					return nil, errs
				}
				continue
			}
			merged.add(s)
		}
	}
	return merged, errs
}

// CompileString compiles CUE source text into a catalog.
func CompileString(src string) (*Catalog, error) {
	value := cuecontext.New().CompileString(src)
	if err := value.Err(); err != nil {
		return nil, formatCUEError(err)
	}
	cat, errs := compileValue(value, LoadModeFailFast)
	if len(errs) > 0 {
		return nil, errs[0]
	}
	return cat, nil
}

func compileValue(value cue.Value, mode LoadMode) (*Catalog, []error) {
	var errs []error
	cat := &Catalog{}

	shapesVal := value.LookupPath(cue.ParsePath("shape"))
	if !shapesVal.Exists() {
		return cat, []error{&LoadError{Code: ErrCodeGeneric, Message: "no shapes found in catalog"}}
	}
	iter, err := shapesVal.Fields()
	if err != nil {
		return cat, []error{&LoadError{Code: ErrCodeGeneric, Message: fmt.Sprintf("iterating shapes: %v", err)}}
	}

	for iter.Next() {
		shape, err := CompileShape(iter.Value())
		if err != nil {
			errs = append(errs, convertCompileError(err, "shape."+iter.Label()))
			if mode == LoadModeFailFast {
				return cat, errs
			}
			continue
		}
		cat.add(shape)
	}

	if len(cat.Shapes) == 0 && len(errs) == 0 {
		errs = append(errs, &LoadError{Code: ErrCodeGeneric, Message: "no shapes found in catalog"})
	}
	return cat, errs
}

// FindCUEFiles walks the directory and returns all .cue file paths.
func FindCUEFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && filepath.Ext(path) == ".cue" {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}

// convertCompileError converts a compile error to a LoadError with position info.
func convertCompileError(err error, context string) error {
	var ce *CompileError
	if errors.As(err, &ce) {
		return &LoadError{
			Code:    codeFor(ce.Field),
			Message: fmt.Sprintf("%s: %s", context, ce.Message),
			Pos:     ce.Pos,
		}
	}
	return &LoadError{
		Code:    ErrCodeGeneric,
		Message: fmt.Sprintf("%s: %v", context, err),
	}
}
