// Package loader loads Sevens strategies at runtime from separately built
// modules: Go plugins (.so) and Lua scripts (.lua).
//
// A module exports a single factory, FactorySymbol, taking no arguments and
// returning a new strategy. The returned Handle owns both the strategy and
// the module; they are torn down together when the last owner releases it.
package loader

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/cartridge/sevens/internal/strategy"
)

// FactorySymbol is the name of the exported factory function.
const FactorySymbol = "NewStrategy"

// Factory is the signature FactorySymbol must have.
type Factory = func() strategy.Strategy

var (
	// ErrStrategyUnavailable matches every LoadError.
	ErrStrategyUnavailable = errors.New("strategy unavailable")

	ErrOpen        = errors.New("module cannot be opened")
	ErrSymbol      = errors.New("factory symbol not found")
	ErrNilInstance = errors.New("factory returned no strategy")
)

// LoadError describes a failed load. errors.Is matches both
// ErrStrategyUnavailable and the Kind sentinel.
type LoadError struct {
	Path string
	Kind error
	Err  error
}

func (e *LoadError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("load strategy %s: %v: %v", e.Path, e.Kind, e.Err)
	}
	return fmt.Sprintf("load strategy %s: %v", e.Path, e.Kind)
}

func (e *LoadError) Unwrap() []error {
	errs := []error{ErrStrategyUnavailable, e.Kind}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// Module is an opened unit of code that exports symbols.
type Module interface {
	Lookup(name string) (any, error)
	Close() error
}

// OpenFunc opens the module at path.
type OpenFunc func(path string) (Module, error)

// Provider turns a path into a loaded strategy.
type Provider interface {
	Load(path string) (*Handle, error)
}

// ModuleProvider loads strategies through an OpenFunc.
type ModuleProvider struct {
	open   OpenFunc
	logger zerolog.Logger
}

// NewModuleProvider creates a provider backed by open.
func NewModuleProvider(open OpenFunc, logger zerolog.Logger) *ModuleProvider {
	return &ModuleProvider{open: open, logger: logger}
}

// Load opens path, calls its factory and wraps the result in a Handle with
// one reference. On any failure the module is closed before returning.
func (p *ModuleProvider) Load(path string) (*Handle, error) {
	mod, err := p.open(path)
	if err != nil {
		return nil, &LoadError{Path: path, Kind: ErrOpen, Err: err}
	}

	sym, err := mod.Lookup(FactorySymbol)
	if err != nil {
		p.closeQuietly(path, mod)
		return nil, &LoadError{Path: path, Kind: ErrSymbol, Err: err}
	}
	factory, ok := asFactory(sym)
	if !ok {
		p.closeQuietly(path, mod)
		return nil, &LoadError{Path: path, Kind: ErrSymbol, Err: fmt.Errorf("%s has type %T", FactorySymbol, sym)}
	}

	s, err := callFactory(factory)
	if err != nil || s == nil {
		p.closeQuietly(path, mod)
		return nil, &LoadError{Path: path, Kind: ErrNilInstance, Err: err}
	}

	p.logger.Debug().Str("path", path).Str("strategy", s.Name()).Msg("strategy loaded")
	return newHandle(path, s, mod.Close), nil
}

func (p *ModuleProvider) closeQuietly(path string, mod Module) {
	if err := mod.Close(); err != nil {
		p.logger.Warn().Err(err).Str("path", path).Msg("closing module after failed load")
	}
}

func asFactory(sym any) (Factory, bool) {
	switch f := sym.(type) {
	case Factory:
		return f, f != nil
	case *Factory:
		if f == nil || *f == nil {
			return nil, false
		}
		return *f, true
	default:
		return nil, false
	}
}

// callFactory runs f, turning a panic into an error so a broken module
// cannot take the caller down with it.
func callFactory(f Factory) (s strategy.Strategy, err error) {
	defer func() {
		if r := recover(); r != nil {
			s, err = nil, fmt.Errorf("factory panicked: %v", r)
		}
	}()
	return f(), nil
}

// Loader picks a provider by file extension.
type Loader struct {
	providers map[string]Provider
}

// New returns a loader for ".so" Go plugins and ".lua" scripts.
func New(logger zerolog.Logger) *Loader {
	return &Loader{providers: map[string]Provider{
		".so":  NewModuleProvider(OpenPlugin, logger),
		".lua": NewModuleProvider(OpenLua, logger),
	}}
}

// Register adds or replaces the provider for ext (including the dot).
func (l *Loader) Register(ext string, p Provider) {
	l.providers[strings.ToLower(ext)] = p
}

// Load loads the strategy at path.
func (l *Loader) Load(path string) (*Handle, error) {
	ext := strings.ToLower(filepath.Ext(path))
	p, ok := l.providers[ext]
	if !ok {
		return nil, &LoadError{Path: path, Kind: ErrOpen, Err: fmt.Errorf("no provider for %q files", ext)}
	}
	return p.Load(path)
}
