//go:build (linux || darwin || freebsd) && cgo

package loader

import (
	"errors"
	"plugin"
)

var errPluginClosed = errors.New("plugin already closed")

// goPlugin adapts a Go plugin to Module. The Go runtime cannot unload a
// plugin, so Close only drops the reference.
type goPlugin struct {
	p *plugin.Plugin
}

func (g *goPlugin) Lookup(name string) (any, error) {
	if g.p == nil {
		return nil, errPluginClosed
	}
	return g.p.Lookup(name)
}

func (g *goPlugin) Close() error {
	g.p = nil
	return nil
}

// OpenPlugin opens a Go plugin built with -buildmode=plugin.
func OpenPlugin(path string) (Module, error) {
	p, err := plugin.Open(path)
	if err != nil {
		return nil, err
	}
	return &goPlugin{p: p}, nil
}
