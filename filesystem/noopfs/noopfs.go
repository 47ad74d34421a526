// Package noopfs provides a placeholder provider that advertises no
// capabilities and reports every operation as unavailable. It is used where
// a scheme is known but its backend is not configured or not yet activated.
package noopfs

import (
	"context"

	"github.com/wwsinagogogo/theia/filesystem"
	"github.com/wwsinagogogo/theia/uri"
)

// Provider always fails with CodeUnavailable.
type Provider struct {
	filesystem.ProviderBase
	scheme string
}

// New creates a placeholder provider for the given scheme.
func New(scheme string) *Provider {
	return &Provider{
		ProviderBase: filesystem.NewProviderBase(filesystem.CapNone),
		scheme:       scheme,
	}
}

func (p *Provider) unavailable(op string, resource uri.URI) error {
	return filesystem.NewError(filesystem.CodeUnavailable,
		"no backend registered for scheme %q: cannot %s %s", p.scheme, op, resource)
}

// Watch implements filesystem.Provider. Watching is accepted so callers can
// subscribe before the real backend is mounted; nothing is ever reported.
func (p *Provider) Watch(ctx context.Context, resource uri.URI, opts filesystem.WatchOptions) (filesystem.Disposable, error) {
	return filesystem.NopDisposable, nil
}

// Stat implements filesystem.Provider.
func (p *Provider) Stat(ctx context.Context, resource uri.URI) (filesystem.Stat, error) {
	return filesystem.Stat{}, p.unavailable("stat", resource)
}

// Mkdir implements filesystem.Provider.
func (p *Provider) Mkdir(ctx context.Context, resource uri.URI) error {
	return p.unavailable("create directory", resource)
}

// ReadDir implements filesystem.Provider.
func (p *Provider) ReadDir(ctx context.Context, resource uri.URI) ([]filesystem.DirEntry, error) {
	return nil, p.unavailable("list directory", resource)
}

// Delete implements filesystem.Provider.
func (p *Provider) Delete(ctx context.Context, resource uri.URI, opts filesystem.DeleteOptions) error {
	return p.unavailable("delete", resource)
}

// Rename implements filesystem.Provider.
func (p *Provider) Rename(ctx context.Context, from, to uri.URI, opts filesystem.RenameOptions) error {
	return p.unavailable("rename", from)
}
