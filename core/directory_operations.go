package core

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/wwsinagogogo/theia/filesystem"
	"github.com/wwsinagogogo/theia/uri"
)

// CreateFolder creates a directory and publishes a Create operation event.
func (s *Service) CreateFolder(ctx context.Context, resource uri.URI) (st *filesystem.FileStat, err error) {
	start := time.Now()
	defer func() { s.observe("mkdir", start, err) }()

	p, perr := s.providerFor(resource)
	if perr != nil {
		return nil, wrapProviderError(perr, resource, nil)
	}
	if p.Capabilities().Has(filesystem.CapReadonly) {
		return nil, newOperationError(ResultReadOnly, resource, nil, "provider is read-only")
	}

	if merr := p.Mkdir(ctx, resource); merr != nil {
		return nil, wrapProviderError(merr, resource, nil)
	}

	result, rerr := s.resolveWith(ctx, p, resource, ResolveOptions{ResolveMetadata: true})
	if rerr != nil {
		return nil, rerr
	}

	s.logger.Info("Folder created", zap.String("resource", resource.String()))
	s.emitOperation(OpCreate, resource, result)
	return result, nil
}

// Delete removes a resource and publishes a Delete operation event.
func (s *Service) Delete(ctx context.Context, resource uri.URI, opts DeleteOptions) (err error) {
	start := time.Now()
	defer func() { s.observe("delete", start, err) }()

	p, perr := s.providerFor(resource)
	if perr != nil {
		return wrapProviderError(perr, resource, opts)
	}
	if p.Capabilities().Has(filesystem.CapReadonly) {
		return newOperationError(ResultReadOnly, resource, opts, "provider is read-only")
	}
	if opts.UseTrash && !p.Capabilities().Has(filesystem.CapTrash) {
		return newOperationError(ResultOther, resource, opts,
			"provider does not support trash deletion")
	}
	// The configured default applies only where the provider can honor it;
	// an explicit request was already validated above.
	useTrash := opts.UseTrash ||
		(s.cfg.UseTrash && p.Capabilities().Has(filesystem.CapTrash))

	if derr := p.Delete(ctx, resource, filesystem.DeleteOptions{
		Recursive: opts.Recursive,
		UseTrash:  useTrash,
	}); derr != nil {
		return wrapProviderError(derr, resource, opts)
	}

	s.logger.Info("Resource deleted",
		zap.String("resource", resource.String()),
		zap.Bool("use_trash", useTrash))

	s.emitOperation(OpDelete, resource, nil)
	return nil
}

// Move renames a resource within one provider and publishes a Move
// operation event carrying the target metadata.
func (s *Service) Move(ctx context.Context, from, to uri.URI, opts MoveOptions) (st *filesystem.FileStat, err error) {
	start := time.Now()
	defer func() { s.observe("move", start, err) }()

	if from.Scheme() != to.Scheme() {
		return nil, newOperationError(ResultOther, from, opts,
			"cannot move across schemes %q and %q", from.Scheme(), to.Scheme())
	}
	p, perr := s.providerFor(from)
	if perr != nil {
		return nil, wrapProviderError(perr, from, opts)
	}
	if p.Capabilities().Has(filesystem.CapReadonly) {
		return nil, newOperationError(ResultReadOnly, from, opts, "provider is read-only")
	}

	if rerr := p.Rename(ctx, from, to, filesystem.RenameOptions{Overwrite: opts.Overwrite}); rerr != nil {
		return nil, wrapProviderError(rerr, to, opts)
	}

	result, serr := s.resolveWith(ctx, p, to, ResolveOptions{ResolveMetadata: true})
	if serr != nil {
		return nil, serr
	}

	s.logger.Info("Resource moved",
		zap.String("from", from.String()),
		zap.String("to", to.String()))

	s.emitOperation(OpMove, to, result)
	return result, nil
}

// Copy copies a file or folder and publishes a Copy operation event. When
// the provider advertises native folder copy it is used; otherwise the copy
// is emulated as recursive mkdir plus per-file read and write, never calling
// the ungated provider operation.
func (s *Service) Copy(ctx context.Context, from, to uri.URI, opts CopyOptions) (st *filesystem.FileStat, err error) {
	start := time.Now()
	defer func() { s.observe("copy", start, err) }()

	if from.Scheme() != to.Scheme() {
		return nil, newOperationError(ResultOther, from, opts,
			"cannot copy across schemes %q and %q", from.Scheme(), to.Scheme())
	}
	p, perr := s.providerFor(from)
	if perr != nil {
		return nil, wrapProviderError(perr, from, opts)
	}
	if p.Capabilities().Has(filesystem.CapReadonly) {
		return nil, newOperationError(ResultReadOnly, to, opts, "provider is read-only")
	}

	if fc, ok := filesystem.ToFolderCopy(p); ok {
		if cerr := fc.Copy(ctx, from, to, filesystem.CopyOptions{Overwrite: opts.Overwrite}); cerr != nil {
			return nil, wrapProviderError(cerr, to, opts)
		}
	} else {
		if cerr := s.emulateCopy(ctx, p, from, to, opts); cerr != nil {
			return nil, cerr
		}
	}

	result, serr := s.resolveWith(ctx, p, to, ResolveOptions{ResolveMetadata: true})
	if serr != nil {
		return nil, serr
	}

	s.logger.Info("Resource copied",
		zap.String("from", from.String()),
		zap.String("to", to.String()))

	s.emitOperation(OpCopy, to, result)
	return result, nil
}

// emulateCopy performs a caller-side recursive copy for providers without
// the folder-copy capability.
func (s *Service) emulateCopy(ctx context.Context, p filesystem.Provider, from, to uri.URI, opts CopyOptions) error {
	if _, serr := p.Stat(ctx, to); serr == nil {
		if !opts.Overwrite {
			return newOperationError(ResultMoveConflict, to, opts, "target already exists")
		}
	}

	stat, serr := p.Stat(ctx, from)
	if serr != nil {
		return wrapProviderError(serr, from, opts)
	}

	if !stat.Type.Has(filesystem.TypeDirectory) {
		content, rerr := s.readRaw(ctx, p, from, opts)
		if rerr != nil {
			return rerr
		}
		return s.writeRaw(ctx, p, to, content, true, opts)
	}

	if merr := p.Mkdir(ctx, to); merr != nil {
		if filesystem.CodeOf(merr) != filesystem.CodeFileExists || !opts.Overwrite {
			return wrapProviderError(merr, to, opts)
		}
	}
	entries, lerr := p.ReadDir(ctx, from)
	if lerr != nil {
		return wrapProviderError(lerr, from, opts)
	}
	for _, entry := range entries {
		if cerr := s.emulateCopy(ctx, p, from.Join(entry.Name), to.Join(entry.Name), opts); cerr != nil {
			return cerr
		}
	}
	return nil
}

// CopyAll runs a batch of copies. Each request is independent: one failure
// is recorded in its result and logged, and never aborts the remaining
// requests.
func (s *Service) CopyAll(ctx context.Context, requests []CopyRequest) []CopyResult {
	results := make([]CopyResult, 0, len(requests))
	for _, req := range requests {
		stat, err := s.Copy(ctx, req.From, req.To, CopyOptions{Overwrite: req.Overwrite})
		if err != nil {
			s.logger.Error("Copy failed",
				zap.String("from", req.From.String()),
				zap.String("to", req.To.String()),
				zap.String("result", Classify(err).String()),
				zap.Error(err))
		}
		results = append(results, CopyResult{Request: req, Stat: stat, Err: err})
	}
	return results
}
