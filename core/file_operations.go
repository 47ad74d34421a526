package core

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/wwsinagogogo/theia/filesystem"
	"github.com/wwsinagogogo/theia/uri"
)

// chunkSize is the buffer size for handle-based reads and writes.
const chunkSize = 64 * 1024

// Resolve returns the metadata snapshot for resource. With
// opts.ResolveChildren set, directory children are listed; with
// opts.ResolveMetadata set, mtime, ctime, size and etag are guaranteed on
// every returned entry.
func (s *Service) Resolve(ctx context.Context, resource uri.URI, opts ResolveOptions) (st *filesystem.FileStat, err error) {
	start := time.Now()
	defer func() { s.observe("resolve", start, err) }()

	p, perr := s.providerFor(resource)
	if perr != nil {
		return nil, wrapProviderError(perr, resource, opts)
	}
	return s.resolveWith(ctx, p, resource, opts)
}

func (s *Service) resolveWith(ctx context.Context, p filesystem.Provider, resource uri.URI, opts ResolveOptions) (*filesystem.FileStat, error) {
	stat, err := p.Stat(ctx, resource)
	if err != nil {
		return nil, wrapProviderError(err, resource, opts)
	}

	fs := filesystem.NewFileStat(resource, stat, opts.ResolveMetadata)
	if !opts.ResolveChildren || !fs.IsDirectory {
		return fs, nil
	}

	entries, err := p.ReadDir(ctx, resource)
	if err != nil {
		return nil, wrapProviderError(err, resource, opts)
	}
	for _, entry := range entries {
		child := resource.Join(entry.Name)
		if opts.ResolveMetadata {
			childStat, err := p.Stat(ctx, child)
			if err != nil {
				// The entry disappeared between list and stat; skip it.
				s.logger.Debug("Skipping vanished directory entry",
					zap.String("resource", child.String()), zap.Error(err))
				continue
			}
			fs.Children = append(fs.Children, filesystem.NewFileStat(child, childStat, true))
			continue
		}
		fs.Children = append(fs.Children, &filesystem.FileStat{
			Resource:       child,
			Name:           entry.Name,
			IsFile:         entry.Type.Has(filesystem.TypeFile),
			IsDirectory:    entry.Type.Has(filesystem.TypeDirectory),
			IsSymbolicLink: entry.Type.Has(filesystem.TypeSymbolicLink),
		})
	}
	return fs, nil
}

// ReadFile reads the full content of resource. The read is served by the
// whole-file capability when advertised, falling back to chunked
// handle-based reads otherwise.
func (s *Service) ReadFile(ctx context.Context, resource uri.URI, opts ReadFileOptions) (fc *FileContent, err error) {
	start := time.Now()
	defer func() { s.observe("read", start, err) }()

	p, perr := s.providerFor(resource)
	if perr != nil {
		return nil, wrapProviderError(perr, resource, opts)
	}

	stat, serr := p.Stat(ctx, resource)
	if serr != nil {
		return nil, wrapProviderError(serr, resource, opts)
	}
	if stat.Type.Has(filesystem.TypeDirectory) {
		return nil, newOperationError(ResultIsDirectory, resource, opts, "cannot read a directory")
	}
	if s.cfg.MaxFileSize > 0 && stat.Size > s.cfg.MaxFileSize {
		return nil, newOperationError(ResultTooLarge, resource, opts,
			"size %d exceeds the %d byte file size limit", stat.Size, s.cfg.MaxFileSize)
	}
	if s.cfg.MaxReadMemory > 0 && stat.Size > s.cfg.MaxReadMemory {
		return nil, newOperationError(ResultExceedsMemoryLimit, resource, opts,
			"size %d exceeds the %d byte memory limit", stat.Size, s.cfg.MaxReadMemory)
	}

	etag := filesystem.ETag(stat.MTime, stat.Size)
	if opts.ETag != "" && opts.ETag != filesystem.ETagDisabled && etag != "" && opts.ETag == etag {
		return nil, newOperationError(ResultNotModifiedSince, resource, opts,
			"content unchanged since fingerprint %s", opts.ETag)
	}

	content, rerr := s.readRaw(ctx, p, resource, opts)
	if rerr != nil {
		return nil, rerr
	}

	s.logger.Debug("File read",
		zap.String("resource", resource.String()),
		zap.Int("size", len(content)))

	return &FileContent{
		Resource: resource,
		Value:    content,
		MTime:    stat.MTime,
		Size:     stat.Size,
		ETag:     etag,
	}, nil
}

// readRaw dispatches a read over the provider's advertised capabilities.
func (s *Service) readRaw(ctx context.Context, p filesystem.Provider, resource uri.URI, opts any) ([]byte, error) {
	if rw, ok := filesystem.ToFileReadWrite(p); ok {
		content, err := rw.ReadFile(ctx, resource)
		if err != nil {
			return nil, wrapProviderError(err, resource, opts)
		}
		return content, nil
	}

	orwc, ok := filesystem.ToOpenReadWriteClose(p)
	if !ok {
		return nil, newOperationError(ResultOther, resource, opts,
			"provider advertises no read capability")
	}

	fd, err := orwc.Open(ctx, resource, filesystem.OpenOptions{})
	if err != nil {
		return nil, wrapProviderError(err, resource, opts)
	}
	defer func() {
		if cerr := orwc.Close(ctx, fd); cerr != nil {
			s.logger.Error("Failed to close file handle",
				zap.String("resource", resource.String()), zap.Error(cerr))
		}
	}()

	var content []byte
	buf := make([]byte, chunkSize)
	var pos int64
	for {
		n, err := orwc.Read(ctx, fd, pos, buf)
		if err != nil {
			return nil, wrapProviderError(err, resource, opts)
		}
		if n == 0 {
			return content, nil
		}
		content = append(content, buf[:n]...)
		pos += int64(n)
		if s.cfg.MaxReadMemory > 0 && int64(len(content)) > s.cfg.MaxReadMemory {
			return nil, newOperationError(ResultExceedsMemoryLimit, resource, opts,
				"buffered read exceeds the %d byte memory limit", s.cfg.MaxReadMemory)
		}
	}
}

// WriteFile replaces the content of resource, creating it when opts.Create
// is set. With opts.ETag set, a concurrent modification is detected before
// writing and surfaces as ResultModifiedSince.
func (s *Service) WriteFile(ctx context.Context, resource uri.URI, content []byte, opts WriteOptions) (st *filesystem.FileStat, err error) {
	start := time.Now()
	defer func() { s.observe("write", start, err) }()

	p, perr := s.providerFor(resource)
	if perr != nil {
		return nil, wrapProviderError(perr, resource, opts)
	}
	if p.Capabilities().Has(filesystem.CapReadonly) {
		return nil, newOperationError(ResultReadOnly, resource, opts, "provider is read-only")
	}
	if s.cfg.MaxFileSize > 0 && int64(len(content)) > s.cfg.MaxFileSize {
		return nil, newOperationError(ResultTooLarge, resource, opts,
			"content of %d bytes exceeds the %d byte file size limit", len(content), s.cfg.MaxFileSize)
	}

	exists := true
	stat, serr := p.Stat(ctx, resource)
	if serr != nil {
		if filesystem.CodeOf(serr) != filesystem.CodeFileNotFound {
			return nil, wrapProviderError(serr, resource, opts)
		}
		exists = false
	}

	switch {
	case !exists && !opts.Create:
		return nil, newOperationError(ResultNotFound, resource, opts, "file does not exist")
	case exists && stat.Type.Has(filesystem.TypeDirectory):
		return nil, newOperationError(ResultIsDirectory, resource, opts, "cannot write a directory")
	case exists && opts.ETag != "" && opts.ETag != filesystem.ETagDisabled:
		if current := filesystem.ETag(stat.MTime, stat.Size); current != "" && current != opts.ETag {
			return nil, newOperationError(ResultModifiedSince, resource, opts,
				"content changed since fingerprint %s", opts.ETag)
		}
	}

	if werr := s.writeRaw(ctx, p, resource, content, !exists, opts); werr != nil {
		return nil, werr
	}

	result, rerr := s.resolveWith(ctx, p, resource, ResolveOptions{ResolveMetadata: true})
	if rerr != nil {
		return nil, rerr
	}

	s.logger.Debug("File written",
		zap.String("resource", resource.String()),
		zap.Int("size", len(content)),
		zap.Bool("created", !exists))

	if !exists {
		s.emitOperation(OpCreate, resource, result)
	}
	return result, nil
}

// writeRaw dispatches a write over the provider's advertised capabilities.
func (s *Service) writeRaw(ctx context.Context, p filesystem.Provider, resource uri.URI, content []byte, create bool, opts any) error {
	if rw, ok := filesystem.ToFileReadWrite(p); ok {
		err := rw.WriteFile(ctx, resource, content, filesystem.WriteFileOptions{
			Create:    create,
			Overwrite: true,
		})
		if err != nil {
			return wrapProviderError(err, resource, opts)
		}
		return nil
	}

	orwc, ok := filesystem.ToOpenReadWriteClose(p)
	if !ok {
		return newOperationError(ResultOther, resource, opts,
			"provider advertises no write capability")
	}

	fd, err := orwc.Open(ctx, resource, filesystem.OpenOptions{Create: create})
	if err != nil {
		return wrapProviderError(err, resource, opts)
	}
	defer func() {
		if cerr := orwc.Close(ctx, fd); cerr != nil {
			s.logger.Error("Failed to close file handle",
				zap.String("resource", resource.String()), zap.Error(cerr))
		}
	}()

	var pos int64
	for pos < int64(len(content)) {
		end := pos + chunkSize
		if end > int64(len(content)) {
			end = int64(len(content))
		}
		n, err := orwc.Write(ctx, fd, pos, content[pos:end])
		if err != nil {
			return wrapProviderError(err, resource, opts)
		}
		pos += int64(n)
	}
	return nil
}

// CreateFile creates resource with the given content and publishes a Create
// operation event.
func (s *Service) CreateFile(ctx context.Context, resource uri.URI, content []byte, opts CreateOptions) (st *filesystem.FileStat, err error) {
	start := time.Now()
	defer func() { s.observe("create", start, err) }()

	p, perr := s.providerFor(resource)
	if perr != nil {
		return nil, wrapProviderError(perr, resource, opts)
	}
	if p.Capabilities().Has(filesystem.CapReadonly) {
		return nil, newOperationError(ResultReadOnly, resource, opts, "provider is read-only")
	}

	if !opts.Overwrite {
		if _, serr := p.Stat(ctx, resource); serr == nil {
			return nil, newOperationError(ResultMoveConflict, resource, opts, "file already exists")
		}
	}

	if werr := s.writeRaw(ctx, p, resource, content, true, opts); werr != nil {
		return nil, werr
	}

	result, rerr := s.resolveWith(ctx, p, resource, ResolveOptions{ResolveMetadata: true})
	if rerr != nil {
		return nil, rerr
	}

	s.logger.Info("File created",
		zap.String("resource", resource.String()),
		zap.Int("size", len(content)))

	s.emitOperation(OpCreate, resource, result)
	return result, nil
}
