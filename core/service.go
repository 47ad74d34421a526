package core

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/wwsinagogogo/theia/config"
	"github.com/wwsinagogogo/theia/filesystem"
	"github.com/wwsinagogogo/theia/internal/glob"
	"github.com/wwsinagogogo/theia/metrics"
	"github.com/wwsinagogogo/theia/uri"
)

// Service is the application-facing entry point to storage. It holds one
// provider per identifier scheme and is the sole mechanism through which the
// layers above touch backends. Change batches from all providers are merged
// into one service-wide stream; every completed mutating operation is
// published as a FileOperationEvent.
type Service struct {
	cfg    config.FilesConfig
	logger *zap.Logger

	mu        sync.RWMutex
	providers map[string]*registration

	changes    *filesystem.ChangeEmitter
	capsFeed   *filesystem.CapabilityEmitter
	operations *operationEmitter
	coalescer  *changeCoalescer
}

type registration struct {
	provider    filesystem.Provider
	changesDisp filesystem.Disposable
	capsDisp    filesystem.Disposable
}

// NewService creates a service with the given configuration. A nil logger
// disables logging.
func NewService(cfg config.FilesConfig, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Service{
		cfg:        cfg,
		logger:     logger,
		providers:  make(map[string]*registration),
		changes:    filesystem.NewChangeEmitter(),
		capsFeed:   filesystem.NewCapabilityEmitter(),
		operations: newOperationEmitter(),
	}
	s.coalescer = newChangeCoalescer(cfg.EventThrottle.EventsPerSecond, cfg.EventThrottle.Burst, s.deliver)
	return s
}

// RegisterProvider attaches a provider for a scheme and starts forwarding
// its change and capability streams. The returned Disposable unregisters the
// provider and stops forwarding.
func (s *Service) RegisterProvider(scheme string, p filesystem.Provider) (filesystem.Disposable, error) {
	s.mu.Lock()
	if _, exists := s.providers[scheme]; exists {
		s.mu.Unlock()
		return nil, fmt.Errorf("a provider for scheme %q is already registered", scheme)
	}

	changeCh, changesDisp := p.SubscribeChanges()
	capsCh, capsDisp := p.SubscribeCapabilities()
	s.providers[scheme] = &registration{provider: p, changesDisp: changesDisp, capsDisp: capsDisp}
	s.mu.Unlock()

	metrics.RegisteredProviders.Inc()
	s.logger.Info("Provider registered",
		zap.String("scheme", scheme),
		zap.String("capabilities", p.Capabilities().String()))

	go s.forwardChanges(changeCh)
	go s.forwardCapabilities(scheme, capsCh)

	return filesystem.DisposableFunc(func() {
		s.mu.Lock()
		reg, ok := s.providers[scheme]
		if ok {
			delete(s.providers, scheme)
		}
		s.mu.Unlock()
		if !ok {
			return
		}
		reg.changesDisp.Dispose()
		reg.capsDisp.Dispose()
		metrics.RegisteredProviders.Dec()
		s.logger.Info("Provider unregistered", zap.String("scheme", scheme))
	}), nil
}

// forwardChanges funnels one provider's raw batches into the service-wide
// stream, dropping records matched by the configured watcher excludes.
func (s *Service) forwardChanges(ch <-chan filesystem.FileChangesEvent) {
	for ev := range ch {
		var kept []filesystem.FileChange
		for _, c := range ev.Changes() {
			if glob.MatchAny(s.cfg.WatcherExcludes, c.Resource.Path()) {
				continue
			}
			kept = append(kept, c)
		}
		if len(kept) == 0 {
			continue
		}
		s.coalescer.add(filesystem.NewFileChangesEvent(kept))
	}
}

func (s *Service) forwardCapabilities(scheme string, ch <-chan filesystem.Capabilities) {
	for caps := range ch {
		s.logger.Info("Provider capabilities changed",
			zap.String("scheme", scheme),
			zap.String("capabilities", caps.String()))
		s.capsFeed.Emit(caps)
	}
}

// deliver is the coalescer sink: it publishes one merged batch to all
// service subscribers.
func (s *Service) deliver(ev filesystem.FileChangesEvent) {
	metrics.ChangeBatchesTotal.Inc()
	for _, c := range ev.Changes() {
		metrics.ChangeEventsTotal.WithLabelValues(c.Type.String()).Inc()
	}
	s.changes.Emit(ev)
}

// SubscribeChanges returns an independent cursor on the merged change
// stream of all registered providers.
func (s *Service) SubscribeChanges() (<-chan filesystem.FileChangesEvent, filesystem.Disposable) {
	return s.changes.Subscribe()
}

// SubscribeCapabilities returns a cursor on capability-change announcements
// from all registered providers.
func (s *Service) SubscribeCapabilities() (<-chan filesystem.Capabilities, filesystem.Disposable) {
	return s.capsFeed.Subscribe()
}

// SubscribeOperations returns a cursor on completed high-level operations.
func (s *Service) SubscribeOperations() (<-chan FileOperationEvent, filesystem.Disposable) {
	return s.operations.subscribe()
}

// CanHandle reports whether a provider is registered for the resource's
// scheme.
func (s *Service) CanHandle(resource uri.URI) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.providers[resource.Scheme()]
	return ok
}

// providerFor resolves the provider serving a resource.
func (s *Service) providerFor(resource uri.URI) (filesystem.Provider, error) {
	s.mu.RLock()
	reg, ok := s.providers[resource.Scheme()]
	s.mu.RUnlock()
	if !ok {
		return nil, filesystem.NewError(filesystem.CodeUnavailable,
			"no provider registered for scheme %q", resource.Scheme())
	}
	return reg.provider, nil
}

// Watch registers interest in changes under resource, merging the configured
// watcher excludes into the registration.
func (s *Service) Watch(ctx context.Context, resource uri.URI, opts filesystem.WatchOptions) (filesystem.Disposable, error) {
	p, err := s.providerFor(resource)
	if err != nil {
		return nil, wrapProviderError(err, resource, opts)
	}

	merged := opts
	merged.Excludes = append(append([]string(nil), opts.Excludes...), s.cfg.WatcherExcludes...)

	handle, err := p.Watch(ctx, resource, merged)
	if err != nil {
		return nil, wrapProviderError(err, resource, opts)
	}

	metrics.WatchSubscriptions.Inc()
	s.logger.Debug("Watch registered",
		zap.String("resource", resource.String()),
		zap.Bool("recursive", opts.Recursive))

	return filesystem.DisposableFunc(func() {
		handle.Dispose()
		metrics.WatchSubscriptions.Dec()
	}), nil
}

// emitOperation publishes a completed operation, tolerating only valid
// combinations by construction.
func (s *Service) emitOperation(op FileOperation, resource uri.URI, target *filesystem.FileStat) {
	ev, err := NewFileOperationEvent(op, resource, target)
	if err != nil {
		s.logger.Error("Dropping malformed operation event", zap.Error(err))
		return
	}
	s.operations.emit(ev)
}

// observe records duration and outcome metrics for one operation.
func (s *Service) observe(op string, start time.Time, err error) {
	metrics.FileOperationDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	result := "ok"
	if err != nil {
		result = Classify(err).String()
	}
	metrics.FileOperationsTotal.WithLabelValues(op, result).Inc()
}
