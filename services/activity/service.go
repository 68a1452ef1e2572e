package activity

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/upb/schoolms-api/internal/observability"
	"github.com/upb/schoolms-api/models"
	"github.com/upb/schoolms-api/repositories"
	"github.com/upb/schoolms-api/services"
)

var (
	// ErrNotStarted is returned when recording before Start or after Stop
	ErrNotStarted = errors.New("activity service not running")

	// ErrBufferFull is returned when an entry is dropped
	ErrBufferFull = errors.New("activity buffer full")
)

// Service persists activity entries asynchronously through a bounded worker pool.
// Recording never blocks the request path; entries are dropped when the buffer is full.
type Service struct {
	repo        repositories.ActivityLogRepository
	metrics     *observability.Metrics
	logger      *zap.Logger
	entries     chan *models.ActivityLog
	workerCount int
	bufferSize  int
	wg          sync.WaitGroup
	mu          sync.RWMutex
	running     bool
	stopped     bool
}

// Config holds configuration for the Service
type Config struct {
	BufferSize  int // Size of the entry buffer channel
	WorkerCount int // Number of concurrent workers
}

// DefaultConfig returns the default configuration
func DefaultConfig() Config {
	return Config{
		BufferSize:  1000,
		WorkerCount: 2,
	}
}

// NewService creates a new activity Service
func NewService(repo repositories.ActivityLogRepository, metrics *observability.Metrics, logger *zap.Logger, config Config) *Service {
	if config.BufferSize <= 0 {
		config.BufferSize = DefaultConfig().BufferSize
	}
	if config.WorkerCount <= 0 {
		config.WorkerCount = DefaultConfig().WorkerCount
	}
	return &Service{
		repo:        repo,
		metrics:     metrics,
		logger:      logger,
		entries:     make(chan *models.ActivityLog, config.BufferSize),
		workerCount: config.WorkerCount,
		bufferSize:  config.BufferSize,
	}
}

// Start starts the background workers
func (s *Service) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running || s.stopped {
		return fmt.Errorf("activity service already started")
	}

	for i := 0; i < s.workerCount; i++ {
		s.wg.Add(1)
		go s.worker(i)
	}

	s.running = true
	s.logger.Info("started activity service",
		zap.Int("worker_count", s.workerCount),
		zap.Int("buffer_size", s.bufferSize))

	return nil
}

// Stop stops accepting entries and waits up to timeout for the buffer to drain
func (s *Service) Stop(timeout time.Duration) error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return ErrNotStarted
	}
	s.running = false
	s.stopped = true
	close(s.entries)
	s.mu.Unlock()

	s.logger.Info("stopping activity service", zap.Int("pending_entries", len(s.entries)))

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("activity service stopped gracefully")
		return nil
	case <-time.After(timeout):
		return fmt.Errorf("activity service stop timeout after %v", timeout)
	}
}

// Record queues an entry without blocking
func (s *Service) Record(entry *models.ActivityLog) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.running {
		return ErrNotStarted
	}

	select {
	case s.entries <- entry:
		return nil
	default:
		s.metrics.RecordActivityDropped()
		s.logger.Warn("activity buffer full, dropping entry",
			zap.String("action", string(entry.Action)),
			zap.String("entity_type", entry.EntityType))
		return ErrBufferFull
	}
}

func (s *Service) worker(id int) {
	defer s.wg.Done()

	for entry := range s.entries {
		err := s.persist(entry)
		s.metrics.RecordActivityProcessed(err == nil)
		if err != nil {
			s.logger.Error("failed to persist activity entry",
				zap.Int("worker_id", id),
				zap.Error(err),
				zap.String("action", string(entry.Action)))
		}
	}
}

func (s *Service) persist(entry *models.ActivityLog) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.repo.Insert(ctx, entry); err != nil {
		return fmt.Errorf("failed to insert activity log: %w", err)
	}
	return nil
}

// Stats represents activity service statistics
type Stats struct {
	BufferSize     int
	PendingEntries int
	WorkerCount    int
	Running        bool
}

// GetStats returns statistics about the service
func (s *Service) GetStats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return Stats{
		BufferSize:     s.bufferSize,
		PendingEntries: len(s.entries),
		WorkerCount:    s.workerCount,
		Running:        s.running,
	}
}

// ListBySchool reads a school's entries, newest first
func (s *Service) ListBySchool(ctx context.Context, schoolID uuid.UUID, limit, offset int) ([]*models.ActivityLog, error) {
	limit, offset = services.PageBounds(limit, offset)
	logs, err := s.repo.ListBySchool(ctx, schoolID, limit, offset)
	if err != nil {
		return nil, err
	}
	if logs == nil {
		logs = []*models.ActivityLog{}
	}
	return logs, nil
}

// RecordLogin queues a successful login
func (s *Service) RecordLogin(ctx context.Context, user *models.User) {
	entry := models.NewActivityLog(models.LogActionLogin, "user", "User logged in").
		WithSchool(user.SchoolID).
		WithUser(user.ID).
		WithEntity(user.ID).
		WithMetadata(map[string]string{"role": string(user.Role)})
	s.enqueue(ctx, entry)
}

// RecordCreate queues the creation of an entity by actor
func (s *Service) RecordCreate(ctx context.Context, actor *models.Identity, schoolID *uuid.UUID, entityType string, entityID uuid.UUID, description string) {
	entry := models.NewActivityLog(models.LogActionCreate, entityType, description).
		WithSchool(schoolID).
		WithEntity(entityID)
	if actor != nil {
		entry.WithUser(actor.UserID)
	}
	s.enqueue(ctx, entry)
}

// RecordAccessDenied queues an authorization failure
func (s *Service) RecordAccessDenied(ctx context.Context, identity models.Identity, method, path, reason string) {
	entry := models.NewActivityLog(models.LogActionAccessDenied, "route", reason).
		WithSchool(identity.SchoolID).
		WithUser(identity.UserID).
		WithMetadata(map[string]string{
			"method": method,
			"path":   path,
			"role":   string(identity.Role),
		})
	s.enqueue(ctx, entry)
}

func (s *Service) enqueue(ctx context.Context, entry *models.ActivityLog) {
	client := clientFromContext(ctx)
	entry.WithRequest(chimiddleware.GetReqID(ctx), client.ip, client.userAgent)

	if err := s.Record(entry); err != nil && !errors.Is(err, ErrBufferFull) {
		s.logger.Debug("activity entry not recorded", zap.Error(err), zap.String("action", string(entry.Action)))
	}
}

type clientKey struct{}

type clientInfo struct {
	ip        string
	userAgent string
}

// WithClient stores the caller's address and user agent for later entries
func WithClient(ctx context.Context, ip, userAgent string) context.Context {
	return context.WithValue(ctx, clientKey{}, clientInfo{ip: ip, userAgent: userAgent})
}

func clientFromContext(ctx context.Context) clientInfo {
	info, _ := ctx.Value(clientKey{}).(clientInfo)
	return info
}

// CaptureClient is middleware that stores r.RemoteAddr and the User-Agent in the request context.
// Mount it after chi's RealIP.
func CaptureClient(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := WithClient(r.Context(), r.RemoteAddr, r.UserAgent())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
