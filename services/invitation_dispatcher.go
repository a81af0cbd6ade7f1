package services

import (
	"context"
	"log"
	"sync"
	"time"

	"structura-api/config"
	"structura-api/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const defaultDeliveryTimeout = 60 * time.Second

type invitationDeliverer interface {
	Deliver(ctx context.Context, inv Invitation) DeliveryResult
}

// DeliveryStore persists invitation delivery outcomes.
type DeliveryStore interface {
	Create(ctx context.Context, d *models.InvitationDelivery) error
	Finish(ctx context.Context, id string, res DeliveryResult) error
}

type gormDeliveryStore struct {
	db *gorm.DB
}

// NewGormDeliveryStore stores delivery outcomes in invitation_deliveries.
func NewGormDeliveryStore(db *gorm.DB) DeliveryStore {
	if db == nil {
		db = config.DB
	}
	return &gormDeliveryStore{db: db}
}

func (s *gormDeliveryStore) Create(ctx context.Context, d *models.InvitationDelivery) error {
	return s.db.WithContext(ctx).Create(d).Error
}

func (s *gormDeliveryStore) Finish(ctx context.Context, id string, res DeliveryResult) error {
	updates := map[string]interface{}{
		"status":       res.Status,
		"attempts":     res.Attempts,
		"from_address": res.From,
		"transport":    res.Transport,
		"last_error":   nil,
		"updated_at":   time.Now(),
	}
	if res.Err != nil {
		updates["last_error"] = res.Err.Error()
	}
	return s.db.WithContext(ctx).Model(&models.InvitationDelivery{}).Where("id = ?", id).Updates(updates).Error
}

// InvitationDispatcher runs invitation deliveries on a fixed pool of workers fed by a bounded queue.
type InvitationDispatcher struct {
	mailer  invitationDeliverer
	store   DeliveryStore
	logger  *log.Logger
	workers int
	timeout time.Duration

	jobs   chan Invitation
	wg     sync.WaitGroup
	mu     sync.RWMutex
	closed bool
	start  sync.Once
}

// NewInvitationDispatcher builds a dispatcher; call Start before Enqueue.
func NewInvitationDispatcher(mailer invitationDeliverer, store DeliveryStore, workers, queueSize int, logger *log.Logger) *InvitationDispatcher {
	if workers < 1 {
		workers = 1
	}
	if queueSize < 1 {
		queueSize = 1
	}
	if logger == nil {
		logger = config.NewLogger("[invitation] ")
	}
	return &InvitationDispatcher{
		mailer:  mailer,
		store:   store,
		logger:  logger,
		workers: workers,
		timeout: defaultDeliveryTimeout,
		jobs:    make(chan Invitation, queueSize),
	}
}

// Start launches the workers once.
func (d *InvitationDispatcher) Start() {
	d.start.Do(func() {
		for i := 0; i < d.workers; i++ {
			d.wg.Add(1)
			go d.work()
		}
	})
}

func (d *InvitationDispatcher) work() {
	defer d.wg.Done()
	for inv := range d.jobs {
		d.deliver(inv)
	}
}

func (d *InvitationDispatcher) deliver(inv Invitation) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Printf("invitation delivery panic to=%s: %v", inv.ToEmail, r)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()

	res := d.mailer.Deliver(ctx, inv)
	if d.store != nil && inv.DeliveryID != "" {
		if err := d.store.Finish(ctx, inv.DeliveryID, res); err != nil {
			d.logger.Printf("failed to record invitation delivery %s: %v", inv.DeliveryID, err)
		}
	}
}

// Enqueue records the invitation and hands it to the workers without blocking. It reports
// whether the invitation was queued; a full queue or stopped dispatcher drops it.
func (d *InvitationDispatcher) Enqueue(ctx context.Context, inv Invitation) bool {
	if inv.DeliveryID == "" {
		inv.DeliveryID = uuid.NewString()
	}
	ctx = persistentContext(ctx)

	record := &models.InvitationDelivery{
		ID:        inv.DeliveryID,
		Recipient: inv.ToEmail,
		Role:      inv.Role,
		AccountID: inv.AccountID,
		Status:    models.DeliveryQueued,
	}
	if d.store != nil {
		if err := d.store.Create(ctx, record); err != nil {
			d.logger.Printf("failed to record queued invitation to=%s: %v", inv.ToEmail, err)
			inv.DeliveryID = ""
		}
	}

	d.mu.RLock()
	queued := false
	if !d.closed {
		select {
		case d.jobs <- inv:
			queued = true
		default:
		}
	}
	d.mu.RUnlock()

	if !queued {
		d.logger.Printf("invitation queue unavailable, dropping email to=%s role=%s", inv.ToEmail, inv.Role)
		if d.store != nil && inv.DeliveryID != "" {
			if err := d.store.Finish(ctx, inv.DeliveryID, DeliveryResult{Status: models.DeliveryDropped}); err != nil {
				d.logger.Printf("failed to record dropped invitation %s: %v", inv.DeliveryID, err)
			}
		}
	}
	return queued
}

// Stop closes the queue and waits for queued deliveries to finish or ctx to expire.
func (d *InvitationDispatcher) Stop(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.jobs)
	}
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
