package services

import (
	"bytes"
	"context"
	"errors"
	"log"
	"sync"
	"testing"
	"time"

	"structura-api/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDeliverer struct {
	mu        sync.Mutex
	delivered []Invitation
	release   chan struct{}
	panicFor  string
}

func (f *fakeDeliverer) Deliver(_ context.Context, inv Invitation) DeliveryResult {
	if f.release != nil {
		<-f.release
	}
	if inv.ToEmail == f.panicFor {
		panic("transport exploded")
	}
	f.mu.Lock()
	f.delivered = append(f.delivered, inv)
	f.mu.Unlock()
	return DeliveryResult{Status: models.DeliverySent, Attempts: 1, Transport: "fake"}
}

func (f *fakeDeliverer) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.delivered)
}

type fakeDeliveryStore struct {
	mu        sync.Mutex
	created   []models.InvitationDelivery
	finished  map[string]DeliveryResult
	createErr error
}

func newFakeDeliveryStore() *fakeDeliveryStore {
	return &fakeDeliveryStore{finished: map[string]DeliveryResult{}}
}

func (s *fakeDeliveryStore) Create(_ context.Context, d *models.InvitationDelivery) error {
	if s.createErr != nil {
		return s.createErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.created = append(s.created, *d)
	return nil
}

func (s *fakeDeliveryStore) Finish(_ context.Context, id string, res DeliveryResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.finished[id] = res
	return nil
}

func (s *fakeDeliveryStore) result(id string) (DeliveryResult, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	res, ok := s.finished[id]
	return res, ok
}

func quietLogger() (*log.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return log.New(&buf, "", 0), &buf
}

func TestDispatcherDeliversAndRecordsOutcome(t *testing.T) {
	deliverer := &fakeDeliverer{}
	store := newFakeDeliveryStore()
	logger, _ := quietLogger()
	d := NewInvitationDispatcher(deliverer, store, 2, 10, logger)
	d.Start()

	ok := d.Enqueue(context.Background(), Invitation{DeliveryID: "inv-1", ToEmail: "a@example.com", Role: models.RoleClient, TempPassword: "secret"})
	require.True(t, ok)
	require.NoError(t, d.Stop(context.Background()))

	assert.Equal(t, 1, deliverer.count())
	require.Len(t, store.created, 1)
	assert.Equal(t, models.DeliveryQueued, store.created[0].Status)
	assert.Equal(t, "a@example.com", store.created[0].Recipient)

	res, ok := store.result("inv-1")
	require.True(t, ok)
	assert.Equal(t, models.DeliverySent, res.Status)
}

func TestDispatcherFullQueueDropsInvitation(t *testing.T) {
	deliverer := &fakeDeliverer{}
	store := newFakeDeliveryStore()
	logger, logs := quietLogger()
	d := NewInvitationDispatcher(deliverer, store, 1, 1, logger)

	// Not started: the single slot fills and the next invitation has nowhere to go.
	require.True(t, d.Enqueue(context.Background(), Invitation{DeliveryID: "first", ToEmail: "a@example.com"}))
	assert.False(t, d.Enqueue(context.Background(), Invitation{DeliveryID: "second", ToEmail: "b@example.com"}))

	res, ok := store.result("second")
	require.True(t, ok)
	assert.Equal(t, models.DeliveryDropped, res.Status)
	assert.Contains(t, logs.String(), "dropping email to=b@example.com")

	d.Start()
	require.NoError(t, d.Stop(context.Background()))
	assert.Equal(t, 1, deliverer.count())
	res, ok = store.result("first")
	require.True(t, ok)
	assert.Equal(t, models.DeliverySent, res.Status)
}

func TestDispatcherEnqueueAfterStopIsRejected(t *testing.T) {
	store := newFakeDeliveryStore()
	logger, _ := quietLogger()
	d := NewInvitationDispatcher(&fakeDeliverer{}, store, 1, 4, logger)
	d.Start()
	require.NoError(t, d.Stop(context.Background()))

	assert.False(t, d.Enqueue(context.Background(), Invitation{DeliveryID: "late", ToEmail: "c@example.com"}))
	res, ok := store.result("late")
	require.True(t, ok)
	assert.Equal(t, models.DeliveryDropped, res.Status)

	// Stopping twice is harmless.
	assert.NoError(t, d.Stop(context.Background()))
}

func TestDispatcherStopHonoursDeadline(t *testing.T) {
	deliverer := &fakeDeliverer{release: make(chan struct{})}
	logger, _ := quietLogger()
	d := NewInvitationDispatcher(deliverer, nil, 1, 4, logger)
	d.Start()
	require.True(t, d.Enqueue(context.Background(), Invitation{ToEmail: "slow@example.com"}))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := d.Stop(ctx)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))

	close(deliverer.release)
	require.NoError(t, d.Stop(context.Background()))
	assert.Equal(t, 1, deliverer.count())
}

func TestDispatcherSurvivesPanickingDelivery(t *testing.T) {
	deliverer := &fakeDeliverer{panicFor: "boom@example.com"}
	logger, logs := quietLogger()
	d := NewInvitationDispatcher(deliverer, newFakeDeliveryStore(), 1, 4, logger)
	d.Start()

	require.True(t, d.Enqueue(context.Background(), Invitation{ToEmail: "boom@example.com"}))
	require.True(t, d.Enqueue(context.Background(), Invitation{ToEmail: "fine@example.com"}))
	require.NoError(t, d.Stop(context.Background()))

	assert.Equal(t, 1, deliverer.count())
	assert.Contains(t, logs.String(), "invitation delivery panic")
}

func TestDispatcherContinuesWhenRecordCannotBeCreated(t *testing.T) {
	deliverer := &fakeDeliverer{}
	store := newFakeDeliveryStore()
	store.createErr = errors.New("table missing")
	logger, logs := quietLogger()
	d := NewInvitationDispatcher(deliverer, store, 1, 4, logger)
	d.Start()

	require.True(t, d.Enqueue(context.Background(), Invitation{DeliveryID: "x", ToEmail: "d@example.com"}))
	require.NoError(t, d.Stop(context.Background()))

	assert.Equal(t, 1, deliverer.count())
	_, recorded := store.result("x")
	assert.False(t, recorded)
	assert.Contains(t, logs.String(), "failed to record queued invitation")
}
