package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/spicon/registration/internal/application/port"
	"github.com/spicon/registration/internal/domain/entity"
)

// fakePaymentRepo is an in-memory PaymentRecordRepository with a unique
// index on unique_id, close enough to the sqlite implementation to drive
// the allocator tests
type fakePaymentRepo struct {
	mu        sync.Mutex
	records   map[string]*entity.PaymentRecord
	uniqueIDs map[string]bool
	nextTxnID int64

	// called before SetApproved commits; lets tests inject collisions
	setApprovedHook func(uniqueID string) error
}

func newFakePaymentRepo() *fakePaymentRepo {
	return &fakePaymentRepo{
		records:   make(map[string]*entity.PaymentRecord),
		uniqueIDs: make(map[string]bool),
	}
}

func (r *fakePaymentRepo) Create(ctx context.Context, rec *entity.PaymentRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *rec
	r.records[rec.ID] = &clone
	return nil
}

func (r *fakePaymentRepo) GetByID(ctx context.Context, id string) (*entity.PaymentRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[id]
	if !ok {
		return nil, fmt.Errorf("%w: payment record %s", entity.ErrNotFound, id)
	}
	clone := *rec
	return &clone, nil
}

func (r *fakePaymentRepo) FindByMobile(ctx context.Context, mobile string) (*entity.PaymentRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rec := range r.records {
		if rec.Mobile == mobile && mobile != "" {
			clone := *rec
			return &clone, nil
		}
	}
	return nil, fmt.Errorf("%w: mobile %s", entity.ErrNotFound, mobile)
}

func (r *fakePaymentRepo) FindByName(ctx context.Context, name string) (*entity.PaymentRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rec := range r.records {
		if rec.Name == name {
			clone := *rec
			return &clone, nil
		}
	}
	return nil, fmt.Errorf("%w: name %s", entity.ErrNotFound, name)
}

func (r *fakePaymentRepo) List(ctx context.Context, limit, offset int) ([]*entity.PaymentRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*entity.PaymentRecord, 0, len(r.records))
	for _, rec := range r.records {
		clone := *rec
		out = append(out, &clone)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *fakePaymentRepo) Update(ctx context.Context, rec *entity.PaymentRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.records[rec.ID]; !ok {
		return fmt.Errorf("%w: payment record %s", entity.ErrNotFound, rec.ID)
	}
	clone := *rec
	r.records[rec.ID] = &clone
	return nil
}

func (r *fakePaymentRepo) AppendTransaction(ctx context.Context, txn *entity.Transaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextTxnID++
	txn.ID = r.nextTxnID
	return nil
}

func (r *fakePaymentRepo) SetApproved(ctx context.Context, id, uniqueID, approvedBy string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.records[id]
	if !ok {
		return fmt.Errorf("%w: payment record %s", entity.ErrNotFound, id)
	}
	if r.setApprovedHook != nil {
		hook := r.setApprovedHook
		r.setApprovedHook = nil
		if err := hook(uniqueID); err != nil {
			return err
		}
	}
	if r.uniqueIDs[uniqueID] {
		return fmt.Errorf("%w: unique id %s already issued", entity.ErrConflict, uniqueID)
	}

	r.uniqueIDs[uniqueID] = true
	rec.RegistrationStatus = entity.RegistrationApproved
	rec.UniqueID = uniqueID
	rec.ApprovedBy = approvedBy
	rec.ApprovedAt = &at
	return nil
}

func (r *fakePaymentRepo) SetRejected(ctx context.Context, id, reason, rejectedBy string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[id]
	if !ok {
		return fmt.Errorf("%w: payment record %s", entity.ErrNotFound, id)
	}
	rec.RegistrationStatus = entity.RegistrationRejected
	rec.RejectionReason = reason
	rec.RejectedBy = rejectedBy
	rec.RejectedAt = &at
	return nil
}

func (r *fakePaymentRepo) IssuedUniqueIDs(ctx context.Context, region entity.Region) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var ids []string
	for _, rec := range r.records {
		if rec.Region == region && rec.RegistrationStatus == entity.RegistrationApproved && rec.UniqueID != "" {
			ids = append(ids, rec.UniqueID)
		}
	}
	return ids, nil
}

func (r *fakePaymentRepo) Totals(ctx context.Context) (int64, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var total, paid int64
	for _, rec := range r.records {
		total += rec.TotalAmount
		paid += rec.PaidAmount
	}
	return total, paid, nil
}

func (r *fakePaymentRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.records[id]; !ok {
		return fmt.Errorf("%w: payment record %s", entity.ErrNotFound, id)
	}
	delete(r.records, id)
	return nil
}

// fakeRequestRepo is an in-memory WorkerRequestRepository
type fakeRequestRepo struct {
	mu       sync.Mutex
	requests map[string]*entity.WorkerRequest
}

func newFakeRequestRepo() *fakeRequestRepo {
	return &fakeRequestRepo{requests: make(map[string]*entity.WorkerRequest)}
}

func (r *fakeRequestRepo) Create(ctx context.Context, req *entity.WorkerRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *req
	r.requests[req.ID] = &clone
	return nil
}

func (r *fakeRequestRepo) GetByID(ctx context.Context, id string) (*entity.WorkerRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	req, ok := r.requests[id]
	if !ok {
		return nil, fmt.Errorf("%w: worker request %s", entity.ErrNotFound, id)
	}
	clone := *req
	return &clone, nil
}

func (r *fakeRequestRepo) ListByWorker(ctx context.Context, workerID string) ([]*entity.WorkerRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.WorkerRequest
	for _, req := range r.requests {
		if req.WorkerID == workerID {
			clone := *req
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (r *fakeRequestRepo) List(ctx context.Context) ([]*entity.WorkerRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*entity.WorkerRequest, 0, len(r.requests))
	for _, req := range r.requests {
		clone := *req
		out = append(out, &clone)
	}
	return out, nil
}

func (r *fakeRequestRepo) Update(ctx context.Context, req *entity.WorkerRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.requests[req.ID]; !ok {
		return fmt.Errorf("%w: worker request %s", entity.ErrNotFound, req.ID)
	}
	clone := *req
	r.requests[req.ID] = &clone
	return nil
}

func (r *fakeRequestRepo) Summary(ctx context.Context) (*port.ExpenseSummary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	summary := &port.ExpenseSummary{}
	for _, req := range r.requests {
		summary.Total++
		summary.TotalAmount += req.Amount
		switch req.Status {
		case entity.RequestPending:
			summary.Pending++
		case entity.RequestApproved:
			summary.Approved++
		case entity.RequestRejected:
			summary.Rejected++
		case entity.RequestPaid:
			summary.Paid++
			summary.TotalPaidAmount += req.Amount
		}
	}
	return summary, nil
}

// fakeUserRepo is an in-memory UserRepository
type fakeUserRepo struct {
	mu    sync.Mutex
	users map[string]*entity.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*entity.User)}
}

func (r *fakeUserRepo) Create(ctx context.Context, user *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *user
	r.users[user.ID] = &clone
	return nil
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return nil, fmt.Errorf("%w: user %s", entity.ErrNotFound, id)
	}
	clone := *user
	return &clone, nil
}

func (r *fakeUserRepo) FindForLogin(ctx context.Context, usernameOrEmail string, role entity.Role, region entity.Region) ([]*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.User
	for _, user := range r.users {
		if user.Username != usernameOrEmail && user.Email != usernameOrEmail {
			continue
		}
		if role != "" && user.Role != role {
			continue
		}
		if region != "" && user.Region != region {
			continue
		}
		clone := *user
		out = append(out, &clone)
	}
	return out, nil
}

func (r *fakeUserRepo) List(ctx context.Context) ([]*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.User
	for _, user := range r.users {
		clone := *user
		out = append(out, &clone)
	}
	return out, nil
}

func (r *fakeUserRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.Email == email {
			return true, nil
		}
	}
	return false, nil
}

// passthroughTxManager runs the function directly; the fakes are
// individually consistent
type passthroughTxManager struct{}

func (passthroughTxManager) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type mockNotifier struct {
	mu       sync.Mutex
	notified []string
	rejected []string
	err      error
}

func (n *mockNotifier) NotifyApproved(ctx context.Context, rec *entity.PaymentRecord) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.notified = append(n.notified, rec.ID)
	return n.err
}

func (n *mockNotifier) NotifyRejected(ctx context.Context, rec *entity.PaymentRecord) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.rejected = append(n.rejected, rec.ID)
	return n.err
}

type mockHasher struct{}

func (mockHasher) Hash(password string) (string, error) { return "hashed:" + password, nil }

func (mockHasher) Compare(hash, password string) error {
	if hash != "hashed:"+password {
		return fmt.Errorf("mismatch")
	}
	return nil
}

type mockTokens struct{}

func (mockTokens) Issue(user *entity.User) (string, time.Time, error) {
	return "token-" + user.ID, time.Now().Add(time.Hour), nil
}

type mockLogger struct{}

func (mockLogger) Info(msg string, keysAndValues ...interface{})  {}
func (mockLogger) Error(msg string, keysAndValues ...interface{}) {}
