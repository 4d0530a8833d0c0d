package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/spicon/registration/internal/application/port"
	appwf "github.com/spicon/registration/internal/application/workflow"
	"github.com/spicon/registration/internal/domain/entity"
	"github.com/spicon/registration/internal/domain/sequence"
	domainwf "github.com/spicon/registration/internal/domain/workflow"
)

// allocateRetries bounds recomputation after a unique-id collision. The
// per-scope lock makes in-process collisions impossible; retries only
// matter when another writer slips in through a second process.
const allocateRetries = 3

// RegistrarConfig carries the identifier shape settings
type RegistrarConfig struct {
	EventCode string
	PadWidth  int
}

// RegistrarService runs the registration approval workflow: approval
// allocates the unique id, rejection records a reason. Both are terminal.
type RegistrarService interface {
	Approve(ctx context.Context, recordID, approvedBy string) (*entity.PaymentRecord, error)
	Reject(ctx context.Context, recordID, reason, rejectedBy string) (*entity.PaymentRecord, error)
}

type registrarServiceImpl struct {
	records   port.PaymentRecordRepository
	txManager port.TransactionManager
	notifier  port.RegistrationNotifier
	logger    Logger

	eventCode string
	padWidth  int

	// One mutex per (region, prefix) scope serializes the
	// read-max-then-write step inside this process
	scopeLocks sync.Map
}

// NewRegistrarService creates a new RegistrarService
func NewRegistrarService(
	records port.PaymentRecordRepository,
	txManager port.TransactionManager,
	notifier port.RegistrationNotifier,
	cfg RegistrarConfig,
	logger Logger,
) RegistrarService {
	if cfg.EventCode == "" {
		cfg.EventCode = sequence.DefaultEventCode
	}
	if cfg.PadWidth <= 0 {
		cfg.PadWidth = sequence.DefaultPadWidth
	}

	return &registrarServiceImpl{
		records:   records,
		txManager: txManager,
		notifier:  notifier,
		logger:    logger,
		eventCode: cfg.EventCode,
		padWidth:  cfg.PadWidth,
	}
}

// Approve transitions a pending record to approved and assigns its unique
// id. The status check, sequence computation and write happen in one store
// transaction under a per-scope lock; the unique index on the id column
// backstops concurrent writers, triggering a recompute.
func (s *registrarServiceImpl) Approve(ctx context.Context, recordID, approvedBy string) (*entity.PaymentRecord, error) {
	rec, err := s.records.GetByID(ctx, recordID)
	if err != nil {
		return nil, err
	}

	prefix := sequence.PrefixFor(rec.GroupType)
	unlock := s.lockScope(rec.Region, prefix)
	defer unlock()

	var approved *entity.PaymentRecord
	for attempt := 0; attempt < allocateRetries; attempt++ {
		approved, err = s.approveOnce(ctx, recordID, approvedBy, prefix)
		if err == nil {
			break
		}
		if !errors.Is(err, errDuplicateUniqueID) {
			return nil, err
		}
		s.logger.Info("Unique id collision, recomputing sequence",
			"record_id", recordID, "attempt", attempt+1)
	}
	if err != nil {
		s.logger.Error("Failed to approve registration", "error", err, "record_id", recordID)
		return nil, fmt.Errorf("%w: could not allocate a unique id", entity.ErrConflict)
	}

	s.logger.Info("Registration approved",
		"record_id", approved.ID,
		"unique_id", approved.UniqueID,
		"region", approved.Region.String(),
		"approved_by", approvedBy)

	// Notification is best effort and never fails the approval
	if s.notifier != nil && approved.Email != "" {
		if err := s.notifier.NotifyApproved(ctx, approved); err != nil {
			s.logger.Error("Failed to send approval notification",
				"error", err, "record_id", approved.ID, "email", approved.Email)
		}
	}

	return approved, nil
}

// errDuplicateUniqueID marks a collision that is safe to retry with a
// freshly computed sequence
var errDuplicateUniqueID = errors.New("unique id already issued")

func (s *registrarServiceImpl) approveOnce(ctx context.Context, recordID, approvedBy, prefix string) (*entity.PaymentRecord, error) {
	var rec *entity.PaymentRecord

	err := s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		var err error
		rec, err = s.records.GetByID(txCtx, recordID)
		if err != nil {
			return err
		}

		machine, err := appwf.BuildRegistrationMachine(rec.RegistrationStatus)
		if err != nil {
			return fmt.Errorf("%w: registration status %q", entity.ErrConflict, rec.RegistrationStatus)
		}
		if _, err := machine.Fire(domainwf.TriggerApprove); err != nil {
			// already approved or rejected; uniqueId stays untouched
			return fmt.Errorf("%w: registration is %s", entity.ErrConflict, rec.RegistrationStatus)
		}

		issued, err := s.records.IssuedUniqueIDs(txCtx, rec.Region)
		if err != nil {
			return fmt.Errorf("load issued ids: %w", err)
		}

		next := sequence.Next(s.eventCode, rec.Region, prefix, issued)
		uniqueID := sequence.Format(s.eventCode, rec.Region, prefix, next, s.padWidth)

		now := time.Now()
		if err := s.records.SetApproved(txCtx, rec.ID, uniqueID, approvedBy, now); err != nil {
			if errors.Is(err, entity.ErrConflict) {
				return fmt.Errorf("%w: %s", errDuplicateUniqueID, uniqueID)
			}
			return fmt.Errorf("persist approval: %w", err)
		}

		rec.RegistrationStatus = entity.RegistrationApproved
		rec.UniqueID = uniqueID
		rec.ApprovedAt = &now
		rec.ApprovedBy = approvedBy
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// Reject transitions a pending record to rejected with a reason; terminal
func (s *registrarServiceImpl) Reject(ctx context.Context, recordID, reason, rejectedBy string) (*entity.PaymentRecord, error) {
	if strings.TrimSpace(reason) == "" {
		return nil, fmt.Errorf("%w: rejection reason is required", entity.ErrValidation)
	}

	var rec *entity.PaymentRecord
	err := s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		var err error
		rec, err = s.records.GetByID(txCtx, recordID)
		if err != nil {
			return err
		}

		machine, err := appwf.BuildRegistrationMachine(rec.RegistrationStatus)
		if err != nil {
			return fmt.Errorf("%w: registration status %q", entity.ErrConflict, rec.RegistrationStatus)
		}
		if _, err := machine.Fire(domainwf.TriggerReject); err != nil {
			return fmt.Errorf("%w: registration is %s", entity.ErrConflict, rec.RegistrationStatus)
		}

		now := time.Now()
		if err := s.records.SetRejected(txCtx, rec.ID, reason, rejectedBy, now); err != nil {
			return fmt.Errorf("persist rejection: %w", err)
		}

		rec.RegistrationStatus = entity.RegistrationRejected
		rec.RejectedAt = &now
		rec.RejectedBy = rejectedBy
		rec.RejectionReason = reason
		return nil
	})
	if err != nil {
		s.logger.Error("Failed to reject registration", "error", err, "record_id", recordID)
		return nil, err
	}

	s.logger.Info("Registration rejected", "record_id", rec.ID, "rejected_by", rejectedBy)

	// Notification is best effort and never fails the rejection
	if s.notifier != nil && rec.Email != "" {
		if err := s.notifier.NotifyRejected(ctx, rec); err != nil {
			s.logger.Error("Failed to send rejection notification",
				"error", err, "record_id", rec.ID, "email", rec.Email)
		}
	}

	return rec, nil
}

func (s *registrarServiceImpl) lockScope(region entity.Region, prefix string) func() {
	key := region.Code() + "/" + prefix
	mu, _ := s.scopeLocks.LoadOrStore(key, &sync.Mutex{})
	lock := mu.(*sync.Mutex)
	lock.Lock()
	return lock.Unlock
}
