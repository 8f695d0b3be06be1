package file

import (
	"errors"
	"fmt"

	"github.com/opd-ai/toxfer/interfaces"
)

// errSkipUpdate aborts an update whose mutation turned out to be a no-op.
var errSkipUpdate = errors.New("record update skipped")

// recordStore routes repository access through the repository's execution
// context when it provides one.
type recordStore struct {
	repo    interfaces.IRecordRepository
	context interfaces.IRepositoryContext
}

func newRecordStore(repo interfaces.IRecordRepository) *recordStore {
	s := &recordStore{repo: repo}
	if ctx, ok := repo.(interfaces.IRepositoryContext); ok {
		s.context = ctx
	}
	return s
}

func (s *recordStore) run(fn func() error) error {
	if s.repo == nil {
		return interfaces.ErrRecordNotFound
	}
	if s.context != nil {
		return s.context.Run(fn)
	}
	return fn()
}

func (s *recordStore) read(transferID string) (*interfaces.TransferRecord, error) {
	var rec *interfaces.TransferRecord
	err := s.run(func() error {
		var err error
		rec, err = s.repo.ReadTransferRecord(transferID)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("read record %q: %w", transferID, err)
	}
	return rec, nil
}

// update applies mutate atomically. A mutation returning errSkipUpdate
// leaves the record untouched and is not an error.
func (s *recordStore) update(transferID string, mutate func(*interfaces.TransferRecord) error) error {
	err := s.run(func() error {
		return s.repo.UpdateTransferRecord(transferID, mutate)
	})
	if errors.Is(err, errSkipUpdate) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("update record %q: %w", transferID, err)
	}
	return nil
}

func (s *recordStore) create(rec *interfaces.TransferRecord) error {
	err := s.run(func() error {
		return s.repo.CreateTransferRecord(rec)
	})
	if err != nil {
		return fmt.Errorf("create record %q: %w", rec.TransferID, err)
	}
	return nil
}

func (s *recordStore) delete(transferID string) error {
	err := s.run(func() error {
		return s.repo.DeleteTransferRecord(transferID)
	})
	if err != nil {
		return fmt.Errorf("delete record %q: %w", transferID, err)
	}
	return nil
}

func (s *recordStore) cancelPending() (int, error) {
	var n int
	err := s.run(func() error {
		var err error
		n, err = s.repo.CancelPendingRecords()
		return err
	})
	return n, err
}
