package file

import (
	"errors"
	"testing"

	"github.com/opd-ai/toxfer/interfaces"
	"github.com/opd-ai/toxfer/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

// mockContextRepository is a repository that also provides an execution
// context, like storage.Store.
type mockContextRepository struct {
	*mocks.MockIRecordRepository
	*mocks.MockIRepositoryContext
}

func newContextRepository(t *testing.T) (*recordStore, *mocks.MockIRecordRepository, *mocks.MockIRepositoryContext) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockIRecordRepository(ctrl)
	runner := mocks.NewMockIRepositoryContext(ctrl)
	return newRecordStore(mockContextRepository{repo, runner}), repo, runner
}

func runInline(fn func() error) error {
	return fn()
}

func TestRecordStore_RunsInRepositoryContext(t *testing.T) {
	store, repo, runner := newContextRepository(t)
	want := &interfaces.TransferRecord{TransferID: "7", Status: interfaces.RecordLoading}

	gomock.InOrder(
		runner.EXPECT().Run(gomock.Any()).DoAndReturn(runInline),
		repo.EXPECT().ReadTransferRecord("7").Return(want, nil),
	)

	rec, err := store.read("7")
	require.NoError(t, err)
	assert.Same(t, want, rec)
}

func TestRecordStore_SkippedUpdateIsNotAnError(t *testing.T) {
	store, repo, runner := newContextRepository(t)
	runner.EXPECT().Run(gomock.Any()).DoAndReturn(runInline)
	repo.EXPECT().
		UpdateTransferRecord("7", gomock.Any()).
		DoAndReturn(func(_ string, mutate func(*interfaces.TransferRecord) error) error {
			return mutate(&interfaces.TransferRecord{Status: interfaces.RecordReady})
		})

	err := store.update("7", func(r *interfaces.TransferRecord) error {
		if r.Status == interfaces.RecordReady {
			return errSkipUpdate
		}
		r.Status = interfaces.RecordCanceled
		return nil
	})
	assert.NoError(t, err)
}

func TestRecordStore_WrapsErrors(t *testing.T) {
	closed := errors.New("store closed")

	t.Run("context failure", func(t *testing.T) {
		store, _, runner := newContextRepository(t)
		runner.EXPECT().Run(gomock.Any()).Return(closed)

		err := store.delete("7")
		assert.ErrorIs(t, err, closed)
		assert.Contains(t, err.Error(), `delete record "7"`)
	})

	t.Run("missing record", func(t *testing.T) {
		store, repo, runner := newContextRepository(t)
		runner.EXPECT().Run(gomock.Any()).DoAndReturn(runInline)
		repo.EXPECT().ReadTransferRecord("9").Return(nil, interfaces.ErrRecordNotFound)

		_, err := store.read("9")
		assert.ErrorIs(t, err, interfaces.ErrRecordNotFound)
	})
}

func TestRecordStore_WithoutContext(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockIRecordRepository(ctrl)
	repo.EXPECT().CancelPendingRecords().Return(3, nil)

	n, err := newRecordStore(repo).cancelPending()
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	_, err = newRecordStore(nil).read("1")
	assert.ErrorIs(t, err, interfaces.ErrRecordNotFound)
}
