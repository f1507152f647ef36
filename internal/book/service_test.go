package book

import (
	"context"
	"errors"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runIn makes a mocked WithinTx or View hand st to the callback.
func runIn(st Store) func(context.Context, func(Store) error) error {
	return func(_ context.Context, fn func(Store) error) error {
		return fn(st)
	}
}

func TestService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("persists valid input", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		mockRepo := NewMockRepository(ctrl)
		mockStore := NewMockStore(ctrl)
		service := NewService(mockRepo, nil)

		in := validInput()
		mockRepo.EXPECT().WithinTx(gomock.Any(), gomock.Any()).DoAndReturn(runIn(mockStore))
		mockStore.EXPECT().Insert(gomock.Any(), in).
			Return(Book{ID: 1, Title: "Dune", Author: "Herbert", Year: 1965, ISBN: "123-45678-90-1"}, nil)

		created, err := service.Create(ctx, in)
		require.NoError(t, err)
		assert.Equal(t, int64(1), created.ID)
		assert.Equal(t, "Dune", created.Title)
	})

	t.Run("invalid input never reaches the store", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		mockRepo := NewMockRepository(ctrl)
		service := NewService(mockRepo, nil)

		in := validInput()
		in.ISBN = "abc"

		_, err := service.Create(ctx, in)
		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("negative year is rejected", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		service := NewService(NewMockRepository(ctrl), nil)

		in := validInput()
		in.Year = intPtr(-5)

		_, err := service.Create(ctx, in)
		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("store failure propagates", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		mockRepo := NewMockRepository(ctrl)
		mockStore := NewMockStore(ctrl)
		service := NewService(mockRepo, nil)

		mockRepo.EXPECT().WithinTx(gomock.Any(), gomock.Any()).DoAndReturn(runIn(mockStore))
		mockStore.EXPECT().Insert(gomock.Any(), gomock.Any()).Return(Book{}, context.DeadlineExceeded)

		_, err := service.Create(ctx, validInput())
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})
}

func TestService_Get(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	mockRepo := NewMockRepository(ctrl)
	mockStore := NewMockStore(ctrl)
	service := NewService(mockRepo, nil)

	t.Run("found", func(t *testing.T) {
		mockRepo.EXPECT().View(gomock.Any(), gomock.Any()).DoAndReturn(runIn(mockStore))
		mockStore.EXPECT().GetByID(gomock.Any(), int64(1)).Return(Book{ID: 1, Title: "Dune"}, nil)

		got, err := service.Get(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, "Dune", got.Title)
	})

	t.Run("not found carries the id", func(t *testing.T) {
		mockRepo.EXPECT().View(gomock.Any(), gomock.Any()).DoAndReturn(runIn(mockStore))
		mockStore.EXPECT().GetByID(gomock.Any(), int64(42)).Return(Book{}, ErrNotFound)

		_, err := service.Get(ctx, 42)
		require.ErrorIs(t, err, ErrNotFound)

		var nf *NotFoundError
		require.True(t, errors.As(err, &nf))
		assert.Equal(t, int64(42), nf.ID)
		assert.Equal(t, "Book with id 42 not found", err.Error())
	})
}

func TestService_Update(t *testing.T) {
	ctx := context.Background()
	current := Book{ID: 1, Title: "Dune", Author: "Herbert", Year: 1965, ISBN: "123-45678-90-1"}

	t.Run("applies supplied fields", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		mockRepo := NewMockRepository(ctrl)
		mockStore := NewMockStore(ctrl)
		service := NewService(mockRepo, nil)

		p := Patch{Year: intPtr(1966)}
		mockRepo.EXPECT().WithinTx(gomock.Any(), gomock.Any()).DoAndReturn(runIn(mockStore))
		gomock.InOrder(
			mockStore.EXPECT().GetByID(gomock.Any(), int64(1)).Return(current, nil),
			mockStore.EXPECT().Update(gomock.Any(), int64(1), p).Return(p.Apply(current), nil),
		)

		updated, err := service.Update(ctx, 1, p)
		require.NoError(t, err)
		assert.Equal(t, 1966, updated.Year)
		assert.Equal(t, current.Title, updated.Title)
	})

	t.Run("empty patch performs no write", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		mockRepo := NewMockRepository(ctrl)
		mockStore := NewMockStore(ctrl)
		service := NewService(mockRepo, nil)

		mockRepo.EXPECT().WithinTx(gomock.Any(), gomock.Any()).DoAndReturn(runIn(mockStore))
		mockStore.EXPECT().GetByID(gomock.Any(), int64(1)).Return(current, nil)

		updated, err := service.Update(ctx, 1, Patch{})
		require.NoError(t, err)
		assert.Equal(t, current, updated)
	})

	t.Run("missing book", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		mockRepo := NewMockRepository(ctrl)
		mockStore := NewMockStore(ctrl)
		service := NewService(mockRepo, nil)

		mockRepo.EXPECT().WithinTx(gomock.Any(), gomock.Any()).DoAndReturn(runIn(mockStore))
		mockStore.EXPECT().GetByID(gomock.Any(), int64(9)).Return(Book{}, ErrNotFound)

		_, err := service.Update(ctx, 9, Patch{Title: strPtr("x")})
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestService_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("existing book", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		mockRepo := NewMockRepository(ctrl)
		mockStore := NewMockStore(ctrl)
		service := NewService(mockRepo, nil)

		mockRepo.EXPECT().WithinTx(gomock.Any(), gomock.Any()).DoAndReturn(runIn(mockStore))
		mockStore.EXPECT().GetByID(gomock.Any(), int64(1)).Return(Book{ID: 1}, nil)
		mockStore.EXPECT().Delete(gomock.Any(), int64(1)).Return(true, nil)

		assert.NoError(t, service.Delete(ctx, 1))
	})

	t.Run("missing book", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		mockRepo := NewMockRepository(ctrl)
		mockStore := NewMockStore(ctrl)
		service := NewService(mockRepo, nil)

		mockRepo.EXPECT().WithinTx(gomock.Any(), gomock.Any()).DoAndReturn(runIn(mockStore))
		mockStore.EXPECT().GetByID(gomock.Any(), int64(1)).Return(Book{}, ErrNotFound)

		assert.ErrorIs(t, service.Delete(ctx, 1), ErrNotFound)
	})
}

func TestService_List(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockRepo := NewMockRepository(ctrl)
	mockStore := NewMockStore(ctrl)
	service := NewService(mockRepo, nil)

	mockRepo.EXPECT().View(gomock.Any(), gomock.Any()).DoAndReturn(runIn(mockStore))
	mockStore.EXPECT().List(gomock.Any()).Return(nil, nil)

	books, err := service.List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, books)
	assert.Empty(t, books)
}

// The properties below run against the in-memory backend end to end.

func TestService_Lifecycle(t *testing.T) {
	ctx := context.Background()
	service := NewService(NewMemoryRepo(), nil)

	created, err := service.Create(ctx, validInput())
	require.NoError(t, err)
	assert.Equal(t, int64(1), created.ID)

	got, err := service.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, got)

	updated, err := service.Update(ctx, created.ID, Patch{Year: intPtr(1966)})
	require.NoError(t, err)
	assert.Equal(t, 1966, updated.Year)
	assert.Equal(t, created.Title, updated.Title)
	assert.Equal(t, created.Author, updated.Author)
	assert.Equal(t, created.ISBN, updated.ISBN)

	unchanged, err := service.Update(ctx, created.ID, Patch{})
	require.NoError(t, err)
	assert.Equal(t, updated, unchanged)

	require.NoError(t, service.Delete(ctx, created.ID))

	_, err = service.Get(ctx, created.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, service.Delete(ctx, created.ID), ErrNotFound)
}

func TestService_RejectedCreateLeavesStoreUntouched(t *testing.T) {
	ctx := context.Background()
	service := NewService(NewMemoryRepo(), nil)

	_, err := service.Create(ctx, validInput())
	require.NoError(t, err)

	bad := []Input{
		{Title: "A", Author: "B", Year: intPtr(-1), ISBN: "123-45678-90-1"},
		{Title: "A", Author: "B", Year: intPtr(2000), ISBN: "abc"},
		{Title: "", Author: "B", Year: intPtr(2000), ISBN: "123-45678-90-1"},
		{Title: "A", Author: "B", ISBN: "123-45678-90-1"},
	}
	for _, in := range bad {
		_, err := service.Create(ctx, in)
		assert.ErrorIs(t, err, ErrInvalidInput)
	}

	books, err := service.List(ctx)
	require.NoError(t, err)
	assert.Len(t, books, 1)
}

func TestService_ListCountAfterCreatesAndDeletes(t *testing.T) {
	ctx := context.Background()
	service := NewService(NewMemoryRepo(), nil)

	const creates, deletes = 7, 3
	ids := make([]int64, 0, creates)
	seen := map[int64]bool{}
	for i := 0; i < creates; i++ {
		b, err := service.Create(ctx, validInput())
		require.NoError(t, err)
		require.False(t, seen[b.ID], "id %d reused", b.ID)
		seen[b.ID] = true
		ids = append(ids, b.ID)
	}
	for _, id := range ids[:deletes] {
		require.NoError(t, service.Delete(ctx, id))
	}

	// a fresh id is never one of the live records
	b, err := service.Create(ctx, validInput())
	require.NoError(t, err)
	assert.False(t, seen[b.ID])

	books, err := service.List(ctx)
	require.NoError(t, err)
	assert.Len(t, books, creates-deletes+1)
}
