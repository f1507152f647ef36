package book

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryRepo_RollbackOnError(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepo(Book{ID: 5, Title: "Seeded", Author: "A", Year: 1, ISBN: "1234567"})
	boom := errors.New("boom")

	err := repo.WithinTx(ctx, func(st Store) error {
		_, err := st.Insert(ctx, validInput())
		require.NoError(t, err)
		_, err = st.Delete(ctx, 5)
		require.NoError(t, err)
		return boom
	})
	assert.ErrorIs(t, err, boom)

	require.NoError(t, repo.WithinTx(ctx, func(st Store) error {
		books, err := st.List(ctx)
		require.NoError(t, err)
		require.Len(t, books, 1)
		assert.Equal(t, "Seeded", books[0].Title)

		created, err := st.Insert(ctx, validInput())
		require.NoError(t, err)
		assert.Equal(t, int64(6), created.ID)
		return nil
	}))
}

func TestMemoryRepo_RollbackOnPanic(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepo()

	assert.Panics(t, func() {
		_ = repo.WithinTx(ctx, func(st Store) error {
			_, _ = st.Insert(ctx, validInput())
			panic("boom")
		})
	})

	require.NoError(t, repo.WithinTx(ctx, func(st Store) error {
		books, err := st.List(ctx)
		require.NoError(t, err)
		assert.Empty(t, books)
		return nil
	}))
}

func TestMemoryRepo_Store(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepo()

	require.NoError(t, repo.EnsureSchema(ctx))
	require.NoError(t, repo.WithinTx(ctx, func(st Store) error {
		_, err := st.GetByID(ctx, 1)
		assert.ErrorIs(t, err, ErrNotFound)

		_, err = st.Update(ctx, 1, Patch{Title: strPtr("x")})
		assert.ErrorIs(t, err, ErrNotFound)

		deleted, err := st.Delete(ctx, 1)
		require.NoError(t, err)
		assert.False(t, deleted)

		b, err := st.Insert(ctx, validInput())
		require.NoError(t, err)

		b, err = st.Update(ctx, b.ID, Patch{Title: strPtr(""), ISBN: strPtr("not-an-isbn")})
		require.NoError(t, err)
		assert.Equal(t, "", b.Title)
		assert.Equal(t, "not-an-isbn", b.ISBN)
		assert.Equal(t, "Herbert", b.Author)
		return nil
	}))
}

func TestMemoryRepo_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	err := NewMemoryRepo().WithinTx(ctx, func(Store) error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
}

func TestMemoryRepo_ViewRejectsWrites(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepo(Book{ID: 1, Title: "Seeded", Author: "A", Year: 1, ISBN: "1234567"})

	err := repo.View(ctx, func(st Store) error {
		_, err := st.Insert(ctx, validInput())
		assert.ErrorIs(t, err, errReadOnly)
		_, err = st.Update(ctx, 1, Patch{Title: strPtr("x")})
		assert.ErrorIs(t, err, errReadOnly)
		_, err = st.Delete(ctx, 1)
		assert.ErrorIs(t, err, errReadOnly)

		got, err := st.GetByID(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, "Seeded", got.Title)
		return nil
	})
	require.NoError(t, err)

	require.NoError(t, repo.View(ctx, func(st Store) error {
		books, err := st.List(ctx)
		require.NoError(t, err)
		assert.Len(t, books, 1)
		return nil
	}))
}

func TestMemoryRepo_ViewsRunConcurrently(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepo()

	inner := make(chan error, 1)
	err := repo.View(ctx, func(Store) error {
		go func() {
			inner <- repo.View(ctx, func(st Store) error {
				_, err := st.List(ctx)
				return err
			})
		}()
		select {
		case err := <-inner:
			return err
		case <-time.After(time.Second):
			return errors.New("second view blocked by the first")
		}
	})
	assert.NoError(t, err)
}

func TestMemoryRepo_ViewSeesCommittedWrites(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepo()

	var created Book
	require.NoError(t, repo.WithinTx(ctx, func(st Store) error {
		var err error
		created, err = st.Insert(ctx, validInput())
		return err
	}))

	require.NoError(t, repo.View(ctx, func(st Store) error {
		got, err := st.GetByID(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, created, got)
		return nil
	}))
}
