package postgresql

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	mock_database "gitlab.ozon.dev/pupkingeorgij/fulfillment/internal/db/mocks"
	"gitlab.ozon.dev/pupkingeorgij/fulfillment/internal/repository"
)

func TestVariantRepoAdjustStock(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockDB := mock_database.NewMockDB(ctrl)
	repo := NewVariantRepo(mockDB)

	t.Run("returns the updated row", func(t *testing.T) {
		mockDB.EXPECT().
			Get(gomock.Any(), gomock.Any(), gomock.Any(), "v1", -2).
			DoAndReturn(func(_ context.Context, dest interface{}, _ string, _ ...interface{}) error {
				variant := dest.(*repository.Variant)
				variant.ID = "v1"
				variant.Stock = 3
				variant.OutOfStock = false
				return nil
			})

		variant, err := repo.AdjustStock(context.Background(), "v1", -2)
		require.NoError(t, err)
		assert.Equal(t, 3, variant.Stock)
		assert.False(t, variant.OutOfStock)
	})

	t.Run("unknown variant maps to not found", func(t *testing.T) {
		mockDB.EXPECT().
			Get(gomock.Any(), gomock.Any(), gomock.Any(), "missing", 1).
			Return(pgx.ErrNoRows)

		_, err := repo.AdjustStock(context.Background(), "missing", 1)
		assert.ErrorIs(t, err, repository.ErrObjectNotFound)
	})
}

func TestVariantRepoGetByID(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockDB := mock_database.NewMockDB(ctrl)
	repo := NewVariantRepo(mockDB)

	mockDB.EXPECT().
		Get(gomock.Any(), gomock.Any(), gomock.Any(), "missing").
		Return(pgx.ErrNoRows)

	_, err := repo.GetByID(context.Background(), "missing")
	assert.ErrorIs(t, err, repository.ErrObjectNotFound)
}
