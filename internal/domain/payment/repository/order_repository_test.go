package repository

import (
	"errors"
	"testing"

	"shop_api/internal/domain/payment/model"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mockSQL, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{
		Conn:                 sqlDB,
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		TranslateError: true,
	})
	require.NoError(t, err)

	return db, mockSQL
}

func TestGetBySessionID(t *testing.T) {
	t.Run("Order found with items preloaded", func(t *testing.T) {
		db, mockSQL := newMockDB(t)
		repo := NewOrderRepository(db)

		mockSQL.ExpectQuery(`SELECT \* FROM "orders" WHERE session_id = \$1`).
			WithArgs("sess-1", 1).
			WillReturnRows(sqlmock.NewRows([]string{
				"id", "user_id", "total_amount", "session_id", "status", "channel",
			}).AddRow("order-1", "user-1", 216.0, "sess-1", "completed", "alipay"))

		mockSQL.ExpectQuery(`SELECT \* FROM "order_items" WHERE "order_items"\."order_id" = \$1`).
			WithArgs("order-1").
			WillReturnRows(sqlmock.NewRows([]string{
				"id", "order_id", "product_id", "quantity", "price",
			}).AddRow("item-1", "order-1", "p1", 2, 125.0))

		order, err := repo.GetBySessionID("sess-1")

		assert.NoError(t, err)
		assert.Equal(t, "order-1", order.ID)
		assert.Equal(t, 216.0, order.TotalAmount)
		assert.Len(t, order.Items, 1)
		assert.Equal(t, 2, order.Items[0].Quantity)
		assert.NoError(t, mockSQL.ExpectationsWereMet())
	})

	t.Run("Missing session returns record not found", func(t *testing.T) {
		db, mockSQL := newMockDB(t)
		repo := NewOrderRepository(db)

		mockSQL.ExpectQuery(`SELECT \* FROM "orders" WHERE session_id = \$1`).
			WithArgs("missing", 1).
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		_, err := repo.GetBySessionID("missing")

		assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))
		assert.NoError(t, mockSQL.ExpectationsWereMet())
	})
}

func TestUpdateStatusNotFound(t *testing.T) {
	t.Run("Zero rows affected maps to record not found", func(t *testing.T) {
		db, mockSQL := newMockDB(t)
		repo := NewOrderRepository(db)

		mockSQL.ExpectBegin()
		mockSQL.ExpectExec(`UPDATE "orders" SET`).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mockSQL.ExpectCommit()

		_, err := repo.UpdateStatus("missing", model.StatusCancelled)

		assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))
		assert.NoError(t, mockSQL.ExpectationsWereMet())
	})
}

func TestGetAll(t *testing.T) {
	t.Run("Returns orders with total count", func(t *testing.T) {
		db, mockSQL := newMockDB(t)
		repo := NewOrderRepository(db)

		mockSQL.ExpectQuery(`SELECT count\(\*\) FROM "orders"`).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(25))

		mockSQL.ExpectQuery(`SELECT \* FROM "orders"`).
			WillReturnRows(sqlmock.NewRows([]string{
				"id", "user_id", "total_amount", "status",
			}).
				AddRow("order-1", "user-1", 216.0, "completed").
				AddRow("order-2", "user-2", 54.0, "pending"))

		mockSQL.ExpectQuery(`SELECT \* FROM "order_items"`).
			WillReturnRows(sqlmock.NewRows([]string{"id", "order_id"}))

		orders, total, err := repo.GetAll(0, 10)

		assert.NoError(t, err)
		assert.Equal(t, int64(25), total)
		assert.Len(t, orders, 2)
		assert.NoError(t, mockSQL.ExpectationsWereMet())
	})
}
