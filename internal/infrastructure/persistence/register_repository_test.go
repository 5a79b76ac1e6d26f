package persistence

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/erp/cashdrawer/internal/domain/cashdrawer"
	"github.com/erp/cashdrawer/internal/domain/shared"
	"github.com/erp/cashdrawer/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()

	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	return gormDB, mock, mockDB
}

func registerRows(registerID, managerID uuid.UUID) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "version", "name", "fund", "balance", "bill_breakdown", "manager_id", "status"}).
		AddRow(registerID, 1, "Caja 1", decimal.NewFromInt(500), decimal.NewFromInt(500), nil, managerID, "ACTIVE")
}

func TestGormCashRegisterRepository_FindByID(t *testing.T) {
	t.Run("finds existing register", func(t *testing.T) {
		gormDB, mock, mockDB := newMockDB(t)
		defer mockDB.Close()
		repo := NewGormCashRegisterRepository(gormDB)

		registerID := uuid.New()
		managerID := uuid.New()

		mock.ExpectQuery(`SELECT \* FROM "cash_registers" WHERE id = \$1 ORDER BY .* LIMIT .*`).
			WithArgs(registerID, 1).
			WillReturnRows(registerRows(registerID, managerID))

		register, err := repo.FindByID(context.Background(), registerID)

		require.NoError(t, err)
		require.NotNil(t, register)
		assert.Equal(t, registerID, register.ID)
		assert.Equal(t, "Caja 1", register.Name)
		assert.True(t, register.Balance.Equal(decimal.NewFromInt(500)))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns nil for missing register", func(t *testing.T) {
		gormDB, mock, mockDB := newMockDB(t)
		defer mockDB.Close()
		repo := NewGormCashRegisterRepository(gormDB)

		registerID := uuid.New()

		mock.ExpectQuery(`SELECT \* FROM "cash_registers" WHERE id = \$1 ORDER BY .* LIMIT .*`).
			WithArgs(registerID, 1).
			WillReturnError(gorm.ErrRecordNotFound)

		register, err := repo.FindByID(context.Background(), registerID)

		require.NoError(t, err)
		assert.Nil(t, register)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormCashRegisterRepository_FindByName(t *testing.T) {
	t.Run("finds register by unique name", func(t *testing.T) {
		gormDB, mock, mockDB := newMockDB(t)
		defer mockDB.Close()
		repo := NewGormCashRegisterRepository(gormDB)

		registerID := uuid.New()

		mock.ExpectQuery(`SELECT \* FROM "cash_registers" WHERE name = \$1 ORDER BY .* LIMIT .*`).
			WithArgs("Caja 1", 1).
			WillReturnRows(registerRows(registerID, uuid.New()))

		register, err := repo.FindByName(context.Background(), "Caja 1")

		require.NoError(t, err)
		require.NotNil(t, register)
		assert.Equal(t, "Caja 1", register.Name)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormCashRegisterRepository_SaveWithLock(t *testing.T) {
	t.Run("version conflict is reported", func(t *testing.T) {
		gormDB, mock, mockDB := newMockDB(t)
		defer mockDB.Close()
		repo := NewGormCashRegisterRepository(gormDB)

		register, err := cashdrawer.OpenRegister("Caja 1", valueobject.ZeroMXN(), uuid.New())
		require.NoError(t, err)
		require.NoError(t, register.Close()) // version is now 2, stored row must hold 1

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT "version" FROM "cash_registers" WHERE id = \$1 ORDER BY .* LIMIT .*`).
			WithArgs(register.ID, 1).
			WillReturnRows(sqlmock.NewRows([]string{"version"}).AddRow(5))
		mock.ExpectRollback()

		err = repo.SaveWithLock(context.Background(), register)

		require.Error(t, err)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, cashdrawer.ErrCodeConcurrentModification, domainErr.Code)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormCashRegisterRepository_Count(t *testing.T) {
	t.Run("counts with search filter", func(t *testing.T) {
		gormDB, mock, mockDB := newMockDB(t)
		defer mockDB.Close()
		repo := NewGormCashRegisterRepository(gormDB)

		mock.ExpectQuery(`SELECT count\(\*\) FROM "cash_registers" WHERE name ILIKE \$1`).
			WithArgs("%Caja%").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

		count, err := repo.Count(context.Background(), shared.Filter{Search: "Caja"})

		require.NoError(t, err)
		assert.EqualValues(t, 3, count)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestSortValidation(t *testing.T) {
	assert.Equal(t, "ASC", ValidateSortOrder("asc"))
	assert.Equal(t, "DESC", ValidateSortOrder("drop table"))
	assert.Equal(t, "name", ValidateSortField("name", RegisterSortFields, "created_at"))
	assert.Equal(t, "created_at", ValidateSortField("name; --", RegisterSortFields, "created_at"))
}
