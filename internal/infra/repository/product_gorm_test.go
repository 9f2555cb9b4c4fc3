package repository_test

import (
	"context"
	"testing"
	"time"

	infrarepo "ecofinds/internal/infra/repository"
	repo "ecofinds/internal/repository"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// sqlmockをgormに差し込む。
// テストでは暗黙Txを切って期待SQLを単純にする
func newMockGorm(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = sqlDB.Close() })

	gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		SkipDefaultTransaction: true,
	})
	if err != nil {
		t.Fatalf("gorm.Open: %v", err)
	}
	return gdb, mock
}

func productColumns() []string {
	return []string{
		"id", "seller_id", "title", "description", "category",
		"price", "images", "is_active", "created_at", "updated_at", "deleted_at",
	}
}

func TestProductGormRepository_FindByID_Found(t *testing.T) {
	gdb, mock := newMockGorm(t)
	r := infrarepo.NewProductGormRepository(gdb)

	now := time.Now()
	rows := sqlmock.NewRows(productColumns()).
		AddRow(int64(10), int64(1), "Old bike", "well used", "Sports",
			int64(15000), "{}", true, now, now, nil)

	mock.ExpectQuery(`SELECT \* FROM "products" WHERE "products"\."id" = \$1`).
		WithArgs(int64(10), 1).
		WillReturnRows(rows)

	p, err := r.FindByID(context.Background(), 10)
	assert.NoError(t, err)
	assert.Equal(t, int64(10), p.ID)
	assert.Equal(t, "Old bike", p.Title)
	assert.Equal(t, int64(15000), p.Price)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductGormRepository_FindByID_NotFound(t *testing.T) {
	gdb, mock := newMockGorm(t)
	r := infrarepo.NewProductGormRepository(gdb)

	mock.ExpectQuery(`SELECT \* FROM "products" WHERE "products"\."id" = \$1`).
		WithArgs(int64(99), 1).
		WillReturnRows(sqlmock.NewRows(productColumns()))

	_, err := r.FindByID(context.Background(), 99)
	assert.ErrorIs(t, err, repo.ErrNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductGormRepository_ListPublic_FiltersActiveAndCategory(t *testing.T) {
	gdb, mock := newMockGorm(t)
	r := infrarepo.NewProductGormRepository(gdb)

	now := time.Now()
	rows := sqlmock.NewRows(productColumns()).
		AddRow(int64(2), int64(1), "Mug", "", "Kitchen", int64(500), "{}", true, now, now, nil)

	//is_activeとcategoryの両方で絞ること
	mock.ExpectQuery(`SELECT \* FROM "products" WHERE is_active = \$1 AND category = \$2`).
		WithArgs(true, "Kitchen").
		WillReturnRows(rows)

	out, err := r.ListPublic(context.Background(), repo.ProductListQuery{Category: "Kitchen"})
	assert.NoError(t, err)
	assert.Equal(t, 1, len(out))
	assert.Equal(t, "Mug", out[0].Title)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductGormRepository_ListPublic_KeywordSearch(t *testing.T) {
	gdb, mock := newMockGorm(t)
	r := infrarepo.NewProductGormRepository(gdb)

	//title/description両方にILIKEが掛かる
	mock.ExpectQuery(`SELECT \* FROM "products" WHERE is_active = \$1 AND \(title ILIKE \$2 OR description ILIKE \$3\)`).
		WithArgs(true, "%bike%", "%bike%").
		WillReturnRows(sqlmock.NewRows(productColumns()))

	out, err := r.ListPublic(context.Background(), repo.ProductListQuery{Q: "bike"})
	assert.NoError(t, err)
	assert.Equal(t, 0, len(out))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductGormRepository_SoftDelete_Success(t *testing.T) {
	gdb, mock := newMockGorm(t)
	r := infrarepo.NewProductGormRepository(gdb)

	//物理削除ではなくdeleted_at更新
	mock.ExpectExec(`UPDATE "products" SET "deleted_at"=`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := r.SoftDelete(context.Background(), 10)
	assert.NoError(t, err)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductGormRepository_SoftDelete_NotFound(t *testing.T) {
	gdb, mock := newMockGorm(t)
	r := infrarepo.NewProductGormRepository(gdb)

	mock.ExpectExec(`UPDATE "products" SET "deleted_at"=`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := r.SoftDelete(context.Background(), 99)
	assert.ErrorIs(t, err, repo.ErrNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}
