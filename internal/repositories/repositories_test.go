package repositories

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/mysqldialect"

	"madchef/internal/domain"
	"madchef/internal/domain/models"
	"madchef/internal/query"
)

func newMockDB(t *testing.T) (*bun.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqldb, mock, err := sqlmock.New()
	require.NoError(t, err)
	bdb := bun.NewDB(sqldb, mysqldialect.New())
	t.Cleanup(func() { _ = bdb.Close() })
	return bdb, mock
}

var recipeColumns = []string{"id", "title", "ingredients", "method", "img", "img_id", "img_title", "region", "likes", "status", "author_id", "created_at", "updated_at", "rating"}

func TestRecipeListAppliesVisibilityAndRating(t *testing.T) {
	bdb, mock := newMockDB(t)
	mock.MatchExpectationsInOrder(false)

	id := uuid.New()
	author := uuid.New()
	now := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM `recipes` AS `recipe` WHERE (recipe.status = 'published')")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(11))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT `page`.*, (SELECT ROUND(AVG(`rel`.`rating`), 2) FROM `ratings` AS `rel`")).
		WillReturnRows(sqlmock.NewRows(recipeColumns).
			AddRow(id.String(), "Pho", `["noodles","beef"]`, "simmer", "", "", "", "Asia", 3, "published", author.String(), now, now, 4.5))

	visibility, ok := RecipeVisibility(domain.RoleStudent, uuid.Nil)
	require.True(t, ok)
	plan := query.BuildPlan([]query.Filter{visibility}, &RecipeRating,
		query.BuildSort("", "desc", "updatedAt"), query.PageRequest{Number: 2, Size: 10}, query.Projection{})

	rows, total, err := NewRecipeRepository(bdb).List(context.Background(), plan)
	require.NoError(t, err)
	assert.Equal(t, int64(11), total)
	require.Len(t, rows, 1)
	assert.Equal(t, id, rows[0].ID)
	assert.Equal(t, []string{"noodles", "beef"}, rows[0].Ingredients)
	require.NotNil(t, rows[0].Rating)
	assert.InDelta(t, 4.5, *rows[0].Rating, 1e-9)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecipeVisibility(t *testing.T) {
	_, ok := RecipeVisibility(domain.RoleAdmin, uuid.New())
	assert.False(t, ok)

	chef := uuid.New()
	f, ok := RecipeVisibility(domain.RoleChef, chef)
	require.True(t, ok)
	assert.Equal(t, []any{domain.RecipePublished, chef}, f.Args)

	f, ok = RecipeVisibility(domain.RoleAnonymous, uuid.Nil)
	require.True(t, ok)
	assert.Equal(t, []any{domain.RecipePublished}, f.Args)
}

func TestRecipeTextSearchJoinsAuthor(t *testing.T) {
	f := RecipeTextSearch("  Apple pie ")
	assert.Equal(t, []string{authorJoin}, f.Joins)
	assert.Equal(t, []any{"%Apple pie%", "%Apple pie%"}, f.Args)
}

func TestRecipeDetailNotFound(t *testing.T) {
	bdb, mock := newMockDB(t)
	mock.ExpectQuery("FROM `recipes` AS `recipe` WHERE").
		WillReturnRows(sqlmock.NewRows(recipeColumns))

	_, err := NewRecipeRepository(bdb).Detail(context.Background(), uuid.New(), query.Projection{})
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestRecipeAdjustLikes(t *testing.T) {
	bdb, mock := newMockDB(t)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE `recipes` SET likes = GREATEST(likes + -1, 0)")).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, NewRecipeRepository(bdb).AdjustLikes(context.Background(), uuid.New(), -1))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentSetPackageUnchanged(t *testing.T) {
	bdb, mock := newMockDB(t)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE `students` SET pkg = 'pro'")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	changed, err := NewStudentRepository(bdb).SetPackage(context.Background(), uuid.New(), domain.PackagePro)
	require.NoError(t, err)
	assert.False(t, changed)
}

func TestBookmarkRemoveMissing(t *testing.T) {
	bdb, mock := newMockDB(t)
	mock.ExpectExec("DELETE FROM `bookmarks`").WillReturnResult(sqlmock.NewResult(0, 0))

	err := NewBookmarkRepository(bdb).Remove(context.Background(), uuid.New(), uuid.New())
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestPaymentHasSucceeded(t *testing.T) {
	bdb, mock := newMockDB(t)
	mock.ExpectQuery("(?i)SELECT count\\(\\*\\) FROM `payment_receipts` AS `receipt`").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	ok, err := NewPaymentRepository(bdb).HasSucceeded(context.Background(), uuid.New(), domain.ReceiptProPackage)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRefreshTokenSaveUpserts(t *testing.T) {
	bdb, mock := newMockDB(t)
	mock.ExpectExec("INSERT INTO `refresh_tokens` .* ON DUPLICATE KEY UPDATE token_hash = VALUES\\(token_hash\\)").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := NewRefreshTokenRepository(bdb).Save(context.Background(), &models.RefreshToken{
		UserID:    uuid.New(),
		TokenHash: "hash",
		ExpiresAt: time.Now().Add(time.Hour),
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConsultSetStatusStale(t *testing.T) {
	bdb, mock := newMockDB(t)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE `consults` SET status = 'accepted'")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := NewConsultRepository(bdb).SetStatus(context.Background(), uuid.New(), domain.ConsultPending, domain.ConsultAccepted)
	assert.ErrorIs(t, err, sql.ErrNoRows)
}
