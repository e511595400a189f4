package db

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/mysqldialect"

	"madchef/internal/domain"
	"madchef/internal/query"
)

type recipeRow struct {
	ID     string   `bun:"id"`
	Title  string   `bun:"title"`
	Rating *float64 `bun:"rating,scanonly"`
}

var recipes = Source{
	Table: "recipes",
	Alias: "recipe",
	Key:   "id",
	Fields: map[string]string{
		"id":        "id",
		"title":     "title",
		"updatedAt": "updated_at",
		"status":    "status",
	},
}

func ratingAverage() *query.ComputedField {
	return &query.ComputedField{
		From:       "ratings",
		LocalKey:   "id",
		ForeignKey: "recipe_id",
		Reduction:  query.Average,
		Outputs:    []query.Output{{Name: "rating", Column: "rating", Field: "rating"}},
		Precision:  2,
	}
}

func newMockDB(t *testing.T) (*bun.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqldb, mock, err := sqlmock.New()
	require.NoError(t, err)
	bdb := bun.NewDB(sqldb, mysqldialect.New())
	t.Cleanup(func() { _ = bdb.Close() })
	return bdb, mock
}

func TestSelectQueryComputesAfterPage(t *testing.T) {
	bdb, _ := newMockDB(t)
	plan := query.BuildPlan(
		[]query.Filter{{Expr: "recipe.status = ?", Args: []any{"published"}}},
		ratingAverage(),
		query.BuildSort("updatedAt", "desc", ""),
		query.PageRequest{Number: 2, Size: 10},
		query.Projection{},
	)

	sql := SelectQuery(bdb, recipes, plan).String()

	assert.Contains(t, sql, "FROM (SELECT `recipe`.* FROM `recipes` AS `recipe`")
	assert.Contains(t, sql, "'published'")
	assert.Contains(t, sql, "ORDER BY `recipe`.`updated_at` DESC, `recipe`.`id` ASC LIMIT 10 OFFSET 10) AS `page`")
	assert.Contains(t, sql, "ROUND(AVG(`rel`.`rating`), 2)")
	assert.Contains(t, sql, "WHERE (`rel`.`recipe_id` = `page`.`id`)")
	assert.Contains(t, sql, "ORDER BY `page`.`updated_at` DESC, `page`.`id` ASC")
}

func TestSelectQueryComputesBeforeSortOnComputedKey(t *testing.T) {
	bdb, _ := newMockDB(t)
	plan := query.BuildPlan(nil, ratingAverage(), query.BuildSort("rating", "desc", ""),
		query.PageRequest{Number: 1, Size: 5}, query.Projection{})

	sql := SelectQuery(bdb, recipes, plan).String()

	assert.NotContains(t, sql, "AS `page`")
	assert.Contains(t, sql, "WHERE (`rel`.`recipe_id` = `recipe`.`id`)) AS `rating`")
	assert.Contains(t, sql, "ORDER BY `rating` DESC, `recipe`.`id` ASC LIMIT 5")
	assert.NotContains(t, sql, "OFFSET")
}

func TestSelectQueryProjectsKnownColumns(t *testing.T) {
	bdb, _ := newMockDB(t)
	plan := query.BuildPlan(nil, nil, query.BuildSort("updatedAt,bogus", "", ""),
		query.PageRequest{Number: 1, Size: 10}, query.BuildProjection("title,password", ""))

	sql := SelectQuery(bdb, recipes, plan).String()

	assert.Contains(t, sql, "SELECT `recipe`.`id`, `recipe`.`title`, `recipe`.`updated_at` FROM `recipes` AS `recipe`")
	assert.NotContains(t, sql, "password")
	assert.NotContains(t, sql, "bogus")
	assert.Contains(t, sql, "ORDER BY `recipe`.`updated_at` ASC, `recipe`.`id` ASC")
}

func TestCountQueryUsesFiltersOnly(t *testing.T) {
	bdb, _ := newMockDB(t)
	plan := query.BuildPlan(
		[]query.Filter{
			{Expr: "author.name LIKE ?", Args: []any{"%pie%"}, Joins: []string{"LEFT JOIN chefs AS author ON author.id = recipe.author_id"}},
			{Expr: "recipe.region = ?", Args: []any{"Asia"}, Joins: []string{"LEFT JOIN chefs AS author ON author.id = recipe.author_id"}},
		},
		ratingAverage(), query.BuildSort("rating", "desc", ""), query.PageRequest{Number: 3, Size: 10}, query.Projection{},
	)

	sql := CountQuery(bdb, recipes, plan).String()

	assert.Equal(t,
		"SELECT COUNT(*) FROM `recipes` AS `recipe` LEFT JOIN chefs AS author ON author.id = recipe.author_id "+
			"WHERE (author.name LIKE '%pie%') AND (recipe.region = 'Asia')",
		sql)
}

func TestRunListEmptyResult(t *testing.T) {
	bdb, mock := newMockDB(t)
	mock.MatchExpectationsInOrder(false)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM `recipes`")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery("SELECT `page`.\\*, \\(SELECT ROUND").
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "rating"}))

	plan := query.BuildPlan(nil, ratingAverage(), query.BuildSort("title", "", ""),
		query.PageRequest{Number: 1, Size: 10}, query.Projection{})
	rows, total, err := RunList[recipeRow](context.Background(), bdb, recipes, plan)

	require.NoError(t, err)
	assert.NotNil(t, rows)
	assert.Empty(t, rows)
	assert.Zero(t, total)
	assert.Nil(t, query.RenderPageDescriptor(query.PageRequest{Number: 1, Size: 10}, total))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRunListNullAverage(t *testing.T) {
	bdb, mock := newMockDB(t)
	mock.MatchExpectationsInOrder(false)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM `recipes`")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))
	mock.ExpectQuery("SELECT `page`.\\*, \\(SELECT ROUND").
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "rating"}).
			AddRow("a", "Soup", nil).
			AddRow("b", "Stew", 4.25))

	plan := query.BuildPlan(nil, ratingAverage(), query.BuildSort("title", "", ""),
		query.PageRequest{Number: 1, Size: 10}, query.Projection{})
	rows, total, err := RunList[recipeRow](context.Background(), bdb, recipes, plan)

	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, int64(2), total)
	assert.Nil(t, rows[0].Rating)
	require.NotNil(t, rows[1].Rating)
	assert.InDelta(t, 4.25, *rows[1].Rating, 1e-9)
}

func TestRunListPropagatesStoreErrors(t *testing.T) {
	bdb, mock := newMockDB(t)
	mock.MatchExpectationsInOrder(false)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM `recipes`")).WillReturnError(errors.New("connection refused"))
	mock.ExpectQuery("SELECT `recipe`.\\* FROM `recipes`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "title"}))

	plan := query.BuildPlan(nil, nil, query.BuildSort("title", "", ""), query.PageRequest{Number: 1, Size: 10}, query.Projection{})
	_, _, err := RunList[recipeRow](context.Background(), bdb, recipes, plan)
	assert.Error(t, err)
}

func TestClassify(t *testing.T) {
	assert.Nil(t, Classify("recipe", nil))
	assert.True(t, domain.IsNotFound(Classify("recipe", sql.ErrNoRows)))
	assert.True(t, domain.IsConflict(Classify("rating", &mysql.MySQLError{Number: 1062, Message: "Duplicate entry"})))
	assert.True(t, domain.IsInternal(Classify("recipe", errors.New("timeout"))))

	forbidden := domain.ForbiddenError{Msg: "nope"}
	assert.Equal(t, forbidden, Classify("recipe", forbidden))
}

func TestIsTransient(t *testing.T) {
	assert.True(t, IsTransient(&mysql.MySQLError{Number: 1213}))
	assert.True(t, IsTransient(&mysql.MySQLError{Number: 1205}))
	assert.False(t, IsTransient(&mysql.MySQLError{Number: 1062}))
	assert.False(t, IsTransient(errors.New("x")))
}
