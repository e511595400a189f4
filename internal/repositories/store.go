package repositories

import (
	"context"
	"database/sql"

	"github.com/uptrace/bun"

	"madchef/internal/db"
	"madchef/internal/domain/models"
	"madchef/internal/query"
)

// List sources: which table, under which alias, and which API fields map
// to which columns.
var (
	RecipeSource          = db.Source{Table: "recipes", Alias: "recipe", Key: "id", Fields: models.RecipeFields}
	StudentSource         = db.Source{Table: "students", Alias: "student", Key: "id", Fields: models.StudentFields}
	ChefSource            = db.Source{Table: "chefs", Alias: "chef", Key: "id", Fields: models.ChefFields}
	RatingSource          = db.Source{Table: "ratings", Alias: "rating", Key: "id", Fields: models.RatingFields}
	ChefReviewSource      = db.Source{Table: "chef_reviews", Alias: "review", Key: "id", Fields: models.ChefReviewFields}
	ConsultSource         = db.Source{Table: "consults", Alias: "consult", Key: "id", Fields: models.ConsultFields}
	ReceiptSource         = db.Source{Table: "payment_receipts", Alias: "receipt", Key: "id", Fields: models.PaymentReceiptFields}
	RoleApplicationSource = db.Source{Table: "role_applications", Alias: "application", Key: "id", Fields: models.RoleApplicationFields}
)

// Computed fields shared by list and detail reads.
var (
	RecipeRating = query.ComputedField{
		From:       "ratings",
		LocalKey:   "id",
		ForeignKey: "recipe_id",
		Reduction:  query.Average,
		Outputs:    []query.Output{{Name: "rating", Column: "rating", Field: "rating"}},
		Precision:  2,
	}
	ChefRating = query.ComputedField{
		From:       "chef_reviews",
		LocalKey:   "id",
		ForeignKey: "chef_id",
		Reduction:  query.Average,
		Outputs:    []query.Output{{Name: "rating", Column: "rating", Field: "rating"}},
		Precision:  2,
	}
	Reviewer = query.ComputedField{
		From:       "students",
		LocalKey:   "student_id",
		ForeignKey: "id",
		Reduction:  query.First,
		Outputs: []query.Output{
			{Name: "studentName", Column: "student_name", Field: "name"},
			{Name: "studentImg", Column: "student_img", Field: "img"},
		},
	}
)

// RecipeRatingWithCount adds the number of ratings to RecipeRating.
func RecipeRatingWithCount() query.ComputedField {
	cf := RecipeRating
	cf.CountAs = &query.Output{Name: "ratingCount", Column: "rating_count"}
	return cf
}

func insert[T any](ctx context.Context, idb bun.IDB, model *T) error {
	_, err := idb.NewInsert().Model(model).Exec(ctx)
	return err
}

// getByPK loads model by its primary key, which must already be set.
func getByPK[T any](ctx context.Context, idb bun.IDB, model *T) error {
	return idb.NewSelect().Model(model).WherePK().Limit(1).Scan(ctx)
}

// deleteByPK deletes model by its primary key and reports sql.ErrNoRows
// when nothing matched.
func deleteByPK[T any](ctx context.Context, idb bun.IDB, model *T) error {
	res, err := idb.NewDelete().Model(model).WherePK().Exec(ctx)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// first runs plan as a single-row read through the list renderer.
func first[T any](ctx context.Context, idb bun.IDB, src db.Source, plan query.Plan) (*T, error) {
	var rows []T
	if err := db.SelectQuery(idb, src, plan).Scan(ctx, &rows); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, sql.ErrNoRows
	}
	return &rows[0], nil
}

// byID is the filter selecting one row of src.
func byID(src db.Source, id any) query.Filter {
	return query.Filter{Name: "id", Expr: "? = ?", Args: []any{bun.Ident(src.Alias + "." + src.Key), id}}
}
