package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"madchef/internal/cache"
	"madchef/internal/domain"
	"madchef/internal/domain/models"
	"madchef/internal/external"
	"madchef/internal/query"
	"madchef/internal/repositories"
)

var (
	recipeRowColumns  = []string{"id", "title", "ingredients", "method", "img", "img_id", "img_title", "region", "likes", "status", "author_id", "created_at", "updated_at"}
	studentRowColumns = []string{"id", "name", "email", "email_verified", "role", "pkg", "img", "img_id", "created_at", "updated_at"}
)

func recipeRow(id, author uuid.UUID, status domain.RecipeStatus, imgID string) *sqlmock.Rows {
	now := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)
	return sqlmock.NewRows(recipeRowColumns).
		AddRow(id.String(), "Pho", `["noodles"]`, "simmer", "", imgID, "", "Asia", 2, string(status), author.String(), now, now)
}

func studentRC(id uuid.UUID, pkg domain.Package) domain.RequestContext {
	return domain.RequestContext{Claims: &domain.Claims{UserID: id, Email: "s@example.com", Role: domain.RoleStudent, Package: pkg}}
}

func chefRC(id uuid.UUID) domain.RequestContext {
	return domain.RequestContext{Claims: &domain.Claims{UserID: id, Role: domain.RoleChef}}
}

func adminRC() domain.RequestContext {
	return domain.RequestContext{Claims: &domain.Claims{UserID: uuid.New(), Role: domain.RoleAdmin}}
}

func TestListParamsPlanUsesResourceDefaults(t *testing.T) {
	d := listDefaults{Page: query.PageConfig{DefaultPageSize: 12, MaxPageSize: 50}, Sort: "updatedAt", Order: query.DescendingToken}

	plan, page := ListParams{}.plan(d, nil, nil)
	assert.Equal(t, 12, page.Limit())
	assert.Equal(t, []query.SortKey{{Field: "updatedAt", Direction: query.Descending}}, plan.Sort().Keys())

	plan, page = ListParams{Sort: "title", Order: "asc", Page: "3", Limit: "500"}.plan(d, nil, nil)
	assert.Equal(t, 50, page.Limit())
	assert.Equal(t, 100, page.Skip())
	assert.Equal(t, []query.SortKey{{Field: "title", Direction: query.Ascending}}, plan.Sort().Keys())
}

func TestInvalidMapsOzzoErrors(t *testing.T) {
	err := invalid(RecipeInput{Title: "Soup"}.Validate())
	require.Error(t, err)
	var verr domain.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "ingredients", verr.Field)

	assert.NoError(t, invalid(nil))
}

func TestRequireSelf(t *testing.T) {
	id := uuid.New()
	assert.NoError(t, requireSelf(studentRC(id, domain.PackageBasic), id.String()))
	assert.True(t, domain.IsForbidden(requireSelf(studentRC(id, domain.PackageBasic), uuid.NewString())))
	assert.True(t, domain.IsUnauthorized(requireSelf(domain.RequestContext{}, id.String())))
	assert.NoError(t, requireSelfOrAdmin(adminRC(), id.String()))
}

func TestParseRecipeFilter(t *testing.T) {
	f, err := ParseRecipeFilter("")
	require.NoError(t, err)
	assert.Empty(t, f.filters())

	_, err = ParseRecipeFilter("{not json")
	assert.True(t, domain.IsValidation(err))

	_, err = ParseRecipeFilter(`{"chefId":"nope"}`)
	assert.True(t, domain.IsValidation(err))

	chef := uuid.New()
	f, err = ParseRecipeFilter(`{"searchQuery":" pie ","chefId":"` + chef.String() + `","region":"Asia","uploadDate":"This Month"}`)
	require.NoError(t, err)
	names := []string{}
	for _, fl := range f.filters() {
		names = append(names, fl.Name)
	}
	assert.Equal(t, []string{"search", "author", "region", "uploadDate"}, names)

	f, err = ParseRecipeFilter(`{"uploadDate":"last decade"}`)
	require.NoError(t, err)
	assert.Empty(t, f.filters())
}

func TestRecipeCreateRequiresChef(t *testing.T) {
	media := &fakeMedia{}
	svc := &RecipeService{Media: media, Cache: cache.Nop{}}
	_, err := svc.Create(context.Background(), studentRC(uuid.New(), domain.PackagePro), RecipeInput{ImgID: "recipes/x"})
	assert.True(t, domain.IsForbidden(err))
	assert.Empty(t, media.destroyed)
}

func TestRecipeCreateCleansUpImageOnInvalidInput(t *testing.T) {
	media := &fakeMedia{}
	svc := &RecipeService{Media: media, Cache: cache.Nop{}}
	_, err := svc.Create(context.Background(), chefRC(uuid.New()), RecipeInput{Title: "Soup", ImgID: "recipes/x"})
	assert.True(t, domain.IsValidation(err))
	assert.Equal(t, []string{"recipes/x"}, media.destroyed)
}

func TestRecipeCreateCleansUpImageWhenStoreFails(t *testing.T) {
	bdb, mock := newMockDB(t)
	mock.ExpectBegin()
	mock.ExpectQuery("FROM `chefs` AS `chef`").WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectRollback()

	media := &fakeMedia{}
	svc := &RecipeService{
		DB:      bdb,
		Recipes: repositories.NewRecipeRepository(bdb),
		Chefs:   repositories.NewChefRepository(bdb),
		Media:   media,
		Cache:   cache.Nop{},
	}
	in := RecipeInput{Title: "Soup", Ingredients: []string{"water"}, Method: "boil", ImgID: "recipes/x"}
	_, err := svc.Create(context.Background(), chefRC(uuid.New()), in)
	assert.True(t, domain.IsNotFound(err))
	assert.Equal(t, []string{"recipes/x"}, media.destroyed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecipeDeletePermissions(t *testing.T) {
	bdb, mock := newMockDB(t)
	id, author := uuid.New(), uuid.New()
	media := &fakeMedia{}
	svc := &RecipeService{Recipes: repositories.NewRecipeRepository(bdb), Media: media, Cache: cache.Nop{}}

	// a chef who is not the author
	mock.ExpectQuery("FROM `recipes` AS `recipe`").WillReturnRows(recipeRow(id, author, domain.RecipePending, "recipes/a"))
	err := svc.Delete(context.Background(), chefRC(uuid.New()), id.String())
	assert.True(t, domain.IsValidation(err))

	// an admin on a published recipe
	mock.ExpectQuery("FROM `recipes` AS `recipe`").WillReturnRows(recipeRow(id, author, domain.RecipePublished, "recipes/a"))
	err = svc.Delete(context.Background(), adminRC(), id.String())
	assert.True(t, domain.IsValidation(err))

	// an admin on a rejected recipe
	mock.ExpectQuery("FROM `recipes` AS `recipe`").WillReturnRows(recipeRow(id, author, domain.RecipeRejected, "recipes/a"))
	mock.ExpectExec("DELETE FROM `recipes`").WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, svc.Delete(context.Background(), adminRC(), id.String()))
	assert.Equal(t, []string{"recipes/a"}, media.destroyed)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecipeEditOnlyByAuthor(t *testing.T) {
	bdb, mock := newMockDB(t)
	id, author := uuid.New(), uuid.New()
	svc := &RecipeService{Recipes: repositories.NewRecipeRepository(bdb), Cache: cache.Nop{}}
	title := "Better pho"

	mock.ExpectQuery("FROM `recipes` AS `recipe`").WillReturnRows(recipeRow(id, author, domain.RecipePublished, ""))
	_, err := svc.Edit(context.Background(), chefRC(uuid.New()), id.String(), RecipePatch{Title: &title})
	assert.True(t, domain.IsForbidden(err))

	mock.ExpectQuery("FROM `recipes` AS `recipe`").WillReturnRows(recipeRow(id, author, domain.RecipePublished, ""))
	mock.ExpectExec("UPDATE `recipes`").WillReturnResult(sqlmock.NewResult(0, 1))
	rec, err := svc.Edit(context.Background(), chefRC(author), id.String(), RecipePatch{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, "Better pho", rec.Title)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecipeSetStatusValidates(t *testing.T) {
	svc := &RecipeService{Cache: cache.Nop{}}
	_, err := svc.SetStatus(context.Background(), adminRC(), uuid.NewString(), "archived")
	assert.True(t, domain.IsValidation(err))

	_, err = svc.SetStatus(context.Background(), chefRC(uuid.New()), uuid.NewString(), domain.RecipePublished)
	assert.True(t, domain.IsForbidden(err))
}

func TestAddLikeUpdatesCounterInTransaction(t *testing.T) {
	bdb, mock := newMockDB(t)
	student, recipe := uuid.New(), uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery("FROM `recipes` AS `recipe`").WillReturnRows(recipeRow(recipe, uuid.New(), domain.RecipePublished, ""))
	mock.ExpectExec("INSERT INTO `likes`").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE `recipes` SET likes = GREATEST\\(likes \\+ 1, 0\\)").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	svc := &EngagementService{
		DB:         bdb,
		RecipeRepo: repositories.NewRecipeRepository(bdb),
		LikeRepo:   repositories.NewLikeRepository(bdb),
		Cache:      cache.Nop{},
	}
	like, err := svc.AddLike(context.Background(), studentRC(student, domain.PackageBasic), student.String(), recipe.String())
	require.NoError(t, err)
	assert.Equal(t, recipe, like.RecipeID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAddLikeRejectsOtherStudent(t *testing.T) {
	svc := &EngagementService{Cache: cache.Nop{}}
	_, err := svc.AddLike(context.Background(), studentRC(uuid.New(), domain.PackageBasic), uuid.NewString(), uuid.NewString())
	assert.True(t, domain.IsForbidden(err))
}

func TestUpgradePackageRequiresReceipt(t *testing.T) {
	bdb, mock := newMockDB(t)
	mock.ExpectBegin()
	mock.ExpectQuery("(?i)SELECT count\\(\\*\\) FROM `payment_receipts`").WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectRollback()

	svc := &StudentService{
		DB:       bdb,
		Students: repositories.NewStudentRepository(bdb),
		Payments: repositories.NewPaymentRepository(bdb),
		Tokens:   repositories.NewRefreshTokenRepository(bdb),
		Issuer:   testIssuer(),
	}
	_, err := svc.UpgradePackage(context.Background(), studentRC(uuid.New(), domain.PackageBasic))
	assert.True(t, domain.IsValidation(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpgradePackageRotatesTokens(t *testing.T) {
	bdb, mock := newMockDB(t)
	mock.ExpectBegin()
	mock.ExpectQuery("(?i)SELECT count\\(\\*\\) FROM `payment_receipts`").WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectExec("UPDATE `students`").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO `refresh_tokens`").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	issuer := testIssuer()
	svc := &StudentService{
		DB:       bdb,
		Students: repositories.NewStudentRepository(bdb),
		Payments: repositories.NewPaymentRepository(bdb),
		Tokens:   repositories.NewRefreshTokenRepository(bdb),
		Issuer:   issuer,
	}
	res, err := svc.UpgradePackage(context.Background(), studentRC(uuid.New(), domain.PackageBasic))
	require.NoError(t, err)
	assert.True(t, res.Updated)
	require.NotNil(t, res.Tokens)
	claims, err := issuer.ParseAccess(res.Tokens.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, domain.PackagePro, claims.Package)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookConsultOnlyForPro(t *testing.T) {
	svc := &ConsultService{}
	_, err := svc.Book(context.Background(), studentRC(uuid.New(), domain.PackageBasic), ConsultInput{})
	assert.True(t, domain.IsForbidden(err))

	_, err = svc.Book(context.Background(), studentRC(uuid.New(), domain.PackagePro),
		ConsultInput{ChefID: uuid.NewString(), Date: "2026-10-20", StartTime: "10:00", EndTime: "09:00"})
	assert.True(t, domain.IsValidation(err))
}

func TestConsultMoveRejectsInvalidTransition(t *testing.T) {
	svc := &ConsultService{}
	_, err := svc.move(context.Background(), &models.Consult{ID: uuid.New(), Status: domain.ConsultCompleted}, domain.ConsultAccepted)
	assert.True(t, domain.IsValidation(err))
}

func TestConsultMoveDetectsConcurrentChange(t *testing.T) {
	bdb, mock := newMockDB(t)
	mock.ExpectExec("UPDATE `consults`").WillReturnResult(sqlmock.NewResult(0, 0))

	svc := &ConsultService{Consults: repositories.NewConsultRepository(bdb)}
	_, err := svc.move(context.Background(), &models.Consult{ID: uuid.New(), Status: domain.ConsultPending}, domain.ConsultAccepted)
	assert.True(t, domain.IsConflict(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAuthenticateExistingStudent(t *testing.T) {
	bdb, mock := newMockDB(t)
	id := uuid.New()
	now := time.Now().UTC()
	mock.ExpectQuery("FROM `students` AS `student`").WillReturnRows(sqlmock.NewRows(studentRowColumns).
		AddRow(id.String(), "Sam", "sam@example.com", true, "student", "basic", "", "", now, now))
	mock.ExpectExec("INSERT INTO `refresh_tokens`").WillReturnResult(sqlmock.NewResult(0, 1))

	issuer := testIssuer()
	svc := &AuthService{
		Accounts: repositories.NewAccountRepository(bdb),
		Students: repositories.NewStudentRepository(bdb),
		Tokens:   repositories.NewRefreshTokenRepository(bdb),
		Identity: fakeIdentity{ident: &external.Identity{UID: "uid-1", Email: "sam@example.com", EmailVerified: true}},
		Issuer:   issuer,
	}
	res, err := svc.Authenticate(context.Background(), "id-token", false)
	require.NoError(t, err)
	assert.False(t, res.Registered)
	assert.Equal(t, id, res.User.UserID)
	assert.Equal(t, domain.RoleStudent, res.User.Role)
	require.NotNil(t, res.Tokens)

	claims, jti, err := issuer.ParseRefresh(res.Tokens.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, id, claims.UserID)
	assert.True(t, MatchRefresh(res.Tokens.RefreshHash, jti))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAuthenticateRegistersNewStudent(t *testing.T) {
	bdb, mock := newMockDB(t)
	mock.ExpectQuery("FROM `students` AS `student`").WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectQuery("FROM `chefs` AS `chef`").WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectQuery("FROM `admins` AS `admin`").WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectExec("INSERT INTO `students`").WillReturnResult(sqlmock.NewResult(0, 1))

	svc := &AuthService{
		Accounts: repositories.NewAccountRepository(bdb),
		Students: repositories.NewStudentRepository(bdb),
		Tokens:   repositories.NewRefreshTokenRepository(bdb),
		Identity: fakeIdentity{ident: &external.Identity{UID: "uid-2", Email: "new@example.com", Name: "  New   Cook "}},
		Issuer:   testIssuer(),
	}
	res, err := svc.Authenticate(context.Background(), "id-token", true)
	require.NoError(t, err)
	assert.True(t, res.Registered)
	assert.Nil(t, res.Tokens)
	assert.Equal(t, domain.PackageBasic, res.User.Package)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAuthenticateRejectsBadIdentity(t *testing.T) {
	svc := &AuthService{Identity: fakeIdentity{err: external.ErrInvalidIDToken}}
	_, err := svc.Authenticate(context.Background(), "bad", false)
	assert.True(t, domain.IsUnauthorized(err))

	_, err = svc.Authenticate(context.Background(), " ", false)
	assert.True(t, domain.IsUnauthorized(err))
}

func TestSaveReceiptUsesProcessorAmount(t *testing.T) {
	bdb, mock := newMockDB(t)
	id := uuid.New()
	now := time.Now().UTC()
	mock.ExpectQuery("FROM `students` AS `student`").WillReturnRows(sqlmock.NewRows(studentRowColumns).
		AddRow(id.String(), "Sam", "sam@example.com", true, "student", "basic", "", "", now, now))
	mock.ExpectExec("INSERT INTO `payment_receipts`").WillReturnResult(sqlmock.NewResult(0, 1))

	svc := &PaymentService{
		Payments:  repositories.NewPaymentRepository(bdb),
		Students:  repositories.NewStudentRepository(bdb),
		Processor: fakeProcessor{intent: &external.PaymentIntent{ID: "pi_9", Amount: 1999, Status: "succeeded"}},
	}
	m, err := svc.SaveReceipt(context.Background(), studentRC(id, domain.PackageBasic), ReceiptInput{TransactionID: "pi_9", Title: domain.ReceiptProPackage})
	require.NoError(t, err)
	assert.Equal(t, int64(1999), m.Amount)
	assert.Equal(t, domain.PaymentSucceeded, m.Status)
	assert.Equal(t, "Sam", m.Username)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveReceiptUnknownIntent(t *testing.T) {
	svc := &PaymentService{Processor: fakeProcessor{err: external.ErrIntentNotFound}}
	_, err := svc.SaveReceipt(context.Background(), studentRC(uuid.New(), domain.PackageBasic), ReceiptInput{TransactionID: "pi_x", Title: domain.ReceiptChefSupport})
	assert.True(t, domain.IsValidation(err))
}

func TestCreateIntentValidatesTitle(t *testing.T) {
	svc := &PaymentService{Processor: fakeProcessor{}}
	_, err := svc.CreateIntent(context.Background(), studentRC(uuid.New(), domain.PackageBasic), IntentInput{Amount: 1000, Title: "gift"})
	assert.True(t, domain.IsValidation(err))

	secret, err := svc.CreateIntent(context.Background(), studentRC(uuid.New(), domain.PackageBasic), IntentInput{Amount: 1000, Title: domain.ReceiptProPackage})
	require.NoError(t, err)
	assert.Equal(t, "pi_1_secret", secret)
}

func TestBuildReceiptPDF(t *testing.T) {
	r := &models.PaymentReceipt{
		ID:            uuid.New(),
		Username:      "Sam Cook",
		Email:         "sam@example.com",
		Title:         domain.ReceiptProPackage,
		TransactionID: "pi_1",
		Amount:        1999,
		Status:        domain.PaymentSucceeded,
		CreatedAt:     time.Now(),
	}
	pdf, name, err := buildReceiptPDF(r)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(pdf), "%PDF"))
	assert.True(t, strings.HasSuffix(name, "_Sam_Cook.pdf"))
}

func TestSubscribeRejectsDuplicates(t *testing.T) {
	bdb, mock := newMockDB(t)
	mock.ExpectQuery("(?i)SELECT count\\(\\*\\) FROM `newsletter_subscribers`").WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	svc := &NewsletterService{Subscribers: repositories.NewNewsletterRepository(bdb)}
	_, err := svc.Subscribe(context.Background(), domain.RequestContext{}, SubscribeInput{Email: "Sam@Example.com"})
	assert.True(t, domain.IsConflict(err))

	_, err = svc.Subscribe(context.Background(), domain.RequestContext{}, SubscribeInput{Email: "not-an-email"})
	assert.True(t, domain.IsValidation(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDecideRequiresVerifiedEmail(t *testing.T) {
	bdb, mock := newMockDB(t)
	appID, userID := uuid.New(), uuid.New()
	now := time.Now().UTC()

	mock.ExpectBegin()
	mock.ExpectQuery("FROM `role_applications` AS `application`").WillReturnRows(
		sqlmock.NewRows([]string{"id", "user_id", "role", "status", "created_at", "updated_at"}).
			AddRow(appID.String(), userID.String(), "chef", "pending", now, now))
	mock.ExpectQuery("FROM `students` AS `student`").WillReturnRows(sqlmock.NewRows(studentRowColumns).
		AddRow(userID.String(), "Sam", "sam@example.com", false, "student", "basic", "", "", now, now))
	mock.ExpectRollback()

	svc := &RoleService{
		DB:           bdb,
		Applications: repositories.NewRoleApplicationRepository(bdb),
		Students:     repositories.NewStudentRepository(bdb),
		Chefs:        repositories.NewChefRepository(bdb),
		Admins:       repositories.NewAdminRepository(bdb),
		Tokens:       repositories.NewRefreshTokenRepository(bdb),
	}
	_, err := svc.Decide(context.Background(), adminRC(), appID.String(), domain.ApplicationAccepted)
	assert.True(t, domain.IsValidation(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDecideAcceptPromotesStudent(t *testing.T) {
	bdb, mock := newMockDB(t)
	appID, userID := uuid.New(), uuid.New()
	now := time.Now().UTC()

	mock.ExpectBegin()
	mock.ExpectQuery("FROM `role_applications` AS `application`").WillReturnRows(
		sqlmock.NewRows([]string{"id", "user_id", "role", "status", "created_at", "updated_at"}).
			AddRow(appID.String(), userID.String(), "chef", "pending", now, now))
	mock.ExpectQuery("FROM `students` AS `student`").WillReturnRows(sqlmock.NewRows(studentRowColumns).
		AddRow(userID.String(), "Sam", "sam@example.com", true, "student", "basic", "", "", now, now))
	mock.ExpectExec("INSERT INTO `chefs`").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM `students`").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM `refresh_tokens`").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE `role_applications`").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	svc := &RoleService{
		DB:           bdb,
		Applications: repositories.NewRoleApplicationRepository(bdb),
		Students:     repositories.NewStudentRepository(bdb),
		Chefs:        repositories.NewChefRepository(bdb),
		Admins:       repositories.NewAdminRepository(bdb),
		Tokens:       repositories.NewRefreshTokenRepository(bdb),
	}
	app, err := svc.Decide(context.Background(), adminRC(), appID.String(), domain.ApplicationAccepted)
	require.NoError(t, err)
	assert.Equal(t, domain.ApplicationAccepted, app.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}
