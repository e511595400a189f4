package services

import (
	"context"
	"errors"
	"io"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/uptrace/bun"
	"go.uber.org/zap"

	"madchef/internal/db"
	"madchef/internal/domain"
	"madchef/internal/domain/models"
	"madchef/internal/external"
	"madchef/internal/query"
	"madchef/internal/repositories"
	"madchef/internal/utils"
)

type StudentService struct {
	DB       *bun.DB
	Students *repositories.StudentRepository
	Payments *repositories.PaymentRepository
	Tokens   *repositories.RefreshTokenRepository
	Issuer   *TokenIssuer
	Identity external.IdentityProvider
	Media    external.MediaStore
	Page     query.PageConfig
}

// List pages through all students. Admin only.
func (s *StudentService) List(ctx context.Context, rc domain.RequestContext, p ListParams) (*ListResult[models.Student], error) {
	if err := requireRole(rc, domain.RoleAdmin); err != nil {
		return nil, err
	}
	plan, page := p.plan(listDefaults{Page: s.Page, Sort: "name"}, nil, nil)
	items, total, err := s.Students.List(ctx, plan)
	if err != nil {
		return nil, db.Classify("student", err)
	}
	return listResult(items, total, page, plan), nil
}

func (s *StudentService) Get(ctx context.Context, rawID, include, exclude string) (*models.Student, query.Projection, error) {
	id, err := domain.ParseID("id", rawID)
	if err != nil {
		return nil, query.Projection{}, err
	}
	projection := query.BuildProjection(include, exclude)
	st, err := s.Students.Detail(ctx, id, projection)
	if err != nil {
		return nil, projection, db.Classify("student", err)
	}
	return st, projection, nil
}

// VerifyEmail marks the student behind an identity provider user as
// verified once the provider reports the address verified.
func (s *StudentService) VerifyEmail(ctx context.Context, uid string) error {
	if uid == "" {
		return domain.ValidationError{Field: "uid", Msg: "is required"}
	}
	ident, err := s.Identity.LookupUser(ctx, uid)
	if errors.Is(err, external.ErrUserNotFound) {
		return domain.NotFoundError{Resource: "user", Err: err}
	}
	if err != nil {
		return domain.InternalError{Msg: "identity lookup failed", Err: err}
	}
	if !ident.EmailVerified {
		return domain.ValidationError{Field: "email", Msg: "is not verified yet"}
	}
	st, err := s.Students.FindByEmail(ctx, ident.Email)
	if err != nil {
		return db.Classify("student", err)
	}
	st.EmailVerified = true
	if err := s.Students.Update(ctx, st, "email_verified"); err != nil {
		return db.Classify("student", err)
	}
	utils.LogEvent(ctx, "student", "verify_email", "email verified", zap.String("user_id", st.ID.String()))
	return nil
}

// StudentPatch holds the self-editable student fields; nil means unchanged.
type StudentPatch struct {
	Name  *string `json:"name"`
	Img   *string `json:"img"`
	ImgID *string `json:"imgId"`
}

func (p StudentPatch) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Name, validation.NilOrNotEmpty, validation.Length(1, 120)),
	)
}

// UpdateMe applies a patch to the calling student.
func (s *StudentService) UpdateMe(ctx context.Context, rc domain.RequestContext, p StudentPatch) (*models.Student, error) {
	if err := requireRole(rc, domain.RoleStudent); err != nil {
		return nil, err
	}
	if p.Name == nil && p.Img == nil && p.ImgID == nil {
		return nil, domain.ValidationError{Msg: "no update data provided"}
	}
	if err := invalid(p.Validate()); err != nil {
		return nil, err
	}
	st, err := s.Students.Get(ctx, rc.UserID())
	if err != nil {
		return nil, db.Classify("student", err)
	}
	var cols []string
	if p.Name != nil {
		st.Name = utils.NormalizeSpace(*p.Name)
		cols = append(cols, "name")
	}
	if p.Img != nil {
		st.Img = *p.Img
		cols = append(cols, "img")
	}
	if p.ImgID != nil {
		st.ImgID = *p.ImgID
		cols = append(cols, "img_id")
	}
	if err := s.Students.Update(ctx, st, cols...); err != nil {
		return nil, db.Classify("student", err)
	}
	return st, nil
}

// UploadPicture stores a new profile picture and drops the previous one.
func (s *StudentService) UploadPicture(ctx context.Context, rc domain.RequestContext, filename string, r io.Reader) (*models.Student, error) {
	if err := requireRole(rc, domain.RoleStudent); err != nil {
		return nil, err
	}
	st, err := s.Students.Get(ctx, rc.UserID())
	if err != nil {
		return nil, db.Classify("student", err)
	}
	img, err := s.Media.Upload(ctx, "students", filename, r)
	if err != nil {
		return nil, domain.InternalError{Msg: "image upload failed", Err: err}
	}
	old := st.ImgID
	st.Img, st.ImgID = img.URL, img.PublicID
	if err := s.Students.Update(ctx, st, "img", "img_id"); err != nil {
		if derr := s.Media.Destroy(context.WithoutCancel(ctx), img.PublicID); derr != nil {
			utils.LogFailure(ctx, "student", "media_cleanup", derr)
		}
		return nil, db.Classify("student", err)
	}
	if old != "" {
		if err := s.Media.Destroy(ctx, old); err != nil {
			utils.LogFailure(ctx, "student", "media_cleanup", err, zap.String("img_id", old))
		}
	}
	return st, nil
}

// UpgradeResult reports a package change. Tokens is nil when the student
// was already on the package.
type UpgradeResult struct {
	User    domain.Claims
	Tokens  *TokenPair
	Updated bool
}

// UpgradePackage moves the calling student to pro once a succeeded pro
// package receipt exists, rotating their tokens in the same transaction.
func (s *StudentService) UpgradePackage(ctx context.Context, rc domain.RequestContext) (*UpgradeResult, error) {
	if err := requireRole(rc, domain.RoleStudent); err != nil {
		return nil, err
	}
	claims := *rc.Claims
	claims.Package = domain.PackagePro
	res := &UpgradeResult{User: claims}

	err := db.RunInTx(ctx, s.DB, func(ctx context.Context, tx bun.Tx) error {
		paid, err := s.Payments.WithTx(tx).HasSucceeded(ctx, claims.UserID, domain.ReceiptProPackage)
		if err != nil {
			return err
		}
		if !paid {
			return domain.ValidationError{Msg: "no payment receipt found"}
		}
		changed, err := s.Students.WithTx(tx).SetPackage(ctx, claims.UserID, domain.PackagePro)
		if err != nil || !changed {
			return err
		}
		pair, err := issueTokens(ctx, s.Issuer, s.Tokens.WithTx(tx), claims)
		if err != nil {
			return err
		}
		res.Tokens, res.Updated = pair, true
		return nil
	})
	if err != nil {
		return nil, db.Classify("student", err)
	}
	if res.Updated {
		utils.LogEvent(ctx, "student", "upgrade_package", "package upgraded", zap.String("user_id", claims.UserID.String()))
	}
	return res, nil
}
