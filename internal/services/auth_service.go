package services

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"go.uber.org/zap"

	"madchef/internal/db"
	"madchef/internal/domain"
	"madchef/internal/domain/models"
	"madchef/internal/external"
	"madchef/internal/repositories"
	"madchef/internal/utils"
)

// AuthService exchanges identity provider tokens for the API's own tokens.
type AuthService struct {
	Accounts *repositories.AccountRepository
	Students *repositories.StudentRepository
	Tokens   *repositories.RefreshTokenRepository
	Identity external.IdentityProvider
	Issuer   *TokenIssuer
}

// AuthResult is the outcome of a sign-in. Tokens is nil for a
// registration-only request.
type AuthResult struct {
	User       domain.Claims
	Tokens     *TokenPair
	Registered bool
}

// Authenticate verifies an identity token, creates a student on first
// sign-in and issues a token pair unless registrationOnly is set.
func (s *AuthService) Authenticate(ctx context.Context, idToken string, registrationOnly bool) (*AuthResult, error) {
	idToken = strings.TrimSpace(idToken)
	if idToken == "" {
		return nil, domain.UnauthorizedError{Msg: "identity token required"}
	}
	ident, err := s.Identity.VerifyIDToken(ctx, idToken)
	if err != nil {
		return nil, domain.UnauthorizedError{Msg: "invalid identity token", Err: err}
	}
	if ident.Email == "" {
		return nil, domain.ValidationError{Field: "email", Msg: "identity has no email"}
	}

	account, err := s.Accounts.FindByEmail(ctx, ident.Email)
	registered := false
	switch {
	case errors.Is(err, sql.ErrNoRows):
		st := &models.Student{
			Name:          utils.NormalizeSpace(ident.Name),
			Email:         ident.Email,
			EmailVerified: ident.EmailVerified,
			Img:           ident.Picture,
		}
		if st.Name == "" {
			st.Name = ident.Email
		}
		if err := s.Students.Create(ctx, st); err != nil {
			return nil, db.Classify("student", err)
		}
		account = &models.Account{ID: st.ID, Name: st.Name, Email: st.Email, EmailVerified: st.EmailVerified, Role: st.Role, Package: st.Package}
		registered = true
		utils.LogEvent(ctx, "auth", "register", "student registered", zap.String("user_id", st.ID.String()))
	case err != nil:
		return nil, db.Classify("account", err)
	}

	claims := domain.Claims{
		UserID:        account.ID,
		ExternalID:    ident.UID,
		Email:         account.Email,
		EmailVerified: ident.EmailVerified,
		Role:          account.Role,
		Package:       account.Package,
	}
	res := &AuthResult{User: claims, Registered: registered}
	if registrationOnly {
		return res, nil
	}

	pair, err := issueTokens(ctx, s.Issuer, s.Tokens, claims)
	if err != nil {
		return nil, err
	}
	res.Tokens = pair
	utils.LogEvent(ctx, "auth", "login", "tokens issued", zap.String("user_id", claims.UserID.String()), zap.String("role", string(claims.Role)))
	return res, nil
}

// issueTokens signs a new pair and stores its refresh hash, replacing the
// previous one.
func issueTokens(ctx context.Context, issuer *TokenIssuer, tokens *repositories.RefreshTokenRepository, c domain.Claims) (*TokenPair, error) {
	pair, err := issuer.Issue(c)
	if err != nil {
		return nil, domain.InternalError{Msg: "token issue failed", Err: err}
	}
	if err := tokens.Save(ctx, &models.RefreshToken{UserID: c.UserID, TokenHash: pair.RefreshHash, ExpiresAt: pair.RefreshExpiresAt.UTC()}); err != nil {
		return nil, db.Classify("refresh token", err)
	}
	return pair, nil
}

// Refresh verifies a refresh token against the stored one and issues a new
// access token.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*AuthResult, error) {
	if refreshToken == "" {
		return nil, domain.UnauthorizedError{Msg: "refresh token required"}
	}
	claims, jti, err := s.Issuer.ParseRefresh(refreshToken)
	if err != nil {
		return nil, err
	}
	stored, err := s.Tokens.Get(ctx, claims.UserID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ForbiddenError{Msg: "refresh token revoked"}
	}
	if err != nil {
		return nil, db.Classify("refresh token", err)
	}
	if !MatchRefresh(stored.TokenHash, jti) {
		return nil, domain.ForbiddenError{Msg: "refresh token revoked"}
	}

	access, err := s.Issuer.IssueAccess(*claims)
	if err != nil {
		return nil, domain.InternalError{Msg: "token issue failed", Err: err}
	}
	return &AuthResult{User: *claims, Tokens: &TokenPair{AccessToken: access}}, nil
}

// Logout forgets the caller's refresh token.
func (s *AuthService) Logout(ctx context.Context, rc domain.RequestContext) error {
	if rc.Claims == nil {
		return domain.UnauthorizedError{}
	}
	if err := s.Tokens.Delete(ctx, rc.UserID()); err != nil {
		return db.Classify("refresh token", err)
	}
	utils.LogEvent(ctx, "auth", "logout", "refresh token removed", zap.String("user_id", rc.UserID().String()))
	return nil
}
