package services

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/mysqldialect"
	"golang.org/x/crypto/bcrypt"

	"madchef/internal/external"
)

func newMockDB(t *testing.T) (*bun.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqldb, mock, err := sqlmock.New()
	require.NoError(t, err)
	bdb := bun.NewDB(sqldb, mysqldialect.New())
	t.Cleanup(func() { _ = bdb.Close() })
	return bdb, mock
}

func testIssuer() *TokenIssuer {
	return &TokenIssuer{
		AccessSecret:  []byte("access-secret"),
		RefreshSecret: []byte("refresh-secret"),
		AccessTTL:     time.Hour,
		RefreshTTL:    720 * time.Hour,
		HashCost:      bcrypt.MinCost,
	}
}

type fakeMedia struct {
	uploaded  []string
	destroyed []string
	uploadErr error
}

func (f *fakeMedia) Upload(_ context.Context, folder, filename string, _ io.Reader) (*external.UploadedImage, error) {
	if f.uploadErr != nil {
		return nil, f.uploadErr
	}
	f.uploaded = append(f.uploaded, filename)
	return &external.UploadedImage{URL: "https://img/" + filename, PublicID: folder + "/" + filename}, nil
}

func (f *fakeMedia) Destroy(_ context.Context, publicID string) error {
	f.destroyed = append(f.destroyed, publicID)
	return nil
}

type fakeIdentity struct {
	ident *external.Identity
	err   error
}

func (f fakeIdentity) VerifyIDToken(context.Context, string) (*external.Identity, error) {
	return f.ident, f.err
}

func (f fakeIdentity) LookupUser(context.Context, string) (*external.Identity, error) {
	return f.ident, f.err
}

type fakeProcessor struct {
	intent *external.PaymentIntent
	err    error
}

func (f fakeProcessor) CreateIntent(_ context.Context, amount int64, currency string, _ map[string]string) (*external.PaymentIntent, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &external.PaymentIntent{ID: "pi_1", ClientSecret: "pi_1_secret", Amount: amount, Currency: currency}, nil
}

func (f fakeProcessor) GetIntent(context.Context, string) (*external.PaymentIntent, error) {
	return f.intent, f.err
}
