// Package external holds the HTTP clients for the collaborators the API
// delegates to: the identity provider, the payment processor and the media
// store.
package external

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-jose/go-jose/v4"
	"github.com/go-resty/resty/v2"
	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidIDToken = errors.New("invalid identity token")
	ErrUnknownKey     = errors.New("identity token signed with unknown key")
	ErrUserNotFound   = errors.New("identity user not found")
)

// Identity is what the provider vouches for about a signed-in user.
type Identity struct {
	UID           string
	Email         string
	EmailVerified bool
	Name          string
	Picture       string
}

// IdentityProvider verifies identity tokens and looks users up.
type IdentityProvider interface {
	VerifyIDToken(ctx context.Context, raw string) (*Identity, error)
	LookupUser(ctx context.Context, uid string) (*Identity, error)
}

type FirebaseConfig struct {
	ProjectID string
	APIKey    string
	JWKSURL   string
	LookupURL string
	KeysTTL   time.Duration
}

// FirebaseProvider verifies Firebase ID tokens against the published JWKS.
type FirebaseProvider struct {
	cfg    FirebaseConfig
	client *resty.Client

	mu        sync.RWMutex
	keys      *jose.JSONWebKeySet
	fetchedAt time.Time
	now       func() time.Time
}

func NewFirebaseProvider(cfg FirebaseConfig, client *resty.Client) *FirebaseProvider {
	if client == nil {
		client = resty.New().SetTimeout(10 * time.Second)
	}
	if cfg.KeysTTL <= 0 {
		cfg.KeysTTL = time.Hour
	}
	if cfg.LookupURL == "" {
		cfg.LookupURL = "https://identitytoolkit.googleapis.com/v1/accounts:lookup"
	}
	return &FirebaseProvider{cfg: cfg, client: client, now: time.Now}
}

type firebaseClaims struct {
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
	jwt.RegisteredClaims
}

func (p *FirebaseProvider) VerifyIDToken(ctx context.Context, raw string) (*Identity, error) {
	claims := &firebaseClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		kid, _ := t.Header["kid"].(string)
		return p.key(ctx, kid)
	},
		jwt.WithValidMethods([]string{"RS256"}),
		jwt.WithAudience(p.cfg.ProjectID),
		jwt.WithIssuer("https://securetoken.google.com/"+p.cfg.ProjectID),
		jwt.WithTimeFunc(p.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidIDToken, err)
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: empty subject", ErrInvalidIDToken)
	}
	return &Identity{
		UID:           claims.Subject,
		Email:         claims.Email,
		EmailVerified: claims.EmailVerified,
		Name:          claims.Name,
		Picture:       claims.Picture,
	}, nil
}

// key returns the public key for kid, refreshing the key set once when the
// cache is stale or does not know kid.
func (p *FirebaseProvider) key(ctx context.Context, kid string) (any, error) {
	if k, fresh := p.cached(kid); k != nil && fresh {
		return k, nil
	}
	if err := p.refresh(ctx); err != nil {
		return nil, err
	}
	if k, _ := p.cached(kid); k != nil {
		return k, nil
	}
	return nil, ErrUnknownKey
}

func (p *FirebaseProvider) cached(kid string) (any, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.keys == nil {
		return nil, false
	}
	fresh := p.now().Sub(p.fetchedAt) < p.cfg.KeysTTL
	for _, k := range p.keys.Key(kid) {
		if k.Valid() && k.IsPublic() {
			return k.Key, fresh
		}
	}
	return nil, fresh
}

func (p *FirebaseProvider) refresh(ctx context.Context) error {
	resp, err := p.client.R().SetContext(ctx).Get(p.cfg.JWKSURL)
	if err != nil {
		return fmt.Errorf("fetch jwks: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("fetch jwks: status %d", resp.StatusCode())
	}
	var set jose.JSONWebKeySet
	if err := json.Unmarshal(resp.Body(), &set); err != nil {
		return fmt.Errorf("decode jwks: %w", err)
	}

	p.mu.Lock()
	p.keys = &set
	p.fetchedAt = p.now()
	p.mu.Unlock()
	return nil
}

type lookupResponse struct {
	Users []struct {
		LocalID       string `json:"localId"`
		Email         string `json:"email"`
		EmailVerified bool   `json:"emailVerified"`
		DisplayName   string `json:"displayName"`
		PhotoURL      string `json:"photoUrl"`
	} `json:"users"`
}

func (p *FirebaseProvider) LookupUser(ctx context.Context, uid string) (*Identity, error) {
	var out lookupResponse
	resp, err := p.client.R().
		SetContext(ctx).
		SetQueryParam("key", p.cfg.APIKey).
		SetBody(map[string]any{"localId": []string{uid}}).
		SetResult(&out).
		Post(p.cfg.LookupURL)
	if err != nil {
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("lookup user: status %d", resp.StatusCode())
	}
	if len(out.Users) == 0 {
		return nil, ErrUserNotFound
	}
	u := out.Users[0]
	return &Identity{UID: u.LocalID, Email: u.Email, EmailVerified: u.EmailVerified, Name: u.DisplayName, Picture: u.PhotoURL}, nil
}
