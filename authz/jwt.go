package authz

import (
	"context"
	"errors"
	"time"

	"github.com/goliatone/go-access/pkg/types"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const defaultLeeway = 30 * time.Second

// JWTConfig configures HMAC signed caller proofs.
type JWTConfig struct {
	Secret   []byte
	Issuer   string
	Audience string
	Clock    types.Clock
	Logger   types.Logger
}

// JWT verifies caller proofs carried as HS256 tokens whose subject is the
// caller's account.
type JWT struct {
	secret   []byte
	issuer   string
	audience string
	clock    types.Clock
	logger   types.Logger
}

// NewJWT builds the authorizer.
func NewJWT(cfg JWTConfig) (*JWT, error) {
	if len(cfg.Secret) == 0 {
		return nil, errors.New("authz: jwt secret required")
	}
	clock := cfg.Clock
	if clock == nil {
		clock = types.SystemClock{}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = types.NopLogger{}
	}
	return &JWT{
		secret:   append([]byte(nil), cfg.Secret...),
		issuer:   cfg.Issuer,
		audience: cfg.Audience,
		clock:    clock,
		logger:   logger,
	}, nil
}

var _ types.Authorizer = (*JWT)(nil)

type proofKey struct{}

// WithProof attaches a signed proof to the call context.
func WithProof(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, proofKey{}, token)
}

// ProofFromContext returns the proof attached by WithProof.
func ProofFromContext(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}
	token, ok := ctx.Value(proofKey{}).(string)
	return token, ok && token != ""
}

// Issue signs a proof for account valid for ttl.
func (j *JWT) Issue(account types.Account, ttl time.Duration) (string, error) {
	if account.IsZero() {
		return "", types.ErrAccountRequired
	}
	now := j.clock.Now()
	claims := jwt.RegisteredClaims{
		Subject:   string(account),
		Issuer:    j.issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		ID:        uuid.NewString(),
	}
	if j.audience != "" {
		claims.Audience = jwt.ClaimStrings{j.audience}
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(j.secret)
}

// VerifyCaller implements types.Authorizer. Missing, malformed, expired or
// foreign proofs verify as false.
func (j *JWT) VerifyCaller(ctx context.Context, account types.Account) (bool, error) {
	token, ok := ProofFromContext(ctx)
	if !ok {
		return false, nil
	}
	subject, err := j.verify(token)
	if err != nil {
		j.logger.Debug("authz: rejected caller proof", "account", string(account), "error", err.Error())
		return false, nil
	}
	return subject == account, nil
}

func (j *JWT) verify(token string) (types.Account, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(j.clock.Now),
		jwt.WithLeeway(defaultLeeway),
		jwt.WithIssuedAt(),
		jwt.WithExpirationRequired(),
	}
	if j.issuer != "" {
		opts = append(opts, jwt.WithIssuer(j.issuer))
	}
	if j.audience != "" {
		opts = append(opts, jwt.WithAudience(j.audience))
	}

	var claims jwt.RegisteredClaims
	_, err := jwt.NewParser(opts...).ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return j.secret, nil
	})
	if err != nil {
		return "", err
	}
	if claims.Subject == "" {
		return "", errors.New("authz: proof missing subject")
	}
	return types.Account(claims.Subject), nil
}
