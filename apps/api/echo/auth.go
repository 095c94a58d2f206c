package echoapi

import (
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/safeschool/drillready/core"
	"github.com/safeschool/drillready/core/account"
)

var contextClaimsKey = "accountToken"

// Claims represents the authorization claims transmitted via a JWT.
// Subject carries the account ID.
type Claims struct {
	jwt.StandardClaims
	Role     string `json:"role"`
	SchoolID string `json:"schoolId,omitempty"`
}

// Auth is the credential codec: it signs and verifies the bearer tokens
// protecting the API. The signing key comes from configuration at
// construction; there is no package-level default.
type Auth struct {
	appName         string
	expirationDelta time.Duration
	jwtConfig       middleware.JWTConfig
}

func ConfigureAuth(conf *core.Config) *Auth {
	return &Auth{
		appName:         conf.AppName,
		expirationDelta: conf.Server.JWTExpirationDelta,
		jwtConfig: middleware.JWTConfig{
			SigningKey:    conf.SecretKey,
			SigningMethod: middleware.AlgorithmHS256,
			ContextKey:    contextClaimsKey,
			Claims:        new(Claims),
		},
	}
}

// Middleware returns the authentication gate: it extracts the
// `Authorization: Bearer` token, verifies signature and expiry, and attaches
// the Claims to the request context.
func (a *Auth) Middleware() echo.MiddlewareFunc {
	return middleware.JWTWithConfig(a.jwtConfig)
}

// GetAccountClaims builds the Claims encoded into an account's token.
func (a *Auth) GetAccountClaims(acct account.Account) *Claims {
	now := time.Now()
	return &Claims{
		StandardClaims: jwt.StandardClaims{
			Issuer:    a.appName,
			Subject:   acct.ID,
			ExpiresAt: now.Add(a.expirationDelta).Unix(),
			IssuedAt:  now.Unix(),
		},
		Role:     acct.Role,
		SchoolID: acct.SchoolID,
	}
}

// GenerateToken generates a signed JWT token string representing the Claims.
func (a *Auth) GenerateToken(claims *Claims) (string, error) {
	method := jwt.GetSigningMethod(a.jwtConfig.SigningMethod)
	token := jwt.NewWithClaims(method, claims)

	ss, err := token.SignedString(a.jwtConfig.SigningKey)
	if err != nil {
		return "", errors.Wrap(err, "signing token")
	}
	return ss, nil
}

// authenticate checks a login attempt. Failures are indistinguishable on
// purpose: the caller cannot tell a bad password from an unknown (email, role)
// pair.
func authenticate(ctx echo.Context, email, pwd, role string, svc account.ServiceInterface) (account.Account, error) {
	acct, err := svc.GetByEmailAndRole(ctx.Request().Context(), email, role)
	if err != nil {
		if errors.Cause(err) == account.ErrNotFound {
			return account.Account{}, errAuthenticationFailed
		}
		return account.Account{}, errors.Wrap(err, "finding account by email and role")
	}
	if err = acct.CheckPassword(pwd); err != nil {
		return account.Account{}, errAuthenticationFailed
	}
	return acct, nil
}

func getContextClaims(ctx echo.Context) (Claims, error) {
	if token, ok := ctx.Get(contextClaimsKey).(*jwt.Token); ok {
		if claims, ok := token.Claims.(*Claims); ok {
			return *claims, nil
		}
	}
	return Claims{}, errUnauthorized
}
