package echoapi

import (
	"context"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/trezcool/chama/core"
	"github.com/trezcool/chama/core/auth"
	"github.com/trezcool/chama/core/member"
	"github.com/trezcool/chama/core/user"
)

const (
	jwtContextKey  = "userToken"
	contextUserKey = "user"
)

// Claims represents the authorization claims transmitted via a JWT.
type Claims struct {
	jwt.StandardClaims
	OrigIssuedAt int64  `json:"oriat,omitempty"`
	Username     string `json:"username,omitempty"`
	Email        string `json:"email,omitempty"`
	Role         string `json:"role,omitempty"`
}

func newJWTConfig(conf *core.Config) middleware.JWTConfig {
	return middleware.JWTConfig{
		SigningKey:    conf.SecretKey,
		SigningMethod: middleware.AlgorithmHS256,
		ContextKey:    jwtContextKey,
		Claims:        new(Claims),
	}
}

func GetUserClaims(conf *core.Config, usr user.User, role string, origIat ...int64) *Claims {
	now := time.Now()
	nownix := now.Unix()

	var oriat int64
	if len(origIat) > 0 {
		oriat = origIat[0]
	} else {
		oriat = nownix
	}

	return &Claims{
		StandardClaims: jwt.StandardClaims{
			Issuer:    conf.AppName,
			Subject:   usr.ID,
			Audience:  "Chama",
			ExpiresAt: now.Add(conf.Server.JWTExpirationDelta).Unix(),
			IssuedAt:  nownix,
		},
		OrigIssuedAt: oriat,
		Username:     usr.Username,
		Email:        usr.Email,
		Role:         role,
	}
}

// GenerateToken generates a signed JWT token string representing the user Claims.
func GenerateToken(conf *core.Config, claims *Claims) (string, error) {
	method := jwt.GetSigningMethod(middleware.AlgorithmHS256)
	token := jwt.NewWithClaims(method, claims)

	ss, err := token.SignedString(conf.SecretKey)
	if err != nil {
		return "", errors.Wrap(err, "signing token")
	}
	return ss, nil
}

// resolveRole determines the role carried in a user's token. A stored
// profile is authoritative; identities without one still sign in with the
// baseline member role, with configured admin emails escalated.
func resolveRole(ctx context.Context, conf *core.Config, mbrSvc member.ServiceInterface, usr user.User) string {
	if mbr, err := mbrSvc.GetByUserID(ctx, usr.ID); err == nil {
		return mbr.Role
	}
	for _, email := range conf.Auth.AdminEmails {
		if core.CleanString(email, true /* lower */) == core.CleanString(usr.Email, true /* lower */) {
			return auth.RoleAdmin
		}
	}
	return auth.RoleMember
}

func authenticate(ctx context.Context, uname, pwd string, conf *core.Config, usrSvc user.ServiceInterface, mbrSvc member.ServiceInterface) (*Claims, error) {
	usr, err := usrSvc.Authenticate(ctx, uname, pwd)
	if err != nil {
		switch errors.Cause(err) {
		case user.ErrNotFound, user.ErrInvalidPassword:
			return nil, errAuthenticationFailed
		case user.ErrAccountDeactivated:
			return nil, errAccountDeactivated
		}
		return nil, errors.Wrap(err, "authenticating user")
	}
	return GetUserClaims(conf, usr, resolveRole(ctx, conf, mbrSvc, usr)), nil
}

func getContextClaims(ctx echo.Context) (Claims, error) {
	if token, ok := ctx.Get(jwtContextKey).(*jwt.Token); ok {
		if claims, ok := token.Claims.(*Claims); ok {
			return *claims, nil
		}
	}
	return Claims{}, errUnauthorized
}

func getContextUser(ctx echo.Context, svc user.ServiceInterface, clms ...Claims) (user.User, error) {
	if usr, ok := ctx.Get(contextUserKey).(user.User); ok {
		return usr, nil
	}

	var claims Claims
	var err error
	if len(clms) > 0 {
		claims = clms[0]
	} else {
		claims, err = getContextClaims(ctx)
		if err != nil {
			return user.User{}, errors.Wrap(err, "getting context claims")
		}
	}

	usr, err := svc.GetByID(ctx.Request().Context(), claims.Subject)
	if err != nil {
		return user.User{}, errors.Wrap(err, "finding user by ID")
	}
	ctx.Set(contextUserKey, usr)
	return usr, nil
}

func refreshToken(ctx echo.Context, conf *core.Config, usrSvc user.ServiceInterface, mbrSvc member.ServiceInterface) (string, error) {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return "", errors.Wrap(err, "getting context claims")
	}

	usr, err := getContextUser(ctx, usrSvc, claims)
	if err != nil {
		return "", errors.Wrap(err, "getting context user")
	}

	// check if user is still active
	if !usr.IsActive {
		return "", errAccountDeactivated
	}

	// check if refresh has not expired
	expTime := time.Unix(claims.OrigIssuedAt, 0).Add(conf.Server.JWTRefreshExpirationDelta)
	if time.Now().After(expTime) {
		return "", errRefreshExpired
	}

	rctx := ctx.Request().Context()
	newClaims := GetUserClaims(conf, usr, resolveRole(rctx, conf, mbrSvc, usr), claims.OrigIssuedAt)
	token, err := GenerateToken(conf, newClaims)
	return token, errors.Wrap(err, "generating token")
}
