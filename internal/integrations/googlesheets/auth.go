package googlesheets

import (
	"context"
	"errors"

	"assetdb/internal/core/config"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const (
	CodeAuthConfigMissing = "AUTH_CONFIG_MISSING"
	CodeAuthExpired       = "AUTH_EXPIRED"
)

// AuthError carries the code the frontend uses to prompt for a token refresh.
type AuthError struct {
	Code    string
	Message string
	Err     error
}

func (e *AuthError) Error() string {
	return e.Message
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

func AsAuthError(err error) (*AuthError, bool) {
	var authErr *AuthError
	ok := errors.As(err, &authErr)
	return authErr, ok
}

type AuthStatus struct {
	Valid   bool   `json:"valid"`
	Error   string `json:"error,omitempty"`
	Message string `json:"message"`
}

type Authenticator struct {
	cfg config.GoogleConfig
}

func NewAuthenticator(cfg config.GoogleConfig) *Authenticator {
	return &Authenticator{cfg: cfg}
}

// TokenSource returns a refresh-token backed source after checking that the
// refresh token still yields an access token.
func (a *Authenticator) TokenSource(ctx context.Context) (oauth2.TokenSource, error) {
	if !a.cfg.Configured() {
		return nil, &AuthError{Code: CodeAuthConfigMissing, Message: "Google OAuth 설정 정보가 누락되었습니다."}
	}

	conf := &oauth2.Config{
		ClientID:     a.cfg.ClientID,
		ClientSecret: a.cfg.ClientSecret,
		Endpoint:     google.Endpoint,
		Scopes:       []string{"https://www.googleapis.com/auth/drive", "https://www.googleapis.com/auth/spreadsheets"},
	}
	source := conf.TokenSource(ctx, &oauth2.Token{RefreshToken: a.cfg.RefreshToken})

	if _, err := source.Token(); err != nil {
		return nil, &AuthError{
			Code:    CodeAuthExpired,
			Message: "구글 인증 토큰이 만료되었습니다. 관리자에게 토큰 갱신을 요청하세요.",
			Err:     err,
		}
	}
	return source, nil
}

func (a *Authenticator) Status(ctx context.Context) AuthStatus {
	_, err := a.TokenSource(ctx)
	if authErr, ok := AsAuthError(err); ok {
		if authErr.Code == CodeAuthConfigMissing {
			return AuthStatus{Error: authErr.Code, Message: "OAuth 설정이 누락되었습니다."}
		}
		return AuthStatus{Error: authErr.Code, Message: "토큰이 만료되었습니다. 갱신이 필요합니다."}
	}
	return AuthStatus{Valid: true, Message: "인증 상태 정상"}
}
