package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

var (
	// ErrMissingAuthorization はAuthorizationヘッダーが存在しないことを表す。
	ErrMissingAuthorization = errors.New("Authorizationヘッダーが必要です")
	// ErrMalformedAuthorization はAuthorizationヘッダーがBearer形式でないことを表す。
	ErrMalformedAuthorization = errors.New("Bearer トークン形式が不正です")
)

// Decision はGuardによる認可判定の結果。
type Decision struct {
	// Allowed はリクエストをハンドラーへ通してよいかを示す。
	Allowed bool
	// Status は拒否時に返すHTTPステータスコード。
	Status int
	// Reason は拒否理由。レスポンスの "error" フィールドに設定される。
	Reason string
}

// Allow はリクエストを通過させる判定を返す。
func Allow() Decision {
	return Decision{Allowed: true, Status: http.StatusOK}
}

// Reject は指定したステータスコードと理由でリクエストを拒否する判定を返す。
func Reject(status int, reason string) Decision {
	return Decision{Status: status, Reason: reason}
}

// Guard はリクエストごとに認可判定を行うインターフェース。
// 実装は複数のリクエストから並行に呼ばれるため、リクエスト間で状態を共有してはならない。
type Guard interface {
	Check(r *http.Request) Decision
}

// GuardFunc は関数をGuardとして扱うためのアダプタ。
type GuardFunc func(r *http.Request) Decision

// Check はf(r)を呼び出す。
func (f GuardFunc) Check(r *http.Request) Decision {
	return f(r)
}

// Authorize はGuardの判定に従ってリクエストを通過または中断するGinミドルウェアを返す。
// 拒否時は判定のステータスコードと {"error": 理由} を返し、後続のハンドラーは実行されない。
func Authorize(g Guard) gin.HandlerFunc {
	return func(c *gin.Context) {
		d := g.Check(c.Request)
		if !d.Allowed {
			status := d.Status
			if status == 0 {
				status = http.StatusForbidden
			}
			c.AbortWithStatusJSON(status, gin.H{"error": d.Reason})
			return
		}
		c.Next()
	}
}

// BearerToken はAuthorizationヘッダーからBearerトークンを取り出す。
// スキーム名の大文字小文字は区別しない。
func BearerToken(r *http.Request) (string, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", ErrMissingAuthorization
	}

	scheme, token, found := strings.Cut(authHeader, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", ErrMalformedAuthorization
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", ErrMalformedAuthorization
	}
	return token, nil
}
