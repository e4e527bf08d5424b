package auth

import (
	"context"
	"fmt"
	"net/http"

	"github.com/nao1215/xsuaa-gate/pkg/middleware"
)

const (
	// DefaultServiceName はトークン検証に使うXSUAAサービスバインディングの既定名。
	DefaultServiceName = "my_xsuaa_1"
	// DefaultRequiredScope は保護されたルートへのアクセスに必要なスコープ。
	DefaultRequiredScope = "uaa.resource"
)

// reasonForbidden は認可失敗時にクライアントへ返す理由。
// トークン検証の失敗とスコープ不足を区別せず、同じ理由を返す。
const reasonForbidden = "認可に失敗しました"

// Binding はサービスバインディングの名前と資格情報。
type Binding struct {
	// Name はサービスインスタンス名。
	Name string
	// Credentials はサービスへの接続情報。
	Credentials map[string]any
}

// ServiceLocator は名前からサービスバインディングを解決する。
type ServiceLocator interface {
	Service(name string) (Binding, bool)
}

// LocatorFunc は関数をServiceLocatorとして扱うためのアダプタ。
type LocatorFunc func(name string) (Binding, bool)

// Service はf(name)を呼び出す。
func (f LocatorFunc) Service(name string) (Binding, bool) {
	return f(name)
}

// SecurityContext はトークン検証の結果得られた、スコープを問い合わせ可能な認証情報。
type SecurityContext interface {
	CheckScope(scope string) bool
}

// TokenValidator はBearerトークンをサービスバインディングの資格情報と交換し、
// SecurityContextを生成する。
type TokenValidator interface {
	Validate(ctx context.Context, token string, credentials map[string]any) (SecurityContext, error)
}

// ValidatorFunc は関数をTokenValidatorとして扱うためのアダプタ。
type ValidatorFunc func(ctx context.Context, token string, credentials map[string]any) (SecurityContext, error)

// Validate はf(ctx, token, credentials)を呼び出す。
func (f ValidatorFunc) Validate(ctx context.Context, token string, credentials map[string]any) (SecurityContext, error) {
	return f(ctx, token, credentials)
}

// Options はゲートの設定。起動時に一度だけ組み立てる。
type Options struct {
	// LocalDebug がtrueの場合、全ての認証を省略して通過させる。オフライン開発専用。
	LocalDebug bool
	// ServiceName は資格情報を解決するサービスバインディング名。
	ServiceName string
	// RequiredScope は通過に必要なスコープ。
	RequiredScope string
}

// Gate は保護されたルートの前段で認可判定を行う。middleware.Guardを実装する。
type Gate struct {
	opts      Options
	locator   ServiceLocator
	validator TokenValidator
}

var _ middleware.Guard = (*Gate)(nil)

// New は新しいGateを生成する。ServiceNameとRequiredScopeが空の場合は既定値を使う。
func New(opts Options, locator ServiceLocator, validator TokenValidator) *Gate {
	if opts.ServiceName == "" {
		opts.ServiceName = DefaultServiceName
	}
	if opts.RequiredScope == "" {
		opts.RequiredScope = DefaultRequiredScope
	}
	return &Gate{
		opts:      opts,
		locator:   locator,
		validator: validator,
	}
}

// Options はゲートの設定を返す。
func (g *Gate) Options() Options {
	return g.opts
}

// Check はリクエストを通過させるかを判定する。
//
//   - LocalDebugが有効なら常に通過
//   - Authorizationヘッダーが無い・Bearer形式でない場合は401
//   - サービスバインディングが見つからない場合は503
//   - トークン検証に失敗した場合、または必須スコープが無い場合は403
func (g *Gate) Check(r *http.Request) middleware.Decision {
	if g.opts.LocalDebug {
		return middleware.Allow()
	}

	token, err := middleware.BearerToken(r)
	if err != nil {
		return middleware.Reject(http.StatusUnauthorized, err.Error())
	}

	binding, ok := g.locator.Service(g.opts.ServiceName)
	if !ok {
		return middleware.Reject(http.StatusServiceUnavailable,
			fmt.Sprintf("サービス %s の資格情報が環境に見つかりません", g.opts.ServiceName))
	}

	sc, err := g.validator.Validate(r.Context(), token, binding.Credentials)
	if err != nil || sc == nil {
		return middleware.Reject(http.StatusForbidden, reasonForbidden)
	}
	if !sc.CheckScope(g.opts.RequiredScope) {
		return middleware.Reject(http.StatusForbidden, reasonForbidden)
	}
	return middleware.Allow()
}
