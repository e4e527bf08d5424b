package xssec

import (
	"slices"
	"strings"
	"time"
)

// xsappnamePlaceholder はスコープ名の中でアプリケーション名に置き換えられる接頭辞。
const xsappnamePlaceholder = "$XSAPPNAME."

// SecurityContext は検証済みトークンから得られた、リクエスト単位の認証情報。
type SecurityContext struct {
	claims    *Claims
	xsappname string
}

// CheckScope はトークンが指定したスコープを持つかを返す。
// "$XSAPPNAME." で始まるスコープはサービスバインディングのxsappnameに置き換えて判定する。
func (s *SecurityContext) CheckScope(scope string) bool {
	if rest, ok := strings.CutPrefix(scope, xsappnamePlaceholder); ok {
		if s.xsappname == "" {
			return false
		}
		scope = s.xsappname + "." + rest
	}
	return slices.Contains(s.claims.Scope, scope)
}

// Scopes はトークンに付与されたスコープの一覧を返す。
func (s *SecurityContext) Scopes() []string {
	return slices.Clone([]string(s.claims.Scope))
}

// LogonName はユーザーのログオン名を返す。
func (s *SecurityContext) LogonName() string {
	return s.claims.UserName
}

// Email はユーザーのメールアドレスを返す。
func (s *SecurityContext) Email() string {
	return s.claims.Email
}

// ClientID はトークンを取得したOAuthクライアントIDを返す。
func (s *SecurityContext) ClientID() string {
	return s.claims.clientID()
}

// ZoneID はテナントのゾーンIDを返す。
func (s *SecurityContext) ZoneID() string {
	return s.claims.ZoneID
}

// GrantType はトークン取得時のグラントタイプを返す。
func (s *SecurityContext) GrantType() string {
	return s.claims.GrantType
}

// Expiry はトークンの有効期限を返す。
func (s *SecurityContext) Expiry() time.Time {
	if s.claims.ExpiresAt == nil {
		return time.Time{}
	}
	return s.claims.ExpiresAt.Time
}
