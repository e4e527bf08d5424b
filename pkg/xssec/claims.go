package xssec

import (
	"encoding/json"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// scopeList はscopeクレーム。XSUAAは配列で発行するが、空白区切りの文字列も受け付ける。
type scopeList []string

// UnmarshalJSON は配列または空白区切り文字列をスコープの一覧として読み込む。
func (s *scopeList) UnmarshalJSON(data []byte) error {
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*s = list
		return nil
	}
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	*s = strings.Fields(str)
	return nil
}

// Claims はXSUAAアクセストークンのクレーム。
type Claims struct {
	jwt.RegisteredClaims
	// Scope は付与されたスコープ。
	Scope scopeList `json:"scope"`
	// ClientID はトークンを取得したOAuthクライアント。
	ClientID string `json:"client_id"`
	// CID はclient_idの短縮形。
	CID string `json:"cid"`
	// UserName はログオン名。クライアントクレデンシャルでは空になる。
	UserName string `json:"user_name"`
	// Email はユーザーのメールアドレス。
	Email string `json:"email"`
	// ZoneID はテナントのゾーンID。
	ZoneID string `json:"zid"`
	// GrantType はトークン取得時のグラントタイプ。
	GrantType string `json:"grant_type"`
}

// clientID はclient_idまたはcidを返す。
func (c *Claims) clientID() string {
	if c.ClientID != "" {
		return c.ClientID
	}
	return c.CID
}
