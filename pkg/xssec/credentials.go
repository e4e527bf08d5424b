package xssec

import (
	"errors"
	"fmt"
)

// ErrInvalidCredentials はサービスバインディングの資格情報が検証に使えないことを表す。
var ErrInvalidCredentials = errors.New("XSUAAの資格情報が不正です")

// Credentials はXSUAAサービスバインディングの資格情報のうち、トークン検証に使う項目。
type Credentials struct {
	// ClientID はOAuthクライアントID。トークンの受信者として期待する値。
	ClientID string
	// XSAppName はXSUAA上のアプリケーション名。スコープの接頭辞になる。
	XSAppName string
	// URL はXSUAAテナントのURL。
	URL string
	// UAADomain はトークン鍵URL（jku）として信頼するドメイン。
	UAADomain string
	// VerificationKey はPEM形式の検証用公開鍵。
	VerificationKey string
}

// ParseCredentials はサービスバインディングの資格情報マップからCredentialsを生成する。
// verificationkeyとuaadomainの両方が無い場合は検証鍵を得られないためエラーを返す。
func ParseCredentials(m map[string]any) (Credentials, error) {
	if m == nil {
		return Credentials{}, fmt.Errorf("%w: 資格情報が空です", ErrInvalidCredentials)
	}

	var c Credentials
	fields := []struct {
		key string
		dst *string
	}{
		{"clientid", &c.ClientID},
		{"xsappname", &c.XSAppName},
		{"url", &c.URL},
		{"uaadomain", &c.UAADomain},
		{"verificationkey", &c.VerificationKey},
	}
	for _, f := range fields {
		v, ok := m[f.key]
		if !ok || v == nil {
			continue
		}
		s, ok := v.(string)
		if !ok {
			return Credentials{}, fmt.Errorf("%w: %sが文字列ではありません", ErrInvalidCredentials, f.key)
		}
		*f.dst = s
	}

	if c.VerificationKey == "" && c.UAADomain == "" {
		return Credentials{}, fmt.Errorf("%w: verificationkeyとuaadomainのどちらも設定されていません", ErrInvalidCredentials)
	}
	return c, nil
}
