package xssec

import (
	"context"
	"crypto/rsa"
	"encoding/base64"
	"errors"
	"fmt"
	"math/big"
	"net/url"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrUntrustedKeyURL はjkuがuaadomain配下でないことを表す。
	ErrUntrustedKeyURL = errors.New("トークン鍵URLが信頼できません")
	// ErrKeyNotFound は検証鍵が見つからないことを表す。
	ErrKeyNotFound = errors.New("トークンの検証鍵が見つかりません")
)

const (
	pemHeader = "-----BEGIN PUBLIC KEY-----"
	pemFooter = "-----END PUBLIC KEY-----"
)

// tokenKeys はXSUAAのtoken_keysエンドポイントのレスポンス。
type tokenKeys struct {
	Keys []tokenKey `json:"keys"`
}

// tokenKey はJWKSの1エントリ。XSUAAはn/eに加えてPEM形式のvalueも返す。
type tokenKey struct {
	Kty   string `json:"kty"`
	Kid   string `json:"kid"`
	Alg   string `json:"alg"`
	Use   string `json:"use"`
	N     string `json:"n"`
	E     string `json:"e"`
	Value string `json:"value"`
}

// publicKey はJWKエントリをRSA公開鍵に変換する。
func (k tokenKey) publicKey() (*rsa.PublicKey, error) {
	if k.N != "" && k.E != "" {
		nBytes, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(k.N, "="))
		if err != nil {
			return nil, fmt.Errorf("鍵のモジュラスのデコードに失敗: %w", err)
		}
		eBytes, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(k.E, "="))
		if err != nil {
			return nil, fmt.Errorf("鍵の指数のデコードに失敗: %w", err)
		}
		e := new(big.Int).SetBytes(eBytes)
		if !e.IsInt64() || e.Int64() <= 1 || e.Int64() > 1<<31-1 {
			return nil, errors.New("鍵の指数が不正です")
		}
		return &rsa.PublicKey{N: new(big.Int).SetBytes(nBytes), E: int(e.Int64())}, nil
	}
	if k.Value != "" {
		return parsePublicKeyPEM(k.Value)
	}
	return nil, errors.New("鍵にn/eもvalueも含まれていません")
}

// parsePublicKeyPEM はPEM形式の公開鍵を読み込む。
// プラットフォームが改行を除いた1行のPEMを渡すことがあるため、その場合は改行を補う。
func parsePublicKeyPEM(pemText string) (*rsa.PublicKey, error) {
	key, err := jwt.ParseRSAPublicKeyFromPEM([]byte(normalizePEM(pemText)))
	if err != nil {
		return nil, fmt.Errorf("公開鍵の読み込みに失敗: %w", err)
	}
	return key, nil
}

// normalizePEM はヘッダー・フッターと本文の間に改行が無いPEMを整形する。
func normalizePEM(s string) string {
	s = strings.TrimSpace(s)
	if strings.Contains(s, "\n") {
		return s
	}
	body, ok := strings.CutPrefix(s, pemHeader)
	if !ok {
		return s
	}
	body, ok = strings.CutSuffix(body, pemFooter)
	if !ok {
		return s
	}
	body = strings.TrimSpace(body)

	var b strings.Builder
	b.WriteString(pemHeader)
	b.WriteByte('\n')
	for len(body) > 64 {
		b.WriteString(body[:64])
		b.WriteByte('\n')
		body = body[64:]
	}
	b.WriteString(body)
	b.WriteByte('\n')
	b.WriteString(pemFooter)
	b.WriteByte('\n')
	return b.String()
}

// trustedKeyURL はjkuがuaadomainまたはそのサブドメインを指すHTTPS URLであることを確認する。
func trustedKeyURL(jku, uaaDomain string) error {
	if uaaDomain == "" {
		return fmt.Errorf("%w: uaadomainが設定されていません", ErrUntrustedKeyURL)
	}
	u, err := url.Parse(jku)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUntrustedKeyURL, err)
	}
	if u.Scheme != "https" {
		return fmt.Errorf("%w: スキームがhttpsではありません: %s", ErrUntrustedKeyURL, u.Scheme)
	}
	host := strings.ToLower(u.Hostname())
	domain := strings.ToLower(uaaDomain)
	if host != domain && !strings.HasSuffix(host, "."+domain) {
		return fmt.Errorf("%w: %s は %s 配下ではありません", ErrUntrustedKeyURL, host, domain)
	}
	return nil
}

// fetchKey はjkuからJWKSを取得し、kidに一致する鍵を返す。
func (v *Validator) fetchKey(ctx context.Context, jku, kid string) (*rsa.PublicKey, error) {
	var keys tokenKeys
	if err := v.client.GetJSON(ctx, jku, &keys); err != nil {
		return nil, fmt.Errorf("トークン鍵の取得に失敗: %w", err)
	}
	for _, k := range keys.Keys {
		if k.Kid != kid {
			continue
		}
		if k.Kty != "" && k.Kty != "RSA" {
			return nil, fmt.Errorf("鍵の種類がRSAではありません: %s", k.Kty)
		}
		return k.publicKey()
	}
	return nil, fmt.Errorf("%w: kid=%s", ErrKeyNotFound, kid)
}
