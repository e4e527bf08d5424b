package xssec

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"math/big"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// testKey はテスト全体で共有するRSA鍵。生成コストが高いため一度だけ作る。
var testKey = sync.OnceValue(func() *rsa.PrivateKey {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		panic(err)
	}
	return key
})

// otherKey は検証鍵と一致しない署名用のRSA鍵。
var otherKey = sync.OnceValue(func() *rsa.PrivateKey {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		panic(err)
	}
	return key
})

const (
	testClientID  = "sb-myapp!t123"
	testXSAppName = "myapp!t123"
)

// publicKeyPEM は公開鍵をPEM形式で返す。oneLineがtrueの場合は改行を除いた1行にする。
func publicKeyPEM(t *testing.T, key *rsa.PrivateKey, oneLine bool) string {
	t.Helper()

	der, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	if err != nil {
		t.Fatalf("公開鍵のエンコードに失敗: %v", err)
	}
	p := string(pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der}))
	if oneLine {
		p = strings.ReplaceAll(p, "\n", "")
	}
	return p
}

// jwkOf は公開鍵をJWK形式のtokenKeyに変換する。
func jwkOf(kid string, key *rsa.PrivateKey) tokenKey {
	return tokenKey{
		Kty: "RSA",
		Kid: kid,
		Alg: "RS256",
		Use: "sig",
		N:   base64.RawURLEncoding.EncodeToString(key.N.Bytes()),
		E:   base64.RawURLEncoding.EncodeToString(big.NewInt(int64(key.E)).Bytes()),
	}
}

// newClaims は有効期限1時間のテスト用クレームを生成する。
func newClaims(scopes ...string) *Claims {
	return &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "https://tenant.authentication.eu10.hana.ondemand.com/oauth/token",
			Audience:  jwt.ClaimStrings{testClientID, testXSAppName},
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
		Scope:     scopes,
		ClientID:  testClientID,
		CID:       testClientID,
		UserName:  "alice@example.com",
		Email:     "alice@example.com",
		ZoneID:    "zone-1",
		GrantType: "authorization_code",
	}
}

// signToken はクレームをRS256で署名する。headerの値はJWTヘッダーに追加される。
func signToken(t *testing.T, key *rsa.PrivateKey, claims jwt.Claims, header map[string]any) string {
	t.Helper()

	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	for k, v := range header {
		token.Header[k] = v
	}
	signed, err := token.SignedString(key)
	if err != nil {
		t.Fatalf("トークンの署名に失敗: %v", err)
	}
	return signed
}
