package auth

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/nao1215/xsuaa-gate/pkg/cfenv"
	"github.com/nao1215/xsuaa-gate/pkg/xssec"
)

// newSigningKey はテスト用のRSA鍵と、そのPEM形式の公開鍵を生成する。
func newSigningKey(t *testing.T) (*rsa.PrivateKey, string) {
	t.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("RSA鍵の生成に失敗: %v", err)
	}
	der, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	if err != nil {
		t.Fatalf("公開鍵のエンコードに失敗: %v", err)
	}
	return key, string(pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der}))
}

// vcapServices はverificationkeyを持つXSUAAバインディングのVCAP_SERVICESを生成する。
func vcapServices(t *testing.T, name, verificationKey string) string {
	t.Helper()

	b, err := json.Marshal(map[string][]cfenv.Service{
		"xsuaa": {{
			Name:  name,
			Label: "xsuaa",
			Credentials: map[string]any{
				"clientid":        "sb-myapp!t123",
				"xsappname":       "myapp!t123",
				"verificationkey": verificationKey,
			},
		}},
	})
	if err != nil {
		t.Fatalf("VCAP_SERVICESの生成に失敗: %v", err)
	}
	return string(b)
}

// signScopes は指定したスコープを持つトークンを署名する。
func signScopes(t *testing.T, key *rsa.PrivateKey, scopes ...string) string {
	t.Helper()

	claims := jwt.MapClaims{
		"aud":       []string{"sb-myapp!t123"},
		"client_id": "sb-myapp!t123",
		"scope":     scopes,
		"exp":       time.Now().Add(time.Hour).Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(key)
	if err != nil {
		t.Fatalf("トークンの署名に失敗: %v", err)
	}
	return signed
}

// TestCFLocator はCFLocatorを検証する。
func TestCFLocator(t *testing.T) {
	t.Parallel()

	env, err := cfenv.New(vcapServices(t, DefaultServiceName, "key"), "")
	if err != nil {
		t.Fatalf("cfenv.New()でエラーが発生: %v", err)
	}
	locator := CFLocator(env)

	t.Run("バインディングを解決できること", func(t *testing.T) {
		t.Parallel()

		b, ok := locator.Service(DefaultServiceName)
		if !ok {
			t.Fatal("バインディングが見つからない")
		}
		if b.Name != DefaultServiceName || b.Credentials["clientid"] != "sb-myapp!t123" {
			t.Errorf("Binding = %+v", b)
		}
	})

	t.Run("存在しないバインディングではfalseが返ること", func(t *testing.T) {
		t.Parallel()

		if _, ok := locator.Service("missing"); ok {
			t.Error("存在しないバインディングが見つかった")
		}
	})
}

// TestXSUAAValidator はXSUAAValidatorを検証する。
func TestXSUAAValidator(t *testing.T) {
	t.Parallel()

	key, pemKey := newSigningKey(t)
	validator := XSUAAValidator(xssec.NewValidator(nil))
	creds := map[string]any{
		"clientid":        "sb-myapp!t123",
		"xsappname":       "myapp!t123",
		"verificationkey": pemKey,
	}

	t.Run("有効なトークンでSecurityContextが返ること", func(t *testing.T) {
		t.Parallel()

		sc, err := validator.Validate(context.Background(), signScopes(t, key, DefaultRequiredScope), creds)
		if err != nil {
			t.Fatalf("Validate()でエラーが発生: %v", err)
		}
		if !sc.CheckScope(DefaultRequiredScope) {
			t.Error("CheckScope() = false, want true")
		}
	})

	t.Run("資格情報が不正な場合エラーになりnilが返ること", func(t *testing.T) {
		t.Parallel()

		sc, err := validator.Validate(context.Background(), signScopes(t, key, DefaultRequiredScope), map[string]any{})
		if !errors.Is(err, xssec.ErrInvalidCredentials) {
			t.Fatalf("error = %v, want %v", err, xssec.ErrInvalidCredentials)
		}
		if sc != nil {
			t.Errorf("SecurityContext = %v, want nil", sc)
		}
	})

	t.Run("無効なトークンでエラーになりnilが返ること", func(t *testing.T) {
		t.Parallel()

		sc, err := validator.Validate(context.Background(), "not-a-jwt", creds)
		if !errors.Is(err, xssec.ErrInvalidToken) {
			t.Fatalf("error = %v, want %v", err, xssec.ErrInvalidToken)
		}
		if sc != nil {
			t.Errorf("SecurityContext = %v, want nil", sc)
		}
	})
}

// TestGate_WithXSUAA はCloud Foundry環境とxssecを組み合わせたゲートを検証する。
func TestGate_WithXSUAA(t *testing.T) {
	t.Parallel()

	key, pemKey := newSigningKey(t)
	env, err := cfenv.New(vcapServices(t, DefaultServiceName, pemKey), "")
	if err != nil {
		t.Fatalf("cfenv.New()でエラーが発生: %v", err)
	}
	g := New(Options{}, CFLocator(env), XSUAAValidator(xssec.NewValidator(nil)))

	tests := []struct {
		name       string
		token      string
		wantStatus int
	}{
		{name: "必須スコープを持つトークンは通過すること", token: signScopes(t, key, "openid", DefaultRequiredScope), wantStatus: http.StatusOK},
		{name: "必須スコープを持たないトークンは403になること", token: signScopes(t, key, "openid"), wantStatus: http.StatusForbidden},
		{name: "署名が不正なトークンは403になること", token: signScopes(t, key, DefaultRequiredScope) + "x", wantStatus: http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			d := g.Check(newRequest("Bearer " + tt.token))
			if d.Status != tt.wantStatus {
				t.Errorf("Status = %d, want %d (reason=%q)", d.Status, tt.wantStatus, d.Reason)
			}
		})
	}
}
