package xssec

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/nao1215/xsuaa-gate/pkg/httpclient"
)

var (
	// ErrInvalidToken はトークンの署名・形式・有効期限の検証に失敗したことを表す。
	ErrInvalidToken = errors.New("トークンが無効です")
	// ErrAudienceMismatch はトークンがこのアプリケーション宛てでないことを表す。
	ErrAudienceMismatch = errors.New("トークンの受信者が一致しません")
)

// defaultLeeway は有効期限の判定で許容する時計のずれ。
const defaultLeeway = time.Minute

// Validator はXSUAAトークンを検証してSecurityContextを生成する。
// 状態を持たないため、複数のリクエストから並行に使用できる。
type Validator struct {
	client *httpclient.Client
	leeway time.Duration
	now    func() time.Time
}

// NewValidator は新しいValidatorを生成する。
// clientはjkuからトークン鍵を取得するために使う。nilの場合はデフォルト設定のクライアントを使う。
func NewValidator(client *httpclient.Client) *Validator {
	if client == nil {
		client = httpclient.New(0)
	}
	return &Validator{
		client: client,
		leeway: defaultLeeway,
		now:    time.Now,
	}
}

// CreateSecurityContext はトークンを資格情報に照らして検証し、SecurityContextを返す。
// リトライは行わず、鍵の取得失敗も含めて全てエラーとして返す。
func (v *Validator) CreateSecurityContext(ctx context.Context, token string, creds Credentials) (*SecurityContext, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return v.keyFor(ctx, t, creds)
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(v.leeway),
		jwt.WithTimeFunc(v.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if !parsed.Valid {
		return nil, ErrInvalidToken
	}

	if !acceptsAudience(creds, claims) {
		return nil, ErrAudienceMismatch
	}

	return &SecurityContext{claims: claims, xsappname: creds.XSAppName}, nil
}

// keyFor はトークンヘッダーに応じて検証鍵を選ぶ。
// jkuとkidがあればuaadomain配下のURLから取得し、無ければverificationkeyを使う。
func (v *Validator) keyFor(ctx context.Context, t *jwt.Token, creds Credentials) (any, error) {
	jku, _ := t.Header["jku"].(string)
	kid, _ := t.Header["kid"].(string)
	if jku != "" && kid != "" && creds.UAADomain != "" {
		if err := trustedKeyURL(jku, creds.UAADomain); err != nil {
			return nil, err
		}
		return v.fetchKey(ctx, jku, kid)
	}
	if creds.VerificationKey == "" {
		return nil, ErrKeyNotFound
	}
	return parsePublicKeyPEM(creds.VerificationKey)
}

// acceptsAudience はトークンがこのアプリケーション宛てかを判定する。
// 資格情報にclientidが無い場合は判定しない。audが空のトークンは
// スコープの接頭辞を受信者として扱う。
func acceptsAudience(creds Credentials, claims *Claims) bool {
	if creds.ClientID == "" {
		return true
	}

	candidates := slices.Clone([]string(claims.Audience))
	if len(candidates) == 0 {
		for _, s := range claims.Scope {
			if prefix, _, found := strings.Cut(s, "."); found {
				candidates = append(candidates, prefix)
			}
		}
	}
	if id := claims.clientID(); id != "" {
		candidates = append(candidates, id)
	}

	for _, a := range candidates {
		if a == creds.ClientID {
			return true
		}
		if creds.XSAppName != "" && a == creds.XSAppName {
			return true
		}
	}
	return false
}
