// Package config はプロセス起動時に一度だけ環境変数から設定を読み込む。
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/nao1215/xsuaa-gate/pkg/auth"
	"github.com/nao1215/xsuaa-gate/pkg/cfenv"
)

// Config はサービス全体の設定。main で一度だけ生成し、ポインタで各コンポーネントに渡す。
type Config struct {
	// Port はHTTPサーバーのリッスンポート。
	Port string
	// LocalDebug は認証を省略するオフライン開発モード。
	LocalDebug bool
	// ServiceName はXSUAAサービスバインディング名。
	ServiceName string
	// RequiredScope は保護されたルートに必要なスコープ。
	RequiredScope string
	// AllowedOrigins はCORSで許可するオリジン。"*" は全オリジン。
	AllowedOrigins []string
	// Services はVCAP_SERVICESの生のJSON。
	Services string
	// Application はVCAP_APPLICATIONの生のJSON。
	Application string
}

// Load は .env ファイル（存在する場合）と環境変数から設定を読み込む。
// .env の値は既に設定されている環境変数を上書きしない。
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf(".envの読み込みに失敗: %w", err)
	}
	return FromLookup(os.LookupEnv), nil
}

// FromLookup はlookup関数から設定を組み立てる。テストでは環境変数の代わりにマップを渡せる。
func FromLookup(lookup func(string) (string, bool)) *Config {
	get := func(key, defaultValue string) string {
		if v, ok := lookup(key); ok && v != "" {
			return v
		}
		return defaultValue
	}

	debug, _ := lookup("LOCAL_DEBUG")
	return &Config{
		Port:           get("PORT", "8080"),
		LocalDebug:     strings.EqualFold(debug, "true"),
		ServiceName:    get("XSUAA_SERVICE_NAME", auth.DefaultServiceName),
		RequiredScope:  auth.DefaultRequiredScope,
		AllowedOrigins: splitList(get("CORS_ALLOWED_ORIGINS", "*")),
		Services:       get(cfenv.EnvServices, ""),
		Application:    get(cfenv.EnvApplication, ""),
	}
}

// Validate は設定値の妥当性を検証する。
func (c *Config) Validate() error {
	port, err := strconv.Atoi(c.Port)
	if err != nil || port < 0 || port > 65535 {
		return fmt.Errorf("PORTが不正です: %q", c.Port)
	}
	if c.ServiceName == "" {
		return errors.New("サービスバインディング名が空です")
	}
	if c.RequiredScope == "" {
		return errors.New("必須スコープが空です")
	}
	return nil
}

// GateOptions は認証ゲートの設定を返す。
func (c *Config) GateOptions() auth.Options {
	return auth.Options{
		LocalDebug:    c.LocalDebug,
		ServiceName:   c.ServiceName,
		RequiredScope: c.RequiredScope,
	}
}

// splitList はカンマ区切りの文字列を空要素を除いて分割する。
func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
