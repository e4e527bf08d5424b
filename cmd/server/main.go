// XSUAA認証付きHTTPサービスのエントリポイント。
// ヘルスチェックと、XSUAAのスコープ検証を通過したリクエストだけが到達するデータ取得ルートを公開する。
package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/nao1215/xsuaa-gate/internal/config"
	"github.com/nao1215/xsuaa-gate/internal/server"
	"github.com/nao1215/xsuaa-gate/pkg/auth"
	"github.com/nao1215/xsuaa-gate/pkg/cfenv"
	"github.com/nao1215/xsuaa-gate/pkg/httpclient"
	"github.com/nao1215/xsuaa-gate/pkg/xssec"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("設定の読み込みに失敗: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("設定が不正です: %v", err)
	}

	env, err := cfenv.New(cfg.Services, cfg.Application)
	if err != nil {
		log.Fatalf("Cloud Foundry環境の解析に失敗: %v", err)
	}

	gate := auth.New(
		cfg.GateOptions(),
		auth.CFLocator(env),
		auth.XSUAAValidator(xssec.NewValidator(httpclient.New(httpclient.DefaultTimeout))),
	)

	if cfg.LocalDebug {
		log.Printf("LOCAL_DEBUGが有効なため認証を省略します。本番環境では使用しないこと")
	} else {
		log.Printf("認証が有効です（サービス: %s, スコープ: %s）。ローカルで試す場合は LOCAL_DEBUG=TRUE を設定してください", cfg.ServiceName, cfg.RequiredScope)
		if _, ok := env.Service(cfg.ServiceName); !ok {
			log.Printf("サービス %s のバインディングが見つかりません。/data_read は503を返します", cfg.ServiceName)
		}
	}
	if app := env.Application(); app.Name != "" {
		log.Printf("アプリケーション: %s (space=%s)", app.Name, app.SpaceName)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Printf("サービスを起動します: :%s", cfg.Port)
	if err := server.New(cfg, gate).Run(ctx); err != nil {
		log.Fatalf("サービスの起動に失敗: %v", err)
	}
}
