// Package server はヘルスチェックと認証付きデータ取得の2つのルートを公開するHTTPサーバーを提供する。
//
// 保護されたルートの前段には middleware.Authorize を置き、認可判定は注入された
// middleware.Guard に委譲する。ハンドラー自体は固定のレスポンスを返すだけである。
package server
