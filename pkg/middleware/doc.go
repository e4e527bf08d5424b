// Package middleware はGinベースのHTTP APIで使用する共通ミドルウェアを提供する。
//
// Guardによる認可判定、Bearerトークンの取り出し、リクエストID付与、
// パニックリカバリ、CORS設定を含む。
package middleware
