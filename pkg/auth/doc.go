// Package auth はXSUAAのサービスバインディングに委譲する認証ゲートを提供する。
//
// ゲートはリクエストごとにBearerトークンを取り出し、名前付きのサービスバインディングから
// 資格情報を解決してトークンを検証し、必須スコープの有無で通過・拒否を判定する。
// ゲート自体は状態を持たず、同じリクエストには常に同じ判定を返す。
package auth
