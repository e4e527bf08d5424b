// Package httpclient は外部サービスからJSONを取得するHTTPクライアントを提供する。
//
// XSUAAのトークン検証鍵（JWKS）の取得に使用する。
package httpclient
