// Package xssec はXSUAAが発行したアクセストークンを検証し、
// スコープを問い合わせるためのセキュリティコンテキストを生成する。
//
// トークンはRS256で署名されている必要がある。検証鍵はトークンヘッダーのjku
// （uaadomain配下のURLに限る）から取得するか、サービスバインディングの
// verificationkeyを使う。
package xssec
