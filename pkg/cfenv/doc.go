// Package cfenv はCloud Foundryが環境変数で提供するアプリケーション情報と
// サービスバインディング（VCAP_SERVICES / VCAP_APPLICATION）を読み取る。
//
// 環境変数の解析は起動時に一度だけ行い、以降は読み取り専用で参照する。
package cfenv
