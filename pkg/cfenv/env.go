package cfenv

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

const (
	// EnvServices はサービスバインディングを保持する環境変数名。
	EnvServices = "VCAP_SERVICES"
	// EnvApplication はアプリケーション情報を保持する環境変数名。
	EnvApplication = "VCAP_APPLICATION"
)

// Service はバインドされた1つのサービスインスタンス。
type Service struct {
	// Name はサービスインスタンス名。バインディングの検索キーとなる。
	Name string `json:"name"`
	// Label はサービスの種類（例: "xsuaa"）。
	Label string `json:"label"`
	// Plan はサービスプラン名。
	Plan string `json:"plan"`
	// Tags はサービスに付与されたタグ。
	Tags []string `json:"tags"`
	// Credentials はサービスへの接続情報。
	Credentials map[string]any `json:"credentials"`
}

// Application はVCAP_APPLICATIONに含まれるアプリケーション情報。
type Application struct {
	// Name はアプリケーション名。
	Name string `json:"application_name"`
	// ApplicationID はアプリケーションの一意識別子。
	ApplicationID string `json:"application_id"`
	// SpaceName はデプロイ先のスペース名。
	SpaceName string `json:"space_name"`
	// URIs はアプリケーションにルーティングされるURI。
	URIs []string `json:"application_uris"`
}

// Env は解析済みのCloud Foundry環境。
type Env struct {
	app      Application
	services []Service
}

// New はVCAP_SERVICESとVCAP_APPLICATIONのJSON文字列から環境を生成する。
// 空文字列はそれぞれ「サービス無し」「アプリケーション情報無し」として扱う。
func New(vcapServices, vcapApplication string) (*Env, error) {
	env := &Env{}

	if s := strings.TrimSpace(vcapServices); s != "" {
		var byLabel map[string][]Service
		if err := json.Unmarshal([]byte(s), &byLabel); err != nil {
			return nil, fmt.Errorf("%sの解析に失敗: %w", EnvServices, err)
		}
		for label, list := range byLabel {
			for _, svc := range list {
				if svc.Label == "" {
					svc.Label = label
				}
				env.services = append(env.services, svc)
			}
		}
		sort.SliceStable(env.services, func(i, j int) bool {
			return env.services[i].Name < env.services[j].Name
		})
	}

	if a := strings.TrimSpace(vcapApplication); a != "" {
		if err := json.Unmarshal([]byte(a), &env.app); err != nil {
			return nil, fmt.Errorf("%sの解析に失敗: %w", EnvApplication, err)
		}
	}

	return env, nil
}

// Service は名前が一致するサービスを返す。見つからない場合はfalseを返す。
func (e *Env) Service(name string) (*Service, bool) {
	for i := range e.services {
		if e.services[i].Name == name {
			svc := e.services[i]
			return &svc, true
		}
	}
	return nil, false
}

// ServiceByLabel はラベルが一致する最初のサービスを返す。
func (e *Env) ServiceByLabel(label string) (*Service, bool) {
	for i := range e.services {
		if e.services[i].Label == label {
			svc := e.services[i]
			return &svc, true
		}
	}
	return nil, false
}

// Services は全サービスを名前順で返す。
func (e *Env) Services() []Service {
	out := make([]Service, len(e.services))
	copy(out, e.services)
	return out
}

// Application はアプリケーション情報を返す。
func (e *Env) Application() Application {
	return e.app
}

// IsCloudFoundry はVCAP_APPLICATIONが与えられていたかを返す。
func (e *Env) IsCloudFoundry() bool {
	return e.app.ApplicationID != "" || e.app.Name != ""
}
