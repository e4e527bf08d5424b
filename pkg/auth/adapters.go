package auth

import (
	"context"

	"github.com/nao1215/xsuaa-gate/pkg/cfenv"
	"github.com/nao1215/xsuaa-gate/pkg/xssec"
)

// CFLocator はCloud Foundry環境のサービスバインディングを解決するServiceLocatorを返す。
func CFLocator(env *cfenv.Env) ServiceLocator {
	return LocatorFunc(func(name string) (Binding, bool) {
		svc, ok := env.Service(name)
		if !ok {
			return Binding{}, false
		}
		return Binding{Name: svc.Name, Credentials: svc.Credentials}, true
	})
}

// XSUAAValidator はxssecでトークンを検証するTokenValidatorを返す。
func XSUAAValidator(v *xssec.Validator) TokenValidator {
	return ValidatorFunc(func(ctx context.Context, token string, credentials map[string]any) (SecurityContext, error) {
		creds, err := xssec.ParseCredentials(credentials)
		if err != nil {
			return nil, err
		}
		sc, err := v.CreateSecurityContext(ctx, token, creds)
		if err != nil {
			return nil, err
		}
		return sc, nil
	})
}
