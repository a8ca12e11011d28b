package agent

import (
	"context"
	"fmt"
	"net/http"
	"strings"
)

// ListServices lists the AI providers connected to your account.
func (a *Agent) ListServices(ctx context.Context) (*ServiceList, error) {
	payload, errReq := a.client.Request(ctx, http.MethodGet, epServices, nil, nil, true)
	if errReq != nil {
		return nil, errReq
	}

	var list ServiceList
	if err := decode(payload, "", &list); err != nil {
		return nil, err
	}
	return &list, nil
}

// ConnectService connects an AI provider with its API key. The key is sent
// to the server and never stored by the SDK.
func (a *Agent) ConnectService(ctx context.Context, provider, apiKey string) (*ConnectedService, error) {
	provider, errProvider := a.checkProvider(provider)
	if errProvider != nil {
		return nil, errProvider
	}
	if strings.TrimSpace(apiKey) == "" {
		return nil, validationError("invalid_api_key", "API key is required")
	}

	body := map[string]any{
		"provider": provider,
		"apiKey":   apiKey,
	}

	payload, errReq := a.client.Request(ctx, http.MethodPost, epServices, nil, body, true)
	if errReq != nil {
		return nil, errReq
	}

	var service ConnectedService
	if err := decode(payload, "service", &service); err != nil {
		return nil, err
	}
	return &service, nil
}

// DisconnectService removes a connected AI provider and deletes its key.
func (a *Agent) DisconnectService(ctx context.Context, provider string) error {
	provider, errProvider := a.checkProvider(provider)
	if errProvider != nil {
		return errProvider
	}
	_, err := a.client.Request(ctx, http.MethodDelete, servicePath(provider), nil, nil, true)
	return err
}

// UpdateService toggles a connected provider active or inactive.
func (a *Agent) UpdateService(ctx context.Context, provider string, isActive bool) (*ConnectedService, error) {
	provider, errProvider := a.checkProvider(provider)
	if errProvider != nil {
		return nil, errProvider
	}

	body := map[string]any{"isActive": isActive}

	payload, errReq := a.client.Request(ctx, http.MethodPatch, servicePath(provider), nil, body, true)
	if errReq != nil {
		return nil, errReq
	}

	var service ConnectedService
	if err := decode(payload, "service", &service); err != nil {
		return nil, err
	}
	return &service, nil
}

// TestService validates the stored API key of a connected provider with a
// minimal call to the provider.
func (a *Agent) TestService(ctx context.Context, provider string) (*ServiceTestResult, error) {
	provider, errProvider := a.checkProvider(provider)
	if errProvider != nil {
		return nil, errProvider
	}

	payload, errReq := a.client.Request(ctx, http.MethodPost, serviceTestPath(provider), nil, nil, true)
	if errReq != nil {
		return nil, errReq
	}

	var result ServiceTestResult
	if err := decode(payload, "", &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// checkProvider uppercases and validates a provider name.
func (a *Agent) checkProvider(provider string) (string, error) {
	provider = strings.ToUpper(provider)
	if !contains(a.limits.GenerationProviders, provider) {
		return "", validationError("invalid_provider",
			fmt.Sprintf("Invalid provider. Must be one of: %s",
				strings.Join(a.limits.GenerationProviders, ", ")))
	}
	return provider, nil
}
