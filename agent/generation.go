package agent

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// GenerateOptions carries the optional knobs for Generate.
type GenerateOptions struct {
	// Model selects a specific model of the provider.
	Model string
	// Content, when non-empty, is the text of the post published with the
	// generated media once the job completes.
	Content string
	// Params are provider-specific parameters forwarded verbatim, e.g.
	// {"voice_id": "..."} for voice generation.
	Params map[string]any
}

// Generate starts an asynchronous AI generation job. generationType is one
// of image, video, voice, sound_effect, music. The returned job carries the
// queued state; poll GetPendingJobs or GetGenerationHistory for progress.
func (a *Agent) Generate(ctx context.Context, prompt, provider, generationType string, options *GenerateOptions) (*GenerationJob, error) {
	if options == nil {
		options = &GenerateOptions{}
	}
	if prompt == "" || runeLen(prompt) > a.limits.MaxPromptLength {
		return nil, validationError("validation_error",
			fmt.Sprintf("Prompt must be 1-%d characters", a.limits.MaxPromptLength))
	}

	provider, errProvider := a.checkProvider(provider)
	if errProvider != nil {
		return nil, errProvider
	}

	generationType = strings.ToLower(generationType)
	if !contains(a.limits.GenerationTypes, generationType) {
		return nil, validationError("invalid_type",
			fmt.Sprintf("Invalid type. Must be one of: %s",
				strings.Join(a.limits.GenerationTypes, ", ")))
	}

	if options.Content != "" && runeLen(options.Content) > a.limits.MaxContentWithMedia {
		return nil, validationError("validation_error",
			fmt.Sprintf("Content exceeds %d characters", a.limits.MaxContentWithMedia))
	}

	body := map[string]any{
		"provider":       provider,
		"prompt":         prompt,
		"generationType": generationType,
	}
	if options.Content != "" {
		body["content"] = options.Content
	}
	if options.Model != "" {
		body["model"] = options.Model
	}
	if len(options.Params) > 0 {
		body["params"] = options.Params
	}

	payload, errReq := a.client.Request(ctx, http.MethodPost, epGenerate, nil, body, true)
	if errReq != nil {
		return nil, errReq
	}

	var resp struct {
		JobID  string `json:"jobId"`
		Status string `json:"status"`
	}
	if err := decode(payload, "", &resp); err != nil {
		return nil, err
	}
	if resp.Status == "" {
		resp.Status = "pending"
	}
	return &GenerationJob{
		ID:       resp.JobID,
		Status:   resp.Status,
		Provider: provider,
		Type:     generationType,
		Prompt:   prompt,
		Model:    options.Model,
	}, nil
}

// GetPendingJobs lists active and recently failed generation jobs.
func (a *Agent) GetPendingJobs(ctx context.Context) ([]GenerationJob, error) {
	payload, errReq := a.client.Request(ctx, http.MethodGet, epGeneratePending, nil, nil, true)
	if errReq != nil {
		return nil, errReq
	}

	var list GenerationJobList
	if err := decode(payload, "", &list); err != nil {
		return nil, err
	}
	return list.Jobs, nil
}

// GetGenerationHistory lists past generation jobs.
func (a *Agent) GetGenerationHistory(ctx context.Context, limit int, cursor string) (*GenerationJobList, error) {
	payload, errReq := a.client.Request(ctx, http.MethodGet, epGenerateHistory,
		a.pageQuery(limit, cursor), nil, true)
	if errReq != nil {
		return nil, errReq
	}

	var list GenerationJobList
	if err := decode(payload, "", &list); err != nil {
		return nil, err
	}
	return &list, nil
}

// RetryGeneration retries a failed generation job. The server allows at
// most 3 retries per job.
func (a *Agent) RetryGeneration(ctx context.Context, jobID string) (*GenerationJob, error) {
	payload, errReq := a.client.Request(ctx, http.MethodPost, generateRetryPath(jobID), nil, nil, true)
	if errReq != nil {
		return nil, errReq
	}

	var resp struct {
		JobID      string `json:"jobId"`
		Status     string `json:"status"`
		RetryCount int    `json:"retryCount"`
	}
	if err := decode(payload, "", &resp); err != nil {
		return nil, err
	}
	if resp.Status == "" {
		resp.Status = "pending"
	}
	return &GenerationJob{
		ID:         resp.JobID,
		Status:     resp.Status,
		RetryCount: resp.RetryCount,
	}, nil
}

// GetModels lists the models a provider offers for a generation type.
func (a *Agent) GetModels(ctx context.Context, provider, generationType string) ([]ModelInfo, error) {
	query := url.Values{}
	query.Set("provider", strings.ToUpper(provider))
	query.Set("type", strings.ToLower(generationType))

	payload, errReq := a.client.Request(ctx, http.MethodGet, epGenerateModels, query, nil, true)
	if errReq != nil {
		return nil, errReq
	}

	var models struct {
		Models []ModelInfo `json:"models"`
	}
	if err := decode(payload, "", &models); err != nil {
		return nil, err
	}
	return models.Models, nil
}

// GetVoices lists the voices available for voice generation. Empty provider
// defaults to ELEVENLABS, currently the only voice provider.
func (a *Agent) GetVoices(ctx context.Context, provider string) ([]VoiceInfo, error) {
	if provider == "" {
		provider = "ELEVENLABS"
	}
	query := url.Values{}
	query.Set("provider", strings.ToUpper(provider))

	payload, errReq := a.client.Request(ctx, http.MethodGet, epGenerateVoices, query, nil, true)
	if errReq != nil {
		return nil, errReq
	}

	var voices struct {
		Voices []VoiceInfo `json:"voices"`
	}
	if err := decode(payload, "", &voices); err != nil {
		return nil, err
	}
	return voices.Voices, nil
}
