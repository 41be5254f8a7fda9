package hunyuan

import (
	"context"
	"encoding/base64"
	"fmt"
	"time"

	aiart "github.com/tencentcloud/tencentcloud-sdk-go/tencentcloud/aiart/v20221229"
	"github.com/tencentcloud/tencentcloud-sdk-go/tencentcloud/common"
	"github.com/tencentcloud/tencentcloud-sdk-go/tencentcloud/common/profile"

	"github.com/reusedev/draw-mcp/internal/consts"
	"github.com/reusedev/draw-mcp/internal/modules/logs"
	"github.com/reusedev/draw-mcp/internal/modules/provider"
	"github.com/reusedev/draw-mcp/tools"
)

const (
	region = "ap-guangzhou"

	submitAttempts   = 3
	submitRetryDelay = 2 * time.Second
	pollAttempts     = 60
	pollInterval     = 2 * time.Second
	downloadAttempts = 3
	downloadDelay    = 1 * time.Second
)

// Provider generates images through the Tencent HunyuanImage 3.0 async
// job API: submit, poll until done, then download the result URL.
type Provider struct {
	client *aiart.Client
}

func New(secretID, secretKey string) (*Provider, error) {
	cred := common.NewCredential(secretID, secretKey)
	cpf := profile.NewClientProfile()
	client, err := aiart.NewClient(cred, region, cpf)
	if err != nil {
		return nil, fmt.Errorf("create aiart client: %w", err)
	}
	return &Provider{client: client}, nil
}

func (p *Provider) Name() consts.Provider {
	return consts.Hunyuan
}

func (p *Provider) Styles() provider.Menu {
	return styles
}

func (p *Provider) Resolutions() provider.Menu {
	return resolutions
}

func (p *Provider) Generate(ctx context.Context, input provider.GenerateInput) (*provider.GenerateOutput, error) {
	prompt := styledPrompt(input)
	logs.Logger.Info().Str("provider", consts.Hunyuan.String()).Str("resolution", input.Resolution).
		Str("style", input.Style).Msg("image request")

	jobID, err := p.submitJob(ctx, prompt, input.Resolution)
	if err != nil {
		return nil, provider.NewFailure(consts.ErrProviderError,
			fmt.Sprintf("Hunyuan API call failed: %s", err),
			map[string]any{"provider": consts.Hunyuan.String(), "timeout": ctx.Err() != nil})
	}
	logs.Logger.Info().Str("provider", consts.Hunyuan.String()).Str("job_id", jobID).Msg("image job submitted")

	data, revised, fail := p.waitForJob(ctx, jobID)
	if fail != nil {
		return nil, fail
	}
	if len(data) == 0 {
		return nil, provider.NewFailure(consts.ErrMissingContent,
			"Image data is empty",
			map[string]any{"provider": consts.Hunyuan.String(), "job_id": jobID})
	}

	return &provider.GenerateOutput{
		B64:           base64.StdEncoding.EncodeToString(data),
		MimeType:      "image/jpeg",
		RevisedPrompt: revised,
	}, nil
}

func (p *Provider) submitJob(ctx context.Context, prompt, resolution string) (string, error) {
	req := aiart.NewSubmitTextToImageJobRequest()
	req.Prompt = common.StringPtr(prompt)
	req.Resolution = common.StringPtr(resolution)
	req.Revise = common.Int64Ptr(1)
	req.LogoAdd = common.Int64Ptr(0)

	var lastErr error
	for attempt := 1; attempt <= submitAttempts; attempt++ {
		resp, err := p.client.SubmitTextToImageJobWithContext(ctx, req)
		if err == nil && resp.Response != nil && resp.Response.JobId != nil && *resp.Response.JobId != "" {
			return *resp.Response.JobId, nil
		}
		if err == nil {
			err = fmt.Errorf("submit response carries no job id")
		}
		lastErr = err
		logs.Logger.Warn().Err(err).Int("attempt", attempt).Msg("hunyuan submit failed")
		if attempt < submitAttempts {
			if serr := sleepContext(ctx, submitRetryDelay); serr != nil {
				return "", serr
			}
		}
	}
	return "", lastErr
}

func (p *Provider) waitForJob(ctx context.Context, jobID string) ([]byte, *string, *provider.Failure) {
	req := aiart.NewQueryTextToImageJobRequest()
	req.JobId = common.StringPtr(jobID)

	for attempt := 1; attempt <= pollAttempts; attempt++ {
		resp, err := p.client.QueryTextToImageJobWithContext(ctx, req)
		if err != nil {
			logs.Logger.Warn().Err(err).Str("job_id", jobID).Int("attempt", attempt).Msg("hunyuan query failed")
			if serr := sleepContext(ctx, pollInterval); serr != nil {
				return nil, nil, timeoutFailure(jobID)
			}
			continue
		}

		status := ""
		if resp.Response != nil && resp.Response.JobStatusCode != nil {
			status = *resp.Response.JobStatusCode
		}
		switch status {
		case "5": // completed
			url := firstResultImage(resp.Response.ResultImage)
			if url == "" {
				return nil, nil, provider.NewFailure(consts.ErrMissingContent,
					"Task completed but no usable image result",
					map[string]any{"provider": consts.Hunyuan.String(), "job_id": jobID})
			}
			data, fail := p.downloadResult(ctx, jobID, url)
			if fail != nil {
				return nil, nil, fail
			}
			return data, firstRevisedPrompt(resp.Response.RevisedPrompt), nil
		case "4": // failed
			return nil, nil, provider.NewFailure(consts.ErrGenerationFailed,
				"Image generation task failed",
				map[string]any{"provider": consts.Hunyuan.String(), "job_id": jobID})
		default: // 1: waiting, 2: running
			if serr := sleepContext(ctx, pollInterval); serr != nil {
				return nil, nil, timeoutFailure(jobID)
			}
		}
	}
	return nil, nil, provider.NewFailure(consts.ErrProviderError,
		"Image generation failed, unable to get image result",
		map[string]any{"provider": consts.Hunyuan.String(), "job_id": jobID})
}

func (p *Provider) downloadResult(ctx context.Context, jobID, url string) ([]byte, *provider.Failure) {
	for attempt := 1; attempt <= downloadAttempts; attempt++ {
		data, _, err := tools.GetOnlineImage(ctx, url)
		if err == nil && len(data) > 0 {
			return data, nil
		}
		logs.Logger.Warn().Err(err).Str("job_id", jobID).Int("attempt", attempt).Msg("hunyuan result download failed")
		if attempt < downloadAttempts {
			if serr := sleepContext(ctx, downloadDelay); serr != nil {
				return nil, timeoutFailure(jobID)
			}
		}
	}
	return nil, provider.NewFailure(consts.ErrProviderError,
		"Failed to download generated image",
		map[string]any{"provider": consts.Hunyuan.String(), "job_id": jobID, "url": url})
}

func firstRevisedPrompt(prompts []*string) *string {
	for _, p := range prompts {
		if p != nil && *p != "" {
			v := *p
			return &v
		}
	}
	return nil
}

func timeoutFailure(jobID string) *provider.Failure {
	return provider.NewFailure(consts.ErrProviderError,
		"Hunyuan API request timeout",
		map[string]any{"provider": consts.Hunyuan.String(), "job_id": jobID, "timeout": true})
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
