package services

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrock"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"
	"github.com/aws/smithy-go"
	"github.com/huangang/jokecli/internal/models"
	"github.com/huangang/jokecli/pkg/logger"
)

type BedrockOptions struct {
	Profile string
	Region  string
	Timeout time.Duration
}

// BedrockBackend talks to Amazon Bedrock. The AWS config is resolved on first
// use so that commands which never call a model do not need credentials.
type BedrockBackend struct {
	opts BedrockOptions

	mu      sync.Mutex
	cfg     *aws.Config
	runtime *bedrockruntime.Client
	control *bedrock.Client
}

func NewBedrockBackend(opts BedrockOptions) *BedrockBackend {
	return &BedrockBackend{opts: opts}
}

// NewBedrockBackendFromConfig uses an already loaded AWS config.
func NewBedrockBackendFromConfig(cfg aws.Config, opts BedrockOptions) *BedrockBackend {
	return &BedrockBackend{opts: opts, cfg: &cfg}
}

func (b *BedrockBackend) Name() string { return ProviderBedrock }

func (b *BedrockBackend) awsConfig(ctx context.Context) (aws.Config, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.cfg != nil {
		return *b.cfg, nil
	}

	timeout := b.opts.Timeout
	httpClient := awshttp.NewBuildableClient().
		WithTimeout(timeout).
		WithDialerOptions(func(d *net.Dialer) { d.Timeout = timeout })

	loadOpts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithHTTPClient(httpClient),
		// a single failure is surfaced to the user as-is
		awsconfig.WithRetryer(func() aws.Retryer { return aws.NopRetryer{} }),
	}
	if b.opts.Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(b.opts.Region))
	}
	if b.opts.Profile != "" {
		loadOpts = append(loadOpts, awsconfig.WithSharedConfigProfile(b.opts.Profile))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return aws.Config{}, b.configError(err)
	}

	logger.Debugf("[AI] Loaded AWS config (profile: %s, region: %s)", profileOrDefault(b.opts.Profile), cfg.Region)
	b.cfg = &cfg
	return cfg, nil
}

func (b *BedrockBackend) runtimeClient(ctx context.Context) (*bedrockruntime.Client, error) {
	cfg, err := b.awsConfig(ctx)
	if err != nil {
		return nil, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.runtime == nil {
		b.runtime = bedrockruntime.NewFromConfig(cfg)
	}
	return b.runtime, nil
}

func (b *BedrockBackend) controlClient(ctx context.Context) (*bedrock.Client, error) {
	cfg, err := b.awsConfig(ctx)
	if err != nil {
		return nil, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.control == nil {
		b.control = bedrock.NewFromConfig(cfg)
	}
	return b.control, nil
}

// CheckCredentials resolves credentials without calling Bedrock.
func (b *BedrockBackend) CheckCredentials(ctx context.Context) error {
	cfg, err := b.awsConfig(ctx)
	if err != nil {
		return err
	}
	if cfg.Credentials == nil {
		return b.gatewayError(KindNoCredentials, "", "", nil)
	}
	if _, err := cfg.Credentials.Retrieve(ctx); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return b.gatewayError(KindNoCredentials, "", "", err)
	}
	return nil
}

func (b *BedrockBackend) Converse(ctx context.Context, req *ChatRequest) (*ChatResponse, error) {
	client, err := b.runtimeClient(ctx)
	if err != nil {
		return nil, err
	}

	out, err := client.Converse(ctx, &bedrockruntime.ConverseInput{
		ModelId: aws.String(req.ModelID),
		Messages: []types.Message{
			{
				Role: types.ConversationRoleUser,
				Content: []types.ContentBlock{
					&types.ContentBlockMemberText{Value: req.Prompt},
				},
			},
		},
		InferenceConfig: &types.InferenceConfiguration{
			MaxTokens:   aws.Int32(int32(req.MaxTokens)),
			Temperature: aws.Float32(float32(req.Temperature)),
			TopP:        aws.Float32(float32(req.TopP)),
		},
	})
	if err != nil {
		return nil, b.apiError(err, req.ModelID)
	}

	resp := &ChatResponse{}
	msg, ok := out.Output.(*types.ConverseOutputMemberMessage)
	if !ok {
		return resp, nil
	}
	for _, block := range msg.Value.Content {
		if text, ok := block.(*types.ContentBlockMemberText); ok {
			resp.Text = text.Value
			break
		}
	}
	return resp, nil
}

func (b *BedrockBackend) InvokeModel(ctx context.Context, modelID string, body []byte) ([]byte, error) {
	client, err := b.runtimeClient(ctx)
	if err != nil {
		return nil, err
	}

	out, err := client.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     aws.String(modelID),
		Body:        body,
		ContentType: aws.String("application/json"),
		Accept:      aws.String("application/json"),
	})
	if err != nil {
		return nil, b.apiError(err, modelID)
	}
	return out.Body, nil
}

func (b *BedrockBackend) ListModels(ctx context.Context) ([]models.ModelSummary, error) {
	client, err := b.controlClient(ctx)
	if err != nil {
		return nil, err
	}

	out, err := client.ListFoundationModels(ctx, &bedrock.ListFoundationModelsInput{})
	if err != nil {
		return nil, b.apiError(err, "")
	}

	list := make([]models.ModelSummary, 0, len(out.ModelSummaries))
	for _, m := range out.ModelSummaries {
		list = append(list, models.ModelSummary{
			ID:       aws.ToString(m.ModelId),
			Name:     aws.ToString(m.ModelName),
			Provider: aws.ToString(m.ProviderName),
		})
	}
	return list, nil
}

// apiError maps AWS service error codes. Transport failures are returned
// unchanged for the gateway to classify.
func (b *BedrockBackend) apiError(err error, modelID string) error {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		code := apiErr.ErrorCode()
		logger.Debugf("[AI] AWS error - Code: %s, Message: %s", code, apiErr.ErrorMessage())

		switch code {
		case "AccessDeniedException", "UnauthorizedOperation":
			return b.gatewayError(KindAccessDenied, modelID, "", err)
		case "UnrecognizedClientException", "InvalidSignatureException", "ExpiredTokenException", "InvalidClientTokenId":
			return b.gatewayError(KindNoCredentials, modelID, "", err)
		case "InvalidUserID.NotFound":
			return b.gatewayError(KindInvalidProfile, modelID, "", err)
		case "ThrottlingException":
			return b.gatewayError(KindRateLimited, modelID, "", err)
		case "ServiceUnavailableException", "ModelNotReadyException":
			return b.gatewayError(KindServiceUnavailable, modelID, "", err)
		case "ValidationException":
			return b.gatewayError(KindInvalidRequest, modelID, apiErr.ErrorMessage(), err)
		case "ResourceNotFoundException":
			return b.gatewayError(KindModelNotFound, modelID, "", err)
		default:
			return b.gatewayError(KindProviderError, modelID,
				fmt.Sprintf("AWS API error (%s): %s", code, apiErr.ErrorMessage()), err)
		}
	}

	if isTimeout(err) || errors.Is(err, context.Canceled) {
		return err
	}
	if isCredentialError(err) {
		return b.gatewayError(KindNoCredentials, modelID, "", err)
	}
	return err
}

func (b *BedrockBackend) configError(err error) error {
	var profileErr awsconfig.SharedConfigProfileNotExistError
	if errors.As(err, &profileErr) {
		return b.gatewayError(KindInvalidProfile, "", "", err)
	}
	return b.gatewayError(KindProviderError, "", fmt.Sprintf("Failed to initialize Bedrock client: %v", err), err)
}

func (b *BedrockBackend) gatewayError(kind ErrorKind, modelID, detail string, err error) *GatewayError {
	return &GatewayError{
		Kind:     kind,
		Provider: ProviderBedrock,
		ModelID:  modelID,
		Profile:  b.opts.Profile,
		Detail:   detail,
		Err:      err,
	}
}

// Credential resolution fails inside the signing step, before any request is sent.
func isCredentialError(err error) bool {
	var signErr *v4.SigningError
	if errors.As(err, &signErr) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "failed to retrieve credentials") ||
		strings.Contains(msg, "get identity")
}
