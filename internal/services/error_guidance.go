package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/huangang/jokecli/internal/config"
)

// ErrorInfo is what the CLI shows for a failure and how it exits.
type ErrorInfo struct {
	Kind     ErrorKind
	Message  string
	Guidance []string
	ExitCode int
}

// DescribeError maps any error to its user-facing message, remediation
// steps and exit code.
func DescribeError(err error) ErrorInfo {
	if err == nil {
		return ErrorInfo{ExitCode: ExitSuccess}
	}

	if errors.Is(err, context.Canceled) {
		return ErrorInfo{
			Kind:     KindCancelled,
			Message:  "Operation cancelled by user.",
			ExitCode: ExitUserCancelled,
		}
	}

	var gwErr *GatewayError
	if errors.As(err, &gwErr) {
		return describeGatewayError(gwErr)
	}

	var catErr *InvalidCategoryError
	if errors.As(err, &catErr) {
		return ErrorInfo{
			Kind:    KindInvalidCategory,
			Message: fmt.Sprintf("Invalid joke category '%s'.", catErr.Category),
			Guidance: []string{
				"Available categories: " + strings.Join(catErr.Valid, ", "),
				"Use --help to see all available options.",
			},
			ExitCode: ExitInvalidArguments,
		}
	}

	var storeErr *StorageError
	if errors.As(err, &storeErr) {
		msg := "Failed to save feedback data."
		if storeErr.Op == "read" {
			msg = "Failed to read feedback data."
		}
		return ErrorInfo{
			Kind:    KindStorage,
			Message: msg,
			Guidance: []string{
				"Feedback storage issues:",
				"  1. Check if you have write permissions to your home directory",
				"  2. Ensure sufficient disk space is available",
				"  3. The joke was still generated successfully",
			},
			ExitCode: ExitGeneralError,
		}
	}

	var ratingErr *RatingError
	if errors.As(err, &ratingErr) {
		return ErrorInfo{
			Kind:    KindInvalidRating,
			Message: ratingErr.Error(),
			Guidance: []string{
				"Please provide a valid rating:",
				"  1 = Poor",
				"  2 = Fair",
				"  3 = Good",
				"  4 = Very Good",
				"  5 = Excellent",
				"Or enter 's' to skip feedback.",
			},
			ExitCode: ExitInvalidArguments,
		}
	}

	return ErrorInfo{
		Kind:    KindGeneral,
		Message: fmt.Sprintf("An unexpected error occurred: %v", err),
		Guidance: []string{
			"This is an unexpected error:",
			"  1. Try running the command again",
			"  2. Check that your credentials are properly configured",
			"  3. If the problem persists, please report this issue",
		},
		ExitCode: ExitGeneralError,
	}
}

func describeGatewayError(e *GatewayError) ErrorInfo {
	info := ErrorInfo{Kind: e.Kind, Message: e.Error(), ExitCode: ExitGeneralError}

	switch e.Kind {
	case KindNoCredentials:
		info.ExitCode = ExitCredentialsError
		if e.isAWS() {
			info.Guidance = []string{
				"Configure credentials using one of these methods:",
				"  1. Run 'aws configure' to set up default credentials",
				"  2. Set AWS_PROFILE environment variable to use a specific profile",
				"  3. Use IAM roles if running on EC2/ECS/Lambda",
				"  4. Set AWS_ACCESS_KEY_ID and AWS_SECRET_ACCESS_KEY environment variables",
			}
		} else {
			info.Guidance = []string{
				"Configure an API key using one of these methods:",
				"  1. Set ai.api_key in " + config.DefaultPath(),
				"  2. Set the JOKE_CLI_API_KEY environment variable",
			}
		}
	case KindInvalidProfile:
		profile := profileOrDefault(e.Profile)
		info.ExitCode = ExitCredentialsError
		info.Guidance = []string{
			"Check available profiles:",
			"  1. Run 'aws configure list-profiles' to see available profiles",
			"  2. Verify the profile name is spelled correctly",
			fmt.Sprintf("  3. Create the profile using 'aws configure --profile %s'", profile),
		}
	case KindAccessDenied:
		info.ExitCode = ExitAccessDenied
		if e.isAWS() {
			info.Guidance = []string{
				"Request access to the model:",
				"  1. Go to AWS Bedrock console (https://console.aws.amazon.com/bedrock/)",
				"  2. Navigate to 'Model access' in the left sidebar",
				fmt.Sprintf("  3. Request access to '%s' model", e.ModelID),
				"  4. Wait for approval (usually takes a few minutes)",
				"  5. Ensure your IAM user/role has 'bedrock:InvokeModel' permission",
			}
		} else {
			info.Guidance = []string{
				fmt.Sprintf("Check that your API key is allowed to use '%s'.", e.ModelID),
			}
		}
	case KindInsufficientPermissions:
		info.ExitCode = ExitAccessDenied
		info.Guidance = []string{
			"Required IAM permissions:",
			"  - bedrock:InvokeModel",
			"  - bedrock:ListFoundationModels (optional, for model listing)",
			"Contact your AWS administrator to add these permissions to your IAM user or role.",
		}
	case KindNetworkError:
		info.ExitCode = ExitNetworkError
		info.Guidance = []string{
			"Troubleshooting steps:",
			"  1. Check your internet connection",
			"  2. Verify AWS service status at https://status.aws.amazon.com/",
			"  3. Check if you're behind a corporate firewall",
			"  4. Try again in a few moments",
		}
	case KindNetworkTimeout:
		info.ExitCode = ExitNetworkError
		info.Guidance = []string{
			"The request took too long to complete:",
			"  1. Check your network connection stability",
			"  2. Try again - this may be a temporary issue",
			"  3. Consider using a different AWS region if problems persist",
		}
	case KindServiceUnavailable:
		info.ExitCode = ExitServiceUnavailable
		info.Guidance = []string{
			"This is usually temporary:",
			"  1. Check AWS service status at https://status.aws.amazon.com/",
			"  2. Wait a few minutes and try again",
			"  3. Try a different AWS region if the issue persists",
		}
	case KindRateLimited:
		info.ExitCode = ExitRateLimited
		info.Guidance = []string{
			"You're making requests too quickly:",
			"  1. Wait 30-60 seconds before trying again",
			"  2. Consider requesting higher rate limits in AWS console",
			"  3. Implement exponential backoff in automated scripts",
		}
	case KindModelNotFound:
		info.Guidance = []string{
			"Model availability issues:",
			"  1. Verify the model ID is correct",
			"  2. Check if the model is available in your AWS region",
			"  3. Ensure you have requested access to this model",
			"  4. Try using the default model: " + config.DefaultModelID,
		}
	case KindEmptyResponse:
		info.Guidance = []string{
			"This can happen occasionally:",
			"  1. Try generating another joke",
			"  2. Try a different category",
			"  3. If this persists, there may be an issue with the model",
		}
	case KindInvalidRequest, KindMalformedResponse:
		info.Guidance = []string{
			"The model rejected the request or answered in an unexpected format:",
			"  1. Verify the model ID matches the selected provider",
			"  2. Run 'joke models' to list models you can use",
		}
	}
	return info
}
