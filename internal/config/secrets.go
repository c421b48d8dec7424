package config

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/secretsmanager"
)

// SecretFetcher resolves a named secret to its string value.
type SecretFetcher func(ctx context.Context, awsCfg AWSConfig, name string) (string, error)

// AWSSecretFetcher reads the secret from AWS Secrets Manager. The profile is
// honoured for local development; in-cluster the default credential chain
// (IRSA) applies.
func AWSSecretFetcher(ctx context.Context, awsCfg AWSConfig, name string) (string, error) {
	sess, err := session.NewSessionWithOptions(session.Options{
		Config: aws.Config{
			Region:                        aws.String(awsCfg.Region),
			CredentialsChainVerboseErrors: aws.Bool(awsCfg.Profile != ""),
		},
		Profile:           awsCfg.Profile,
		SharedConfigState: session.SharedConfigEnable,
	})
	if err != nil {
		return "", fmt.Errorf("failed to create AWS session: %w", err)
	}

	svc := secretsmanager.New(sess)

	result, err := svc.GetSecretValueWithContext(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(name),
	})
	if err != nil {
		return "", fmt.Errorf("failed to retrieve secret '%s': %w", name, err)
	}

	if result.SecretString == nil || strings.TrimSpace(*result.SecretString) == "" {
		return "", fmt.Errorf("secret '%s' has no string value", name)
	}

	return strings.TrimSpace(*result.SecretString), nil
}
