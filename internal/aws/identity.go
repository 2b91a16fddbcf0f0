// Package aws wraps the SDK calls the tool makes beyond object reads.
package aws

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sts"

	"github.com/earthdata-tools/h5remote/pkg/types"
)

// CallerIdentity represents AWS caller identity information
type CallerIdentity struct {
	Account string
	Arn     string
	UserID  string
}

// GetCallerIdentity asks STS who the bundle's credentials belong to. The
// bundle is used as-is through a static provider, so this proves the exact
// values the resolver produced can sign a request.
func GetCallerIdentity(ctx context.Context, bundle *types.CredentialBundle) (*CallerIdentity, error) {
	client := sts.New(sts.Options{
		Region: string(bundle.Region),
		Credentials: credentials.NewStaticCredentialsProvider(
			string(bundle.AccessKey),
			string(bundle.SecretKey),
			string(bundle.SessionToken),
		),
	})

	output, err := client.GetCallerIdentity(ctx, &sts.GetCallerIdentityInput{})
	if err != nil {
		return nil, err
	}

	return &CallerIdentity{
		Account: deref(output.Account),
		Arn:     deref(output.Arn),
		UserID:  deref(output.UserId),
	}, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
