package config

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/rs/zerolog/log"
)

// ParameterReader is the slice of the SSM client used to fetch parameters.
type ParameterReader interface {
	GetParametersByPath(ctx context.Context, params *ssm.GetParametersByPathInput, optFns ...func(*ssm.Options)) (*ssm.GetParametersByPathOutput, error)
}

// WithSSM overlays SSM parameters stored under SSM_PARAMETER_PATH onto the config.
// Parameter "/site/prod/JWT_SECRET" becomes key "JWT_SECRET". Nothing happens when the
// path is unset.
func WithSSM(ctx context.Context, c map[string]string) (map[string]string, error) {
	prefix := GetString(c, "SSM_PARAMETER_PATH", "")
	if prefix == "" {
		return c, nil
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return c, fmt.Errorf("load aws config: %w", err)
	}

	return OverlayParameters(ctx, ssm.NewFromConfig(awsCfg), c, prefix)
}

// OverlayParameters pages through every parameter under prefix and copies it into c.
func OverlayParameters(ctx context.Context, client ParameterReader, c map[string]string, prefix string) (map[string]string, error) {
	var nextToken *string
	loaded := 0

	for {
		out, err := client.GetParametersByPath(ctx, &ssm.GetParametersByPathInput{
			Path:           aws.String(prefix),
			Recursive:      aws.Bool(true),
			WithDecryption: aws.Bool(true),
			NextToken:      nextToken,
		})
		if err != nil {
			return c, fmt.Errorf("get parameters under %s: %w", prefix, err)
		}

		for _, p := range out.Parameters {
			name := aws.ToString(p.Name)
			key := strings.ToUpper(path.Base(name))
			c[key] = aws.ToString(p.Value)
			loaded++
		}

		if out.NextToken == nil || *out.NextToken == "" {
			break
		}
		nextToken = out.NextToken
	}

	log.Info().Str("path", prefix).Int("count", loaded).Msg("Loaded SSM parameters")
	return c, nil
}
