package catalog

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/pricing"
	"golang.org/x/time/rate"

	"github.com/nextops/aws-services/config"
	"github.com/nextops/aws-services/internal/logging"
)

type PricingOptions struct {
	RateLimit      rate.Limit
	BurstSize      int
	MaxRetries     int
	BackoffInitial time.Duration
	BackoffMax     time.Duration
	PageSize       int32
}

func DefaultPricingOptions() PricingOptions {
	return PricingOptions{
		RateLimit:      8,
		BurstSize:      16,
		MaxRetries:     3,
		BackoffInitial: 1 * time.Second,
		BackoffMax:     30 * time.Second,
		PageSize:       100,
	}
}

// PricingProvider lists AWS service codes through the Pricing DescribeServices API.
// Pages are followed internally so callers always get one complete list.
//
// Names are Pricing service codes such as "AmazonEC2" or "AWSLambda", not the
// short SDK client names ("ec2", "lambda"). Nodes written from this provider
// will not match nodes written from a list of SDK client names.
type PricingProvider struct {
	client  pricing.DescribeServicesAPIClient
	opts    PricingOptions
	limiter *rate.Limiter
	logger  *logging.Logger
}

func NewPricingProvider(client pricing.DescribeServicesAPIClient, opts PricingOptions, logger *logging.Logger) *PricingProvider {
	if opts.RateLimit <= 0 {
		opts.RateLimit = rate.Inf
	}
	if opts.BurstSize <= 0 {
		opts.BurstSize = 1
	}
	if opts.MaxRetries < 0 {
		opts.MaxRetries = 0
	}
	if opts.BackoffMax < opts.BackoffInitial {
		opts.BackoffMax = opts.BackoffInitial
	}
	if logger == nil {
		logger = logging.Discard()
	}
	return &PricingProvider{
		client:  client,
		opts:    opts,
		limiter: rate.NewLimiter(opts.RateLimit, opts.BurstSize),
		logger:  logger,
	}
}

// LoadPricingProvider resolves credentials from the default AWS chain. The
// client always targets cfg.PricingRegion, whatever AWS_REGION the host sets.
func LoadPricingProvider(ctx context.Context, cfg config.AWSConfig, logger *logging.Logger) (*PricingProvider, error) {
	awsConf, err := awscfg.LoadDefaultConfig(ctx, awscfg.WithRegion(pricingRegion(cfg)))
	if err != nil {
		return nil, fmt.Errorf("aws config load: %w", err)
	}

	opts := DefaultPricingOptions()
	opts.RateLimit = rate.Limit(cfg.RateLimit)
	opts.MaxRetries = cfg.MaxRetries
	if cfg.BackoffInitial > 0 {
		opts.BackoffInitial = cfg.BackoffInitial
	}
	if cfg.BackoffMax > 0 {
		opts.BackoffMax = cfg.BackoffMax
	}

	return NewPricingProvider(pricing.NewFromConfig(awsConf), opts, logger), nil
}

func pricingRegion(cfg config.AWSConfig) string {
	if cfg.PricingRegion == "" {
		return "us-east-1"
	}
	return cfg.PricingRegion
}

func (p *PricingProvider) ListEntityNames(ctx context.Context) ([]string, error) {
	input := &pricing.DescribeServicesInput{
		FormatVersion: aws.String("aws_v1"),
	}
	if p.opts.PageSize > 0 {
		input.MaxResults = aws.Int32(p.opts.PageSize)
	}

	names := []string{}
	var nextToken *string
	pages := 0

	for {
		if err := p.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter: %w", err)
		}

		input.NextToken = nextToken
		resp, err := p.describeWithRetry(ctx, input)
		if err != nil {
			return nil, err
		}
		pages++

		for _, svc := range resp.Services {
			if code := aws.ToString(svc.ServiceCode); code != "" {
				names = append(names, code)
			}
		}

		if resp.NextToken == nil || *resp.NextToken == "" {
			break
		}
		nextToken = resp.NextToken
	}

	p.logger.Debugf("catalog.pricing", "pages=%d services=%d", pages, len(names))
	return names, nil
}

func (p *PricingProvider) describeWithRetry(ctx context.Context, input *pricing.DescribeServicesInput) (*pricing.DescribeServicesOutput, error) {
	backoff := p.opts.BackoffInitial

	for attempt := 0; ; attempt++ {
		resp, err := p.client.DescribeServices(ctx, input)
		if err == nil {
			return resp, nil
		}
		if attempt >= p.opts.MaxRetries {
			return nil, fmt.Errorf("DescribeServices failed after %d attempts: %w", attempt+1, err)
		}

		p.logger.Warnf("catalog.pricing", "attempt=%d error=%q retry_in=%s", attempt+1, err.Error(), backoff)
		select {
		case <-time.After(backoff):
			backoff = time.Duration(float64(backoff) * 1.5)
			if backoff > p.opts.BackoffMax {
				backoff = p.opts.BackoffMax
			}
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}
