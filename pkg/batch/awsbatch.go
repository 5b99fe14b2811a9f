package batch

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awsbatch "github.com/aws/aws-sdk-go-v2/service/batch"
	"github.com/aws/aws-sdk-go-v2/service/batch/types"
	"github.com/aws/smithy-go"
	"go.uber.org/zap"

	"github.com/jzallen/fred-simulations-sub002/pkg/batchstatus"
	"github.com/jzallen/fred-simulations-sub002/pkg/run"
)

// api is the subset of the AWS Batch client the gateway consumes.
type api interface {
	SubmitJob(ctx context.Context, params *awsbatch.SubmitJobInput, optFns ...func(*awsbatch.Options)) (*awsbatch.SubmitJobOutput, error)
	ListJobs(ctx context.Context, params *awsbatch.ListJobsInput, optFns ...func(*awsbatch.Options)) (*awsbatch.ListJobsOutput, error)
	DescribeJobs(ctx context.Context, params *awsbatch.DescribeJobsInput, optFns ...func(*awsbatch.Options)) (*awsbatch.DescribeJobsOutput, error)
	TerminateJob(ctx context.Context, params *awsbatch.TerminateJobInput, optFns ...func(*awsbatch.Options)) (*awsbatch.TerminateJobOutput, error)
}

// AWSGateway implements Gateway against AWS Batch.
type AWSGateway struct {
	client     api
	queue      string
	definition string
	logger     *zap.Logger
}

var _ Gateway = (*AWSGateway)(nil)

// New creates an AWS Batch gateway using the SDK default credential chain.
func New(ctx context.Context, cfg Config, logger *zap.Logger) (*AWSGateway, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var opts []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.Region))
	}
	if cfg.Profile != "" {
		opts = append(opts, awsconfig.WithSharedConfigProfile(cfg.Profile))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, &GatewayError{Op: "New", Err: err}
	}
	if awsCfg.Region == "" {
		awsCfg.Region = "us-east-1"
	}

	var clientOpts []func(*awsbatch.Options)
	if cfg.Endpoint != "" {
		clientOpts = append(clientOpts, func(o *awsbatch.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		})
	}

	return NewWithClient(awsbatch.NewFromConfig(awsCfg, clientOpts...), cfg, logger)
}

// NewWithClient creates a gateway with an injected Batch client. Used by
// tests and by callers that manage their own AWS configuration.
func NewWithClient(client api, cfg Config, logger *zap.Logger) (*AWSGateway, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AWSGateway{
		client:     client,
		queue:      cfg.Queue,
		definition: cfg.Definition,
		logger:     logger,
	}, nil
}

// Submit submits the run's job under its natural key.
//
// The container command invokes the simulation-runner CLI for this run:
// ["run", "--job-id", N, "--run-id", M]. Environment configuration lives in
// the job definition, not the override.
func (g *AWSGateway) Submit(ctx context.Context, r *run.Run) error {
	jobName, err := r.NaturalKey()
	if err != nil {
		return &GatewayError{Op: "Submit", Err: err}
	}

	command := []string{
		"run",
		"--job-id", strconv.FormatInt(r.JobID, 10),
		"--run-id", strconv.FormatInt(r.ID, 10),
	}

	_, err = g.client.SubmitJob(ctx, &awsbatch.SubmitJobInput{
		JobName:       aws.String(jobName),
		JobQueue:      aws.String(g.queue),
		JobDefinition: aws.String(g.definition),
		ContainerOverrides: &types.ContainerOverrides{
			Command: command,
		},
	})
	if err != nil {
		return g.wrapError("Submit", jobName, err)
	}

	g.logger.Info("submitted batch job",
		zap.String("job_name", jobName),
		zap.String("queue", g.queue))
	return nil
}

// Describe returns the current status snapshot for the run's job.
//
// The lookup is two-step because AWS Batch does not support direct lookup by
// caller-chosen name: list jobs filtered by name to obtain the current
// execution ID, then describe by that ID. The job can be removed between the
// two calls; that case is reported as ErrJobNotFound, same as an empty list.
func (g *AWSGateway) Describe(ctx context.Context, r *run.Run) (run.StatusDetail, error) {
	jobName, err := r.NaturalKey()
	if err != nil {
		return run.StatusDetail{}, &GatewayError{Op: "Describe", Err: err}
	}

	jobID, err := g.resolveJobID(ctx, "Describe", jobName)
	if err != nil {
		return run.StatusDetail{}, err
	}

	out, err := g.client.DescribeJobs(ctx, &awsbatch.DescribeJobsInput{
		Jobs: []string{jobID},
	})
	if err != nil {
		return run.StatusDetail{}, g.wrapError("Describe", jobName, err)
	}
	if len(out.Jobs) == 0 {
		return run.StatusDetail{}, &GatewayError{Op: "Describe", JobName: jobName, Err: ErrJobNotFound}
	}

	detail := out.Jobs[0]
	batchStatus := string(detail.Status)

	return run.StatusDetail{
		Status:   batchstatus.MapRunStatus(batchStatus, r.ResultsUploaded),
		PodPhase: batchstatus.MapPodPhase(batchStatus),
		Message:  aws.ToString(detail.StatusReason),
	}, nil
}

// Cancel terminates the run's job, resolving it by natural key first.
func (g *AWSGateway) Cancel(ctx context.Context, r *run.Run, reason string) error {
	jobName, err := r.NaturalKey()
	if err != nil {
		return &GatewayError{Op: "Cancel", Err: err}
	}
	if reason == "" {
		reason = DefaultCancelReason
	}

	jobID, err := g.resolveJobID(ctx, "Cancel", jobName)
	if err != nil {
		return err
	}

	if _, err := g.client.TerminateJob(ctx, &awsbatch.TerminateJobInput{
		JobId:  aws.String(jobID),
		Reason: aws.String(reason),
	}); err != nil {
		return g.wrapError("Cancel", jobName, err)
	}

	g.logger.Info("terminated batch job",
		zap.String("job_name", jobName),
		zap.String("reason", reason))
	return nil
}

// resolveJobID finds the current execution ID for a natural-key job name.
func (g *AWSGateway) resolveJobID(ctx context.Context, op, jobName string) (string, error) {
	out, err := g.client.ListJobs(ctx, &awsbatch.ListJobsInput{
		JobQueue: aws.String(g.queue),
		Filters: []types.KeyValuesPair{
			{Name: aws.String("JOB_NAME"), Values: []string{jobName}},
		},
	})
	if err != nil {
		return "", g.wrapError(op, jobName, err)
	}
	if len(out.JobSummaryList) == 0 {
		return "", &GatewayError{Op: op, JobName: jobName, Err: ErrJobNotFound}
	}
	return aws.ToString(out.JobSummaryList[0].JobId), nil
}

// wrapError converts AWS Batch errors to gateway errors with sentinels.
func (g *AWSGateway) wrapError(op, jobName string, err error) error {
	wrapped := &GatewayError{Op: op, JobName: jobName, Err: err}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "ThrottlingException", "TooManyRequestsException", "RequestLimitExceeded":
			wrapped.Err = ErrThrottled
		case "AccessDeniedException", "UnauthorizedOperation":
			wrapped.Err = ErrAccessDenied
		case "ServerException", "ServiceUnavailable", "InternalError":
			wrapped.Err = ErrServiceUnavailable
		case "ClientException":
			if strings.Contains(strings.ToLower(apiErr.ErrorMessage()), "not found") ||
				strings.Contains(strings.ToLower(apiErr.ErrorMessage()), "does not exist") {
				wrapped.Err = ErrJobNotFound
			}
		}
		return wrapped
	}

	errMsg := err.Error()
	switch {
	case strings.Contains(errMsg, "Throttling") || strings.Contains(errMsg, "429"):
		wrapped.Err = ErrThrottled
	case strings.Contains(errMsg, "AccessDenied") || strings.Contains(errMsg, "403"):
		wrapped.Err = ErrAccessDenied
	case strings.Contains(errMsg, "ServiceUnavailable") || strings.Contains(errMsg, "503"):
		wrapped.Err = ErrServiceUnavailable
	}
	return wrapped
}
