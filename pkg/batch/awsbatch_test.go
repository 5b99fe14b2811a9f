package batch

import (
	"context"
	"fmt"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsbatch "github.com/aws/aws-sdk-go-v2/service/batch"
	"github.com/aws/aws-sdk-go-v2/service/batch/types"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jzallen/fred-simulations-sub002/pkg/run"
)

// mockAPIError implements smithy.APIError for testing error code mapping.
type mockAPIError struct {
	code    string
	message string
}

func (e *mockAPIError) Error() string                 { return fmt.Sprintf("%s: %s", e.code, e.message) }
func (e *mockAPIError) ErrorCode() string             { return e.code }
func (e *mockAPIError) ErrorMessage() string          { return e.message }
func (e *mockAPIError) ErrorFault() smithy.ErrorFault { return smithy.FaultUnknown }

var _ smithy.APIError = (*mockAPIError)(nil)

// fakeBatch is a scriptable api implementation.
type fakeBatch struct {
	submitIn  *awsbatch.SubmitJobInput
	submitErr error

	listIn   *awsbatch.ListJobsInput
	listOut  *awsbatch.ListJobsOutput
	listErr  error
	descIn   *awsbatch.DescribeJobsInput
	descOut  *awsbatch.DescribeJobsOutput
	descErr  error
	termIn   *awsbatch.TerminateJobInput
	termErr  error
}

func (f *fakeBatch) SubmitJob(_ context.Context, params *awsbatch.SubmitJobInput, _ ...func(*awsbatch.Options)) (*awsbatch.SubmitJobOutput, error) {
	f.submitIn = params
	if f.submitErr != nil {
		return nil, f.submitErr
	}
	return &awsbatch.SubmitJobOutput{JobId: aws.String("ext-1")}, nil
}

func (f *fakeBatch) ListJobs(_ context.Context, params *awsbatch.ListJobsInput, _ ...func(*awsbatch.Options)) (*awsbatch.ListJobsOutput, error) {
	f.listIn = params
	if f.listErr != nil {
		return nil, f.listErr
	}
	if f.listOut != nil {
		return f.listOut, nil
	}
	return &awsbatch.ListJobsOutput{}, nil
}

func (f *fakeBatch) DescribeJobs(_ context.Context, params *awsbatch.DescribeJobsInput, _ ...func(*awsbatch.Options)) (*awsbatch.DescribeJobsOutput, error) {
	f.descIn = params
	if f.descErr != nil {
		return nil, f.descErr
	}
	if f.descOut != nil {
		return f.descOut, nil
	}
	return &awsbatch.DescribeJobsOutput{}, nil
}

func (f *fakeBatch) TerminateJob(_ context.Context, params *awsbatch.TerminateJobInput, _ ...func(*awsbatch.Options)) (*awsbatch.TerminateJobOutput, error) {
	f.termIn = params
	if f.termErr != nil {
		return nil, f.termErr
	}
	return &awsbatch.TerminateJobOutput{}, nil
}

func testConfig() Config {
	return Config{Queue: "fred-batch-queue-dev", Definition: "fred-simulation-runner-dev"}
}

func testRun() *run.Run {
	return &run.Run{ID: 4, JobID: 12}
}

func listOutWithJob(id string) *awsbatch.ListJobsOutput {
	return &awsbatch.ListJobsOutput{
		JobSummaryList: []types.JobSummary{{JobId: aws.String(id)}},
	}
}

func TestAWSGateway_Submit(t *testing.T) {
	fake := &fakeBatch{}
	gw, err := NewWithClient(fake, testConfig(), nil)
	require.NoError(t, err)

	require.NoError(t, gw.Submit(context.Background(), testRun()))

	require.NotNil(t, fake.submitIn)
	assert.Equal(t, "job-12-run-4", aws.ToString(fake.submitIn.JobName))
	assert.Equal(t, "fred-batch-queue-dev", aws.ToString(fake.submitIn.JobQueue))
	assert.Equal(t, "fred-simulation-runner-dev", aws.ToString(fake.submitIn.JobDefinition))
	require.NotNil(t, fake.submitIn.ContainerOverrides)
	assert.Equal(t,
		[]string{"run", "--job-id", "12", "--run-id", "4"},
		fake.submitIn.ContainerOverrides.Command)
}

func TestAWSGateway_Submit_UnpersistedRun(t *testing.T) {
	gw, err := NewWithClient(&fakeBatch{}, testConfig(), nil)
	require.NoError(t, err)

	err = gw.Submit(context.Background(), &run.Run{JobID: 12})
	require.Error(t, err)
	assert.ErrorIs(t, err, run.ErrNotPersisted)
}

func TestAWSGateway_Describe(t *testing.T) {
	tests := []struct {
		name            string
		batchStatus     types.JobStatus
		resultsUploaded bool
		wantStatus      run.RunStatus
		wantPhase       run.PodPhase
	}{
		{"queued", types.JobStatusRunnable, false, run.StatusQueued, run.PhasePending},
		{"running", types.JobStatusRunning, false, run.StatusRunning, run.PhaseRunning},
		{"succeeded without results stays running", types.JobStatusSucceeded, false, run.StatusRunning, run.PhaseSucceeded},
		{"succeeded with results is done", types.JobStatusSucceeded, true, run.StatusDone, run.PhaseSucceeded},
		{"failed", types.JobStatusFailed, false, run.StatusError, run.PhaseFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeBatch{
				listOut: listOutWithJob("ext-1"),
				descOut: &awsbatch.DescribeJobsOutput{
					Jobs: []types.JobDetail{{
						Status:       tt.batchStatus,
						StatusReason: aws.String("reason"),
					}},
				},
			}
			gw, err := NewWithClient(fake, testConfig(), nil)
			require.NoError(t, err)

			r := testRun()
			r.ResultsUploaded = tt.resultsUploaded

			detail, err := gw.Describe(context.Background(), r)
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, detail.Status)
			assert.Equal(t, tt.wantPhase, detail.PodPhase)
			assert.Equal(t, "reason", detail.Message)
		})
	}
}

func TestAWSGateway_Describe_FiltersByNaturalKey(t *testing.T) {
	fake := &fakeBatch{
		listOut: listOutWithJob("ext-1"),
		descOut: &awsbatch.DescribeJobsOutput{
			Jobs: []types.JobDetail{{Status: types.JobStatusRunning}},
		},
	}
	gw, err := NewWithClient(fake, testConfig(), nil)
	require.NoError(t, err)

	_, err = gw.Describe(context.Background(), testRun())
	require.NoError(t, err)

	require.NotNil(t, fake.listIn)
	assert.Equal(t, "fred-batch-queue-dev", aws.ToString(fake.listIn.JobQueue))
	require.Len(t, fake.listIn.Filters, 1)
	assert.Equal(t, "JOB_NAME", aws.ToString(fake.listIn.Filters[0].Name))
	assert.Equal(t, []string{"job-12-run-4"}, fake.listIn.Filters[0].Values)

	require.NotNil(t, fake.descIn)
	assert.Equal(t, []string{"ext-1"}, fake.descIn.Jobs)
}

func TestAWSGateway_Describe_NotFound(t *testing.T) {
	t.Run("empty list", func(t *testing.T) {
		gw, err := NewWithClient(&fakeBatch{}, testConfig(), nil)
		require.NoError(t, err)

		_, err = gw.Describe(context.Background(), testRun())
		assert.True(t, IsJobNotFound(err))
	})

	t.Run("listed but gone before describe", func(t *testing.T) {
		// The job can be removed between the list and describe calls; that
		// window collapses to the same not-found as an empty list.
		fake := &fakeBatch{
			listOut: listOutWithJob("ext-1"),
			descOut: &awsbatch.DescribeJobsOutput{},
		}
		gw, err := NewWithClient(fake, testConfig(), nil)
		require.NoError(t, err)

		_, err = gw.Describe(context.Background(), testRun())
		assert.True(t, IsJobNotFound(err))
	})
}

func TestAWSGateway_Cancel(t *testing.T) {
	fake := &fakeBatch{listOut: listOutWithJob("ext-1")}
	gw, err := NewWithClient(fake, testConfig(), nil)
	require.NoError(t, err)

	require.NoError(t, gw.Cancel(context.Background(), testRun(), ""))

	require.NotNil(t, fake.termIn)
	assert.Equal(t, "ext-1", aws.ToString(fake.termIn.JobId))
	assert.Equal(t, DefaultCancelReason, aws.ToString(fake.termIn.Reason))
}

func TestAWSGateway_Cancel_NotFound(t *testing.T) {
	gw, err := NewWithClient(&fakeBatch{}, testConfig(), nil)
	require.NoError(t, err)

	err = gw.Cancel(context.Background(), testRun(), "done with it")
	assert.True(t, IsJobNotFound(err))
}

func TestAWSGateway_WrapError(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		check func(error) bool
	}{
		{"throttling", &mockAPIError{code: "ThrottlingException", message: "slow down"}, IsThrottled},
		{"too many requests", &mockAPIError{code: "TooManyRequestsException", message: "slow down"}, IsThrottled},
		{"access denied", &mockAPIError{code: "AccessDeniedException", message: "nope"}, IsAccessDenied},
		{"server exception", &mockAPIError{code: "ServerException", message: "boom"}, IsServiceUnavailable},
		{"client exception not found", &mockAPIError{code: "ClientException", message: "Job definition does not exist"}, IsJobNotFound},
		{"string fallback throttling", fmt.Errorf("Throttling: rate exceeded"), IsThrottled},
		{"string fallback 503", fmt.Errorf("unexpected 503 from endpoint"), IsServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeBatch{listErr: tt.err}
			gw, err := NewWithClient(fake, testConfig(), nil)
			require.NoError(t, err)

			_, err = gw.Describe(context.Background(), testRun())
			require.Error(t, err)
			assert.True(t, tt.check(err), "got %v", err)

			var ge *GatewayError
			require.ErrorAs(t, err, &ge)
			assert.Equal(t, "Describe", ge.Op)
			assert.Equal(t, "job-12-run-4", ge.JobName)
		})
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr string
	}{
		{"missing queue", Config{Definition: "def"}, "job queue is required"},
		{"missing definition", Config{Queue: "q"}, "job definition is required"},
		{"valid", testConfig(), ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, IsRetryable(&GatewayError{Op: "Describe", Err: ErrThrottled}))
	assert.True(t, IsRetryable(&GatewayError{Op: "Describe", Err: ErrServiceUnavailable}))
	assert.True(t, IsRetryable(&GatewayError{Op: "Describe", Err: context.DeadlineExceeded}))
	assert.False(t, IsRetryable(&GatewayError{Op: "Describe", Err: ErrJobNotFound}))
	assert.False(t, IsRetryable(&GatewayError{Op: "Describe", Err: ErrAccessDenied}))
	assert.False(t, IsRetryable(nil))
}
