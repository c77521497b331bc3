package job

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/maauso/sfxgen-api/internal/generator"
	"github.com/maauso/sfxgen-api/internal/media"
	"github.com/maauso/sfxgen-api/internal/storage"
)

const testBucket = "sfx-results"

// mp4Header is the leading ftyp box of an ISO base media file.
var mp4Header = []byte("\x00\x00\x00\x20ftypisom\x00\x00\x02\x00isomiso2avc1mp41")

func mp4Body() []byte {
	return append(append([]byte{}, mp4Header...), bytes.Repeat([]byte{0x42}, 4096)...)
}

// mockArtifacts implements storage.ArtifactStore for testing.
type mockArtifacts struct {
	mock.Mock
}

func (m *mockArtifacts) Upload(ctx context.Context, bucket, key string, body io.Reader, contentType string) error {
	args := m.Called(ctx, bucket, key, body, contentType)
	return args.Error(0)
}

func (m *mockArtifacts) PublicURL(bucket, key string) string {
	return "https://cdn.test/" + bucket + "/" + key
}

// mockGenerator implements generator.Generator for testing.
type mockGenerator struct {
	mock.Mock
}

func (m *mockGenerator) Generate(ctx context.Context, req generator.Request) error {
	args := m.Called(ctx, req)
	return args.Error(0)
}

// mockMixer implements media.Mixer for testing.
type mockMixer struct {
	mock.Mock
}

func (m *mockMixer) Mix(ctx context.Context, videoPath, audioPath, output string) error {
	args := m.Called(ctx, videoPath, audioPath, output)
	return args.Error(0)
}

// failingRepository fails updates selected by failUpdate.
type failingRepository struct {
	*MemoryRepository
	failCreate bool
	failUpdate func(Update) bool
}

func (r *failingRepository) Create(ctx context.Context, job *Job) (string, error) {
	if r.failCreate {
		return "", recordError("create", "", errors.New("connection refused"))
	}
	return r.MemoryRepository.Create(ctx, job)
}

func (r *failingRepository) Update(ctx context.Context, jobID string, u Update) error {
	if r.failUpdate != nil && r.failUpdate(u) {
		return recordError("update", jobID, errors.New("connection reset"))
	}
	return r.MemoryRepository.Update(ctx, jobID, u)
}

func writeFile(t *testing.T, path string, data string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(data), 0o600))
}

func drainBody(args mock.Arguments) {
	_, _ = io.Copy(io.Discard, args.Get(3).(io.Reader))
}

type fixture struct {
	repo      *MemoryRepository
	temp      *storage.LocalStorage
	artifacts *mockArtifacts
	gen       *mockGenerator
	mixer     *mockMixer
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	temp, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	return &fixture{
		repo:      NewMemoryRepository(),
		temp:      temp,
		artifacts: new(mockArtifacts),
		gen:       new(mockGenerator),
		mixer:     new(mockMixer),
	}
}

func (f *fixture) service(repo Repository, opts ...ServiceOption) *Service {
	if repo == nil {
		repo = f.repo
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewService(repo, f.temp, f.artifacts, f.gen, f.mixer, testBucket, logger, opts...)
}

// generatorWrites makes the generator mock produce the audio artifact.
func (f *fixture) generatorWrites(t *testing.T, content string) *mock.Call {
	return f.gen.On("Generate", mock.Anything, mock.AnythingOfType("generator.Request")).
		Run(func(args mock.Arguments) {
			req := args.Get(1).(generator.Request)
			writeFile(t, req.OutputPath, content)
		}).
		Return(nil)
}

func (f *fixture) assertTempEmpty(t *testing.T) {
	t.Helper()
	entries, err := os.ReadDir(f.temp.TempDir())
	require.NoError(t, err)
	assert.Empty(t, entries, "temporary files left behind")
}

func (f *fixture) storedJob(t *testing.T, jobID string) *Job {
	t.Helper()
	j, err := f.repo.FindByID(context.Background(), jobID)
	require.NoError(t, err)
	return j
}

func requireJobError(t *testing.T, err error, kind Kind) *Error {
	t.Helper()
	require.Error(t, err)
	var jerr *Error
	require.True(t, errors.As(err, &jerr), "expected *job.Error, got %T", err)
	assert.Equal(t, kind, jerr.Kind)
	return jerr
}

func TestNewService_Defaults(t *testing.T) {
	f := newFixture(t)
	svc := NewService(f.repo, f.temp, f.artifacts, f.gen, f.mixer, testBucket, nil)

	assert.NotNil(t, svc.logger)
	assert.Equal(t, SourceModeLocal, svc.sourceMode)
	assert.False(t, svc.mixing)
	assert.Equal(t, defaultGenTimeout, svc.genTimeout)
	assert.Equal(t, defaultMixTimeout, svc.mixTimeout)
	assert.Equal(t, DefaultMaxVideoBytes, svc.maxVideoBytes)
	assert.Equal(t, media.DefaultVideoTypes, svc.videoTypes)
}

func TestNewService_Options(t *testing.T) {
	f := newFixture(t)
	svc := f.service(nil,
		WithSourceMode(SourceModeURL),
		WithMixing(true),
		WithGenerationTimeout(time.Minute),
		WithMixingTimeout(time.Second),
		WithMaxVideoBytes(1024),
		WithAllowedVideoTypes([]string{"video/webm"}),
	)

	assert.Equal(t, SourceModeURL, svc.sourceMode)
	assert.True(t, svc.mixing)
	assert.Equal(t, time.Minute, svc.genTimeout)
	assert.Equal(t, time.Second, svc.mixTimeout)
	assert.Equal(t, int64(1024), svc.maxVideoBytes)
	assert.Equal(t, []string{"video/webm"}, svc.videoTypes)

	// Non-positive sizes and empty lists keep the defaults.
	svc = f.service(nil, WithMaxVideoBytes(0), WithAllowedVideoTypes(nil))
	assert.Equal(t, DefaultMaxVideoBytes, svc.maxVideoBytes)
	assert.Equal(t, media.DefaultVideoTypes, svc.videoTypes)
}

func TestService_Generate_PromptOnly(t *testing.T) {
	f := newFixture(t)
	f.generatorWrites(t, "flac-bytes")
	f.artifacts.On("Upload", mock.Anything, testBucket, mock.MatchedBy(func(k string) bool {
		return strings.HasSuffix(k, "/audio.flac")
	}), mock.Anything, "audio/flac").Run(drainBody).Return(nil)

	svc := f.service(nil, WithMixing(true))
	res, err := svc.Generate(context.Background(), Input{Prompt: "  rain on a tin roof ", Duration: 8})
	require.NoError(t, err)

	assert.NotEmpty(t, res.JobID)
	assert.Equal(t, "https://cdn.test/sfx-results/jobs/"+res.JobID+"/audio.flac", res.AudioURL)
	assert.Empty(t, res.VideoURL)

	stored := f.storedJob(t, res.JobID)
	assert.Equal(t, StatusCompleted, stored.Status)
	assert.Equal(t, "rain on a tin roof", stored.Prompt)
	assert.Equal(t, 8, stored.Duration)
	assert.Equal(t, res.AudioURL, stored.AudioURL)
	assert.Empty(t, stored.ErrorMessage)
	assert.False(t, stored.CompletedAt.IsZero())

	req := f.gen.Calls[0].Arguments.Get(1).(generator.Request)
	assert.Equal(t, "rain on a tin roof", req.Prompt)
	assert.Empty(t, req.VideoRef)
	assert.True(t, strings.HasPrefix(req.OutputPath, f.temp.TempDir()))

	// Mixing is skipped without a source video.
	f.mixer.AssertNotCalled(t, "Mix", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	f.assertTempEmpty(t)
}

func TestService_Generate_WithVideoAndMixing(t *testing.T) {
	f := newFixture(t)
	f.generatorWrites(t, "flac-bytes")
	f.mixer.On("Mix", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			writeFile(t, args.String(3), "mp4-bytes")
		}).
		Return(nil)
	f.artifacts.On("Upload", mock.Anything, testBucket, mock.Anything, mock.Anything, mock.Anything).
		Run(drainBody).Return(nil)

	svc := f.service(nil, WithMixing(true))
	body := mp4Body()
	res, err := svc.Generate(context.Background(), Input{
		Prompt:   "footsteps on gravel",
		Duration: 4,
		Video:    &Upload{Filename: "clip.mp4", Size: int64(len(body)), Content: bytes.NewReader(body)},
	})
	require.NoError(t, err)

	assert.Equal(t, "https://cdn.test/sfx-results/jobs/"+res.JobID+"/audio.flac", res.AudioURL)
	assert.Equal(t, "https://cdn.test/sfx-results/jobs/"+res.JobID+"/video.mp4", res.VideoURL)

	stored := f.storedJob(t, res.JobID)
	assert.Equal(t, StatusCompleted, stored.Status)
	assert.Equal(t, res.VideoURL, stored.VideoURL)
	assert.Empty(t, stored.SourceVideoURL, "local mode does not publish the source")

	// The generator and mixer both see the full local copy of the upload.
	req := f.gen.Calls[0].Arguments.Get(1).(generator.Request)
	mixArgs := f.mixer.Calls[0].Arguments
	assert.Equal(t, req.VideoRef, mixArgs.String(1))
	assert.Equal(t, req.OutputPath, mixArgs.String(2))

	f.artifacts.AssertNumberOfCalls(t, "Upload", 2)
	f.assertTempEmpty(t)
}

func TestService_Generate_URLSourceMode(t *testing.T) {
	f := newFixture(t)
	var uploaded []byte
	f.artifacts.On("Upload", mock.Anything, testBucket, mock.MatchedBy(func(k string) bool {
		return strings.HasSuffix(k, "/source.mp4")
	}), mock.Anything, "video/mp4").Run(func(args mock.Arguments) {
		uploaded, _ = io.ReadAll(args.Get(3).(io.Reader))
	}).Return(nil)
	f.artifacts.On("Upload", mock.Anything, testBucket, mock.MatchedBy(func(k string) bool {
		return strings.HasSuffix(k, "/audio.flac")
	}), mock.Anything, "audio/flac").Run(drainBody).Return(nil)
	f.generatorWrites(t, "flac-bytes")

	svc := f.service(nil, WithSourceMode(SourceModeURL))
	body := mp4Body()
	res, err := svc.Generate(context.Background(), Input{
		Prompt:   "door slam",
		Duration: 2,
		Video:    &Upload{Filename: "clip.mp4", Size: int64(len(body)), Content: bytes.NewReader(body)},
	})
	require.NoError(t, err)

	sourceURL := "https://cdn.test/sfx-results/jobs/" + res.JobID + "/source.mp4"
	assert.Equal(t, body, uploaded)

	req := f.gen.Calls[0].Arguments.Get(1).(generator.Request)
	assert.Equal(t, sourceURL, req.VideoRef)

	stored := f.storedJob(t, res.JobID)
	assert.Equal(t, StatusCompleted, stored.Status)
	assert.Equal(t, sourceURL, stored.SourceVideoURL)
	f.assertTempEmpty(t)
}

func TestService_Generate_ValidationFailures(t *testing.T) {
	tests := []struct {
		name    string
		input   func() Input
		opts    []ServiceOption
		wantMsg string
	}{
		{
			name:    "blank prompt",
			input:   func() Input { return Input{Prompt: "   ", Duration: 8} },
			wantMsg: "validation failed: prompt is required",
		},
		{
			name:    "zero duration",
			input:   func() Input { return Input{Prompt: "wind", Duration: 0} },
			wantMsg: "validation failed: duration must be greater than 0",
		},
		{
			name: "not a video",
			input: func() Input {
				png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")
				return Input{Prompt: "wind", Duration: 8, Video: &Upload{Size: int64(len(png)), Content: bytes.NewReader(png)}}
			},
			wantMsg: "unsupported video type",
		},
		{
			name: "empty video",
			input: func() Input {
				return Input{Prompt: "wind", Duration: 8, Video: &Upload{Content: bytes.NewReader(nil)}}
			},
			wantMsg: "video is empty",
		},
		{
			name: "declared size too large",
			input: func() Input {
				body := mp4Body()
				return Input{Prompt: "wind", Duration: 8, Video: &Upload{Size: int64(len(body)), Content: bytes.NewReader(body)}}
			},
			opts:    []ServiceOption{WithMaxVideoBytes(1024)},
			wantMsg: "video exceeds 1024 bytes",
		},
		{
			name: "actual size too large",
			input: func() Input {
				body := mp4Body()
				return Input{Prompt: "wind", Duration: 8, Video: &Upload{Size: -1, Content: bytes.NewReader(body)}}
			},
			opts:    []ServiceOption{WithMaxVideoBytes(int64(len(mp4Body()) - 1))},
			wantMsg: "video exceeds",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			svc := f.service(nil, tt.opts...)

			_, err := svc.Generate(context.Background(), tt.input())
			jerr := requireJobError(t, err, KindValidation)
			assert.Contains(t, jerr.Error(), tt.wantMsg)
			require.NotEmpty(t, jerr.JobID, "validation failures are attributed to a record")

			stored := f.storedJob(t, jerr.JobID)
			assert.Equal(t, StatusFailed, stored.Status)
			assert.Equal(t, jerr.Error(), stored.ErrorMessage)

			f.gen.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything)
			f.artifacts.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
			f.assertTempEmpty(t)
		})
	}
}

func TestService_Generate_GeneratorFailure(t *testing.T) {
	f := newFixture(t)
	f.gen.On("Generate", mock.Anything, mock.Anything).Return(&generator.ExitError{
		ExitCode: 1,
		Stderr:   "CUDA out of memory",
		Err:      errors.New("exit status 1"),
	})

	svc := f.service(nil)
	_, err := svc.Generate(context.Background(), Input{Prompt: "thunder", Duration: 8})
	jerr := requireJobError(t, err, KindGeneration)
	assert.Equal(t, "generation failed: CUDA out of memory", jerr.Error())

	stored := f.storedJob(t, jerr.JobID)
	assert.Equal(t, StatusFailed, stored.Status)
	assert.Equal(t, "generation failed: CUDA out of memory", stored.ErrorMessage)
	assert.Empty(t, stored.AudioURL)

	f.artifacts.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	f.assertTempEmpty(t)
}

func TestService_Generate_NoArtifactProduced(t *testing.T) {
	f := newFixture(t)
	f.gen.On("Generate", mock.Anything, mock.Anything).Return(nil)

	svc := f.service(nil)
	_, err := svc.Generate(context.Background(), Input{Prompt: "thunder", Duration: 8})
	jerr := requireJobError(t, err, KindGeneration)
	assert.Contains(t, jerr.Error(), "no audio artifact produced")
	assert.Equal(t, StatusFailed, f.storedJob(t, jerr.JobID).Status)
	f.assertTempEmpty(t)
}

func TestService_Generate_GenerationTimeout(t *testing.T) {
	f := newFixture(t)
	f.gen.On("Generate", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			<-args.Get(0).(context.Context).Done()
		}).
		Return(context.DeadlineExceeded)

	svc := f.service(nil, WithGenerationTimeout(20*time.Millisecond))
	_, err := svc.Generate(context.Background(), Input{Prompt: "thunder", Duration: 8})
	jerr := requireJobError(t, err, KindTimeout)
	assert.Contains(t, jerr.Error(), "timed out: generation exceeded")

	stored := f.storedJob(t, jerr.JobID)
	assert.Equal(t, StatusFailed, stored.Status)
	assert.Equal(t, jerr.Error(), stored.ErrorMessage)
	f.assertTempEmpty(t)
}

func TestService_Generate_MixingFailure(t *testing.T) {
	f := newFixture(t)
	f.generatorWrites(t, "flac-bytes")
	f.mixer.On("Mix", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(&media.FFmpegError{Stderr: "Invalid data found when processing input", Err: errors.New("exit status 1")})

	svc := f.service(nil, WithMixing(true))
	body := mp4Body()
	_, err := svc.Generate(context.Background(), Input{
		Prompt:   "engine",
		Duration: 8,
		Video:    &Upload{Size: int64(len(body)), Content: bytes.NewReader(body)},
	})
	jerr := requireJobError(t, err, KindMixing)
	assert.Equal(t, "mixing failed: Invalid data found when processing input", jerr.Error())
	assert.Equal(t, StatusFailed, f.storedJob(t, jerr.JobID).Status)

	f.artifacts.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	f.assertTempEmpty(t)
}

func TestService_Generate_UploadFailure(t *testing.T) {
	f := newFixture(t)
	f.generatorWrites(t, "flac-bytes")
	f.artifacts.On("Upload", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(&storage.Error{Op: "upload", Bucket: testBucket, Code: "AccessDenied", Err: errors.New("forbidden")})

	svc := f.service(nil)
	_, err := svc.Generate(context.Background(), Input{Prompt: "thunder", Duration: 8})
	jerr := requireJobError(t, err, KindStorage)
	assert.True(t, strings.HasPrefix(jerr.Error(), "storage error: "))
	assert.ErrorIs(t, err, storage.ErrStorage)

	stored := f.storedJob(t, jerr.JobID)
	assert.Equal(t, StatusFailed, stored.Status)
	assert.Empty(t, stored.AudioURL)
	f.assertTempEmpty(t)
}

func TestService_Generate_CreateFailure(t *testing.T) {
	f := newFixture(t)
	repo := &failingRepository{MemoryRepository: f.repo, failCreate: true}

	svc := f.service(repo)
	_, err := svc.Generate(context.Background(), Input{Prompt: "thunder", Duration: 8})
	jerr := requireJobError(t, err, KindRecord)
	assert.Empty(t, jerr.JobID)
	assert.ErrorIs(t, err, ErrRecord)

	f.gen.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything)
	f.assertTempEmpty(t)
}

func TestService_Generate_CompletionUpdateFailure(t *testing.T) {
	f := newFixture(t)
	f.generatorWrites(t, "flac-bytes")
	f.artifacts.On("Upload", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Run(drainBody).Return(nil)
	repo := &failingRepository{MemoryRepository: f.repo, failUpdate: func(u Update) bool {
		return u.Status != nil && *u.Status == StatusCompleted
	}}

	svc := f.service(repo)
	_, err := svc.Generate(context.Background(), Input{Prompt: "thunder", Duration: 8})
	jerr := requireJobError(t, err, KindRecord)

	// The uploaded audio stays; the record is marked failed instead.
	stored := f.storedJob(t, jerr.JobID)
	assert.Equal(t, StatusFailed, stored.Status)
	assert.True(t, strings.HasPrefix(stored.ErrorMessage, "record store error: "))
	f.assertTempEmpty(t)
}

func TestService_Generate_FailureUpdateFailureKeepsOriginalError(t *testing.T) {
	f := newFixture(t)
	f.gen.On("Generate", mock.Anything, mock.Anything).
		Return(&generator.ExitError{ExitCode: 2, Stderr: "model missing"})
	repo := &failingRepository{MemoryRepository: f.repo, failUpdate: func(Update) bool { return true }}

	svc := f.service(repo)
	_, err := svc.Generate(context.Background(), Input{Prompt: "thunder", Duration: 8})
	jerr := requireJobError(t, err, KindGeneration)
	assert.Equal(t, "generation failed: model missing", jerr.Error())

	// The record could not be updated and is left processing.
	assert.Equal(t, StatusProcessing, f.storedJob(t, jerr.JobID).Status)
	f.assertTempEmpty(t)
}

func TestService_Generate_CancelledRequestStillRecordsFailure(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	f.gen.On("Generate", mock.Anything, mock.Anything).
		Run(func(mock.Arguments) { cancel() }).
		Return(context.Canceled)

	svc := f.service(nil)
	_, err := svc.Generate(ctx, Input{Prompt: "thunder", Duration: 8})
	jerr := requireJobError(t, err, KindInternal)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, "internal error: request cancelled during generation: context canceled", jerr.Error())

	stored := f.storedJob(t, jerr.JobID)
	assert.Equal(t, StatusFailed, stored.Status)
	assert.Equal(t, jerr.Error(), stored.ErrorMessage)
	f.assertTempEmpty(t)
}

func TestService_Generate_CancelledDuringMixing(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	f.generatorWrites(t, "flac-bytes")
	f.mixer.On("Mix", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Run(func(mock.Arguments) { cancel() }).
		Return(errors.New("ffmpeg cancelled: context canceled"))

	svc := f.service(nil, WithMixing(true))
	body := mp4Body()
	_, err := svc.Generate(ctx, Input{
		Prompt:   "engine",
		Duration: 8,
		Video:    &Upload{Size: int64(len(body)), Content: bytes.NewReader(body)},
	})
	jerr := requireJobError(t, err, KindInternal)
	assert.Contains(t, jerr.Error(), "request cancelled during mixing")
	assert.Equal(t, StatusFailed, f.storedJob(t, jerr.JobID).Status)
	f.assertTempEmpty(t)
}

func TestService_Generate_PanicMarksFailed(t *testing.T) {
	f := newFixture(t)
	f.gen.On("Generate", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			req := args.Get(1).(generator.Request)
			writeFile(t, req.OutputPath, "partial")
			panic("nil model handle")
		}).
		Return(nil)

	svc := f.service(nil)
	var (
		res *Result
		err error
	)
	require.NotPanics(t, func() {
		res, err = svc.Generate(context.Background(), Input{Prompt: "thunder", Duration: 8})
	})
	assert.Nil(t, res)
	jerr := requireJobError(t, err, KindInternal)
	assert.Equal(t, "internal error: panic: nil model handle", jerr.Error())
	require.NotEmpty(t, jerr.JobID)

	stored := f.storedJob(t, jerr.JobID)
	assert.Equal(t, StatusFailed, stored.Status)
	assert.True(t, strings.HasPrefix(stored.ErrorMessage, "internal error:"))
	f.assertTempEmpty(t)
}

func TestService_GetJob(t *testing.T) {
	f := newFixture(t)
	svc := f.service(nil)
	ctx := context.Background()

	created := New("rain", 8)
	jobID, err := f.repo.Create(ctx, created)
	require.NoError(t, err)

	found, err := svc.GetJob(ctx, jobID)
	require.NoError(t, err)
	assert.Equal(t, jobID, found.ID)
	assert.Equal(t, "rain", found.Prompt)

	_, err = svc.GetJob(ctx, "job-missing")
	assert.ErrorIs(t, err, ErrJobNotFound)
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindTimeout, KindOf(errorf(KindTimeout, "slow")))
	assert.Equal(t, KindStorage, KindOf(errors.Join(errors.New("ctx"), newError(KindStorage, errors.New("x")))))
	assert.Equal(t, KindInternal, KindOf(errors.New("plain")))
}

func TestDescribeValidation(t *testing.T) {
	f := newFixture(t)
	svc := f.service(nil)

	err := describeValidation(svc.validate.Struct(Input{}))
	assert.EqualError(t, err, "prompt is required; duration must be greater than 0")
}
