package job

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"runtime/debug"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/maauso/sfxgen-api/internal/generator"
	"github.com/maauso/sfxgen-api/internal/media"
	"github.com/maauso/sfxgen-api/internal/storage"
	"github.com/maauso/sfxgen-api/internal/tempfile"
)

// SourceMode selects how the source video is handed to the generator.
type SourceMode string

const (
	// SourceModeLocal passes the local temp path; the generator runs on this host.
	SourceModeLocal SourceMode = "local"
	// SourceModeURL uploads the source first and passes its public URL.
	SourceModeURL SourceMode = "url"
)

// DefaultMaxVideoBytes is the largest accepted source video (100 MiB).
const DefaultMaxVideoBytes int64 = 100 << 20

const (
	audioFileName       = "audio.flac"
	audioContentType    = "audio/flac"
	mixedFileName       = "video.mp4"
	mixedContentType    = "video/mp4"
	defaultGenTimeout   = 10 * time.Minute
	defaultMixTimeout   = 5 * time.Minute
	failureWriteTimeout = 10 * time.Second
)

// Upload is the source video attached to a request.
type Upload struct {
	Filename string
	// Size is the byte length of Content, or -1 when unknown.
	Size    int64
	Content io.Reader
}

// Input contains the parameters of one generation request.
type Input struct {
	Prompt   string `json:"prompt" validate:"required"`
	Duration int    `json:"duration" validate:"gt=0"`
	Video    *Upload
}

// Result is returned when a job completes.
type Result struct {
	JobID    string
	AudioURL string
	VideoURL string
}

// Service drives a request through its lifecycle: record creation,
// validation, source persistence, generation, optional mixing and result
// publication. Every failure leaves the record failed and the request's
// temporary files removed.
type Service struct {
	repo      Repository
	temp      storage.TempStore
	artifacts storage.ArtifactStore
	gen       generator.Generator
	mixer     media.Mixer
	logger    *slog.Logger
	validate  *validator.Validate

	bucket        string
	sourceMode    SourceMode
	mixing        bool
	genTimeout    time.Duration
	mixTimeout    time.Duration
	maxVideoBytes int64
	videoTypes    []string
}

// ServiceOption is a function that configures a Service.
type ServiceOption func(*Service)

// WithSourceMode sets how the source video reaches the generator.
func WithSourceMode(mode SourceMode) ServiceOption {
	return func(s *Service) {
		s.sourceMode = mode
	}
}

// WithMixing enables muxing the generated audio into the source video.
func WithMixing(enabled bool) ServiceOption {
	return func(s *Service) {
		s.mixing = enabled
	}
}

// WithGenerationTimeout bounds each generator run. Zero disables the limit.
func WithGenerationTimeout(d time.Duration) ServiceOption {
	return func(s *Service) {
		s.genTimeout = d
	}
}

// WithMixingTimeout bounds each mixer run. Zero disables the limit.
func WithMixingTimeout(d time.Duration) ServiceOption {
	return func(s *Service) {
		s.mixTimeout = d
	}
}

// WithMaxVideoBytes sets the largest accepted source video.
func WithMaxVideoBytes(n int64) ServiceOption {
	return func(s *Service) {
		if n > 0 {
			s.maxVideoBytes = n
		}
	}
}

// WithAllowedVideoTypes sets the accepted video MIME types.
func WithAllowedVideoTypes(types []string) ServiceOption {
	return func(s *Service) {
		if len(types) > 0 {
			s.videoTypes = types
		}
	}
}

// NewService creates a Service. bucket is the artifact store bucket that
// sources and results are written to.
func NewService(
	repo Repository,
	temp storage.TempStore,
	artifacts storage.ArtifactStore,
	gen generator.Generator,
	mixer media.Mixer,
	bucket string,
	logger *slog.Logger,
	opts ...ServiceOption,
) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})

	s := &Service{
		repo:          repo,
		temp:          temp,
		artifacts:     artifacts,
		gen:           gen,
		mixer:         mixer,
		logger:        logger,
		validate:      v,
		bucket:        bucket,
		sourceMode:    SourceModeLocal,
		genTimeout:    defaultGenTimeout,
		mixTimeout:    defaultMixTimeout,
		maxVideoBytes: DefaultMaxVideoBytes,
		videoTypes:    media.DefaultVideoTypes,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetJob retrieves a job by ID.
func (s *Service) GetJob(ctx context.Context, id string) (*Job, error) {
	return s.repo.FindByID(ctx, id)
}

// run carries the state of one Generate call.
type run struct {
	job     *Job
	reg     *tempfile.Registry
	logger  *slog.Logger
	workDir string
	// sourcePath is the local copy of the uploaded video.
	sourcePath string
	sourceExt  string
	sourceMIME string
}

// Generate executes the full job lifecycle synchronously and returns the
// published result URLs. Every returned error is an *Error whose JobID is
// set whenever a record was created.
func (s *Service) Generate(ctx context.Context, in Input) (res *Result, err error) {
	reg := tempfile.New(s.logger)
	defer reg.ReleaseAll()

	in.Prompt = strings.TrimSpace(in.Prompt)
	r := &run{job: New(in.Prompt, in.Duration), reg: reg, logger: s.logger}

	// Recording: the record exists before any other side effect so that
	// every later failure, validation included, is attributed to it.
	jobID, err := s.repo.Create(ctx, r.job)
	if err != nil {
		s.logger.Error("failed to create job record", slog.String("error", err.Error()))
		return nil, newError(KindRecord, err)
	}
	r.logger = s.logger.With(slog.String("job_id", jobID))
	r.logger.Info("job created",
		slog.Int("duration", in.Duration),
		slog.Bool("has_video", in.Video != nil),
	)

	// A panicking collaborator still leaves the record terminal. Registered
	// after ReleaseAll so it runs before temp cleanup.
	defer func() {
		if p := recover(); p != nil {
			r.logger.Error("panic during job",
				slog.Any("panic", p),
				slog.String("stack", string(debug.Stack())),
			)
			jerr := newError(KindInternal, fmt.Errorf("panic: %v", p))
			jerr.JobID = jobID
			s.markFailed(ctx, r, jerr)
			res, err = nil, jerr
		}
	}()

	res, jerr := s.execute(ctx, r, in)
	if jerr != nil {
		jerr.JobID = jobID
		s.markFailed(ctx, r, jerr)
		return nil, jerr
	}
	res.JobID = jobID
	r.logger.Info("job completed",
		slog.String("audio_url", res.AudioURL),
		slog.String("video_url", res.VideoURL),
	)
	return res, nil
}

// execute runs every stage after record creation. It returns the first
// failure, classified by origin.
func (s *Service) execute(ctx context.Context, r *run, in Input) (*Result, *Error) {
	header, jerr := s.validateInput(in)
	if jerr != nil {
		return nil, jerr
	}

	videoRef, jerr := s.persistSource(ctx, r, in.Video, header)
	if jerr != nil {
		return nil, jerr
	}

	audioPath, jerr := s.generate(ctx, r, in, videoRef)
	if jerr != nil {
		return nil, jerr
	}

	var mixedPath string
	if s.mixing && r.sourcePath != "" {
		mixedPath, jerr = s.mix(ctx, r, audioPath)
		if jerr != nil {
			return nil, jerr
		}
	}

	return s.publish(ctx, r, audioPath, mixedPath)
}

// validateInput checks the request fields and sniffs the video type. It
// returns the bytes read from the video so they can be written back out.
func (s *Service) validateInput(in Input) ([]byte, *Error) {
	if err := s.validate.Struct(in); err != nil {
		return nil, newError(KindValidation, describeValidation(err))
	}
	if in.Video == nil {
		return nil, nil
	}
	if in.Video.Content == nil {
		return nil, errorf(KindValidation, "video is empty")
	}
	if in.Video.Size > s.maxVideoBytes {
		return nil, errorf(KindValidation, "video exceeds %d bytes", s.maxVideoBytes)
	}

	header := make([]byte, media.SniffLen)
	n, err := io.ReadFull(in.Video.Content, header)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, errorf(KindValidation, "read video: %v", err)
	}
	header = header[:n]
	if n == 0 {
		return nil, errorf(KindValidation, "video is empty")
	}
	if _, err := media.DetectVideo(header, s.videoTypes); err != nil {
		return nil, newError(KindValidation, fmt.Errorf("video: %w", err))
	}
	return header, nil
}

// persistSource writes the uploaded video into the job's work directory and,
// in URL mode, publishes it. It returns the reference handed to the generator.
func (s *Service) persistSource(ctx context.Context, r *run, video *Upload, header []byte) (string, *Error) {
	dir, err := s.temp.MakeTempDir(ctx, r.job.ID)
	if err != nil {
		return "", newError(KindInternal, err)
	}
	r.workDir = dir
	r.reg.Register(dir)

	if video == nil {
		return "", nil
	}

	detected, _ := media.DetectVideo(header, s.videoTypes)
	r.sourceExt = detected.Extension
	r.sourceMIME = detected.MIME

	// Remaining bytes past the limit mean Size under-reported the upload.
	limit := s.maxVideoBytes - int64(len(header)) + 1
	body := io.MultiReader(bytes.NewReader(header), io.LimitReader(video.Content, limit))
	path, err := s.temp.SaveTemp(ctx, dir, "source", body)
	if err != nil {
		return "", newError(KindInternal, fmt.Errorf("save source video: %w", err))
	}
	r.reg.Register(path)
	if info, statErr := os.Stat(path); statErr == nil && info.Size() > s.maxVideoBytes {
		return "", errorf(KindValidation, "video exceeds %d bytes", s.maxVideoBytes)
	}
	r.sourcePath = path

	if s.sourceMode != SourceModeURL {
		return path, nil
	}

	key := objectKey(r.job.ID, "source"+r.sourceExt)
	url, jerr := s.upload(ctx, path, key, r.sourceMIME)
	if jerr != nil {
		return "", jerr
	}
	if err := s.repo.Update(ctx, r.job.ID, SourceVideo(url)); err != nil {
		return "", newError(KindRecord, err)
	}
	r.job.SourceVideoURL = url
	r.logger.Info("source video stored", slog.String("url", url))
	return url, nil
}

// generate runs the generator with a per-job output path and checks that the
// artifact was written.
func (s *Service) generate(ctx context.Context, r *run, in Input, videoRef string) (string, *Error) {
	audioPath := filepath.Join(r.workDir, audioFileName)
	r.reg.Register(audioPath)

	genCtx, cancel := withOptionalTimeout(ctx, s.genTimeout)
	defer cancel()

	r.logger.Info("generation started", slog.String("output", audioPath))
	start := time.Now()
	err := s.gen.Generate(genCtx, generator.Request{
		Prompt:     in.Prompt,
		Duration:   in.Duration,
		VideoRef:   videoRef,
		OutputPath: audioPath,
	})
	if err != nil {
		if ctx.Err() != nil {
			return "", newError(KindInternal, fmt.Errorf("request cancelled during generation: %w", ctx.Err()))
		}
		if errors.Is(err, context.DeadlineExceeded) {
			return "", errorf(KindTimeout, "generation exceeded %s", s.genTimeout)
		}
		var exitErr *generator.ExitError
		if errors.As(err, &exitErr) && exitErr.Stderr != "" {
			return "", errorf(KindGeneration, "%s", exitErr.Stderr)
		}
		return "", newError(KindGeneration, err)
	}
	if !nonEmptyFile(audioPath) {
		return "", errorf(KindGeneration, "no audio artifact produced at %s", audioPath)
	}
	r.logger.Info("generation finished", slog.Duration("elapsed", time.Since(start)))
	return audioPath, nil
}

// mix muxes the generated audio into the source video.
func (s *Service) mix(ctx context.Context, r *run, audioPath string) (string, *Error) {
	mixedPath := filepath.Join(r.workDir, mixedFileName)
	r.reg.Register(mixedPath)

	mixCtx, cancel := withOptionalTimeout(ctx, s.mixTimeout)
	defer cancel()

	if err := s.mixer.Mix(mixCtx, r.sourcePath, audioPath, mixedPath); err != nil {
		if ctx.Err() != nil {
			return "", newError(KindInternal, fmt.Errorf("request cancelled during mixing: %w", ctx.Err()))
		}
		if errors.Is(err, context.DeadlineExceeded) {
			return "", errorf(KindTimeout, "mixing exceeded %s", s.mixTimeout)
		}
		var ffErr *media.FFmpegError
		if errors.As(err, &ffErr) && ffErr.Stderr != "" {
			return "", errorf(KindMixing, "%s", ffErr.Stderr)
		}
		return "", newError(KindMixing, err)
	}
	if !nonEmptyFile(mixedPath) {
		return "", errorf(KindMixing, "%v", media.ErrOutputMissing)
	}
	return mixedPath, nil
}

// publish uploads the results and completes the record. A failure here
// leaves earlier side effects in place.
func (s *Service) publish(ctx context.Context, r *run, audioPath, mixedPath string) (*Result, *Error) {
	res := &Result{}

	url, jerr := s.upload(ctx, audioPath, objectKey(r.job.ID, audioFileName), audioContentType)
	if jerr != nil {
		return nil, jerr
	}
	res.AudioURL = url

	if mixedPath != "" {
		url, jerr = s.upload(ctx, mixedPath, objectKey(r.job.ID, mixedFileName), mixedContentType)
		if jerr != nil {
			return nil, jerr
		}
		res.VideoURL = url
	}

	if err := s.repo.Update(ctx, r.job.ID, Completed(res.AudioURL, res.VideoURL)); err != nil {
		return nil, newError(KindRecord, err)
	}
	return res, nil
}

// upload publishes a local file and returns its public URL.
func (s *Service) upload(ctx context.Context, path, key, contentType string) (string, *Error) {
	f, err := s.temp.LoadTemp(ctx, path)
	if err != nil {
		return "", newError(KindInternal, err)
	}
	defer func() { _ = f.Close() }()

	if err := s.artifacts.Upload(ctx, s.bucket, key, f, contentType); err != nil {
		return "", newError(KindStorage, err)
	}
	return s.artifacts.PublicURL(s.bucket, key), nil
}

// markFailed records the failure on the job. It runs detached from request
// cancellation; its own failure is logged and never replaces jerr.
func (s *Service) markFailed(ctx context.Context, r *run, jerr *Error) {
	r.logger.Error("job failed",
		slog.String("kind", string(jerr.Kind)),
		slog.String("error", jerr.Error()),
	)

	fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), failureWriteTimeout)
	defer cancel()
	if err := s.repo.Update(fctx, r.job.ID, Failed(jerr.Error())); err != nil {
		r.logger.Error("failed to record job failure",
			slog.String("original_error", jerr.Error()),
			slog.String("error", err.Error()),
		)
	}
}

// objectKey is the artifact store key for a job file.
func objectKey(jobID, name string) string {
	return "jobs/" + jobID + "/" + name
}

func withOptionalTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}

func nonEmptyFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir() && info.Size() > 0
}

// describeValidation turns validator errors into field-level messages such
// as "prompt is required".
func describeValidation(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fe.Field()+" is required")
		case "gt":
			msgs = append(msgs, fmt.Sprintf("%s must be greater than %s", fe.Field(), fe.Param()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s is invalid (%s)", fe.Field(), fe.Tag()))
		}
	}
	return errors.New(strings.Join(msgs, "; "))
}
