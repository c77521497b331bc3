package job

// Update is a partial change to a job record. Nil fields are left untouched.
type Update struct {
	Status         *Status
	SourceVideoURL *string
	AudioURL       *string
	VideoURL       *string
	ErrorMessage   *string
}

// Completed builds the terminal update for a successful job.
// Empty URLs are not written.
func Completed(audioURL, videoURL string) Update {
	s := StatusCompleted
	u := Update{Status: &s}
	if audioURL != "" {
		u.AudioURL = &audioURL
	}
	if videoURL != "" {
		u.VideoURL = &videoURL
	}
	return u
}

// Failed builds the terminal update for a failed job.
func Failed(errMsg string) Update {
	s := StatusFailed
	return Update{Status: &s, ErrorMessage: &errMsg}
}

// SourceVideo builds the intermediate update recording the persisted source video.
func SourceVideo(url string) Update {
	return Update{SourceVideoURL: &url}
}

// IsEmpty reports whether the update changes nothing.
func (u Update) IsEmpty() bool {
	return u.Status == nil && u.SourceVideoURL == nil && u.AudioURL == nil &&
		u.VideoURL == nil && u.ErrorMessage == nil
}

// Validate checks the update against the terminal status invariants:
// only terminal statuses may be written, completed needs a result URL and
// failed needs an error message.
func (u Update) Validate() error {
	if u.Status == nil {
		return nil
	}
	switch *u.Status {
	case StatusCompleted:
		if isBlank(u.AudioURL) && isBlank(u.VideoURL) {
			return ErrMissingResultURL
		}
	case StatusFailed:
		if isBlank(u.ErrorMessage) {
			return ErrMissingErrorMessage
		}
	default:
		return ErrInvalidTransition
	}
	return nil
}

func isBlank(s *string) bool {
	return s == nil || *s == ""
}
