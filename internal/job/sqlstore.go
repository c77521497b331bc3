package job

import (
	"fmt"
	"strings"
)

// jobColumns lists the columns read back by FindByID, in scan order.
const jobColumns = `id, prompt, duration, status, source_video_url, audio_url, video_url, error_message, created_at, updated_at, completed_at`

// buildUpdate renders a partial UPDATE for u. The job ID is always the first
// argument; placeholder renders the n-th (1-based) bind parameter for the
// target dialect. Only jobs still processing are matched, so a terminal
// record is never rewritten.
func buildUpdate(table, jobID string, u Update, now any, placeholder func(int) string) (string, []any) {
	args := []any{jobID}
	var sets []string
	set := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = %s", column, placeholder(len(args))))
	}

	if u.SourceVideoURL != nil {
		set("source_video_url", *u.SourceVideoURL)
	}
	if u.AudioURL != nil {
		set("audio_url", *u.AudioURL)
	}
	if u.VideoURL != nil {
		set("video_url", *u.VideoURL)
	}
	if u.ErrorMessage != nil {
		set("error_message", *u.ErrorMessage)
	}
	if u.Status != nil {
		set("status", string(*u.Status))
		set("completed_at", now)
	}
	set("updated_at", now)

	args = append(args, string(StatusProcessing))
	query := fmt.Sprintf("UPDATE %s SET %s WHERE id = %s AND status = %s",
		table, strings.Join(sets, ", "), placeholder(1), placeholder(len(args)))
	return query, args
}

func dollarPlaceholder(n int) string {
	return fmt.Sprintf("$%d", n)
}

// numberedPlaceholder renders SQLite's ?NNN form so parameters bind by index.
func numberedPlaceholder(n int) string {
	return fmt.Sprintf("?%d", n)
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func nullableString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
