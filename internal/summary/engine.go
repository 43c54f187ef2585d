package summary

import (
	"fmt"
	"strings"
	"time"

	"github.com/yutanakamurajp/Miru-Log/internal/storage"
)

const (
	maxHighlightsPerSegment = 3
	maxBlockingIssues       = 5
	maxFollowUps            = 5
)

var blockerKeywords = []string{"error", "fail", "exception"}

var followUpTags = map[string]bool{
	"todo":      true,
	"follow-up": true,
	"followup":  true,
}

// taskBuckets maps keyword fragments to coarse task labels. Order matters:
// "debugging a build failure" must land in Debugging, not Coding.
var taskBuckets = []struct {
	label    string
	keywords []string
}{
	{"Meetings", []string{"meeting", "standup", "stand-up", "call", "zoom", "会議", "ミーティング", "打ち合わせ"}},
	{"Communication", []string{"chat", "slack", "discord", "email", "mail", "message", "メール", "チャット", "連絡"}},
	{"Debugging", []string{"debug", "troubleshoot", "デバッグ", "不具合", "バグ"}},
	{"Coding", []string{"cod", "program", "develop", "implement", "refactor", "コーディング", "実装", "開発", "プログラ"}},
	{"Documentation", []string{"document", "docs", "writing", "ドキュメント", "資料", "文書"}},
	{"Research", []string{"research", "investigat", "search", "browse", "調査", "検索", "リサーチ"}},
	{"Reading", []string{"read", "review", "article", "閲覧", "読", "レビュー"}},
}

// NormalizeTask maps a free-form task label into a coarse bucket, or returns
// the label unchanged when no bucket matches. The mapping is lossy by design.
func NormalizeTask(label string) string {
	trimmed := strings.TrimSpace(label)
	if trimmed == "" {
		return "Unclassified"
	}
	lowered := strings.ToLower(trimmed)
	for _, bucket := range taskBuckets {
		for _, keyword := range bucket.keywords {
			if strings.Contains(lowered, keyword) {
				return bucket.label
			}
		}
	}
	return trimmed
}

// run is the open run of the segment builder state machine.
type run struct {
	task       string
	start      time.Time
	end        time.Time
	highlights []string
	count      int
}

func (r *run) close(interval time.Duration) Segment {
	end := r.end.Add(interval)
	highlights := r.highlights
	if len(highlights) > maxHighlightsPerSegment {
		highlights = highlights[:maxHighlightsPerSegment]
	}
	return Segment{
		Period:          fmt.Sprintf("%s - %s", r.start.Format("15:04"), end.Format("15:04")),
		Task:            r.task,
		DurationMinutes: float64(r.count) * interval.Minutes(),
		Highlights:      highlights,
		Start:           r.start,
		End:             end,
	}
}

// BuildDailySummary folds time-ordered observations for one day into a
// DailySummary. The fold is deterministic: identical input produces identical
// output, so reruns reproduce the same report.
func BuildDailySummary(observations []storage.Observation, date string, interval time.Duration) *DailySummary {
	summary := &DailySummary{
		Date:           date,
		Segments:       []Segment{},
		BlockingIssues: []string{},
		FollowUps:      []string{},
	}

	devContext := newDevContextBuilder()
	var current *run
	samples := 0

	for i := range observations {
		obs := &observations[i]
		if obs.Capture.CapturedAt.IsZero() {
			continue
		}
		samples++

		task := NormalizeTask(obs.Analysis.PrimaryTask)
		ts := obs.Capture.CapturedAt
		highlight := fmt.Sprintf("%s %s", ts.Format("15:04"), obs.Analysis.Description)

		if containsBlockerKeyword(obs.Analysis.Description) && len(summary.BlockingIssues) < maxBlockingIssues {
			summary.BlockingIssues = append(summary.BlockingIssues, obs.Analysis.Description)
		}
		if hasFollowUpTag(obs.Analysis.Tags) && len(summary.FollowUps) < maxFollowUps {
			summary.FollowUps = append(summary.FollowUps, obs.Analysis.Description)
		}

		devContext.addObservation(obs)

		// Run builder: extend on same task, close and reopen on change.
		// Every observation belongs to exactly one segment.
		if current != nil && current.task == task {
			current.count++
			current.end = ts
			current.highlights = append(current.highlights, highlight)
			continue
		}
		if current != nil {
			summary.Segments = append(summary.Segments, current.close(interval))
		}
		current = &run{
			task:       task,
			start:      ts,
			end:        ts,
			highlights: []string{highlight},
			count:      1,
		}
	}
	if current != nil {
		summary.Segments = append(summary.Segments, current.close(interval))
	}

	// Proportional to evidence observed, not to elapsed wall-clock time.
	summary.TotalActiveMinutes = float64(samples) * interval.Minutes()
	summary.DevContext = devContext.build()

	return summary
}

func containsBlockerKeyword(description string) bool {
	lowered := strings.ToLower(description)
	for _, keyword := range blockerKeywords {
		if strings.Contains(lowered, keyword) {
			return true
		}
	}
	return false
}

func hasFollowUpTag(tags []string) bool {
	for _, tag := range tags {
		if followUpTags[strings.ToLower(strings.TrimSpace(tag))] {
			return true
		}
	}
	return false
}
