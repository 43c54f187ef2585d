package summary

import (
	"regexp"
	"sort"
	"strings"

	"github.com/yutanakamurajp/Miru-Log/internal/analysis"
	"github.com/yutanakamurajp/Miru-Log/internal/storage"
)

var (
	filePathRe = regexp.MustCompile(`(?i)[\w~./\\-]+\.(?:go|py|js|jsx|ts|tsx|java|kt|rb|rs|c|cc|cpp|h|hpp|cs|php|swift|html|css|scss|json|yaml|yml|toml|ini|md|rst|sql|sh|ps1|bat|txt|csv|ipynb)\b`)
	urlRe      = regexp.MustCompile(`https?://[^\s"'<>\)\]]+`)
)

// ideSuffixes are window-title suffixes appended by editors and IDEs.
var ideSuffixes = []string{
	" - Visual Studio Code",
	" - Visual Studio",
	" - VS Code",
	" - IntelliJ IDEA",
	" - PyCharm",
	" - GoLand",
	" - WebStorm",
	" - Sublime Text",
	" - Vim",
	" - NVIM",
	" - Cursor",
}

// titleNoise marks window-title fragments that are editor chrome rather than
// a file or workspace name.
var titleNoise = []string{
	"untitled",
	"welcome",
	"settings",
	"preferences",
	"new tab",
	"extensions",
	"output",
	"terminal",
	"search",
	"administrator:",
}

// devContextBuilder accumulates deduplicated artifacts across a day,
// independent of segmentation.
type devContextBuilder struct {
	files map[string]bool
	repos map[string]bool
	urls  map[string]bool
}

func newDevContextBuilder() *devContextBuilder {
	return &devContextBuilder{
		files: make(map[string]bool),
		repos: make(map[string]bool),
		urls:  make(map[string]bool),
	}
}

// addObservation merges the model's structured extraction with heuristic
// extraction from the free-text description and window title.
func (b *devContextBuilder) addObservation(obs *storage.Observation) {
	extraction := analysis.ParseExtraction(obs.Analysis.RawResponse)
	b.addAll(b.files, extraction.Files)
	b.addAll(b.repos, extraction.Repositories)
	b.addAll(b.urls, extraction.URLs)

	b.addAll(b.files, filePathRe.FindAllString(obs.Analysis.Description, -1))
	b.addAll(b.urls, urlRe.FindAllString(obs.Analysis.Description, -1))

	files, repos := parseIDETitle(obs.Capture.WindowTitle)
	b.addAll(b.files, files)
	b.addAll(b.repos, repos)
	b.addAll(b.urls, urlRe.FindAllString(obs.Capture.WindowTitle, -1))
}

func (b *devContextBuilder) addAll(set map[string]bool, values []string) {
	for _, value := range values {
		trimmed := strings.Trim(strings.TrimSpace(value), "\"'`")
		if trimmed != "" {
			set[trimmed] = true
		}
	}
}

// build returns sorted slices, or nil when nothing was observed so the
// dev_context field is omitted from the artifact.
func (b *devContextBuilder) build() *DevContext {
	if len(b.files) == 0 && len(b.repos) == 0 && len(b.urls) == 0 {
		return nil
	}
	return &DevContext{
		ObservedFiles:        sortedKeys(b.files),
		ObservedRepositories: sortedKeys(b.repos),
		ObservedURLs:         sortedKeys(b.urls),
	}
}

// parseIDETitle extracts file and workspace names from an editor window
// title such as "scheduler.go - mirulog - Visual Studio Code".
func parseIDETitle(title string) (files, repos []string) {
	stripped := title
	matched := false
	for _, suffix := range ideSuffixes {
		if strings.HasSuffix(stripped, suffix) {
			stripped = strings.TrimSuffix(stripped, suffix)
			matched = true
			break
		}
	}
	if !matched {
		return nil, nil
	}

	// Editors mark unsaved buffers with a leading dot or asterisk.
	stripped = strings.TrimLeft(stripped, "●*• ")

	for _, part := range strings.Split(stripped, " - ") {
		part = strings.TrimSpace(part)
		if part == "" || isTitleNoise(part) {
			continue
		}
		if filePathRe.MatchString(part) {
			files = append(files, part)
		} else {
			repos = append(repos, part)
		}
	}
	return files, repos
}

func isTitleNoise(part string) bool {
	lowered := strings.ToLower(part)
	for _, noise := range titleNoise {
		if strings.Contains(lowered, noise) {
			return true
		}
	}
	return false
}

func sortedKeys(set map[string]bool) []string {
	keys := make([]string, 0, len(set))
	for key := range set {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
