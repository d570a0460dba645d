package scan

import (
	"bufio"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/credsweep/credsweep/pkg/patterns"
)

const (
	// defaultBatchSize caps in-flight projects and transcript files. Each
	// batch is flattened into the accumulator before the next starts, which
	// bounds peak open file handles and buffered line data.
	defaultBatchSize = 10

	// maxLineSize caps a single transcript line. Lines carrying pasted file
	// contents or tool output can run into the tens of megabytes.
	maxLineSize = 64 * 1024 * 1024
)

// ProgressFunc is invoked after each transcript file finishes scanning.
type ProgressFunc func(encodedProjectDir, sessionID string)

// DiscussionScanner walks a projects directory (one encoded-name
// subdirectory per project, each holding newline-delimited transcripts) and
// scans every line for embedded tokens.
type DiscussionScanner struct {
	ProjectsDir      string
	ProjectBatchSize int
	FileBatchSize    int
	Progress         ProgressFunc
}

// NewDiscussionScanner returns a scanner with default batch sizes.
func NewDiscussionScanner(projectsDir string) *DiscussionScanner {
	return &DiscussionScanner{
		ProjectsDir:      projectsDir,
		ProjectBatchSize: defaultBatchSize,
		FileBatchSize:    defaultBatchSize,
	}
}

// Scan scans every transcript under the projects directory and returns the
// matches plus the number of transcript files visited. Cancellation is
// checked between batches; a canceled context returns ctx.Err() with
// whatever was accumulated so far.
func (s *DiscussionScanner) Scan(ctx context.Context) ([]TokenMatch, int, error) {
	entries, err := os.ReadDir(s.ProjectsDir)
	if err != nil {
		// No projects directory means nothing to scan.
		return nil, 0, nil
	}

	var dirs []string
	for _, e := range entries {
		if e.IsDir() {
			dirs = append(dirs, e.Name())
		}
	}
	sort.Strings(dirs)

	projectBatch := s.ProjectBatchSize
	if projectBatch <= 0 {
		projectBatch = defaultBatchSize
	}

	var matches []TokenMatch
	fileCount := 0

	for start := 0; start < len(dirs); start += projectBatch {
		if err := ctx.Err(); err != nil {
			return matches, fileCount, err
		}

		end := start + projectBatch
		if end > len(dirs) {
			end = len(dirs)
		}
		batch := dirs[start:end]

		results := make([][]TokenMatch, len(batch))
		counts := make([]int, len(batch))

		g, gctx := errgroup.WithContext(ctx)
		for i, dir := range batch {
			i, dir := i, dir
			g.Go(func() error {
				found, n, err := s.scanProject(gctx, dir)
				results[i] = found
				counts[i] = n
				return err
			})
		}
		if err := g.Wait(); err != nil {
			return matches, fileCount, err
		}

		for i := range results {
			matches = append(matches, results[i]...)
			fileCount += counts[i]
		}
	}
	return matches, fileCount, nil
}

// scanProject scans one project directory's transcripts in bounded batches.
func (s *DiscussionScanner) scanProject(ctx context.Context, encodedDir string) ([]TokenMatch, int, error) {
	projectDir := filepath.Join(s.ProjectsDir, encodedDir)
	entries, err := os.ReadDir(projectDir)
	if err != nil {
		return nil, 0, nil
	}

	var files []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".jsonl") {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)

	fileBatch := s.FileBatchSize
	if fileBatch <= 0 {
		fileBatch = defaultBatchSize
	}

	var matches []TokenMatch
	for start := 0; start < len(files); start += fileBatch {
		if err := ctx.Err(); err != nil {
			return matches, start, err
		}

		end := start + fileBatch
		if end > len(files) {
			end = len(files)
		}
		batch := files[start:end]

		results := make([][]TokenMatch, len(batch))
		g, _ := errgroup.WithContext(ctx)
		for i, name := range batch {
			i, name := i, name
			g.Go(func() error {
				results[i] = s.scanTranscript(encodedDir, filepath.Join(projectDir, name))
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return matches, end, err
		}
		for i := range results {
			matches = append(matches, results[i]...)
		}
	}
	return matches, len(files), nil
}

// transcriptLine is the minimal envelope parsed from a hit line. Only the
// declared message type gates whether findings are kept; everything else in
// the line was already scanned as raw text.
type transcriptLine struct {
	Type string `json:"type"`
}

// scanTranscript scans one transcript file line by line. A line's JSON is
// parsed only after the windowed scan found at least one hit on it, so the
// parse cost is only paid when there is a reason to.
func (s *DiscussionScanner) scanTranscript(encodedDir, path string) []TokenMatch {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()

	sessionID := strings.TrimSuffix(filepath.Base(path), ".jsonl")
	projectName := projectDisplayName(encodedDir)

	var matches []TokenMatch
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 1024*1024), maxLineSize)
	for scanner.Scan() {
		line := scanner.Text()
		hits := ScanLine(line)
		if len(hits) == 0 {
			continue
		}

		var msg transcriptLine
		if err := json.Unmarshal([]byte(line), &msg); err != nil {
			// Malformed line; skip it, keep scanning the file.
			continue
		}
		if msg.Type != "user" && msg.Type != "assistant" {
			continue
		}

		for _, hit := range hits {
			if seen[hit.Token] {
				continue
			}
			seen[hit.Token] = true
			matches = append(matches, TokenMatch{
				ID:            NewMatchID(),
				Type:          hit.Pattern.Type,
				Severity:      hit.Pattern.Severity,
				Description:   hit.Pattern.Description,
				Remediation:   hit.Pattern.Remediation,
				RedactedValue: patterns.RedactToken(hit.Token),
				FullPattern:   hit.Token,
				Location: DiscussionLocation{
					EncodedProjectDir: encodedDir,
					ProjectName:       projectName,
					SessionID:         sessionID,
					FilePath:          path,
				},
			})
		}
	}

	if s.Progress != nil {
		s.Progress(encodedDir, sessionID)
	}
	return matches
}

// projectDisplayName derives a cheap display name from an encoded project
// directory: the final hyphen-delimited segment. A full path decode would
// need filesystem round-trips; callers that need the real path decode it
// themselves on demand.
func projectDisplayName(encodedDir string) string {
	parts := strings.Split(encodedDir, "-")
	for i := len(parts) - 1; i >= 0; i-- {
		if parts[i] != "" {
			return parts[i]
		}
	}
	return encodedDir
}
