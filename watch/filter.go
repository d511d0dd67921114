package watch

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"

	"github.com/moby/patternmatcher"
)

// forcedIgnores are always excluded regardless of configuration: the tool's
// own state directory and the repository metadata directory.
var forcedIgnores = []string{".git", ".lookout"}

// PatternFilter decides whether a relative path is trackable. Precedence:
// an explicit include match always wins, then ignore rules exclude, and
// anything unmatched is tracked (default-allow).
type PatternFilter struct {
	ignore  *patternmatcher.PatternMatcher
	include *patternmatcher.PatternMatcher
}

// NewPatternFilter builds a filter from gitignore-style ignore patterns and
// explicit include globs. The forced internal exclusions are appended to the
// ignore set unconditionally.
func NewPatternFilter(ignorePatterns, includePatterns []string) (*PatternFilter, error) {
	merged := make([]string, 0, len(ignorePatterns)+len(forcedIgnores))
	merged = append(merged, ignorePatterns...)
	merged = append(merged, forcedIgnores...)

	ignore, err := patternmatcher.New(merged)
	if err != nil {
		return nil, err
	}

	var include *patternmatcher.PatternMatcher
	if len(includePatterns) > 0 {
		include, err = patternmatcher.New(includePatterns)
		if err != nil {
			return nil, err
		}
	}

	return &PatternFilter{ignore: ignore, include: include}, nil
}

// ShouldTrack reports whether the relative path should be tracked.
func (f *PatternFilter) ShouldTrack(relPath string) bool {
	relPath = filepath.ToSlash(relPath)

	if f.MatchesInclude(relPath) {
		return true
	}

	ignored, err := f.ignore.MatchesOrParentMatches(relPath)
	if err != nil {
		// A pattern that cannot be evaluated must not hide changes
		return true
	}
	return !ignored
}

// MatchesInclude reports whether the path matches an explicit include glob.
// Whitelist files are flushed unconditionally on commit boundaries, so this
// is exposed separately from ShouldTrack.
func (f *PatternFilter) MatchesInclude(relPath string) bool {
	if f.include == nil {
		return false
	}
	matched, err := f.include.MatchesOrParentMatches(filepath.ToSlash(relPath))
	if err != nil {
		return false
	}
	return matched
}

// MatchesIgnore reports whether the ignore rules exclude the path, without
// the include override. The whitelist companion in structured mode uses this
// to claim only files the status feed cannot see; everything else is the
// structured source's to report. An unevaluable pattern counts as ignored so
// the error can only cause a duplicate delivery, never a hidden one.
func (f *PatternFilter) MatchesIgnore(relPath string) bool {
	ignored, err := f.ignore.MatchesOrParentMatches(filepath.ToSlash(relPath))
	if err != nil {
		return true
	}
	return ignored
}

// HasIncludes reports whether any explicit include globs are configured.
func (f *PatternFilter) HasIncludes() bool {
	return f.include != nil
}

// LoadIgnorePatterns reads the repository's .gitignore at the root, if any.
// Comments and blank lines are stripped. A missing file yields no patterns.
func LoadIgnorePatterns(root string) []string {
	file, err := os.Open(filepath.Join(root, ".gitignore"))
	if err != nil {
		return nil
	}
	defer file.Close()

	var patterns []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		patterns = append(patterns, line)
	}
	return patterns
}
