package report

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/storage/memory"
)

// GitSource reads the report from a repository that publishes it. The
// repository is cloned shallow into memory on every fetch.
type GitSource struct {
	url    string
	branch string
	path   string
	logger *log.Logger
}

// NewGitSource creates a source reading path from branch of the repository
// at url. An empty branch uses the remote HEAD.
func NewGitSource(url, branch, path string, logger *log.Logger) *GitSource {
	if path == "" {
		path = "all.json"
	}
	return &GitSource{url: url, branch: branch, path: path, logger: logger}
}

// Fetch clones the repository and parses the report file at HEAD.
func (s *GitSource) Fetch(ctx context.Context) (*Result, error) {
	opts := &git.CloneOptions{
		URL:          s.url,
		Depth:        1,
		SingleBranch: true,
		Tags:         git.NoTags,
	}
	if s.branch != "" {
		opts.ReferenceName = plumbing.NewBranchReferenceName(s.branch)
	}

	s.logger.Debug("Cloning report repository", "url", s.url, "branch", s.branch)

	repo, err := git.CloneContext(ctx, memory.NewStorage(), nil, opts)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to clone %s: %v", ErrFetch, s.url, err)
	}

	head, err := repo.Head()
	if err != nil {
		return nil, fmt.Errorf("%w: failed to get HEAD: %v", ErrFetch, err)
	}

	commit, err := repo.CommitObject(head.Hash())
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read commit %s: %v", ErrFetch, head.Hash(), err)
	}

	file, err := commit.File(s.path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s not found at %s: %v", ErrFetch, s.path, head.Hash().String()[:7], err)
	}

	contents, err := file.Contents()
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read %s: %v", ErrFetch, s.path, err)
	}

	result, err := parse(s.url+"#"+s.path, []byte(contents))
	if err != nil {
		return nil, err
	}

	s.logger.Info("Read compatibility report from repository",
		"commit", head.Hash().String()[:7],
		"addons", len(result.Report.Addons))

	return result, nil
}
