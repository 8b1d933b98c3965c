// Package gitsource loads generation inputs from local checkouts: either a
// branch tree of a git repository or a plain directory walked by glob.
package gitsource

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	filepathx "github.com/yargevad/filepathx"

	"docfoundry/internal/chunker"
	"docfoundry/internal/models"
	"docfoundry/internal/utils"
)

// IgnoreFileName lists path prefixes to exclude, one per line, relative to
// the repository root.
const IgnoreFileName = ".docignore"

type Loader struct{}

func NewLoader() *Loader {
	return &Loader{}
}

// ValidateRepository checks the path exists, holds a git repository, and has
// a resolvable HEAD.
func (l *Loader) ValidateRepository(repoPath string) error {
	if repoPath == "" {
		return fmt.Errorf("repository path cannot be empty")
	}
	if !utils.DirectoryExists(repoPath) {
		return fmt.Errorf("directory does not exist: %s", repoPath)
	}
	if !utils.HasGitRepo(repoPath) {
		return fmt.Errorf("not a git repository: %s", repoPath)
	}
	repo, err := git.PlainOpen(repoPath)
	if err != nil {
		return fmt.Errorf("not a valid git repository: %w", err)
	}
	if _, err := repo.Head(); err != nil {
		return fmt.Errorf("repository is in an invalid state: %w", err)
	}
	return nil
}

// ListBranches returns all local branches with their last commit date,
// sorted by name.
func (l *Loader) ListBranches(repoPath string) ([]models.BranchInfo, error) {
	if err := l.ValidateRepository(repoPath); err != nil {
		return nil, err
	}
	repo, err := git.PlainOpen(repoPath)
	if err != nil {
		return nil, err
	}
	iter, err := repo.Branches()
	if err != nil {
		return nil, err
	}
	defer iter.Close()

	var branches []models.BranchInfo
	if err := iter.ForEach(func(ref *plumbing.Reference) error {
		commit, cErr := repo.CommitObject(ref.Hash())
		if cErr != nil {
			return cErr
		}
		branches = append(branches, models.BranchInfo{
			Name:           ref.Name().Short(),
			LastCommitDate: commit.Author.When,
		})
		return nil
	}); err != nil {
		return nil, err
	}
	sort.Slice(branches, func(i, j int) bool { return branches[i].Name < branches[j].Name })
	return branches, nil
}

// LoadBranch reads all code files from the tip of a local branch, in tree
// order, honoring the repository's ignore file when present.
func (l *Loader) LoadBranch(repoPath, branch string) ([]models.FileRecord, error) {
	if err := l.ValidateRepository(repoPath); err != nil {
		return nil, err
	}
	repo, err := git.PlainOpen(repoPath)
	if err != nil {
		return nil, err
	}

	var hash plumbing.Hash
	if branch == "" {
		head, hErr := repo.Head()
		if hErr != nil {
			return nil, hErr
		}
		hash = head.Hash()
	} else {
		ref, rErr := repo.Reference(plumbing.NewBranchReferenceName(branch), true)
		if rErr != nil {
			return nil, fmt.Errorf("branch %q not found: %w", branch, rErr)
		}
		hash = ref.Hash()
	}

	commit, err := repo.CommitObject(hash)
	if err != nil {
		return nil, err
	}
	tree, err := commit.Tree()
	if err != nil {
		return nil, err
	}

	ignored, err := loadIgnorePrefixes(repoPath)
	if err != nil {
		return nil, err
	}

	var files []models.FileRecord
	err = tree.Files().ForEach(func(f *object.File) error {
		if !chunker.IsCodeFile(f.Name) || matchesPrefix(f.Name, ignored) {
			return nil
		}
		content, cErr := f.Contents()
		if cErr != nil {
			return cErr
		}
		files = append(files, models.FileRecord{Path: f.Name, Content: content})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}

// LoadDirectory walks a plain directory (no git required) and reads every
// code file, sorted by relative path.
func (l *Loader) LoadDirectory(root string) ([]models.FileRecord, error) {
	if !utils.DirectoryExists(root) {
		return nil, fmt.Errorf("directory does not exist: %s", root)
	}
	ignored, err := loadIgnorePrefixes(root)
	if err != nil {
		return nil, err
	}
	matches, err := filepathx.Glob(filepath.Join(root, "**", "*"))
	if err != nil {
		return nil, err
	}
	sort.Strings(matches)

	var files []models.FileRecord
	for _, match := range matches {
		rel, rErr := filepath.Rel(root, match)
		if rErr != nil {
			continue
		}
		rel = filepath.ToSlash(rel)
		if !chunker.IsCodeFile(rel) || matchesPrefix(rel, ignored) {
			continue
		}
		info, sErr := os.Stat(match)
		if sErr != nil || info.IsDir() {
			continue
		}
		content, rdErr := os.ReadFile(match)
		if rdErr != nil {
			return nil, rdErr
		}
		files = append(files, models.FileRecord{Path: rel, Content: string(content)})
	}
	return files, nil
}

func loadIgnorePrefixes(root string) ([]string, error) {
	path := filepath.Join(root, IgnoreFileName)
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	return utils.ReadNonEmptyLines(path)
}

func matchesPrefix(path string, prefixes []string) bool {
	for _, prefix := range prefixes {
		prefix = strings.TrimSuffix(filepath.ToSlash(prefix), "/")
		if path == prefix || strings.HasPrefix(path, prefix+"/") {
			return true
		}
	}
	return false
}
