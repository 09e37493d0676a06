package git

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/require"
)

// helper to add a file and commit returning hash.
func addFileAndCommit(t *testing.T, repo *git.Repository, repoPath, filename, content string) plumbing.Hash {
	t.Helper()
	wt, err := repo.Worktree()
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(repoPath, filename), []byte(content), 0o600))
	_, err = wt.Add(filename)
	require.NoError(t, err)
	hash, err := wt.Commit("add "+filename, &git.CommitOptions{
		Author: &object.Signature{Name: "tester", Email: "t@example.com", When: time.Now()},
	})
	require.NoError(t, err)
	return hash
}

func TestResolve_NotARepository(t *testing.T) {
	rev, err := Resolve(t.TempDir())
	require.NoError(t, err)
	require.Equal(t, Revision{}, rev)
}

func TestResolve_EmptyRepository(t *testing.T) {
	dir := t.TempDir()
	_, err := git.PlainInit(dir, false)
	require.NoError(t, err)

	rev, err := Resolve(dir)
	require.NoError(t, err)
	require.Empty(t, rev.Commit)
}

func TestResolve_BranchAndSubdirectory(t *testing.T) {
	dir := t.TempDir()
	repo, err := git.PlainInit(dir, false)
	require.NoError(t, err)
	hash := addFileAndCommit(t, repo, dir, "a.css", "/* a */")

	head, err := repo.Head()
	require.NoError(t, err)

	sub := filepath.Join(dir, "styles", "base")
	require.NoError(t, os.MkdirAll(sub, 0o750))

	rev, err := Resolve(sub)
	require.NoError(t, err)
	require.Equal(t, hash.String(), rev.Commit)
	require.Equal(t, head.Name().Short(), rev.Branch)
	require.Len(t, rev.Short(), 7)
}

func TestResolve_DetachedHead(t *testing.T) {
	dir := t.TempDir()
	repo, err := git.PlainInit(dir, false)
	require.NoError(t, err)
	first := addFileAndCommit(t, repo, dir, "a.css", "a")
	addFileAndCommit(t, repo, dir, "b.css", "b")

	wt, err := repo.Worktree()
	require.NoError(t, err)
	require.NoError(t, wt.Checkout(&git.CheckoutOptions{Hash: first}))

	rev, err := Resolve(dir)
	require.NoError(t, err)
	require.Equal(t, first.String(), rev.Commit)
	require.Empty(t, rev.Branch)
}
