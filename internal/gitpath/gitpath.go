// Package gitpath contains consts and methods to work with path inside
// the .git directory
package gitpath

import "path"

// .git/ Files and directories
const (
	DotGitPath      = ".git"
	ConfigPath      = "config"
	DescriptionPath = "description"
	HEADPath        = "HEAD"
	IndexPath       = "index"
	IndexLockPath   = "index.lock"
	IndexTmpPath    = "index.tmp"
	ObjectsPath     = "objects"
	ObjectsInfoPath = ObjectsPath + "/info"
	ObjectsPackPath = ObjectsPath + "/pack"
	RefsPath        = "refs"
	RefsTagsPath    = RefsPath + "/tags"
	RefsHeadsPath   = RefsPath + "/heads"
)

// Ref returns the full UNIX path of a ref
// ex. for `heads/master` returns `refs/heads/master`
func Ref(shortName string) string {
	return path.Join(RefsPath, shortName)
}

// LocalBranch returns the full UNIX path of a local branch
// ex. for `master` returns `refs/heads/master`
func LocalBranch(shortName string) string {
	return path.Join(RefsHeadsPath, shortName)
}

// LocalTag returns the full UNIX path of a tag
// ex. for `v1.0.0` returns `refs/tags/v1.0.0`
func LocalTag(shortName string) string {
	return path.Join(RefsTagsPath, shortName)
}
