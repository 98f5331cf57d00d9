// Package version reports the voxnote build.
//
// Version, git commit, branch and build time are set at compile time via
// -ldflags and fall back to the VCS stamp Go embeds in the binary:
//
//	go build -ldflags "-X github.com/kbukum/voxnote/version.Version=1.2.0" ./cmd/voxnote
package version
