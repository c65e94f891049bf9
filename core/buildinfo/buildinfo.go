// Package buildinfo carries version metadata injected at link time:
//
//	go build -ldflags "-X github.com/m3rciful/leadbot/core/buildinfo.Version=v1.0.0 \
//	  -X github.com/m3rciful/leadbot/core/buildinfo.Commit=$(git rev-parse --short HEAD) \
//	  -X github.com/m3rciful/leadbot/core/buildinfo.Date=$(date -u +%FT%TZ)"
package buildinfo

var (
	Version = "dev"
	Commit  = "local"
	Date    = ""
)
