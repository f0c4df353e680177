package main

import (
	"fmt"
	"os"
	"regexp"
	"runtime"
	"strings"
	"time"
)

// Set with -ldflags "-X main.version=... -X main.buildTimeStr=..."
var (
	version      string
	buildTimeStr string
	buildTime    time.Time
)

var sha1Regex = regexp.MustCompile("[a-f0-9]{40}")

func init() {
	var err error

	if len(buildTimeStr) > 0 {
		buildTime, err = time.Parse("2006-01-02T15:04:05", buildTimeStr)
		if err != nil {
			fmt.Fprint(os.Stderr, err.Error())
			os.Exit(1)
		}
	}
}

func isSHA1(str string) bool {
	return sha1Regex.MatchString(str)
}

func getGoVersion() string {
	return strings.TrimPrefix(runtime.Version(), "go")
}

func displayVersion() string {
	switch {
	case len(version) == 0:
		return "dev"
	case isSHA1(version):
		return version[:7]
	default:
		return version
	}
}

func buildInformation() string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "mtg-setxml version %s\n", displayVersion())
	if !buildTime.IsZero() {
		fmt.Fprintf(&sb, "Built with Go version %s on %s\n", getGoVersion(), buildTime.Format(time.RFC3339))
	} else {
		fmt.Fprintf(&sb, "Built with Go version %s\n", getGoVersion())
	}

	return sb.String()
}
