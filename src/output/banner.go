package output

import (
	"fmt"
	"io"
)

// BannerInfo holds the identity fields displayed at the start of a run.
type BannerInfo struct {
	Version string
	Commit  string
}

// Banner prints the ChartFerry identity line.
func Banner(w io.Writer, info BannerInfo, color bool) {
	name := "ChartFerry"
	if color {
		name = "\033[1;36m" + name + "\033[0m"
	}
	fmt.Fprintf(w, "\n    %s %s (%s)\n", name, info.Version, info.Commit)
}
