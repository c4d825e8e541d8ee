//go:build ORT

package local

import (
	"os"

	"github.com/knights-analytics/hugot"
	"github.com/knights-analytics/hugot/options"
)

func newSession(libPath string) (*hugot.Session, error) {
	if libPath == "" {
		libPath = os.Getenv("ORT_LIB_DIR")
	}
	var opts []options.WithOption
	if libPath != "" {
		opts = append(opts, options.WithOnnxLibraryPath(libPath))
	}
	return hugot.NewORTSession(opts...)
}
