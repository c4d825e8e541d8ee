package local

import (
	"fmt"
	"os"

	"github.com/knights-analytics/hugot"
)

// DownloadModel fetches the ONNX export of a Hugging Face model into dest
// and returns the model directory.
func DownloadModel(model, dest string) (string, error) {
	if err := os.MkdirAll(dest, 0o755); err != nil {
		return "", fmt.Errorf("create directory: %w", err)
	}

	opts := hugot.NewDownloadOptions()
	opts.OnnxFilePath = "onnx/model.onnx"
	path, err := hugot.DownloadModel(model, dest, opts)
	if err != nil {
		return "", fmt.Errorf("download model %s: %w", model, err)
	}
	return path, nil
}
