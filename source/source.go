// Package source resolves graph and LOC input locations to local files.
//
// Inputs may be plain paths or anything hashicorp/go-getter understands:
//   - Local paths: ./deps.dot, /tmp/loc.json, ~/graphs/app.dot
//   - file:// URLs
//   - Remote files: https://example.com/deps.dot, s3::https://..., git::...//deps.dot
//
// Remote inputs are downloaded into a temporary directory that is removed by
// File.Cleanup.
package source

import (
	"context"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/hashicorp/go-getter"
	"go.uber.org/zap"

	"github.com/gleyba/uber-poet/errors"
	"github.com/gleyba/uber-poet/logger"
)

// File is a resolved input.
type File struct {
	// LocalPath is where the content can be read
	LocalPath string
	// Input is what the user passed
	Input string
	// Fetched is true when the content was downloaded
	Fetched bool

	cleanup func()
}

// Cleanup removes any temporary download. Safe to call multiple times and on
// a nil File.
func (f *File) Cleanup() {
	if f == nil || f.cleanup == nil {
		return
	}
	f.cleanup()
	f.cleanup = nil
}

// Resolve turns input into a readable local file. An empty input resolves to
// nil without error so optional inputs can be passed straight through.
func Resolve(ctx context.Context, input string, l *zap.SugaredLogger) (*File, error) {
	if input == "" {
		return nil, nil
	}
	l = l.Named("source")

	pwd, err := os.Getwd()
	if err != nil {
		pwd = "."
	}

	local, err := expandHome(input)
	if err != nil {
		return nil, err
	}
	if info, statErr := os.Stat(local); statErr == nil {
		if info.IsDir() {
			return nil, errors.NewConfigError("input %s is a directory, expected a file", input)
		}
		abs, _ := filepath.Abs(local)
		return &File{LocalPath: abs, Input: input}, nil
	}

	detected, err := getter.Detect(input, pwd, getter.Detectors)
	if err != nil {
		return nil, errors.WrapConfig(err, "failed to detect source type of "+input)
	}

	l.Debugw("go-getter detected source",
		"input", input,
		"detected", detected,
	)

	parsed, err := url.Parse(detected)
	if err != nil {
		return nil, errors.WrapConfig(err, "failed to parse detected URL")
	}

	if parsed.Scheme == "file" || parsed.Scheme == "" {
		p := parsed.Path
		if parsed.Scheme == "" {
			p = detected
		}
		if _, err := os.Stat(p); err != nil {
			return nil, errors.WithHint(
				errors.WrapConfig(err, "input file not found"),
				"check dot_file_path and loc_json_file_path",
			)
		}
		return &File{LocalPath: p, Input: input}, nil
	}

	return fetch(ctx, input, detected, l)
}

func fetch(ctx context.Context, input, detected string, l *zap.SugaredLogger) (*File, error) {
	name := fileName(input)

	tempDir, err := os.MkdirTemp("", "uberpoet-input-*")
	if err != nil {
		return nil, errors.Wrap(err, "failed to create temp directory")
	}
	dst := filepath.Join(tempDir, name)

	l.Infow("Fetching input",
		"input", input,
		"detected", detected,
		logger.FieldPath, dst,
	)

	client := &getter.Client{
		Ctx:     ctx,
		Src:     detected,
		Dst:     dst,
		Mode:    getter.ClientModeFile,
		Getters: getter.Getters,
	}
	if err := client.Get(); err != nil {
		_ = os.RemoveAll(tempDir)
		return nil, errors.WithHint(
			errors.WrapConfig(err, "failed to fetch "+input),
			"check the URL and your network access",
		)
	}

	return &File{
		LocalPath: dst,
		Input:     input,
		Fetched:   true,
		cleanup: func() {
			l.Debugw("Cleaning up fetched input", logger.FieldPath, tempDir)
			_ = os.RemoveAll(tempDir)
		},
	}, nil
}

func expandHome(p string) (string, error) {
	if !strings.HasPrefix(p, "~/") {
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(err, "failed to expand home directory")
	}
	return filepath.Join(home, p[2:]), nil
}

// fileName picks a name for the downloaded copy, keeping the extension so
// format detection by suffix still works.
func fileName(input string) string {
	s := input
	if i := strings.Index(s, "::"); i >= 0 {
		s = s[i+2:]
	}
	if u, err := url.Parse(s); err == nil && u.Path != "" {
		s = u.Path
	}
	if i := strings.LastIndex(s, "//"); i > 0 {
		s = s[i+2:]
	}
	base := path.Base(strings.TrimSuffix(s, "/"))
	if base == "" || base == "." || base == "/" {
		return "input"
	}
	return base
}
