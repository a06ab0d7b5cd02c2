package media

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	s3infra "moderator_bot/internal/infra/s3"
)

var ErrObjectStorageDisabled = errors.New("object storage is not configured")

type Kind int

const (
	KindNone Kind = iota
	// KindRemote is passed to Telegram as is: http(s) URLs, presigned
	// object URLs and attach:// references.
	KindRemote
	KindLocal
)

// Source is a resolved media reference. Expected keeps the location that
// was looked at so a missing file can be reported to the moderator.
type Source struct {
	Kind     Kind
	Ref      string
	Expected string
}

func (s Source) Found() bool {
	return s.Kind != KindNone && strings.TrimSpace(s.Ref) != ""
}

type URLSigner interface {
	PresignRef(ctx context.Context, ref string, ttl time.Duration) (string, error)
}

type Resolver struct {
	root      string
	outputDir string
	signer    URLSigner
	ttl       time.Duration
}

func NewResolver(root, outputDir string, signer URLSigner, ttl time.Duration) *Resolver {
	if strings.TrimSpace(root) == "" {
		root = "."
	}
	if strings.TrimSpace(outputDir) == "" {
		outputDir = filepath.Join(root, "output")
	} else if !filepath.IsAbs(outputDir) {
		outputDir = filepath.Join(root, outputDir)
	}
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &Resolver{root: root, outputDir: outputDir, signer: signer, ttl: ttl}
}

func IsRemote(path string) bool {
	lower := strings.ToLower(strings.TrimSpace(path))
	return strings.HasPrefix(lower, "http://") ||
		strings.HasPrefix(lower, "https://") ||
		strings.HasPrefix(lower, "attach://")
}

// Resolve maps a stored media path to something Telegram can send. A
// missing local file is not an error: the returned Source is simply not
// Found.
func (r *Resolver) Resolve(ctx context.Context, path string) (Source, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return Source{}, nil
	}

	if IsRemote(trimmed) {
		return Source{Kind: KindRemote, Ref: trimmed, Expected: trimmed}, nil
	}

	if s3infra.IsObjectRef(trimmed) {
		if r.signer == nil {
			return Source{Expected: trimmed}, ErrObjectStorageDisabled
		}
		signed, err := r.signer.PresignRef(ctx, trimmed, r.ttl)
		if err != nil {
			return Source{Expected: trimmed}, fmt.Errorf("presign %s: %w", trimmed, err)
		}
		return Source{Kind: KindRemote, Ref: signed, Expected: trimmed}, nil
	}

	local := r.LocalPath(trimmed)
	info, err := os.Stat(local)
	if err != nil || info.IsDir() {
		return Source{Expected: local}, nil
	}
	return Source{Kind: KindLocal, Ref: local, Expected: local}, nil
}

// LocalPath anchors a relative path at the project root.
func (r *Resolver) LocalPath(path string) string {
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(r.root, path)
}

// FindResultVideo looks for a rendered result of task taskID in the
// output directory. Patterns are tried in order and the first name in
// lexical order wins.
func (r *Resolver) FindResultVideo(taskID int64) string {
	if taskID <= 0 {
		return ""
	}
	if info, err := os.Stat(r.outputDir); err != nil || !info.IsDir() {
		return ""
	}

	id := strconv.FormatInt(taskID, 10)
	patterns := []string{
		id + "_result_*.mp4",
		"*_" + id + "_result*.mp4",
		"*" + id + "*result*.mp4",
	}

	for _, pattern := range patterns {
		matches, err := filepath.Glob(filepath.Join(r.outputDir, pattern))
		if err != nil || len(matches) == 0 {
			continue
		}
		sort.Strings(matches)
		return matches[0]
	}
	return ""
}
