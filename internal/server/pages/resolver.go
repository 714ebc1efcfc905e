// Package pages turns the page entries stored on a book into URLs a browser
// can load: static paths under a base URL, or presigned S3 GETs.
package pages

import (
	"context"
	"net/url"
	"strings"

	"github.com/dmitrijs2005/booklib/internal/server/config"
	"github.com/dmitrijs2005/booklib/internal/server/models"
)

type Resolver interface {
	Resolve(ctx context.Context, book *models.Book) ([]string, error)
}

// NewResolver picks the S3 resolver when a bucket is configured and the
// static one otherwise.
func NewResolver(ctx context.Context, cfg *config.Config) (Resolver, error) {
	if cfg.S3Bucket == "" {
		return NewStaticResolver(cfg.PageBaseURL), nil
	}
	return NewS3Resolver(ctx, S3Options{
		Bucket:       cfg.S3Bucket,
		Region:       cfg.S3Region,
		BaseEndpoint: cfg.S3BaseEndpoint,
		AccessKey:    cfg.S3RootUser,
		SecretKey:    cfg.S3RootPassword,
		TTL:          cfg.PageURLTTL,
	})
}

type StaticResolver struct {
	base string
}

// NewStaticResolver serves stored paths relative to base. An empty base
// leaves them as site-absolute paths.
func NewStaticResolver(base string) *StaticResolver {
	return &StaticResolver{base: strings.TrimRight(base, "/")}
}

func (r *StaticResolver) Resolve(_ context.Context, book *models.Book) ([]string, error) {
	out := make([]string, 0, len(book.Pages))
	for _, p := range book.Pages {
		if isAbsoluteURL(p) {
			out = append(out, p)
			continue
		}
		out = append(out, r.base+"/"+strings.TrimPrefix(p, "/"))
	}
	return out, nil
}

func isAbsoluteURL(p string) bool {
	u, err := url.Parse(p)
	return err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// objectKey maps a stored page path to its bucket key.
func objectKey(p string) string {
	return strings.TrimPrefix(p, "/")
}
