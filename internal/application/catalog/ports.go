package catalog

import (
	"context"
	"time"

	"github.com/aurum/jewelstore/internal/domain/catalog"
	"github.com/aurum/jewelstore/internal/domain/pricing"
)

// ImageStorage stores product images in object storage
type ImageStorage interface {
	// PresignUpload returns a URL the client can PUT the file to
	PresignUpload(ctx context.Context, key, contentType string, expiresIn time.Duration) (string, time.Time, error)
	Upload(ctx context.Context, key string, data []byte, contentType string) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	// PublicURL is the URL clients load the image from
	PublicURL(key string) string
	// KeyFromURL returns the key for a URL this storage issued
	KeyFromURL(url string) (string, bool)
}

// ProductPricer prices one piece of a product at the live rate.
// A missing rate yields an unavailable breakdown rather than an error.
type ProductPricer interface {
	PriceProduct(ctx context.Context, product *catalog.Product) (pricing.Breakdown, error)
}
