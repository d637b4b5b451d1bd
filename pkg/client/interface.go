package client

import (
	"context"

	"github.com/menta2k/image-editor/pkg/types"
)

type SearchProvider interface {
	Search(ctx context.Context, query string) ([]types.SearchResult, error)
}
