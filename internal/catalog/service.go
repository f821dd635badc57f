package catalog

import (
	"context"
	"fmt"
	"strconv"
)

// Service exposes catalog reads with a cache in front of search, which the
// storefront and the quote editor's product picker both hammer.
type Service struct {
	repo  Repository
	cache *Cache
}

func NewService(repo Repository, cache *Cache) *Service {
	return &Service{repo: repo, cache: cache}
}

type searchResult struct {
	Products []Product `json:"products"`
	Total    int       `json:"total"`
}

// List returns products matching the filters, served from cache when possible.
func (s *Service) List(ctx context.Context, filters ListFilters) ([]Product, int, error) {
	active := ""
	if filters.IsActive != nil {
		active = strconv.FormatBool(*filters.IsActive)
	}
	key := s.cache.Key("search", filters.Search, active,
		strconv.Itoa(filters.Page), strconv.Itoa(filters.Limit))

	var result searchResult
	err := s.cache.FetchJSON(ctx, key, &result, func(ctx context.Context) (interface{}, error) {
		products, total, err := s.repo.List(ctx, filters)
		if err != nil {
			return nil, err
		}
		return searchResult{Products: products, Total: total}, nil
	})
	if err != nil {
		return nil, 0, fmt.Errorf("catalog: list: %w", err)
	}
	return result.Products, result.Total, nil
}

// Get returns a single product by id, uncached so the editor always sees
// current variation data.
func (s *Service) Get(ctx context.Context, id int64) (Product, error) {
	return s.repo.Get(ctx, id)
}
