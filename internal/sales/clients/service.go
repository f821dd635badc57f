package clients

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ecologic-brindes/ecologic-backend/internal/shared"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Get(ctx context.Context, id int64) (Client, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) List(ctx context.Context, req ListClientsRequest) ([]Client, int, error) {
	if req.Limit <= 0 || req.Limit > 200 {
		req.Limit = 50
	}
	return s.repo.List(ctx, req)
}

// EnsureExists returns the client for the email, creating the record when
// the email has never submitted a quote before.
func (s *Service) EnsureExists(ctx context.Context, name, email, phone, company string) (Client, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return Client{}, errors.New("clients: email required")
	}

	existing, err := s.repo.GetByEmail(ctx, email)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return Client{}, fmt.Errorf("clients: lookup by email: %w", err)
	}

	created, err := s.repo.Create(ctx, Client{Name: name, Email: email, Phone: phone, Company: company})
	if err != nil {
		return Client{}, fmt.Errorf("clients: create: %w", err)
	}
	return created, nil
}
