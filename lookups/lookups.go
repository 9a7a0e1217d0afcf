// Package lookups serves the read-only reference data: provinces, cities,
// the two-level industry tree and skills.
//
// These lists feed form pickers. A slow or failing database must not break the
// page, so every listing is bounded by the store timeout and degrades to an
// empty list (logged) instead of an error.
package lookups

import (
	"context"
	"log"
	"time"
)

type Province struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Code string `json:"code"`
}

type City struct {
	ID         int64  `json:"id"`
	ProvinceID int64  `json:"provinceId"`
	Name       string `json:"name"`
	Code       string `json:"code"`
}

type IndustryLevel1 struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Code string `json:"code"`
}

type IndustryLevel2 struct {
	ID               int64  `json:"id"`
	IndustryLevel1ID int64  `json:"industryLevel1Id"`
	Name             string `json:"name"`
	Code             string `json:"code"`
}

type Skill struct {
	ID       int64   `json:"id"`
	Name     string  `json:"name"`
	Category *string `json:"category"`
}

// Store reads reference tables. Zero filter values mean "no filter".
type Store interface {
	ListProvinces(ctx context.Context) ([]Province, error)
	ListCities(ctx context.Context, provinceID int64) ([]City, error)
	ListIndustriesLevel1(ctx context.Context) ([]IndustryLevel1, error)
	ListIndustriesLevel2(ctx context.Context, level1ID int64) ([]IndustryLevel2, error)
	ListSkills(ctx context.Context, category string) ([]Skill, error)
}

// Service wraps a Store with the timeout and degrade-to-empty policy.
type Service struct {
	store   Store
	timeout time.Duration
}

// NewService creates a new lookups Service.
func NewService(store Store, timeout time.Duration) *Service {
	return &Service{store: store, timeout: timeout}
}

// degrade runs fn under the store timeout. Any error is logged and replaced by an empty list.
func degrade[T any](ctx context.Context, timeout time.Duration, what string, fn func(context.Context) ([]T, error)) []T {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	items, err := fn(ctx)
	if err != nil {
		log.Printf("lookups: listing %s failed, serving empty list: %v", what, err)
		return []T{}
	}
	if items == nil {
		return []T{}
	}
	return items
}

func (s *Service) Provinces(ctx context.Context) []Province {
	return degrade(ctx, s.timeout, "provinces", s.store.ListProvinces)
}

func (s *Service) Cities(ctx context.Context, provinceID int64) []City {
	return degrade(ctx, s.timeout, "cities", func(ctx context.Context) ([]City, error) {
		return s.store.ListCities(ctx, provinceID)
	})
}

func (s *Service) IndustriesLevel1(ctx context.Context) []IndustryLevel1 {
	return degrade(ctx, s.timeout, "level-1 industries", s.store.ListIndustriesLevel1)
}

func (s *Service) IndustriesLevel2(ctx context.Context, level1ID int64) []IndustryLevel2 {
	return degrade(ctx, s.timeout, "level-2 industries", func(ctx context.Context) ([]IndustryLevel2, error) {
		return s.store.ListIndustriesLevel2(ctx, level1ID)
	})
}

func (s *Service) Skills(ctx context.Context, category string) []Skill {
	return degrade(ctx, s.timeout, "skills", func(ctx context.Context) ([]Skill, error) {
		return s.store.ListSkills(ctx, category)
	})
}
