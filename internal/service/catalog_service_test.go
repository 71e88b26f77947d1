package service

import (
	"context"
	"testing"

	"github.com/Fluffaro/desk-cartel/internal/repository/memory"
	apperrors "github.com/Fluffaro/desk-cartel/pkg/util"
)

func newCatalogService() *CatalogService {
	store := memory.NewStore()
	return NewCatalogService(store.Priorities(), store.Categories())
}

func TestCreatePriorityValidation(t *testing.T) {
	svc := newCatalogService()
	ctx := context.Background()

	cases := []struct {
		name  string
		input PriorityInput
	}{
		{"empty name", PriorityInput{Weight: 10, TimeLimitHours: 24}},
		{"zero weight", PriorityInput{Name: "LOW", TimeLimitHours: 24}},
		{"zero time limit", PriorityInput{Name: "LOW", Weight: 10}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.CreatePriority(ctx, tc.input)
			domainErr := apperrors.ToDomainError(err)
			if domainErr == nil || domainErr.Code != "VALIDATION_FAILED" {
				t.Fatalf("expected VALIDATION_FAILED, got %v", err)
			}
		})
	}
}

func TestCreatePriorityDuplicateName(t *testing.T) {
	svc := newCatalogService()
	ctx := context.Background()

	if _, err := svc.CreatePriority(ctx, PriorityInput{Name: "HIGH", Weight: 30, TimeLimitHours: 24}); err != nil {
		t.Fatalf("first create: %v", err)
	}
	_, err := svc.CreatePriority(ctx, PriorityInput{Name: "HIGH", Weight: 40, TimeLimitHours: 8})
	domainErr := apperrors.ToDomainError(err)
	if domainErr == nil || domainErr.Code != "CONFLICT" {
		t.Fatalf("expected CONFLICT, got %v", err)
	}
}

func TestListPrioritiesOrderedByWeight(t *testing.T) {
	svc := newCatalogService()
	ctx := context.Background()

	for _, p := range []PriorityInput{
		{Name: "CRITICAL", Weight: 40, TimeLimitHours: 8},
		{Name: "LOW", Weight: 10, TimeLimitHours: 72},
		{Name: "HIGH", Weight: 30, TimeLimitHours: 24},
	} {
		if _, err := svc.CreatePriority(ctx, p); err != nil {
			t.Fatalf("create %s: %v", p.Name, err)
		}
	}

	priorities, err := svc.ListPriorities(ctx)
	if err != nil {
		t.Fatalf("ListPriorities: %v", err)
	}
	if len(priorities) != 3 {
		t.Fatalf("len = %d, want 3", len(priorities))
	}
	for i := 1; i < len(priorities); i++ {
		if priorities[i-1].Weight > priorities[i].Weight {
			t.Fatalf("priorities not ordered by weight: %v", priorities)
		}
	}
}

func TestSetCategoryActive(t *testing.T) {
	svc := newCatalogService()
	ctx := context.Background()

	category, err := svc.CreateCategory(ctx, CategoryInput{Name: "Billing", Points: 2, IsActive: true})
	if err != nil {
		t.Fatalf("CreateCategory: %v", err)
	}

	updated, err := svc.SetCategoryActive(ctx, category.ID, false)
	if err != nil {
		t.Fatalf("SetCategoryActive: %v", err)
	}
	if updated.IsActive {
		t.Error("category still active")
	}

	onlyActive := true
	active, err := svc.ListCategories(ctx, &onlyActive)
	if err != nil {
		t.Fatalf("ListCategories: %v", err)
	}
	if len(active) != 0 {
		t.Errorf("active categories = %d, want 0", len(active))
	}
}

func TestSetCategoryActiveNotFound(t *testing.T) {
	svc := newCatalogService()

	_, err := svc.SetCategoryActive(context.Background(), "missing", true)
	if !apperrors.IsNotFound(err) {
		t.Fatalf("expected NOT_FOUND, got %v", err)
	}
}
