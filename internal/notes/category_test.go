package notes

import (
	"context"
	"errors"
	"reflect"
	"testing"
)

func recipeCategory(t *testing.T, svc *Service, ownerID int64) Category {
	t.Helper()
	c, err := svc.CreateCategory(context.Background(), ownerID, CategoryDraft{
		Name: " Recipes ",
		Fields: []Field{
			{Key: "servings", Type: "number", Required: true, Order: 2},
			{Key: "vegan", Type: FieldBoolean, Order: 3},
			{Key: "cooked", Type: FieldDate, Order: 4},
			{Key: "source", Label: "Source", Order: 1},
			{Key: "tags", Type: FieldTags, Order: 5},
		},
	})
	if err != nil {
		t.Fatalf("create category: %v", err)
	}
	return c
}

func TestService_CreateCategoryNormalizesSchema(t *testing.T) {
	svc := NewService(NewMemoryRepo())
	c := recipeCategory(t, svc, 1)

	if c.Name != "Recipes" {
		t.Fatalf("expected trimmed name, got %q", c.Name)
	}
	var keys []string
	for _, f := range c.Fields {
		keys = append(keys, f.Key)
	}
	if want := []string{"source", "servings", "vegan", "cooked", "tags"}; !reflect.DeepEqual(keys, want) {
		t.Fatalf("expected fields ordered %v, got %v", want, keys)
	}
	if c.Fields[1].Type != FieldNumber || c.Fields[1].Label != "servings" {
		t.Fatalf("expected upper-cased type and key as label, got %+v", c.Fields[1])
	}
	if c.Fields[0].Type != FieldText {
		t.Fatalf("expected TEXT default, got %q", c.Fields[0].Type)
	}
}

func TestService_CategoryValidation(t *testing.T) {
	svc := NewService(NewMemoryRepo())
	ctx := context.Background()

	cases := map[string]CategoryDraft{
		"blank name":   {Name: "  "},
		"bad key":      {Name: "x", Fields: []Field{{Key: "1st"}}},
		"repeated key": {Name: "x", Fields: []Field{{Key: "a"}, {Key: "a"}}},
		"unknown type": {Name: "x", Fields: []Field{{Key: "a", Type: "COLOR"}}},
		"empty key":    {Name: "x", Fields: []Field{{Key: " "}}},
	}
	for name, d := range cases {
		if _, err := svc.CreateCategory(ctx, 1, d); !errors.Is(err, ErrInvalidArgument) {
			t.Errorf("%s: expected ErrInvalidArgument, got %v", name, err)
		}
	}
}

func TestService_CategoryNamesUniquePerOwner(t *testing.T) {
	svc := NewService(NewMemoryRepo())
	ctx := context.Background()
	recipeCategory(t, svc, 1)

	if _, err := svc.CreateCategory(ctx, 1, CategoryDraft{Name: "RECIPES"}); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
	if _, err := svc.CreateCategory(ctx, 2, CategoryDraft{Name: "Recipes"}); err != nil {
		t.Fatalf("another owner may reuse the name: %v", err)
	}

	work, err := svc.CreateCategory(ctx, 1, CategoryDraft{Name: "Work"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.UpdateCategory(ctx, 1, work.ID, CategoryDraft{Name: "recipes"}); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict on rename, got %v", err)
	}
	if _, err := svc.UpdateCategory(ctx, 1, work.ID, CategoryDraft{Name: "work"}); err != nil {
		t.Fatalf("renaming to itself with new case: %v", err)
	}

	list, err := svc.ListCategories(ctx, 1)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 || list[0].Name != "Recipes" || list[1].Name != "work" {
		t.Fatalf("expected categories by name, got %+v", list)
	}
}

func TestService_NoteFieldsFollowCategory(t *testing.T) {
	svc := NewService(NewMemoryRepo())
	ctx := context.Background()
	c := recipeCategory(t, svc, 1)

	n, err := svc.Create(ctx, 1, Draft{
		Title:      "pancakes",
		CategoryID: c.ID,
		Fields: map[string]any{
			"servings": "4",
			"vegan":    "yes",
			"cooked":   "2026-03-01",
			"tags":     "breakfast, sweet,",
			"unknown":  "dropped",
		},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	want := map[string]any{
		"servings": 4.0,
		"vegan":    true,
		"cooked":   "2026-03-01",
		"tags":     []string{"breakfast", "sweet"},
	}
	if !reflect.DeepEqual(n.Fields, want) {
		t.Fatalf("expected fields %v, got %v", want, n.Fields)
	}

	if _, err := svc.Create(ctx, 1, Draft{Title: "x", CategoryID: c.ID, Fields: map[string]any{"servings": " "}}); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected blank required field to fail, got %v", err)
	}
	if _, err := svc.Create(ctx, 1, Draft{Title: "x", CategoryID: c.ID, Fields: map[string]any{"servings": 2.0, "cooked": "03/01/2026"}}); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected bad date to fail, got %v", err)
	}
	if _, err := svc.Create(ctx, 1, Draft{Title: "x", Fields: map[string]any{"servings": 1.0}}); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected fields without category to fail, got %v", err)
	}
	if _, err := svc.Create(ctx, 2, Draft{Title: "x", CategoryID: c.ID, Fields: map[string]any{"servings": 1.0}}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected foreign category to read as missing, got %v", err)
	}
}

func TestService_DeleteCategoryInUse(t *testing.T) {
	svc := NewService(NewMemoryRepo())
	ctx := context.Background()
	c := recipeCategory(t, svc, 1)
	n, err := svc.Create(ctx, 1, Draft{Title: "soup", CategoryID: c.ID, Fields: map[string]any{"servings": 2.0}})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := svc.DeleteCategory(ctx, 1, c.ID); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict while notes use the category, got %v", err)
	}
	if err := svc.DeleteCategory(ctx, 2, c.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for another owner, got %v", err)
	}

	if _, err := svc.Update(ctx, 1, n.ID, Draft{Title: "soup"}); err != nil {
		t.Fatalf("uncategorize: %v", err)
	}
	if err := svc.DeleteCategory(ctx, 1, c.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
}

func TestService_ListFilters(t *testing.T) {
	svc := NewService(NewMemoryRepo())
	ctx := context.Background()
	c := recipeCategory(t, svc, 1)
	svc.Create(ctx, 1, Draft{Title: "Pancakes", CategoryID: c.ID, Fields: map[string]any{"servings": 4.0}})
	svc.Create(ctx, 1, Draft{Title: "standup", Content: "ask about PANCAKES"})
	svc.Create(ctx, 1, Draft{Title: "gym", Tags: []string{"pancake-day"}})
	svc.Create(ctx, 1, Draft{Title: "taxes"})

	byCategory, _ := svc.List(ctx, 1, ListFilter{CategoryID: c.ID})
	if len(byCategory) != 1 || byCategory[0].Title != "Pancakes" {
		t.Fatalf("unexpected category filter result: %+v", byCategory)
	}
	byKeyword, _ := svc.List(ctx, 1, ListFilter{Keyword: " pancake "})
	if len(byKeyword) != 3 {
		t.Fatalf("expected title, content and tag matches, got %d", len(byKeyword))
	}
}
