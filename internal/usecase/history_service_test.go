package usecase

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/nutriscan/backend/internal/domain"
	"go.uber.org/zap"
)

var fixedNow = time.Date(2024, 5, 1, 14, 30, 0, 0, time.UTC)

func newTestHistoryService(repo *MockProfileRepository, max int) *HistoryService {
	svc := NewHistoryService(repo, HistoryServiceConfig{MaxEntries: max}, zap.NewNop())
	svc.now = func() time.Time { return fixedNow }
	return svc
}

func entries(barcodes ...string) []domain.HistoryEntry {
	out := make([]domain.HistoryEntry, 0, len(barcodes))
	for _, b := range barcodes {
		out = append(out, domain.HistoryEntry{Barcode: b, ProductName: "Product " + b})
	}
	return out
}

func barcodesOf(history []domain.HistoryEntry) []string {
	out := make([]string, 0, len(history))
	for _, e := range history {
		out = append(out, e.Barcode)
	}
	return out
}

func TestNewHistoryService(t *testing.T) {
	svc := NewHistoryService(NewMockProfileRepository(), HistoryServiceConfig{}, zap.NewNop())
	if svc.maxEntries != 20 {
		t.Errorf("maxEntries = %d, want 20", svc.maxEntries)
	}
}

func TestNewHistoryEntry(t *testing.T) {
	analysis := "SAFETY ASSESSMENT: Caution - high sugar.\n\nDetails"
	product := nutellaProduct()

	entry := NewHistoryEntry(product, analysis, fixedNow)

	if entry.ID == "" {
		t.Error("ID should be generated")
	}
	if entry.Timestamp != "2024-05-01 14:30:00" {
		t.Errorf("Timestamp = %q", entry.Timestamp)
	}
	if entry.SafetyRating != domain.RatingCaution {
		t.Errorf("SafetyRating = %s", entry.SafetyRating)
	}
	if entry.AnalysisSummary != "Caution - high sugar." {
		t.Errorf("AnalysisSummary = %q", entry.AnalysisSummary)
	}
	if entry.FullAnalysis != analysis {
		t.Error("FullAnalysis should keep the model output")
	}
	if entry.NutritionInfo.Calories == nil || *entry.NutritionInfo.Calories != 539 {
		t.Errorf("NutritionInfo = %+v", entry.NutritionInfo)
	}

	t.Run("fills name and allergens", func(t *testing.T) {
		entry := NewHistoryEntry(&domain.Product{Barcode: "123456"}, "", fixedNow)
		if entry.ProductName != domain.UnknownProductName {
			t.Errorf("ProductName = %q", entry.ProductName)
		}
		if entry.Allergens == nil {
			t.Error("Allergens should not be nil")
		}
		if entry.SafetyRating != domain.RatingUnknown || entry.AnalysisSummary != "No summary available" {
			t.Errorf("entry = %+v", entry)
		}
	})
}

func TestAddToHistory(t *testing.T) {
	t.Run("prepends new barcode", func(t *testing.T) {
		got := AddToHistory(entries("111111", "222222"), domain.HistoryEntry{Barcode: "333333"}, 20)
		want := []string{"333333", "111111", "222222"}
		if fmt.Sprint(barcodesOf(got)) != fmt.Sprint(want) {
			t.Errorf("AddToHistory() = %v, want %v", barcodesOf(got), want)
		}
	})

	t.Run("replaces existing barcode in place", func(t *testing.T) {
		got := AddToHistory(entries("111111", "222222", "333333"), domain.HistoryEntry{Barcode: "222222", ProductName: "Updated"}, 20)
		want := []string{"111111", "222222", "333333"}
		if fmt.Sprint(barcodesOf(got)) != fmt.Sprint(want) {
			t.Errorf("AddToHistory() = %v, want %v", barcodesOf(got), want)
		}
		if got[1].ProductName != "Updated" {
			t.Errorf("entry not replaced: %+v", got[1])
		}
	})

	t.Run("caps at max entries", func(t *testing.T) {
		got := AddToHistory(entries("1", "2", "3"), domain.HistoryEntry{Barcode: "4"}, 3)
		want := []string{"4", "1", "2"}
		if fmt.Sprint(barcodesOf(got)) != fmt.Sprint(want) {
			t.Errorf("AddToHistory() = %v, want %v", barcodesOf(got), want)
		}
	})

	t.Run("entries without barcode never replace", func(t *testing.T) {
		got := AddToHistory(entries(""), domain.HistoryEntry{ProductName: "Label"}, 20)
		if len(got) != 2 {
			t.Errorf("len = %d, want 2", len(got))
		}
	})

	t.Run("empty history", func(t *testing.T) {
		got := AddToHistory(nil, domain.HistoryEntry{Barcode: "1"}, 20)
		if len(got) != 1 {
			t.Errorf("len = %d, want 1", len(got))
		}
	})
}

func TestGroupHistory(t *testing.T) {
	history := []domain.HistoryEntry{
		{Barcode: "1", SafetyRating: domain.RatingSafe},
		{Barcode: "2", SafetyRating: domain.RatingUnsafe},
		{Barcode: "3", SafetyRating: domain.RatingSafe},
		{Barcode: "4", SafetyRating: domain.RatingCaution},
		{Barcode: "5", SafetyRating: "Bogus"},
	}

	got := GroupHistory(history)

	if fmt.Sprint(barcodesOf(got.Safe)) != "[1 3]" {
		t.Errorf("Safe = %v", barcodesOf(got.Safe))
	}
	if fmt.Sprint(barcodesOf(got.Unsafe)) != "[2]" {
		t.Errorf("Unsafe = %v", barcodesOf(got.Unsafe))
	}
	if fmt.Sprint(barcodesOf(got.Caution)) != "[4]" {
		t.Errorf("Caution = %v", barcodesOf(got.Caution))
	}
	if fmt.Sprint(barcodesOf(got.Unknown)) != "[5]" {
		t.Errorf("Unknown = %v", barcodesOf(got.Unknown))
	}

	t.Run("empty groups are non-nil", func(t *testing.T) {
		got := GroupHistory(nil)
		if got.Safe == nil || got.Caution == nil || got.Unsafe == nil || got.Unknown == nil {
			t.Errorf("GroupHistory(nil) = %+v, want empty slices", got)
		}
	})
}

func TestHistoryService(t *testing.T) {
	ctx := context.Background()

	t.Run("save then get", func(t *testing.T) {
		repo := NewMockProfileRepository()
		repo.profiles["ada"] = completeProfile()
		svc := newTestHistoryService(repo, 20)

		saved, err := svc.Save(ctx, "ada", nutellaProduct(), "SAFETY ASSESSMENT: Safe")
		if err != nil {
			t.Fatalf("Save() error = %v", err)
		}

		got, err := svc.Get(ctx, "ada", "3017620422003")
		if err != nil {
			t.Fatalf("Get() error = %v", err)
		}
		if got.ID != saved.ID || got.SafetyRating != domain.RatingSafe {
			t.Errorf("Get() = %+v, want saved entry", got)
		}
		if repo.profiles["ada"].Name != "Ada" {
			t.Error("profile fields should be kept")
		}
	})

	t.Run("saving the same barcode twice keeps one entry", func(t *testing.T) {
		repo := NewMockProfileRepository()
		svc := newTestHistoryService(repo, 20)

		for _, analysis := range []string{"SAFETY ASSESSMENT: Safe", "SAFETY ASSESSMENT: Unsafe"} {
			if _, err := svc.Save(ctx, "ada", nutellaProduct(), analysis); err != nil {
				t.Fatalf("Save() error = %v", err)
			}
		}

		history, err := svc.List(ctx, "ada")
		if err != nil {
			t.Fatalf("List() error = %v", err)
		}
		if len(history) != 1 {
			t.Fatalf("len(history) = %d, want 1", len(history))
		}
		if history[0].SafetyRating != domain.RatingUnsafe {
			t.Errorf("SafetyRating = %s, want latest analysis", history[0].SafetyRating)
		}
	})

	t.Run("respects max entries", func(t *testing.T) {
		repo := NewMockProfileRepository()
		svc := newTestHistoryService(repo, 2)

		for _, barcode := range []string{"111111", "222222", "333333"} {
			p := nutellaProduct()
			p.Barcode = barcode
			if _, err := svc.Save(ctx, "ada", p, ""); err != nil {
				t.Fatalf("Save() error = %v", err)
			}
		}

		history, _ := svc.List(ctx, "ada")
		if fmt.Sprint(barcodesOf(history)) != "[333333 222222]" {
			t.Errorf("history = %v", barcodesOf(history))
		}
	})

	t.Run("list of new user is empty", func(t *testing.T) {
		svc := newTestHistoryService(NewMockProfileRepository(), 20)
		history, err := svc.List(ctx, "ada")
		if err != nil {
			t.Fatalf("List() error = %v", err)
		}
		if history == nil || len(history) != 0 {
			t.Errorf("List() = %v, want empty slice", history)
		}
	})

	t.Run("get missing entry", func(t *testing.T) {
		svc := newTestHistoryService(NewMockProfileRepository(), 20)
		_, err := svc.Get(ctx, "ada", "999999")
		if !errors.Is(err, domain.ErrHistoryEntryNotFound) {
			t.Errorf("Get() error = %v, want ErrHistoryEntryNotFound", err)
		}
	})

	t.Run("group by rating", func(t *testing.T) {
		repo := NewMockProfileRepository()
		repo.profiles["ada"] = domain.Profile{ProductHistory: []domain.HistoryEntry{
			{Barcode: "1", SafetyRating: domain.RatingUnsafe},
			{Barcode: "2", SafetyRating: domain.RatingSafe},
		}}
		svc := newTestHistoryService(repo, 20)

		grouped, err := svc.GroupByRating(ctx, "ada")
		if err != nil {
			t.Fatalf("GroupByRating() error = %v", err)
		}
		if len(grouped.Unsafe) != 1 || len(grouped.Safe) != 1 || len(grouped.Caution) != 0 {
			t.Errorf("GroupByRating() = %+v", grouped)
		}
	})

	t.Run("delete", func(t *testing.T) {
		repo := NewMockProfileRepository()
		repo.profiles["ada"] = domain.Profile{ProductHistory: entries("1", "2", "3")}
		svc := newTestHistoryService(repo, 20)

		if err := svc.Delete(ctx, "ada", "2"); err != nil {
			t.Fatalf("Delete() error = %v", err)
		}
		if got := barcodesOf(repo.profiles["ada"].ProductHistory); fmt.Sprint(got) != "[1 3]" {
			t.Errorf("history = %v", got)
		}

		if err := svc.Delete(ctx, "ada", "2"); !errors.Is(err, domain.ErrHistoryEntryNotFound) {
			t.Errorf("second Delete() error = %v, want ErrHistoryEntryNotFound", err)
		}
	})

	t.Run("save failure is returned", func(t *testing.T) {
		repo := NewMockProfileRepository()
		repo.updateError = domain.ErrStorageFailure
		svc := newTestHistoryService(repo, 20)

		_, err := svc.Save(ctx, "ada", nutellaProduct(), "")
		if !errors.Is(err, domain.ErrStorageFailure) {
			t.Errorf("Save() error = %v, want ErrStorageFailure", err)
		}
	})
}
