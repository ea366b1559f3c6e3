package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/chucky-1/ledgerbot/internal/model"
	"github.com/chucky-1/ledgerbot/internal/repository"
)

var defaultCategories = map[model.Kind][]string{
	model.Income:  {"Salary", "Gift", "Investments"},
	model.Expense: {"Food", "Transport", "Entertainment"},
}

type Recorder interface {
	Add(ctx context.Context, record *model.Record) error
	AddCategory(ctx context.Context, category *model.Category) error
	// Categories returns the built-in categories followed by the user's own ones
	Categories(ctx context.Context, userID int64, kind model.Kind) ([]string, error)
}

type recorder struct {
	repo    repository.Recorder
	retrier *Retrier
	now     func() time.Time
}

func NewRecorder(repo repository.Recorder, retrier *Retrier) *recorder {
	return &recorder{
		repo:    repo,
		retrier: retrier,
		now:     time.Now,
	}
}

func (r *recorder) Add(ctx context.Context, record *model.Record) error {
	if _, err := model.ParseKind(string(record.Kind)); err != nil {
		return fmt.Errorf("service.Recorder.Add: %v", err)
	}
	if !record.Amount.IsPositive() {
		return fmt.Errorf("%w: %s", InvalidAmountErr, record.Amount)
	}
	if record.Date.IsZero() {
		record.Date = r.now().UTC()
	}
	return r.retrier.Do(ctx, "add record", func() error {
		return r.repo.AddRecord(ctx, record)
	})
}

func (r *recorder) AddCategory(ctx context.Context, category *model.Category) error {
	category.Name = strings.TrimSpace(category.Name)
	for _, name := range defaultCategories[category.Kind] {
		if strings.EqualFold(name, category.Name) {
			return repository.DuplicateCategoryErr
		}
	}
	return r.retrier.Do(ctx, "add category", func() error {
		return r.repo.AddCategory(ctx, category)
	})
}

func (r *recorder) Categories(ctx context.Context, userID int64, kind model.Kind) ([]string, error) {
	var own []model.Category
	err := r.retrier.Do(ctx, "get categories", func() error {
		var err error
		own, err = r.repo.Categories(ctx, userID, kind)
		return err
	})
	if err != nil {
		return nil, err
	}

	defaults := defaultCategories[kind]
	names := make([]string, 0, len(defaults)+len(own))
	names = append(names, defaults...)
	for _, c := range own {
		names = append(names, c.Name)
	}
	return names, nil
}
