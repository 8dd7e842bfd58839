// Package settings は店舗の税率・送料設定と見積もり計算を提供する。
package settings

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/hitoshi/bookstore/internal/model"
	"github.com/hitoshi/bookstore/internal/numeric"
	"github.com/hitoshi/bookstore/internal/repository"
	"github.com/hitoshi/bookstore/internal/validation"
)

// Service は店舗設定のビジネスロジックを提供する。
type Service struct {
	repo repository.SettingsRepository
	now  func() time.Time
}

// NewService はServiceを生成する。
func NewService(repo repository.SettingsRepository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// Get は現在の設定を返す。未保存の場合は税率0・送料0を返す。
func (s *Service) Get(ctx context.Context) (*model.Settings, error) {
	settings, err := s.repo.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get settings: %w", err)
	}
	if settings == nil {
		return &model.Settings{}, nil
	}
	return settings, nil
}

// Update は入力を検証して設定を保存する。
func (s *Service) Update(ctx context.Context, userID string, in UpdateInput) (*model.Settings, error) {
	if errs := validation.Validate(UpdateSchema, in); !errs.Valid() {
		return nil, model.NewValidationError(errs)
	}

	// スキーマを通過しているため変換は失敗しない
	taxRate, _ := numeric.ParseNumericInput(in.TaxRate.Raw)
	shipping, _ := numeric.ParseNumericInput(in.ShippingCost.Raw)

	settings := &model.Settings{
		TaxRate:      taxRate,
		ShippingCost: shipping,
		UpdatedBy:    userID,
		UpdatedAt:    s.now(),
	}
	if err := s.repo.Save(ctx, settings); err != nil {
		return nil, fmt.Errorf("failed to save settings: %w", err)
	}

	slog.Info("store settings updated",
		slog.String("user_id", userID),
		slog.Float64("tax_rate", taxRate),
		slog.Float64("shipping_cost", shipping),
	)
	return settings, nil
}

// Quote は小計から税・送料・合計を計算する。各金額は小数2桁に丸める。
// rawSubtotalは数値入力の形式である必要がある。
func (s *Service) Quote(ctx context.Context, rawSubtotal string) (*model.Quote, error) {
	subtotal, err := numeric.ParseNumericInput(rawSubtotal)
	if err != nil || rawSubtotal == "" {
		return nil, model.NewValidationError(map[string]string{FieldSubtotal: MsgSubtotalNumber})
	}

	settings, err := s.Get(ctx)
	if err != nil {
		return nil, err
	}

	quote := calculateQuote(subtotal, settings)
	if !isFinite(quote.Subtotal, quote.Tax, quote.Shipping, quote.Total) {
		// 桁数の大きい小計は丸めの途中で無限大になり、JSONに出力できない
		return nil, model.NewValidationError(map[string]string{FieldSubtotal: MsgSubtotalNumber})
	}
	return quote, nil
}

func calculateQuote(subtotal float64, settings *model.Settings) *model.Quote {
	sub := numeric.Round2(subtotal)
	tax := numeric.Round2(subtotal * settings.TaxRate)
	shipping := numeric.Round2(settings.ShippingCost)
	return &model.Quote{
		Subtotal: sub,
		Tax:      tax,
		Shipping: shipping,
		Total:    numeric.Round2(sub + tax + shipping),
	}
}

func isFinite(values ...float64) bool {
	for _, v := range values {
		if math.IsInf(v, 0) || math.IsNaN(v) {
			return false
		}
	}
	return true
}
