package model

import "time"

// Settings は店舗全体の税率と送料の設定を表す。
// TaxRateは0以上1以下、ShippingCostは0以上。
type Settings struct {
	TaxRate      float64
	ShippingCost float64
	UpdatedBy    string
	UpdatedAt    time.Time
}

// Quote は小計に税と送料を加えた見積もりを表す。
// 各金額は表示用に丸め済み。
type Quote struct {
	Subtotal float64
	Tax      float64
	Shipping float64
	Total    float64
}
