// Package numeric は金額表示用の数値処理を提供する。
package numeric

import (
	"math"
	"regexp"
	"strconv"
)

// DefaultDecimals はRound2が使う小数桁数。
const DefaultDecimals = 2

// RoundHalfDown は num を小数 decimals 桁に丸める。
//
// 桁をずらした値の小数部がちょうど0.5の場合は負の無限大方向に丸め、
// それ以外は通常の四捨五入（最も近い値）を行う。
// 小数部の判定は浮動小数点の完全一致で行うため、0.5が二進数で正確に
// 表現される場合にのみ切り下げが適用される（例: 2.675 は 2.67499... となり 2.68 にはならず 2.67）。
// 任意精度での補正は行わない。
func RoundHalfDown(num float64, decimals int) float64 {
	factor := math.Pow(10, float64(decimals))
	scaled := num * factor
	floor := math.Floor(scaled)
	if scaled-floor == 0.5 {
		return floor / factor
	}
	return math.Round(scaled) / factor
}

// Round2 は小数2桁でRoundHalfDownを行う。
func Round2(num float64) float64 {
	return RoundHalfDown(num, DefaultDecimals)
}

// numericInputPattern は入力途中の値も含めた整数または小数の形式。
var numericInputPattern = regexp.MustCompile(`^\d*\.?\d*$`)

// IsNumericInput は設定画面の数値入力として受け付ける文字列であればtrueを返す。
// 入力途中の "" や "1." も受け付ける。
func IsNumericInput(s string) bool {
	return numericInputPattern.MatchString(s)
}

// ParseNumericInput は数値入力を float64 に変換する。
// 受け付けない文字を含む場合や数値として解釈できない場合はエラーを返す。
func ParseNumericInput(s string) (float64, error) {
	if !IsNumericInput(s) {
		return 0, strconv.ErrSyntax
	}
	return strconv.ParseFloat(s, 64)
}
