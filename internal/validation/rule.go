// Package validation はフォーム入力のスキーマ駆動バリデーションを提供する。
//
// スキーマはフィールドごとのルール列と、最後に評価されるフィールド間ルールで構成される。
// 検証結果は例外ではなくデータ（フィールドパス → メッセージ）として返す。
package validation

import (
	"regexp"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

// Kind はルールの種別を表す。
type Kind string

const (
	KindRequired    Kind = "required"
	KindMinLength   Kind = "min_length"
	KindMaxLength   Kind = "max_length"
	KindPattern     Kind = "pattern"
	KindEmail       Kind = "email"
	KindEqualsField Kind = "equals_field"
	KindCustom      Kind = "custom"
)

// Rule は1つの制約と違反時のメッセージを表すタグ付きバリアント。
// Kindに応じて使用するフィールドが異なる。
type Rule struct {
	Kind    Kind
	Message string

	Length  int                     // min_length, max_length
	Pattern *regexp.Regexp          // pattern
	Field   string                  // equals_field: 比較対象のフィールドパス
	Check   func(value string) bool // custom
}

// emailValidator はメールアドレス形式の検証に使う。validator.Validateは並行利用に安全。
var emailValidator = validator.New()

// Required は空文字列を拒否するルールを返す。
func Required(message string) Rule {
	return Rule{Kind: KindRequired, Message: message}
}

// MinLength は文字数が n 未満の値を拒否するルールを返す。
func MinLength(n int, message string) Rule {
	return Rule{Kind: KindMinLength, Length: n, Message: message}
}

// MaxLength は文字数が n を超える値を拒否するルールを返す。
func MaxLength(n int, message string) Rule {
	return Rule{Kind: KindMaxLength, Length: n, Message: message}
}

// Pattern は正規表現にマッチしない値を拒否するルールを返す。
func Pattern(re *regexp.Regexp, message string) Rule {
	return Rule{Kind: KindPattern, Pattern: re, Message: message}
}

// Email はメールアドレスとして不正な値を拒否するルールを返す。
func Email(message string) Rule {
	return Rule{Kind: KindEmail, Message: message}
}

// EqualsField は field の値と一致しない値を拒否するルールを返す。
// フィールド間ルールとしてのみ使用する。
func EqualsField(field, message string) Rule {
	return Rule{Kind: KindEqualsField, Field: field, Message: message}
}

// Custom は check が false を返す値を拒否するルールを返す。
func Custom(check func(value string) bool, message string) Rule {
	return Rule{Kind: KindCustom, Check: check, Message: message}
}

// passes は単一フィールドの値がルールを満たすかを判定する。
// fields はフィールド間ルールの参照先として使う。
func (r Rule) passes(value string, fields map[string]string) bool {
	switch r.Kind {
	case KindRequired:
		return value != ""
	case KindMinLength:
		return utf8.RuneCountInString(value) >= r.Length
	case KindMaxLength:
		return utf8.RuneCountInString(value) <= r.Length
	case KindPattern:
		if r.Pattern == nil {
			return true
		}
		return r.Pattern.MatchString(value)
	case KindEmail:
		return emailValidator.Var(value, "email") == nil
	case KindEqualsField:
		return value == fields[r.Field]
	case KindCustom:
		if r.Check == nil {
			return true
		}
		return r.Check(value)
	default:
		return true
	}
}
