package validation

import "sort"

// Input はスキーマで検証できる入力を表す。
// フィールドパス（JSONキー）から値への対応を返す。
type Input interface {
	Fields() map[string]string
}

// Errors はフィールドパスから単一のエラーメッセージへの対応。
// キーが存在しないフィールドは検証を通過している。
type Errors map[string]string

// Valid はエラーが1件もない場合にtrueを返す。
func (e Errors) Valid() bool {
	return len(e) == 0
}

// Has は指定フィールドにエラーがある場合にtrueを返す。
func (e Errors) Has(field string) bool {
	_, ok := e[field]
	return ok
}

// FieldPaths はエラーのあるフィールドパスを昇順で返す。ログ出力用。
func (e Errors) FieldPaths() []string {
	paths := make([]string, 0, len(e))
	for p := range e {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// FieldRules は1フィールドに対する宣言順のルール列。
// ルールは制約の弱い順（required → 長さ → パターン）に宣言する。
type FieldRules struct {
	Field string
	Rules []Rule
}

// CrossFieldRule はフィールド間の整合性ルール。
// Field（確認用フィールド）にエラーを付与する。
type CrossFieldRule struct {
	Field string
	Rule  Rule
}

// Schema はフォーム1つ分の検証定義。
type Schema struct {
	Name   string
	Fields []FieldRules
	Cross  []CrossFieldRule
}

// Validate は入力をスキーマで検証する。
//
// 全フィールドのルールを評価し（フィールド間で打ち切らない）、
// 各フィールドでは最初に違反したルールのメッセージのみを採用する。
// フィールド間ルールは最後に評価し、対象フィールドと参照先フィールドが
// どちらも自身のルールを通過している場合のみ実行する。
func Validate(schema Schema, input Input) Errors {
	var fields map[string]string
	if input != nil {
		fields = input.Fields()
	}
	if fields == nil {
		fields = map[string]string{}
	}

	errs := Errors{}

	for _, fr := range schema.Fields {
		value := fields[fr.Field]
		for _, rule := range fr.Rules {
			if !rule.passes(value, fields) {
				errs[fr.Field] = rule.Message
				break
			}
		}
	}

	for _, cr := range schema.Cross {
		if errs.Has(cr.Field) || errs.Has(cr.Rule.Field) {
			continue
		}
		if !cr.Rule.passes(fields[cr.Field], fields) {
			errs[cr.Field] = cr.Rule.Message
		}
	}

	return errs
}
