// Package security はアプリケーションのセキュリティ機能を提供する。
//
// Sanitizer はユーザー入力とカタログのHTMLをサニタイズする。
// bluemondayの許可リストベースのポリシーを用い、
// 氏名や検索語はタグをすべて除去したプレーンテキストに、
// カテゴリ説明は安全なタグのみを残したHTMLにする。
package security

import (
	"html"
	"net/url"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// TextSanitizer はプレーンテキスト入力のサニタイズ機能のインターフェース。
type TextSanitizer interface {
	// PlainText はHTMLタグを除去し、前後の空白を取り除いたテキストを返す。
	PlainText(s string) string
}

// HTMLSanitizer はリッチテキストのサニタイズ機能のインターフェース。
type HTMLSanitizer interface {
	// RichText は許可タグ（p, br, ul, ol, li, strong, em, a）のみを残したHTMLを返す。
	// aタグのhrefはhttpsのみ許可し、target="_blank"とrel="noopener noreferrer"を付与する。
	RichText(s string) string
}

// Sanitizer はTextSanitizerとHTMLSanitizerの実装。
// bluemondayのポリシーは生成後に変更しないため並行利用に安全。
type Sanitizer struct {
	strict *bluemonday.Policy
	rich   *bluemonday.Policy
}

// NewSanitizer はSanitizerを生成する。
func NewSanitizer() *Sanitizer {
	rich := bluemonday.NewPolicy()
	rich.AllowElements(
		"p", "br", "ul", "ol", "li",
		"strong", "em",
	)
	rich.AllowAttrs("href").OnElements("a")
	rich.AllowRelativeURLs(false)
	rich.AddTargetBlankToFullyQualifiedLinks(true)
	rich.RequireNoReferrerOnLinks(true)
	rich.AllowURLSchemeWithCustomPolicy("https", func(u *url.URL) bool {
		return true
	})

	return &Sanitizer{
		strict: bluemonday.StrictPolicy(),
		rich:   rich,
	}
}

// PlainText はHTMLタグを除去したテキストを返す。
// StrictPolicyがエスケープした実体参照は元の文字に戻す。
func (s *Sanitizer) PlainText(in string) string {
	if in == "" {
		return ""
	}
	return strings.TrimSpace(html.UnescapeString(s.strict.Sanitize(in)))
}

// RichText は安全なタグのみを残したHTMLを返す。
func (s *Sanitizer) RichText(in string) string {
	return s.rich.Sanitize(in)
}

var (
	_ TextSanitizer = (*Sanitizer)(nil)
	_ HTMLSanitizer = (*Sanitizer)(nil)
)
