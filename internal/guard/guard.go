// Package guard は保護されたビューへのアクセス可否を判定する。
//
// 判定は明示的に渡された認証状態のスナップショットだけに依存する純粋関数で、
// グローバルな認証ストアは参照しない。
package guard

import (
	"github.com/hitoshi/bookstore/internal/model"
	"github.com/hitoshi/bookstore/internal/role"
)

// リダイレクト先のパス。
const (
	LoginPath = "/login"
	HomePath  = "/"
)

// Outcome は判定結果の種別を表す。
type Outcome string

const (
	// OutcomeLoading は認証状態の確認中でローディング表示を行うことを示す（非終端）。
	OutcomeLoading Outcome = "loading"
	// OutcomeRedirectLogin は未認証のためログイン画面へ置換遷移することを示す。
	OutcomeRedirectLogin Outcome = "redirect_login"
	// OutcomeRedirectHome はロール不一致のためホームへ置換遷移することを示す。
	OutcomeRedirectHome Outcome = "redirect_home"
	// OutcomeRender は保護されたコンテンツを表示することを示す。
	OutcomeRender Outcome = "render"
)

// AuthState は判定時点の認証状態のスナップショット。
type AuthState struct {
	IsLoading bool
	User      *model.User
}

// Decision は判定結果。RedirectToはリダイレクト系の結果でのみ設定される。
// Replaceはリダイレクトが履歴を積まない置換遷移であることを示す。
type Decision struct {
	Outcome    Outcome
	RedirectTo string
	Replace    bool
}

// Redirects はリダイレクト系の結果であればtrueを返す。
func (d Decision) Redirects() bool {
	return d.RedirectTo != ""
}

// Decide は認証状態と要求ロールから表示・遷移を判定する。
//
//	ローディング中             → OutcomeLoading
//	ユーザーなし               → /login へ置換遷移
//	要求ロールなし or 一致     → OutcomeRender
//	要求ロールあり and 不一致  → / へ置換遷移
//
// requiredRoleが空の場合は認証済みであれば表示する。
// ロールの比較は保存されている値との完全一致で行う。
func Decide(state AuthState, requiredRole role.Role) Decision {
	if state.IsLoading {
		return Decision{Outcome: OutcomeLoading}
	}

	if state.User == nil {
		return Decision{Outcome: OutcomeRedirectLogin, RedirectTo: LoginPath, Replace: true}
	}

	if requiredRole != "" && state.User.Role != string(requiredRole) {
		return Decision{Outcome: OutcomeRedirectHome, RedirectTo: HomePath, Replace: true}
	}

	return Decision{Outcome: OutcomeRender}
}
