// Package role はユーザーのロール属性から権限フラグと表示用メタデータを導出する。
// すべての関数は副作用を持たず、未知の値に対しても安全なデフォルトを返す。
package role

import (
	"strings"

	"github.com/hitoshi/bookstore/internal/model"
)

// Role はユーザーのロールを表す。
type Role string

const (
	User  Role = "user"
	Staff Role = "staff"
	Admin Role = "admin"
)

// Normalize はロール文字列を小文字化・トリムして比較可能な形にする。
func Normalize(s string) Role {
	return Role(strings.ToLower(strings.TrimSpace(s)))
}

// IsUser は一般ユーザーであればtrueを返す。
func IsUser(r string) bool { return Normalize(r) == User }

// IsStaff はスタッフであればtrueを返す。
func IsStaff(r string) bool { return Normalize(r) == Staff }

// IsAdmin は管理者であればtrueを返す。
func IsAdmin(r string) bool { return Normalize(r) == Admin }

// IsStaffOrAdmin はスタッフまたは管理者であればtrueを返す。
func IsStaffOrAdmin(r string) bool {
	n := Normalize(r)
	return n == Staff || n == Admin
}

var displayNames = map[Role]string{
	User:  "User",
	Staff: "Staff",
	Admin: "Admin",
}

var badgeClasses = map[Role]string{
	User:  "badge-user",
	Staff: "badge-staff",
	Admin: "badge-admin",
}

// BadgeDefault は未知のロールに割り当てるバッジクラス。
const BadgeDefault = "badge-default"

// DisplayName はロールの表示名を返す。未知のロールは "Unknown"。
func DisplayName(r string) string {
	if name, ok := displayNames[Normalize(r)]; ok {
		return name
	}
	return "Unknown"
}

// BadgeClass はロールのバッジ用スタイルクラスを返す。
func BadgeClass(r string) string {
	if class, ok := badgeClasses[Normalize(r)]; ok {
		return class
	}
	return BadgeDefault
}

// Status はユーザーのロール判定結果をまとめたもの。
// Roleはユーザーまたはロールが存在しない場合nil（JSONではnull）になる。
type Status struct {
	IsUser         bool    `json:"isUser"`
	IsStaff        bool    `json:"isStaff"`
	IsAdmin        bool    `json:"isAdmin"`
	IsStaffOrAdmin bool    `json:"isStaffOrAdmin"`
	Role           *string `json:"role"`
}

// Check はユーザーのロール判定結果を返す。
// userがnil、またはロールが空の場合は全フラグfalse・Role nilを返す。
func Check(u *model.User) Status {
	if u == nil || strings.TrimSpace(u.Role) == "" {
		return Status{}
	}

	n := string(Normalize(u.Role))
	return Status{
		IsUser:         IsUser(n),
		IsStaff:        IsStaff(n),
		IsAdmin:        IsAdmin(n),
		IsStaffOrAdmin: IsStaffOrAdmin(n),
		Role:           &n,
	}
}
