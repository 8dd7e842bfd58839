package handler

import (
	"net/http"

	"github.com/hitoshi/bookstore/internal/role"
)

// MenuItem は管理画面サイドバーの1項目。
type MenuItem struct {
	Label string `json:"label"`
	Path  string `json:"path"`
	Icon  string `json:"icon"`

	allow func(userRole string) bool
}

// sidebarMenu はサイドバーの全項目。表示可否はロールで決まる。
var sidebarMenu = []MenuItem{
	{Label: "Dashboard", Path: "/admin", Icon: "home", allow: role.IsStaffOrAdmin},
	{Label: "Books", Path: "/admin/books", Icon: "book", allow: role.IsStaffOrAdmin},
	{Label: "Categories", Path: "/admin/categories", Icon: "folder", allow: role.IsStaffOrAdmin},
	{Label: "Orders", Path: "/admin/orders", Icon: "cart", allow: role.IsStaffOrAdmin},
	{Label: "Users", Path: "/admin/users", Icon: "users", allow: role.IsAdmin},
	{Label: "Settings", Path: "/admin/settings", Icon: "settings", allow: role.IsAdmin},
}

// MenuFor はロールに表示するサイドバー項目を返す。
func MenuFor(userRole string) []MenuItem {
	items := []MenuItem{}
	for _, item := range sidebarMenu {
		if item.allow(userRole) {
			items = append(items, item)
		}
	}
	return items
}

type dashboardResponse struct {
	User userResponse `json:"user"`
	Menu []MenuItem   `json:"menu"`
}

// DashboardHandler は管理画面の外枠（ロール情報とサイドバー）を返す。
// スタッフまたは管理者のガードの内側に配置する。
// GET /api/admin/dashboard
func DashboardHandler(w http.ResponseWriter, r *http.Request) {
	user := requireUser(w, r)
	if user == nil {
		return
	}

	writeJSON(w, http.StatusOK, dashboardResponse{
		User: toUserResponse(user),
		Menu: MenuFor(user.Role),
	})
}
