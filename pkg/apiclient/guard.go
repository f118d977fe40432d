package apiclient

// LoginRoute 是未登录访问受保护路由时的跳转目标。
const LoginRoute = "login"

// Route 描述一个需要（或不需要）登录的入口，例如一个命令。
type Route struct {
	Name          string
	RequiresAuth  bool
	RequiresAdmin bool
}

// Guard 返回应跳转到的路由，空字符串表示放行。
// 只看本地会话，令牌是否仍有效由服务端 401 决定。
func Guard(route Route, session Session) string {
	if !route.RequiresAuth && !route.RequiresAdmin {
		return ""
	}
	if session == nil || session.Token() == "" {
		return LoginRoute
	}
	if route.RequiresAdmin && !session.User().IsAdmin() {
		return LoginRoute
	}
	return ""
}
