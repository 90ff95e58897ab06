package usercontext

// Session and Locals keys shared between controllers and middlewares.
// KeyPlan caches the billing plan so read paths avoid a subscription lookup.
const (
	AuthKey          = "authenticated"
	KeyUserID        = "user_id"
	KeyUsername      = "username"
	KeyIsAdmin       = "isAdmin"
	KeyPlan          = "user_plan"
	KeyFromProtected = "from_protected"
)
