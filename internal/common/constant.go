package common

// Cookie names carrying the session tokens.
const (
	AccessTokenCookieName  = "bu_access_token"
	RefreshTokenCookieName = "bu_refresh_token"
)

// AuthorizationHeaderName is the HTTP header that may carry a bearer access token
// for clients that do not keep cookies.
const AuthorizationHeaderName = "Authorization"

// UncategorizedCategory is assigned to books whose category was deleted.
const UncategorizedCategory = "Uncategorized"
