package common

// AccessTokenHeaderName is the gRPC metadata key used to carry the
// session token on authenticated requests.
const AccessTokenHeaderName = "access_token"

// AuthorizationHeaderName is accepted as an alternative carrier in the
// "Bearer <token>" form.
const AuthorizationHeaderName = "authorization"
