// Package jwt issues and verifies organization-scoped API tokens.
//
// Tokens are HS256-signed and carry an organization_id claim. The middleware
// verifies the bearer token and stores the claims in the request context;
// handlers then call Claims.Authorize with the organization addressed by the
// request.
//
//	svc, err := jwt.New(cfg.Secret, jwt.WithIssuer("billing"))
//	if err != nil {
//		return err
//	}
//	r.Use(jwt.Middleware(svc))
//
//	claims, _ := jwt.GetClaims(r.Context())
//	if err := claims.Authorize(orgID); err != nil {
//		// 403
//	}
package jwt
