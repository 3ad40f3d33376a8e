// @title           room-reviews API
// @version         1.0
// @description     Room listings and reviews. Authenticate with a bearer token from `room-reviews token issue`.
// @BasePath        /
// @securityDefinitions.apikey BearerToken
// @in              header
// @name            Authorization
// @description     Type "Bearer" followed by a space and your token.
package api
