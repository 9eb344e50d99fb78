// Package common contains shared constants, sentinel errors and small
// helpers used across the movie API components.
package common

// AuthorizationHeader carries the access token as "Bearer <token>".
const AuthorizationHeader = "Authorization"

// BearerPrefix precedes the access token in AuthorizationHeader.
const BearerPrefix = "Bearer "
