package auth

import "errors"

// Authentication error definitions
var (
	// ErrInvalidToken indicates the token is malformed, has an invalid
	// signature, or fails validation for reasons other than expiry.
	ErrInvalidToken = errors.New("invalid token")

	// ErrExpiredToken indicates the token has expired.
	ErrExpiredToken = errors.New("token expired")

	// ErrTokenNotYetValid indicates the token's nbf claim is in the future
	// beyond the allowed clock skew.
	ErrTokenNotYetValid = errors.New("token not yet valid")

	// ErrMissingToken indicates no token was provided where one is required.
	ErrMissingToken = errors.New("missing token")

	// ErrInvalidRefreshToken indicates the refresh token is malformed or
	// fails validation.
	ErrInvalidRefreshToken = errors.New("invalid refresh token")

	// ErrExpiredRefreshToken indicates the refresh token has expired.
	ErrExpiredRefreshToken = errors.New("refresh token expired")

	// ErrWrongTokenType indicates a token of one type was presented where
	// the other was required (an access token offered for refresh, or a
	// refresh token offered for access).
	ErrWrongTokenType = errors.New("wrong token type")

	// ErrInvalidCredentials indicates the login ID or password is wrong.
	// Deliberately does not say which.
	ErrInvalidCredentials = errors.New("invalid credentials")
)
