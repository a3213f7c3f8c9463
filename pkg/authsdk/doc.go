/*
Package authsdk is a Go client for the authentication service.

# Overview

SDKClient covers the public endpoints: signup, signin, password reset,
email verification and the health probes. Signin returns a Session that
carries the access token and refreshes it through the refreshToken cookie,
which the client keeps in its cookie jar.

	client := authsdk.NewSDKClient("https://auth.example.com")

	if err := client.Signup(ctx, "alice@example.com", "s3cret"); err != nil {
		return err
	}

	session, err := client.Signin(ctx, "alice@example.com", "s3cret")
	if err != nil {
		return err
	}

	me, err := session.Protected(ctx)

# Automatic Token Refresh

Access tokens live for 15 minutes. Session methods check the expiry (with a
30 second buffer) and call /auth/refresh_token first when needed. The
refresh token itself never leaves the cookie jar.

# Error Handling

Non-2xx responses are returned as *APIError, carrying the HTTP status and
the {type, message} envelope:

	_, err := client.Signin(ctx, email, "wrong")
	var apiErr *authsdk.APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized {
		// bad password
	}

# Thread Safety

SDKClient and Session are safe for concurrent use. Two goroutines racing to
refresh the same session will see one of them fail with 403, since a
refresh token can only be rotated once.
*/
package authsdk
