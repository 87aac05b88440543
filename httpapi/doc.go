// Package httpapi exposes the phoneverify engine over HTTP.
//
//	POST /register                          {"phone": "..."}
//	POST /otp?phone=<p>[&resend=1]          {"otp": "1234"}
//	POST /set-password?phone=<p>            {"password": "...", "rePassword": "..."}
//	GET  /            banner
//	GET  /healthz     Redis ping
//	GET  /metrics     Prometheus exposition, when mounted
//
// Every failure of the three verification routes answers 400. Field
// validation failures carry {"errors": [...]}; engine failures carry
// {"message": ...} plus any echoed fields.
package httpapi
