package main

import (
	"crypto/subtle"
	"net/http"
)

// basicAuthMiddleware optionally protects the lookup API: records
// carry customer contact data, so exposure beyond the local network
// should require credentials.
type basicAuthMiddleware struct {
	handler  http.Handler
	user     []byte
	password []byte
}

func (b *basicAuthMiddleware) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	user, pass, _ := req.BasicAuth()

	userOk := subtle.ConstantTimeCompare(b.user, []byte(user))
	passOk := subtle.ConstantTimeCompare(b.password, []byte(pass))

	if userOk+passOk == 2 {
		b.handler.ServeHTTP(w, req)

		return
	}

	w.Header().Set("WWW-Authenticate", `Basic realm="ipcensus"`)
	http.Error(w, "Authentication is required", http.StatusUnauthorized)
}
