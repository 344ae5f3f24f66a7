package server

import (
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
)

// RequestTimeMiddleware logs the rpc tag and wall time of every request.
func RequestTimeMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		reqTime := time.Since(start)
		logrus.Infof("request time: %v: %v", r.FormValue(rpcTypeField), reqTime)
	})
}
