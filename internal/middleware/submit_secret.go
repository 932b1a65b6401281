package middleware

import (
	"net/http"

	"github.com/2beens/weeklyreps/internal/telemetry/tracing"
	"github.com/2beens/weeklyreps/pkg"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/codes"
)

const SubmitSecretHeader = "X-Submit-Secret"

// SubmitSecret guards submissions with a shared secret, checked against its
// bcrypt hash. The secret is read from the X-Submit-Secret header, or from the
// "secret" form field. An empty hash disables the check.
func SubmitSecret(secretHash string) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if secretHash == "" {
				next.ServeHTTP(w, r)
				return
			}

			_, span := tracing.GlobalTracer.Start(r.Context(), "middleware.submitSecret")
			defer span.End()

			secret := r.Header.Get(SubmitSecretHeader)
			if secret == "" {
				secret = r.FormValue("secret")
			}

			if secret == "" || !pkg.CheckSecretHash(secret, secretHash) {
				log.Tracef("[submit secret] unauthorized => %s", r.URL.Path)
				http.Error(w, "no can do", http.StatusUnauthorized)
				span.SetStatus(codes.Error, "invalid-submit-secret")
				return
			}

			span.SetStatus(codes.Ok, "ok")
			next.ServeHTTP(w, r)
		})
	}
}
