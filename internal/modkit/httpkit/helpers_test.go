package httpkit_test

import (
	"triagebot/internal/modkit/httpkit"
	phttp "triagebot/internal/platform/net/http"

	"github.com/go-chi/chi/v5"
)

func newRouter() httpkit.Router { return phttp.AdaptChi(chi.NewRouter()) }
