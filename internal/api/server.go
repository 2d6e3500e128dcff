// Package api serves the local admin HTTP surface: health, token previews,
// on-demand chart captures and the snapshot archive.
package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dgnsrekt/chartbot/internal/apperr"
	"github.com/dgnsrekt/chartbot/internal/reply"
	"github.com/dgnsrekt/chartbot/internal/snapshot"
)

type Service interface {
	Health(ctx context.Context) Health
	PreviewToken(ctx context.Context, address string) (reply.Payload, error)
	CaptureChart(ctx context.Context, url string) (snapshot.Meta, error)
	ListSnapshots(ctx context.Context) ([]snapshot.Meta, error)
	GetSnapshot(ctx context.Context, id string) (snapshot.Meta, error)
	ReadSnapshotImage(ctx context.Context, id string) ([]byte, string, error)
	DeleteSnapshot(ctx context.Context, id string) error
}

// Health is the body of GET /api/v1/health.
type Health struct {
	Status    string `json:"status" example:"ok"`
	Transport string `json:"transport" example:"discord"`
	Archive   bool   `json:"archive" doc:"Whether captures are archived to disk"`
}

func NewServer(svc Service) http.Handler {
	router := chi.NewMux()
	router.Use(middleware.RequestID)
	router.Use(requestLogger)
	router.Use(middleware.Recoverer)

	cfg := huma.DefaultConfig("Chartbot Admin API", "1.0.0")
	cfg.DocsPath = ""
	api := humachi.New(router, cfg)

	router.Get("/docs", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		if _, err := w.Write([]byte(docsHTML)); err != nil {
			slog.Debug("docs response write failed", "error", err)
		}
	})

	registerStatusHandlers(api, svc)
	registerTokenHandlers(api, svc)
	registerSnapshotHandlers(api, svc)

	return router
}

func mapErr(err error) error {
	if err == nil {
		return nil
	}
	var coded *apperr.CodedError
	if errors.As(err, &coded) {
		switch coded.Code {
		case apperr.CodeUsage:
			return huma.Error400BadRequest(coded.Message)
		case apperr.CodeNotFound, apperr.CodeNoData, apperr.CodeArchiveDisabled:
			return huma.Error404NotFound(coded.Message)
		case apperr.CodeUpstream, apperr.CodeCapture, apperr.CodeDecode:
			return huma.Error502BadGateway(coded.Message)
		default:
			return huma.Error500InternalServerError(fmt.Sprintf("%s: %s", coded.Code, coded.Message))
		}
	}
	return huma.Error500InternalServerError(err.Error())
}
