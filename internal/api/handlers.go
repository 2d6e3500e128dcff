package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/dgnsrekt/chartbot/internal/reply"
	"github.com/dgnsrekt/chartbot/internal/snapshot"
)

func registerStatusHandlers(api huma.API, svc Service) {
	type healthOutput struct {
		Body Health
	}
	huma.Register(api, huma.Operation{OperationID: "health", Method: http.MethodGet, Path: "/api/v1/health", Summary: "Bot health", Tags: []string{"Status"}},
		func(ctx context.Context, input *struct{}) (*healthOutput, error) {
			return &healthOutput{Body: svc.Health(ctx)}, nil
		})
}

func registerTokenHandlers(api huma.API, svc Service) {
	type previewOutput struct {
		Body reply.Payload
	}
	huma.Register(api, huma.Operation{OperationID: "preview-token", Method: http.MethodGet, Path: "/api/v1/tokens/{address}", Summary: "Preview the token card", Description: "Looks the token up on DEX Screener and renders the card the !token command would send, without capturing a chart.", Tags: []string{"Tokens"}},
		func(ctx context.Context, input *struct {
			Address string `path:"address" doc:"Token contract address"`
		}) (*previewOutput, error) {
			p, err := svc.PreviewToken(ctx, input.Address)
			if err != nil {
				return nil, mapErr(err)
			}
			return &previewOutput{Body: p}, nil
		})
}

func registerSnapshotHandlers(api huma.API, svc Service) {
	type captureOutput struct {
		Body struct {
			Snapshot snapshot.Meta `json:"snapshot"`
			URL      string        `json:"url"`
		}
	}
	huma.Register(api, huma.Operation{OperationID: "capture-chart", Method: http.MethodPost, Path: "/api/v1/charts/capture", Summary: "Capture and archive a chart page", Tags: []string{"Snapshots"}},
		func(ctx context.Context, input *struct {
			Body struct {
				URL string `json:"url" doc:"http(s) URL of the chart page" example:"https://www.dextools.io/widget-chart/en/ether/pe-light/0x0000000000000000000000000000000000000000"`
			}
		}) (*captureOutput, error) {
			meta, err := svc.CaptureChart(ctx, input.Body.URL)
			if err != nil {
				return nil, mapErr(err)
			}
			out := &captureOutput{}
			out.Body.Snapshot = meta
			out.Body.URL = "/api/v1/snapshots/" + meta.ID + "/image"
			return out, nil
		})

	type listSnapshotsOutput struct {
		Body struct {
			Snapshots []snapshot.Meta `json:"snapshots"`
		}
	}
	huma.Register(api, huma.Operation{OperationID: "list-snapshots", Method: http.MethodGet, Path: "/api/v1/snapshots", Summary: "List snapshots", Tags: []string{"Snapshots"}},
		func(ctx context.Context, input *struct{}) (*listSnapshotsOutput, error) {
			metas, err := svc.ListSnapshots(ctx)
			if err != nil {
				return nil, mapErr(err)
			}
			out := &listSnapshotsOutput{}
			out.Body.Snapshots = metas
			if out.Body.Snapshots == nil {
				out.Body.Snapshots = []snapshot.Meta{}
			}
			return out, nil
		})

	type snapshotIDInput struct {
		SnapshotID string `path:"snapshot_id"`
	}
	type getSnapshotOutput struct {
		Body snapshot.Meta
	}
	huma.Register(api, huma.Operation{OperationID: "get-snapshot-metadata", Method: http.MethodGet, Path: "/api/v1/snapshots/{snapshot_id}/metadata", Summary: "Get snapshot metadata", Tags: []string{"Snapshots"}},
		func(ctx context.Context, input *snapshotIDInput) (*getSnapshotOutput, error) {
			meta, err := svc.GetSnapshot(ctx, input.SnapshotID)
			if err != nil {
				return nil, mapErr(err)
			}
			return &getSnapshotOutput{Body: meta}, nil
		})

	type imageOutput struct {
		ContentType string `header:"Content-Type"`
		Body        []byte
	}
	huma.Register(api, huma.Operation{OperationID: "get-snapshot-image", Method: http.MethodGet, Path: "/api/v1/snapshots/{snapshot_id}/image", Summary: "Download snapshot image", Tags: []string{"Snapshots"}},
		func(ctx context.Context, input *snapshotIDInput) (*imageOutput, error) {
			data, format, err := svc.ReadSnapshotImage(ctx, input.SnapshotID)
			if err != nil {
				return nil, mapErr(err)
			}
			return &imageOutput{ContentType: "image/" + format, Body: data}, nil
		})

	type deleteSnapshotOutput struct {
		Body struct {
			Status string `json:"status"`
		}
	}
	huma.Register(api, huma.Operation{OperationID: "delete-snapshot", Method: http.MethodDelete, Path: "/api/v1/snapshots/{snapshot_id}", Summary: "Delete snapshot", Tags: []string{"Snapshots"}},
		func(ctx context.Context, input *snapshotIDInput) (*deleteSnapshotOutput, error) {
			if err := svc.DeleteSnapshot(ctx, input.SnapshotID); err != nil {
				return nil, mapErr(err)
			}
			out := &deleteSnapshotOutput{}
			out.Body.Status = "deleted"
			return out, nil
		})
}
