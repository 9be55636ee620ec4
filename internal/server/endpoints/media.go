package endpoints

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/papertree/internal/api"
	"github.com/jackzampolin/papertree/internal/document"
	"github.com/jackzampolin/papertree/internal/media"
	"github.com/jackzampolin/papertree/internal/schema"
	"github.com/jackzampolin/papertree/internal/svcctx"
)

const maxRequestBody = 1 << 20

// GetMediaEndpoint handles GET /api/media/{kind}/{number}.
type GetMediaEndpoint struct{}

func (e *GetMediaEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/api/media/{kind}/{number}", e.handler
}

func (e *GetMediaEndpoint) RequiresInit() bool { return true }

func (e *GetMediaEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	kind, ok := media.ParseKind(r.PathValue("kind"))
	if !ok {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown media kind %q", r.PathValue("kind")))
		return
	}
	number, err := strconv.Atoi(r.PathValue("number"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid media number")
		return
	}

	var asset media.Asset
	if err := viewDocument(r, func(d *document.Document) error {
		asset, err = d.LookupMedia(kind, number)
		return err
	}); err != nil {
		writeDocError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, asset)
}

func (e *GetMediaEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "media <kind> <number>",
		Short: "Look up a media asset, e.g. 'media table 3'",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp media.Asset
			if err := client.Get(cmd.Context(), "/api/media/"+args[0]+"/"+args[1], &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
}

// InsertMediaRequest is the request body for attaching a user asset.
type InsertMediaRequest struct {
	Kind        string `json:"kind"`
	Ref         string `json:"ref"`
	Description string `json:"description,omitempty"`
}

// InsertMediaEndpoint handles POST /api/nodes/{id}/media.
type InsertMediaEndpoint struct{}

func (e *InsertMediaEndpoint) Route() (string, string, http.HandlerFunc) {
	return "POST", "/api/nodes/{id}/media", e.handler
}

func (e *InsertMediaEndpoint) RequiresInit() bool { return true }

func (e *InsertMediaEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	id, err := nodeID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	raw, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBody))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := schema.Validate(schema.MediaInsert, raw); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	var req InsertMediaRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	kind, ok := media.ParseKind(req.Kind)
	if !ok {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown media kind %q", req.Kind))
		return
	}

	var asset media.Asset
	if err := updateDocument(r, func(d *document.Document) error {
		asset, err = d.InsertMedia(id, kind, req.Ref, req.Description)
		return err
	}); err != nil {
		writeDocError(w, err)
		return
	}

	svcctx.LoggerFrom(r.Context()).Info("media inserted", "label", asset.Label, "node", id, "ref", asset.Ref)
	writeJSON(w, http.StatusCreated, asset)
}

func (e *InsertMediaEndpoint) Command(getServerURL func() string) *cobra.Command {
	var req InsertMediaRequest
	cmd := &cobra.Command{
		Use:   "insert-media <node_id>",
		Short: "Attach a user-supplied media asset to an outline node",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if req.Ref == "" {
				return fmt.Errorf("--ref is required")
			}
			client := api.NewClient(getServerURL())
			var resp media.Asset
			if err := client.Post(cmd.Context(), "/api/nodes/"+args[0]+"/media", req, &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
	cmd.Flags().StringVar(&req.Kind, "kind", "Figure", "Media kind (Figure, Table, List, Algorithm, Other)")
	cmd.Flags().StringVar(&req.Ref, "ref", "", "Asset reference, e.g. an image path (required)")
	cmd.Flags().StringVar(&req.Description, "description", "", "Asset description")
	return cmd
}

// SetMediaEnabledRequest is the request body for toggling an asset.
type SetMediaEnabledRequest struct {
	Enabled *bool `json:"enabled"`
}

// SetMediaEnabledEndpoint handles PATCH /api/media/{label}.
type SetMediaEnabledEndpoint struct{}

func (e *SetMediaEnabledEndpoint) Route() (string, string, http.HandlerFunc) {
	return "PATCH", "/api/media/{label}", e.handler
}

func (e *SetMediaEnabledEndpoint) RequiresInit() bool { return true }

func (e *SetMediaEnabledEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	var req SetMediaEnabledRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxRequestBody)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Enabled == nil {
		writeError(w, http.StatusBadRequest, "enabled is required")
		return
	}

	label := r.PathValue("label")
	var asset media.Asset
	if err := updateDocument(r, func(d *document.Document) error {
		var err error
		asset, err = d.SetMediaEnabled(label, *req.Enabled)
		return err
	}); err != nil {
		writeDocError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, asset)
}

func (e *SetMediaEnabledEndpoint) Command(getServerURL func() string) *cobra.Command {
	var disable bool
	cmd := &cobra.Command{
		Use:   "enable-media <label>",
		Short: "Enable or disable a media asset, e.g. 'enable-media Figure2 --disable'",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			enabled := !disable
			client := api.NewClient(getServerURL())
			var resp media.Asset
			if err := client.Patch(cmd.Context(), "/api/media/"+args[0], SetMediaEnabledRequest{Enabled: &enabled}, &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
	cmd.Flags().BoolVar(&disable, "disable", false, "Disable instead of enable")
	return cmd
}
