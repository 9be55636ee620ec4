package endpoints

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/papertree/internal/api"
	"github.com/jackzampolin/papertree/internal/document"
	"github.com/jackzampolin/papertree/internal/outline"
)

func nodeID(r *http.Request) (outline.NodeID, error) {
	raw := r.PathValue("id")
	id, err := strconv.Atoi(raw)
	if err != nil || id < 0 {
		return 0, fmt.Errorf("invalid node id %q", raw)
	}
	return outline.NodeID(id), nil
}

// ChildSummary is one entry in a children listing.
type ChildSummary struct {
	ID       outline.NodeID   `json:"id"`
	Kind     outline.NodeKind `json:"kind"`
	Name     string           `json:"name"`
	Level    int              `json:"level"`
	Pages    []int            `json:"pages,omitempty"`
	Children int              `json:"children"`
}

// ChildrenResponse lists the ordered children of a node.
type ChildrenResponse struct {
	Parent   outline.NodeID `json:"parent"`
	Children []ChildSummary `json:"children"`
}

// ChildrenEndpoint handles GET /api/nodes/{id}/children.
type ChildrenEndpoint struct{}

func (e *ChildrenEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/api/nodes/{id}/children", e.handler
}

func (e *ChildrenEndpoint) RequiresInit() bool { return true }

func (e *ChildrenEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	id, err := nodeID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	resp := ChildrenResponse{Parent: id, Children: []ChildSummary{}}
	if err := viewDocument(r, func(d *document.Document) error {
		kids, err := d.Children(id)
		if err != nil {
			return err
		}
		for _, n := range kids {
			resp.Children = append(resp.Children, ChildSummary{
				ID:       n.ID,
				Kind:     n.Kind,
				Name:     n.Name,
				Level:    n.Level,
				Pages:    n.Pages,
				Children: len(n.Children),
			})
		}
		return nil
	}); err != nil {
		writeDocError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (e *ChildrenEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "children [node_id]",
		Short: "List the children of an outline node (default: root)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := "0"
			if len(args) == 1 {
				id = args[0]
			}
			client := api.NewClient(getServerURL())
			var resp ChildrenResponse
			if err := client.Get(cmd.Context(), "/api/nodes/"+id+"/children", &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
}

// ContentEndpoint handles GET /api/nodes/{id}/content.
type ContentEndpoint struct{}

func (e *ContentEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/api/nodes/{id}/content", e.handler
}

func (e *ContentEndpoint) RequiresInit() bool { return true }

func (e *ContentEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	id, err := nodeID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var content document.Content
	if err := viewDocument(r, func(d *document.Document) error {
		content, err = d.Content(id)
		return err
	}); err != nil {
		writeDocError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, content)
}

func (e *ContentEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "content <node_id>",
		Short: "Get the text and media of an outline node",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp document.Content
			if err := client.Get(cmd.Context(), "/api/nodes/"+args[0]+"/content", &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
}
