// Show command for the atlas CLI.
package cli

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/terrapatch/pkg/patch"
)

func newShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <patch-id>",
		Short: "Show the contents of a stored patch",
		Args:  cobra.ExactArgs(1),
		RunE:  runShow,
	}
}

// showFeature is one line of the feature inventory.
type showFeature struct {
	Type  string `json:"type"`
	Name  string `json:"name"`
	Kind  string `json:"kind"`
	Shape []int  `json:"shape,omitempty"`
	Count int    `json:"count,omitempty"`
}

// showPatch is the JSON projection of a stored patch.
type showPatch struct {
	PatchID    string         `json:"patch_id"`
	BBox       string         `json:"bbox,omitempty"`
	Timestamps []string       `json:"timestamps,omitempty"`
	Features   []showFeature  `json:"features"`
	Meta       map[string]any `json:"meta,omitempty"`
}

func runShow(cmd *cobra.Command, args []string) error {
	patchID := args[0]

	store, err := attachStore()
	if err != nil {
		return err
	}
	defer store.Detach()

	p, err := store.Load(patchID, patch.SelectAll())
	if err != nil {
		return fmt.Errorf("load patch: %w", err)
	}

	view := buildShowPatch(patchID, p)
	if flags.jsonMode {
		return printJSON(cmd, view)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Patch: %s\n", view.PatchID)
	if view.BBox != "" {
		fmt.Fprintf(out, "BBox: %s\n", view.BBox)
	}
	if len(view.Timestamps) > 0 {
		fmt.Fprintf(out, "Timestamps: %d (%s .. %s)\n",
			len(view.Timestamps), view.Timestamps[0], view.Timestamps[len(view.Timestamps)-1])
	}
	if len(view.Features) == 0 {
		fmt.Fprintln(out, "Features: none")
	} else {
		fmt.Fprintln(out, "Features:")
		for _, f := range view.Features {
			if f.Kind == "vector" {
				fmt.Fprintf(out, "  %s/%s (%d geometries)\n", f.Type, f.Name, f.Count)
				continue
			}
			fmt.Fprintf(out, "  %s/%s %s\n", f.Type, f.Name, formatShape(f.Shape))
		}
	}
	if len(view.Meta) > 0 {
		fmt.Fprintln(out, "Meta:")
		keys := make([]string, 0, len(view.Meta))
		for k := range view.Meta {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(out, "  %s: %v\n", k, view.Meta[k])
		}
	}
	return nil
}

func buildShowPatch(patchID string, p *patch.Patch) showPatch {
	view := showPatch{
		PatchID:  patchID,
		Features: []showFeature{},
	}

	if bbox := p.BBox(); bbox != nil {
		view.BBox = bbox.String()
	}
	for _, ts := range p.Timestamps() {
		view.Timestamps = append(view.Timestamps, ts.Format(time.RFC3339))
	}
	for _, ref := range p.List() {
		payload, err := p.Get(ref.Type, ref.Name)
		if err != nil {
			continue
		}
		f := showFeature{Type: ref.Type.String(), Name: ref.Name}
		switch v := payload.(type) {
		case *patch.Array:
			f.Kind = "array"
			f.Shape = v.Shape()
		case *patch.VectorCollection:
			f.Kind = "vector"
			f.Count = v.Len()
		}
		view.Features = append(view.Features, f)
	}
	if meta := p.Meta(); len(meta) > 0 {
		view.Meta = meta
	}
	return view
}

func formatShape(shape []int) string {
	parts := make([]string, len(shape))
	for i, d := range shape {
		parts[i] = fmt.Sprintf("%d", d)
	}
	return "(" + strings.Join(parts, ",") + ")"
}
