// Create command for the atlas CLI.
package cli

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/terrapatch/pkg/patch"
)

var (
	createBBox       string
	createCRS        int
	createTimestamps []string
	createMeta       []string
)

func newCreateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new stored patch",
		Long: `Create builds a patch from the given flags and stores it, printing
the generated patch ID.

Example:
  atlas create
  atlas create --bbox 14.0,45.7,14.6,46.1 --crs 4326
  atlas create --timestamp 2020-03-01T00:00:00Z --meta region=alpine`,
		Args: cobra.NoArgs,
		RunE: runCreate,
	}

	cmd.Flags().StringVar(&createBBox, "bbox", "", "bounding box as min-x,min-y,max-x,max-y")
	cmd.Flags().IntVar(&createCRS, "crs", 4326, "EPSG code for the bounding box")
	cmd.Flags().StringArrayVar(&createTimestamps, "timestamp", nil, "RFC 3339 timestamp (repeatable, ascending)")
	cmd.Flags().StringArrayVar(&createMeta, "meta", nil, "metadata entry as key=value (repeatable)")

	return cmd
}

func runCreate(cmd *cobra.Command, args []string) error {
	var opts []patch.Option

	if createBBox != "" {
		bbox, err := parseBBox(createBBox, createCRS)
		if err != nil {
			return err
		}
		opts = append(opts, patch.WithBBox(bbox))
	}

	if len(createTimestamps) > 0 {
		ts, err := parseTimestamps(createTimestamps)
		if err != nil {
			return err
		}
		opts = append(opts, patch.WithTimestamps(ts))
	}

	for _, entry := range createMeta {
		key, value, ok := strings.Cut(entry, "=")
		if !ok || key == "" {
			return fmt.Errorf("invalid meta entry %q (expected key=value)", entry)
		}
		opts = append(opts, patch.WithMeta(key, value))
	}

	p, err := patch.Create(opts...)
	if err != nil {
		return fmt.Errorf("create patch: %w", err)
	}

	store, err := attachStore()
	if err != nil {
		return err
	}
	defer store.Detach()

	id, err := store.Save("", p, patch.SelectAll())
	if err != nil {
		return fmt.Errorf("save patch: %w", err)
	}
	if id == "" {
		// An entirely empty patch resolves to nothing and stores nothing.
		return fmt.Errorf("nothing to store (provide --bbox, --timestamp, or --meta)")
	}

	if flags.jsonMode {
		return printJSON(cmd, map[string]string{"patch_id": id})
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Created patch: %s\n", id)
	return nil
}

// parseBBox parses "min-x,min-y,max-x,max-y" into a bounding box.
func parseBBox(s string, crs int) (*patch.BoundingBox, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return nil, fmt.Errorf("invalid bbox %q (expected min-x,min-y,max-x,max-y)", s)
	}
	coords := make([]float64, 4)
	for i, part := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid bbox coordinate %q: %w", part, err)
		}
		coords[i] = v
	}
	return patch.NewBoundingBox(coords[0], coords[1], coords[2], coords[3], crs), nil
}

// parseTimestamps parses RFC 3339 timestamps in the order given.
func parseTimestamps(values []string) ([]time.Time, error) {
	ts := make([]time.Time, 0, len(values))
	for _, v := range values {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return nil, fmt.Errorf("invalid timestamp %q: %w", v, err)
		}
		ts = append(ts, t)
	}
	return ts, nil
}
