package main

import (
	"strconv"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/wkt"

	"github.com/mapgrind/addresser/internal/tile"
)

var tileCmd = &cobra.Command{
	Use:   "tile <lat> <lng>",
	Short: "Show the map tile covering a coordinate",
	Long:  "Prints the slippy-map tile coordinates for a lat/lng pair, the tile's bounding box, and the box as a WKT polygon.",
	Args:  cobra.ExactArgs(2),
	RunE:  runTile,
}

func init() {
	tileCmd.Flags().Int("zoom", 0, "Zoom level (defaults to the configured resolve zoom)")
	rootCmd.AddCommand(tileCmd)
}

func runTile(cmd *cobra.Command, args []string) error {
	lat, err := strconv.ParseFloat(args[0], 64)
	if err != nil {
		return eris.Wrapf(err, "tile: parse latitude %q", args[0])
	}
	lng, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		return eris.Wrapf(err, "tile: parse longitude %q", args[1])
	}

	zoom := cfg.Resolve.Zoom
	if z, _ := cmd.Flags().GetInt("zoom"); z > 0 {
		zoom = z
	}

	index := tile.NewIndex(zoom)
	coord, err := index.TileAt(lat, lng)
	if err != nil {
		return err
	}
	bbox := index.BBox(coord)

	poly := geom.NewPolygon(geom.XY).MustSetCoords([][]geom.Coord{{
		{bbox.West, bbox.South},
		{bbox.East, bbox.South},
		{bbox.East, bbox.North},
		{bbox.West, bbox.North},
		{bbox.West, bbox.South},
	}})
	wktStr, err := wkt.Marshal(poly)
	if err != nil {
		return eris.Wrap(err, "tile: encode wkt")
	}

	cmd.Printf("tile:  %s (zoom %d)\n", coord, zoom)
	cmd.Printf("bbox:  south=%f west=%f north=%f east=%f\n",
		bbox.South, bbox.West, bbox.North, bbox.East)
	cmd.Printf("wkt:   %s\n", wktStr)

	return nil
}
