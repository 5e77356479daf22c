package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/philipparndt/topsurf/pkg/meshio"
)

var (
	convBinary bool
	convMerge  bool
)

var convertCmd = &cobra.Command{
	Use:   "convert [input] [output]",
	Short: "Convert between STL and OBJ",
	Long: `Read an STL or OBJ file and write it in the format given by the output
extension. Vertices are deduplicated on load. STL output is merged into a
single solid unless --merge=false, which writes <basename>_<i>.stl per mesh.`,
	Args: cobra.ExactArgs(2),
	RunE: runConvert,
}

func init() {
	rootCmd.AddCommand(convertCmd)

	convertCmd.Flags().BoolVar(&convBinary, "binary", false, "Write binary STL")
	convertCmd.Flags().BoolVar(&convMerge, "merge", true, "Write all meshes into one STL file")
}

func runConvert(cmd *cobra.Command, args []string) error {
	if cmd.Flags().Changed("binary") {
		cfg.Export.Binary = convBinary
	}
	if cmd.Flags().Changed("merge") {
		cfg.Export.Merge = convMerge
	}

	m, err := loadModel(args[0])
	if err != nil {
		return err
	}

	written, err := meshio.Export(args[1], m.Meshes, exportOptions()...)
	if err != nil {
		return err
	}
	for _, path := range written {
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
	}
	return nil
}
