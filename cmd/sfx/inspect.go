package main

import (
	"archive/tar"
	"fmt"
	"os"

	"github.com/davecgh/go-spew/spew"
	sfx "github.com/grandchild/sfx_installer"
	"github.com/spf13/cobra"
)

// inspectCmd represents the inspect command
var inspectCmd = &cobra.Command{
	Use:   "inspect <artifact>",
	Short: "Show the build manifest and payload of a self-extractor",
	Long: `Read the build manifest written next to a self-extractor by "build --manifest",
check it against the file, and list the members of the payload.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		artifact := args[0]
		manifest, err := sfx.ReadManifest(sfx.ManifestPath(artifact))
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if dump, _ := cmd.Flags().GetBool("dump"); dump {
			spew.Fdump(out, manifest)
		}
		info, err := os.Stat(artifact)
		if err != nil {
			return err
		}
		if info.Size() != manifest.Size {
			return fmt.Errorf("%s is %d bytes, manifest says %d", artifact, info.Size(), manifest.Size)
		}
		fmt.Fprintf(out, "stub:    %d bytes (passes: %v)\n", manifest.StubSize, manifest.Passes)
		fmt.Fprintf(out, "payload: %d bytes, %s\n", manifest.ArchiveSize, manifest.Compression)
		fmt.Fprintf(out, "digest:  %s\n", manifest.Digest)
		entries, err := sfx.ReadPayload(artifact, manifest.StubSize)
		if err != nil {
			return err
		}
		for _, e := range entries {
			switch e.Typeflag {
			case tar.TypeSymlink:
				fmt.Fprintf(out, "%s -> %s\n", e.Name, e.Linkname)
			case tar.TypeReg:
				fmt.Fprintf(out, "%s %o %d\n", e.Name, e.Mode, e.Size)
			default:
				fmt.Fprintln(out, e.Name)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(inspectCmd)
	inspectCmd.Flags().Bool("dump", false, "dump the raw manifest")
}
