package cmd

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"

	"github.com/spf13/pflag"

	"github.com/go-drift/vui/pkg/vnode"
	"github.com/go-drift/vui/pkg/widgets"
	"github.com/go-drift/vui/pkg/wire"
)

func init() {
	RegisterCommand(&Command{
		Name:  "inspect",
		Short: "Print the contents of a payload file",
		Long: `Decode a payload file and print its frame header and tree.

The tree is decoded against this build's widget vocabulary, exactly as a
running app would. With --diag the CBOR body is also printed in
diagnostic notation, which works even when decoding fails.

Flags:
  --diag   Print the CBOR body in diagnostic notation`,
		Usage: "vui inspect [--diag] FILE",
		Run:   runInspect,
	})
}

func runInspect(args []string) error {
	fs := pflag.NewFlagSet("inspect", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	diag := fs.Bool("diag", false, "print CBOR diagnostic notation")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("exactly one payload file is required\n\nUsage: vui inspect [--diag] FILE")
	}

	var data []byte
	var err error
	if name := fs.Arg(0); name == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(name)
	}
	if err != nil {
		return fmt.Errorf("reading payload: %w", err)
	}

	h, _, err := wire.ReadFrame(data)
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "format:      %d\n", h.Format)
	fmt.Fprintf(stdout, "compression: %s\n", h.Compression)
	fmt.Fprintf(stdout, "length:      %d (%d on the wire)\n", h.Length, len(data))
	fmt.Fprintf(stdout, "digest:      %s\n", hex.EncodeToString(h.Digest[:]))

	if *diag {
		out, err := wire.Diagnose(data)
		if err != nil {
			return err
		}
		fmt.Fprintf(stdout, "\n%s\n", out)
	}

	tree, err := wire.Decode(data, widgets.Registry())
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "\n%s", vnode.Dump(tree))
	return nil
}
