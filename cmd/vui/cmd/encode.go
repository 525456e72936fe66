package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"github.com/go-drift/vui/internal/todo"
	"github.com/go-drift/vui/pkg/widgets"
	"github.com/go-drift/vui/pkg/wire"
)

func init() {
	RegisterCommand(&Command{
		Name:  "encode",
		Short: "Write a todo tree payload to a file",
		Long: `Build the todo view for the given items and write the encoded payload.

The file can be pushed later with "vui push --file" or examined with
"vui inspect".

Flags:
  --out FILE           Output file (required; "-" for stdout)
  --compression NAME   none, zstd or lz4
  --item TEXT          Todo item (repeatable)
  --text TEXT          Text field contents`,
		Usage: "vui encode --out FILE [flags]",
		Run:   runEncode,
	})
}

func runEncode(args []string) error {
	fs := pflag.NewFlagSet("encode", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	out := fs.StringP("out", "o", "", "output file")
	compression := fs.String("compression", "zstd", "none, zstd or lz4")
	seed := addSeedFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *out == "" {
		return fmt.Errorf("--out is required\n\nUsage: vui encode --out FILE [flags]")
	}

	c, err := parseCompression(*compression)
	if err != nil {
		return err
	}
	tree, err := todo.Build(seed.model())
	if err != nil {
		return err
	}
	data, err := wire.Encode(tree, wire.Options{Vocabulary: widgets.VocabularyVersion, Compression: c})
	if err != nil {
		return err
	}

	if *out == "-" {
		_, err = stdout.Write(data)
		return err
	}
	if err := os.WriteFile(*out, data, 0o644); err != nil {
		return fmt.Errorf("writing payload: %w", err)
	}
	fmt.Fprintf(stderr, "wrote %s (%d bytes, %d nodes)\n", *out, len(data), tree.Len())
	return nil
}
