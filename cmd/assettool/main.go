// assettool inspects, converts and packs mesh and texture assets.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"github.com/Faultbox/midgard-assets/internal/logger"
)

// errUsage marks errors caused by bad arguments; main prints usage for them.
var errUsage = errors.New("usage")

type command struct {
	run   func(args []string, out io.Writer) error
	usage string
}

var commands = map[string]command{
	"mesh":      {cmdMesh, "mesh [-indexed] <file.obj>"},
	"normalize": {cmdNormalize, "normalize <in.obj> <out.obj>"},
	"texture":   {cmdTexture, "texture [-strict] [-trust-levels] <file.dds>"},
	"export":    {cmdExport, "export [-level n] [-size px] <file.dds> <out.webp>"},
	"list":      {cmdList, "list [-n N] <file.grf> [pattern]"},
	"extract":   {cmdExtract, "extract <file.grf> <path|pattern> [output_dir]"},
	"pack":      {cmdPack, "pack <out.grf> <dir>"},
	"check":     {cmdCheck, "check [-archive a.grf] [-dir d] [-indexed] <path>..."},
	"config":    {cmdConfig, "config [path]"},
}

var aliases = map[string]string{
	"ls": "list",
	"x":  "extract",
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	name := os.Args[1]
	if alias, ok := aliases[name]; ok {
		name = alias
	}

	switch name {
	case "help", "-h", "--help":
		printUsage()
		return
	}

	cmd, ok := commands[name]
	if !ok {
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", name)
		printUsage()
		os.Exit(1)
	}

	if err := logger.Init("warn", ""); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	err := cmd.run(os.Args[2:], os.Stdout)
	logger.Sync()
	if errors.Is(err, errUsage) {
		fmt.Fprintf(os.Stderr, "Usage: assettool %s\n", cmd.usage)
		os.Exit(2)
	}
	if err != nil {
		logger.Error("command failed", zap.String("command", name), zap.Error(err))
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`assettool - mesh and compressed texture utility

Usage:
  assettool <command> [options]

Commands:
  mesh <file.obj>                      Parse and assemble a mesh, print a summary
  normalize <in.obj> <out.obj>         Rewrite a mesh in canonical form
  texture <file.dds>                   Print texture header and mipmap levels
  export <file.dds> <out.webp>         Decode a mipmap level to a WebP preview
  list <file.grf> [pattern]            List archive files
  extract <file.grf> <path> [output]   Extract file(s) from an archive
  pack <out.grf> <dir>                 Pack a directory into an archive
  check <path>...                      Load assets through the manager and dry-run uploads
  config [path]                        Write the default configuration

Every command accepts -debug for verbose logging.

Examples:
  assettool mesh -indexed bear.obj
  assettool export -level 1 -size 128 bear.dds bear.webp
  assettool pack assets.grf ./data
  assettool check -archive assets.grf model/bear.obj texture/bear.dds`)
}

// newFlagSet returns a flag set with the shared -debug flag. Parse errors are
// returned instead of exiting so commands stay testable.
func newFlagSet(name string) (*flag.FlagSet, *bool) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	debug := fs.Bool("debug", false, "Enable debug logging")
	return fs, debug
}

// parseFlags parses args and sets the log level. Warnings and errors always
// reach stderr; -debug adds the parser and loader detail.
func parseFlags(fs *flag.FlagSet, debug *bool, args []string) error {
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %w", errUsage, err)
	}
	if *debug {
		logger.SetLevel("debug")
	}
	return nil
}
