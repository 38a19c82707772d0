package main

import (
	"bytes"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/Faultbox/midgard-assets/internal/logger"
	"github.com/Faultbox/midgard-assets/pkg/grf"
)

func cmdList(args []string, out io.Writer) error {
	fset, debug := newFlagSet("list")
	limit := fset.Int("n", 0, "Limit output to N files (0 = all)")
	if err := parseFlags(fset, debug, args); err != nil {
		return err
	}
	if fset.NArg() < 1 {
		return errUsage
	}

	archive, err := grf.Open(fset.Arg(0))
	if err != nil {
		return err
	}
	defer archive.Close()

	pattern := ""
	if fset.NArg() > 1 {
		pattern = strings.ToLower(fset.Arg(1))
	}

	count := 0
	for _, f := range archive.List() {
		if pattern != "" && !matchPath(pattern, f) {
			continue
		}
		fmt.Fprintln(out, f)
		count++
		if *limit > 0 && count >= *limit {
			break
		}
	}

	if pattern != "" {
		fmt.Fprintf(os.Stderr, "\n(%d files matched)\n", count)
	}
	return nil
}

// matchPath matches a lowercase pattern against the base name as a glob, or
// against the whole path as a substring.
func matchPath(pattern, path string) bool {
	path = strings.ToLower(path)
	if matched, _ := filepath.Match(pattern, filepath.Base(path)); matched {
		return true
	}
	return strings.Contains(path, pattern)
}

func cmdExtract(args []string, out io.Writer) error {
	fset, debug := newFlagSet("extract")
	if err := parseFlags(fset, debug, args); err != nil {
		return err
	}
	if fset.NArg() < 2 {
		return errUsage
	}

	filePath := fset.Arg(1)
	outputDir := "."
	if fset.NArg() > 2 {
		outputDir = fset.Arg(2)
	}

	archive, err := grf.Open(fset.Arg(0))
	if err != nil {
		return err
	}
	defer archive.Close()

	if strings.Contains(filePath, "*") {
		return extractPattern(archive, strings.ToLower(filePath), outputDir, out)
	}

	data, err := archive.Read(filePath)
	if err != nil {
		return err
	}

	outputPath := filepath.Join(outputDir, filepath.Base(filepath.FromSlash(strings.ReplaceAll(filePath, "\\", "/"))))
	if err := writeOutput(outputPath, data); err != nil {
		return err
	}

	fmt.Fprintf(out, "Extracted: %s (%d bytes)\n", outputPath, len(data))
	return nil
}

func extractPattern(archive *grf.Archive, pattern, outputDir string, out io.Writer) error {
	log := logger.Named("assettool")

	extracted := 0
	for _, f := range archive.List() {
		if matched, _ := filepath.Match(pattern, filepath.Base(f)); !matched {
			continue
		}
		// Archive names come from the file table; keep them inside outputDir.
		if !filepath.IsLocal(filepath.FromSlash(f)) {
			log.Warn("skipping entry outside output dir", zap.String("entry", f))
			continue
		}

		data, err := archive.Read(f)
		if err != nil {
			log.Warn("skipping unreadable entry", zap.String("entry", f), zap.Error(err))
			continue
		}

		// Preserve directory structure
		outputPath := filepath.Join(outputDir, filepath.FromSlash(f))
		if err := writeOutput(outputPath, data); err != nil {
			return err
		}

		fmt.Fprintf(out, "Extracted: %s\n", outputPath)
		extracted++
	}

	fmt.Fprintf(os.Stderr, "\nExtracted %d files\n", extracted)
	return nil
}

func writeOutput(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating directory: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

func cmdPack(args []string, out io.Writer) error {
	fset, debug := newFlagSet("pack")
	if err := parseFlags(fset, debug, args); err != nil {
		return err
	}
	if fset.NArg() != 2 {
		return errUsage
	}
	root := fset.Arg(1)

	var files []grf.File
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		files = append(files, grf.File{Name: filepath.ToSlash(rel), Data: data})
		return nil
	})
	if err != nil {
		return fmt.Errorf("walking %s: %w", root, err)
	}

	var buf bytes.Buffer
	if err := grf.Write(&buf, files); err != nil {
		return err
	}
	if err := os.WriteFile(fset.Arg(0), buf.Bytes(), 0644); err != nil {
		return err
	}

	fmt.Fprintf(out, "Packed: %s (%d files, %d bytes)\n", fset.Arg(0), len(files), buf.Len())
	return nil
}
