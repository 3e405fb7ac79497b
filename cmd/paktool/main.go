// Package main provides paktool, a command-line driver for packing and
// unpacking PAK archives.
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/JasperZebra/avatar-pak/pkg/pak"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "paktool <path>",
		Short: "Pack a directory into a PAK archive, or unpack a PAK archive into a directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(args[0])
		},
		SilenceUsage: true,
	}
	return cmd
}

func run(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat %q: %w", path, err)
	}

	if info.IsDir() {
		return runPack(path)
	}
	if strings.EqualFold(filepath.Ext(path), ".pak") {
		return runUnpack(path)
	}
	return fmt.Errorf("%q is neither a directory nor a .pak file", path)
}

func runPack(sourceDir string) error {
	dest := strings.TrimRight(sourceDir, string(os.PathSeparator)) + ".pak"
	if err := confirmOverwrite(dest); err != nil {
		return err
	}

	packer := pak.NewPacker(pak.WithReporter(pak.StdReporter{}))
	report, err := packer.Pack(sourceDir, dest)
	if err != nil {
		return err
	}

	fmt.Printf("packed %d files into %s (%d bytes)\n", report.FileCount, dest, report.BytesWritten)
	return nil
}

func runUnpack(archivePath string) error {
	stem := strings.TrimSuffix(filepath.Base(archivePath), filepath.Ext(archivePath))
	dest := filepath.Join(filepath.Dir(archivePath), stem)
	if err := confirmOverwrite(dest); err != nil {
		return err
	}

	f, err := os.Open(archivePath)
	if err != nil {
		return fmt.Errorf("open %q: %w", archivePath, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat %q: %w", archivePath, err)
	}

	unpacker, err := pak.Open(f, info.Size())
	if err != nil {
		return err
	}

	report, err := unpacker.ExtractAll(context.Background(), dest,
		pak.WithExtractReporter(pak.StdReporter{}),
		pak.WithRestoreFileTime(true),
	)
	if err != nil {
		return err
	}

	fmt.Printf("extracted %d files into %s\n", report.Extracted, dest)
	for _, skipped := range report.Skipped {
		fmt.Printf("skipped %s: %v\n", skipped.Path, skipped.Err)
	}
	return nil
}

// confirmOverwrite asks the user before an operation would overwrite an
// existing destination, aborting cleanly (exit code 0) on anything but an
// affirmative "y".
func confirmOverwrite(dest string) error {
	if _, err := os.Stat(dest); os.IsNotExist(err) {
		return nil
	}

	fmt.Printf("%s already exists. Overwrite? [y/N] ", dest)
	reader := bufio.NewReader(os.Stdin)
	answer, _ := reader.ReadString('\n')
	answer = strings.TrimSpace(strings.ToLower(answer))
	if answer != "y" {
		fmt.Println("aborted")
		os.Exit(0)
	}
	return nil
}
