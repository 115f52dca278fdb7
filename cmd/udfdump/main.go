package main

import (
	"fmt"
	"os"
	"time"

	"github.com/bgrewell/go-udf/pkg/logging"
	"github.com/bgrewell/go-udf/pkg/udf"
	"github.com/bgrewell/go-udf/pkg/udf/option"
	"github.com/bgrewell/usage"
	"github.com/theckman/yacspin"
	"golang.org/x/term"
)

// displayVolumeInfo prints summary and, if verbose, detailed information
// about a parsed UDF volume followed by its on-disk layout.
func displayVolumeInfo(v *udf.UDF, verbose bool) {
	files, err := v.ListFiles()
	if err != nil {
		fmt.Println("Failed to list files:", err)
	}

	dirs, err := v.ListDirectories()
	if err != nil {
		fmt.Println("Failed to list directories:", err)
	}

	var totalSize uint64
	for _, entry := range files {
		totalSize += entry.Size
	}

	fmt.Println("=== UDF Volume Information ===")
	if v.GetVolumeID() != "" {
		fmt.Printf("Volume Name: %s\n", v.GetVolumeID())
	}
	if v.GetApplicationID() != "" {
		fmt.Printf("Created By: %s\n", v.GetApplicationID())
	}
	if v.GetDataPreparerID() != "" {
		fmt.Printf("Preparer: %s\n", v.GetDataPreparerID())
	}

	fmt.Printf("Volume Size: %d blocks\n", v.GetVolumeSize())
	fmt.Printf("Total Files: %d\n", len(files))
	fmt.Printf("Total Directories: %d\n", len(dirs))
	fmt.Printf("Total Size: %d bytes (%.2f MB)\n", totalSize, float64(totalSize)/1024/1024)

	if verbose {
		fmt.Println("\n=== Verbose Information ===")
		fmt.Printf("System Identifier: %s\n", v.GetSystemID())
		fmt.Printf("Logical Block Size: %d bytes\n", 2048)
		fmt.Printf("Root Directory Location: %d (LBA)\n", v.RootDirectoryLocation())
		fmt.Printf("Creation Date: %s\n", v.GetCreationDateTime())
	}

	fmt.Println("=========================")

	useColor := term.IsTerminal(int(os.Stdout.Fd()))

	layout := v.GetLayout()
	if layout != nil {
		fmt.Println("=== UDF Layout ===")
		layout.Print(verbose, useColor)
		fmt.Println("=========================")
	} else {
		fmt.Println("Failed to retrieve UDF layout")
	}
}

// newExtractionSpinner builds a progress callback that drives a terminal
// spinner, or nil when stdout isn't a real terminal.
func newExtractionSpinner() (*yacspin.Spinner, option.ExtractionProgressCallback) {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return nil, nil
	}

	spinner, err := yacspin.New(yacspin.Config{
		Frequency:       100 * time.Millisecond,
		CharSet:         yacspin.CharSets[9],
		Suffix:          " extracting",
		SuffixAutoColon: true,
		Message:         "starting",
		StopCharacter:   "✓",
		StopColors:      []string{"fgGreen"},
	})
	if err != nil {
		return nil, nil
	}

	return spinner, func(name string, _, _ int64, current, total int) {
		spinner.Message(fmt.Sprintf("%s (%d/%d)", name, current, total))
	}
}

func main() {
	u := usage.NewUsage(
		usage.WithApplicationName("udfdump"),
		usage.WithApplicationDescription("udfdump is a command-line tool for inspecting UDF 2.01 volumes. It reports the volume recognition sequence, volume descriptor sequence, and file set, and lists the files and directories it contains."),
	)

	help := u.AddBooleanOption("h", "help", false, "Show this help message", "optional", nil)
	verbose := u.AddBooleanOption("v", "verbose", false, "Print verbose output", "", nil)
	udfPath := u.AddArgument(1, "udf-path", "Path to the UDF volume image to read", "")
	extractTo := u.AddArgument(2, "extract-dir", "Optional directory to extract all files into", "")
	parsed := u.Parse()

	if !parsed {
		u.PrintError(fmt.Errorf("failed to parse arguments"))
		os.Exit(1)
	}

	if *help {
		u.PrintUsage()
		os.Exit(0)
	}

	if udfPath == nil || *udfPath == "" {
		u.PrintError(fmt.Errorf("path to the UDF volume image must be provided"))
		os.Exit(1)
	}

	f, err := os.Open(*udfPath)
	if err != nil {
		u.PrintError(err)
		os.Exit(1)
	}
	defer f.Close()

	spinner, progress := newExtractionSpinner()

	useColor := term.IsTerminal(int(os.Stdout.Fd()))
	minVerbosity := logging.LEVEL_INFO
	if *verbose {
		minVerbosity = logging.LEVEL_DEBUG
	}
	logger := logging.NewLogger(logging.NewSimpleLogger(os.Stderr, minVerbosity, useColor))

	openOpts := []option.OpenOption{option.WithParseOnOpen(true), option.WithLogger(logger)}
	if progress != nil {
		openOpts = append(openOpts, option.WithExtractionProgress(progress))
	}

	v, err := udf.Open(f, openOpts...)
	if err != nil {
		u.PrintError(err)
		os.Exit(1)
	}
	defer v.Close()

	displayVolumeInfo(v, *verbose)

	if extractTo != nil && *extractTo != "" {
		if spinner != nil {
			_ = spinner.Start()
		}
		err := v.Extract(*extractTo)
		if spinner != nil {
			_ = spinner.Stop()
		}
		if err != nil {
			u.PrintError(err)
			os.Exit(1)
		}
		fmt.Printf("Extraction completed successfully to '%s'.\n", *extractTo)
	}
}
