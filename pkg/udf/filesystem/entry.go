// Package filesystem exposes the parsed file and directory tree of a UDF
// volume as a flat, read-oriented entry type independent of the on-disk
// descriptor shapes.
package filesystem

import (
	"crypto/md5"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/bgrewell/go-udf/pkg/consts"
	"github.com/bgrewell/go-udf/pkg/udf/fileset"
)

// NewEntry builds an Entry over reader, reading partition-relative
// allocation descriptors from entry via partitionStart blocks.
func NewEntry(name, fullPath string, isDir bool, entry fileset.FileEntry, partitionStart uint32, reader io.ReaderAt) *Entry {
	return &Entry{
		Name:           name,
		FullPath:       fullPath,
		IsDir:          isDir,
		Size:           entry.InformationLength,
		UID:            entry.Uid,
		GID:            entry.Gid,
		Mode:           os.FileMode(entry.Permissions & 0o7777),
		ModTime:        entry.ModificationDateTime.Time(),
		partitionStart: partitionStart,
		fileEntry:      entry,
		reader:         reader,
	}
}

// Entry is a single file or directory resolved from the volume's file set.
type Entry struct {
	Name     string `json:"name"`
	FullPath string `json:"full_path"`
	IsDir    bool   `json:"is_dir"`
	Size     uint64 `json:"size"`
	UID      uint32 `json:"uid"`
	GID      uint32 `json:"gid"`
	Mode     os.FileMode
	ModTime  time.Time

	partitionStart uint32
	fileEntry      fileset.FileEntry
	reader         io.ReaderAt
}

// FileEntry returns the underlying FileEntry ICB this Entry was resolved from.
func (e *Entry) FileEntry() fileset.FileEntry {
	return e.fileEntry
}

// GetBytes reads the entry's full contents by walking its allocation
// descriptors in order and concatenating the extents they reference.
func (e *Entry) GetBytes() ([]byte, error) {
	if e.IsDir {
		return nil, fmt.Errorf("cannot get bytes for a directory: %s", e.FullPath)
	}

	data := make([]byte, 0, e.Size)
	for _, ad := range e.fileEntry.AllocationDescriptors {
		if ad.Length == 0 {
			continue
		}
		offset := int64(e.partitionStart+ad.Position) * int64(consts.UDF_LOGICAL_BLOCK_SIZE)
		chunk := make([]byte, ad.Length)
		if _, err := e.reader.ReadAt(chunk, offset); err != nil {
			return nil, fmt.Errorf("failed to read file data for %s: %w", e.FullPath, err)
		}
		data = append(data, chunk...)
	}

	if uint64(len(data)) > e.Size {
		data = data[:e.Size]
	}
	return data, nil
}

// ExtractToDisk writes the entry to outputDir, creating parent directories
// as needed and preserving its recorded modification time.
func (e *Entry) ExtractToDisk(outputDir string) error {
	outputPath := filepath.Join(outputDir, e.FullPath)

	if e.IsDir {
		return os.MkdirAll(outputPath, 0o755)
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return fmt.Errorf("failed to create parent directories for %s: %w", outputPath, err)
	}

	data, err := e.GetBytes()
	if err != nil {
		return err
	}

	outFile, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create file %s: %w", outputPath, err)
	}
	defer outFile.Close()

	if _, err := outFile.Write(data); err != nil {
		return fmt.Errorf("failed to write file %s: %w", outputPath, err)
	}

	if err := os.Chtimes(outputPath, e.ModTime, e.ModTime); err != nil {
		return fmt.Errorf("failed to set timestamps on %s: %w", outputPath, err)
	}

	return nil
}

// GetMD5 computes the MD5 hash of the entry's contents.
func (e *Entry) GetMD5() (string, error) {
	data, err := e.GetBytes()
	if err != nil {
		return "", err
	}
	sum := md5.Sum(data)
	return hex.EncodeToString(sum[:]), nil
}

// GetSHA256 computes the SHA-256 hash of the entry's contents.
func (e *Entry) GetSHA256() (string, error) {
	data, err := e.GetBytes()
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}
