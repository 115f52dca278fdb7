// Package udf assembles the descriptor, fileset, and recognition codecs
// into a read-only view of a UDF 2.01 volume: open a volume, walk its
// directory tree, and read file contents back out of an io.ReaderAt.
package udf

import (
	"encoding/binary"
	"fmt"
	"io"
	"path"
	"time"

	"github.com/bgrewell/go-udf/pkg/consts"
	"github.com/bgrewell/go-udf/pkg/logging"
	"github.com/bgrewell/go-udf/pkg/udf/common"
	"github.com/bgrewell/go-udf/pkg/udf/descriptor"
	"github.com/bgrewell/go-udf/pkg/udf/errs"
	"github.com/bgrewell/go-udf/pkg/udf/fileset"
	"github.com/bgrewell/go-udf/pkg/udf/filesystem"
	"github.com/bgrewell/go-udf/pkg/udf/layout"
	"github.com/bgrewell/go-udf/pkg/udf/option"
	"github.com/bgrewell/go-udf/pkg/udf/recognition"
)

const sectorSize = consts.UDF_LOGICAL_BLOCK_SIZE

// Open parses an existing UDF volume from isoReader: the volume recognition
// sequence, anchor volume descriptor pointer, volume descriptor sequence,
// and (unless deferred with WithParseOnOpen(false)) the file set descriptor
// and the full directory tree.
func Open(isoReader io.ReaderAt, opts ...option.OpenOption) (*UDF, error) {
	o := option.OpenOptions{ParseOnOpen: true}
	for _, apply := range opts {
		apply(&o)
	}

	logger := o.Logger
	if logger == nil {
		logger = logging.DefaultLogger()
	}

	u := &UDF{
		reader:  isoReader,
		opts:    o,
		logger:  logger,
		layout:  layout.New(),
	}

	if err := u.readRecognitionSequence(); err != nil {
		return nil, err
	}
	if err := u.readAnchor(); err != nil {
		return nil, err
	}
	if err := u.readVolumeDescriptorSequence(); err != nil {
		return nil, err
	}

	if o.ParseOnOpen {
		if err := u.readFileSet(); err != nil {
			return nil, err
		}
		if err := u.readDirectoryTree(); err != nil {
			return nil, err
		}
	}

	return u, nil
}

// Create is a stub: assembling a new volume image is outside this codec's
// scope. It exists so callers written against the functional-options
// pattern get a typed error instead of a missing symbol.
func Create(filename string, opts ...option.CreateOption) (*UDF, error) {
	return nil, errs.Internal("creating new UDF volumes is not supported by this codec")
}

// UDF is a parsed, read-only view of a single-partition UDF 2.01 volume.
type UDF struct {
	reader io.ReaderAt
	opts   option.OpenOptions
	logger *logging.Logger
	layout *layout.Layout

	recognitionExtent uint32
	anchor            descriptor.Anchor
	primary           descriptor.Primary
	implUse           *descriptor.ImplementationUse
	partition         descriptor.Partition
	logicalVolume     descriptor.LogicalVolume
	integrity         *descriptor.LogicalVolumeIntegrity

	fileSet fileset.FileSetDescriptor
	root    fileset.FileEntry
	entries []*filesystem.Entry
}

func (u *UDF) readSector(extent uint32) ([]byte, error) {
	buf := make([]byte, sectorSize)
	if _, err := u.reader.ReadAt(buf, int64(extent)*int64(sectorSize)); err != nil {
		return nil, errs.Internal("failed to read sector %d: %v", extent, err)
	}
	return buf, nil
}

func (u *UDF) readRecognitionSequence() error {
	for extent := uint32(16); extent < 256; extent++ {
		buf, err := u.readSector(extent)
		if err != nil {
			return err
		}
		if s, err := recognition.Parse(buf, consts.UDF_VRS_NSR02, extent); err == nil {
			u.recognitionExtent = s.ExtentLocation()
			u.logger.Debug("found NSR02 structure", "extent", extent)
			return nil
		}
	}
	return errs.Format("volume recognition sequence does not contain an NSR02 structure")
}

func (u *UDF) readAnchor() error {
	buf, err := u.readSector(256)
	if err != nil {
		return err
	}
	anchor, err := descriptor.ParseAnchor(buf, 256)
	if err != nil {
		return err
	}
	u.anchor = anchor
	u.layout.RecognitionSequenceExtent = int(u.recognitionExtent)
	u.layout.AnchorExtent = 256
	return nil
}

func (u *UDF) readVolumeDescriptorSequence() error {
	start := u.anchor.MainVDExtent
	numSectors := (u.anchor.MainVDLength + sectorSize - 1) / sectorSize

	var sawPartition, sawLogicalVolume, sawPrimary bool
	for i := uint32(0); i < numSectors; i++ {
		extent := start + i
		buf, err := u.readSector(extent)
		if err != nil {
			return err
		}
		if len(buf) < 2 {
			continue
		}
		ident := binary.LittleEndian.Uint16(buf[0:2])

		switch ident {
		case 1:
			p, err := descriptor.ParsePrimary(buf, extent)
			if err != nil {
				return err
			}
			u.primary = p
			sawPrimary = true
			u.layout.AddDescriptor("PrimaryVolumeDescriptor", int(p.Tag.Version), int(extent), consts.UDF_LOGICAL_BLOCK_SIZE)
		case 4:
			iu, err := descriptor.ParseImplementationUse(buf, extent)
			if err != nil {
				return err
			}
			u.implUse = &iu
			u.layout.AddDescriptor("ImplementationUseVolumeDescriptor", int(iu.Tag.Version), int(extent), consts.UDF_LOGICAL_BLOCK_SIZE)
		case 5:
			part, err := descriptor.ParsePartition(buf, extent)
			if err != nil {
				return err
			}
			u.partition = part
			sawPartition = true
			u.layout.AddDescriptor("PartitionDescriptor", int(part.Tag.Version), int(extent), consts.UDF_LOGICAL_BLOCK_SIZE)
		case 6:
			lv, err := descriptor.ParseLogicalVolume(buf, extent)
			if err != nil {
				return err
			}
			u.logicalVolume = lv
			sawLogicalVolume = true
			u.layout.AddDescriptor("LogicalVolumeDescriptor", int(lv.Tag.Version), int(extent), consts.UDF_LOGICAL_BLOCK_SIZE)
		case 7:
			if _, err := descriptor.ParseUnallocatedSpace(buf, extent); err != nil {
				return err
			}
			u.layout.AddDescriptor("UnallocatedSpaceDescriptor", 2, int(extent), consts.UDF_LOGICAL_BLOCK_SIZE)
		case 8:
			if _, err := descriptor.ParseTerminating(buf, extent); err != nil {
				return err
			}
			u.layout.AddDescriptor("TerminatingDescriptor", 2, int(extent), consts.UDF_LOGICAL_BLOCK_SIZE)
			i = numSectors // stop
		default:
			// empty/unused sector at the tail of the sequence
		}
	}

	if !sawPrimary || !sawPartition || !sawLogicalVolume {
		return errs.Format("volume descriptor sequence missing a required record (primary=%v partition=%v logical volume=%v)", sawPrimary, sawPartition, sawLogicalVolume)
	}

	u.layout.PartitionStart = int(u.partition.PartStartLocation)
	u.layout.PartitionLength = int(u.partition.PartLength)

	if u.logicalVolume.IntegritySequenceLength > 0 {
		buf, err := u.readSector(u.logicalVolume.IntegritySequenceExtent)
		if err != nil {
			return err
		}
		lvid, err := descriptor.ParseLogicalVolumeIntegrity(buf, u.logicalVolume.IntegritySequenceExtent)
		if err != nil {
			return err
		}
		u.integrity = &lvid
	}

	return nil
}

// partitionExtent converts a partition-relative block number into an
// absolute sector on the medium.
func (u *UDF) partitionExtent(blockNum uint32) uint32 {
	return u.partition.PartStartLocation + blockNum
}

func (u *UDF) readFileSet() error {
	fsBlock := u.logicalVolume.LogicalVolumeContentsUse.LogicalBlockNum
	buf, err := u.readSector(u.partitionExtent(fsBlock))
	if err != nil {
		return err
	}
	fsd, err := fileset.ParseFileSetDescriptor(buf, fsBlock)
	if err != nil {
		return err
	}
	u.fileSet = fsd
	u.layout.FileSetExtent = int(u.partitionExtent(fsBlock))

	rootBlock := fsd.RootDirectoryICB.LogicalBlockNum
	rootBuf, err := u.readSector(u.partitionExtent(rootBlock))
	if err != nil {
		return err
	}
	root, err := fileset.ParseFileEntry(rootBuf, rootBlock)
	if err != nil {
		return err
	}
	u.root = root
	return nil
}

// readDirectoryBytes concatenates a directory FileEntry's allocated
// extents into a single contiguous buffer of its recorded size.
func (u *UDF) readDirectoryBytes(dir fileset.FileEntry) ([]byte, error) {
	data := make([]byte, 0, dir.InformationLength)
	for _, ad := range dir.AllocationDescriptors {
		if ad.Length == 0 {
			continue
		}
		buf := make([]byte, ad.Length)
		offset := int64(u.partitionExtent(ad.Position)) * int64(sectorSize)
		if _, err := u.reader.ReadAt(buf, offset); err != nil {
			return nil, errs.Internal("failed to read directory extent at block %d: %v", ad.Position, err)
		}
		data = append(data, buf...)
	}
	if uint64(len(data)) > dir.InformationLength {
		data = data[:dir.InformationLength]
	}
	return data, nil
}

func (u *UDF) readDirectoryTree() error {
	u.entries = nil
	return u.walkDirectory(u.root, u.fileSet.RootDirectoryICB.LogicalBlockNum, "/")
}

func (u *UDF) walkDirectory(dir fileset.FileEntry, dirICBBlock uint32, dirPath string) error {
	data, err := u.readDirectoryBytes(dir)
	if err != nil {
		return err
	}

	off := 0
	for off < len(data) {
		fid, n, err := fileset.ParseFileIdentifierDescriptor(data[off:], dirICBBlock)
		if err != nil {
			return err
		}
		off += n

		if fid.IsParent() {
			continue
		}

		childICBBlock := fid.ICB.LogicalBlockNum
		childBuf, err := u.readSector(u.partitionExtent(childICBBlock))
		if err != nil {
			return err
		}
		childEntry, err := fileset.ParseFileEntry(childBuf, childICBBlock)
		if err != nil {
			return err
		}

		childPath := path.Join(dirPath, fid.Name())
		entry := filesystem.NewEntry(fid.Name(), childPath, fid.IsDirectory(), childEntry, u.partition.PartStartLocation, u.reader)
		u.entries = append(u.entries, entry)
		u.layout.AddDirectoryRecord(fid.Name(), int(u.partitionExtent(childICBBlock)), int(childICBBlock), fid.IsDirectory())

		if fid.IsDirectory() {
			if err := u.walkDirectory(childEntry, childICBBlock, childPath); err != nil {
				return err
			}
		}
	}

	return nil
}

func (u *UDF) ensureParsed() error {
	if u.fileSet.Tag.Ident == 0 {
		if err := u.readFileSet(); err != nil {
			return err
		}
	}
	if u.entries == nil {
		if err := u.readDirectoryTree(); err != nil {
			return err
		}
	}
	return nil
}

func (u *UDF) findEntry(p string) (*filesystem.Entry, error) {
	if err := u.ensureParsed(); err != nil {
		return nil, err
	}
	clean := path.Clean("/" + p)
	for _, e := range u.entries {
		if e.FullPath == clean {
			return e, nil
		}
	}
	return nil, errs.Input("no such file or directory: %s", p)
}

// RootDirectoryLocation returns the absolute sector of the root directory's ICB.
func (u UDF) RootDirectoryLocation() uint32 {
	return u.partitionExtent(u.fileSet.RootDirectoryICB.LogicalBlockNum)
}

// GetVolumeSetID returns the logical volume's volume set identifier.
func (u UDF) GetVolumeSetID() string {
	return trimNUL(u.primary.VolSetIdent[:])
}

// GetPublisherID is not recorded by UDF's volume descriptors; UDF carries
// no separate publisher field, so this reports the implementation identifier.
func (u UDF) GetPublisherID() string {
	return u.primary.ImplIdent.IdentifierString()
}

// GetDataPreparerID returns the application identifier recorded in the
// Primary Volume Descriptor.
func (u UDF) GetDataPreparerID() string {
	return u.primary.AppIdent.IdentifierString()
}

// GetApplicationID returns the application identifier.
func (u UDF) GetApplicationID() string {
	return u.primary.AppIdent.IdentifierString()
}

// GetCopyrightID: a UDF volume has no free-text copyright string outside a
// named file; this returns the descriptor character set name instead.
func (u UDF) GetCopyrightID() string {
	return trimNUL(u.primary.DescCharSet[:])
}

// GetAbstractID is not modeled by UDF 2.01; returns the explanatory character set name.
func (u UDF) GetAbstractID() string {
	return trimNUL(u.primary.ExplanatoryCharSet[:])
}

// GetBibliographicID is not modeled by UDF 2.01.
func (u UDF) GetBibliographicID() string {
	return ""
}

// GetCreationDateTime returns the Primary Volume Descriptor's recording date.
func (u UDF) GetCreationDateTime() time.Time {
	return u.primary.RecordingDate.Time()
}

// GetModificationDateTime returns the integrity descriptor's recording date,
// falling back to the volume's recording date if none was parsed.
func (u UDF) GetModificationDateTime() time.Time {
	if u.integrity != nil {
		return u.integrity.RecordingDateAndTime.Time()
	}
	return u.primary.RecordingDate.Time()
}

// GetExpirationDateTime is not modeled by UDF 2.01.
func (u UDF) GetExpirationDateTime() time.Time {
	return time.Time{}
}

// GetEffectiveDateTime: UDF 2.01 records no separate effective date; this
// returns the Primary Volume Descriptor's recording date.
func (u UDF) GetEffectiveDateTime() time.Time {
	return u.primary.RecordingDate.Time()
}

// HasJoliet is always false: Joliet is an ISO9660 extension, not part of UDF.
func (u UDF) HasJoliet() bool { return false }

// HasRockRidge is always false: Rock Ridge is an ISO9660 extension, not part of UDF.
func (u UDF) HasRockRidge() bool { return false }

// HasElTorito is always false: El Torito boot catalogs are not modeled by this codec.
func (u UDF) HasElTorito() bool { return false }

// GetVolumeID returns the volume's identifier from the Primary Volume Descriptor.
func (u UDF) GetVolumeID() string {
	return trimNUL(u.primary.VolumeIdentifier[:])
}

// GetSystemID returns the implementation identifier that created the volume.
func (u UDF) GetSystemID() string {
	return u.primary.ImplIdent.IdentifierString()
}

// GetVolumeSize returns the partition length in logical blocks.
func (u UDF) GetVolumeSize() uint32 {
	return u.partition.PartLength
}

// ListBootEntries always returns an empty list: El Torito boot catalogs are
// not modeled by this codec.
func (u UDF) ListBootEntries() ([]*filesystem.Entry, error) {
	return nil, nil
}

// ListFiles returns every regular file entry in the volume.
func (u *UDF) ListFiles() ([]*filesystem.Entry, error) {
	if err := u.ensureParsed(); err != nil {
		return nil, err
	}
	var out []*filesystem.Entry
	for _, e := range u.entries {
		if !e.IsDir {
			out = append(out, e)
		}
	}
	return out, nil
}

// ListDirectories returns every directory entry in the volume.
func (u *UDF) ListDirectories() ([]*filesystem.Entry, error) {
	if err := u.ensureParsed(); err != nil {
		return nil, err
	}
	var out []*filesystem.Entry
	for _, e := range u.entries {
		if e.IsDir {
			out = append(out, e)
		}
	}
	return out, nil
}

// ReadFile returns the full contents of the file at path.
func (u *UDF) ReadFile(p string) ([]byte, error) {
	entry, err := u.findEntry(p)
	if err != nil {
		return nil, err
	}
	return entry.GetBytes()
}

// AddFile is a stub: this codec does not assemble or mutate volume images.
func (u *UDF) AddFile(path string, data []byte) error {
	return errs.Internal("writing files is not supported by this codec")
}

// RemoveFile is a stub: this codec does not assemble or mutate volume images.
func (u *UDF) RemoveFile(path string) error {
	return errs.Internal("removing files is not supported by this codec")
}

// CreateDirectories is a stub: this codec does not assemble or mutate volume images.
func (u *UDF) CreateDirectories(path string) error {
	return errs.Internal("creating directories is not supported by this codec")
}

// Extract writes every file and directory in the volume to outputDir.
func (u *UDF) Extract(outputDir string) error {
	if err := u.ensureParsed(); err != nil {
		return err
	}
	total := len(u.entries)
	for i, e := range u.entries {
		if cb := u.opts.ExtractionProgressCallback; cb != nil {
			cb(e.FullPath, 0, int64(e.Size), i+1, total)
		}
		if err := e.ExtractToDisk(outputDir); err != nil {
			return fmt.Errorf("failed to extract %s: %w", e.FullPath, err)
		}
	}
	return nil
}

// SetLogger replaces the volume's logger.
func (u *UDF) SetLogger(l *logging.Logger) {
	u.logger = l
}

// GetLogger returns the volume's logger.
func (u *UDF) GetLogger() *logging.Logger {
	return u.logger
}

// GetLayout returns the assembled on-disk layout of the parsed volume.
func (u *UDF) GetLayout() *layout.Layout {
	return u.layout
}

// Save is a stub: this codec does not assemble or mutate volume images.
func (u UDF) Save(writer io.WriterAt) error {
	return errs.Internal("saving UDF volumes is not supported by this codec")
}

// Close releases any resources held by the volume. The underlying reader
// is owned by the caller and is not closed here.
func (u UDF) Close() error {
	return nil
}

func trimNUL(b []byte) string {
	for i, c := range b {
		if c == 0 {
			return string(b[:i])
		}
	}
	return string(b)
}
