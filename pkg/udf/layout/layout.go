// Package layout records where each recognized structure of a UDF volume
// sits on the medium, for diagnostic printing and machine-readable dumps.
package layout

import (
	"encoding/json"
	"fmt"
	"slices"

	"github.com/fatih/color"
)

// DescriptorInfo records one volume-descriptor-sequence record's placement.
type DescriptorInfo struct {
	DescriptorType   string `json:"descriptor_type"`
	DescriptorTagVer int    `json:"descriptor_tag_version"`
	DescriptorExtent int    `json:"descriptor_extent"`
	DescriptorLength int    `json:"descriptor_length"`
}

// DirectoryRecordInfo records one FileIdentifierDescriptor entry's placement.
type DirectoryRecordInfo struct {
	Identifier    string `json:"identifier"`
	Extent        int    `json:"extent"`
	ICBExtent     int    `json:"icb_extent"`
	IsDirectory   bool   `json:"is_directory"`
}

// Layout is the assembled picture of a parsed UDF volume: where the
// recognition sequence, anchor, volume descriptor sequence, file set, and
// directory structure live.
type Layout struct {
	RecognitionSequenceExtent int                    `json:"recognition_sequence_extent"`
	AnchorExtent              int                    `json:"anchor_extent"`
	PartitionStart            int                    `json:"partition_start"`
	PartitionLength           int                    `json:"partition_length"`
	FileSetExtent             int                    `json:"file_set_extent"`
	Descriptors               []*DescriptorInfo      `json:"descriptors"`
	DirectoryRecords          []*DirectoryRecordInfo `json:"directory_records"`
}

// New returns an empty Layout ready to be populated as a volume is parsed.
func New() *Layout {
	return &Layout{
		Descriptors:      make([]*DescriptorInfo, 0),
		DirectoryRecords: make([]*DirectoryRecordInfo, 0),
	}
}

// AddDescriptor appends a volume descriptor sequence record, keeping the
// list sorted by extent.
func (l *Layout) AddDescriptor(descriptorType string, tagVersion, extent, length int) {
	l.Descriptors = append(l.Descriptors, &DescriptorInfo{
		DescriptorType:   descriptorType,
		DescriptorTagVer: tagVersion,
		DescriptorExtent: extent,
		DescriptorLength: length,
	})
	slices.SortFunc(l.Descriptors, func(a, b *DescriptorInfo) int {
		return a.DescriptorExtent - b.DescriptorExtent
	})
}

// AddDirectoryRecord appends a directory entry, keeping the list sorted by extent.
func (l *Layout) AddDirectoryRecord(identifier string, extent, icbExtent int, isDirectory bool) {
	l.DirectoryRecords = append(l.DirectoryRecords, &DirectoryRecordInfo{
		Identifier:  identifier,
		Extent:      extent,
		ICBExtent:   icbExtent,
		IsDirectory: isDirectory,
	})
	slices.SortFunc(l.DirectoryRecords, func(a, b *DirectoryRecordInfo) int {
		return a.Extent - b.Extent
	})
}

// PrettyJSON returns a pretty-printed JSON representation of the layout.
func (l *Layout) PrettyJSON() string {
	data, err := json.MarshalIndent(l, "", "  ")
	if err != nil {
		return fmt.Sprintf("Error generating JSON: %v", err)
	}
	return string(data)
}

// Print writes a human-readable summary of the layout. verbose includes the
// directory records; useColor controls whether ANSI color is used.
func (l *Layout) Print(verbose bool, useColor bool) {
	headerColor := color.New(color.FgCyan, color.Bold).SprintFunc()
	descColor := color.New(color.FgYellow, color.Bold).SprintFunc()
	dirColor := color.New(color.FgCyan, color.Bold).SprintFunc()
	extentColor := color.New(color.FgGreen).SprintFunc()

	if !useColor {
		noop := func(a ...interface{}) string { return fmt.Sprint(a...) }
		headerColor, descColor, dirColor, extentColor = noop, noop, noop, noop
	}

	fmt.Println(headerColor("\n=== UDF Layout ==="))
	fmt.Printf("[%s] Recognition sequence\n", extentColor(fmt.Sprintf("extent %d", l.RecognitionSequenceExtent)))
	fmt.Printf("[%s] Anchor volume descriptor pointer\n", extentColor(fmt.Sprintf("extent %d", l.AnchorExtent)))
	fmt.Printf("[%s] Partition (%d blocks)\n", extentColor(fmt.Sprintf("extent %d", l.PartitionStart)), l.PartitionLength)
	fmt.Printf("[%s] File set descriptor\n", extentColor(fmt.Sprintf("extent %d", l.FileSetExtent)))

	for _, d := range l.Descriptors {
		fmt.Printf("[%s] %s (tag version %d, %d bytes)\n",
			extentColor(fmt.Sprintf("extent %d", d.DescriptorExtent)),
			descColor(d.DescriptorType), d.DescriptorTagVer, d.DescriptorLength)
	}

	if verbose {
		for _, r := range l.DirectoryRecords {
			fmt.Printf("[%s] %s (icb extent %d, dir: %v)\n",
				extentColor(fmt.Sprintf("extent %d", r.Extent)),
				dirColor(r.Identifier), r.ICBExtent, r.IsDirectory)
		}
	}

	fmt.Println(headerColor("=================="))
}
