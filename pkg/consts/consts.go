// Package consts holds the fixed on-disk constants of the UDF 2.01
// volume and file layer: structure identifiers, tag identifiers, the
// read-only DVD profile values enforced on the volume descriptor
// sequence, and the fixed field widths of the file set records.
package consts

const (
	// Standard UDF Identifier
	UDF_STD_IDENTIFIER = "BEA01"

	// Volume recognition structure identifiers (ECMA-167 2/9).
	UDF_VRS_BEA01 = "BEA01"
	UDF_VRS_NSR02 = "NSR02"
	UDF_VRS_TEA01 = "TEA01"

	// Volume recognition structure type/version constants.
	UDF_VRS_STRUCTURE_TYPE = 0
	UDF_VRS_VERSION        = 1

	// Descriptor tag identifiers (ECMA-167 3/7.2, 4/14).
	UDF_TAG_IDENT_PRIMARY_VOLUME_DESC      = 1
	UDF_TAG_IDENT_ANCHOR_VOLUME_DESC       = 2
	UDF_TAG_IDENT_VOLUME_DESC_PTR          = 3
	UDF_TAG_IDENT_IMPL_USE_VOLUME_DESC     = 4
	UDF_TAG_IDENT_PARTITION_DESC           = 5
	UDF_TAG_IDENT_LOGICAL_VOLUME_DESC      = 6
	UDF_TAG_IDENT_UNALLOCATED_SPACE_DESC   = 7
	UDF_TAG_IDENT_TERMINATING_DESC         = 8
	UDF_TAG_IDENT_LOGICAL_VOLUME_INTEGRITY = 9
	UDF_TAG_IDENT_FILE_SET_DESC            = 256
	UDF_TAG_IDENT_FILE_IDENT_DESC          = 257
	UDF_TAG_IDENT_FILE_ENTRY               = 261

	// Descriptor tag version; UDF 2.01 uses 2 or 3.
	UDF_TAG_VERSION_2 = 2
	UDF_TAG_VERSION_3 = 3

	// Read-only DVD profile constants enforced on the Primary Volume Descriptor.
	UDF_PVD_VOL_SEQ_NUM              = 1
	UDF_PVD_MAX_VOL_SEQ_NUM          = 1
	UDF_PVD_INTERCHANGE_LEVEL        = 2
	UDF_PVD_MAX_INTERCHANGE_LEVEL    = 2
	UDF_PVD_CHARACTER_SET_LIST       = 1
	UDF_PVD_MAX_CHARACTER_SET_LIST   = 1
	UDF_PVD_FLAGS                    = 0
	UDF_FILE_SET_INTERCHANGE_LEVEL   = 3
	UDF_FILE_SET_MAX_INTERCHANGE_LVL = 3
	UDF_FILE_SET_CHARSET_LIST        = 1
	UDF_FILE_SET_MAX_CHARSET_LIST    = 1

	// Domain/partition-contents identifiers (EntityID.identifier prefixes).
	UDF_ENTITY_ID_LV_INFO        = "*UDF LV Info"
	UDF_ENTITY_ID_PARTITION_NSR  = "+NSR02"
	UDF_ENTITY_ID_DOMAIN         = "*OSTA UDF Compliant"
	UDF_ENTITY_ID_IMPLEMENTATION = "*genisoimage"

	UDF_PARTITION_CONTENTS_FLAGS = 2

	// Logical Volume Descriptor constants.
	UDF_LOGICAL_BLOCK_SIZE   = 2048
	UDF_MAP_TABLE_LENGTH     = 6
	UDF_NUM_PARTITION_MAPS   = 1
	UDF_PARTITION_MAP_TYPE_1 = 1
	UDF_PARTITION_MAP_LEN_1  = 6
	UDF_PARTITION_MAP_VOLSEQ = 1

	// Logical Volume Integrity Descriptor constants.
	UDF_LVID_TYPE_INTEGRITY  = 1
	UDF_LVID_NUM_PARTITIONS  = 1
	UDF_LVID_LENGTH_IMPL_USE = 46
	UDF_LVID_CRC_WINDOW      = 118
	UDF_LVID_IMPL_USE_SIZE   = 424

	// File Entry / ICB constants.
	UDF_ICB_STRATEGY_TYPE_4      = 4
	UDF_ICB_STRATEGY_TYPE_4096   = 4096
	UDF_FILE_ENTRY_CHECKPOINT    = 1
	UDF_FILE_ENTRY_HEADER_SIZE   = 176
	UDF_FILE_ENTRY_CRC_WINDOW    = 168
	UDF_FILE_ENTRY_DEFAULT_UID   = 0xFFFFFFFF
	UDF_FILE_ENTRY_DEFAULT_GID   = 0xFFFFFFFF
	UDF_FILE_ENTRY_DEFAULT_PERMS = 0x14A5
	UDF_ICB_FLAGS_DEFAULT        = 0x230

	// File Identifier Descriptor constants.
	UDF_FID_FIXED_SIZE     = 38
	UDF_FID_FILE_VERSION   = 1
	UDF_FID_CHAR_DIRECTORY = 0x02
	UDF_FID_CHAR_PARENT    = 0x08

	// Timestamp tz sentinel meaning "not specified" (two's complement 12-bit -2047).
	UDF_TIMESTAMP_TZ_UNSPECIFIED = -2047
	UDF_TIMESTAMP_TZ_MIN         = -1440
	UDF_TIMESTAMP_TZ_MAX         = 1440

	// EntityID fixed field widths.
	UDF_ENTITY_ID_IDENTIFIER_LEN = 23
	UDF_ENTITY_ID_SUFFIX_LEN     = 8
)
