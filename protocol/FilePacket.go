/*
File Name:  FilePacket.go
Copyright:  2024 Hearthmesh Contributors

FilePacket TLV stream (§4.1, "v2" form per the Open Question in spec.md §9):
repeated `type(1) | length | value` until the buffer ends.

  0x01 FILE_NAME  length = 2 bytes BE, value = UTF-8, <= 65535 bytes
  0x02 FILE_SIZE  length = 2 bytes BE, value must be exactly 4 bytes (u32 BE)
  0x03 MIME_TYPE  length = 2 bytes BE, value = UTF-8, <= 65535 bytes
  0x04 CONTENT    length = 4 bytes BE, value = raw bytes

This picks the 4-byte-FILE_SIZE/4-byte-CONTENT-length form explicitly called
out as "v2" in spec.md §9, grounded on the teacher's length-prefixed TLV shape
(Packet Encoding.go) generalized to the four field types the spec defines.
*/

package protocol

import (
	"encoding/binary"
)

const (
	fileTLVName = 0x01
	fileTLVSize = 0x02
	fileTLVMime = 0x03
	fileTLVData = 0x04
)

// MaxFilePayload is the absolute ceiling on the encoded FilePacket payload (§3.1, §6).
const MaxFilePayload = 1 << 20 // 1 MiB

const (
	defaultFileName = "file"
	defaultMimeType = "application/octet-stream"
)

// FilePacket is the decoded file transfer payload (§3.1).
type FilePacket struct {
	FileName string
	FileSize uint32
	MimeType string
	Content  []byte
}

// EncodeFilePacket serializes f as a TLV stream. FileName and MimeType are
// silently truncated to 65535 bytes.
func EncodeFilePacket(f *FilePacket) []byte {
	name := truncateUTF8Bytes(f.FileName, 0xffff)
	mime := truncateUTF8Bytes(f.MimeType, 0xffff)

	fileSize := f.FileSize
	if fileSize == 0 {
		fileSize = uint32(len(f.Content))
	}

	out := make([]byte, 0, 3+len(name)+3+4+3+len(mime)+5+len(f.Content))

	out = append(out, fileTLVName)
	out = appendU16Len(out, len(name))
	out = append(out, name...)

	out = append(out, fileTLVSize)
	out = appendU16Len(out, 4)
	var sz [4]byte
	binary.BigEndian.PutUint32(sz[:], fileSize)
	out = append(out, sz[:]...)

	out = append(out, fileTLVMime)
	out = appendU16Len(out, len(mime))
	out = append(out, mime...)

	out = append(out, fileTLVData)
	var cl [4]byte
	binary.BigEndian.PutUint32(cl[:], uint32(len(f.Content)))
	out = append(out, cl[:]...)
	out = append(out, f.Content...)

	return out
}

// DecodeFilePacket parses a FilePacket TLV stream. It tolerates reordering,
// missing optional TLVs (defaults apply), an unknown type byte is rejected,
// and multiple CONTENT TLVs are concatenated. Empty content is rejected.
func DecodeFilePacket(raw []byte) (*FilePacket, error) {
	f := &FilePacket{
		FileName: defaultFileName,
		MimeType: defaultMimeType,
	}
	var haveSize bool
	var content []byte

	o := 0
	for o < len(raw) {
		if o+1 > len(raw) {
			return nil, ErrMalformedPacket
		}
		typ := raw[o]
		o++

		switch typ {
		case fileTLVName, fileTLVMime:
			if o+2 > len(raw) {
				return nil, ErrMalformedPacket
			}
			l := int(binary.BigEndian.Uint16(raw[o : o+2]))
			o += 2
			if l > len(raw)-o {
				return nil, ErrMalformedPacket
			}
			value := string(raw[o : o+l])
			o += l
			if typ == fileTLVName {
				f.FileName = value
			} else {
				f.MimeType = value
			}

		case fileTLVSize:
			if o+2 > len(raw) {
				return nil, ErrMalformedPacket
			}
			l := int(binary.BigEndian.Uint16(raw[o : o+2]))
			o += 2
			if l != 4 || l > len(raw)-o {
				return nil, ErrMalformedPacket
			}
			f.FileSize = binary.BigEndian.Uint32(raw[o : o+4])
			haveSize = true
			o += l

		case fileTLVData:
			if o+4 > len(raw) {
				return nil, ErrMalformedPacket
			}
			l := int(binary.BigEndian.Uint32(raw[o : o+4]))
			o += 4
			if l < 0 || l > len(raw)-o {
				return nil, ErrMalformedPacket
			}
			content = append(content, raw[o:o+l]...)
			o += l

		default:
			return nil, ErrMalformedPacket
		}
	}

	if len(content) == 0 {
		return nil, ErrMalformedPacket
	}
	f.Content = content
	if !haveSize {
		f.FileSize = uint32(len(content))
	}

	return f, nil
}

func appendU16Len(dst []byte, n int) []byte {
	var l [2]byte
	binary.BigEndian.PutUint16(l[:], uint16(n))
	return append(dst, l[:]...)
}

// truncateUTF8Bytes truncates s to at most n bytes without validating rune
// boundaries further than byte length, matching the teacher's silent-truncate
// field handling.
func truncateUTF8Bytes(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
