package consensus

import "encoding/binary"

func appendU32le(dst []byte, v uint32) []byte {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], v)
	return append(dst, buf[:]...)
}

func appendU64le(dst []byte, v uint64) []byte {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], v)
	return append(dst, buf[:]...)
}

// appendBytes writes a u32le length prefix followed by b.
func appendBytes(dst []byte, b []byte) []byte {
	// #nosec G115 -- cell payloads are bounded far below 4 GiB by the host.
	dst = appendU32le(dst, uint32(len(b)))
	return append(dst, b...)
}

func appendScript(dst []byte, s Script) []byte {
	dst = append(dst, s.CodeHash[:]...)
	dst = append(dst, s.HashType)
	return appendBytes(dst, s.Args)
}
